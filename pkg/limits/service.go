package limits

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/biportal/pkg/async"
	"github.com/dmitrymomot/biportal/pkg/logger"
)

// Service compares resource counts against plan limits.
// The engine only renders advisory state; CanCreate exists for mutation
// endpoints that must re-check the limit themselves.
type Service interface {
	// Usage counts every resource configured in planLimits. Resources whose
	// counter fails or is missing are omitted.
	Usage(ctx context.Context, companyID string, planLimits map[Resource]int64) []Usage

	// Alerts returns the resources whose limit is reached.
	Alerts(ctx context.Context, companyID string, planLimits map[Resource]int64) []Alert

	// CanCreate returns ErrLimitExceeded when one more res would exceed the limit.
	CanCreate(ctx context.Context, companyID string, planLimits map[Resource]int64, res Resource) error
}

type service struct {
	counters CounterRegistry
	logger   *slog.Logger
}

type Option func(*service)

func WithLogger(l *slog.Logger) Option {
	return func(s *service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(counters CounterRegistry, opts ...Option) Service {
	if counters == nil {
		counters = NewRegistry()
	}
	s := &service{counters: counters, logger: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) count(ctx context.Context, companyID string, res Resource) (int64, error) {
	counter, ok := s.counters[res]
	if !ok {
		return 0, ErrNoCounterRegistered
	}
	n, err := counter(ctx, companyID)
	if err != nil {
		return 0, errors.Join(ErrFailedToCountResourceUsage, err)
	}
	return n, nil
}

func (s *service) Usage(ctx context.Context, companyID string, planLimits map[Resource]int64) []Usage {
	type job struct {
		res   Resource
		limit int64
	}

	var (
		jobs    []job
		futures []*async.Future[int64]
	)
	for _, res := range Resources {
		limit, ok := planLimits[res]
		if !ok {
			continue
		}
		jobs = append(jobs, job{res: res, limit: limit})
		futures = append(futures, async.Async(ctx, res, func(ctx context.Context, res Resource) (int64, error) {
			return s.count(ctx, companyID, res)
		}))
	}

	out := make([]Usage, 0, len(jobs))
	for i, settled := range async.AllSettled(futures...) {
		if settled.Err != nil {
			s.logger.WarnContext(ctx, "resource count unavailable",
				logger.CompanyID(companyID),
				slog.String("resource", string(jobs[i].res)),
				logger.Error(settled.Err),
			)
			continue
		}
		out = append(out, Usage{Resource: jobs[i].res, Current: settled.Value, Limit: jobs[i].limit})
	}
	return out
}

func (s *service) Alerts(ctx context.Context, companyID string, planLimits map[Resource]int64) []Alert {
	var alerts []Alert
	for _, u := range s.Usage(ctx, companyID, planLimits) {
		if u.Reached() {
			alerts = append(alerts, Alert(u))
		}
	}
	return alerts
}

func (s *service) CanCreate(ctx context.Context, companyID string, planLimits map[Resource]int64, res Resource) error {
	limit, ok := planLimits[res]
	if !ok {
		return ErrInvalidResource
	}
	if limit == Unlimited {
		return nil
	}

	current, err := s.count(ctx, companyID, res)
	if err != nil {
		return err
	}
	if (Usage{Current: current, Limit: limit}).Reached() {
		return ErrLimitExceeded
	}
	return nil
}
