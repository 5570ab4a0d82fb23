package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/biportal/pkg/limits"
	"github.com/dmitrymomot/biportal/pkg/pg"
	"github.com/dmitrymomot/biportal/pkg/rbac"
	"github.com/dmitrymomot/biportal/pkg/subscription"
)

// DB is the subset of *pgxpool.Pool used by Postgres.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Postgres reads subscriptions, role assignments, plans and resource
// counts. It never writes.
type Postgres struct {
	db DB
}

func NewPostgres(db DB) *Postgres {
	if db == nil {
		panic("store: postgres db cannot be nil")
	}
	return &Postgres{db: db}
}

const selectSubscription = `
SELECT user_id, plan_id, status, trial_ends_at, canceled_at, is_master_managed, updated_at
FROM subscriptions
WHERE user_id = $1`

// Get implements subscription.Store.
func (p *Postgres) Get(ctx context.Context, userID uuid.UUID) (*subscription.Record, error) {
	var row subscriptionRow
	err := p.db.QueryRow(ctx, selectSubscription, userID).Scan(
		&row.UserID, &row.PlanID, &row.Status, &row.TrialEndsAt, &row.CanceledAt, &row.IsMasterManaged, &row.UpdatedAt,
	)
	if pg.IsNotFoundError(err) {
		return nil, subscription.ErrSubscriptionNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return row.record(), nil
}

type subscriptionRow struct {
	UserID          uuid.UUID
	PlanID          string
	Status          string
	TrialEndsAt     *time.Time
	CanceledAt      *time.Time
	IsMasterManaged bool
	UpdatedAt       time.Time
}

func (r subscriptionRow) record() *subscription.Record {
	return &subscription.Record{
		UserID:          r.UserID,
		PlanID:          r.PlanID,
		Status:          subscription.ParseStatus(r.Status),
		TrialEndsAt:     r.TrialEndsAt,
		CanceledAt:      r.CanceledAt,
		IsMasterManaged: r.IsMasterManaged,
		UpdatedAt:       r.UpdatedAt,
	}
}

const selectRoles = `SELECT user_id, company_id, role FROM role_assignments WHERE user_id = $1`

// GetRoles implements rbac.Source. Roles are passed through unparsed so the
// resolver can log and skip unknown values.
func (p *Postgres) GetRoles(ctx context.Context, userID uuid.UUID) ([]rbac.Assignment, error) {
	rows, err := p.db.Query(ctx, selectRoles, userID)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (rbac.Assignment, error) {
		var (
			a    rbac.Assignment
			role string
		)
		err := row.Scan(&a.UserID, &a.CompanyID, &role)
		a.Role = rbac.Role(role)
		return a, err
	})
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return out, nil
}

const (
	selectPlan  = `SELECT id, name, features, limits FROM plans WHERE id = $1`
	selectPlans = `SELECT id, name, features, limits FROM plans`
)

// GetPlan implements subscription.PlanReader.
func (p *Postgres) GetPlan(ctx context.Context, planID string) (*subscription.Plan, error) {
	var row planRow
	err := p.db.QueryRow(ctx, selectPlan, planID).Scan(&row.ID, &row.Name, &row.Features, &row.Limits)
	if pg.IsNotFoundError(err) {
		return nil, subscription.ErrPlanNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	plan, err := row.plan()
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Load implements subscription.PlansListSource.
func (p *Postgres) Load(ctx context.Context) (map[string]subscription.Plan, error) {
	rows, err := p.db.Query(ctx, selectPlans)
	if err != nil {
		return nil, errors.Join(subscription.ErrFailedToLoadPlans, err)
	}
	planRows, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (planRow, error) {
		var r planRow
		err := row.Scan(&r.ID, &r.Name, &r.Features, &r.Limits)
		return r, err
	})
	if err != nil {
		return nil, errors.Join(subscription.ErrFailedToLoadPlans, err)
	}

	plans := make(map[string]subscription.Plan, len(planRows))
	for _, r := range planRows {
		plan, err := r.plan()
		if err != nil {
			return nil, errors.Join(subscription.ErrFailedToLoadPlans, err)
		}
		plans[plan.ID] = plan
	}
	if err := subscription.ValidatePlans(plans); err != nil {
		return nil, err
	}
	return plans, nil
}

type planRow struct {
	ID       string
	Name     string
	Features []string
	Limits   []byte
}

func (r planRow) plan() (subscription.Plan, error) {
	plan := subscription.Plan{ID: r.ID, Name: r.Name, Features: r.Features}
	if len(r.Limits) > 0 {
		if err := json.Unmarshal(r.Limits, &plan.Limits); err != nil {
			return plan, errors.Join(ErrDecodeFailed, fmt.Errorf("plan %s limits: %w", r.ID, err))
		}
	}
	return plan, nil
}

var countQueries = map[limits.Resource]string{
	limits.ResourceDashboards:  `SELECT count(*) FROM dashboards WHERE company_id = $1`,
	limits.ResourceUsers:       `SELECT count(*) FROM company_users WHERE company_id = $1`,
	limits.ResourceCredentials: `SELECT count(*) FROM credentials WHERE company_id = $1`,
}

// Counters returns a limits registry counting each resource per company.
func (p *Postgres) Counters() limits.CounterRegistry {
	reg := limits.NewRegistry()
	for res, query := range countQueries {
		reg.Register(res, func(ctx context.Context, companyID string) (int64, error) {
			var n int64
			if err := p.db.QueryRow(ctx, query, companyID).Scan(&n); err != nil {
				return 0, errors.Join(ErrQueryFailed, err)
			}
			return n, nil
		})
	}
	return reg
}
