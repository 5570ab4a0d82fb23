package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/biportal/modules/portal"
	"github.com/dmitrymomot/biportal/pkg/config"
	"github.com/dmitrymomot/biportal/pkg/feature"
	"github.com/dmitrymomot/biportal/pkg/httpserver"
	"github.com/dmitrymomot/biportal/pkg/i18n"
	"github.com/dmitrymomot/biportal/pkg/jwt"
	"github.com/dmitrymomot/biportal/pkg/limits"
	"github.com/dmitrymomot/biportal/pkg/logger"
	"github.com/dmitrymomot/biportal/pkg/mongo"
	"github.com/dmitrymomot/biportal/pkg/pg"
	"github.com/dmitrymomot/biportal/pkg/rbac"
	"github.com/dmitrymomot/biportal/pkg/redis"
	"github.com/dmitrymomot/biportal/pkg/requestid"
	"github.com/dmitrymomot/biportal/pkg/subscription"
	"github.com/dmitrymomot/biportal/svc/access"
	"github.com/dmitrymomot/biportal/svc/auth"
	"github.com/dmitrymomot/biportal/svc/company"
	"github.com/dmitrymomot/biportal/svc/store"
)

type appConfig struct {
	Env           string `env:"APP_ENV" envDefault:"development"`
	Name          string `env:"APP_NAME" envDefault:"biportal"`
	Backend       string `env:"STORE_BACKEND" envDefault:"postgres"`
	PlanCache     bool   `env:"PLAN_CACHE_ENABLED" envDefault:"true"`
	BaseDomain    string `env:"PORTAL_BASE_DOMAIN"`
	SecureCookies bool   `env:"HTTP_SECURE_COOKIES" envDefault:"true"`
}

var errUnknownBackend = errors.New("unknown STORE_BACKEND, want postgres or mongo")

func main() {
	var app appConfig
	config.MustLoad(&app)

	log := logger.New(
		logger.WithEnvironment(app.Env, app.Name),
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			auth.LoggerExtractor(),
			company.LoggerExtractor(),
		),
	)
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, app, log, openBackend); err != nil {
		log.Error("portal stopped", logger.Error(err))
		os.Exit(1)
	}
}

// backend is the persistence the engine reads from.
type backend struct {
	subscriptions subscription.Store
	roles         rbac.Source
	plans         subscription.PlanReader
	catalog       subscription.PlansListSource
	counters      limits.CounterRegistry
	checks        []httpserver.Check
	closers       []func(context.Context) error
}

// opener connects the persistence selected by STORE_BACKEND.
type opener func(ctx context.Context, app appConfig, log *slog.Logger) (*backend, error)

func run(ctx context.Context, app appConfig, log *slog.Logger, open opener) error {
	b, err := open(ctx, app, log)
	if err != nil {
		return err
	}

	p, err := assemble(ctx, app, log, b)
	if err != nil {
		return errors.Join(err, b.close(context.WithoutCancel(ctx)))
	}

	go p.features.Watch(ctx, p.accessCfg.CatalogRefresh)

	log.InfoContext(ctx, "starting portal", slog.String("addr", p.httpCfg.Addr), slog.String("backend", app.Backend))
	if err := p.server.Run(ctx, p.handler); err != nil {
		if ctx.Err() == nil {
			// shutdown hooks only run after ctx is done
			return errors.Join(err, b.close(context.WithoutCancel(ctx)))
		}
		return err
	}
	return nil
}

// close releases backend resources in reverse order of acquisition.
func (b *backend) close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i](ctx))
	}
	return errors.Join(errs...)
}

// portalApp is everything run needs once the backend is open.
type portalApp struct {
	accessCfg access.Config
	httpCfg   httpserver.Config
	features  *feature.Registry
	server    *httpserver.Server
	handler   http.Handler
}

func assemble(ctx context.Context, app appConfig, log *slog.Logger, b *backend) (*portalApp, error) {
	var accessCfg access.Config
	var jwtCfg jwt.Config
	var httpCfg httpserver.Config
	for _, load := range []func() error{
		func() error { return config.Load(&accessCfg) },
		func() error { return config.Load(&jwtCfg) },
		func() error { return config.Load(&httpCfg) },
	} {
		if err := load(); err != nil {
			return nil, err
		}
	}

	plans := b.plans
	featureOpts := []feature.RegistryOption{feature.WithMissReloadInterval(accessCfg.CatalogMissInterval)}
	if app.PlanCache {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return nil, err
		}
		b.checks = append(b.checks, httpserver.Check{Name: "redis", Probe: redis.Healthcheck(client)})
		b.closers = append(b.closers, func(context.Context) error { return client.Close() })

		shared := redis.NewCache[subscription.Plan](client, store.DefaultPlanCachePrefix, store.DefaultPlanCacheTTL)
		cached := store.NewPlanCache(b.plans, shared, store.WithLogger(log))
		if err := cached.InvalidateAll(ctx); err != nil {
			log.WarnContext(ctx, "plan cache purge failed", logger.Error(err))
		}
		featureOpts = append(featureOpts, feature.WithReloadHook(cached.OnCatalogChange))
		plans = cached
	}

	features, err := feature.NewRegistry(ctx, access.FeatureSource(b.catalog), log, featureOpts...)
	if err != nil {
		return nil, err
	}

	metricsReg := prometheus.NewRegistry()
	metricsReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	tokens, err := jwt.NewFromConfig(jwtCfg)
	if err != nil {
		return nil, err
	}
	tr, err := access.NewTranslator(ctx, i18n.WithLogger(log), i18n.WithMissingTranslationsLogging(true))
	if err != nil {
		return nil, err
	}

	registry := access.NewRegistry(access.Dependencies{
		Roles: rbac.NewResolver(b.roles, rbac.WithLogger(log)),
		Subscriptions: subscription.NewResolver(b.subscriptions,
			subscription.WithGracePeriod(accessCfg.GracePeriodDays),
			subscription.WithFetchTimeout(accessCfg.FetchTimeout),
			subscription.WithLogger(log),
		),
		Features: features,
		Plans:    plans,
		Limits:   limits.NewService(b.counters, limits.WithLogger(log)),
	}, accessCfg, access.WithLogger(log), access.WithMetrics(access.NewMetrics(metricsReg)))

	module := portal.New(registry, access.NewPresenter(tr, accessCfg),
		portal.WithLogger(log),
		portal.WithSecureCookies(app.SecureCookies),
	)

	resolvers := []company.Resolver{company.HeaderResolver("")}
	if app.BaseDomain != "" {
		resolvers = append(resolvers, company.SubdomainResolver(app.BaseDomain))
	}

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, 3*time.Second, b.checks...))
	r.Handle("/metrics", promhttp.HandlerFor(metricsReg, promhttp.HandlerOpts{}))
	r.Group(func(r chi.Router) {
		r.Use(
			auth.Middleware(tokens, log),
			company.Middleware(company.Chain(resolvers...), log),
			i18n.Middleware(tr),
		)
		r.Mount("/", module.Router())
	})

	opts := []httpserver.Option{
		httpserver.WithLogger(log),
		httpserver.WithShutdownHook(func(context.Context) error {
			registry.Shutdown()
			return nil
		}),
		httpserver.WithShutdownHook(b.close),
	}

	return &portalApp{
		accessCfg: accessCfg,
		httpCfg:   httpCfg,
		features:  features,
		server:    httpserver.New(httpCfg, opts...),
		handler:   r,
	}, nil
}

func openBackend(ctx context.Context, app appConfig, log *slog.Logger) (*backend, error) {
	switch app.Backend {
	case "postgres":
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, store.Migrations(), cfg, log); err != nil {
			pool.Close()
			return nil, err
		}
		s := store.NewPostgres(pool)
		return &backend{
			subscriptions: s,
			roles:         s,
			plans:         s,
			catalog:       s,
			counters:      s.Counters(),
			checks:        []httpserver.Check{{Name: "postgres", Probe: pg.Healthcheck(pool)}},
			closers: []func(context.Context) error{func(context.Context) error {
				pool.Close()
				return nil
			}},
		}, nil

	case "mongo":
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		client, err := mongo.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s := store.NewMongo(client.Database(cfg.Database))
		return &backend{
			subscriptions: s,
			roles:         s,
			plans:         s,
			catalog:       s,
			counters:      s.Counters(),
			checks:        []httpserver.Check{{Name: "mongo", Probe: mongo.Healthcheck(client)}},
			closers:       []func(context.Context) error{client.Disconnect},
		}, nil
	}
	return nil, errUnknownBackend
}
