package portal

import (
	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/biportal/handler"
	"github.com/dmitrymomot/biportal/pkg/binder"
)

// Router mounts the access endpoints. It expects auth, company and i18n
// middleware to run before it.
//
//	r.Mount("/", portal.New(registry, presenter).Router())
func (m *Module) Router() chi.Router {
	r := chi.NewRouter()

	r.Get("/access", handler.Wrap(m.access,
		handler.WithBinders[handler.Context, AccessRequest](binder.Query()),
		handler.WithErrorHandler[handler.Context, AccessRequest](m.onError),
	))
	r.Get("/features/{key}", handler.Wrap(m.feature,
		handler.WithBinders[handler.Context, FeatureRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[handler.Context, FeatureRequest](m.onError),
	))
	r.Get("/limits", handler.Wrap(m.limits,
		handler.WithErrorHandler[handler.Context, struct{}](m.onError),
	))
	r.Get("/blocked", handler.Wrap(m.blocked,
		handler.WithErrorHandler[handler.Context, struct{}](m.onError),
	))

	r.Route("/session", func(r chi.Router) {
		r.Post("/refresh", handler.Wrap(m.refresh,
			handler.WithBinders[handler.Context, RefreshRequest](binder.Query()),
			handler.WithErrorHandler[handler.Context, RefreshRequest](m.onError),
		))
		r.Post("/logout", handler.Wrap(m.logout,
			handler.WithErrorHandler[handler.Context, struct{}](m.onError),
		))
	})

	return r
}
