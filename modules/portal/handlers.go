package portal

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/biportal/handler"
	"github.com/dmitrymomot/biportal/pkg/feature"
	"github.com/dmitrymomot/biportal/pkg/i18n"
	"github.com/dmitrymomot/biportal/svc/access"
	"github.com/dmitrymomot/biportal/svc/auth"
)

// RefreshPath is where the retry action of the blocked screen posts.
const RefreshPath = "/session/refresh"

type AccessRequest struct {
	Route string `query:"route"`
	Wait  bool   `query:"wait"`
}

type RefreshRequest struct {
	Wait bool `query:"wait"`
}

type FeatureRequest struct {
	Key string `path:"key"`
}

// AccessResponse is the guard decision plus what the page needs to render it.
type AccessResponse struct {
	Decision access.Decision       `json:"decision"`
	View     *access.View          `json:"view,omitempty"`
	Banner   *access.Banner        `json:"banner,omitempty"`
	Blocked  *access.BlockedScreen `json:"blocked,omitempty"`
}

type FeatureResponse struct {
	Key      feature.Key       `json:"key"`
	Decision string            `json:"decision"`
	Fallback *feature.Fallback `json:"fallback,omitempty"`
}

type LimitsResponse struct {
	Alerts []access.LimitAlert `json:"alerts"`
}

func (m *Module) access(ctx handler.Context, req AccessRequest) handler.Response {
	route, ok := m.routes.Lookup(req.Route)
	if !ok {
		return handler.JSONError(handler.NewHTTPError(http.StatusNotFound, access.ErrUnknownRoute))
	}

	if _, ok := auth.CurrentUser(ctx); !ok {
		d := access.NewGuard(route, m.cfg.AuthURL, m.cfg.LandingURL, m.log).Unauthenticated()
		return handler.JSON(AccessResponse{Decision: d})
	}

	s, err := m.session(ctx)
	if err != nil {
		return handler.JSONError(handler.NewHTTPError(http.StatusUnauthorized, err))
	}
	guard, err := s.Navigate(route)
	if err != nil {
		return handler.JSONError(handler.NewHTTPError(http.StatusGone, err))
	}
	return handler.JSON(m.describe(ctx, s, m.await(ctx, guard, req.Wait)))
}

func (m *Module) refresh(ctx handler.Context, req RefreshRequest) handler.Response {
	s, err := m.existing(ctx)
	if err != nil {
		return handler.JSONError(handler.NewHTTPError(http.StatusNotFound, access.ErrSessionNotFound))
	}
	guard, err := s.Refresh()
	if err != nil {
		return handler.JSONError(handler.NewHTTPError(http.StatusConflict, err))
	}
	d := m.await(ctx, guard, req.Wait)
	if d.State == access.StateLoading {
		return handler.JSON(m.describe(ctx, s, d), handler.WithStatus(http.StatusAccepted))
	}
	return handler.JSON(m.describe(ctx, s, d))
}

func (m *Module) feature(ctx handler.Context, req FeatureRequest) handler.Response {
	key := feature.Key(req.Key)
	s, err := m.existing(ctx)
	if err != nil {
		return handler.JSONError(handler.NewHTTPError(http.StatusNotFound, access.ErrSessionNotFound))
	}

	v := s.View()
	gate := s.Gate(ctx, m.presenter.GateOptions(i18n.GetLocale(ctx), v.Role)...)
	decision := gate.Check(key)
	resp := FeatureResponse{Key: key, Decision: decision.String()}
	if decision == feature.Denied {
		fb := gate.Fallback(key)
		resp.Fallback = &fb
	}
	return handler.JSON(resp)
}

func (m *Module) limits(ctx handler.Context, _ struct{}) handler.Response {
	s, err := m.existing(ctx)
	if err != nil {
		return handler.JSONError(handler.NewHTTPError(http.StatusNotFound, access.ErrSessionNotFound))
	}
	alerts := m.presenter.LimitAlerts(i18n.GetLocale(ctx), s.Alerts(ctx))
	if alerts == nil {
		alerts = []access.LimitAlert{}
	}
	return handler.JSON(LimitsResponse{Alerts: alerts})
}

func (m *Module) blocked(ctx handler.Context, _ struct{}) handler.Response {
	if _, ok := auth.CurrentUser(ctx); !ok {
		return handler.Redirect(m.cfg.AuthURL)
	}
	s, err := m.existing(ctx)
	if err != nil {
		return handler.Redirect(m.cfg.LandingURL)
	}

	d := s.Decision()
	switch d.State {
	case access.StateBlocked:
	case access.StateRedirect:
		return handler.Redirect(d.RedirectTo)
	default:
		return handler.Redirect(m.cfg.LandingURL)
	}

	lang := i18n.GetLocale(ctx)
	screen := m.presenter.BlockedScreen(lang, s.View().Role, d.Reason)
	return handler.TemplWithStatus(http.StatusForbidden, BlockedPage(lang, screen))
}

func (m *Module) logout(ctx handler.Context, _ struct{}) handler.Response {
	if s, err := m.existing(ctx); err == nil {
		m.registry.Close(s.ID())
	}
	w := ctx.ResponseWriter()
	clearCookie(w, AccessCookie, m.secure)
	clearCookie(w, auth.SessionCookie, m.secure)
	return handler.Redirect(m.cfg.AuthURL)
}

// await blocks until the guard is terminal when wait is set. The bound is a
// little over the fetch timeout since the guard times out on its own.
func (m *Module) await(ctx context.Context, guard *access.Guard, wait bool) access.Decision {
	if !wait {
		return guard.Decision()
	}
	ctx, cancel := context.WithTimeout(ctx, m.cfg.FetchTimeout+m.cfg.RetryInterval)
	defer cancel()
	d, err := guard.Wait(ctx)
	if err != nil {
		return guard.Decision()
	}
	return d
}

func (m *Module) describe(ctx context.Context, s *access.Session, d access.Decision) AccessResponse {
	lang := i18n.GetLocale(ctx)
	v := s.View()
	resp := AccessResponse{Decision: d, View: &v}
	switch d.State {
	case access.StateAllowed:
		resp.Banner = m.presenter.Banner(lang, v.Role, v.Snapshot)
	case access.StateBlocked:
		screen := m.presenter.BlockedScreen(lang, v.Role, d.Reason)
		resp.Blocked = &screen
	}
	return resp
}
