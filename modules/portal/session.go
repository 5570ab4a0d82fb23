package portal

import (
	"errors"
	"net/http"

	"github.com/dmitrymomot/biportal/handler"
	"github.com/dmitrymomot/biportal/pkg/logger"
	"github.com/dmitrymomot/biportal/svc/access"
	"github.com/dmitrymomot/biportal/svc/auth"
	"github.com/dmitrymomot/biportal/svc/company"
)

// session returns the caller's access session, opening one on first use or
// when the cookie belongs to another user or company.
func (m *Module) session(ctx handler.Context) (*access.Session, error) {
	user, ok := auth.CurrentUser(ctx)
	if !ok {
		return nil, auth.ErrUnauthenticated
	}
	companyID, _ := company.ID(ctx)
	if companyID == "" {
		companyID = user.CompanyID
	}

	if s, err := m.existing(ctx); err == nil {
		if s.User().ID == user.ID && s.CompanyID() == companyID {
			return s, nil
		}
		m.registry.Close(s.ID())
	}

	s := m.registry.Open(*user, companyID)
	http.SetCookie(ctx.ResponseWriter(), &http.Cookie{
		Name:     AccessCookie,
		Value:    s.ID(),
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(m.cfg.SessionTTL.Seconds()),
	})
	m.log.DebugContext(ctx, "access session opened", logger.UserID(user.ID), logger.CompanyID(companyID))
	return s, nil
}

// existing returns the session named by the cookie without opening one.
func (m *Module) existing(ctx handler.Context) (*access.Session, error) {
	c, err := ctx.Request().Cookie(AccessCookie)
	if err != nil {
		return nil, errors.Join(access.ErrSessionNotFound, err)
	}
	return m.registry.Get(c.Value)
}

func clearCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
