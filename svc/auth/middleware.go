package auth

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/biportal/pkg/jwt"
	"github.com/dmitrymomot/biportal/pkg/logger"
)

// SessionCookie carries the session token for browser requests.
const SessionCookie = "portal_session"

// Middleware authenticates requests that carry a valid token and lets the
// rest through anonymously. Deciding what an anonymous caller may see is
// left to the access guard, which redirects to the auth entry point.
func Middleware(tokens *jwt.Service, log *slog.Logger) func(http.Handler) http.Handler {
	if tokens == nil {
		panic("auth: token service cannot be nil")
	}
	if log == nil {
		log = logger.Discard()
	}
	extract := jwt.ChainExtractors(jwt.BearerTokenExtractor, jwt.CookieTokenExtractor(SessionCookie))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := extract(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := tokens.ParseClaims(raw)
			if err != nil {
				log.DebugContext(r.Context(), "rejected session token", logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			user, err := UserFromClaims(claims)
			if err != nil {
				log.WarnContext(r.Context(), "token subject is not a user id", logger.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			ctx := jwt.SetClaims(jwt.SetToken(r.Context(), raw), claims)
			next.ServeHTTP(w, r.WithContext(SetUserToContext(ctx, user)))
		})
	}
}

// RequireUser answers 401 for anonymous requests.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r.Context()); !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
