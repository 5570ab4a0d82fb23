package company

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/biportal/pkg/logger"
	"github.com/dmitrymomot/biportal/svc/auth"
)

// Middleware scopes the request to a company. An explicit identifier from
// resolve wins; otherwise the company carried by the user's token is used.
// Malformed identifiers are rejected with 400.
func Middleware(resolve Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	if resolve == nil {
		panic("company: resolver cannot be nil")
	}
	if log == nil {
		log = logger.Discard()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := resolve(r)
			if err != nil {
				log.DebugContext(r.Context(), "company rejected", logger.Error(err))
				http.Error(w, ErrInvalidIdentifier.Error(), http.StatusBadRequest)
				return
			}
			if id == "" {
				if u, ok := auth.CurrentUser(r.Context()); ok {
					id = u.CompanyID
				}
			}
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetID(r.Context(), id)))
		})
	}
}
