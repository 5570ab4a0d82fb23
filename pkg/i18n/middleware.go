package i18n

import "net/http"

// Middleware negotiates the request language and stores it with SetLocale.
// A "lang" query parameter takes precedence over the Accept-Language header.
func Middleware(t *Translator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := r.URL.Query().Get("lang")
			if lang == "" {
				lang = r.Header.Get("Accept-Language")
			}
			locale := t.Match(lang)
			w.Header().Set("Content-Language", locale)
			next.ServeHTTP(w, r.WithContext(SetLocale(r.Context(), locale)))
		})
	}
}
