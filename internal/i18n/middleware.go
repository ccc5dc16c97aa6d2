package i18n

import (
	"net/http"

	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// Middleware injects a localizer into every request context. A "lang" query
// parameter overrides the server language.
func Middleware(lang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			loc := i18n.NewLocalizer(bundle, r.URL.Query().Get("lang"), lang)
			ctx := WithLocalizer(r.Context(), loc)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
