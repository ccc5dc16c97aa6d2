package handler

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pavelanni/enade/internal/model"
)

const (
	sessionCookieName = "enade_session"
	csrfCookieName    = "csrf_token"
)

type sessionCtxKey struct{}

func sessionIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(sessionCtxKey{}).(string)
	return id
}

// sessionMiddleware gives every browser its own builder session, identified by
// a cookie. Unknown or malformed ids are replaced.
func (h *Handler) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if cookie, err := r.Cookie(sessionCookieName); err == nil && h.builders.Valid(cookie.Value) {
			id = cookie.Value
		} else {
			id = h.builders.NewID()
			http.SetCookie(w, &http.Cookie{
				Name:     sessionCookieName,
				Value:    id,
				Path:     h.cookiePath(),
				HttpOnly: true,
				Secure:   h.config.SecureCookies,
				SameSite: http.SameSiteLaxMode,
			})
			slog.Debug("new builder session", "session", id)
		}
		ctx := context.WithValue(r.Context(), sessionCtxKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func generateCSRFToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

func (h *Handler) setCSRFCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     h.cookiePath(),
		HttpOnly: false,
		Secure:   h.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// wellFormedToken reports whether v looks like a token from generateCSRFToken.
func wellFormedToken(v string) bool {
	b, err := base64.URLEncoding.DecodeString(v)
	return err == nil && len(b) == 32
}

// csrfMiddleware checks a double-submit token on state-changing requests.
// The token lives as long as its cookie, so pages left open (for example
// after a download) keep working.
func (h *Handler) csrfMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(csrfCookieName); err == nil && wellFormedToken(cookie.Value) {
			token = cookie.Value
		}

		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			if token == "" {
				slog.Warn("CSRF cookie missing", "path", r.URL.Path)
				http.Error(w, "csrf token missing", http.StatusForbidden)
				return
			}

			formToken := r.FormValue("csrf_token")
			if formToken == "" {
				slog.Warn("CSRF form token missing", "path", r.URL.Path)
				http.Error(w, "csrf token missing", http.StatusForbidden)
				return
			}

			if len(formToken) != len(token) || subtle.ConstantTimeCompare([]byte(formToken), []byte(token)) != 1 {
				slog.Warn("CSRF token mismatch", "path", r.URL.Path)
				http.Error(w, "invalid csrf token", http.StatusForbidden)
				return
			}
		}

		if token == "" {
			var err error
			token, err = generateCSRFToken()
			if err != nil {
				slog.Error("failed to generate CSRF token", "error", err)
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			h.setCSRFCookie(w, token)
		}

		ctx := model.ContextWithCSRFToken(r.Context(), token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
