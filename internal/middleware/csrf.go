package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/session"
	"net/http"
)

const (
	// CSRFFieldName is the form field carrying the token.
	CSRFFieldName = "csrf_token"
	// CSRFHeaderName is accepted in place of the form field.
	CSRFHeaderName = "X-CSRF-Token"

	csrfSessionKey = "csrf_token"
	csrfTokenBytes = 32
)

// CSRF protects unsafe methods with a per-session token. The token is put in
// the request context for templates; requests that do not echo it back get the
// CSRF failure page with a 403.
func CSRF(sm session.Manager, render Renderer, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sm.GetString(r.Context(), csrfSessionKey)
			if token == "" {
				var err error
				if token, err = newCSRFToken(); err != nil {
					log.Error(err, "Failed to generate CSRF token")
					RenderError(w, r, render, http.StatusInternalServerError, "Internal Server Error")
					return
				}
				sm.Put(r.Context(), csrfSessionKey, token)
			}
			r = r.WithContext(contextWithCSRFToken(r, token))

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				next.ServeHTTP(w, r)
				return
			}

			sent := r.Header.Get(CSRFHeaderName)
			if sent == "" {
				sent = r.FormValue(CSRFFieldName)
			}
			if subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
				log.Warn("CSRF verification failed for " + r.Method + " " + r.URL.Path)
				renderStatus(w, r, render, http.StatusForbidden, "csrf.html", map[string]interface{}{
					"StatusCode": http.StatusForbidden,
					"Reason":     csrfReason(sent),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func csrfReason(sent string) string {
	if sent == "" {
		return "CSRF token missing."
	}
	return "CSRF token incorrect."
}

func newCSRFToken() (string, error) {
	b := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
