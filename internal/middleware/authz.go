package middleware

import (
	"context"
	"errors"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/session"
	"net/http"
	"net/url"

	"github.com/casbin/casbin/v2"
)

// UserLookup resolves a session subject to its account.
type UserLookup interface {
	UserByUsername(ctx context.Context, username string) (*data.User, error)
}

// Authorizer creates a new middleware for authorization.
// It resolves the requester from the session, stores it in the request context
// and checks the route against the Casbin policies. Denied visitors who are not
// signed in are sent to the login page; everyone else gets a 403 page.
func Authorizer(e casbin.IEnforcer, sm session.Manager, users UserLookup, render Renderer, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userInfo := &UserInfo{Subject: AnonymousSubject}
			if username := sm.GetString(r.Context(), session.SubjectKey); username != "" {
				user, err := users.UserByUsername(r.Context(), username)
				switch {
				case err == nil:
					userInfo = &UserInfo{Subject: auth.UserSubject(user.Username), User: user}
				case errors.Is(err, data.ErrNotFound):
					// The account is gone; drop the stale session entry.
					sm.Remove(r.Context(), session.SubjectKey)
				default:
					log.Error(err, "Failed to resolve session user")
					RenderError(w, r, render, http.StatusInternalServerError, "Internal Server Error")
					return
				}
			}
			r = r.WithContext(SetUserInfo(r.Context(), userInfo))

			allowed, err := e.Enforce(userInfo.Subject, r.URL.Path, r.Method)
			if err != nil {
				log.Error(err, "Authorization error")
				RenderError(w, r, render, http.StatusInternalServerError, "Internal Server Error")
				return
			}

			if !allowed {
				if !userInfo.IsAuthenticated() {
					http.Redirect(w, r, "/auth/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
					return
				}
				RenderError(w, r, render, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
