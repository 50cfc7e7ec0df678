package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/service"
	"go-blog-app/internal/session"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"golang.org/x/oauth2"
)

const nextSessionKey = "auth_next"

// Identifier runs the OIDC code flow. *auth.Authenticator implements it.
type Identifier interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Identify(ctx context.Context, code string) (*auth.Identity, error)
}

// UserProvisioner creates the local account on first sign-in.
type UserProvisioner interface {
	EnsureUser(ctx context.Context, in service.SignIn) (*data.User, error)
}

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth     Identifier
	session  session.Manager
	enforcer casbin.IEnforcer
	users    UserProvisioner
	log      logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(a Identifier, sm session.Manager, e casbin.IEnforcer, users UserProvisioner, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: a, session: sm, enforcer: e, users: users, log: log}
}

// handleLogin redirects the user to the OIDC provider to log in.
// It uses a random 'state' string for CSRF protection.
func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	state, err := randString(16)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if next := r.URL.Query().Get("next"); isLocalPath(next) {
		h.session.Put(r.Context(), nextSessionKey, next)
	}
	// Store the state in a short-lived cookie to verify on callback.
	http.SetCookie(w, &http.Cookie{
		Name:     "state",
		Value:    state,
		Path:     "/",
		MaxAge:   int(10 * time.Minute / time.Second),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.auth.AuthCodeURL(state), http.StatusFound)
}

// handleCallback is the redirect URL for the OIDC provider. It verifies the
// sign-in, creates the local account if needed and starts the session.
func (h *AuthHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("state")
	if err != nil {
		http.Error(w, "state cookie not found", http.StatusBadRequest)
		return
	}
	if r.URL.Query().Get("state") != stateCookie.Value {
		http.Error(w, "state did not match", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "state", Path: "/", MaxAge: -1})

	identity, err := h.auth.Identify(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.log.Error(err, "OIDC sign-in failed")
		http.Error(w, "Failed to sign in", http.StatusUnauthorized)
		return
	}

	user, err := h.users.EnsureUser(r.Context(), service.SignIn{
		Subject:   identity.Subject,
		Username:  identity.Username,
		Email:     identity.Email,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	})
	if err != nil {
		h.log.Error(err, "Failed to provision user for subject "+identity.Subject)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if err := auth.GrantAuthor(h.enforcer, user.Username); err != nil {
		h.log.Error(err, "Failed to grant author role")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := h.session.RenewToken(r.Context()); err != nil {
		h.log.Error(err, "Failed to renew session token")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	h.session.Put(r.Context(), session.SubjectKey, user.Username)
	h.log.With(map[string]interface{}{"user": user.Username}).Info("User signed in")

	next := h.session.PopString(r.Context(), nextSessionKey)
	if !isLocalPath(next) {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusFound)
}

// handleLogout ends the session.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Destroy(r.Context()); err != nil {
		h.log.Error(err, "Failed to destroy session")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// isLocalPath accepts only same-site absolute paths as post-login targets.
func isLocalPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.HasPrefix(p, "/\\")
}

// randString is a helper function to generate a random string for the 'state' parameter.
func randString(nByte int) (string, error) {
	b := make([]byte, nByte)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
