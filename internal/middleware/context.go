package middleware

import (
	"context"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/data"
	"net/http"
)

// contextKey defines a custom type for context keys to avoid collisions.
type contextKey string

const (
	userContextKey = contextKey("user")
	csrfContextKey = contextKey("csrf")
)

// AnonymousSubject is the casbin subject used for visitors who are not signed in.
const AnonymousSubject = auth.RoleAnonymous

// UserInfo is the requester as resolved from the session.
type UserInfo struct {
	// Subject is what the enforcer sees: auth.UserSubject(username) or AnonymousSubject.
	Subject string
	// User is nil for anonymous visitors.
	User *data.User
}

// IsAuthenticated reports whether the requester is signed in.
func (u *UserInfo) IsAuthenticated() bool {
	return u != nil && u.User != nil
}

// GetUserInfo retrieves the user information from the request context.
func GetUserInfo(ctx context.Context) *UserInfo {
	if userInfo, ok := ctx.Value(userContextKey).(*UserInfo); ok {
		return userInfo
	}
	return &UserInfo{Subject: AnonymousSubject}
}

// SetUserInfo adds the user information to the request context.
func SetUserInfo(ctx context.Context, userInfo *UserInfo) context.Context {
	return context.WithValue(ctx, userContextKey, userInfo)
}

// CurrentUser returns the signed-in user, or nil.
func CurrentUser(ctx context.Context) *data.User {
	return GetUserInfo(ctx).User
}

// CSRFToken returns the token forms must echo back, or "" outside the CSRF middleware.
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfContextKey).(string)
	return token
}

func contextWithCSRFToken(r *http.Request, token string) context.Context {
	return context.WithValue(r.Context(), csrfContextKey, token)
}
