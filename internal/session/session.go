package session

import (
	"context"
	"net/http"
)

// SubjectKey is the session key holding the signed-in username.
const SubjectKey = "user_subject"

// Manager is an interface that abstracts the session management implementation.
// *scs.SessionManager satisfies it; tests use a stub.
type Manager interface {
	LoadAndSave(next http.Handler) http.Handler
	Put(ctx context.Context, key string, val interface{})
	GetString(ctx context.Context, key string) string
	PopString(ctx context.Context, key string) string
	Remove(ctx context.Context, key string)
	RenewToken(ctx context.Context) error
	Destroy(ctx context.Context) error
}
