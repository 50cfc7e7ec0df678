package auth

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/jmoiron/sqlx"
	sqlxadapter "github.com/memwey/casbin-sqlx-adapter"
)

// Roles known to the route policies. Signed-in users are enforced as
// UserSubject(username), so no username can name a role.
const (
	RoleAnonymous = "role:anonymous"
	RoleAuthor    = "role:author"
	RoleAdmin     = "role:admin"
)

const userPrefix = "user:"

// UserSubject is the casbin subject of a signed-in user.
func UserSubject(username string) string {
	return userPrefix + username
}

// IsReservedUsername reports whether username would be confused with a role
// or subject name. Such names are never handed out on sign-in.
func IsReservedUsername(username string) bool {
	switch strings.ToLower(username) {
	case "anonymous", "author", "admin":
		return true
	}
	return strings.ContainsRune(username, ':')
}

// routeModel matches a subject (or any role it holds) against anchored
// regular expressions for the request path and method.
const routeModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && regexMatch(r.obj, p.obj) && regexMatch(r.act, p.act)
`

// RouteModel parses the authorization model shared by every enforcer.
func RouteModel() (model.Model, error) {
	m, err := model.NewModelFromString(routeModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse authorization model: %w", err)
	}
	return m, nil
}

// NewEnforcer creates a Casbin enforcer whose policies live in the casbin_rule
// table of the application database, and loads them.
func NewEnforcer(db *sqlx.DB) (*casbin.Enforcer, error) {
	m, err := RouteModel()
	if err != nil {
		return nil, err
	}

	adapter := sqlxadapter.NewAdapterFromOptions(&sqlxadapter.AdapterOptions{
		DB:        db,
		TableName: "casbin_rule",
	})

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create enforcer: %w", err)
	}
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}
	return enforcer, nil
}
