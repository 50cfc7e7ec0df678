package auth

import (
	"fmt"
	"go-blog-app/internal/logger"

	"github.com/casbin/casbin/v2"
)

const (
	read      = "^GET$"
	readWrite = "^(GET|POST)$"
	write     = "^POST$"
)

// defaultPolicies are the route rules every installation starts with.
// Ownership of individual posts and comments is checked by the services, not here.
var defaultPolicies = [][]string{
	// Anyone can read the blog and sign in.
	{RoleAnonymous, `^/$`, read},
	{RoleAnonymous, `^/posts/[0-9]+$`, read},
	{RoleAnonymous, `^/category/[^/]+$`, read},
	{RoleAnonymous, `^/profile/[^/]+$`, read},
	{RoleAnonymous, `^/auth/(login|callback|logout)$`, read},
	{RoleAnonymous, `^/(robots\.txt|sitemap\.xml)$`, read},

	// Signed-in users write posts and comments and edit their profile.
	{RoleAuthor, `^/posts/new$`, readWrite},
	{RoleAuthor, `^/posts/[0-9]+/(edit|delete)$`, readWrite},
	{RoleAuthor, `^/posts/[0-9]+/comment$`, write},
	{RoleAuthor, `^/posts/[0-9]+/comments/[0-9]+/(edit|delete)$`, readWrite},
	{RoleAuthor, `^/profile/[^/]+/edit$`, readWrite},

	// Admins curate categories and locations.
	{RoleAdmin, `^/admin/(categories|locations)(/.*)?$`, readWrite},
}

// SeedDefaultPolicies adds any missing default rule, the role hierarchy
// admin -> author -> anonymous, and the admin role for each configured admin.
// It is idempotent and runs on every start.
func SeedDefaultPolicies(e casbin.IEnforcer, admins []string, log logger.Logger) {
	log.Info("Seeding default authorization policies...")

	for _, p := range defaultPolicies {
		if has, _ := e.HasPolicy(p); !has {
			if _, err := e.AddPolicy(p); err != nil {
				log.Error(err, fmt.Sprintf("Failed to add policy %v", p))
			}
		}
	}

	grant(e, RoleAuthor, RoleAnonymous, log)
	grant(e, RoleAdmin, RoleAuthor, log)
	for _, username := range admins {
		grant(e, UserSubject(username), RoleAdmin, log)
	}
	log.Info("Policy seeding complete.")
}

// GrantAuthor gives a signed-in user the author role.
func GrantAuthor(e casbin.IEnforcer, username string) error {
	subject := UserSubject(username)
	if has, _ := e.HasRoleForUser(subject, RoleAuthor); has {
		return nil
	}
	if _, err := e.AddRoleForUser(subject, RoleAuthor); err != nil {
		return fmt.Errorf("failed to grant author role to %s: %w", username, err)
	}
	return nil
}

func grant(e casbin.IEnforcer, subject, role string, log logger.Logger) {
	if has, _ := e.HasRoleForUser(subject, role); has {
		return
	}
	if _, err := e.AddRoleForUser(subject, role); err != nil {
		log.Error(err, fmt.Sprintf("Failed to add role '%s' -> '%s'", subject, role))
	}
}
