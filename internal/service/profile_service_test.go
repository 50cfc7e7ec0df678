//go:build unit

package service

import (
	"context"
	"errors"
	"go-blog-app/internal/data"
	"strings"
	"testing"
)

func TestProfileService_Profile(t *testing.T) {
	owner := &data.User{ID: 1, Username: "owner"}

	testCases := []struct {
		name           string
		viewer         *data.User
		wantVisibility bool
	}{
		{"owner sees every post", owner, false},
		{"another user sees visible posts", &data.User{ID: 2, Username: "other"}, true},
		{"anonymous sees visible posts", nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			posts := newMockPostRepository()
			posts.total = 3
			svc := NewProfileService(newMockUserRepository(owner), posts, testClock)

			user, page, err := svc.Profile(context.Background(), "owner", tc.viewer, "")
			if err != nil {
				t.Fatalf("Profile failed: %v", err)
			}
			if user.ID != owner.ID || page.Number != 1 {
				t.Errorf("unexpected profile result: %+v page %d", user, page.Number)
			}
			if got := posts.lastFilter.Visibility != nil; got != tc.wantVisibility {
				t.Errorf("visibility predicate applied = %v; want %v", got, tc.wantVisibility)
			}
			if posts.lastFilter.AuthorID == nil || *posts.lastFilter.AuthorID != owner.ID {
				t.Errorf("expected posts filtered by author %d", owner.ID)
			}
		})
	}
}

func TestProfileService_Profile_UnknownUser(t *testing.T) {
	svc := NewProfileService(newMockUserRepository(), newMockPostRepository(), testClock)
	if _, _, err := svc.Profile(context.Background(), "ghost", nil, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProfileService_UpdateProfile(t *testing.T) {
	owner := &data.User{ID: 1, Username: "owner"}

	t.Run("non-owner is forbidden", func(t *testing.T) {
		users := newMockUserRepository(owner)
		svc := NewProfileService(users, newMockPostRepository(), testClock)
		_, err := svc.UpdateProfile(context.Background(), "owner", &data.User{ID: 2}, ProfileInput{FirstName: "X"})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
		if users.updated != nil {
			t.Error("expected no update")
		}
	})

	t.Run("invalid email", func(t *testing.T) {
		svc := NewProfileService(newMockUserRepository(owner), newMockPostRepository(), testClock)
		_, err := svc.UpdateProfile(context.Background(), "owner", owner, ProfileInput{Email: "not-an-email"})
		verr, ok := asValidationError(err)
		if !ok || verr.Fields["email"] == "" {
			t.Fatalf("expected an email validation error, got %v", err)
		}
	})

	t.Run("owner updates", func(t *testing.T) {
		users := newMockUserRepository(owner)
		svc := NewProfileService(users, newMockPostRepository(), testClock)
		user, err := svc.UpdateProfile(context.Background(), "owner", owner,
			ProfileInput{FirstName: " Ada ", LastName: "Lovelace", Email: "ada@example.com"})
		if err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		if user.FullName() != "Ada Lovelace" || users.updated == nil {
			t.Errorf("expected the profile to be saved, got %+v", user)
		}
	})
}

func TestProfileService_EnsureUser(t *testing.T) {
	t.Run("creates on first sign-in", func(t *testing.T) {
		users := newMockUserRepository()
		svc := NewProfileService(users, newMockPostRepository(), testClock)

		user, err := svc.EnsureUser(context.Background(), SignIn{Subject: "s1", Username: "newbie", Email: "n@example.com", FirstName: "New", LastName: "Bie"})
		if err != nil {
			t.Fatalf("EnsureUser failed: %v", err)
		}
		if user.ID == 0 || !user.CreatedAt.Equal(testNow) || user.Username != "newbie" {
			t.Errorf("expected a stored user created now, got %+v", user)
		}
		if user.OIDCSubject == nil || *user.OIDCSubject != "s1" {
			t.Errorf("expected the subject to be stored, got %v", user.OIDCSubject)
		}

		// The provider may report a new preferred name; the subject still finds the account.
		again, err := svc.EnsureUser(context.Background(), SignIn{Subject: "s1", Username: "renamed"})
		if err != nil {
			t.Fatalf("EnsureUser failed: %v", err)
		}
		if again.ID != user.ID || users.createCalls != 1 {
			t.Errorf("expected the existing user to be reused, got %+v after %d creates", again, users.createCalls)
		}
	})

	t.Run("same preferred name for two subjects", func(t *testing.T) {
		users := newMockUserRepository()
		svc := NewProfileService(users, newMockPostRepository(), testClock)

		first, err := svc.EnsureUser(context.Background(), SignIn{Subject: "corp|alice", Username: "alice"})
		if err != nil {
			t.Fatalf("EnsureUser failed: %v", err)
		}
		second, err := svc.EnsureUser(context.Background(), SignIn{Subject: "gmail|alice", Username: "alice"})
		if err != nil {
			t.Fatalf("EnsureUser failed: %v", err)
		}
		if first.ID == second.ID {
			t.Fatalf("expected separate accounts, both got id %d", first.ID)
		}
		if first.Username != "alice" || second.Username != "alice-2" {
			t.Errorf("want usernames alice and alice-2; got %s and %s", first.Username, second.Username)
		}
	})

	t.Run("imported account is not claimed by name", func(t *testing.T) {
		users := newMockUserRepository(&data.User{ID: 1, Username: "ada"})
		svc := NewProfileService(users, newMockPostRepository(), testClock)

		user, err := svc.EnsureUser(context.Background(), SignIn{Subject: "s1", Username: "ada"})
		if err != nil {
			t.Fatalf("EnsureUser failed: %v", err)
		}
		if user.ID == 1 || user.Username != "ada-2" {
			t.Errorf("expected a new account ada-2, got %+v", user)
		}
	})

	t.Run("reserved names are replaced", func(t *testing.T) {
		svc := NewProfileService(newMockUserRepository(), newMockPostRepository(), testClock)
		for _, name := range []string{"admin", "anonymous", "role:admin", ""} {
			user, err := svc.EnsureUser(context.Background(), SignIn{Subject: "sub-" + name, Username: name})
			if err != nil {
				t.Fatalf("EnsureUser(%q) failed: %v", name, err)
			}
			if !strings.HasPrefix(user.Username, "user") {
				t.Errorf("EnsureUser(%q) gave username %q", name, user.Username)
			}
		}
	})

	t.Run("missing subject", func(t *testing.T) {
		svc := NewProfileService(newMockUserRepository(), newMockPostRepository(), testClock)
		if _, err := svc.EnsureUser(context.Background(), SignIn{Username: "ada"}); err == nil {
			t.Error("expected an error for a sign-in without a subject")
		}
	})

	t.Run("create failure is returned", func(t *testing.T) {
		users := newMockUserRepository()
		users.createErr = errors.New("disk full")
		svc := NewProfileService(users, newMockPostRepository(), testClock)

		if _, err := svc.EnsureUser(context.Background(), SignIn{Subject: "s1", Username: "racer"}); err == nil || users.createCalls != 1 {
			t.Errorf("expected the create error after one attempt, got %v after %d", err, users.createCalls)
		}
	})
}
