//go:build integration

package data

import (
	"context"
	"errors"
	"testing"
)

func TestUserRepository_GetBySubject(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLUserRepository(db)
	subject := "sub-ada"
	mustUser(t, db, "imported")

	id, err := repo.Create(context.Background(), &User{Username: "ada", CreatedAt: baseTime, OIDCSubject: &subject})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := repo.GetBySubject(context.Background(), subject)
	if err != nil {
		t.Fatalf("GetBySubject failed: %v", err)
	}
	if found.ID != id || found.Username != "ada" || found.OIDCSubject == nil || *found.OIDCSubject != subject {
		t.Errorf("unexpected user: %+v", found)
	}

	if _, err := repo.GetBySubject(context.Background(), "sub-unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	imported, err := repo.GetByUsername(context.Background(), "imported")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if imported.OIDCSubject != nil {
		t.Errorf("expected no subject on an imported account, got %q", *imported.OIDCSubject)
	}
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLUserRepository(db)
	subject := "sub-ada"
	if _, err := repo.Create(context.Background(), &User{Username: "ada", CreatedAt: baseTime, OIDCSubject: &subject}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	// Accounts without a subject never clash on it.
	mustUser(t, db, "one")
	mustUser(t, db, "two")

	testCases := []struct {
		name string
		user *User
	}{
		{"same username", &User{Username: "ada", CreatedAt: baseTime}},
		{"same subject", &User{Username: "other", CreatedAt: baseTime, OIDCSubject: &subject}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := repo.Create(context.Background(), tc.user); !errors.Is(err, ErrDuplicate) {
				t.Errorf("expected ErrDuplicate, got %v", err)
			}
		})
	}
}

func TestUserRepository_Profile(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSQLUserRepository(db)
	ctx := context.Background()

	alice := mustUser(t, db, "alice")
	if _, err := repo.Create(ctx, &User{Username: "alice", CreatedAt: baseTime}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for a taken username, got %v", err)
	}

	alice.FirstName = "Alice"
	alice.Email = "alice@example.com"
	if err := repo.UpdateProfile(ctx, alice); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	found, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if found.FullName() != "Alice" || found.Email != "alice@example.com" {
		t.Errorf("unexpected profile: %+v", found)
	}
	if _, err := repo.GetByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
