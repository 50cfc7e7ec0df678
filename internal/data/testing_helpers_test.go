//go:build integration

package data

import (
	"context"
	"go-blog-app/internal/config"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB creates a new in-memory SQLite database with all migrations applied.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := NewDB(config.DBConfig{Driver: "sqlite3", DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}
	if err := ApplyMigrations(db, "sqlite3"); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func mustUser(t *testing.T, db *sqlx.DB, username string) *User {
	t.Helper()
	u := &User{Username: username, CreatedAt: baseTime}
	id, err := NewSQLUserRepository(db).Create(context.Background(), u)
	if err != nil {
		t.Fatalf("failed to create user %s: %v", username, err)
	}
	u.ID = id
	return u
}

func mustCategory(t *testing.T, db *sqlx.DB, slug string, published bool) *Category {
	t.Helper()
	c := &Category{Title: slug, Slug: slug, IsPublished: published, CreatedAt: baseTime}
	id, err := NewCategoryRepository(db).Save(context.Background(), c)
	if err != nil {
		t.Fatalf("failed to create category %s: %v", slug, err)
	}
	c.ID = id
	return c
}

func mustLocation(t *testing.T, db *sqlx.DB, name string) *Location {
	t.Helper()
	l := &Location{Name: name, IsPublished: true, CreatedAt: baseTime}
	id, err := NewLocationRepository(db).Save(context.Background(), l)
	if err != nil {
		t.Fatalf("failed to create location %s: %v", name, err)
	}
	l.ID = id
	return l
}

func mustPost(t *testing.T, db *sqlx.DB, p *Post) *Post {
	t.Helper()
	if p.Text == "" {
		p.Text = "text of " + p.Title
	}
	p.CreatedAt = baseTime
	id, err := NewSQLPostRepository(db).CreatePost(context.Background(), p)
	if err != nil {
		t.Fatalf("failed to create post %s: %v", p.Title, err)
	}
	p.ID = id
	return p
}

func mustComment(t *testing.T, db *sqlx.DB, postID, authorID int64, text string, at time.Time) *Comment {
	t.Helper()
	c := &Comment{Text: text, IsPublished: true, CreatedAt: at, AuthorID: authorID, PostID: postID}
	id, err := NewSQLCommentRepository(db).CreateComment(context.Background(), c)
	if err != nil {
		t.Fatalf("failed to create comment: %v", err)
	}
	c.ID = id
	return c
}

func postIDs(posts []*Post) []int64 {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

func sameIDs(got, want []int64) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
