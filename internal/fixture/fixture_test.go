//go:build integration

package fixture

import (
	"context"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
)

var importTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := data.NewDB(config.DBConfig{Driver: "sqlite3", DSN: "file::memory:"})
	if err != nil {
		t.Fatalf("Failed to connect to sqlite test database: %v", err)
	}
	if err := data.ApplyMigrations(db, "sqlite3"); err != nil {
		t.Fatalf("Failed to apply migrations: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestLoader(db *sqlx.DB) *Loader {
	return NewLoader(Stores{
		Locations:  data.NewLocationRepository(db),
		Users:      data.NewSQLUserRepository(db),
		Categories: data.NewCategoryRepository(db),
		Posts:      data.NewSQLPostRepository(db),
	}, func() time.Time { return importTime }, logger.Nop())
}

// Records appear out of dependency order and with primary keys that differ
// from the IDs the database will assign.
const dump = `[
  {"model": "blog.post", "pk": 1, "fields": {"title": "Day one", "text": "We set off.", "pub_date": "2023-06-01T09:00:00Z",
   "author": 7, "category": 3, "location": 5, "is_published": true, "created_at": "2023-06-01T08:30:00"}},
  {"model": "blog.post", "pk": 2, "fields": {"title": "Loose note", "text": "No category.", "pub_date": "2023-06-02T09:00:00+02:00",
   "author": 7, "category": null, "location": null, "is_published": false}},
  {"model": "blog.category", "pk": 3, "fields": {"title": "Travel", "description": "Trips", "slug": "travel", "is_published": true}},
  {"model": "auth.user", "pk": 7, "fields": {"username": "ada", "first_name": "Ada", "last_name": "Lovelace", "email": "ada@example.com",
   "password": "ignored", "date_joined": "2023-01-01T00:00:00Z"}},
  {"model": "blog.location", "pk": 5, "fields": {"name": "Lisbon", "is_published": true}},
  {"model": "sessions.session", "pk": 1, "fields": {}}
]`

func TestLoad(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	summary, err := newTestLoader(db).Load(ctx, strings.NewReader(dump))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Summary{ModelLocation: 1, ModelUser: 1, ModelCategory: 1, ModelPost: 2}
	for model, n := range want {
		if summary[model] != n {
			t.Errorf("expected %d %s records, got %d", n, model, summary[model])
		}
	}

	user, err := data.NewSQLUserRepository(db).GetByUsername(ctx, "ada")
	if err != nil {
		t.Fatalf("imported user not found: %v", err)
	}
	if user.FullName() != "Ada Lovelace" {
		t.Errorf("unexpected user name %q", user.FullName())
	}

	posts, err := data.NewSQLPostRepository(db).FindVisiblePosts(ctx, data.PostFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	byTitle := map[string]*data.Post{}
	for _, p := range posts {
		byTitle[p.Title] = p
	}

	dayOne := byTitle["Day one"]
	if dayOne == nil || dayOne.AuthorID != user.ID {
		t.Fatalf("expected Day one to be written by ada, got %+v", dayOne)
	}
	if dayOne.CategorySlug == nil || *dayOne.CategorySlug != "travel" {
		t.Errorf("expected Day one in travel, got %v", dayOne.CategorySlug)
	}
	if !dayOne.CreatedAt.Equal(time.Date(2023, 6, 1, 8, 30, 0, 0, time.UTC)) {
		t.Errorf("expected a zone-less created_at read as UTC, got %v", dayOne.CreatedAt)
	}
	if dayOne.PublishedLocation() != "Lisbon" {
		t.Errorf("expected Day one in Lisbon, got %q", dayOne.PublishedLocation())
	}

	note := byTitle["Loose note"]
	if note == nil || note.IsPublished || note.CategoryID != nil {
		t.Fatalf("unexpected Loose note %+v", note)
	}
	if !note.PubDate.Equal(time.Date(2023, 6, 2, 7, 0, 0, 0, time.UTC)) {
		t.Errorf("expected pub_date converted to UTC, got %v", note.PubDate)
	}
	if !note.CreatedAt.Equal(importTime) {
		t.Errorf("expected missing created_at to use the import time, got %v", note.CreatedAt)
	}
}

func TestLoad_UnknownReference(t *testing.T) {
	db := setupTestDB(t)
	bad := `[{"model": "blog.post", "pk": 1, "fields": {"title": "Orphan", "text": "x", "pub_date": "2023-06-01T09:00:00Z", "author": 99}}]`

	_, err := newTestLoader(db).Load(context.Background(), strings.NewReader(bad))
	if err == nil || !strings.Contains(err.Error(), "unknown author pk 99") {
		t.Fatalf("expected unknown author error, got %v", err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	db := setupTestDB(t)
	if _, err := newTestLoader(db).Load(context.Background(), strings.NewReader("{")); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`"2023-06-01T09:00:00Z"`, time.Date(2023, 6, 1, 9, 0, 0, 0, time.UTC)},
		{`"2023-06-01T09:00:00.250+02:00"`, time.Date(2023, 6, 1, 7, 0, 0, 250e6, time.UTC)},
		{`"2023-06-01T09:00:00"`, time.Date(2023, 6, 1, 9, 0, 0, 0, time.UTC)},
		{`"2023-06-01"`, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)},
		{`null`, time.Time{}},
	}
	for _, tt := range tests {
		var ts timestamp
		if err := ts.UnmarshalJSON([]byte(tt.in)); err != nil {
			t.Errorf("%s: unexpected error %v", tt.in, err)
			continue
		}
		if !ts.Equal(tt.want) {
			t.Errorf("%s: got %v, want %v", tt.in, ts.Time, tt.want)
		}
	}

	var ts timestamp
	if err := ts.UnmarshalJSON([]byte(`"June 1st"`)); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
