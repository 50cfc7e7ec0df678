// Package fixture loads Django-style JSON dumps ({model, pk, fields} records)
// into the blog database.
package fixture

import (
	"context"
	"encoding/json"
	"fmt"
	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
	"io"
	"strings"
	"time"
)

// Model names understood by Load, in the order they are imported.
const (
	ModelLocation = "blog.location"
	ModelUser     = "auth.user"
	ModelCategory = "blog.category"
	ModelPost     = "blog.post"
)

// Record is one entry of a dump.
type Record struct {
	Model  string          `json:"model"`
	PK     int64           `json:"pk"`
	Fields json.RawMessage `json:"fields"`
}

// timestamp accepts RFC 3339 and the zone-less form Django writes when time
// zone support is off; the latter is read as UTC.
type timestamp struct {
	time.Time
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02"}

func (t *timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}

type locationFields struct {
	Name        string     `json:"name"`
	IsPublished *bool      `json:"is_published"`
	CreatedAt   *timestamp `json:"created_at"`
}

type userFields struct {
	Username   string     `json:"username"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Email      string     `json:"email"`
	DateJoined *timestamp `json:"date_joined"`
}

type categoryFields struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Slug        string     `json:"slug"`
	IsPublished *bool      `json:"is_published"`
	CreatedAt   *timestamp `json:"created_at"`
}

type postFields struct {
	Title       string     `json:"title"`
	Text        string     `json:"text"`
	PubDate     timestamp  `json:"pub_date"`
	Image       string     `json:"image"`
	IsPublished *bool      `json:"is_published"`
	CreatedAt   *timestamp `json:"created_at"`
	Author      int64      `json:"author"`
	Category    *int64     `json:"category"`
	Location    *int64     `json:"location"`
}

// LocationStore saves imported locations.
type LocationStore interface {
	Save(ctx context.Context, location *data.Location) (int64, error)
}

// UserStore creates imported users.
type UserStore interface {
	Create(ctx context.Context, user *data.User) (int64, error)
}

// CategoryStore saves imported categories.
type CategoryStore interface {
	Save(ctx context.Context, category *data.Category) (int64, error)
}

// PostStore creates imported posts.
type PostStore interface {
	CreatePost(ctx context.Context, post *data.Post) (int64, error)
}

// Stores are the repositories the loader writes to.
type Stores struct {
	Locations  LocationStore
	Users      UserStore
	Categories CategoryStore
	Posts      PostStore
}

// Summary counts the rows created per model.
type Summary map[string]int

// Loader imports dumps. Primary keys of the dump are mapped onto the IDs the
// database assigns, so references between records survive the import.
type Loader struct {
	stores Stores
	now    func() time.Time
	log    logger.Logger
}

// NewLoader creates a Loader. now stamps records that carry no creation time.
func NewLoader(stores Stores, now func() time.Time, log logger.Logger) *Loader {
	return &Loader{stores: stores, now: now, log: log}
}

// Load reads a JSON array of records from r. Unknown models are skipped.
func (l *Loader) Load(ctx context.Context, r io.Reader) (Summary, error) {
	var records []Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}

	ids := map[string]map[int64]int64{}
	summary := Summary{}
	for _, model := range []string{ModelLocation, ModelUser, ModelCategory, ModelPost} {
		ids[model] = map[int64]int64{}
		for _, rec := range records {
			if rec.Model != model {
				continue
			}
			id, err := l.create(ctx, rec, ids)
			if err != nil {
				return summary, fmt.Errorf("%s pk=%d: %w", rec.Model, rec.PK, err)
			}
			ids[model][rec.PK] = id
			summary[model]++
		}
	}

	for _, rec := range records {
		if _, known := ids[rec.Model]; !known {
			l.log.Warn("Skipping unsupported model " + rec.Model)
		}
	}
	return summary, nil
}

func (l *Loader) create(ctx context.Context, rec Record, ids map[string]map[int64]int64) (int64, error) {
	switch rec.Model {
	case ModelLocation:
		var f locationFields
		if err := json.Unmarshal(rec.Fields, &f); err != nil {
			return 0, err
		}
		return l.stores.Locations.Save(ctx, &data.Location{
			Name: f.Name, IsPublished: flag(f.IsPublished), CreatedAt: l.stamp(f.CreatedAt),
		})
	case ModelUser:
		var f userFields
		if err := json.Unmarshal(rec.Fields, &f); err != nil {
			return 0, err
		}
		return l.stores.Users.Create(ctx, &data.User{
			Username: f.Username, FirstName: f.FirstName, LastName: f.LastName, Email: f.Email,
			CreatedAt: l.stamp(f.DateJoined),
		})
	case ModelCategory:
		var f categoryFields
		if err := json.Unmarshal(rec.Fields, &f); err != nil {
			return 0, err
		}
		return l.stores.Categories.Save(ctx, &data.Category{
			Title: f.Title, Description: f.Description, Slug: f.Slug,
			IsPublished: flag(f.IsPublished), CreatedAt: l.stamp(f.CreatedAt),
		})
	default:
		var f postFields
		if err := json.Unmarshal(rec.Fields, &f); err != nil {
			return 0, err
		}
		if f.PubDate.IsZero() {
			return 0, fmt.Errorf("missing pub_date")
		}
		author, ok := ids[ModelUser][f.Author]
		if !ok {
			return 0, fmt.Errorf("unknown author pk %d", f.Author)
		}
		category, err := reference(ids[ModelCategory], f.Category, "category")
		if err != nil {
			return 0, err
		}
		location, err := reference(ids[ModelLocation], f.Location, "location")
		if err != nil {
			return 0, err
		}
		return l.stores.Posts.CreatePost(ctx, &data.Post{
			Title: f.Title, Text: f.Text, PubDate: f.PubDate.UTC(), Image: f.Image,
			IsPublished: flag(f.IsPublished), CreatedAt: l.stamp(f.CreatedAt),
			AuthorID: author, CategoryID: category, LocationID: location,
		})
	}
}

func (l *Loader) stamp(t *timestamp) time.Time {
	if t == nil || t.IsZero() {
		return l.now().UTC()
	}
	return t.UTC()
}

// flag defaults a missing is_published to true.
func flag(b *bool) bool {
	return b == nil || *b
}

func reference(ids map[int64]int64, pk *int64, what string) (*int64, error) {
	if pk == nil {
		return nil, nil
	}
	id, ok := ids[*pk]
	if !ok {
		return nil, fmt.Errorf("unknown %s pk %d", what, *pk)
	}
	return &id, nil
}
