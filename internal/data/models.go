package data

import (
	"errors"
	"fmt"
	"html/template"
	"time"
	"unicode/utf8"
)

var (
	// ErrNotFound is returned (wrapped) when a lookup matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned (wrapped) when a unique constraint is violated.
	ErrDuplicate = errors.New("duplicate record")
)

// CommentPreviewLength is the number of runes kept by Comment.Preview.
const CommentPreviewLength = 30

// User is a registered author or commenter. OIDCSubject binds the account to
// its identity provider subject and is nil for imported accounts.
type User struct {
	ID          int64     `db:"id"`
	Username    string    `db:"username"`
	FirstName   string    `db:"first_name"`
	LastName    string    `db:"last_name"`
	Email       string    `db:"email"`
	CreatedAt   time.Time `db:"created_at"`
	OIDCSubject *string   `db:"oidc_subject"`
}

// FullName returns "first last", or an empty string when neither is set.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}

// OwnerID makes a user's profile its own resource.
func (u *User) OwnerID() int64 { return u.ID }

// DetailURL is the public profile page.
func (u *User) DetailURL() string { return "/profile/" + u.Username }

// Category groups posts. An unpublished category hides all of its posts.
type Category struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Slug        string    `db:"slug"`
	IsPublished bool      `db:"is_published"`
	CreatedAt   time.Time `db:"created_at"`
}

// Location is an optional place attached to a post.
type Location struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	IsPublished bool      `db:"is_published"`
	CreatedAt   time.Time `db:"created_at"`
}

// Post is a blog entry. The joined fields are filled by the read queries only.
type Post struct {
	ID          int64     `db:"id"`
	Title       string    `db:"title"`
	Text        string    `db:"text"`
	PubDate     time.Time `db:"pub_date"`
	Image       string    `db:"image"`
	IsPublished bool      `db:"is_published"`
	CreatedAt   time.Time `db:"created_at"`
	AuthorID    int64     `db:"author_id"`
	CategoryID  *int64    `db:"category_id"`
	LocationID  *int64    `db:"location_id"`

	AuthorUsername      string  `db:"author_username"`
	CategoryTitle       *string `db:"category_title"`
	CategorySlug        *string `db:"category_slug"`
	CategoryIsPublished *bool   `db:"category_is_published"`
	LocationName        *string `db:"location_name"`
	LocationIsPublished *bool   `db:"location_is_published"`
	CommentCount        int     `db:"comment_count"`

	HTMLText template.HTML `db:"-"`
}

// VisibleAt reports whether the post is publicly visible at asOf: published,
// not scheduled after asOf, and either uncategorised or in a published category.
func (p *Post) VisibleAt(asOf time.Time) bool {
	if !p.IsPublished || p.PubDate.After(asOf) {
		return false
	}
	if p.CategoryID == nil {
		return true
	}
	return p.CategoryIsPublished != nil && *p.CategoryIsPublished
}

// PublishedLocation returns the location name, or "" when there is none or it is unpublished.
func (p *Post) PublishedLocation() string {
	if p.LocationName == nil || p.LocationIsPublished == nil || !*p.LocationIsPublished {
		return ""
	}
	return *p.LocationName
}

// OwnerID returns the author's user ID.
func (p *Post) OwnerID() int64 { return p.AuthorID }

// DetailURL is the post's detail page.
func (p *Post) DetailURL() string { return fmt.Sprintf("/posts/%d", p.ID) }

// Comment is a reader's reply to a post.
type Comment struct {
	ID          int64     `db:"id"`
	Text        string    `db:"text"`
	IsPublished bool      `db:"is_published"`
	CreatedAt   time.Time `db:"created_at"`
	AuthorID    int64     `db:"author_id"`
	PostID      int64     `db:"post_id"`

	AuthorUsername string `db:"author_username"`
}

// OwnerID returns the comment author's user ID.
func (c *Comment) OwnerID() int64 { return c.AuthorID }

// DetailURL points at the parent post, where comments are shown.
func (c *Comment) DetailURL() string { return fmt.Sprintf("/posts/%d", c.PostID) }

// Preview returns the first CommentPreviewLength runes of the text.
func (c *Comment) Preview() string {
	if utf8.RuneCountInString(c.Text) <= CommentPreviewLength {
		return c.Text
	}
	return string([]rune(c.Text)[:CommentPreviewLength])
}
