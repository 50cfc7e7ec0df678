package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Visibility is the public visibility predicate applied to post queries.
type Visibility struct {
	// PublishedOnly keeps posts whose own is_published flag is set.
	PublishedOnly bool
	// AsOf is the upper bound for pub_date. The zero value means "now" at query time.
	AsOf time.Time
	// CategoryPublished keeps uncategorised posts and posts in a published category.
	CategoryPublished bool
}

// PublicVisibility is the predicate used for every anonymous or non-author view.
func PublicVisibility(asOf time.Time) *Visibility {
	return &Visibility{PublishedOnly: true, AsOf: asOf, CategoryPublished: true}
}

func (v *Visibility) asOf() time.Time {
	if v.AsOf.IsZero() {
		return time.Now().UTC()
	}
	return v.AsOf.UTC()
}

// PostFilter narrows a post listing. A nil Visibility applies no visibility predicate.
type PostFilter struct {
	Visibility   *Visibility
	CategorySlug string
	AuthorID     *int64
	Limit        int
	Offset       int
}

func (f PostFilter) where() (string, []interface{}) {
	var clauses []string
	var args []interface{}
	if v := f.Visibility; v != nil {
		if v.PublishedOnly {
			clauses = append(clauses, "p.is_published = ?")
			args = append(args, true)
		}
		clauses = append(clauses, "p.pub_date <= ?")
		args = append(args, v.asOf())
		if v.CategoryPublished {
			clauses = append(clauses, "(p.category_id IS NULL OR c.is_published = ?)")
			args = append(args, true)
		}
	}
	if f.CategorySlug != "" {
		clauses = append(clauses, "c.slug = ?")
		args = append(args, f.CategorySlug)
	}
	if f.AuthorID != nil {
		clauses = append(clauses, "p.author_id = ?")
		args = append(args, *f.AuthorID)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

const postFrom = `
	FROM posts p
	JOIN users u ON u.id = p.author_id
	LEFT JOIN categories c ON c.id = p.category_id
	LEFT JOIN locations l ON l.id = p.location_id`

const postSelect = `SELECT p.id, p.title, p.text, p.pub_date, p.image, p.is_published, p.created_at,
	p.author_id, p.category_id, p.location_id,
	u.username AS author_username,
	c.title AS category_title, c.slug AS category_slug, c.is_published AS category_is_published,
	l.name AS location_name, l.is_published AS location_is_published,
	(SELECT COUNT(*) FROM comments cm WHERE cm.post_id = p.id) AS comment_count` + postFrom

// SQLPostRepository is the sqlx implementation of the post repository.
type SQLPostRepository struct {
	db *sqlx.DB
}

// NewSQLPostRepository creates a new SQLPostRepository.
func NewSQLPostRepository(db *sqlx.DB) *SQLPostRepository {
	return &SQLPostRepository{db: db}
}

// FindVisiblePosts returns the posts matching the filter, newest publication first,
// each joined with its author, category and location and annotated with its comment count.
func (r *SQLPostRepository) FindVisiblePosts(ctx context.Context, f PostFilter) ([]*Post, error) {
	where, args := f.where()
	query := postSelect + where + " ORDER BY p.pub_date DESC, p.id DESC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	posts := []*Post{}
	if err := r.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to find posts: %w", err)
	}
	return posts, nil
}

// CountPosts returns how many posts match the filter, ignoring Limit and Offset.
func (r *SQLPostRepository) CountPosts(ctx context.Context, f PostFilter) (int, error) {
	where, args := f.where()
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*)"+postFrom+where, args...); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// GetPostByID retrieves a single post regardless of its visibility.
func (r *SQLPostRepository) GetPostByID(ctx context.Context, id int64) (*Post, error) {
	var post Post
	if err := r.db.GetContext(ctx, &post, postSelect+" WHERE p.id = ?", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post with id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}
	return &post, nil
}

// CreatePost inserts a new post and returns its ID.
func (r *SQLPostRepository) CreatePost(ctx context.Context, post *Post) (int64, error) {
	query := `INSERT INTO posts (title, text, pub_date, image, is_published, created_at, author_id, category_id, location_id)
		VALUES (:title, :text, :pub_date, :image, :is_published, :created_at, :author_id, :category_id, :location_id)`
	res, err := r.db.NamedExecContext(ctx, query, post)
	if err != nil {
		return 0, fmt.Errorf("failed to execute create post query: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get new post id: %w", err)
	}
	return id, nil
}

// UpdatePost updates the editable columns of an existing post.
func (r *SQLPostRepository) UpdatePost(ctx context.Context, post *Post) error {
	query := `UPDATE posts SET title = :title, text = :text, pub_date = :pub_date, image = :image,
		is_published = :is_published, category_id = :category_id, location_id = :location_id
		WHERE id = :id`
	// MySQL reports unchanged rows as unaffected, so the row count is not checked here;
	// callers load the post before updating it.
	if _, err := r.db.NamedExecContext(ctx, query, post); err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	return nil
}

// DeletePost removes a post; its comments go with it through the foreign key.
func (r *SQLPostRepository) DeletePost(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return expectOneRow(result, "post", id)
}
