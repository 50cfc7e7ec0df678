package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const commentSelect = `SELECT cm.id, cm.text, cm.is_published, cm.created_at, cm.author_id, cm.post_id,
	u.username AS author_username
	FROM comments cm
	JOIN users u ON u.id = cm.author_id`

// SQLCommentRepository is the sqlx implementation of the comment repository.
type SQLCommentRepository struct {
	db *sqlx.DB
}

// NewSQLCommentRepository creates a new SQLCommentRepository.
func NewSQLCommentRepository(db *sqlx.DB) *SQLCommentRepository {
	return &SQLCommentRepository{db: db}
}

// ListComments returns a post's comments, oldest first.
func (r *SQLCommentRepository) ListComments(ctx context.Context, postID int64, publishedOnly bool) ([]*Comment, error) {
	query := commentSelect + " WHERE cm.post_id = ?"
	args := []interface{}{postID}
	if publishedOnly {
		query += " AND cm.is_published = ?"
		args = append(args, true)
	}
	query += " ORDER BY cm.created_at ASC, cm.id ASC"

	comments := []*Comment{}
	if err := r.db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// FindComment resolves a comment by the (post, comment) pair. A comment that
// exists under a different post is reported as not found.
func (r *SQLCommentRepository) FindComment(ctx context.Context, postID, commentID int64) (*Comment, error) {
	var comment Comment
	err := r.db.GetContext(ctx, &comment, commentSelect+" WHERE cm.id = ? AND cm.post_id = ?", commentID, postID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("comment %d on post %d: %w", commentID, postID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find comment: %w", err)
	}
	return &comment, nil
}

// CreateComment inserts a comment and returns its ID.
func (r *SQLCommentRepository) CreateComment(ctx context.Context, comment *Comment) (int64, error) {
	query := `INSERT INTO comments (text, is_published, created_at, author_id, post_id)
		VALUES (:text, :is_published, :created_at, :author_id, :post_id)`
	res, err := r.db.NamedExecContext(ctx, query, comment)
	if err != nil {
		return 0, fmt.Errorf("failed to create comment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get new comment id: %w", err)
	}
	return id, nil
}

// UpdateComment rewrites a comment's text.
func (r *SQLCommentRepository) UpdateComment(ctx context.Context, comment *Comment) error {
	_, err := r.db.ExecContext(ctx, `UPDATE comments SET text = ? WHERE id = ? AND post_id = ?`,
		comment.Text, comment.ID, comment.PostID)
	if err != nil {
		return fmt.Errorf("failed to update comment: %w", err)
	}
	return nil
}

// DeleteComment removes a comment identified by the (post, comment) pair.
func (r *SQLCommentRepository) DeleteComment(ctx context.Context, postID, commentID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ? AND post_id = ?`, commentID, postID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return expectOneRow(result, "comment", commentID)
}

func expectOneRow(result sql.Result, entity string, id int64) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s with id %d: %w", entity, id, ErrNotFound)
	}
	return nil
}

// expectMatched is expectOneRow for updates. MySQL counts only changed rows, so
// a zero count is checked against the table before reporting not found.
func expectMatched(ctx context.Context, db *sqlx.DB, result sql.Result, table, entity string, id int64) error {
	if err := expectOneRow(result, entity, id); !errors.Is(err, ErrNotFound) {
		return err
	}
	var exists bool
	if err := db.GetContext(ctx, &exists, "SELECT EXISTS (SELECT 1 FROM "+table+" WHERE id = ?)", id); err != nil {
		return fmt.Errorf("failed to check %s: %w", entity, err)
	}
	if !exists {
		return fmt.Errorf("%s with id %d: %w", entity, id, ErrNotFound)
	}
	return nil
}
