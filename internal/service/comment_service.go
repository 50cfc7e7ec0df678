package service

import (
	"context"
	"go-blog-app/internal/data"
	"strings"
)

// CommentInput is the comment form.
type CommentInput struct {
	Text string `form:"text" validate:"required"`
}

// CommentService holds the rules for commenting on posts.
type CommentService struct {
	posts    PostRepository
	comments CommentRepository
	clock    Clock
}

// NewCommentService creates a new CommentService.
func NewCommentService(posts PostRepository, comments CommentRepository, clock Clock) *CommentService {
	return &CommentService{posts: posts, comments: comments, clock: clock}
}

// Add attaches a new comment by actor to a post the actor can see.
func (s *CommentService) Add(ctx context.Context, postID int64, actor *data.User, in CommentInput) (*data.Comment, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, lookup(err)
	}
	now := s.clock.now()
	if !post.VisibleAt(now) && !IsOwner(actor, post) {
		return nil, ErrNotFound
	}

	in.Text = strings.TrimSpace(in.Text)
	if err := validateInput(in).orNil(); err != nil {
		return nil, err
	}

	comment := &data.Comment{
		Text:           in.Text,
		IsPublished:    true,
		CreatedAt:      now,
		AuthorID:       actor.ID,
		PostID:         post.ID,
		AuthorUsername: actor.Username,
	}
	if comment.ID, err = s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// CommentForEdit loads a comment for its edit form. Non-authors are redirected to the post.
func (s *CommentService) CommentForEdit(ctx context.Context, postID, commentID int64, actor *data.User) (*data.Comment, error) {
	return s.owned(ctx, postID, commentID, actor, RedirectToDetail)
}

// CommentForDelete loads a comment for its delete confirmation. Non-authors are refused.
func (s *CommentService) CommentForDelete(ctx context.Context, postID, commentID int64, actor *data.User) (*data.Comment, error) {
	return s.owned(ctx, postID, commentID, actor, Reject)
}

func (s *CommentService) owned(ctx context.Context, postID, commentID int64, actor *data.User, policy Policy) (*data.Comment, error) {
	comment, err := s.comments.FindComment(ctx, postID, commentID)
	if err != nil {
		return nil, lookup(err)
	}
	if err := RequireOwner(actor, comment, policy); err != nil {
		return nil, err
	}
	return comment, nil
}

// Edit rewrites a comment's text.
func (s *CommentService) Edit(ctx context.Context, postID, commentID int64, actor *data.User, in CommentInput) (*data.Comment, error) {
	comment, err := s.CommentForEdit(ctx, postID, commentID, actor)
	if err != nil {
		return nil, err
	}
	in.Text = strings.TrimSpace(in.Text)
	if err := validateInput(in).orNil(); err != nil {
		return nil, err
	}
	comment.Text = in.Text
	if err := s.comments.UpdateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, postID, commentID int64, actor *data.User) error {
	comment, err := s.CommentForDelete(ctx, postID, commentID, actor)
	if err != nil {
		return err
	}
	return lookup(s.comments.DeleteComment(ctx, comment.PostID, comment.ID))
}
