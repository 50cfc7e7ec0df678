package service

import (
	"context"
	"go-blog-app/internal/data"
	"html/template"
	"io"
)

// PostRepository defines the database operations on posts.
type PostRepository interface {
	FindVisiblePosts(ctx context.Context, f data.PostFilter) ([]*data.Post, error)
	CountPosts(ctx context.Context, f data.PostFilter) (int, error)
	GetPostByID(ctx context.Context, id int64) (*data.Post, error)
	CreatePost(ctx context.Context, post *data.Post) (int64, error)
	UpdatePost(ctx context.Context, post *data.Post) error
	DeletePost(ctx context.Context, id int64) error
}

// CommentRepository defines the database operations on comments.
type CommentRepository interface {
	ListComments(ctx context.Context, postID int64, publishedOnly bool) ([]*data.Comment, error)
	FindComment(ctx context.Context, postID, commentID int64) (*data.Comment, error)
	CreateComment(ctx context.Context, comment *data.Comment) (int64, error)
	UpdateComment(ctx context.Context, comment *data.Comment) error
	DeleteComment(ctx context.Context, postID, commentID int64) error
}

// CategoryRepository defines the database operations on categories.
type CategoryRepository interface {
	GetBySlug(ctx context.Context, slug string) (*data.Category, error)
	GetByID(ctx context.Context, id int64) (*data.Category, error)
	GetAll(ctx context.Context) ([]*data.Category, error)
	Save(ctx context.Context, category *data.Category) (int64, error)
	SetPublished(ctx context.Context, id int64, published bool) error
	Delete(ctx context.Context, id int64) error
}

// LocationRepository defines the database operations on locations.
type LocationRepository interface {
	GetByID(ctx context.Context, id int64) (*data.Location, error)
	GetAll(ctx context.Context) ([]*data.Location, error)
	Save(ctx context.Context, location *data.Location) (int64, error)
	SetPublished(ctx context.Context, id int64, published bool) error
	Delete(ctx context.Context, id int64) error
}

// UserRepository defines the database operations on users.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*data.User, error)
	GetBySubject(ctx context.Context, subject string) (*data.User, error)
	GetByID(ctx context.Context, id int64) (*data.User, error)
	Create(ctx context.Context, user *data.User) (int64, error)
	UpdateProfile(ctx context.Context, user *data.User) error
}

// Renderer turns stored post text into display HTML. Post text is stored as
// written and sanitised only when rendered.
type Renderer interface {
	Render(src string) (template.HTML, error)
}

// ImageStore keeps uploaded post images.
type ImageStore interface {
	Save(originalName string, r io.Reader) (string, error)
	Delete(name string) error
}
