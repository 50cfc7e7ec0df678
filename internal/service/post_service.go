package service

import (
	"context"
	"errors"
	"fmt"
	"go-blog-app/internal/data"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/media"
	"io"
	"strconv"
	"strings"
	"time"
)

// PubDateLayout is the format of the pub_date form field. Values are read as UTC.
const PubDateLayout = "2006-01-02T15:04"

// Upload is an image file attached to a form.
type Upload struct {
	Filename string
	Body     io.Reader
}

// PostInput is the post create/edit form.
type PostInput struct {
	Title       string  `form:"title" validate:"required,max=256"`
	Text        string  `form:"text" validate:"required"`
	PubDate     string  `form:"pub_date" validate:"required,datetime=2006-01-02T15:04"`
	CategoryID  string  `form:"category" validate:"omitempty,numeric"`
	LocationID  string  `form:"location" validate:"omitempty,numeric"`
	IsPublished bool    `form:"is_published"`
	ClearImage  bool    `form:"image-clear"`
	Image       *Upload `form:"image" validate:"-"`
}

// InputFromPost prefills the edit form from a stored post.
func InputFromPost(p *data.Post) PostInput {
	in := PostInput{
		Title:       p.Title,
		Text:        p.Text,
		PubDate:     p.PubDate.UTC().Format(PubDateLayout),
		IsPublished: p.IsPublished,
	}
	if p.CategoryID != nil {
		in.CategoryID = strconv.FormatInt(*p.CategoryID, 10)
	}
	if p.LocationID != nil {
		in.LocationID = strconv.FormatInt(*p.LocationID, 10)
	}
	return in
}

// PostService holds the visibility and authorship rules for posts.
type PostService struct {
	posts      PostRepository
	comments   CommentRepository
	categories CategoryRepository
	locations  LocationRepository
	markup     Renderer
	images     ImageStore
	clock      Clock
	log        logger.Logger
}

// NewPostService creates a new PostService.
func NewPostService(posts PostRepository, comments CommentRepository, categories CategoryRepository,
	locations LocationRepository, markup Renderer, images ImageStore, clock Clock, log logger.Logger) *PostService {
	return &PostService{
		posts:      posts,
		comments:   comments,
		categories: categories,
		locations:  locations,
		markup:     markup,
		images:     images,
		clock:      clock,
		log:        log,
	}
}

// ListPublished returns a page of publicly visible posts, optionally limited to one category slug.
func (s *PostService) ListPublished(ctx context.Context, categorySlug, page string) (*Page[*data.Post], error) {
	filter := data.PostFilter{
		Visibility:   data.PublicVisibility(s.clock.now()),
		CategorySlug: categorySlug,
	}
	return s.paginate(ctx, filter, page)
}

// CategoryPosts returns a published category and a page of its visible posts.
func (s *PostService) CategoryPosts(ctx context.Context, slug, page string) (*data.Category, *Page[*data.Post], error) {
	category, err := s.categories.GetBySlug(ctx, slug)
	if err != nil {
		return nil, nil, lookup(err)
	}
	if !category.IsPublished {
		return nil, nil, ErrNotFound
	}

	posts, err := s.ListPublished(ctx, category.Slug, page)
	if err != nil {
		return nil, nil, err
	}
	return category, posts, nil
}

// Sitemap returns every publicly visible post.
func (s *PostService) Sitemap(ctx context.Context) ([]*data.Post, error) {
	return s.posts.FindVisiblePosts(ctx, data.PostFilter{Visibility: data.PublicVisibility(s.clock.now())})
}

func (s *PostService) paginate(ctx context.Context, filter data.PostFilter, raw string) (*Page[*data.Post], error) {
	total, err := s.posts.CountPosts(ctx, filter)
	if err != nil {
		return nil, err
	}
	page := newPage[*data.Post](raw, total, PageSize)
	filter.Limit = page.Size
	filter.Offset = page.Offset()
	if page.Items, err = s.posts.FindVisiblePosts(ctx, filter); err != nil {
		return nil, err
	}
	return page, nil
}

// PostDetail returns a post with its rendered body and published comments.
// Posts hidden by the visibility rules are reported as not found unless the viewer wrote them.
func (s *PostService) PostDetail(ctx context.Context, id int64, viewer *data.User) (*data.Post, []*data.Comment, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, nil, lookup(err)
	}
	if !post.VisibleAt(s.clock.now()) {
		if err := RequireOwner(viewer, post, Conceal); err != nil {
			return nil, nil, err
		}
	}

	if post.HTMLText, err = s.markup.Render(post.Text); err != nil {
		return nil, nil, fmt.Errorf("failed to render post %d: %w", post.ID, err)
	}

	comments, err := s.comments.ListComments(ctx, post.ID, true)
	if err != nil {
		return nil, nil, err
	}
	return post, comments, nil
}

// PostForEdit loads a post for its edit form. Non-authors are redirected to the post.
func (s *PostService) PostForEdit(ctx context.Context, id int64, actor *data.User) (*data.Post, error) {
	return s.owned(ctx, id, actor, RedirectToDetail)
}

// PostForDelete loads a post for its delete confirmation. Non-authors are refused.
func (s *PostService) PostForDelete(ctx context.Context, id int64, actor *data.User) (*data.Post, error) {
	return s.owned(ctx, id, actor, Reject)
}

func (s *PostService) owned(ctx context.Context, id int64, actor *data.User, policy Policy) (*data.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, lookup(err)
	}
	if err := RequireOwner(actor, post, policy); err != nil {
		return nil, err
	}
	return post, nil
}

// FormChoices lists the categories and locations offered by the post form.
func (s *PostService) FormChoices(ctx context.Context) ([]*data.Category, []*data.Location, error) {
	categories, err := s.categories.GetAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	locations, err := s.locations.GetAll(ctx)
	if err != nil {
		return nil, nil, err
	}
	return categories, locations, nil
}

// NewPostInput is the blank post form: published, dated now.
func (s *PostService) NewPostInput() PostInput {
	return PostInput{PubDate: s.clock.now().Format(PubDateLayout), IsPublished: true}
}

// Create stores a new post written by actor.
func (s *PostService) Create(ctx context.Context, actor *data.User, in PostInput) (*data.Post, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	post := &data.Post{AuthorID: actor.ID, CreatedAt: s.clock.now()}
	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}

	id, err := s.posts.CreatePost(ctx, post)
	if err != nil {
		s.discardImage(post.Image)
		return nil, err
	}
	post.ID = id
	post.AuthorUsername = actor.Username
	return post, nil
}

// Update rewrites a post. Non-authors are redirected to the post.
func (s *PostService) Update(ctx context.Context, id int64, actor *data.User, in PostInput) (*data.Post, error) {
	post, err := s.PostForEdit(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	oldImage := post.Image
	if err := s.apply(ctx, post, in); err != nil {
		return nil, err
	}

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if post.Image != oldImage {
			s.discardImage(post.Image)
		}
		return nil, err
	}
	if post.Image != oldImage {
		s.discardImage(oldImage)
	}
	return post, nil
}

// Delete removes a post and its comments. Non-authors are refused.
func (s *PostService) Delete(ctx context.Context, id int64, actor *data.User) error {
	post, err := s.PostForDelete(ctx, id, actor)
	if err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, post.ID); err != nil {
		return lookup(err)
	}
	s.discardImage(post.Image)
	return nil
}

// apply validates the form and copies it onto post, storing any new image last.
func (s *PostService) apply(ctx context.Context, post *data.Post, in PostInput) error {
	verr := validateInput(in)

	pubDate, err := time.ParseInLocation(PubDateLayout, strings.TrimSpace(in.PubDate), time.UTC)
	if err != nil {
		verr.Add("pub_date", "Enter a valid date and time.")
	}
	categoryID, err := s.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		verr.Add("category", "Select a valid choice.")
	}
	locationID, err := s.resolveLocation(ctx, in.LocationID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		verr.Add("location", "Select a valid choice.")
	}
	if err := verr.orNil(); err != nil {
		return err
	}

	post.Title = strings.TrimSpace(in.Title)
	post.Text = in.Text
	post.PubDate = pubDate
	post.IsPublished = in.IsPublished
	post.CategoryID = categoryID
	post.LocationID = locationID

	switch {
	case in.Image != nil:
		name, err := s.images.Save(in.Image.Filename, in.Image.Body)
		if err != nil {
			if errors.Is(err, media.ErrInvalidImage) {
				return &ValidationError{Fields: map[string]string{
					"image": "Upload a valid image. The file you uploaded was either not an image or a corrupted image.",
				}}
			}
			return err
		}
		post.Image = name
	case in.ClearImage:
		post.Image = ""
	}
	return nil
}

func (s *PostService) resolveCategory(ctx context.Context, raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err)
	}
	return &category.ID, nil
}

func (s *PostService) resolveLocation(ctx context.Context, raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	location, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err)
	}
	return &location.ID, nil
}

func (s *PostService) discardImage(name string) {
	if name == "" {
		return
	}
	if err := s.images.Delete(name); err != nil {
		s.log.Warn(fmt.Sprintf("failed to remove image %s: %v", name, err))
	}
}
