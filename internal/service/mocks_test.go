//go:build unit

package service

import (
	"context"
	"errors"
	"fmt"
	"go-blog-app/internal/data"
	"go-blog-app/internal/media"
	"html/template"
	"io"
	"strings"
	"time"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func notFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, data.ErrNotFound)
}

// mockPostRepository is an in-memory implementation of the PostRepository interface.
type mockPostRepository struct {
	posts       map[int64]*data.Post
	listResult  []*data.Post
	total       int
	lastFilter  data.PostFilter
	countFilter data.PostFilter
	created     *data.Post
	updated     *data.Post
	deletedID   int64
	errToReturn error
}

var _ PostRepository = (*mockPostRepository)(nil)

func newMockPostRepository(posts ...*data.Post) *mockPostRepository {
	m := &mockPostRepository{posts: make(map[int64]*data.Post)}
	for _, p := range posts {
		m.posts[p.ID] = p
	}
	return m
}

func (m *mockPostRepository) FindVisiblePosts(ctx context.Context, f data.PostFilter) ([]*data.Post, error) {
	m.lastFilter = f
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	return m.listResult, nil
}

func (m *mockPostRepository) CountPosts(ctx context.Context, f data.PostFilter) (int, error) {
	m.countFilter = f
	if m.errToReturn != nil {
		return 0, m.errToReturn
	}
	return m.total, nil
}

func (m *mockPostRepository) GetPostByID(ctx context.Context, id int64) (*data.Post, error) {
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	p, ok := m.posts[id]
	if !ok {
		return nil, notFound("post", id)
	}
	cp := *p
	return &cp, nil
}

func (m *mockPostRepository) CreatePost(ctx context.Context, post *data.Post) (int64, error) {
	if m.errToReturn != nil {
		return 0, m.errToReturn
	}
	m.created = post
	return 42, nil
}

func (m *mockPostRepository) UpdatePost(ctx context.Context, post *data.Post) error {
	m.updated = post
	return m.errToReturn
}

func (m *mockPostRepository) DeletePost(ctx context.Context, id int64) error {
	m.deletedID = id
	return m.errToReturn
}

// mockCommentRepository is an in-memory implementation of the CommentRepository interface.
type mockCommentRepository struct {
	comments []*data.Comment
	created  *data.Comment
	updated  *data.Comment
	deleted  [2]int64
}

var _ CommentRepository = (*mockCommentRepository)(nil)

func (m *mockCommentRepository) ListComments(ctx context.Context, postID int64, publishedOnly bool) ([]*data.Comment, error) {
	var out []*data.Comment
	for _, c := range m.comments {
		if c.PostID == postID && (!publishedOnly || c.IsPublished) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCommentRepository) FindComment(ctx context.Context, postID, commentID int64) (*data.Comment, error) {
	for _, c := range m.comments {
		if c.ID == commentID && c.PostID == postID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, notFound("comment", commentID)
}

func (m *mockCommentRepository) CreateComment(ctx context.Context, comment *data.Comment) (int64, error) {
	m.created = comment
	return 7, nil
}

func (m *mockCommentRepository) UpdateComment(ctx context.Context, comment *data.Comment) error {
	m.updated = comment
	return nil
}

func (m *mockCommentRepository) DeleteComment(ctx context.Context, postID, commentID int64) error {
	m.deleted = [2]int64{postID, commentID}
	return nil
}

// mockCategoryRepository is a mock implementation of the CategoryRepository interface.
type mockCategoryRepository struct {
	categories     []*data.Category
	saveErr        error
	lastSaved      *data.Category
	publishedCalls map[int64]bool
}

var _ CategoryRepository = (*mockCategoryRepository)(nil)

func (m *mockCategoryRepository) GetBySlug(ctx context.Context, slug string) (*data.Category, error) {
	for _, c := range m.categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, notFound("category", slug)
}

func (m *mockCategoryRepository) GetByID(ctx context.Context, id int64) (*data.Category, error) {
	for _, c := range m.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, notFound("category", id)
}

func (m *mockCategoryRepository) GetAll(ctx context.Context) ([]*data.Category, error) {
	return m.categories, nil
}

func (m *mockCategoryRepository) Save(ctx context.Context, category *data.Category) (int64, error) {
	m.lastSaved = category
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	return int64(len(m.categories) + 1), nil
}

func (m *mockCategoryRepository) SetPublished(ctx context.Context, id int64, published bool) error {
	if m.publishedCalls == nil {
		m.publishedCalls = make(map[int64]bool)
	}
	m.publishedCalls[id] = published
	return nil
}

func (m *mockCategoryRepository) Delete(ctx context.Context, id int64) error {
	if _, err := m.GetByID(ctx, id); err != nil {
		return err
	}
	return nil
}

// mockLocationRepository is a mock implementation of the LocationRepository interface.
type mockLocationRepository struct {
	locations []*data.Location
	lastSaved *data.Location
}

var _ LocationRepository = (*mockLocationRepository)(nil)

func (m *mockLocationRepository) GetByID(ctx context.Context, id int64) (*data.Location, error) {
	for _, l := range m.locations {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, notFound("location", id)
}

func (m *mockLocationRepository) GetAll(ctx context.Context) ([]*data.Location, error) {
	return m.locations, nil
}

func (m *mockLocationRepository) Save(ctx context.Context, location *data.Location) (int64, error) {
	m.lastSaved = location
	return int64(len(m.locations) + 1), nil
}

func (m *mockLocationRepository) SetPublished(ctx context.Context, id int64, published bool) error {
	return nil
}

func (m *mockLocationRepository) Delete(ctx context.Context, id int64) error {
	_, err := m.GetByID(ctx, id)
	return err
}

// mockUserRepository is an in-memory implementation of the UserRepository interface.
type mockUserRepository struct {
	users       map[string]*data.User
	createErr   error
	createCalls int
	updated     *data.User
}

var _ UserRepository = (*mockUserRepository)(nil)

func newMockUserRepository(users ...*data.User) *mockUserRepository {
	m := &mockUserRepository{users: make(map[string]*data.User)}
	for _, u := range users {
		m.users[u.Username] = u
	}
	return m
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*data.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, notFound("user", username)
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepository) GetBySubject(ctx context.Context, subject string) (*data.User, error) {
	for _, u := range m.users {
		if u.OIDCSubject != nil && *u.OIDCSubject == subject {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user", subject)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*data.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, notFound("user", id)
}

func (m *mockUserRepository) Create(ctx context.Context, user *data.User) (int64, error) {
	m.createCalls++
	if m.createErr != nil {
		return 0, m.createErr
	}
	if _, taken := m.users[user.Username]; taken {
		return 0, fmt.Errorf("user %q: %w", user.Username, data.ErrDuplicate)
	}
	if user.OIDCSubject != nil {
		if _, err := m.GetBySubject(ctx, *user.OIDCSubject); err == nil {
			return 0, fmt.Errorf("subject %q: %w", *user.OIDCSubject, data.ErrDuplicate)
		}
	}
	cp := *user
	cp.ID = int64(len(m.users) + 1)
	m.users[user.Username] = &cp
	return cp.ID, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *data.User) error {
	m.updated = user
	return nil
}

// fakeRenderer strips script tags and wraps text in a paragraph.
type fakeRenderer struct{}

func (fakeRenderer) Render(src string) (template.HTML, error) {
	src = strings.ReplaceAll(strings.ReplaceAll(src, "<script>", ""), "</script>", "")
	return template.HTML("<p>" + src + "</p>"), nil
}

// fakeImageStore records saved and deleted image names.
type fakeImageStore struct {
	saved   []string
	deleted []string
}

func (f *fakeImageStore) Save(originalName string, r io.Reader) (string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if string(body) != "image-bytes" {
		return "", fmt.Errorf("%w: unreadable", media.ErrInvalidImage)
	}
	name := fmt.Sprintf("stored-%d-%s", len(f.saved)+1, originalName)
	f.saved = append(f.saved, name)
	return name, nil
}

func (f *fakeImageStore) Delete(name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func asValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	ok := errors.As(err, &verr)
	return verr, ok
}
