package service

import (
	"context"
	"errors"
	"fmt"
	"go-blog-app/internal/auth"
	"go-blog-app/internal/data"
	"strings"

	"github.com/google/uuid"
)

// ProfileInput is the profile edit form.
type ProfileInput struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
}

// ProfileService manages user profiles and the accounts behind them.
type ProfileService struct {
	users UserRepository
	posts PostRepository
	clock Clock
}

// NewProfileService creates a new ProfileService.
func NewProfileService(users UserRepository, posts PostRepository, clock Clock) *ProfileService {
	return &ProfileService{users: users, posts: posts, clock: clock}
}

// Profile returns a user and a page of their posts. The owner sees every post;
// everyone else sees only the publicly visible ones.
func (s *ProfileService) Profile(ctx context.Context, username string, viewer *data.User, page string) (*data.User, *Page[*data.Post], error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, lookup(err)
	}

	filter := data.PostFilter{AuthorID: &user.ID}
	if !IsOwner(viewer, user) {
		filter.Visibility = data.PublicVisibility(s.clock.now())
	}

	total, err := s.posts.CountPosts(ctx, filter)
	if err != nil {
		return nil, nil, err
	}
	p := newPage[*data.Post](page, total, PageSize)
	filter.Limit = p.Size
	filter.Offset = p.Offset()
	if p.Items, err = s.posts.FindVisiblePosts(ctx, filter); err != nil {
		return nil, nil, err
	}
	return user, p, nil
}

// ProfileForEdit loads a profile for its edit form. Only the owner may edit it.
func (s *ProfileService) ProfileForEdit(ctx context.Context, username string, actor *data.User) (*data.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, lookup(err)
	}
	if err := RequireOwner(actor, user, Reject); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile saves the owner's name and email.
func (s *ProfileService) UpdateProfile(ctx context.Context, username string, actor *data.User, in ProfileInput) (*data.User, error) {
	user, err := s.ProfileForEdit(ctx, username, actor)
	if err != nil {
		return nil, err
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput(in).orNil(); err != nil {
		return nil, err
	}

	user.FirstName, user.LastName, user.Email = in.FirstName, in.LastName, in.Email
	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UserByUsername resolves a signed-in subject to its account.
func (s *ProfileService) UserByUsername(ctx context.Context, username string) (*data.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, lookup(err)
	}
	return user, nil
}

// SignIn is a verified identity from the OIDC provider.
type SignIn struct {
	Subject   string
	Username  string
	Email     string
	FirstName string
	LastName  string
}

const (
	maxUsernameLength   = 150
	maxUsernameAttempts = 20
)

// EnsureUser returns the account bound to the sign-in's subject, creating it
// on first sign-in. A taken username gets a numeric suffix; an existing
// account is never handed to a different subject.
func (s *ProfileService) EnsureUser(ctx context.Context, in SignIn) (*data.User, error) {
	if in.Subject == "" {
		return nil, errors.New("sign-in has no subject")
	}
	user, err := s.users.GetBySubject(ctx, in.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, data.ErrNotFound) {
		return nil, err
	}

	base := strings.TrimSpace(in.Username)
	if base == "" || auth.IsReservedUsername(base) {
		base = "user"
	}
	if r := []rune(base); len(r) > maxUsernameLength-10 {
		base = string(r[:maxUsernameLength-10])
	}

	subject := in.Subject
	user = &data.User{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Email:       in.Email,
		CreatedAt:   s.clock.now(),
		OIDCSubject: &subject,
	}
	for attempt := 0; ; attempt++ {
		switch {
		case attempt == 0:
			user.Username = base
		case attempt < maxUsernameAttempts:
			user.Username = fmt.Sprintf("%s-%d", base, attempt+1)
		default:
			user.Username = base + "-" + uuid.NewString()[:8]
		}

		user.ID, err = s.users.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, data.ErrDuplicate) || attempt == maxUsernameAttempts {
			return nil, err
		}
		// Another request may have created this subject's account first.
		if existing, err := s.users.GetBySubject(ctx, in.Subject); err == nil {
			return existing, nil
		}
	}
}
