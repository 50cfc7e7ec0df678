package service

import (
	"context"
	"errors"
	"go-blog-app/internal/data"
	"strings"
)

// CategoryInput is the admin category form.
type CategoryInput struct {
	Title       string `form:"title" validate:"required,max=256"`
	Description string `form:"description" validate:"required"`
	Slug        string `form:"slug" validate:"required,max=64,slug"`
	IsPublished bool   `form:"is_published"`
}

// LocationInput is the admin location form.
type LocationInput struct {
	Name        string `form:"name" validate:"required,max=256"`
	IsPublished bool   `form:"is_published"`
}

// TaxonomyService administers categories and locations.
type TaxonomyService struct {
	categories CategoryRepository
	locations  LocationRepository
	clock      Clock
}

// NewTaxonomyService creates a new TaxonomyService.
func NewTaxonomyService(categories CategoryRepository, locations LocationRepository, clock Clock) *TaxonomyService {
	return &TaxonomyService{categories: categories, locations: locations, clock: clock}
}

func (s *TaxonomyService) Categories(ctx context.Context) ([]*data.Category, error) {
	return s.categories.GetAll(ctx)
}

// CreateCategory adds a category. Slugs must be unique.
func (s *TaxonomyService) CreateCategory(ctx context.Context, in CategoryInput) (*data.Category, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	if err := validateInput(in).orNil(); err != nil {
		return nil, err
	}

	category := &data.Category{
		Title:       in.Title,
		Description: in.Description,
		Slug:        in.Slug,
		IsPublished: in.IsPublished,
		CreatedAt:   s.clock.now(),
	}
	id, err := s.categories.Save(ctx, category)
	if errors.Is(err, data.ErrDuplicate) {
		return nil, &ValidationError{Fields: map[string]string{"slug": "Category with this slug already exists."}}
	}
	if err != nil {
		return nil, err
	}
	category.ID = id
	return category, nil
}

func (s *TaxonomyService) SetCategoryPublished(ctx context.Context, id int64, published bool) error {
	return lookup(s.categories.SetPublished(ctx, id, published))
}

// DeleteCategory removes a category; its posts become uncategorised.
func (s *TaxonomyService) DeleteCategory(ctx context.Context, id int64) error {
	return lookup(s.categories.Delete(ctx, id))
}

func (s *TaxonomyService) Locations(ctx context.Context) ([]*data.Location, error) {
	return s.locations.GetAll(ctx)
}

// CreateLocation adds a location.
func (s *TaxonomyService) CreateLocation(ctx context.Context, in LocationInput) (*data.Location, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in).orNil(); err != nil {
		return nil, err
	}

	location := &data.Location{Name: in.Name, IsPublished: in.IsPublished, CreatedAt: s.clock.now()}
	id, err := s.locations.Save(ctx, location)
	if err != nil {
		return nil, err
	}
	location.ID = id
	return location, nil
}

func (s *TaxonomyService) SetLocationPublished(ctx context.Context, id int64, published bool) error {
	return lookup(s.locations.SetPublished(ctx, id, published))
}

// DeleteLocation removes a location; its posts lose their location.
func (s *TaxonomyService) DeleteLocation(ctx context.Context, id int64) error {
	return lookup(s.locations.Delete(ctx, id))
}
