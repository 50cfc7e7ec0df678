package handler

import (
	"go-blog-app/internal/logger"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"
	"go-blog-app/internal/view"
	"net/http"
)

// AdminHandler serves the category and location administration pages.
type AdminHandler struct {
	taxonomy *service.TaxonomyService
	view     *view.View
	log      logger.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ts *service.TaxonomyService, v *view.View, log logger.Logger) *AdminHandler {
	return &AdminHandler{taxonomy: ts, view: v, log: log}
}

func (h *AdminHandler) categoriesHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderCategories(w, r, service.CategoryInput{IsPublished: true}, nil)
}

func (h *AdminHandler) createCategoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	form := service.CategoryInput{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		Slug:        r.PostFormValue("slug"),
		IsPublished: checked(r, "is_published"),
	}
	category, err := h.taxonomy.CreateCategory(r.Context(), form)
	if err != nil {
		if fields, ok := validationErrors(err); ok {
			return h.renderCategories(w, r, form, fields)
		}
		return serviceError(w, r, err, "create category")
	}
	h.log.Info("Category " + category.Slug + " created")
	http.Redirect(w, r, "/admin/categories", http.StatusFound)
	return nil
}

func (h *AdminHandler) publishCategoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}
	if err := h.taxonomy.SetCategoryPublished(r.Context(), id, checked(r, "is_published")); err != nil {
		return serviceError(w, r, err, "update category")
	}
	http.Redirect(w, r, "/admin/categories", http.StatusFound)
	return nil
}

func (h *AdminHandler) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}
	if err := h.taxonomy.DeleteCategory(r.Context(), id); err != nil {
		return serviceError(w, r, err, "delete category")
	}
	http.Redirect(w, r, "/admin/categories", http.StatusFound)
	return nil
}

func (h *AdminHandler) locationsHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderLocations(w, r, service.LocationInput{IsPublished: true}, nil)
}

func (h *AdminHandler) createLocationHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	form := service.LocationInput{
		Name:        r.PostFormValue("name"),
		IsPublished: checked(r, "is_published"),
	}
	if _, err := h.taxonomy.CreateLocation(r.Context(), form); err != nil {
		if fields, ok := validationErrors(err); ok {
			return h.renderLocations(w, r, form, fields)
		}
		return serviceError(w, r, err, "create location")
	}
	http.Redirect(w, r, "/admin/locations", http.StatusFound)
	return nil
}

func (h *AdminHandler) publishLocationHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}
	if err := h.taxonomy.SetLocationPublished(r.Context(), id, checked(r, "is_published")); err != nil {
		return serviceError(w, r, err, "update location")
	}
	http.Redirect(w, r, "/admin/locations", http.StatusFound)
	return nil
}

func (h *AdminHandler) deleteLocationHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}
	if err := h.taxonomy.DeleteLocation(r.Context(), id); err != nil {
		return serviceError(w, r, err, "delete location")
	}
	http.Redirect(w, r, "/admin/locations", http.StatusFound)
	return nil
}

func (h *AdminHandler) renderCategories(w http.ResponseWriter, r *http.Request, form service.CategoryInput, errs map[string]string) *middleware.AppError {
	categories, err := h.taxonomy.Categories(r.Context())
	if err != nil {
		return serviceError(w, r, err, "list categories")
	}
	if errs == nil {
		errs = map[string]string{}
	}
	return render(w, r, h.view, "admin_categories.html", map[string]interface{}{
		"Categories": categories,
		"Form":       form,
		"Errors":     errs,
	})
}

func (h *AdminHandler) renderLocations(w http.ResponseWriter, r *http.Request, form service.LocationInput, errs map[string]string) *middleware.AppError {
	locations, err := h.taxonomy.Locations(r.Context())
	if err != nil {
		return serviceError(w, r, err, "list locations")
	}
	if errs == nil {
		errs = map[string]string{}
	}
	return render(w, r, h.view, "admin_locations.html", map[string]interface{}{
		"Locations": locations,
		"Form":      form,
		"Errors":    errs,
	})
}
