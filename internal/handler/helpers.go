package handler

import (
	"errors"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"
	"go-blog-app/internal/view"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// serviceError turns a service failure into a redirect or an error page.
// It returns nil when it has already answered the request with a redirect.
func serviceError(w http.ResponseWriter, r *http.Request, err error, action string) *middleware.AppError {
	var redirect *service.RedirectError
	switch {
	case errors.As(err, &redirect):
		http.Redirect(w, r, redirect.URL, http.StatusFound)
		return nil
	case errors.Is(err, service.ErrNotFound):
		return &middleware.AppError{Error: err, Message: "Page Not Found", Code: http.StatusNotFound}
	case errors.Is(err, service.ErrForbidden):
		return &middleware.AppError{Error: err, Message: "Forbidden", Code: http.StatusForbidden}
	default:
		return &middleware.AppError{Error: err, Message: "Failed to " + action, Code: http.StatusInternalServerError}
	}
}

// validationErrors returns the field messages when err is a ValidationError.
func validationErrors(err error) (map[string]string, bool) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields, true
	}
	return nil, false
}

func render(w http.ResponseWriter, r *http.Request, v *view.View, name string, data map[string]interface{}) *middleware.AppError {
	if err := v.Render(w, r, name, data); err != nil {
		return &middleware.AppError{Error: err, Message: "Failed to render " + name, Code: http.StatusInternalServerError}
	}
	return nil
}

// pathID parses a numeric URL parameter. Malformed IDs are reported as not found.
func pathID(r *http.Request, name string) (int64, *middleware.AppError) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &middleware.AppError{Error: err, Message: "Page Not Found", Code: http.StatusNotFound}
	}
	return id, nil
}

func badRequest(err error) *middleware.AppError {
	return &middleware.AppError{Error: err, Message: "Bad Request", Code: http.StatusBadRequest}
}

func checked(r *http.Request, name string) bool {
	switch r.PostFormValue(name) {
	case "on", "true", "1":
		return true
	}
	return false
}
