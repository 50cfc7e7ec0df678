package handler

import (
	"go-blog-app/internal/logger"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"
	"go-blog-app/internal/view"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ProfileHandler holds the dependencies for the profile handlers.
type ProfileHandler struct {
	profiles *service.ProfileService
	view     *view.View
	log      logger.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(ps *service.ProfileService, v *view.View, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: ps, view: v, log: log}
}

func (h *ProfileHandler) profileHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	viewer := middleware.CurrentUser(r.Context())
	profile, page, err := h.profiles.Profile(r.Context(), chi.URLParam(r, "username"), viewer, r.URL.Query().Get("page"))
	if err != nil {
		return serviceError(w, r, err, "load profile")
	}
	return render(w, r, h.view, "profile.html", map[string]interface{}{
		"Profile": profile,
		"Page":    page,
		"IsOwner": service.IsOwner(viewer, profile),
	})
}

func (h *ProfileHandler) editFormHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	user, err := h.profiles.ProfileForEdit(r.Context(), chi.URLParam(r, "username"), middleware.CurrentUser(r.Context()))
	if err != nil {
		return serviceError(w, r, err, "load profile")
	}
	form := service.ProfileInput{FirstName: user.FirstName, LastName: user.LastName, Email: user.Email}
	return h.renderForm(w, r, user.Username, form, nil)
}

func (h *ProfileHandler) editHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	username := chi.URLParam(r, "username")
	form := service.ProfileInput{
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Email:     r.PostFormValue("email"),
	}
	user, err := h.profiles.UpdateProfile(r.Context(), username, middleware.CurrentUser(r.Context()), form)
	if err != nil {
		if fields, ok := validationErrors(err); ok {
			return h.renderForm(w, r, username, form, fields)
		}
		return serviceError(w, r, err, "update profile")
	}
	http.Redirect(w, r, user.DetailURL(), http.StatusFound)
	return nil
}

func (h *ProfileHandler) renderForm(w http.ResponseWriter, r *http.Request, username string, form service.ProfileInput, errs map[string]string) *middleware.AppError {
	if errs == nil {
		errs = map[string]string{}
	}
	return render(w, r, h.view, "user.html", map[string]interface{}{
		"Username": username,
		"Form":     form,
		"Errors":   errs,
	})
}
