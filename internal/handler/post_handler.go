package handler

import (
	"errors"
	"go-blog-app/internal/logger"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"
	"go-blog-app/internal/view"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// maxUploadSize is the in-memory limit for a post form including its image.
const maxUploadSize = 10 << 20

// PostHandler holds the dependencies for the post handlers.
type PostHandler struct {
	posts *service.PostService
	view  *view.View
	log   logger.Logger
}

// NewPostHandler creates a new PostHandler with the given dependencies.
func NewPostHandler(ps *service.PostService, v *view.View, log logger.Logger) *PostHandler {
	return &PostHandler{posts: ps, view: v, log: log}
}

// indexHandler lists visible posts, optionally filtered by ?category=<slug>.
func (h *PostHandler) indexHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	slug := r.URL.Query().Get("category")
	page, err := h.posts.ListPublished(r.Context(), slug, r.URL.Query().Get("page"))
	if err != nil {
		return serviceError(w, r, err, "list posts")
	}
	return render(w, r, h.view, "index.html", map[string]interface{}{
		"Page":         page,
		"CategorySlug": slug,
	})
}

// categoryHandler lists the visible posts of a published category.
func (h *PostHandler) categoryHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	category, page, err := h.posts.CategoryPosts(r.Context(), chi.URLParam(r, "slug"), r.URL.Query().Get("page"))
	if err != nil {
		return serviceError(w, r, err, "list category posts")
	}
	return render(w, r, h.view, "category.html", map[string]interface{}{
		"Category": category,
		"Page":     page,
	})
}

// detailHandler shows a post with its comments.
func (h *PostHandler) detailHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}
	viewer := middleware.CurrentUser(r.Context())
	post, comments, err := h.posts.PostDetail(r.Context(), id, viewer)
	if err != nil {
		return serviceError(w, r, err, "load post")
	}
	return render(w, r, h.view, "detail.html", map[string]interface{}{
		"Post":     post,
		"Comments": comments,
		"IsAuthor": service.IsOwner(viewer, post),
	})
}

// createFormHandler shows an empty post form.
func (h *PostHandler) createFormHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	return h.renderForm(w, r, h.posts.NewPostInput(), nil, 0)
}

// createHandler stores a new post and sends the author to their profile.
func (h *PostHandler) createHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	form, cleanup, appErr := h.readForm(r)
	if appErr != nil {
		return appErr
	}
	defer cleanup()

	actor := middleware.CurrentUser(r.Context())
	post, err := h.posts.Create(r.Context(), actor, form)
	if err != nil {
		if fields, ok := validationErrors(err); ok {
			return h.renderForm(w, r, form, fields, 0)
		}
		return serviceError(w, r, err, "create post")
	}
	h.log.Info("Post " + strconv.FormatInt(post.ID, 10) + " created by " + actor.Username)
	http.Redirect(w, r, actor.DetailURL(), http.StatusFound)
	return nil
}

// editFormHandler shows the post form filled with the stored post.
func (h *PostHandler) editFormHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}
	post, err := h.posts.PostForEdit(r.Context(), id, middleware.CurrentUser(r.Context()))
	if err != nil {
		return serviceError(w, r, err, "load post")
	}
	return h.renderForm(w, r, service.InputFromPost(post), nil, post.ID)
}

// editHandler saves an edited post and returns to it.
func (h *PostHandler) editHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}
	form, cleanup, appErr := h.readForm(r)
	if appErr != nil {
		return appErr
	}
	defer cleanup()

	post, err := h.posts.Update(r.Context(), id, middleware.CurrentUser(r.Context()), form)
	if err != nil {
		if fields, ok := validationErrors(err); ok {
			return h.renderForm(w, r, form, fields, id)
		}
		return serviceError(w, r, err, "update post")
	}
	http.Redirect(w, r, post.DetailURL(), http.StatusFound)
	return nil
}

// deleteFormHandler asks the author to confirm a deletion.
func (h *PostHandler) deleteFormHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}
	post, err := h.posts.PostForDelete(r.Context(), id, middleware.CurrentUser(r.Context()))
	if err != nil {
		return serviceError(w, r, err, "load post")
	}
	return render(w, r, h.view, "delete.html", map[string]interface{}{"Post": post})
}

// deleteHandler removes a post and returns to the index.
func (h *PostHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}
	if err := h.posts.Delete(r.Context(), id, middleware.CurrentUser(r.Context())); err != nil {
		return serviceError(w, r, err, "delete post")
	}
	http.Redirect(w, r, "/", http.StatusFound)
	return nil
}

func (h *PostHandler) renderForm(w http.ResponseWriter, r *http.Request, form service.PostInput, errs map[string]string, postID int64) *middleware.AppError {
	categories, locations, err := h.posts.FormChoices(r.Context())
	if err != nil {
		return serviceError(w, r, err, "load form")
	}
	if errs == nil {
		errs = map[string]string{}
	}
	action := "/posts/new"
	if postID != 0 {
		action = "/posts/" + strconv.FormatInt(postID, 10) + "/edit"
	}
	return render(w, r, h.view, "create.html", map[string]interface{}{
		"Form":       form,
		"Errors":     errs,
		"Categories": categories,
		"Locations":  locations,
		"Action":     action,
		"Editing":    postID != 0,
	})
}

// readForm parses the post form. The returned cleanup closes any uploaded file.
func (h *PostHandler) readForm(r *http.Request) (service.PostInput, func(), *middleware.AppError) {
	noop := func() {}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return service.PostInput{}, noop, badRequest(err)
	}

	form := service.PostInput{
		Title:       r.PostFormValue("title"),
		Text:        r.PostFormValue("text"),
		PubDate:     r.PostFormValue("pub_date"),
		CategoryID:  r.PostFormValue("category"),
		LocationID:  r.PostFormValue("location"),
		IsPublished: checked(r, "is_published"),
		ClearImage:  checked(r, "image-clear"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart):
		return form, noop, nil
	case err != nil:
		return service.PostInput{}, noop, badRequest(err)
	}
	if header.Size == 0 {
		file.Close()
		return form, noop, nil
	}
	form.Image = &service.Upload{Filename: header.Filename, Body: file}
	return form, func() { file.Close() }, nil
}
