package handler

import (
	"go-blog-app/internal/logger"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/service"
	"go-blog-app/internal/view"
	"net/http"
	"strconv"
)

// CommentHandler holds the dependencies for the comment handlers.
type CommentHandler struct {
	comments *service.CommentService
	view     *view.View
	log      logger.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(cs *service.CommentService, v *view.View, log logger.Logger) *CommentHandler {
	return &CommentHandler{comments: cs, view: v, log: log}
}

// addHandler posts a comment and returns to the post. An empty comment is dropped.
func (h *CommentHandler) addHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	postID, appErr := pathID(r, "id")
	if appErr != nil {
		return appErr
	}
	input := service.CommentInput{Text: r.PostFormValue("text")}
	comment, err := h.comments.Add(r.Context(), postID, middleware.CurrentUser(r.Context()), input)
	if err != nil {
		if _, ok := validationErrors(err); !ok {
			return serviceError(w, r, err, "add comment")
		}
		http.Redirect(w, r, postURL(postID), http.StatusFound)
		return nil
	}
	http.Redirect(w, r, postURL(postID)+"#comment-"+strconv.FormatInt(comment.ID, 10), http.StatusFound)
	return nil
}

// editFormHandler shows the comment edit form.
func (h *CommentHandler) editFormHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	postID, commentID, appErr := commentIDs(r)
	if appErr != nil {
		return appErr
	}
	comment, err := h.comments.CommentForEdit(r.Context(), postID, commentID, middleware.CurrentUser(r.Context()))
	if err != nil {
		return serviceError(w, r, err, "load comment")
	}
	return h.renderComment(w, r, comment.PostID, comment.ID, comment.Text, nil, false)
}

// editHandler saves the edited comment.
func (h *CommentHandler) editHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	postID, commentID, appErr := commentIDs(r)
	if appErr != nil {
		return appErr
	}
	input := service.CommentInput{Text: r.PostFormValue("text")}
	if _, err := h.comments.Edit(r.Context(), postID, commentID, middleware.CurrentUser(r.Context()), input); err != nil {
		if fields, ok := validationErrors(err); ok {
			return h.renderComment(w, r, postID, commentID, input.Text, fields, false)
		}
		return serviceError(w, r, err, "update comment")
	}
	http.Redirect(w, r, postURL(postID), http.StatusFound)
	return nil
}

// deleteFormHandler asks the author to confirm removing a comment.
func (h *CommentHandler) deleteFormHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	postID, commentID, appErr := commentIDs(r)
	if appErr != nil {
		return appErr
	}
	comment, err := h.comments.CommentForDelete(r.Context(), postID, commentID, middleware.CurrentUser(r.Context()))
	if err != nil {
		return serviceError(w, r, err, "load comment")
	}
	return h.renderComment(w, r, comment.PostID, comment.ID, comment.Text, nil, true)
}

// deleteHandler removes a comment and returns to the post.
func (h *CommentHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	postID, commentID, appErr := commentIDs(r)
	if appErr != nil {
		return appErr
	}
	if err := h.comments.Delete(r.Context(), postID, commentID, middleware.CurrentUser(r.Context())); err != nil {
		return serviceError(w, r, err, "delete comment")
	}
	http.Redirect(w, r, postURL(postID), http.StatusFound)
	return nil
}

func (h *CommentHandler) renderComment(w http.ResponseWriter, r *http.Request, postID, commentID int64, text string, errs map[string]string, deleting bool) *middleware.AppError {
	if errs == nil {
		errs = map[string]string{}
	}
	action := "edit"
	if deleting {
		action = "delete"
	}
	return render(w, r, h.view, "comment.html", map[string]interface{}{
		"PostID":   postID,
		"Text":     text,
		"Errors":   errs,
		"Deleting": deleting,
		"Action":   postURL(postID) + "/comments/" + strconv.FormatInt(commentID, 10) + "/" + action,
	})
}

func commentIDs(r *http.Request) (int64, int64, *middleware.AppError) {
	postID, appErr := pathID(r, "id")
	if appErr != nil {
		return 0, 0, appErr
	}
	commentID, appErr := pathID(r, "commentID")
	if appErr != nil {
		return 0, 0, appErr
	}
	return postID, commentID, nil
}

func postURL(id int64) string {
	return "/posts/" + strconv.FormatInt(id, 10)
}
