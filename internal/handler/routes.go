package handler

import (
	"errors"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/session"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Handlers groups the request handlers mounted by NewRouter.
type Handlers struct {
	Posts    *PostHandler
	Comments *CommentHandler
	Profiles *ProfileHandler
	Admin    *AdminHandler
	Auth     *AuthHandler
	Seo      *SeoHandler
}

// Middlewares groups the request middlewares applied by NewRouter.
type Middlewares struct {
	Session session.Manager
	CSRF    func(http.Handler) http.Handler
	Authz   func(http.Handler) http.Handler
	Error   func(middleware.AppHandler) http.Handler
}

// NewRouter creates and configures a new chi router. Static assets come from
// static; uploaded images are served from mediaDir.
func NewRouter(h Handlers, mw Middlewares, static fs.FS, mediaDir string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	if static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	}
	if mediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(mediaDir))))
	}

	notFound := mw.Error(func(w http.ResponseWriter, r *http.Request) *middleware.AppError {
		return &middleware.AppError{Error: errors.New("no route for " + r.URL.Path), Message: "Page Not Found", Code: http.StatusNotFound}
	})
	r.NotFound(notFound.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(mw.Session.LoadAndSave)
		r.Use(mw.CSRF)
		r.Use(mw.Authz)

		r.Get("/robots.txt", h.Seo.robotsHandler)
		r.Get("/sitemap.xml", h.Seo.sitemapHandler)

		r.Get("/auth/login", h.Auth.handleLogin)
		r.Get("/auth/callback", h.Auth.handleCallback)
		r.Get("/auth/logout", h.Auth.handleLogout)

		r.Method(http.MethodGet, "/", mw.Error(h.Posts.indexHandler))
		r.Method(http.MethodGet, "/category/{slug}", mw.Error(h.Posts.categoryHandler))

		r.Route("/posts", func(r chi.Router) {
			r.Method(http.MethodGet, "/new", mw.Error(h.Posts.createFormHandler))
			r.Method(http.MethodPost, "/new", mw.Error(h.Posts.createHandler))

			r.Route("/{id:[0-9]+}", func(r chi.Router) {
				r.Method(http.MethodGet, "/", mw.Error(h.Posts.detailHandler))
				r.Method(http.MethodGet, "/edit", mw.Error(h.Posts.editFormHandler))
				r.Method(http.MethodPost, "/edit", mw.Error(h.Posts.editHandler))
				r.Method(http.MethodGet, "/delete", mw.Error(h.Posts.deleteFormHandler))
				r.Method(http.MethodPost, "/delete", mw.Error(h.Posts.deleteHandler))

				r.Method(http.MethodPost, "/comment", mw.Error(h.Comments.addHandler))
				r.Method(http.MethodGet, "/comments/{commentID:[0-9]+}/edit", mw.Error(h.Comments.editFormHandler))
				r.Method(http.MethodPost, "/comments/{commentID:[0-9]+}/edit", mw.Error(h.Comments.editHandler))
				r.Method(http.MethodGet, "/comments/{commentID:[0-9]+}/delete", mw.Error(h.Comments.deleteFormHandler))
				r.Method(http.MethodPost, "/comments/{commentID:[0-9]+}/delete", mw.Error(h.Comments.deleteHandler))
			})
		})

		r.Method(http.MethodGet, "/profile/{username}", mw.Error(h.Profiles.profileHandler))
		r.Method(http.MethodGet, "/profile/{username}/edit", mw.Error(h.Profiles.editFormHandler))
		r.Method(http.MethodPost, "/profile/{username}/edit", mw.Error(h.Profiles.editHandler))

		r.Route("/admin", func(r chi.Router) {
			r.Method(http.MethodGet, "/categories", mw.Error(h.Admin.categoriesHandler))
			r.Method(http.MethodPost, "/categories", mw.Error(h.Admin.createCategoryHandler))
			r.Method(http.MethodPost, "/categories/{id}/publish", mw.Error(h.Admin.publishCategoryHandler))
			r.Method(http.MethodPost, "/categories/{id}/delete", mw.Error(h.Admin.deleteCategoryHandler))
			r.Method(http.MethodGet, "/locations", mw.Error(h.Admin.locationsHandler))
			r.Method(http.MethodPost, "/locations", mw.Error(h.Admin.createLocationHandler))
			r.Method(http.MethodPost, "/locations/{id}/publish", mw.Error(h.Admin.publishLocationHandler))
			r.Method(http.MethodPost, "/locations/{id}/delete", mw.Error(h.Admin.deleteLocationHandler))
		})
	})

	return r
}
