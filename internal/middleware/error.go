package middleware

import (
	"fmt"
	"go-blog-app/internal/logger"
	"io"
	"net/http"
)

// AppError represents a custom error type for the application.
type AppError struct {
	Error   error
	Message string
	Code    int
}

// AppHandler is a custom handler function type that returns an AppError.
type AppHandler func(http.ResponseWriter, *http.Request) *AppError

// Renderer executes a named page template.
type Renderer interface {
	Render(w io.Writer, r *http.Request, name string, data map[string]interface{}) error
}

// Error is a middleware that converts handler errors into user-friendly error pages.
func Error(log logger.Logger, render Renderer) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					RenderError(w, r, render, http.StatusInternalServerError, "Internal Server Error")
				}
			}()

			if err := next(w, r); err != nil {
				if err.Code >= http.StatusInternalServerError {
					log.Error(err.Error, err.Message)
				} else {
					log.Debug(fmt.Sprintf("%d %s: %v", err.Code, err.Message, err.Error))
				}
				RenderError(w, r, render, err.Code, err.Message)
			}
		})
	}
}

// RenderError writes the error page with the given status code.
func RenderError(w http.ResponseWriter, r *http.Request, render Renderer, code int, message string) {
	renderStatus(w, r, render, code, "error.html", map[string]interface{}{
		"StatusCode": code,
		"StatusText": message,
	})
}

func renderStatus(w http.ResponseWriter, r *http.Request, render Renderer, code int, name string, data map[string]interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := render.Render(w, r, name, data); err != nil {
		fmt.Fprintf(w, "%d %s", code, http.StatusText(code))
	}
}
