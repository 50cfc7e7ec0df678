package service

import (
	"errors"
	"fmt"
	"go-blog-app/internal/data"
	"sort"
	"strings"
)

var (
	// ErrNotFound means the resource does not exist or is hidden from the requester.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the requester may see the resource but not change it.
	ErrForbidden = errors.New("forbidden")
)

// RedirectError asks the caller to send the requester elsewhere instead of failing.
type RedirectError struct {
	URL string
}

func (e *RedirectError) Error() string {
	return "redirect to " + e.URL
}

// ValidationError carries per-field messages for a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Add records a message for field, keeping the first one reported.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// lookup marks the repository's not-found errors with ErrNotFound as well.
func lookup(err error) error {
	if errors.Is(err, data.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}
