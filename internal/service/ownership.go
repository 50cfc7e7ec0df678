package service

import "go-blog-app/internal/data"

// Owned is anything with an author and a page to send non-authors to.
type Owned interface {
	OwnerID() int64
	DetailURL() string
}

// Policy is what happens when a non-owner touches an owned resource.
type Policy int

const (
	// RedirectToDetail sends the requester to the resource's detail page.
	RedirectToDetail Policy = iota
	// Reject refuses the request with ErrForbidden.
	Reject
	// Conceal pretends the resource does not exist.
	Conceal
)

// IsOwner reports whether actor authored res. Anonymous actors own nothing.
func IsOwner(actor *data.User, res Owned) bool {
	return actor != nil && actor.ID == res.OwnerID()
}

// RequireOwner returns nil for the owner and the policy's outcome for anyone else.
func RequireOwner(actor *data.User, res Owned, policy Policy) error {
	if IsOwner(actor, res) {
		return nil
	}
	switch policy {
	case RedirectToDetail:
		return &RedirectError{URL: res.DetailURL()}
	case Conceal:
		return ErrNotFound
	default:
		return ErrForbidden
	}
}
