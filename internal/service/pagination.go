package service

import "strconv"

// PageSize is the number of posts on every listing page.
const PageSize = 10

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items    []T
	Number   int
	Size     int
	Total    int
	NumPages int
}

func (p *Page[T]) HasPrev() bool   { return p.Number > 1 }
func (p *Page[T]) HasNext() bool   { return p.Number < p.NumPages }
func (p *Page[T]) PrevNumber() int { return p.Number - 1 }
func (p *Page[T]) NextNumber() int { return p.Number + 1 }

// Offset is the number of items before this page.
func (p *Page[T]) Offset() int { return (p.Number - 1) * p.Size }

// newPage resolves a raw page number against a total. Missing or non-numeric
// numbers give the first page; numbers outside the range give the last one.
func newPage[T any](raw string, total, size int) *Page[T] {
	numPages := 1
	if total > size {
		numPages = (total + size - 1) / size
	}

	number, err := strconv.Atoi(raw)
	switch {
	case err != nil:
		number = 1
	case number < 1 || number > numPages:
		number = numPages
	}

	return &Page[T]{Number: number, Size: size, Total: total, NumPages: numPages}
}
