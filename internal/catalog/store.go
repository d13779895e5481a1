package catalog

import (
	"context"
	"errors"
)

// ErrDuplicate is returned by Add when a (title, author) pair already
// exists. Duplicates are rejected, not updated.
var ErrDuplicate = errors.New("book already exists")

// AllocateFunc computes a shelf position from the current number of books in
// the category. Store implementations call it inside the same transaction or
// critical section as the insert, so concurrent additions cannot read the
// same count.
type AllocateFunc func(countInCategory int) string

// Store abstracts catalog persistence. Implementations must be safe for
// concurrent use. Lookups that find nothing return (nil, nil) / (0, nil)
// rather than an error; errors mean the store itself failed.
type Store interface {
	// Add inserts a new book, computing its shelf position via allocate
	// atomically with the category count.
	Add(ctx context.Context, title, author, category string, allocate AllocateFunc) (Book, error)
	// DeleteByTitleAuthor removes the book with the exact (title, author)
	// pair and reports how many rows went away.
	DeleteByTitleAuthor(ctx context.Context, title, author string) (int64, error)
	CountByCategory(ctx context.Context, category string) (int, error)
	FindByShelfCode(ctx context.Context, code string) (*Book, error)
	ListAll(ctx context.Context) ([]Book, error)
	// FindByKeyword returns books whose title, author or category overlaps
	// with any word of text (case-insensitive).
	FindByKeyword(ctx context.Context, text string) ([]Book, error)
}
