package catalog

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store. It backs tests and ephemeral runs; the
// sqlite store is the durable implementation.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	books  []Book
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func (s *MemoryStore) Add(ctx context.Context, title, author, category string, allocate AllocateFunc) (Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if b.Title == title && b.Author == author {
			return Book{}, ErrDuplicate
		}
	}
	count := 0
	for _, b := range s.books {
		if b.Category == category {
			count++
		}
	}
	book := Book{
		ID:        s.nextID,
		Title:     title,
		Author:    author,
		Category:  category,
		Position:  allocate(count),
		CreatedAt: time.Now().UTC(),
	}
	s.nextID++
	s.books = append(s.books, book)
	return book, nil
}

func (s *MemoryStore) DeleteByTitleAuthor(ctx context.Context, title, author string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kept []Book
	var removed int64
	for _, b := range s.books {
		if b.Title == title && b.Author == author {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	s.books = kept
	return removed, nil
}

func (s *MemoryStore) CountByCategory(ctx context.Context, category string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.books {
		if b.Category == category {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) FindByShelfCode(ctx context.Context, code string) (*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.books {
		if strings.EqualFold(b.Position, code) {
			out := b
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Book, len(s.books))
	copy(out, s.books)
	return out, nil
}

func (s *MemoryStore) FindByKeyword(ctx context.Context, text string) ([]Book, error) {
	words := Keywords(text)
	if len(words) == 0 {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Book
	for _, b := range s.books {
		haystack := strings.ToLower(b.Title + " " + b.Author + " " + b.Category)
		for _, w := range words {
			if strings.Contains(haystack, w) {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}
