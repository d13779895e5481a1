package catalog

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMemoryStoreAddAllocatesInCriticalSection(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	alloc := func(count int) string { return fmt.Sprintf("H%d", count/15+1) }
	for i := 0; i < 16; i++ {
		b, err := s.Add(ctx, fmt.Sprintf("Book %d", i), "Author", "History", alloc)
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		want := "H1"
		if i >= 15 {
			want = "H2"
		}
		if b.Position != want {
			t.Fatalf("book %d got position %q, want %q", i, b.Position, want)
		}
	}

	n, err := s.CountByCategory(ctx, "History")
	if err != nil || n != 16 {
		t.Fatalf("count = %d, err = %v", n, err)
	}
}

func TestMemoryStoreRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	alloc := func(int) string { return "H1" }

	if _, err := s.Add(ctx, "Dune", "Frank Herbert", "Literature", alloc); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := s.Add(ctx, "Dune", "Frank Herbert", "Literature", alloc)
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemoryStoreDeleteAndLookup(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	alloc := func(int) string { return "L1" }

	if _, err := s.Add(ctx, "Dune", "Frank Herbert", "Literature", alloc); err != nil {
		t.Fatalf("add: %v", err)
	}

	b, err := s.FindByShelfCode(ctx, "l1")
	if err != nil || b == nil || b.Title != "Dune" {
		t.Fatalf("shelf lookup: %+v, %v", b, err)
	}
	if b, err := s.FindByShelfCode(ctx, "Z9"); err != nil || b != nil {
		t.Fatalf("empty shelf should yield nil, got %+v, %v", b, err)
	}

	n, err := s.DeleteByTitleAuthor(ctx, "Dune", "Frank Herbert")
	if err != nil || n != 1 {
		t.Fatalf("delete: n=%d err=%v", n, err)
	}
	n, err = s.DeleteByTitleAuthor(ctx, "Dune", "Frank Herbert")
	if err != nil || n != 0 {
		t.Fatalf("second delete: n=%d err=%v", n, err)
	}
}

func TestMemoryStoreFindByKeyword(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	alloc := func(int) string { return "H1" }
	mustAdd := func(title, author, cat string) {
		t.Helper()
		if _, err := s.Add(ctx, title, author, cat, alloc); err != nil {
			t.Fatalf("add %q: %v", title, err)
		}
	}
	mustAdd("The Guns of August", "Barbara Tuchman", "History")
	mustAdd("Thinking, Fast and Slow", "Daniel Kahneman", "Psychology")

	got, err := s.FindByKeyword(ctx, "something about august guns")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(got) != 1 || got[0].Title != "The Guns of August" {
		t.Fatalf("unexpected result: %+v", got)
	}

	got, err = s.FindByKeyword(ctx, "a b")
	if err != nil || got != nil {
		t.Fatalf("short tokens must not match, got %+v, %v", got, err)
	}
}
