package router

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"book-chatter/internal/catalog"
	"book-chatter/internal/classify"
	"book-chatter/internal/history"
	"book-chatter/internal/llm"
)

// scriptedLLM returns queued responses in order, or a fixed error.
type scriptedLLM struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptedLLM) Generate(ctx context.Context, msgs []llm.Message) (llm.Response, error) {
	s.calls++
	if s.err != nil {
		return llm.Response{}, s.err
	}
	if len(s.responses) == 0 {
		return llm.Response{Content: ""}, nil
	}
	r := s.responses[0]
	s.responses = s.responses[1:]
	return llm.Response{Content: r, Model: "scripted"}, nil
}

func newTestRouter(store catalog.Store, routerLLM llm.Client, inferLLM llm.Client) *Router {
	return New(
		store,
		routerLLM,
		classify.New(inferLLM, time.Second),
		history.NewManager(),
		nil,
		Config{HistoryWindow: 6, LLMTimeout: time.Second, SmallTalk: true},
	)
}

func TestPrefixBeatsGenerativeClassifier(t *testing.T) {
	ctx := context.Background()

	// Once with a dead classifier, once with a classifier that would
	// happily misroute; the reply must be identical.
	for name, routerLLM := range map[string]llm.Client{
		"classifier down":    &scriptedLLM{err: errors.New("service unavailable")},
		"classifier misfire": &scriptedLLM{responses: []string{`{"intent": "small_talk"}`}},
	} {
		store := catalog.NewMemoryStore()
		infer := &scriptedLLM{err: errors.New("service unavailable")}
		r := newTestRouter(store, routerLLM, infer)

		got, err := r.Handle(ctx, "s", "ADD BOOK: bn: Foo; at: Bar")
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !strings.Contains(got, "Foo") || !strings.Contains(got, "Added") {
			t.Fatalf("%s: expected add reply, got %q", name, got)
		}
		if llmFake, ok := routerLLM.(*scriptedLLM); ok && llmFake.calls != 0 {
			t.Fatalf("%s: classifier was consulted for a prefixed command", name)
		}
		if n, _ := store.CountByCategory(ctx, "Unknown"); n != 1 {
			t.Fatalf("%s: book not stored, count=%d", name, n)
		}
	}
}

func TestAddBookParseErrorMutatesNothing(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	r := newTestRouter(store, &scriptedLLM{}, &scriptedLLM{})

	got, err := r.Handle(ctx, "s", "add book: Dune by Frank Herbert")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(got, "bn: <title>; at: <author>") {
		t.Fatalf("expected usage hint, got %q", got)
	}
	if books, _ := store.ListAll(ctx); len(books) != 0 {
		t.Fatalf("parse error must not mutate the catalog")
	}
}

func TestAddBookShelfProgression(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	infer := &scriptedLLM{}
	r := newTestRouter(store, &scriptedLLM{}, infer)

	for i := 0; i < 16; i++ {
		infer.responses = append(infer.responses, `{"category": "History"}`)
		got, err := r.Handle(ctx, "s", fmt.Sprintf("add book: bn: Volume %d; at: Gibbon", i))
		if err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
		want := "H1"
		if i >= 15 {
			want = "H2"
		}
		if !strings.Contains(got, want) {
			t.Fatalf("add %d: expected shelf %s in %q", i, want, got)
		}
	}
}

func TestAddBookDuplicateRejected(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	infer := &scriptedLLM{responses: []string{`{"category": "Literature"}`, `{"category": "Literature"}`}}
	r := newTestRouter(store, &scriptedLLM{}, infer)

	if _, err := r.Handle(ctx, "s", "add book: bn: Dune; at: Frank Herbert"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	got, err := r.Handle(ctx, "s", "add book: bn: Dune; at: Frank Herbert")
	if err != nil {
		t.Fatalf("duplicate add: %v", err)
	}
	if !strings.Contains(got, "already in the catalog") {
		t.Fatalf("expected duplicate reply, got %q", got)
	}
	if books, _ := store.ListAll(ctx); len(books) != 1 {
		t.Fatalf("duplicate must not be stored")
	}
}

func TestDeleteBookNotFound(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	r := newTestRouter(store, &scriptedLLM{}, &scriptedLLM{})

	got, err := r.Handle(ctx, "s", "delete book: bn: Ghost; at: Nobody")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(got, "Nothing found") {
		t.Fatalf("expected not-found reply, got %q", got)
	}
	if books, _ := store.ListAll(ctx); len(books) != 0 {
		t.Fatalf("catalog must stay unchanged")
	}
}

func TestAskPositionVariants(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	infer := &scriptedLLM{responses: []string{`{"category": "History"}`}}
	r := newTestRouter(store, &scriptedLLM{}, infer)

	if _, err := r.Handle(ctx, "s", "add book: bn: The Guns of August; at: Barbara Tuchman"); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := r.Handle(ctx, "s", "vị trí H1")
	if err != nil {
		t.Fatalf("position query: %v", err)
	}
	if !strings.Contains(got, "The Guns of August") {
		t.Fatalf("expected occupant, got %q", got)
	}

	got, err = r.Handle(ctx, "s", "position Z9")
	if err != nil {
		t.Fatalf("position query: %v", err)
	}
	if !strings.Contains(got, "empty") {
		t.Fatalf("expected empty-shelf reply, got %q", got)
	}
}

func TestRecapFallsBackGracefully(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	infer := &scriptedLLM{responses: []string{`{"category": "Literature"}`}}
	routerLLM := &scriptedLLM{err: errors.New("service down")}
	r := newTestRouter(store, routerLLM, infer)

	if _, err := r.Handle(ctx, "s", "add book: bn: Dune; at: Frank Herbert"); err != nil {
		t.Fatalf("add: %v", err)
	}
	before, _ := store.ListAll(ctx)

	got, err := r.Handle(ctx, "s", "give me a recap of Dune")
	if err != nil {
		t.Fatalf("recap must not propagate service failure: %v", err)
	}
	if !strings.Contains(got, "can't summarize") {
		t.Fatalf("expected graceful fallback, got %q", got)
	}
	after, _ := store.ListAll(ctx)
	if len(before) != len(after) {
		t.Fatalf("recap must not modify the catalog")
	}
}

func TestRecapUnknownBook(t *testing.T) {
	ctx := context.Background()
	r := newTestRouter(catalog.NewMemoryStore(), &scriptedLLM{}, &scriptedLLM{})

	got, err := r.Handle(ctx, "s", "recap of some unknown thing")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(got, "Nothing found") {
		t.Fatalf("expected not-found reply, got %q", got)
	}
}

func TestRecommendationStaysInCandidateSet(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	infer := &scriptedLLM{responses: []string{`{"category": "History"}`, `{"category": "History"}`}}
	// First call: intent classification. Second: candidate pick that
	// hallucinates a title outside the set.
	routerLLM := &scriptedLLM{responses: []string{
		`{"intent": "recommend_book"}`,
		`{"title": "A Book We Do Not Have", "reason": "sounds great"}`,
	}}
	r := newTestRouter(store, routerLLM, infer)

	if _, err := r.Handle(ctx, "s", "add book: bn: Sapiens; at: Yuval Noah Harari"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := r.Handle(ctx, "s", "add book: bn: Guns Germs and Steel; at: Jared Diamond"); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := r.Handle(ctx, "s", "what should I read, sapiens or guns germs?")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(got, "Sapiens") {
		t.Fatalf("expected fallback to first candidate, got %q", got)
	}
	if strings.Contains(got, "A Book We Do Not Have") {
		t.Fatalf("hallucinated title leaked into reply: %q", got)
	}
}

func TestSingleCandidateSkipsTheModel(t *testing.T) {
	ctx := context.Background()
	store := catalog.NewMemoryStore()
	infer := &scriptedLLM{responses: []string{`{"category": "History"}`}}
	routerLLM := &scriptedLLM{responses: []string{`{"intent": "search_book"}`}}
	r := newTestRouter(store, routerLLM, infer)

	if _, err := r.Handle(ctx, "s", "add book: bn: Sapiens; at: Yuval Noah Harari"); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := r.Handle(ctx, "s", "looking for sapiens")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(got, "Sapiens") {
		t.Fatalf("expected the single candidate, got %q", got)
	}
	if routerLLM.calls != 1 {
		t.Fatalf("expected only the classification call, got %d", routerLLM.calls)
	}
}

func TestSmallTalkFallsBackWhenServiceDown(t *testing.T) {
	ctx := context.Background()
	r := newTestRouter(catalog.NewMemoryStore(), &scriptedLLM{err: errors.New("down")}, &scriptedLLM{})

	got, err := r.Handle(ctx, "s", "hello there!")
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(got, "book catalog") {
		t.Fatalf("expected out-of-scope reply, got %q", got)
	}
}
