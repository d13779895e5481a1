package classify

import (
	"context"
	"errors"
	"testing"
	"time"

	"book-chatter/internal/llm"
	"book-chatter/internal/vocab"
)

type fakeLLM struct {
	content string
	err     error
	calls   int
}

func (f *fakeLLM) Generate(ctx context.Context, messages []llm.Message) (llm.Response, error) {
	f.calls++
	if f.err != nil {
		return llm.Response{}, f.err
	}
	return llm.Response{Content: f.content, Model: "fake"}, nil
}

func TestInferUsesGenerativeAnswer(t *testing.T) {
	f := &fakeLLM{content: `Sure: {"category": "history"} hope that helps`}
	i := New(f, time.Second)
	if got := i.Infer(context.Background(), "Some Title", "Some Author"); got != "History" {
		t.Fatalf("got %q", got)
	}
}

func TestInferFallsBackOnServiceError(t *testing.T) {
	f := &fakeLLM{err: errors.New("timeout")}
	i := New(f, time.Second)
	got := i.Infer(context.Background(), "A Brief History of Time", "Stephen Hawking")
	if got != "History" {
		t.Fatalf("keyword fallback expected History, got %q", got)
	}
	if f.calls != 1 {
		t.Fatalf("expected one generate call, got %d", f.calls)
	}
}

func TestInferFallsBackOnGarbageOutput(t *testing.T) {
	f := &fakeLLM{content: "I cannot answer that."}
	i := New(f, time.Second)
	got := i.Infer(context.Background(), "The Psychology of Money", "Morgan Housel")
	// Both Psychology and Economics rules trigger; Psychology is listed
	// first and wins.
	if got != "Psychology" {
		t.Fatalf("got %q", got)
	}
}

func TestInferCatchAllWhenNothingMatches(t *testing.T) {
	f := &fakeLLM{content: `{"category": "cooking"}`}
	i := New(f, time.Second)
	if got := i.Infer(context.Background(), "Zzz", "Yyy"); got != vocab.Unknown {
		t.Fatalf("got %q", got)
	}
}

func TestInferWithoutClient(t *testing.T) {
	i := New(nil, 0)
	if got := i.Infer(context.Background(), "A novel about things", "Anon"); got != "Literature" {
		t.Fatalf("got %q", got)
	}
}
