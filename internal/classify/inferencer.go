// Package classify infers a category for a new book. The LLM is an optional
// enrichment here: every failure path lands on the keyword fallback, so the
// caller always gets a vocabulary label back.
package classify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"book-chatter/internal/llm"
	"book-chatter/internal/vocab"
)

type Inferencer struct {
	llm     llm.Client
	timeout time.Duration
}

// New builds an inferencer. client may be nil; inference then skips the
// generative step entirely.
func New(client llm.Client, timeout time.Duration) *Inferencer {
	return &Inferencer{llm: client, timeout: timeout}
}

// Infer picks a vocabulary category for the book. It never returns an error
// and never returns a label outside the vocabulary.
func (i *Inferencer) Infer(ctx context.Context, title, author string) string {
	if label, ok := i.inferGenerative(ctx, title, author); ok {
		return label
	}
	if label, ok := vocab.MatchKeywords(title + " " + author); ok {
		return label
	}
	return vocab.Unknown
}

func (i *Inferencer) inferGenerative(ctx context.Context, title, author string) (string, bool) {
	if i.llm == nil {
		return "", false
	}
	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	resp, err := i.llm.Generate(ctx, []llm.Message{
		{Role: "system", Content: categoryPrompt()},
		{Role: "user", Content: fmt.Sprintf("Title: %s\nAuthor: %s", title, author)},
	})
	if err != nil {
		log.Printf("⚠️ category inference failed for %q: %v", title, err)
		return "", false
	}

	var parsed struct {
		Category string `json:"category"`
	}
	if !llm.ExtractJSONInto(resp.Content, &parsed) {
		log.Printf("⚠️ category inference returned no JSON for %q: %q", title, resp.Content)
		return "", false
	}
	label := vocab.Normalize(parsed.Category)
	if label == vocab.Unknown {
		// Let the keyword fallback have a try before settling on the
		// catch-all.
		return "", false
	}
	return label, true
}

func categoryPrompt() string {
	return "You are a library cataloguer. Pick exactly one category for the given book from this list: " +
		strings.Join(vocab.Labels, ", ") +
		`. Answer with strict JSON only: {"category": "<one of the list>"}. No markdown, no explanations.`
}
