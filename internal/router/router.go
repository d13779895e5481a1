// Package router classifies inbound messages and dispatches catalog
// operations. Structured commands are matched by fixed prefixes before any
// generative classification runs, so a flaky model can never misroute them.
package router

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"book-chatter/internal/catalog"
	"book-chatter/internal/classify"
	"book-chatter/internal/history"
	"book-chatter/internal/llm"
	"book-chatter/internal/reply"
	"book-chatter/internal/shelf"
	"book-chatter/internal/storage"
)

var (
	// Field grammar shared by add/delete: "bn: <title>; at: <author>".
	paramsRe = regexp.MustCompile(`(?i)bn:\s*(.+?)\s*;\s*at:\s*(.+)$`)
	// Explicit shelf queries like "vị trí L2" or "position H1".
	positionRe = regexp.MustCompile(`(?i)(?:vị trí|vi tri|position|shelf)\s*:?\s*([a-z])\s*(\d+)`)
)

var recapTriggers = []string{"recap", "tóm tắt", "tom tat", "summarize", "summary"}

var errNoLLM = errors.New("no text generation client configured")

type Config struct {
	// HistoryWindow bounds how many turns feed generative calls.
	HistoryWindow int
	// LLMTimeout bounds every text generation call; expiry is treated as a
	// service failure and takes the fallback path.
	LLMTimeout time.Duration
	// SmallTalk forwards unclassified chat to the model when true; when
	// false such messages get a fixed out-of-scope reply.
	SmallTalk    bool
	SystemPrompt string
}

type Router struct {
	store      catalog.Store
	llm        llm.Client
	inferencer *classify.Inferencer
	history    *history.Manager
	recorder   storage.Recorder
	cfg        Config
}

func New(store catalog.Store, client llm.Client, inferencer *classify.Inferencer, hist *history.Manager, rec storage.Recorder, cfg Config) *Router {
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = 6
	}
	return &Router{
		store:      store,
		llm:        client,
		inferencer: inferencer,
		history:    hist,
		recorder:   rec,
		cfg:        cfg,
	}
}

// Handle runs one conversational turn and returns the reply text. An error
// means the catalog store failed; generative-service failures never surface
// here.
func (r *Router) Handle(ctx context.Context, sessionID, message string) (string, error) {
	r.history.AppendUser(sessionID, message)

	intent, out, err := r.dispatch(ctx, sessionID, message)
	if err != nil {
		return "", fmt.Errorf("%s: %w", intent, err)
	}

	text := reply.Format(out)
	r.history.AppendAssistant(sessionID, text)
	if r.recorder != nil {
		if err := r.recorder.AppendTurn(storage.Event{
			Timestamp: time.Now().UTC(),
			SessionID: sessionID,
			Intent:    string(intent),
			Message:   message,
			Reply:     text,
		}); err != nil {
			log.Printf("⚠️ failed to record turn: %v", err)
		}
	}
	return text, nil
}

func (r *Router) dispatch(ctx context.Context, sessionID, message string) (Intent, reply.Outcome, error) {
	lower := strings.ToLower(strings.TrimSpace(message))

	// Deterministic prefix pass.
	switch {
	case strings.HasPrefix(lower, "add book"):
		out, err := r.addBook(ctx, message)
		return IntentAddBook, out, err
	case strings.HasPrefix(lower, "delete book") || strings.HasPrefix(lower, "remove book"):
		out, err := r.deleteBook(ctx, message)
		return IntentDeleteBook, out, err
	}
	if code, ok := shelfCodeQuery(lower); ok {
		out, err := r.askPosition(ctx, code)
		return IntentAskPosition, out, err
	}
	for _, t := range recapTriggers {
		if strings.Contains(lower, t) {
			out, err := r.askRecap(ctx, sessionID, message)
			return IntentAskRecap, out, err
		}
	}

	// Generative intent pass.
	intent := r.classifyIntent(ctx, message)
	switch intent {
	case IntentAddBook:
		out, err := r.addBook(ctx, message)
		return intent, out, err
	case IntentDeleteBook:
		out, err := r.deleteBook(ctx, message)
		return intent, out, err
	case IntentAskPosition:
		if code, ok := shelfCodeQuery(lower); ok {
			out, err := r.askPosition(ctx, code)
			return intent, out, err
		}
		return intent, reply.Outcome{Kind: reply.NotFound, Text: "that shelf"}, nil
	case IntentAskRecap:
		out, err := r.askRecap(ctx, sessionID, message)
		return intent, out, err
	case IntentSearchBook, IntentRecommendBook:
		out, err := r.recommend(ctx, message)
		return intent, out, err
	default:
		out := r.smallTalk(ctx, sessionID)
		return intent, out, nil
	}
}

func shelfCodeQuery(lower string) (string, bool) {
	m := positionRe.FindStringSubmatch(lower)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]) + m[2], true
}

// classifyIntent asks the model to place the message in the intent
// enumeration. Any failure degrades to Other.
func (r *Router) classifyIntent(ctx context.Context, message string) Intent {
	resp, err := r.generate(ctx, []llm.Message{
		{Role: "system", Content: intentPrompt()},
		{Role: "user", Content: message},
	})
	if err != nil {
		log.Printf("⚠️ intent classification failed: %v", err)
		return IntentOther
	}
	var parsed struct {
		Intent string `json:"intent"`
	}
	if !llm.ExtractJSONInto(resp.Content, &parsed) {
		log.Printf("⚠️ intent classification returned no JSON: %q", resp.Content)
		return IntentOther
	}
	return parseIntent(parsed.Intent)
}

func intentPrompt() string {
	return "You route messages for a library assistant. Classify the user message into exactly one intent: " +
		"add_book, delete_book, ask_position, ask_recap, search_book, recommend_book, small_talk, other. " +
		`Answer with strict JSON only: {"intent": "<intent>"}.`
}

func (r *Router) addBook(ctx context.Context, message string) (reply.Outcome, error) {
	title, author, ok := extractParams(message)
	if !ok {
		return reply.Outcome{Kind: reply.ParseError, Hint: reply.AddUsageHint}, nil
	}

	category := r.inferencer.Infer(ctx, title, author)
	book, err := r.store.Add(ctx, title, author, category, func(count int) string {
		return shelf.Allocate(category, count)
	})
	if errors.Is(err, catalog.ErrDuplicate) {
		return reply.Outcome{Kind: reply.Duplicate, Book: &catalog.Book{Title: title, Author: author}}, nil
	}
	if err != nil {
		return reply.Outcome{}, err
	}
	log.Printf("📗 added %q by %s (%s, shelf %s)", book.Title, book.Author, book.Category, book.Position)
	return reply.Outcome{Kind: reply.Added, Book: &book}, nil
}

func (r *Router) deleteBook(ctx context.Context, message string) (reply.Outcome, error) {
	title, author, ok := extractParams(message)
	if !ok {
		return reply.Outcome{Kind: reply.ParseError, Hint: reply.DeleteUsageHint}, nil
	}

	n, err := r.store.DeleteByTitleAuthor(ctx, title, author)
	if err != nil {
		return reply.Outcome{}, err
	}
	if n == 0 {
		return reply.Outcome{Kind: reply.NotFound, Text: fmt.Sprintf("%q by %s", title, author)}, nil
	}
	log.Printf("🗑️ deleted %q by %s", title, author)
	return reply.Outcome{Kind: reply.Deleted, Book: &catalog.Book{Title: title, Author: author}}, nil
}

// extractParams applies the command grammar "bn: <title>; at: <author>".
func extractParams(message string) (title, author string, ok bool) {
	m := paramsRe.FindStringSubmatch(message)
	if m == nil {
		return "", "", false
	}
	title = strings.TrimSpace(m[1])
	author = strings.TrimSpace(m[2])
	if title == "" || author == "" {
		return "", "", false
	}
	return title, author, true
}

func (r *Router) askPosition(ctx context.Context, code string) (reply.Outcome, error) {
	book, err := r.store.FindByShelfCode(ctx, code)
	if err != nil {
		return reply.Outcome{}, err
	}
	if book == nil {
		return reply.Outcome{Kind: reply.PositionEmpty, Text: code}, nil
	}
	return reply.Outcome{Kind: reply.PositionFound, Book: book}, nil
}

func (r *Router) askRecap(ctx context.Context, sessionID, message string) (reply.Outcome, error) {
	book, err := r.resolveRecapTarget(ctx, sessionID, message)
	if err != nil {
		return reply.Outcome{}, err
	}
	if book == nil {
		return reply.Outcome{Kind: reply.NotFound, Text: "that book"}, nil
	}

	resp, err := r.generate(ctx, []llm.Message{
		{Role: "system", Content: "You are a librarian. Summarize the given book in at most 3 sentences, plain text."},
		{Role: "user", Content: fmt.Sprintf("Title: %s\nAuthor: %s", book.Title, book.Author)},
	})
	if err != nil {
		log.Printf("⚠️ recap generation failed for %q: %v", book.Title, err)
		return reply.Outcome{Kind: reply.Passthrough, Text: fmt.Sprintf("😕 I can't summarize %q right now, please try again later.", book.Title)}, nil
	}
	return reply.Outcome{Kind: reply.Recap, Book: book, Text: strings.TrimSpace(resp.Content)}, nil
}

// resolveRecapTarget finds the book the message talks about: an exact
// catalog match on the message first, then a scan over recent turns of the
// same session.
func (r *Router) resolveRecapTarget(ctx context.Context, sessionID, message string) (*catalog.Book, error) {
	lower := strings.ToLower(message)
	books, err := r.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range books {
		if strings.Contains(lower, strings.ToLower(books[i].Title)) ||
			strings.Contains(lower, strings.ToLower(books[i].Author)) {
			return &books[i], nil
		}
	}

	candidates, err := r.store.FindByKeyword(ctx, message)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 {
		return &candidates[0], nil
	}

	// Fall back to what the conversation was about.
	for _, m := range backwards(r.history.Recent(sessionID, r.cfg.HistoryWindow)) {
		if m.Role != "user" || strings.EqualFold(m.Content, message) {
			continue
		}
		got, err := r.store.FindByKeyword(ctx, m.Content)
		if err != nil {
			return nil, err
		}
		if len(got) > 0 {
			return &got[0], nil
		}
	}
	return nil, nil
}

func backwards(msgs []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		out = append(out, msgs[i])
	}
	return out
}

// recommend filters the catalog by keyword overlap and lets the model pick
// from the candidates only. A hallucinated title falls back to the first
// candidate.
func (r *Router) recommend(ctx context.Context, message string) (reply.Outcome, error) {
	candidates, err := r.store.FindByKeyword(ctx, message)
	if err != nil {
		return reply.Outcome{}, err
	}
	if len(candidates) == 0 {
		return reply.Outcome{Kind: reply.NotFound, Text: "that request"}, nil
	}
	if len(candidates) == 1 {
		return reply.Outcome{Kind: reply.Recommendation, Book: &candidates[0]}, nil
	}

	resp, err := r.generate(ctx, []llm.Message{
		{Role: "system", Content: recommendPrompt(candidates)},
		{Role: "user", Content: message},
	})
	if err != nil {
		log.Printf("⚠️ recommendation reasoning failed: %v", err)
		return reply.Outcome{Kind: reply.Recommendation, Book: &candidates[0]}, nil
	}

	var parsed struct {
		Title  string `json:"title"`
		Reason string `json:"reason"`
	}
	if llm.ExtractJSONInto(resp.Content, &parsed) {
		for i := range candidates {
			if strings.EqualFold(candidates[i].Title, strings.TrimSpace(parsed.Title)) {
				return reply.Outcome{Kind: reply.Recommendation, Book: &candidates[i], Text: strings.TrimSpace(parsed.Reason)}, nil
			}
		}
		log.Printf("⚠️ model picked %q, not among %d candidates", parsed.Title, len(candidates))
	}
	return reply.Outcome{Kind: reply.Recommendation, Book: &candidates[0]}, nil
}

func recommendPrompt(candidates []catalog.Book) string {
	var b strings.Builder
	b.WriteString("You are a librarian. Pick exactly one book for the user from this list and nothing else:\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %q by %s (%s)\n", i+1, c.Title, c.Author, c.Category)
	}
	b.WriteString(`Answer with strict JSON only: {"title": "<exact title from the list>", "reason": "<one sentence>"}.`)
	return b.String()
}

func (r *Router) smallTalk(ctx context.Context, sessionID string) reply.Outcome {
	const outOfScope = "🤖 I can only help with the book catalog. Try: add book: bn: <title>; at: <author>"
	if !r.cfg.SmallTalk {
		return reply.Outcome{Kind: reply.Passthrough, Text: outOfScope}
	}

	var msgs []llm.Message
	if r.cfg.SystemPrompt != "" {
		msgs = append(msgs, llm.Message{Role: "system", Content: r.cfg.SystemPrompt})
	}
	msgs = append(msgs, r.history.Recent(sessionID, r.cfg.HistoryWindow)...)

	resp, err := r.generate(ctx, msgs)
	if err != nil {
		log.Printf("⚠️ small talk generation failed: %v", err)
		return reply.Outcome{Kind: reply.Passthrough, Text: outOfScope}
	}
	return reply.Outcome{Kind: reply.Passthrough, Text: strings.TrimSpace(resp.Content)}
}

func (r *Router) generate(ctx context.Context, msgs []llm.Message) (llm.Response, error) {
	if r.llm == nil {
		return llm.Response{}, errNoLLM
	}
	if r.cfg.LLMTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.LLMTimeout)
		defer cancel()
	}
	return r.llm.Generate(ctx, msgs)
}
