package llm

import "context"

type Message struct {
	Role    string
	Content string
}

type Response struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Client is the text generation collaborator. Implementations are fallible;
// callers that use the output only as enrichment must keep a deterministic
// fallback for the error path.
type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
