// Command catalog-mcp-server exposes the book catalog as MCP tools over
// stdio, so MCP-capable assistants can manage the shelf directly.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"book-chatter/internal/catalog"
	"book-chatter/internal/catalog/sqlite"
	"book-chatter/internal/classify"
	"book-chatter/internal/config"
	"book-chatter/internal/llm"
	"book-chatter/internal/shelf"
)

type AddBookParams struct {
	Title    string `json:"title" mcp:"the book title"`
	Author   string `json:"author" mcp:"the book author"`
	Category string `json:"category,omitempty" mcp:"optional category; inferred when omitted"`
}

type DeleteBookParams struct {
	Title  string `json:"title" mcp:"the exact book title"`
	Author string `json:"author" mcp:"the exact book author"`
}

type FindPositionParams struct {
	Code string `json:"code" mcp:"shelf code, e.g. H1"`
}

type ListBooksParams struct{}

type catalogServer struct {
	store      catalog.Store
	inferencer *classify.Inferencer
}

func (s *catalogServer) AddBook(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[AddBookParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	if args.Title == "" || args.Author == "" {
		return errorResult("❌ title and author are required"), nil
	}

	category := args.Category
	if category == "" {
		category = s.inferencer.Infer(ctx, args.Title, args.Author)
	}

	book, err := s.store.Add(ctx, args.Title, args.Author, category, func(count int) string {
		return shelf.Allocate(category, count)
	})
	if errors.Is(err, catalog.ErrDuplicate) {
		return errorResult(fmt.Sprintf("❌ %q by %s is already in the catalog", args.Title, args.Author)), nil
	}
	if err != nil {
		return errorResult(fmt.Sprintf("❌ failed to add book: %v", err)), nil
	}
	return textResult(fmt.Sprintf("✅ Added %q by %s (category %s, shelf %s)", book.Title, book.Author, book.Category, book.Position)), nil
}

func (s *catalogServer) DeleteBook(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[DeleteBookParams]) (*mcp.CallToolResultFor[any], error) {
	args := params.Arguments
	n, err := s.store.DeleteByTitleAuthor(ctx, args.Title, args.Author)
	if err != nil {
		return errorResult(fmt.Sprintf("❌ failed to delete book: %v", err)), nil
	}
	if n == 0 {
		return errorResult(fmt.Sprintf("❌ no book %q by %s in the catalog", args.Title, args.Author)), nil
	}
	return textResult(fmt.Sprintf("🗑️ Deleted %q by %s", args.Title, args.Author)), nil
}

func (s *catalogServer) FindPosition(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[FindPositionParams]) (*mcp.CallToolResultFor[any], error) {
	book, err := s.store.FindByShelfCode(ctx, params.Arguments.Code)
	if err != nil {
		return errorResult(fmt.Sprintf("❌ lookup failed: %v", err)), nil
	}
	if book == nil {
		return textResult(fmt.Sprintf("📭 Shelf %s is empty", strings.ToUpper(params.Arguments.Code))), nil
	}
	return textResult(fmt.Sprintf("📍 Shelf %s: %q by %s", book.Position, book.Title, book.Author)), nil
}

func (s *catalogServer) ListBooks(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[ListBooksParams]) (*mcp.CallToolResultFor[any], error) {
	books, err := s.store.ListAll(ctx)
	if err != nil {
		return errorResult(fmt.Sprintf("❌ listing failed: %v", err)), nil
	}
	if len(books) == 0 {
		return textResult("The catalog is empty."), nil
	}
	var b strings.Builder
	for _, book := range books {
		fmt.Fprintf(&b, "%s — %q by %s (%s)\n", book.Position, book.Title, book.Author, book.Category)
	}
	return textResult(b.String()), nil
}

func textResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResultFor[any] {
	return &mcp.CallToolResultFor[any]{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cfg := config.New()

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ failed to open catalog store: %v", err)
	}
	defer store.Close()

	// Category inference is optional here: without credentials the
	// inferencer falls back to its keyword rules.
	var client llm.Client
	if cfg.OpenAIAPIKey != "" || cfg.YandexOAuthToken != "" {
		factory := &llm.Factory{
			OpenaiAPIKey:       cfg.OpenAIAPIKey,
			OpenaiBaseURL:      cfg.OpenAIBaseURL,
			OpenRouterReferrer: cfg.OpenRouterReferrer,
			OpenRouterTitle:    cfg.OpenRouterTitle,
			YandexOAuthToken:   cfg.YandexOAuthToken,
			YandexFolderID:     cfg.YandexFolderID,
		}
		if c, err := factory.CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel); err == nil {
			client = c
		} else {
			log.Printf("⚠️ llm client unavailable, using keyword fallback: %v", err)
		}
	}

	log.Printf("🚀 Starting catalog MCP server (db: %s)", cfg.DatabasePath)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "book-chatter-catalog-mcp",
		Version: "1.0.0",
	}, nil)

	cs := &catalogServer{
		store:      store,
		inferencer: classify.New(client, cfg.LLMTimeout),
	}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_book",
		Description: "Adds a book to the catalog, inferring its category and shelf position",
	}, cs.AddBook)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete_book",
		Description: "Deletes a book identified by exact title and author",
	}, cs.DeleteBook)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_position",
		Description: "Looks up which book occupies a shelf code",
	}, cs.FindPosition)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_books",
		Description: "Lists every book in the catalog with its shelf position",
	}, cs.ListBooks)

	log.Printf("📋 Registered 4 tools: add_book, delete_book, find_position, list_books")

	if err := server.Run(context.Background(), mcp.NewStdioTransport()); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
