package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"book-chatter/internal/catalog/sqlite"
	"book-chatter/internal/classify"
	"book-chatter/internal/config"
	"book-chatter/internal/history"
	"book-chatter/internal/llm"
	"book-chatter/internal/router"
	"book-chatter/internal/scheduler"
	"book-chatter/internal/storage"
	"book-chatter/internal/telegram"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	deps := buildDeps(cfg)
	defer deps.Close()

	bot, err := telegram.New(cfg.TelegramBotToken, deps.Router, deps.History)
	if err != nil {
		log.Fatalf("failed to create bot: %v", err)
	}

	sched := newScheduler(cfg, deps)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	log.Println("🤖 book-chatter telegram bot started")
	bot.Start(context.Background())
}

func readSystemPrompt(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("system prompt file not found or unreadable at %s: %v", path, err)
		return ""
	}
	return string(data)
}

// deps bundles the wiring shared by the bot and server binaries.
type deps struct {
	Router  *router.Router
	History *history.Manager
	Store   *sqlite.Store
}

func (d *deps) Close() {
	if err := d.Store.Close(); err != nil {
		log.Printf("failed to close store: %v", err)
	}
}

func buildDeps(cfg *config.Config) *deps {
	factory := newLLMFactory(cfg)
	client, err := factory.CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open catalog store: %v", err)
	}

	var rec storage.Recorder
	if cfg.LogFilePath != "" {
		fr, err := storage.NewFileRecorder(cfg.LogFilePath)
		if err != nil {
			log.Printf("failed to init turn recorder: %v", err)
		} else {
			rec = fr
		}
	}

	hist := history.NewManager()
	rt := router.New(
		store,
		client,
		classify.New(client, cfg.LLMTimeout),
		hist,
		rec,
		router.Config{
			HistoryWindow: cfg.HistoryWindow,
			LLMTimeout:    cfg.LLMTimeout,
			SmallTalk:     cfg.SmallTalk,
			SystemPrompt:  readSystemPrompt(cfg.SystemPromptPath),
		},
	)
	return &deps{Router: rt, History: hist, Store: store}
}

func newLLMFactory(cfg *config.Config) *llm.Factory {
	return &llm.Factory{
		OpenaiAPIKey:       cfg.OpenAIAPIKey,
		OpenaiBaseURL:      cfg.OpenAIBaseURL,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
		YandexOAuthToken:   cfg.YandexOAuthToken,
		YandexFolderID:     cfg.YandexFolderID,
	}
}

func newScheduler(cfg *config.Config, d *deps) *scheduler.Scheduler {
	sched := scheduler.New()
	sched.SetPruneFunction(func() int {
		return d.History.Prune(cfg.SessionTTL)
	})
	sched.SetCensusFunction(func(ctx context.Context) error {
		books, err := d.Store.ListAll(ctx)
		if err != nil {
			return err
		}
		counts := make(map[string]int)
		for _, b := range books {
			counts[b.Category]++
		}
		log.Printf("📊 catalog census: %d book(s), by category: %v", len(books), counts)
		return nil
	})
	return sched
}
