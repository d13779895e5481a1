package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"book-chatter/internal/catalog/sqlite"
	"book-chatter/internal/classify"
	"book-chatter/internal/config"
	"book-chatter/internal/history"
	"book-chatter/internal/httpapi"
	"book-chatter/internal/llm"
	"book-chatter/internal/router"
	"book-chatter/internal/scheduler"
	"book-chatter/internal/storage"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()

	factory := &llm.Factory{
		OpenaiAPIKey:       cfg.OpenAIAPIKey,
		OpenaiBaseURL:      cfg.OpenAIBaseURL,
		OpenRouterReferrer: cfg.OpenRouterReferrer,
		OpenRouterTitle:    cfg.OpenRouterTitle,
		YandexOAuthToken:   cfg.YandexOAuthToken,
		YandexFolderID:     cfg.YandexFolderID,
	}
	client, err := factory.CreateClient(string(cfg.LLMProvider), cfg.OpenAIModel)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	store, err := sqlite.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to open catalog store: %v", err)
	}
	defer store.Close()

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

	sched := scheduler.New()
	sched.SetPruneFunction(func() int { return hist.Prune(cfg.SessionTTL) })
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	srv := httpapi.New(cfg.HTTPAddr, rt, store)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-done
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
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
