package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type LLMProvider string

const (
	ProviderOpenAI LLMProvider = "openai"
	ProviderYandex LLMProvider = "yandex"
)

type Config struct {
	// Front-ends
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	HTTPAddr         string `env:"HTTP_ADDR" envDefault:":8080"`

	// LLM settings
	LLMProvider      LLMProvider `env:"LLM_PROVIDER" envDefault:"openai"`
	OpenAIAPIKey     string      `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string      `env:"OPENAI_BASE_URL"`
	OpenAIModel      string      `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	YandexOAuthToken string      `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string      `env:"YANDEX_FOLDER_ID"`

	// OpenRouter (optional)
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// Prompts
	SystemPromptPath string `env:"SYSTEM_PROMPT_PATH" envDefault:"prompts/system_prompt.txt"`

	// Storage
	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/catalog.db"`
	LogFilePath  string `env:"LOG_FILE_PATH" envDefault:"logs/turns.jsonl"`

	// Conversation policy
	LLMTimeout    time.Duration `env:"LLM_TIMEOUT" envDefault:"20s"`
	HistoryWindow int           `env:"HISTORY_WINDOW" envDefault:"6"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SmallTalk     bool          `env:"SMALL_TALK" envDefault:"true"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}
