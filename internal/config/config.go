// Package config builds the explicit configuration object handed into each
// pipeline stage. Everything comes from the environment; an optional topics
// file can override the search queries.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Topics holds the two fixed search queries, one per digest section.
type Topics struct {
	Advancements string `yaml:"advancements"`
	General      string `yaml:"general"`
}

type Config struct {
	// Gemini settings
	GeminiAPIKey string `env:"GOOGLE_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`

	// Telegram settings. Both may be empty: the dispatcher then no-ops with
	// a warning instead of attempting a request.
	TelegramToken  string `env:"TELEGRAM_TOKEN"`
	TelegramChatID string `env:"TELEGRAM_CHAT_ID"`

	// Network and retry settings
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" env-default:"30s"`
	RetryAttempts  int           `env:"RETRY_ATTEMPTS" env-default:"3"`
	RetryDelay     time.Duration `env:"RETRY_DELAY" env-default:"5s"`

	// Collector settings
	MaxSearchResults  int `env:"MAX_SEARCH_RESULTS" env-default:"10"`
	ScrapeMaxArticles int `env:"SCRAPE_MAX_ARTICLES" env-default:"1"` // per topic
	ScrapeMaxChars    int `env:"SCRAPE_MAX_CHARS" env-default:"10000"`

	// Dispatcher settings. 4000 leaves a safety margin below the bot API's
	// hard 4096 limit.
	MessageMaxLen int           `env:"MESSAGE_MAX_LEN" env-default:"4000"`
	SendDelay     time.Duration `env:"SEND_DELAY" env-default:"1s"`

	// App settings
	TopicsPath string `env:"TOPICS_PATH"`
	Debug      bool   `env:"DEBUG" env-default:"false"`

	Topics Topics
}

// Load reads the environment (after an optional .env file) and the optional
// topics file. Credentials are intentionally not validated here: missing bot
// credentials downgrade delivery to a no-op, and a missing model key surfaces
// as an auth failure at call time.
func Load() (*Config, error) {
	// .env is a local convenience; schedulers inject real env directly.
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.Topics = defaultTopics()
	if cfg.TopicsPath != "" {
		if err := loadTopics(cfg.TopicsPath, &cfg.Topics); err != nil {
			return nil, fmt.Errorf("load topics file: %w", err)
		}
	}

	return &cfg, cfg.validate()
}

func defaultTopics() Topics {
	return Topics{
		Advancements: "latest artificial intelligence breakthroughs research new models advancements today",
		General:      "latest artificial intelligence news business tools applications trends today",
	}
}

func loadTopics(path string, topics *Topics) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var loaded Topics
	if err := yaml.NewDecoder(f).Decode(&loaded); err != nil {
		return err
	}

	if loaded.Advancements != "" {
		topics.Advancements = loaded.Advancements
	}
	if loaded.General != "" {
		topics.General = loaded.General
	}
	return nil
}

func (c *Config) validate() error {
	if c.RetryAttempts < 1 {
		return fmt.Errorf("RETRY_ATTEMPTS must be at least 1")
	}
	if c.MessageMaxLen < 1 {
		return fmt.Errorf("MESSAGE_MAX_LEN must be positive")
	}
	if c.MaxSearchResults < 1 {
		return fmt.Errorf("MAX_SEARCH_RESULTS must be positive")
	}
	if c.ScrapeMaxChars < 1 {
		return fmt.Errorf("SCRAPE_MAX_CHARS must be positive")
	}
	return nil
}
