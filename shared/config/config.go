package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	YouTube    YouTubeConfig    `yaml:"youtube"`
	AI         AIConfig         `yaml:"ai"`
	Rubric     RubricConfig     `yaml:"rubric"`
	Email      EmailConfig      `yaml:"email"`
	Watchlist  []string         `yaml:"watchlist"`
	Schedule   string           `yaml:"schedule"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Server     ServerConfig     `yaml:"server"`
	Tracker    TrackerConfig    `yaml:"tracker"`
	LogLevel   string           `yaml:"log_level"`
}

type YouTubeConfig struct {
	APIKey       string `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	ClientID     string `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	TokenFile    string `yaml:"token_file"`
	Language     string `yaml:"language"`
	Render       bool   `yaml:"render"`
	WatchURL     string `yaml:"watch_url"`
}

// UsesDataAPI reports whether metadata should come from the YouTube Data API
// instead of the watch page.
func (c YouTubeConfig) UsesDataAPI() bool {
	return c.APIKey != "" || (c.ClientID != "" && c.ClientSecret != "")
}

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

type AIConfig struct {
	Provider      string  `yaml:"provider"`
	Model         string  `yaml:"model"`
	Temperature   float32 `yaml:"temperature"`
	GeminiAPIKey  string  `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	OpenAIAPIKey  string  `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	OpenAIBaseURL string  `yaml:"openai_base_url" env:"OPENAI_BASE_URL"`
	OllamaURL     string  `yaml:"ollama_url" env:"OLLAMA_HOST"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

type MonitoringConfig struct {
	HealthPort int `yaml:"health_port"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type TrackerConfig struct {
	DataDir     string `yaml:"data_dir"`
	MaxAgeHours int    `yaml:"max_age_hours"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	return Parse(data)
}

// Parse decodes YAML, applies env fallbacks and defaults, then validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.YouTube.ClientID == "" {
		c.YouTube.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if c.YouTube.ClientSecret == "" {
		c.YouTube.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.AI.OpenAIAPIKey == "" {
		c.AI.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.AI.OpenAIBaseURL == "" {
		c.AI.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if c.AI.OllamaURL == "" {
		c.AI.OllamaURL = os.Getenv("OLLAMA_HOST")
	}
	if c.Email.Username == "" {
		c.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if c.Email.Password == "" {
		c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}
}

func (c *Config) applyDefaults() {
	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = "youtube_token.json"
	}
	if c.YouTube.Language == "" {
		c.YouTube.Language = "en"
	}
	if c.YouTube.WatchURL == "" {
		c.YouTube.WatchURL = "https://www.youtube.com/watch"
	}

	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	if c.AI.Provider == "" {
		c.AI.Provider = ProviderGemini
	}
	if c.AI.Model == "" {
		switch c.AI.Provider {
		case ProviderOpenAI:
			c.AI.Model = "gpt-4o-mini"
		case ProviderOllama:
			c.AI.Model = "llama3.1"
		default:
			c.AI.Model = "gemini-2.5-flash"
		}
	}

	c.Rubric.applyDefaults()

	if c.Schedule == "" {
		c.Schedule = "0 0 9 * * *" // Daily at 9 AM
	}
	if c.Monitoring.HealthPort == 0 {
		c.Monitoring.HealthPort = 8080
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8081"
	}
	if c.Tracker.DataDir == "" {
		c.Tracker.DataDir = "data"
	}
	if c.Tracker.MaxAgeHours == 0 {
		c.Tracker.MaxAgeHours = 7 * 24
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	switch c.AI.Provider {
	case ProviderGemini:
		if c.AI.GeminiAPIKey == "" {
			return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
		}
	case ProviderOpenAI:
		if c.AI.OpenAIAPIKey == "" {
			return fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY or ai.openai_api_key)")
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unknown ai.provider %q (want gemini, openai or ollama)", c.AI.Provider)
	}

	if c.YouTube.ClientID != "" && c.YouTube.ClientSecret == "" {
		return fmt.Errorf("YouTube client secret is required when client ID is set (set GOOGLE_CLIENT_SECRET or youtube.client_secret)")
	}

	if err := c.Rubric.Validate(); err != nil {
		return fmt.Errorf("rubric: %w", err)
	}

	return nil
}

// ValidateEmail checks the settings needed to send digests.
func (c *Config) ValidateEmail() error {
	if c.Email.SMTPServer == "" || c.Email.SMTPPort == 0 {
		return fmt.Errorf("SMTP server and port are required (email.smtp_server, email.smtp_port)")
	}
	if c.Email.Username == "" {
		return fmt.Errorf("Email username is required (set EMAIL_USERNAME or email.username)")
	}
	if c.Email.Password == "" {
		return fmt.Errorf("Email password is required (set EMAIL_PASSWORD or email.password)")
	}
	if c.Email.ToEmail == "" || c.Email.FromEmail == "" {
		return fmt.Errorf("email.from_email and email.to_email are required")
	}
	return nil
}

// ValidateWatch checks the settings needed for scheduled watchlist runs.
func (c *Config) ValidateWatch() error {
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must contain at least one video URL")
	}
	return c.ValidateEmail()
}
