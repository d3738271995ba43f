package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Chat      ChatConfig      `json:"chat"`
	Images    ImagesConfig    `json:"images"`
	Translate TranslateConfig `json:"translate"`
}

type ServerConfig struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	CORSOrigins string `json:"cors_origins"`
	JWTSecret   string `json:"jwt_secret,omitempty"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
	SSLMode  string `json:"sslmode"`
}

// ChatConfig holds the completion API settings. The sampling parameters are
// sent verbatim on every streamed request.
type ChatConfig struct {
	BaseURL           string  `json:"base_url"`
	APIKey            string  `json:"api_key,omitempty"`
	Model             string  `json:"model"`
	Referer           string  `json:"referer"`
	Title             string  `json:"title"`
	Temperature       float64 `json:"temperature"`
	MaxTokens         int     `json:"max_tokens"`
	TopP              float64 `json:"top_p"`
	FrequencyPenalty  float64 `json:"frequency_penalty"`
	PresencePenalty   float64 `json:"presence_penalty"`
	RepetitionPenalty float64 `json:"repetition_penalty"`
	TopK              int     `json:"top_k"`
}

type ImagesConfig struct {
	BaseURL       string `json:"base_url"`
	APIKey        string `json:"api_key,omitempty"`
	AnalysisModel string `json:"analysis_model"`
}

type TranslateConfig struct {
	PrimaryURL   string `json:"primary_url"`
	SecondaryURL string `json:"secondary_url"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	// Add config paths
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Check for user config directory
	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".bulgargpt"))
	}

	// Set defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.cors_origins", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "bulgargpt")
	viper.SetDefault("database.database", "bulgargpt")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("chat.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("chat.model", "google/gemini-2.0-flash-001")
	viper.SetDefault("chat.referer", "https://bulgargpt.vercel.app")
	viper.SetDefault("chat.title", "BulgarGPT")
	viper.SetDefault("chat.temperature", 0.8)
	viper.SetDefault("chat.max_tokens", 4000)
	viper.SetDefault("chat.top_p", 1.0)
	viper.SetDefault("chat.frequency_penalty", 0.0)
	viper.SetDefault("chat.presence_penalty", 0.0)
	viper.SetDefault("chat.repetition_penalty", 1.1)
	viper.SetDefault("chat.top_k", 0)
	viper.SetDefault("images.base_url", "https://api.runware.ai/v1")
	viper.SetDefault("images.analysis_model", "google/gemini-2.0-flash-001")
	viper.SetDefault("translate.primary_url", "https://translate.googleapis.com/translate_a/single")
	viper.SetDefault("translate.secondary_url", "https://clients5.google.com/translate_a/t")

	// Read config
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file is fine, defaults plus env cover everything
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Load environment variables
	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func loadEnvOverrides(cfg *Config) {
	// Override with environment variables
	if port := os.Getenv("BULGARGPT_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("BULGARGPT_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if origins := os.Getenv("BULGARGPT_CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = origins
	}
	if secret := os.Getenv("BULGARGPT_JWT_SECRET"); secret != "" {
		cfg.Server.JWTSecret = secret
	}

	// API keys come from the environment, never from the config file
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		cfg.Chat.APIKey = key
	}
	if key := os.Getenv("RUNWARE_API_KEY"); key != "" {
		cfg.Images.APIKey = key
	}

	// Database overrides
	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Database.Database = dbName
	}
}
