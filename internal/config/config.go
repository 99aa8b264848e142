package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	envPrefix = "AUCTION"
)

type MongoConfig struct {
	URI          string
	Database     string
	Timeout      time.Duration
	Transactions bool
}

type AIConfig struct {
	Provider      string
	Timeout       time.Duration
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OllamaURL     string
	OllamaModel   string
}

type BiddingConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
}

// Config is the full runtime configuration of the server
type Config struct {
	ServerAddress      string
	ShutdownTimeout    time.Duration
	Storage            string
	LogLevel           string
	LogFormat          string
	CORSAllowedOrigins []string
	WriteRateLimit     float64
	WriteRateBurst     int
	Mongo              MongoConfig
	AI                 AIConfig
	Bidding            BiddingConfig
	// QuestionHistorySize is how many earlier questions are handed to the AI responder
	QuestionHistorySize int
}

// Load reads configuration from, in order of precedence: flags, AUCTION_*
// environment variables, the legacy variable names, an optional .env file and
// defaults.
func Load(args []string) (Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	fs := pflag.NewFlagSet("auction-marketplace", pflag.ContinueOnError)

	// server config
	fs.String("server-address", ":3000", "address the HTTP server listens on")
	fs.Duration("shutdown-timeout", 10*time.Second, "graceful shutdown timeout")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "json", "json or text")
	fs.StringSlice("cors-allowed-origins", []string{"*"}, "origins allowed to call the API")
	fs.Float64("write-rate-limit", 20, "write requests per second per client ip, 0 disables")
	fs.Int("write-rate-burst", 40, "")

	// storage config
	fs.String("storage", StorageMongo, "storage backend (mongo or memory)")
	fs.String("mongo-uri", "mongodb://localhost:27017", "")
	fs.String("mongo-database", "trademe_auctions", "")
	fs.Duration("mongo-timeout", 10*time.Second, "")
	fs.Bool("mongo-transactions", true, "wrap multi-document writes in transactions (replica set required); turn off for a standalone server")

	// ai config
	fs.String("ai-provider", "", "gemini or ollama; empty selects gemini when a key is set")
	fs.Duration("ai-timeout", 15*time.Second, "")
	fs.String("gemini-api-key", "", "")
	fs.String("gemini-model", "gemini-2.0-flash", "")
	fs.String("gemini-base-url", "https://generativelanguage.googleapis.com/v1beta", "")
	fs.String("ollama-url", "http://localhost:11434", "")
	fs.String("ollama-model", "gpt-oss:20b", "")

	// domain config
	fs.Int("bid-max-retries", 5, "retries of a bid that lost a concurrent update")
	fs.Duration("bid-initial-backoff", 10*time.Millisecond, "")
	fs.Int("question-history-size", 5, "")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// variable names of the earlier deployment
	legacy := map[string]string{
		"port":           "PORT",
		"mongo-uri":      "MONGODB_URI",
		"gemini-api-key": "GEMINI_API_KEY",
		"gemini-model":   "GEMINI_MODEL",
		"use-ollama":     "USE_OLLAMA",
		"ollama-url":     "OLLAMA_URL",
	}
	for key, env := range legacy {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	cfg := Config{
		ServerAddress:      v.GetString("server-address"),
		ShutdownTimeout:    v.GetDuration("shutdown-timeout"),
		Storage:            strings.ToLower(v.GetString("storage")),
		LogLevel:           v.GetString("log-level"),
		LogFormat:          strings.ToLower(v.GetString("log-format")),
		CORSAllowedOrigins: v.GetStringSlice("cors-allowed-origins"),
		WriteRateLimit:     v.GetFloat64("write-rate-limit"),
		WriteRateBurst:     v.GetInt("write-rate-burst"),
		Mongo: MongoConfig{
			URI:          v.GetString("mongo-uri"),
			Database:     v.GetString("mongo-database"),
			Timeout:      v.GetDuration("mongo-timeout"),
			Transactions: v.GetBool("mongo-transactions"),
		},
		AI: AIConfig{
			Provider:      strings.ToLower(v.GetString("ai-provider")),
			Timeout:       v.GetDuration("ai-timeout"),
			GeminiAPIKey:  v.GetString("gemini-api-key"),
			GeminiModel:   v.GetString("gemini-model"),
			GeminiBaseURL: v.GetString("gemini-base-url"),
			OllamaURL:     v.GetString("ollama-url"),
			OllamaModel:   v.GetString("ollama-model"),
		},
		Bidding: BiddingConfig{
			MaxRetries:     v.GetInt("bid-max-retries"),
			InitialBackoff: v.GetDuration("bid-initial-backoff"),
		},
		QuestionHistorySize: v.GetInt("question-history-size"),
	}

	if !v.IsSet("server-address") && v.GetString("port") != "" {
		cfg.ServerAddress = ":" + v.GetString("port")
	}
	if cfg.AI.Provider == "" && v.GetBool("use-ollama") {
		cfg.AI.Provider = "ollama"
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the server cannot start with
func (c Config) Validate() error {
	var errs []error
	if c.ServerAddress == "" {
		errs = append(errs, errors.New("server-address is required"))
	}
	switch c.Storage {
	case StorageMemory:
	case StorageMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			errs = append(errs, errors.New("mongo-uri and mongo-database are required for mongo storage"))
		}
		if c.Mongo.Timeout <= 0 {
			errs = append(errs, errors.New("mongo-timeout must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q", c.Storage))
	}
	switch c.AI.Provider {
	case "", "gemini", "ollama":
	default:
		errs = append(errs, fmt.Errorf("unknown ai-provider %q", c.AI.Provider))
	}
	if c.AI.Timeout <= 0 {
		errs = append(errs, errors.New("ai-timeout must be positive"))
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log-level: %w", err))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown log-format %q", c.LogFormat))
	}
	if c.Bidding.MaxRetries < 0 {
		errs = append(errs, errors.New("bid-max-retries must be >= 0"))
	}
	if c.WriteRateLimit < 0 {
		errs = append(errs, errors.New("write-rate-limit must be >= 0"))
	}
	if c.WriteRateLimit > 0 && c.WriteRateBurst < 1 {
		errs = append(errs, errors.New("write-rate-burst must be >= 1 when rate limiting is on"))
	}
	if c.QuestionHistorySize < 0 {
		errs = append(errs, errors.New("question-history-size must be >= 0"))
	}
	return errors.Join(errs...)
}
