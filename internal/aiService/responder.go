//go:generate mockgen -source=responder.go -destination=mock_responder.go -package=ai

package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"auction-marketplace/internal/models"
)

const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"

	DefaultGeminiModel   = "gemini-2.0-flash"
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultOllamaURL     = "http://localhost:11434"
	DefaultOllamaModel   = "gpt-oss:20b"
	DefaultTemperature   = 0.7
	DefaultMaxTokens     = 500
	DefaultTimeout       = 15 * time.Second
)

var ErrNotConfigured = errors.New("no AI provider configured")

// Responder drafts an answer to a buyer question in the seller's voice
type Responder interface {
	IsConfigured() bool
	// Provider names the backing provider, empty when not configured
	Provider() string
	GenerateSellerResponse(ctx context.Context, auction AuctionSnapshot, question string, history []QA) (string, error)
}

// AuctionSnapshot is the public view of an auction handed to the provider.
// It never carries the reserve amount.
type AuctionSnapshot struct {
	Title           string
	Description     string
	Category        string
	Condition       string
	Colour          string
	Location        string
	StartPrice      float64
	BuyNowPrice     float64
	CurrentBid      float64
	HasReserve      bool
	ReserveMet      bool
	BidCount        int64
	WatchersCount   int64
	Status          string
	EndDate         *time.Time
	ShippingOptions []models.ShippingOption
	PaymentMethods  []string
	SellerName      string
}

// NewSnapshot builds the snapshot of a stored auction
func NewSnapshot(a models.Auction, sellerName string) AuctionSnapshot {
	return AuctionSnapshot{
		Title:           a.Title,
		Description:     a.Description,
		Category:        a.Category,
		Condition:       string(a.Condition),
		Colour:          a.Colour,
		Location:        a.Location,
		StartPrice:      a.StartPrice,
		BuyNowPrice:     a.BuyNowPrice,
		CurrentBid:      a.CurrentBid,
		HasReserve:      a.ReservePrice > 0,
		ReserveMet:      a.ReserveMet,
		BidCount:        a.BidCount,
		WatchersCount:   a.WatchersCount,
		Status:          string(a.Status),
		EndDate:         a.EndDate,
		ShippingOptions: a.ShippingOptions,
		PaymentMethods:  a.PaymentMethods,
		SellerName:      sellerName,
	}
}

// QA is one earlier exchange on the same auction
type QA struct {
	Question string
	Answer   string
}

// Config selects and parameterises the provider
type Config struct {
	Provider      string
	Timeout       time.Duration
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OllamaURL     string
	OllamaModel   string
	Temperature   float64
	MaxTokens     int
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.GeminiModel == "" {
		c.GeminiModel = DefaultGeminiModel
	}
	if c.GeminiBaseURL == "" {
		c.GeminiBaseURL = DefaultGeminiBaseURL
	}
	if c.OllamaURL == "" {
		c.OllamaURL = DefaultOllamaURL
	}
	if c.OllamaModel == "" {
		c.OllamaModel = DefaultOllamaModel
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	c.GeminiBaseURL = strings.TrimRight(c.GeminiBaseURL, "/")
	c.OllamaURL = strings.TrimRight(c.OllamaURL, "/")
	return c
}

// NewResponder picks the provider once. An explicit provider wins; otherwise a
// Gemini key enables Gemini. Anything else yields a Noop responder.
func NewResponder(cfg Config, client *http.Client) Responder {
	cfg = cfg.withDefaults()
	if client == nil {
		client = &http.Client{}
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOllama:
		return &Ollama{cfg: cfg, client: client}
	case ProviderGemini, "":
		if cfg.GeminiAPIKey != "" {
			return &Gemini{cfg: cfg, client: client}
		}
	}
	return Noop{}
}

// Noop is used when no provider is configured
type Noop struct{}

func (Noop) IsConfigured() bool { return false }

func (Noop) Provider() string { return "" }

func (Noop) GenerateSellerResponse(context.Context, AuctionSnapshot, string, []QA) (string, error) {
	return "", ErrNotConfigured
}
