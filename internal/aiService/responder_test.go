package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"auction-marketplace/internal/models"

	"github.com/stretchr/testify/require"
)

func snapshot() AuctionSnapshot {
	a := models.Auction{
		Title:        "Vintage camera",
		Description:  "Working film camera",
		Category:     "Electronics",
		Location:     "Auckland",
		Colour:       "Black",
		StartPrice:   100,
		ReservePrice: 321.45,
		CurrentBid:   150,
		BidCount:     1,
		ShippingOptions: []models.ShippingOption{
			{Method: "Courier", Price: 8.5},
		},
	}
	a.Normalize()
	return NewSnapshot(a, "kiwiseller")
}

type capturedRequest[T any] struct {
	path  string
	query url.Values
	body  T
}

func capture[T any](r *http.Request) capturedRequest[T] {
	c := capturedRequest[T]{path: r.URL.Path, query: r.URL.Query()}
	_ = json.NewDecoder(r.Body).Decode(&c.body)
	return c
}

func TestNewResponder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cfg        Config
		provider   string
		configured bool
	}{
		{name: "nothing_configured", cfg: Config{}, provider: "", configured: false},
		{name: "gemini_key_only", cfg: Config{GeminiAPIKey: "k"}, provider: ProviderGemini, configured: true},
		{name: "explicit_gemini_without_key", cfg: Config{Provider: "gemini"}, provider: "", configured: false},
		{name: "ollama", cfg: Config{Provider: "Ollama"}, provider: ProviderOllama, configured: true},
		{name: "ollama_wins_over_key", cfg: Config{Provider: "ollama", GeminiAPIKey: "k"}, provider: ProviderOllama, configured: true},
		{name: "unknown_provider", cfg: Config{Provider: "gpt", GeminiAPIKey: "k"}, provider: "", configured: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := NewResponder(tc.cfg, nil)
			require.Equal(t, tc.provider, r.Provider())
			require.Equal(t, tc.configured, r.IsConfigured())
		})
	}
}

func TestNoop(t *testing.T) {
	t.Parallel()

	_, err := Noop{}.GenerateSellerResponse(context.Background(), snapshot(), "hi", nil)
	require.True(t, errors.Is(err, ErrNotConfigured))
}

func TestGemini_GenerateSellerResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		status    int
		body      string
		want      string
		wantError bool
	}{
		{name: "success", status: http.StatusOK, body: `{"candidates":[{"content":{"parts":[{"text":"  Yes, it works.  "}]}}]}`, want: "Yes, it works."},
		{name: "api_error", status: http.StatusBadRequest, body: `{"error":{"message":"API key not valid"}}`, wantError: true},
		{name: "no_candidates", status: http.StatusOK, body: `{"candidates":[]}`, wantError: true},
		{name: "not_json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, wantError: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			captured := make(chan capturedRequest[geminiRequest], 1)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured <- capture[geminiRequest](r)
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			r := NewResponder(Config{GeminiAPIKey: "secret", GeminiBaseURL: srv.URL + "/v1beta/"}, srv.Client())
			history := []QA{{Question: "Is it boxed?", Answer: "Yes"}, {Question: "Any scratches?"}}
			got, err := r.GenerateSellerResponse(context.Background(), snapshot(), "Does it work?", history)

			req := <-captured
			gotBody := req.body
			require.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", req.path)
			require.Equal(t, "secret", req.query.Get("key"))
			require.Len(t, gotBody.Contents, 1)
			prompt := gotBody.Contents[0].Parts[0].Text
			require.Contains(t, prompt, "Vintage camera")
			require.Contains(t, prompt, "Buyer: Is it boxed?\nSeller: Yes\n\nBuyer: Any scratches?")
			require.True(t, strings.HasSuffix(prompt, "Buyer's new question: Does it work?"))
			require.NotContains(t, prompt, "321.45")
			require.Equal(t, DefaultMaxTokens, gotBody.GenerationConfig.MaxOutputTokens)

			if tc.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestOllama_GenerateSellerResponse(t *testing.T) {
	t.Parallel()

	captured := make(chan capturedRequest[ollamaRequest], 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured <- capture[ollamaRequest](r)
		_, _ = w.Write([]byte(`{"response":"Pickup is fine.\n"}`))
	}))
	defer srv.Close()

	r := NewResponder(Config{Provider: ProviderOllama, OllamaURL: srv.URL}, srv.Client())
	got, err := r.GenerateSellerResponse(context.Background(), snapshot(), "Can I pick up?", nil)
	require.NoError(t, err)
	require.Equal(t, "Pickup is fine.", got)

	req := <-captured
	gotBody := req.body
	require.Equal(t, "/api/generate", req.path)

	require.Equal(t, DefaultOllamaModel, gotBody.Model)
	require.False(t, gotBody.Stream)
	require.Equal(t, DefaultTemperature, gotBody.Options.Temperature)
	require.True(t, strings.HasSuffix(gotBody.Prompt, "Seller's response:"))
	require.NotContains(t, gotBody.Prompt, "Previous conversation")
}

func TestOllama_ErrorAndTimeout(t *testing.T) {
	t.Parallel()

	errSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer errSrv.Close()

	r := NewResponder(Config{Provider: ProviderOllama, OllamaURL: errSrv.URL}, errSrv.Client())
	_, err := r.GenerateSellerResponse(context.Background(), snapshot(), "?", nil)
	require.ErrorContains(t, err, "model not found")

	release := make(chan struct{})
	slowSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slowSrv.Close()
	defer close(release)

	r = NewResponder(Config{Provider: ProviderOllama, OllamaURL: slowSrv.URL, Timeout: 50 * time.Millisecond}, slowSrv.Client())
	start := time.Now()
	_, err = r.GenerateSellerResponse(context.Background(), snapshot(), "?", nil)
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}
