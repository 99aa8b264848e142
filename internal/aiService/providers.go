package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxResponseBytes bounds how much of a provider reply is read
const maxResponseBytes = 1 << 20

// postJSON sends body and decodes the reply into out, bounded by the configured timeout
func postJSON(ctx context.Context, client *http.Client, cfg Config, endpoint string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return nil
}

// Gemini calls the Google Generative Language generateContent endpoint
type Gemini struct {
	cfg    Config
	client *http.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (g *Gemini) IsConfigured() bool { return true }

func (g *Gemini) Provider() string { return ProviderGemini }

func (g *Gemini) GenerateSellerResponse(ctx context.Context, auction AuctionSnapshot, question string, history []QA) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		g.cfg.GeminiBaseURL, url.PathEscape(g.cfg.GeminiModel), url.QueryEscape(g.cfg.GeminiAPIKey))

	var body geminiRequest
	body.Contents = []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(auction, question, history)}}}}
	body.GenerationConfig.Temperature = g.cfg.Temperature
	body.GenerationConfig.MaxOutputTokens = g.cfg.MaxTokens

	var resp geminiResponse
	if err := postJSON(ctx, g.client, g.cfg, endpoint, body, &resp); err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("gemini api error: %s", resp.Error.Message)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: unexpected response format")
	}
	text := strings.TrimSpace(resp.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return text, nil
}

// Ollama calls a local Ollama server's /api/generate endpoint
type Ollama struct {
	cfg    Config
	client *http.Client
}

type ollamaRequest struct {
	Model   string `json:"model"`
	Prompt  string `json:"prompt"`
	Stream  bool   `json:"stream"`
	Options struct {
		Temperature float64 `json:"temperature"`
		NumPredict  int     `json:"num_predict"`
	} `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (o *Ollama) IsConfigured() bool { return true }

func (o *Ollama) Provider() string { return ProviderOllama }

func (o *Ollama) GenerateSellerResponse(ctx context.Context, auction AuctionSnapshot, question string, history []QA) (string, error) {
	body := ollamaRequest{
		Model:  o.cfg.OllamaModel,
		Prompt: buildPrompt(auction, question, history) + "\n\nSeller's response:",
	}
	body.Options.Temperature = o.cfg.Temperature
	body.Options.NumPredict = o.cfg.MaxTokens

	var resp ollamaResponse
	if err := postJSON(ctx, o.client, o.cfg, o.cfg.OllamaURL+"/api/generate", body, &resp); err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", resp.Error)
	}
	text := strings.TrimSpace(resp.Response)
	if text == "" {
		return "", fmt.Errorf("ollama: unexpected response format")
	}
	return text, nil
}
