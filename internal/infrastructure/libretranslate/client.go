package libretranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"recipeimport/internal/config"
	"recipeimport/internal/ports"
)

// Client implements ports.TranslationProvider against a LibreTranslate-
// compatible endpoint. Calls may fail or time out; callers own retries and
// fallbacks.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

var _ ports.TranslationProvider = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.TranslatorConfig) *Client {
	return &Client{
		endpoint: cfg.URL,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

// TranslateText posts one text fragment and returns its translation.
func (c *Client) TranslateText(ctx context.Context, text, source, target string) (string, error) {
	if c == nil || c.endpoint == "" {
		return "", fmt.Errorf("translation client misconfigured")
	}

	body, err := json.Marshal(map[string]string{
		"q":       text,
		"source":  source,
		"target":  target,
		"format":  "text",
		"api_key": c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("marshal translate payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("translator error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode translation: %w", err)
	}

	return decoded.TranslatedText, nil
}
