package recipesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"recipeimport/internal/config"
	"recipeimport/internal/domain"
	"recipeimport/internal/ports"
)

// Client talks to the external recipe persistence service that owns the
// canonical recipe records. Accepted imports are posted here and the
// returned identifier becomes the entry's imported_id.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

var _ ports.RecipeStore = (*Client)(nil)

// NewClient creates a reusable HTTP client.
func NewClient(cfg config.RecipesConfig) *Client {
	return &Client{
		endpoint: strings.TrimSuffix(cfg.URL, "/"),
		token:    cfg.Token,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateRecipe persists one recipe and returns its generated identifier.
func (c *Client) CreateRecipe(ctx context.Context, recipe domain.ParsedRecipe) (string, error) {
	if c == nil || c.endpoint == "" {
		return "", fmt.Errorf("recipes client misconfigured")
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/recipes", recipe, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("recipes service returned empty id")
	}
	return resp.ID, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
