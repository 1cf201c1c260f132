package libretranslate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recipeimport/internal/config"
)

func TestTranslateText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["q"] != "chicken broth" || payload["source"] != "auto" || payload["target"] != "es" {
			t.Errorf("unexpected payload: %v", payload)
		}
		if payload["api_key"] != "secret" {
			t.Errorf("missing api key: %v", payload)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"translatedText": "caldo de pollo"})
	}))
	defer server.Close()

	client := NewClient(config.TranslatorConfig{URL: server.URL, APIKey: "secret"})
	got, err := client.TranslateText(context.Background(), "chicken broth", "auto", "es")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "caldo de pollo" {
		t.Fatalf("unexpected translation: %q", got)
	}
}

func TestTranslateTextUpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(config.TranslatorConfig{URL: server.URL})
	_, err := client.TranslateText(context.Background(), "onion", "auto", "es")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("error must carry the upstream body: %v", err)
	}
}

func TestTranslateTextMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewClient(config.TranslatorConfig{})
	if _, err := client.TranslateText(context.Background(), "onion", "auto", "es"); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
