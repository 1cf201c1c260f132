package recipesapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"recipeimport/internal/config"
	"recipeimport/internal/domain"
)

func TestCreateRecipe(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recipes" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("unexpected auth header %q", got)
		}
		var recipe domain.ParsedRecipe
		if err := json.NewDecoder(r.Body).Decode(&recipe); err != nil {
			t.Errorf("decode recipe: %v", err)
		}
		if recipe.Title != "Chicken Soup" {
			t.Errorf("unexpected title %q", recipe.Title)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "recipe-9"})
	}))
	defer server.Close()

	client := NewClient(config.RecipesConfig{URL: server.URL + "/", Token: "token-1"})
	id, err := client.CreateRecipe(context.Background(), domain.ParsedRecipe{Title: "Chicken Soup"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "recipe-9" {
		t.Fatalf("unexpected id: %q", id)
	}
}

func TestCreateRecipeUpstreamError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(config.RecipesConfig{URL: server.URL})
	if _, err := client.CreateRecipe(context.Background(), domain.ParsedRecipe{Title: "x"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestCreateRecipeEmptyID(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	client := NewClient(config.RecipesConfig{URL: server.URL})
	if _, err := client.CreateRecipe(context.Background(), domain.ParsedRecipe{Title: "x"}); err == nil {
		t.Fatal("expected error for empty id")
	}
}

func TestCreateRecipeMisconfigured(t *testing.T) {
	t.Parallel()

	client := NewClient(config.RecipesConfig{})
	if _, err := client.CreateRecipe(context.Background(), domain.ParsedRecipe{Title: "x"}); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
