package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"recipeimport/internal/domain"
	"recipeimport/internal/infrastructure/parser"
	"recipeimport/internal/infrastructure/storage"
	"recipeimport/internal/infrastructure/translate"
	"recipeimport/internal/scanner"
	"recipeimport/internal/usecase"
)

const exportDocument = `
<div class="recipe-details">
  <h2 itemprop="name">Chicken Soup</h2>
  <div itemprop="recipeIngredients"><p>2 cups chicken broth</p></div>
  <div itemprop="recipeDirections"><p>Heat and serve.</p></div>
</div>
<div class="recipe-details">
  <h2 itemprop="name">Beef Stew</h2>
  <div itemprop="recipeIngredients"><p>1 lb beef</p></div>
</div>`

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	store, err := storage.Open(filepath.Join(t.TempDir(), "import.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	registry := scanner.NewRegistry()
	registry.Register(parser.NewRecipeKeeperFormat(nil))

	workflow := usecase.NewWorkflow(usecase.WorkflowDeps{
		Formats:          registry,
		Format:           "recipekeeper",
		MaxDocumentBytes: 1 << 20,
		Sessions:         store,
	})
	engine := translate.NewEngine(nil, "es", time.Second, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return New(":0", workflow, engine, logger).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, handler http.Handler) string {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/import/sessions", map[string]any{
		"document": exportDocument,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d, body %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Session domain.ImportSession `json:"session"`
		Stats   domain.ReviewStats   `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Session.ID == "" {
		t.Fatal("expected a session id")
	}
	if response.Stats.Pending != 2 || response.Stats.Total != 2 {
		t.Fatalf("unexpected stats: %+v", response.Stats)
	}
	return response.Session.ID
}

func TestCreateAndFetchSession(t *testing.T) {
	t.Parallel()
	handler := newTestServer(t)

	id := createSession(t, handler)

	rec := doJSON(t, handler, http.MethodGet, "/api/import/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch: status %d, body %s", rec.Code, rec.Body.String())
	}

	var session domain.ImportSession
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.ID != id || session.Status != domain.SessionActive {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.Entries[0].Recipe.Title != "Chicken Soup" {
		t.Fatalf("unexpected first entry: %+v", session.Entries[0])
	}
}

func TestActiveSessionEndpoint(t *testing.T) {
	t.Parallel()
	handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/import/sessions", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 with no active session, got %d", rec.Code)
	}

	id := createSession(t, handler)

	rec = doJSON(t, handler, http.MethodGet, "/api/import/sessions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("active: status %d, body %s", rec.Code, rec.Body.String())
	}
	var session domain.ImportSession
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.ID != id {
		t.Fatalf("unexpected active session: %+v", session)
	}
}

func TestSessionActions(t *testing.T) {
	t.Parallel()
	handler := newTestServer(t)
	id := createSession(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/import/sessions/"+id+"/actions", map[string]any{
		"action": "accept",
		"index":  0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept: status %d, body %s", rec.Code, rec.Body.String())
	}

	var result usecase.ActionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Applied {
		t.Fatal("accept must apply")
	}
	if result.Stats.Accepted != 1 || result.Stats.Pending != 1 {
		t.Fatalf("unexpected stats: %+v", result.Stats)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/import/sessions/"+id+"/actions", map[string]any{
		"action": "bogus",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown action, got %d", rec.Code)
	}
}

func TestImportRemainingEndpoint(t *testing.T) {
	t.Parallel()
	handler := newTestServer(t)
	id := createSession(t, handler)

	rec := doJSON(t, handler, http.MethodPost, "/api/import/sessions/"+id+"/import-remaining", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("import remaining: status %d, body %s", rec.Code, rec.Body.String())
	}

	var response struct {
		Results []usecase.ItemResult `json:"results"`
		Stats   domain.ReviewStats   `json:"stats"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(response.Results))
	}
	if response.Stats.Pending != 0 || response.Stats.Accepted != 2 {
		t.Fatalf("unexpected stats: %+v", response.Stats)
	}
}

func TestAbandonEndpoint(t *testing.T) {
	t.Parallel()
	handler := newTestServer(t)
	id := createSession(t, handler)

	rec := doJSON(t, handler, http.MethodDelete, "/api/import/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("abandon: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/import/sessions/"+id, nil)
	var session domain.ImportSession
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Status != domain.SessionAbandoned {
		t.Fatalf("expected abandoned, got %q", session.Status)
	}
}

func TestSessionNotFound(t *testing.T) {
	t.Parallel()
	handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/import/sessions/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCreateSessionRejectsBadRequests(t *testing.T) {
	t.Parallel()
	handler := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/import/sessions", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, "/api/import/sessions", map[string]any{
		"document": "<html><body>nothing here</body></html>",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty export, got %d", rec.Code)
	}
}

func TestTranslateEndpoint(t *testing.T) {
	t.Parallel()
	handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/translate", map[string]any{
		"mode": "dictionaryOnly",
		"recipe": map[string]any{
			"title": "Chicken Soup",
			"ingredients": []map[string]any{
				{"name": "chicken broth", "amount": "2", "unit": "cups"},
			},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("translate: status %d, body %s", rec.Code, rec.Body.String())
	}

	var result translate.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Translated || result.Method != translate.MethodDictionary {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Recipe.Title != "Pollo Soup" {
		t.Fatalf("unexpected title: %q", result.Recipe.Title)
	}

	rec = doJSON(t, handler, http.MethodGet, "/api/translate", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}
