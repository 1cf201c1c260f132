package storage

import (
	"context"
	"path/filepath"
	"testing"

	"recipeimport/internal/domain"
)

func openTestStore(t *testing.T) *SessionStore {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "import.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testSession(id string) *domain.ImportSession {
	return domain.NewImportSession(id, "recipekeeper", []domain.ParsedRecipe{
		{
			Title: "Chicken Soup",
			Ingredients: []domain.Ingredient{
				{Name: "chicken broth", Amount: "2", Unit: "cups"},
			},
			Instructions: []domain.InstructionStep{
				{Text: "Heat the broth.", IngredientIndices: []int{0}},
			},
		},
		{Title: "Beef Stew"},
	})
}

func TestInsertAndGetRoundtrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	session := testSession("sess-1")
	session.ImageMapping = map[string]string{"images/soup_1.jpg": "/media/recipes/abc.jpg"}
	if err := store.InsertSuperseding(ctx, session); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := store.GetByID(ctx, "sess-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected stored session")
	}
	if got.ID != "sess-1" || got.Source != "recipekeeper" || got.Status != domain.SessionActive {
		t.Fatalf("unexpected session: %+v", got)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got.Entries))
	}
	if got.Entries[0].Recipe.Title != "Chicken Soup" {
		t.Fatalf("unexpected first entry: %+v", got.Entries[0])
	}
	if got.Entries[0].Recipe.Instructions[0].IngredientIndices[0] != 0 {
		t.Fatalf("ingredient links lost: %+v", got.Entries[0].Recipe.Instructions[0])
	}
	if got.ImageMapping["images/soup_1.jpg"] != "/media/recipes/abc.jpg" {
		t.Fatalf("image mapping lost: %v", got.ImageMapping)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("timestamps lost: %v %v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestGetByIDMissing(t *testing.T) {
	store := openTestStore(t)

	got, err := store.GetByID(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing id, got %+v", got)
	}
}

func TestInsertSupersedingAbandonsPreviousActive(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := testSession("sess-a")
	if err := store.InsertSuperseding(ctx, first); err != nil {
		t.Fatalf("insert first: %v", err)
	}
	second := testSession("sess-b")
	if err := store.InsertSuperseding(ctx, second); err != nil {
		t.Fatalf("insert second: %v", err)
	}

	active, err := store.MostRecentActive(ctx)
	if err != nil {
		t.Fatalf("most recent active: %v", err)
	}
	if active == nil || active.ID != "sess-b" {
		t.Fatalf("expected sess-b active, got %+v", active)
	}

	old, err := store.GetByID(ctx, "sess-a")
	if err != nil {
		t.Fatalf("get superseded: %v", err)
	}
	if old.Status != domain.SessionAbandoned {
		t.Fatalf("superseded session must be abandoned, got %q", old.Status)
	}
}

func TestMostRecentActiveEmpty(t *testing.T) {
	store := openTestStore(t)

	active, err := store.MostRecentActive(context.Background())
	if err != nil {
		t.Fatalf("most recent active: %v", err)
	}
	if active != nil {
		t.Fatalf("expected nil, got %+v", active)
	}
}

func TestUpdatePersistsSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	session := testSession("sess-u")
	if err := store.InsertSuperseding(ctx, session); err != nil {
		t.Fatalf("insert: %v", err)
	}

	session.Accept(0, "imported-42")
	session.Discard(1)
	if err := store.Update(ctx, session); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.GetByID(ctx, "sess-u")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.SessionCompleted {
		t.Fatalf("expected completed, got %q", got.Status)
	}
	if got.Entries[0].Status != domain.EntryAccepted || got.Entries[0].ImportedID != "imported-42" {
		t.Fatalf("unexpected first entry: %+v", got.Entries[0])
	}
	if got.Entries[1].Status != domain.EntryDiscarded {
		t.Fatalf("unexpected second entry: %+v", got.Entries[1])
	}
	if got.CurrentIndex != len(got.Entries) {
		t.Fatalf("unexpected cursor: %d", got.CurrentIndex)
	}
}

func TestUpdateStatus(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.InsertSuperseding(ctx, testSession("sess-s")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := store.UpdateStatus(ctx, "sess-s", domain.SessionAbandoned); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, err := store.GetByID(ctx, "sess-s")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.SessionAbandoned {
		t.Fatalf("expected abandoned, got %q", got.Status)
	}

	active, err := store.MostRecentActive(ctx)
	if err != nil {
		t.Fatalf("most recent active: %v", err)
	}
	if active != nil {
		t.Fatalf("abandoned session still reported active: %+v", active)
	}
}
