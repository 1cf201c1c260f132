package ports

import (
	"context"

	"recipeimport/internal/domain"
)

// SessionRepository persists import sessions as whole documents. Every write
// replaces the full session snapshot so no action can leave a document
// partially mutated.
type SessionRepository interface {
	// InsertSuperseding stores a new session and atomically abandons every
	// other session still marked active.
	InsertSuperseding(ctx context.Context, session *domain.ImportSession) error
	GetByID(ctx context.Context, id string) (*domain.ImportSession, error)
	MostRecentActive(ctx context.Context) (*domain.ImportSession, error)
	Update(ctx context.Context, session *domain.ImportSession) error
	UpdateStatus(ctx context.Context, id string, status domain.SessionStatus) error
}

// TranslationProvider is the remote text-in/text-out translation service.
// Calls may fail or time out; callers own the fallback policy.
type TranslationProvider interface {
	TranslateText(ctx context.Context, text, source, target string) (string, error)
}

// BlobStore uploads image payloads referenced by export documents and serves
// them back through public URLs.
type BlobStore interface {
	UploadIfAbsent(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// RecipeStore is the external collaborator that persists reviewed recipes and
// hands back their identifiers.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, recipe domain.ParsedRecipe) (string, error)
}
