package usecase

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"recipeimport/internal/domain"
	"recipeimport/internal/ports"
	"recipeimport/internal/scanner"
)

// WorkflowDeps wires all driven adapters into the import workflow.
type WorkflowDeps struct {
	Formats          *scanner.Registry
	Format           string
	MaxDocumentBytes int
	Sessions         ports.SessionRepository
	Recipes          ports.RecipeStore
	Blobs            ports.BlobStore
	Logger           *slog.Logger
}

// Workflow orchestrates the bulk-import review: parsing an export document,
// walking the user through each extracted recipe, and persisting accepted
// ones through the external recipe store.
type Workflow struct {
	formats          *scanner.Registry
	format           string
	maxDocumentBytes int
	sessions         ports.SessionRepository
	recipes          ports.RecipeStore
	blobs            ports.BlobStore
	logger           *slog.Logger
}

// NewWorkflow constructs the orchestration component.
func NewWorkflow(deps WorkflowDeps) *Workflow {
	return &Workflow{
		formats:          deps.Formats,
		format:           deps.Format,
		maxDocumentBytes: deps.MaxDocumentBytes,
		sessions:         deps.Sessions,
		recipes:          deps.Recipes,
		blobs:            deps.Blobs,
		logger:           deps.Logger,
	}
}

// StartInput carries an export document plus its optional image side
// channel, keyed by the local paths the document references.
type StartInput struct {
	Document string
	Source   string
	Images   map[string][]byte
}

// StartSession parses the document and opens a review session over the
// extracted recipes, superseding any previously active session.
func (w *Workflow) StartSession(ctx context.Context, in StartInput) (*domain.ImportSession, error) {
	if strings.TrimSpace(in.Document) == "" {
		return nil, NewInputError("no export document provided")
	}
	if w.maxDocumentBytes > 0 && len(in.Document) > w.maxDocumentBytes {
		return nil, NewInputError("export document exceeds %d bytes", w.maxDocumentBytes)
	}

	format, err := w.formats.Resolve(w.format)
	if err != nil {
		return nil, fmt.Errorf("resolve format: %w", err)
	}

	recipes := format.Parse(in.Document)
	if len(recipes) == 0 {
		return nil, NewInputError("no recipes found in export document")
	}

	source := strings.TrimSpace(in.Source)
	if source == "" {
		source = format.Name()
	}

	session := domain.NewImportSession(uuid.NewString(), source, recipes)
	session.MergeImageMapping(w.uploadLocalImages(ctx, recipes, in.Images))

	if err := w.sessions.InsertSuperseding(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	w.info("import session started",
		"session_id", session.ID, "source", source, "recipes", len(recipes))
	return session, nil
}

// uploadLocalImages pushes side-channel payloads to blob storage. A failed
// upload keeps the local reference as-is and never aborts the batch.
func (w *Workflow) uploadLocalImages(ctx context.Context, recipes []domain.ParsedRecipe, images map[string][]byte) map[string]string {
	if w.blobs == nil || len(images) == 0 {
		return nil
	}

	mapping := make(map[string]string)
	for _, recipe := range recipes {
		localPath := recipe.LocalImagePath
		if localPath == "" {
			continue
		}
		if _, done := mapping[localPath]; done {
			continue
		}
		data, ok := images[localPath]
		if !ok {
			continue
		}

		url, err := w.blobs.UploadIfAbsent(ctx, blobFilename(localPath, data), contentTypeFor(localPath), data)
		if err != nil {
			w.warn("image upload failed, keeping local reference",
				"path", localPath, "error", err)
			continue
		}
		mapping[localPath] = url
	}
	return mapping
}

// Session fetches one session by id.
func (w *Workflow) Session(ctx context.Context, id string) (*domain.ImportSession, error) {
	return w.loadSession(ctx, id)
}

// ActiveSession returns the single most recent active session.
func (w *Workflow) ActiveSession(ctx context.Context) (*domain.ImportSession, error) {
	session, err := w.sessions.MostRecentActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active session: %w", err)
	}
	if session == nil {
		return nil, NewNotFoundError("no active import session")
	}
	return session, nil
}

// ActionType enumerates the review actions a client may apply.
type ActionType string

const (
	ActionAccept       ActionType = "accept"
	ActionEdit         ActionType = "edit"
	ActionDiscard      ActionType = "discard"
	ActionNavigate     ActionType = "navigate"
	ActionUpdateImages ActionType = "update_images"
	ActionComplete     ActionType = "complete"
	ActionAbandon      ActionType = "abandon"
)

// Action is one review step against a session. Index addresses the entry;
// Edited is required for edit; Images feeds update_images.
type Action struct {
	Type   ActionType           `json:"action"`
	Index  int                  `json:"index"`
	Edited *domain.ParsedRecipe `json:"edited,omitempty"`
	Images map[string]string    `json:"images,omitempty"`
}

// ActionResult reports the post-action session snapshot and recomputed
// aggregate counts. Applied is false when the action was a silent no-op.
type ActionResult struct {
	Session    *domain.ImportSession `json:"session"`
	Stats      domain.ReviewStats    `json:"stats"`
	ImportedID string                `json:"imported_id,omitempty"`
	Applied    bool                  `json:"applied"`
}

// Apply executes one action against a fully-read session snapshot and writes
// the result back as one unit. Out-of-range indices and already-resolved
// entries are no-ops, so retries after an ambiguous response are safe.
func (w *Workflow) Apply(ctx context.Context, id string, action Action) (*ActionResult, error) {
	session, err := w.loadSession(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &ActionResult{Session: session}

	switch action.Type {
	case ActionAccept:
		if entry, pending := pendingEntry(session, action.Index); pending {
			importedID, persistErr := w.persistRecipe(ctx, entry.EffectiveRecipe())
			if persistErr != nil {
				return nil, persistErr
			}
			result.ImportedID = importedID
			result.Applied = session.Accept(action.Index, importedID)
		}
	case ActionEdit:
		if action.Edited == nil {
			return nil, NewInputError("edit action requires an edited recipe")
		}
		if _, pending := pendingEntry(session, action.Index); pending {
			importedID, persistErr := w.persistRecipe(ctx, *action.Edited)
			if persistErr != nil {
				return nil, persistErr
			}
			result.ImportedID = importedID
			result.Applied = session.Edit(action.Index, *action.Edited, importedID)
		}
	case ActionDiscard:
		result.Applied = session.Discard(action.Index)
	case ActionNavigate:
		result.Applied = session.Navigate(action.Index)
	case ActionUpdateImages:
		session.MergeImageMapping(action.Images)
		result.Applied = len(action.Images) > 0
	case ActionComplete:
		session.Complete()
		result.Applied = true
	case ActionAbandon:
		session.Abandon()
		result.Applied = true
	default:
		return nil, NewInputError("unknown action %q", action.Type)
	}

	if err := w.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	result.Stats = session.Stats()
	return result, nil
}

// ItemResult records the per-recipe outcome of a bulk import. Failures are
// isolated: one recipe failing to persist never aborts the rest.
type ItemResult struct {
	Index      int    `json:"index"`
	Title      string `json:"title"`
	Success    bool   `json:"success"`
	ImportedID string `json:"imported_id,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ImportRemaining accepts every still-pending entry. Entries whose
// persistence fails stay pending and are reported in the results list; the
// session document is written back once, after the whole batch.
func (w *Workflow) ImportRemaining(ctx context.Context, id string) ([]ItemResult, *domain.ImportSession, error) {
	session, err := w.loadSession(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var results []ItemResult
	for i := range session.Entries {
		if session.Entries[i].Status != domain.EntryPending {
			continue
		}

		recipe := session.Entries[i].EffectiveRecipe()
		item := ItemResult{Index: i, Title: recipe.Title}

		importedID, persistErr := w.persistRecipe(ctx, recipe)
		if persistErr != nil {
			item.Message = persistErr.Error()
			w.warn("recipe import failed", "session_id", id, "index", i, "error", persistErr)
		} else {
			session.Accept(i, importedID)
			item.Success = true
			item.ImportedID = importedID
		}
		results = append(results, item)
	}

	if err := w.sessions.Update(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("store session: %w", err)
	}
	return results, session, nil
}

// AbandonSession forces the session into its terminal abandoned state.
func (w *Workflow) AbandonSession(ctx context.Context, id string) error {
	session, err := w.loadSession(ctx, id)
	if err != nil {
		return err
	}
	session.Abandon()
	if err := w.sessions.Update(ctx, session); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

func (w *Workflow) loadSession(ctx context.Context, id string) (*domain.ImportSession, error) {
	session, err := w.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, NewNotFoundError("import session %s not found", id)
	}
	return session, nil
}

// persistRecipe hands the recipe to the external store when one is wired.
// Without a store the review proceeds with empty imported ids.
func (w *Workflow) persistRecipe(ctx context.Context, recipe domain.ParsedRecipe) (string, error) {
	if w.recipes == nil {
		return "", nil
	}
	importedID, err := w.recipes.CreateRecipe(ctx, recipe)
	if err != nil {
		return "", NewUpstreamError("persist recipe", err)
	}
	return importedID, nil
}

func pendingEntry(session *domain.ImportSession, index int) (*domain.ImportRecipeEntry, bool) {
	if index < 0 || index >= len(session.Entries) {
		return nil, false
	}
	entry := &session.Entries[index]
	return entry, entry.Status == domain.EntryPending
}

// blobFilename derives a content-addressed name so repeated uploads of the
// same image land on the same blob.
func blobFilename(localPath string, data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x%s", sum[:16], path.Ext(localPath))
}

func contentTypeFor(localPath string) string {
	switch strings.ToLower(path.Ext(localPath)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

func (w *Workflow) info(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Info(msg, args...)
	}
}

func (w *Workflow) warn(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Warn(msg, args...)
	}
}
