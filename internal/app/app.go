package app

import (
	"context"
	"log/slog"

	"recipeimport/internal/config"
	"recipeimport/internal/infrastructure/blob"
	"recipeimport/internal/infrastructure/libretranslate"
	"recipeimport/internal/infrastructure/parser"
	"recipeimport/internal/infrastructure/recipesapi"
	"recipeimport/internal/infrastructure/storage"
	"recipeimport/internal/infrastructure/translate"
	"recipeimport/internal/logging"
	"recipeimport/internal/ports"
	"recipeimport/internal/scanner"
	"recipeimport/internal/server"
	"recipeimport/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	store  *storage.SessionStore
	server *server.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewRecipeKeeperFormat(logging.Component(baseLogger, "parser.recipekeeper")))

	var provider ports.TranslationProvider
	if cfg.Translator.URL != "" {
		provider = libretranslate.NewClient(cfg.Translator)
	}
	engine := translate.NewEngine(
		provider,
		cfg.Translator.TargetLanguage,
		cfg.Translator.Timeout(),
		logging.Component(baseLogger, "translate"),
	)

	var recipes ports.RecipeStore
	if cfg.Recipes.URL != "" {
		recipes = recipesapi.NewClient(cfg.Recipes)
	}

	workflow := usecase.NewWorkflow(usecase.WorkflowDeps{
		Formats:          registry,
		Format:           cfg.Parser.Format,
		MaxDocumentBytes: cfg.Parser.MaxDocumentBytes,
		Sessions:         store,
		Recipes:          recipes,
		Blobs:            blob.NewFileStore(cfg.Blob.Dir, cfg.Blob.PublicBaseURL),
		Logger:           logging.Component(baseLogger, "workflow"),
	})

	srv := server.New(cfg.Server.Addr, workflow, engine, logging.Component(baseLogger, "server"))

	return &Application{cfg: cfg, store: store, server: srv}, nil
}

// Run serves the HTTP API until the context is canceled.
func (a *Application) Run(ctx context.Context) error {
	defer func() { _ = a.store.Close() }()
	return a.server.Run(ctx)
}
