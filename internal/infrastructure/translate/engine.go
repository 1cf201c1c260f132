package translate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"recipeimport/internal/domain"
	"recipeimport/internal/ports"
)

// Mode selects the translation backend policy.
type Mode string

const (
	// ModeAuto tries the remote service first and falls back to the
	// dictionary as a whole on any failure.
	ModeAuto Mode = "auto"
	// ModeDictionaryOnly always uses the offline backend; it is the fast,
	// guaranteed-success path.
	ModeDictionaryOnly Mode = "dictionaryOnly"
)

// ParseMode normalizes a mode string, defaulting to ModeAuto.
func ParseMode(value string) Mode {
	if strings.EqualFold(strings.TrimSpace(value), string(ModeDictionaryOnly)) {
		return ModeDictionaryOnly
	}
	return ModeAuto
}

// Method names the backend that actually produced the returned recipe,
// never an attempted-but-abandoned one.
type Method string

const (
	MethodDictionary Method = "dictionary"
	MethodAPI        Method = "api"
	MethodNone       Method = ""
)

// Result is the outcome of translating one recipe.
type Result struct {
	Recipe           domain.ParsedRecipe `json:"recipe"`
	Translated       bool                `json:"translated"`
	Method           Method              `json:"method,omitempty"`
	OriginalLanguage Language            `json:"originalLanguage"`
	Message          string              `json:"message,omitempty"`
}

// Engine translates parsed recipes into the target language, choosing
// between the remote provider and the offline dictionary.
type Engine struct {
	provider ports.TranslationProvider
	dict     *Dictionary
	target   string
	timeout  time.Duration
	logger   *slog.Logger
}

// NewEngine wires the engine. A nil provider disables the remote backend
// entirely; every translation then runs through the dictionary.
func NewEngine(provider ports.TranslationProvider, target string, timeout time.Duration, logger *slog.Logger) *Engine {
	if target == "" {
		target = string(LanguageSpanish)
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Engine{
		provider: provider,
		dict:     NewDictionary(),
		target:   target,
		timeout:  timeout,
		logger:   logger,
	}
}

// Translate produces a translated variant of the recipe. A recipe already in
// the target language is returned unchanged. In auto mode a failed remote run
// is discarded entirely and the recipe is re-translated from scratch by the
// dictionary, so the result never carries empty ingredient names caused by a
// partial remote failure.
func (e *Engine) Translate(ctx context.Context, recipe domain.ParsedRecipe, mode Mode) Result {
	lang := DetectLanguage(recipe)
	if lang == LanguageSpanish {
		return Result{
			Recipe:           recipe,
			Translated:       false,
			Method:           MethodNone,
			OriginalLanguage: lang,
			Message:          "recipe is already in the target language",
		}
	}

	if mode == ModeDictionaryOnly || e.provider == nil {
		return Result{
			Recipe:           e.dict.TranslateRecipe(recipe),
			Translated:       true,
			Method:           MethodDictionary,
			OriginalLanguage: lang,
		}
	}

	translated, err := e.translateRemote(ctx, recipe)
	if err == nil && !hasEmptyIngredientName(translated) {
		return Result{
			Recipe:           translated,
			Translated:       true,
			Method:           MethodAPI,
			OriginalLanguage: lang,
		}
	}

	if err != nil {
		e.warn("remote translation failed, using dictionary", "error", err)
	} else {
		e.warn("remote translation returned empty ingredient names, using dictionary")
	}

	return Result{
		Recipe:           e.dict.TranslateRecipe(recipe),
		Translated:       true,
		Method:           MethodDictionary,
		OriginalLanguage: lang,
		Message:          "remote translation unavailable, dictionary applied",
	}
}

// translateRemote translates every text field through the provider, one
// independent call per field. Calls run concurrently but the engine waits
// for all of them; a single failure discards the whole batch.
func (e *Engine) translateRemote(ctx context.Context, recipe domain.ParsedRecipe) (domain.ParsedRecipe, error) {
	out := recipe.Clone()
	fields := collectTextFields(&out)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var wg sync.WaitGroup
	errs := make([]error, len(fields))
	for i, field := range fields {
		if strings.TrimSpace(*field) == "" {
			continue
		}
		wg.Add(1)
		go func(i int, field *string) {
			defer wg.Done()
			translated, err := e.provider.TranslateText(ctx, *field, "auto", e.target)
			if err != nil {
				errs[i] = err
				return
			}
			*field = translated
		}(i, field)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return domain.ParsedRecipe{}, err
	}
	return out, nil
}

// collectTextFields gathers pointers to every translatable field of the
// recipe: title, description, notes, tags, ingredient names and units, and
// instruction texts.
func collectTextFields(recipe *domain.ParsedRecipe) []*string {
	fields := []*string{&recipe.Title, &recipe.Description, &recipe.Notes}
	for i := range recipe.Tags {
		fields = append(fields, &recipe.Tags[i])
	}
	for i := range recipe.Ingredients {
		fields = append(fields, &recipe.Ingredients[i].Name, &recipe.Ingredients[i].Unit)
	}
	for i := range recipe.Instructions {
		fields = append(fields, &recipe.Instructions[i].Text)
	}
	return fields
}

func hasEmptyIngredientName(recipe domain.ParsedRecipe) bool {
	for _, ingredient := range recipe.Ingredients {
		if strings.TrimSpace(ingredient.Name) == "" {
			return true
		}
	}
	return false
}

func (e *Engine) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
