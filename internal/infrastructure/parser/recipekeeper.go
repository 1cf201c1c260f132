package parser

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"recipeimport/internal/domain"
	"recipeimport/internal/scanner"
)

var (
	isoDurationExpr = regexp.MustCompile(`(?i)PT(?:(\d+)H)?(?:(\d+)M)?`)
	hoursExpr       = regexp.MustCompile(`(?i)(\d+)\s*(?:hours?|hrs?|h)\b`)
	minutesExpr     = regexp.MustCompile(`(?i)(\d+)\s*(?:minutes?|mins?|m)\b`)
	bareNumberExpr  = regexp.MustCompile(`^\d+$`)
)

// RecipeKeeperFormat extracts recipes from a Recipe Keeper HTML export.
// Blocks live in div.recipe-details elements carrying schema.org itemprop
// attributes. Parsing is pure and best-effort: malformed markup yields
// partial recipes, never an error.
type RecipeKeeperFormat struct {
	logger *slog.Logger
}

var _ scanner.Format = (*RecipeKeeperFormat)(nil)

// NewRecipeKeeperFormat wires an optional debug logger.
func NewRecipeKeeperFormat(logger *slog.Logger) *RecipeKeeperFormat {
	return &RecipeKeeperFormat{logger: logger}
}

// Name identifies the format inside the registry.
func (f *RecipeKeeperFormat) Name() string {
	return "recipekeeper"
}

// Parse walks every recipe block in the document. An export with no
// recognizable blocks produces an empty slice.
func (f *RecipeKeeperFormat) Parse(document string) []domain.ParsedRecipe {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		f.debug("document not parseable", "error", err)
		return nil
	}

	recipes := make([]domain.ParsedRecipe, 0)
	doc.Find("div.recipe-details").Each(func(i int, block *goquery.Selection) {
		recipes = append(recipes, parseRecipeBlock(block))
	})

	f.debug("export parsed", "recipes", len(recipes))
	return recipes
}

func parseRecipeBlock(block *goquery.Selection) domain.ParsedRecipe {
	recipe := domain.ParsedRecipe{
		Title:           itempropValue(block, "name"),
		Description:     itempropValue(block, "description"),
		SourceURL:       sourceURL(block),
		Notes:           itempropValue(block, "recipeNotes"),
		Servings:        itempropValue(block, "recipeYield"),
		PrepTimeMinutes: parseDurationMinutes(block, "prepTime"),
		CookTimeMinutes: parseDurationMinutes(block, "cookTime"),
		Rating:          parseRating(block),
		MadeIt:          parseMadeIt(block),
		Tags:            parseTags(block),
	}

	recipe.Ingredients = parseIngredients(block)
	recipe.Instructions = parseInstructions(block, recipe.Ingredients)

	if src, ok := block.Find("img").First().Attr("src"); ok {
		src = strings.TrimSpace(src)
		if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
			recipe.ImageURL = src
		} else if src != "" {
			recipe.LocalImagePath = src
		}
	}

	return recipe
}

// itempropValue prefers a meta content attribute, falling back to the
// element's trimmed text.
func itempropValue(block *goquery.Selection, prop string) string {
	sel := block.Find(`[itemprop="` + prop + `"]`).First()
	if content, ok := sel.Attr("content"); ok && strings.TrimSpace(content) != "" {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(sel.Text())
}

func sourceURL(block *goquery.Selection) string {
	sel := block.Find(`[itemprop="recipeSource"]`).First()
	if href, ok := sel.Find("a").First().Attr("href"); ok {
		return strings.TrimSpace(href)
	}
	if content, ok := sel.Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return strings.TrimSpace(sel.Text())
}

func parseRating(block *goquery.Selection) int {
	raw := itempropValue(block, "recipeRating")
	if raw == "" {
		return 0
	}
	if rating, err := strconv.Atoi(raw); err == nil && rating >= 0 {
		return rating
	}
	// Some exports render ratings as star glyphs.
	return strings.Count(raw, "★")
}

func parseMadeIt(block *goquery.Selection) bool {
	raw := strings.ToLower(itempropValue(block, "recipeIsMade"))
	return raw == "true" || raw == "yes" || raw == "1"
}

func parseTags(block *goquery.Selection) []string {
	var tags []string
	seen := map[string]struct{}{}
	for _, prop := range []string{"recipeCourse", "recipeCategory", "recipeCollection"} {
		block.Find(`[itemprop="` + prop + `"]`).Each(func(i int, sel *goquery.Selection) {
			value := strings.TrimSpace(sel.Text())
			if value == "" {
				if content, ok := sel.Attr("content"); ok {
					value = strings.TrimSpace(content)
				}
			}
			if value == "" {
				return
			}
			if _, ok := seen[value]; ok {
				return
			}
			seen[value] = struct{}{}
			tags = append(tags, value)
		})
	}
	return tags
}

func parseDurationMinutes(block *goquery.Selection, prop string) int {
	raw := itempropValue(block, "recipe"+strings.ToUpper(prop[:1])+prop[1:])
	if raw == "" {
		raw = itempropValue(block, prop)
	}
	if raw == "" {
		return 0
	}

	if match := isoDurationExpr.FindStringSubmatch(raw); match != nil && (match[1] != "" || match[2] != "") {
		minutes := 0
		if match[1] != "" {
			if hours, err := strconv.Atoi(match[1]); err == nil {
				minutes += hours * 60
			}
		}
		if match[2] != "" {
			if mins, err := strconv.Atoi(match[2]); err == nil {
				minutes += mins
			}
		}
		return minutes
	}

	minutes := 0
	if match := hoursExpr.FindStringSubmatch(raw); match != nil {
		if hours, err := strconv.Atoi(match[1]); err == nil {
			minutes += hours * 60
		}
	}
	if match := minutesExpr.FindStringSubmatch(raw); match != nil {
		if mins, err := strconv.Atoi(match[1]); err == nil {
			minutes += mins
		}
	}
	if minutes > 0 {
		return minutes
	}

	if bareNumberExpr.MatchString(strings.TrimSpace(raw)) {
		minutes, _ = strconv.Atoi(strings.TrimSpace(raw))
	}
	return minutes
}

func parseIngredients(block *goquery.Selection) []domain.Ingredient {
	lines := textLines(block, "recipeIngredients")
	ingredients := make([]domain.Ingredient, 0, len(lines))
	for _, line := range lines {
		ingredients = append(ingredients, ParseIngredientLine(line))
	}
	return ingredients
}

func parseInstructions(block *goquery.Selection, ingredients []domain.Ingredient) []domain.InstructionStep {
	lines := textLines(block, "recipeDirections")
	steps := make([]domain.InstructionStep, 0, len(lines))
	for _, line := range lines {
		steps = append(steps, domain.InstructionStep{
			Text:              line,
			IngredientIndices: referencedIngredients(line, ingredients),
		})
	}
	return steps
}

// textLines collects the non-empty lines of an itemprop container,
// preferring per-line child elements over raw text splitting.
func textLines(block *goquery.Selection, prop string) []string {
	container := block.Find(`[itemprop="` + prop + `"]`).First()
	var lines []string

	container.Find("p, li").Each(func(i int, sel *goquery.Selection) {
		if line := strings.TrimSpace(sel.Text()); line != "" {
			lines = append(lines, line)
		}
	})
	if len(lines) > 0 {
		return lines
	}

	for _, line := range strings.Split(container.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// referencedIngredients links a direction to the ingredients it mentions by
// name. The export format carries no explicit linkage, so the heuristic only
// ever produces indices of this recipe's own ingredient list.
func referencedIngredients(text string, ingredients []domain.Ingredient) []int {
	lowered := strings.ToLower(text)
	var indices []int
	for i, ingredient := range ingredients {
		name := strings.ToLower(strings.TrimSpace(ingredient.Name))
		if name == "" {
			continue
		}
		if strings.Contains(lowered, name) {
			indices = append(indices, i)
		}
	}
	return indices
}

func (f *RecipeKeeperFormat) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
