package translate

import (
	"strings"
	"unicode"

	"recipeimport/internal/domain"
)

// Language is the detector's coarse classification of recipe text.
type Language string

const (
	LanguageSpanish Language = "es"
	LanguageOther   Language = "other"
	LanguageUnknown Language = "unknown"
)

// spanishStopWords are high-frequency function words; a recipe whose text is
// dense in them is already in the target language.
var spanishStopWords = map[string]struct{}{
	"de": {}, "la": {}, "el": {}, "en": {}, "y": {}, "que": {}, "los": {},
	"las": {}, "una": {}, "un": {}, "con": {}, "para": {}, "por": {},
	"se": {}, "del": {}, "al": {}, "como": {}, "más": {}, "hasta": {},
	"sobre": {}, "cada": {}, "sin": {}, "taza": {}, "tazas": {},
	"cucharada": {}, "cucharadas": {}, "cucharadita": {}, "minutos": {},
	"agregar": {}, "mezclar": {}, "hornear": {}, "cocinar": {},
}

const spanishDiacritics = "áéíóúñü¿¡"

// DetectLanguage classifies a recipe as Spanish, some other language, or
// unknown when it carries no text at all. The heuristic is pure and
// deterministic: stop-word density plus diacritic counts over the title,
// ingredient, and instruction text.
func DetectLanguage(recipe domain.ParsedRecipe) Language {
	text := collectDetectionText(recipe)
	words := splitWords(text)
	if len(words) == 0 {
		return LanguageUnknown
	}

	hits := 0
	for _, word := range words {
		if _, ok := spanishStopWords[word]; ok {
			hits++
		}
	}

	diacritics := 0
	for _, r := range text {
		if strings.ContainsRune(spanishDiacritics, r) {
			diacritics++
		}
	}

	// Either a fifth of the words are Spanish function words, or repeated
	// stop-word hits coincide with Spanish-only glyphs.
	if hits*5 >= len(words) || (hits >= 2 && diacritics >= 2) {
		return LanguageSpanish
	}
	return LanguageOther
}

func collectDetectionText(recipe domain.ParsedRecipe) string {
	var sb strings.Builder
	sb.WriteString(recipe.Title)
	sb.WriteByte(' ')
	sb.WriteString(recipe.Description)
	for _, ingredient := range recipe.Ingredients {
		sb.WriteByte(' ')
		sb.WriteString(ingredient.Name)
	}
	for _, step := range recipe.Instructions {
		sb.WriteByte(' ')
		sb.WriteString(step.Text)
	}
	return sb.String()
}

func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}
