package parser

import (
	"regexp"
	"strings"

	"recipeimport/internal/domain"
)

// unitVocabulary is the closed set of quantity units recognized after an
// amount. Tokens outside this set stay part of the ingredient name.
var unitVocabulary = map[string]struct{}{
	"cup": {}, "cups": {}, "c": {},
	"tablespoon": {}, "tablespoons": {}, "tbsp": {}, "tbs": {},
	"teaspoon": {}, "teaspoons": {}, "tsp": {},
	"gram": {}, "grams": {}, "g": {},
	"kilogram": {}, "kilograms": {}, "kg": {},
	"milliliter": {}, "milliliters": {}, "ml": {},
	"liter": {}, "liters": {}, "litre": {}, "litres": {}, "l": {},
	"ounce": {}, "ounces": {}, "oz": {},
	"pound": {}, "pounds": {}, "lb": {}, "lbs": {},
	"pinch": {}, "pinches": {},
	"dash": {}, "dashes": {},
	"clove": {}, "cloves": {},
	"can": {}, "cans": {},
	"slice": {}, "slices": {},
	"piece": {}, "pieces": {}, "pcs": {},
	"stick": {}, "sticks": {},
	"bunch": {}, "bunches": {},
	"package": {}, "packages": {}, "pkg": {},
	"quart": {}, "quarts": {}, "qt": {},
	"pint": {}, "pints": {}, "pt": {},
	"gallon": {}, "gallons": {}, "gal": {},
	"handful": {},
	"sprig":   {}, "sprigs": {},
	"stalk": {}, "stalks": {},
	"head": {}, "heads": {},
}

var (
	decimalExpr     = regexp.MustCompile(`^\d+([.,]\d+)?$`)
	asciiFracExpr   = regexp.MustCompile(`^\d+/\d+$`)
	rangeExpr       = regexp.MustCompile(`^\d+([.,]\d+)?[-–]\d+([.,]\d+)?$`)
	unicodeFracExpr = regexp.MustCompile(`^\d*[¼½¾⅐⅑⅒⅓⅔⅕⅖⅗⅘⅙⅚⅛⅜⅝⅞]$`)
)

// ParseIngredientLine splits a free-text ingredient line into amount, unit,
// and name. Segmentation is best-effort with guaranteed no data loss: when
// quantity notation is not recognized, amount and unit stay empty and the
// whole line becomes the name.
func ParseIngredientLine(line string) domain.Ingredient {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return domain.Ingredient{}
	}

	consumed := 0
	for consumed < len(fields) {
		token := fields[consumed]
		if isQuantityToken(token) {
			consumed++
			continue
		}
		// "1 to 2" style ranges.
		if consumed > 0 && strings.EqualFold(token, "to") &&
			consumed+1 < len(fields) && isQuantityToken(fields[consumed+1]) {
			consumed += 2
			continue
		}
		break
	}

	if consumed == 0 || consumed == len(fields) {
		return domain.Ingredient{Name: strings.TrimSpace(line)}
	}

	ingredient := domain.Ingredient{
		Amount: strings.Join(fields[:consumed], " "),
	}

	rest := fields[consumed:]
	if _, ok := unitVocabulary[normalizeUnit(rest[0])]; ok {
		ingredient.Unit = strings.TrimSuffix(rest[0], ".")
		rest = rest[1:]
		// "2 cups of flour" keeps just the ingredient.
		if len(rest) > 1 && strings.EqualFold(rest[0], "of") {
			rest = rest[1:]
		}
	}

	ingredient.Name = strings.Join(rest, " ")
	if ingredient.Name == "" {
		// A bare quantity line ("2 cups") still keeps its text as the name
		// rather than dropping the entry.
		ingredient = domain.Ingredient{Name: strings.TrimSpace(line)}
	}
	return ingredient
}

func isQuantityToken(token string) bool {
	return decimalExpr.MatchString(token) ||
		asciiFracExpr.MatchString(token) ||
		rangeExpr.MatchString(token) ||
		unicodeFracExpr.MatchString(token)
}

func normalizeUnit(token string) string {
	return strings.ToLower(strings.TrimSuffix(token, "."))
}
