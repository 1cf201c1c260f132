package translate

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"recipeimport/internal/domain"
)

// Dictionary is the offline translation backend: a deterministic term
// substitution over common English cooking vocabulary. It never fails;
// unknown terms pass through unchanged.
type Dictionary struct {
	terms map[string]string
}

// NewDictionary builds the backend with its built-in term table.
func NewDictionary() *Dictionary {
	return &Dictionary{terms: builtinTerms}
}

// TranslateText substitutes known terms word by word, preserving leading
// capitalization and punctuation around each word.
func (d *Dictionary) TranslateText(text string) string {
	if text == "" {
		return ""
	}
	fields := strings.Split(text, " ")
	for i, field := range fields {
		fields[i] = d.translateWord(field)
	}
	return strings.Join(fields, " ")
}

// TranslateRecipe applies term substitution to every text field of the
// recipe and returns a new value; the input is never mutated.
func (d *Dictionary) TranslateRecipe(recipe domain.ParsedRecipe) domain.ParsedRecipe {
	out := recipe.Clone()
	out.Title = d.TranslateText(out.Title)
	out.Description = d.TranslateText(out.Description)
	out.Notes = d.TranslateText(out.Notes)
	for i := range out.Tags {
		out.Tags[i] = d.TranslateText(out.Tags[i])
	}
	for i := range out.Ingredients {
		out.Ingredients[i].Name = d.TranslateText(out.Ingredients[i].Name)
		out.Ingredients[i].Unit = d.TranslateText(out.Ingredients[i].Unit)
	}
	for i := range out.Instructions {
		out.Instructions[i].Text = d.TranslateText(out.Instructions[i].Text)
	}
	return out
}

func (d *Dictionary) translateWord(word string) string {
	core := strings.TrimFunc(word, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	if core == "" {
		return word
	}

	replacement, ok := d.terms[strings.ToLower(core)]
	if !ok {
		return word
	}

	first, _ := utf8.DecodeRuneInString(core)
	if unicode.IsUpper(first) {
		replacement = capitalize(replacement)
	}
	return strings.Replace(word, core, replacement, 1)
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if first == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(first)) + s[size:]
}

var builtinTerms = map[string]string{
	// Ingredients.
	"egg": "huevo", "eggs": "huevos",
	"chicken": "pollo", "beef": "res", "pork": "cerdo", "fish": "pescado",
	"bacon": "tocino", "ham": "jamón",
	"flour": "harina", "sugar": "azúcar", "salt": "sal",
	"pepper": "pimienta", "butter": "mantequilla", "milk": "leche",
	"cream": "crema", "cheese": "queso", "garlic": "ajo",
	"onion": "cebolla", "onions": "cebollas",
	"tomato": "tomate", "tomatoes": "tomates",
	"potato": "papa", "potatoes": "papas",
	"carrot": "zanahoria", "carrots": "zanahorias",
	"mushroom": "champiñón", "mushrooms": "champiñones",
	"oil": "aceite", "olive": "oliva", "vinegar": "vinagre",
	"water": "agua", "rice": "arroz", "bread": "pan",
	"lemon": "limón", "lime": "lima", "apple": "manzana",
	"chocolate": "chocolate", "vanilla": "vainilla", "honey": "miel",
	"beans": "frijoles", "corn": "maíz", "spinach": "espinaca",
	"parsley": "perejil", "cilantro": "cilantro", "basil": "albahaca",
	"wine": "vino", "broth": "caldo", "stock": "caldo",
	// Units.
	"cup": "taza", "cups": "tazas",
	"tablespoon": "cucharada", "tablespoons": "cucharadas", "tbsp": "cda",
	"teaspoon": "cucharadita", "teaspoons": "cucharaditas", "tsp": "cdta",
	"pound": "libra", "pounds": "libras",
	"ounce": "onza", "ounces": "onzas",
	"pinch": "pizca", "dash": "pizca",
	"clove": "diente", "cloves": "dientes",
	"slice": "rebanada", "slices": "rebanadas",
	"piece": "pieza", "pieces": "piezas", "pcs": "pzas",
	"can": "lata", "cans": "latas",
	// Directions.
	"add": "añadir", "mix": "mezclar", "stir": "remover",
	"bake": "hornear", "cook": "cocinar", "boil": "hervir",
	"fry": "freír", "heat": "calentar", "serve": "servir",
	"chop": "picar", "chopped": "picado", "diced": "en cubos",
	"minced": "picado fino", "sliced": "en rodajas", "grated": "rallado",
	"fresh": "fresco", "dried": "seco", "ground": "molido",
	"minute": "minuto", "minutes": "minutos",
	"hour": "hora", "hours": "horas",
	"oven": "horno", "bowl": "tazón", "pan": "sartén",
	// Connectives.
	"and": "y", "or": "o", "with": "con", "until": "hasta",
	"the": "el", "of": "de", "in": "en", "to": "a",
}
