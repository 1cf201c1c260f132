package domain

// Ingredient is one split ingredient line. Amount and Unit stay empty when
// quantity parsing fails; Name always carries the remaining text verbatim.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Unit   string `json:"unit"`
}

// InstructionStep is a single ordered direction, optionally referencing
// ingredients of the same recipe by index.
type InstructionStep struct {
	Text              string `json:"text"`
	IngredientIndices []int  `json:"ingredientIndices,omitempty"`
}

// ParsedRecipe is one recipe extracted from an export document, prior to any
// persistence. Values are never mutated in place; edits produce a new copy.
type ParsedRecipe struct {
	Title           string            `json:"title"`
	Description     string            `json:"description,omitempty"`
	SourceURL       string            `json:"source_url,omitempty"`
	ImageURL        string            `json:"image_url,omitempty"`
	LocalImagePath  string            `json:"local_image_path,omitempty"`
	PrepTimeMinutes int               `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes int               `json:"cook_time_minutes,omitempty"`
	Servings        string            `json:"servings,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	Ingredients     []Ingredient      `json:"ingredients"`
	Instructions    []InstructionStep `json:"instructions"`
	Notes           string            `json:"notes,omitempty"`
	Rating          int               `json:"rating,omitempty"`
	MadeIt          bool              `json:"made_it,omitempty"`
}

// Clone returns a deep copy so edited variants never alias the original.
func (r ParsedRecipe) Clone() ParsedRecipe {
	cp := r
	cp.Tags = append([]string(nil), r.Tags...)
	cp.Ingredients = append([]Ingredient(nil), r.Ingredients...)
	cp.Instructions = make([]InstructionStep, len(r.Instructions))
	for i, step := range r.Instructions {
		cp.Instructions[i] = InstructionStep{
			Text:              step.Text,
			IngredientIndices: append([]int(nil), step.IngredientIndices...),
		}
	}
	return cp
}

// ValidIngredientIndices reports whether every instruction reference points
// into this recipe's own ingredient list.
func (r ParsedRecipe) ValidIngredientIndices() bool {
	for _, step := range r.Instructions {
		for _, idx := range step.IngredientIndices {
			if idx < 0 || idx >= len(r.Ingredients) {
				return false
			}
		}
	}
	return true
}
