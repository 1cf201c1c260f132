package domain

import (
	"strings"
	"time"
)

// EntryStatus is the review disposition of a single recipe in a session.
type EntryStatus string

const (
	EntryPending   EntryStatus = "pending"
	EntryAccepted  EntryStatus = "accepted"
	EntryEdited    EntryStatus = "edited"
	EntryDiscarded EntryStatus = "discarded"
)

// SessionStatus is the lifecycle state of an import session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionAbandoned SessionStatus = "abandoned"
)

// ParseSessionStatus converts a string into a known SessionStatus.
func ParseSessionStatus(value string) (SessionStatus, bool) {
	normalized := SessionStatus(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case SessionActive, SessionCompleted, SessionAbandoned:
		return normalized, true
	}
	return "", false
}

// ImportRecipeEntry wraps one parsed recipe with its review outcome. Status
// moves exactly once from pending to a terminal disposition; Edited is set
// only together with EntryEdited.
type ImportRecipeEntry struct {
	Recipe     ParsedRecipe  `json:"recipe"`
	Status     EntryStatus   `json:"status"`
	Edited     *ParsedRecipe `json:"edited,omitempty"`
	ImportedID string        `json:"imported_id,omitempty"`
}

// EffectiveRecipe returns the edited variant when present, otherwise the
// original extraction.
func (e ImportRecipeEntry) EffectiveRecipe() ParsedRecipe {
	if e.Status == EntryEdited && e.Edited != nil {
		return *e.Edited
	}
	return e.Recipe
}

// ReviewStats aggregates per-entry dispositions for progress display.
type ReviewStats struct {
	Pending   int `json:"pending"`
	Accepted  int `json:"accepted"`
	Edited    int `json:"edited"`
	Discarded int `json:"discarded"`
	Total     int `json:"total"`
}

// ImportSession is the resumable review aggregate for one bulk-import batch.
// Entries are index-addressed; CurrentIndex is either a valid index or equals
// len(Entries), meaning no next pending entry.
type ImportSession struct {
	ID           string              `json:"id"`
	Source       string              `json:"source"`
	Entries      []ImportRecipeEntry `json:"entries"`
	CurrentIndex int                 `json:"current_index"`
	Status       SessionStatus       `json:"status"`
	ImageMapping map[string]string   `json:"image_mapping,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// NewImportSession creates an active session with every recipe pending and
// the cursor at the first entry.
func NewImportSession(id, source string, recipes []ParsedRecipe) *ImportSession {
	entries := make([]ImportRecipeEntry, len(recipes))
	for i, recipe := range recipes {
		entries[i] = ImportRecipeEntry{Recipe: recipe, Status: EntryPending}
	}
	now := time.Now().UTC()
	return &ImportSession{
		ID:        id,
		Source:    source,
		Entries:   entries,
		Status:    SessionActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Accept resolves a pending entry as accepted. Out-of-range indices and
// already-resolved entries are silent no-ops so retries never double-apply.
func (s *ImportSession) Accept(index int, importedID string) bool {
	return s.resolve(index, func(entry *ImportRecipeEntry) {
		entry.Status = EntryAccepted
		entry.ImportedID = importedID
	})
}

// Edit resolves a pending entry with a replacement recipe value. The original
// extraction is kept alongside the edit.
func (s *ImportSession) Edit(index int, edited ParsedRecipe, importedID string) bool {
	return s.resolve(index, func(entry *ImportRecipeEntry) {
		cp := edited.Clone()
		entry.Status = EntryEdited
		entry.Edited = &cp
		entry.ImportedID = importedID
	})
}

// Discard resolves a pending entry as not imported.
func (s *ImportSession) Discard(index int) bool {
	return s.resolve(index, func(entry *ImportRecipeEntry) {
		entry.Status = EntryDiscarded
	})
}

// Navigate moves the cursor without touching any entry. Out-of-range indices
// are ignored.
func (s *ImportSession) Navigate(index int) bool {
	if index < 0 || index >= len(s.Entries) {
		return false
	}
	s.CurrentIndex = index
	s.touch()
	return true
}

// MergeImageMapping folds uploaded-image URLs into the session; later keys
// overwrite earlier ones.
func (s *ImportSession) MergeImageMapping(mapping map[string]string) {
	if len(mapping) == 0 {
		return
	}
	if s.ImageMapping == nil {
		s.ImageMapping = make(map[string]string, len(mapping))
	}
	for path, url := range mapping {
		s.ImageMapping[path] = url
	}
	s.touch()
}

// Complete forces the terminal completed state regardless of remaining
// pending entries.
func (s *ImportSession) Complete() {
	s.Status = SessionCompleted
	s.touch()
}

// Abandon forces the terminal abandoned state.
func (s *ImportSession) Abandon() {
	s.Status = SessionAbandoned
	s.touch()
}

// Stats recomputes aggregate counts across all entries.
func (s *ImportSession) Stats() ReviewStats {
	stats := ReviewStats{Total: len(s.Entries)}
	for _, entry := range s.Entries {
		switch entry.Status {
		case EntryAccepted:
			stats.Accepted++
		case EntryEdited:
			stats.Edited++
		case EntryDiscarded:
			stats.Discarded++
		default:
			stats.Pending++
		}
	}
	return stats
}

func (s *ImportSession) resolve(index int, apply func(*ImportRecipeEntry)) bool {
	if index < 0 || index >= len(s.Entries) {
		return false
	}
	if s.Entries[index].Status != EntryPending {
		return false
	}
	apply(&s.Entries[index])
	s.CurrentIndex = s.nextPending(index)
	if s.Status == SessionActive && s.Stats().Pending == 0 {
		s.Status = SessionCompleted
	}
	s.touch()
	return true
}

// nextPending returns the first pending index after from, wrapping to the
// start, or len(Entries) when nothing is left to review.
func (s *ImportSession) nextPending(from int) int {
	for offset := 1; offset <= len(s.Entries); offset++ {
		idx := (from + offset) % len(s.Entries)
		if s.Entries[idx].Status == EntryPending {
			return idx
		}
	}
	return len(s.Entries)
}

func (s *ImportSession) touch() {
	s.UpdatedAt = time.Now().UTC()
}
