// Package recommendation models closed-world product recommendations.
package recommendation

// Notes attached to empty results.
const (
	NoteNoSuitable  = "no suitable products"
	NoteParseFailed = "parse-failed"
	NoteUnavailable = "unavailable"
)

// Item is one recommended product. ID always refers to a candidate that was offered.
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ShortReason string `json:"shortReason"`
}

// Result is the recommender output. An empty result always carries a note.
type Result struct {
	Items []Item `json:"recommendations"`
	Note  string `json:"note,omitempty"`
}

// Empty builds an empty result with the given note.
func Empty(note string) Result {
	return Result{Items: []Item{}, Note: note}
}

// IsEmpty reports whether nothing was recommended.
func (r Result) IsEmpty() bool {
	return len(r.Items) == 0
}

// Restrict keeps only items whose ID is in allowed, de-duplicated, capped at limit.
// Titles are taken from allowed so the output never drifts from the catalog.
func Restrict(items []Item, allowed map[string]string, limit int) []Item {
	out := make([]Item, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		title, ok := allowed[it.ID]
		if !ok {
			continue
		}
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		it.Title = title
		out = append(out, it)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
