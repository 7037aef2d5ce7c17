package catalog

import "strings"

// Product is a catalog item. The catalog is owned elsewhere; this service only reads it.
type Product struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Tags        []string `json:"tags"`
}

// SearchText is the lexical target: title, description and category.
func (p Product) SearchText() string {
	return strings.Join([]string{p.Title, p.Description, p.Category}, " ")
}

// EmbeddingText builds the text sent to the embedding model.
// Layout is title, description, tags, category on separate lines; blank parts are omitted.
func (p Product) EmbeddingText() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.Title, p.Description, strings.Join(nonBlank(p.Tags), ", "), p.Category} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n")
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
