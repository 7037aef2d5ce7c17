package product

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/discovery/internal/domain/catalog"
)

// productDTO is the stored product document. The catalog is written by another
// service, so field types are accepted loosely.
type productDTO struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Price       flexFloat   `json:"price"`
	Stock       flexFloat   `json:"stock"`
	Tags        flexStrings `json:"tags"`
}

func (d productDTO) toDomain(fallbackID string) catalog.Product {
	id := d.ID
	if id == "" {
		id = fallbackID
	}
	title := d.Title
	if title == "" {
		title = d.Name
	}
	return catalog.Product{
		ID:          id,
		Title:       title,
		Description: d.Description,
		Category:    d.Category,
		Price:       float64(d.Price),
		Stock:       int(d.Stock),
		Tags:        []string(d.Tags),
	}
}

// parseDocument decodes a JSON.GET "$" reply ([{...}]) or a bare object.
func parseDocument(id string, raw []byte) (catalog.Product, error) {
	raw = bytes.TrimSpace(raw)
	var dto productDTO
	if len(raw) > 0 && raw[0] == '[' {
		var arr []productDTO
		if err := json.Unmarshal(raw, &arr); err != nil {
			return catalog.Product{}, fmt.Errorf("unmarshal product %s: %w", id, err)
		}
		if len(arr) == 0 {
			return catalog.Product{}, fmt.Errorf("product %s: empty document", id)
		}
		dto = arr[0]
	} else if err := json.Unmarshal(raw, &dto); err != nil {
		return catalog.Product{}, fmt.Errorf("unmarshal product %s: %w", id, err)
	}
	return dto.toDomain(id), nil
}

// flexFloat accepts a JSON number, a numeric string, or null.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse number %q: %w", s, err)
	}
	*f = flexFloat(v)
	return nil
}

// flexStrings accepts a JSON string array or a single comma-separated string.
type flexStrings []string

func (t *flexStrings) UnmarshalJSON(b []byte) error {
	var arr []string
	if err := json.Unmarshal(b, &arr); err == nil {
		*t = arr
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("tags: %w", err)
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*t = out
	return nil
}
