// Package intent models the structured reading of a shopper's message.
package intent

// Intent is what the shopper is after. Every field is optional.
type Intent struct {
	Crop     string   `json:"crop"`
	Problem  string   `json:"problem"`
	Goal     string   `json:"goal"`
	Keywords []string `json:"keywords"`
}

// IsEmpty reports whether the intent carries no structured signal at all.
func (i Intent) IsEmpty() bool {
	if i.Crop != "" || i.Problem != "" || i.Goal != "" {
		return false
	}
	for _, k := range i.Keywords {
		if k != "" {
			return false
		}
	}
	return true
}

// Extraction is the outcome of intent extraction: either a parsed intent or a
// degraded one built from the raw message.
type Extraction struct {
	Intent   Intent
	Degraded bool
	Reason   string
}

// Parsed wraps a successfully extracted intent.
func Parsed(i Intent) Extraction {
	return Extraction{Intent: i}
}

// Degrade builds the fallback extraction: empty fields, the raw message as the only keyword.
func Degrade(raw, reason string) Extraction {
	return Extraction{
		Intent:   Intent{Keywords: []string{raw}},
		Degraded: true,
		Reason:   reason,
	}
}
