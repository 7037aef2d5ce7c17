package lexical

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/discovery/internal/domain/intent"
)

// SynonymTable maps a normalized term to its normalized synonyms.
// It is built once and never mutated afterwards.
type SynonymTable struct {
	entries map[string][]string
}

// NewSynonymTable normalizes keys and values of raw. Entries whose key normalizes to the
// same term are merged; duplicate and empty synonyms are dropped.
func NewSynonymTable(raw map[string][]string) *SynonymTable {
	entries := make(map[string][]string, len(raw))
	for k, vs := range raw {
		key := Normalize(k)
		if key == "" {
			continue
		}
		entries[key] = appendUnique(entries[key], vs...)
	}
	return &SynonymTable{entries: entries}
}

// Merge returns a new table with other's entries added on top of t's.
func (t *SynonymTable) Merge(other map[string][]string) *SynonymTable {
	raw := make(map[string][]string, len(t.entries)+len(other))
	for k, vs := range t.entries {
		raw[k] = append([]string(nil), vs...)
	}
	for k, vs := range other {
		raw[k] = append(raw[k], vs...)
	}
	return NewSynonymTable(raw)
}

// Lookup returns the synonyms of an already normalized term. Exact match only.
func (t *SynonymTable) Lookup(term string) []string {
	if t == nil {
		return nil
	}
	return t.entries[term]
}

// Len is the number of keys.
func (t *SynonymTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// LoadSynonymFile reads a YAML mapping of term to synonym list.
func LoadSynonymFile(path string) (map[string][]string, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read synonyms %s: %w", path, err)
	}
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse synonyms %s: %w", path, err)
	}
	return raw, nil
}

// Expand builds the ordered, de-duplicated search terms for a message.
//
// Seeds are the intent's crop, problem, goal and keywords followed by the message tokens;
// every seed found in the table contributes its synonyms after the seeds. An empty intent
// yields the message tokens longer than one rune and no synonyms.
func Expand(message string, in intent.Intent, table *SynonymTable) []string {
	tokens := Tokens(message)
	if in.IsEmpty() {
		return appendUnique(nil, longTokens(tokens)...)
	}

	seeds := make([]string, 0, 3+len(in.Keywords)+len(tokens))
	for _, s := range []string{in.Crop, in.Problem, in.Goal} {
		seeds = append(seeds, Normalize(s))
	}
	for _, k := range in.Keywords {
		seeds = append(seeds, Normalize(k))
	}
	seeds = append(seeds, tokens...)

	terms := appendUnique(nil, seeds...)
	n := len(terms)
	for i := 0; i < n; i++ {
		terms = appendUnique(terms, table.Lookup(terms[i])...)
	}
	return terms
}

func longTokens(tokens []string) []string {
	out := tokens[:0:0]
	for _, t := range tokens {
		if len([]rune(t)) > 1 {
			out = append(out, t)
		}
	}
	return out
}

// appendUnique normalizes each value and appends it to dst unless empty or already present.
func appendUnique(dst []string, values ...string) []string {
	seen := make(map[string]struct{}, len(dst)+len(values))
	for _, d := range dst {
		seen[d] = struct{}{}
	}
	for _, v := range values {
		v = Normalize(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		dst = append(dst, v)
	}
	return dst
}
