package lexical

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/discovery/internal/domain/catalog"
)

// Matching and scoring constants.
const (
	MaxEditDistance = 2
	// MinFuzzyRunes: tokens of this length or shorter only match by containment.
	MinFuzzyRunes = 3

	ContainScore    = 3.0
	FuzzyScore      = 1.5
	TitleBonusScore = 2.0
)

// Match reports whether a normalized token matches a normalized target: by
// containment, or for tokens longer than MinFuzzyRunes by edit distance against the
// whole target.
func Match(token, target string) bool {
	if token == "" {
		return false
	}
	if strings.Contains(target, token) {
		return true
	}
	tr := []rune(token)
	if len(tr) <= MinFuzzyRunes {
		return false
	}
	return withinDistance(tr, []rune(target), MaxEditDistance)
}

// MatchWindows is Match that also accepts a fuzzy hit against any run of target
// words as long as the token. Multi-word product text then tolerates misspelt words.
func MatchWindows(token, target string) bool {
	if Match(token, target) {
		return true
	}
	tr := []rune(token)
	if len(tr) <= MinFuzzyRunes {
		return false
	}
	n := len(strings.Fields(token))
	words := strings.Fields(target)
	for i := 0; i+n <= len(words); i++ {
		window := strings.Join(words[i:i+n], " ")
		if withinDistance(tr, []rune(window), MaxEditDistance) {
			return true
		}
	}
	return false
}

// Corpus is a catalog snapshot with normalized text precomputed once.
type Corpus struct {
	docs  []corpusDoc
	match func(token, target string) bool
}

type corpusDoc struct {
	product catalog.Product
	title   string
	text    string
}

// NewCorpus normalizes every product's title and search text.
func NewCorpus(products []catalog.Product) *Corpus {
	docs := make([]corpusDoc, len(products))
	for i, p := range products {
		docs[i] = corpusDoc{
			product: p,
			title:   Normalize(p.Title),
			text:    Normalize(p.SearchText()),
		}
	}
	return &Corpus{docs: docs, match: Match}
}

// WithWordWindows switches fuzzy scoring to MatchWindows. Off by default.
func (c *Corpus) WithWordWindows(on bool) *Corpus {
	if on {
		c.match = MatchWindows
	} else {
		c.match = Match
	}
	return c
}

// Len is the number of products in the corpus.
func (c *Corpus) Len() int { return len(c.docs) }

// Score ranks the corpus against normalized terms. Per term a product earns
// ContainScore for containment in its text, otherwise FuzzyScore for a fuzzy match,
// plus TitleBonusScore when the title contains the term. Products scoring zero are
// dropped; ties keep catalog order.
func (c *Corpus) Score(terms []string) []catalog.Candidate {
	out := make([]catalog.Candidate, 0)
	for _, d := range c.docs {
		var score float64
		for _, term := range terms {
			if term == "" {
				continue
			}
			switch {
			case strings.Contains(d.text, term):
				score += ContainScore
			case c.match(term, d.text):
				score += FuzzyScore
			}
			if strings.Contains(d.title, term) {
				score += TitleBonusScore
			}
		}
		if score > 0 {
			out = append(out, catalog.Candidate{Product: d.product, Score: score})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// Score is a convenience for scoring a product slice once.
func Score(terms []string, products []catalog.Product) []catalog.Candidate {
	return NewCorpus(products).Score(terms)
}
