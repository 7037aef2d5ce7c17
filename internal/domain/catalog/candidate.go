package catalog

// Candidate is a ranked product. Score is cosine similarity on the vector path
// and an accumulated lexical score on the lexical path; it is always positive.
type Candidate struct {
	Product Product
	Score   float64
}

// IDs returns candidate product IDs in rank order.
func IDs(cs []Candidate) []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.Product.ID
	}
	return ids
}
