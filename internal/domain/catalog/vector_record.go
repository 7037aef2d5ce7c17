package catalog

import "time"

// VectorRecord is the stored embedding of one product. One record per product ID;
// every write replaces the whole record.
type VectorRecord struct {
	ProductID     string    `json:"productId"`
	Vector        []float32 `json:"vector"`
	TitleSnapshot string    `json:"titleSnapshot"`
	TagsSnapshot  []string  `json:"tagsSnapshot"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewVectorRecord snapshots the product fields that describe the vector.
func NewVectorRecord(p Product, vector []float32, now time.Time) VectorRecord {
	tags := make([]string, len(p.Tags))
	copy(tags, p.Tags)
	return VectorRecord{
		ProductID:     p.ID,
		Vector:        vector,
		TitleSnapshot: p.Title,
		TagsSnapshot:  tags,
		UpdatedAt:     now.UTC(),
	}
}
