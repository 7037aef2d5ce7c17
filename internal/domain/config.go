package domain

// Defaults shared by configuration and the use cases.
const (
	// DefaultProductsCollection is the external product collection name.
	DefaultProductsCollection = "products"
	// DefaultVectorsCollection is the owned vector collection name.
	DefaultVectorsCollection = "products_vectors"
	// DefaultKeyPrefix namespaces every key this service reads or writes.
	DefaultKeyPrefix = "discovery:"
	// DefaultEmbedBatchSize bounds the number of texts per embedding request.
	DefaultEmbedBatchSize = 16
	// DefaultTopK is the number of vector candidates returned by default.
	DefaultTopK = 6
	// MaxRecommendations caps the recommender output.
	MaxRecommendations = 5
)
