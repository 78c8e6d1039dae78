package domain

// FallbackDomain is reported when no hit carries a domain label.
const FallbackDomain = "GENERAL"

// ScoreEntry is one entry of a ranked tally (domain or tag counts).
// Entries are ordered descending by count; ties keep the order in
// which the label was first seen among the hits.
type ScoreEntry struct {
	// Label is the domain or tag name.
	Label string `json:"label"`

	// Count is the number of hits carrying the label.
	Count int `json:"count"`
}

// Hit is a single nearest-neighbour match joined with its metadata.
type Hit struct {
	// Row is the vector index row that matched.
	Row int `json:"row"`

	// Distance is the squared Euclidean distance to the query.
	// Smaller means more similar.
	Distance float32 `json:"distance"`

	// Chunk is the metadata entry aligned with Row.
	Chunk ChunkRecord `json:"chunk"`
}

// RoutedResult is the query-scoped aggregation of the top-k hits.
// It is consumed by the downstream generation layer.
type RoutedResult struct {
	// Query is the routed query text.
	Query string `json:"query"`

	// Context is the hit chunk texts joined in ascending-distance
	// order, truncated to the configured limits.
	Context string `json:"context"`

	// Domain is the top-ranked domain, or FallbackDomain when the
	// hits carry no domain labels.
	Domain string `json:"domain"`

	// Score is the hit count of the top-ranked domain.
	Score int `json:"score"`

	// Domains is the full ranked domain tally.
	Domains []ScoreEntry `json:"domains"`

	// Tags is the ranked tag tally across hits.
	Tags []ScoreEntry `json:"tags"`

	// Sources lists contributing files as "<filename> [<domain>]",
	// in ascending-distance order, for citation.
	Sources []string `json:"sources"`

	// Hits are the raw matches backing the aggregation.
	Hits []Hit `json:"hits"`
}
