package matcher

// Index maps source-side display labels to scores. It is built once per run
// from a single reference page and queried per catalog product.
type Index struct {
	scores map[string]float64
	labels []string
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{scores: make(map[string]float64)}
}

// Add records a score for label. A repeated label keeps its first score.
func (ix *Index) Add(label string, score float64) {
	if label == "" {
		return
	}
	if _, exists := ix.scores[label]; exists {
		return
	}
	ix.scores[label] = score
	ix.labels = append(ix.labels, label)
}

// Len returns the number of labels
func (ix *Index) Len() int {
	return len(ix.labels)
}

// Lookup returns the score for product: exact label first, else containment
// with the same tie-break as Resolve. The matched label is returned for logging.
func (ix *Index) Lookup(product string) (float64, string, bool) {
	label, ok := Resolve(product, ix.labels)
	if !ok {
		return 0, "", false
	}
	return ix.scores[label], label, true
}
