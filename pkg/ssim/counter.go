package ssim

type occurrenceKey struct {
	operator string
	flight   int
}

// OccurrenceCounter numbers the rows of each (operator, flight number) pair
// within one file build. It is not safe for concurrent use; each build owns
// its own counter.
type OccurrenceCounter struct {
	counts map[occurrenceKey]int
}

// NewOccurrenceCounter returns an empty counter
func NewOccurrenceCounter() *OccurrenceCounter {
	return &OccurrenceCounter{counts: make(map[occurrenceKey]int)}
}

// Next increments and returns the occurrence ordinal for the pair, starting at 1
func (c *OccurrenceCounter) Next(operator string, flight int) int {
	key := occurrenceKey{operator: operator, flight: flight}
	c.counts[key]++
	return c.counts[key]
}

