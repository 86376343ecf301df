package tree

// IDCounter hands out ids for placeholder people. It is not safe for
// concurrent use; each build owns its own counter.
type IDCounter struct {
	next int64
}

// NewIDCounter returns a counter whose first id is seed.
func NewIDCounter(seed int64) *IDCounter {
	return &IDCounter{next: seed}
}

// Next returns the current id and advances the counter.
func (c *IDCounter) Next() int64 {
	id := c.next
	c.next++
	return id
}

// Peek returns the id the next call to Next will return.
func (c *IDCounter) Peek() int64 { return c.next }
