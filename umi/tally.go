package umi

// Tally counts occurrences of string keys. Keys are reported in the order in
// which they were first added. The zero value is not usable; use NewTally.
type Tally struct {
	keys   []string
	counts map[string]int
	total  int
}

// NewTally creates an empty tally.
func NewTally() *Tally {
	return &Tally{counts: map[string]int{}}
}

// Add increments the count of key and returns the new count.
func (t *Tally) Add(key string) int {
	n, ok := t.counts[key]
	if !ok {
		t.keys = append(t.keys, key)
	}
	n++
	t.counts[key] = n
	t.total++
	return n
}

// Count returns the count of key, or 0 if key was never added.
func (t *Tally) Count(key string) int { return t.counts[key] }

// Keys returns the distinct keys in first-insertion order. The caller must
// not modify the result.
func (t *Tally) Keys() []string { return t.keys }

// Len returns the number of distinct keys.
func (t *Tally) Len() int { return len(t.keys) }

// Total returns the sum of all counts.
func (t *Tally) Total() int { return t.total }
