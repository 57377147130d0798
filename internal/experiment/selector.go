package experiment

// Selector picks the next target to mark so that consecutive marks alternate
// between a target and the one roughly opposite on the ring.
type Selector struct {
	previous      int
	awaitingFirst bool
}

// NewSelector returns a selector that starts at target 0.
func NewSelector() *Selector {
	return &Selector{awaitingFirst: true}
}

// Next returns the index of the next target out of n. It returns -1 when
// there are no targets.
func (s *Selector) Next(n int) int {
	if n <= 0 {
		return -1
	}
	if s.previous == n {
		s.previous = 0
	}
	if s.awaitingFirst {
		s.awaitingFirst = false
		return s.previous
	}
	offset := (n + 1) / 2
	idx := s.previous + offset
	if idx >= n {
		// Wrap: restart the pair sequence at 0 without re-arming the first
		// pick, so the initial (0, true) state never recurs.
		s.previous = 0
		return 0
	}
	s.previous++
	s.awaitingFirst = true
	return idx
}

// State returns the selector's internal position.
func (s *Selector) State() (previous int, awaitingFirst bool) {
	return s.previous, s.awaitingFirst
}
