package tnfa

import "sync/atomic"

// Stats tracks execution statistics for performance analysis.
// Counters are updated atomically and may be read while searches run.
type Stats struct {
	// ParallelSearches counts searches run by the parallel matcher.
	ParallelSearches uint64

	// BacktrackSearches counts searches run by the backtracking matcher.
	BacktrackSearches uint64

	// PrefilterSkips counts jumps over input that cannot start a match.
	PrefilterSkips uint64

	// PrefilterRejects counts searches the prefilter answered with no
	// match before the automaton ran.
	PrefilterRejects uint64

	// Cancellations counts searches aborted by their context.
	Cancellations uint64
}

type stats struct {
	parallel      atomic.Uint64
	backtrack     atomic.Uint64
	skips         atomic.Uint64
	rejects       atomic.Uint64
	cancellations atomic.Uint64
}

func (s *stats) snapshot() Stats {
	return Stats{
		ParallelSearches:  s.parallel.Load(),
		BacktrackSearches: s.backtrack.Load(),
		PrefilterSkips:    s.skips.Load(),
		PrefilterRejects:  s.rejects.Load(),
		Cancellations:     s.cancellations.Load(),
	}
}

func (s *stats) reset() {
	s.parallel.Store(0)
	s.backtrack.Store(0)
	s.skips.Store(0)
	s.rejects.Store(0)
	s.cancellations.Store(0)
}

// Stats returns a snapshot of the execution counters.
func (t *TNFA) Stats() Stats {
	return t.stats.snapshot()
}

// ResetStats zeroes the execution counters.
func (t *TNFA) ResetStats() {
	t.stats.reset()
}
