package tnfa

import (
	"context"

	"github.com/coregx/tre/internal/conv"
	"github.com/coregx/tre/internal/sparse"
)

// parallelMatcher follows every path through the automaton at once, one
// input character per step, like a PikeVM. When two paths reach the same
// state the one whose tags win under tagOrder survives, which gives POSIX
// leftmost-longest submatches without backtracking.
//
// The search is linear in the input: each step touches every live state at
// most once. Back-references are not supported.
type parallelMatcher struct{}

// reachEntry is a live path: the state it is in and the tag values
// recorded along it.
type reachEntry struct {
	state int
	tags  []int
}

// parallelScratch holds the per-search state of the parallel matcher. It is
// pooled on the TNFA so searches do not allocate.
type parallelScratch struct {
	reach     []reachEntry
	reachNext []reachEntry
	tmp       []int

	// reachPos maps a state to its index in reachNext for the current step.
	reachPos *sparse.SparseMap
}

func newParallelScratch(t *TNFA) *parallelScratch {
	s := &parallelScratch{
		reach:     make([]reachEntry, t.numStates),
		reachNext: make([]reachEntry, t.numStates),
		tmp:       make([]int, t.numTags),
		reachPos:  sparse.NewSparseMap(t.numStates),
	}
	// One backing array for the tag vectors of both sets.
	backing := make([]int, 2*t.numStates*t.numTags)
	for i := range s.reach {
		s.reach[i].tags = backing[:t.numTags:t.numTags]
		backing = backing[t.numTags:]
		s.reachNext[i].tags = backing[:t.numTags:t.numTags]
		backing = backing[t.numTags:]
	}
	return s
}

func (parallelMatcher) run(ctx context.Context, t *TNFA, input []byte, start int, matchTags []int, eflags ExecFlags) (int, error) {
	t.stats.parallel.Add(1)
	s := t.scratch.Get().(*parallelScratch)
	defer t.scratch.Put(s)

	// Without matchTags only the end of the match is wanted, so tags are
	// neither tracked nor compared.
	numTags := 0
	if matchTags != nil {
		numTags = t.numTags
	}
	for i := range matchTags {
		matchTags[i] = -1
	}

	reach, reachNext := s.reach, s.reachNext
	nReach, nNext := 0, 0
	matchEO := -1
	newMatch := false
	c := cursorAt(input, start)
	s.reachPos.Clear()

	recordMatch := func(tags []int) {
		matchEO = c.pos
		newMatch = true
		copy(matchTags, tags[:numTags])
	}

	for steps := 1; ; steps++ {
		if matchEO < 0 {
			// Nothing is alive, so jumping to the next candidate cannot
			// lose a match.
			if nNext == 0 && t.prefilter != nil {
				cand := t.prefilter.Find(input, c.pos)
				if cand < 0 {
					break
				}
				if cand > c.pos {
					t.stats.skips.Add(1)
					c = cursorAt(input, cand)
					s.reachPos.Clear()
				}
			}

			for i := range t.initial {
				tr := &t.initial[i]
				if _, seen := s.reachPos.Get(conv.IntToUint32(tr.State)); seen {
					continue
				}
				if tr.Assertions != 0 && t.assertionsFail(tr.Assertions, &c, eflags) {
					continue
				}
				e := &reachNext[nNext]
				e.state = tr.State
				for k := 0; k < numTags; k++ {
					e.tags[k] = -1
				}
				for _, tag := range tr.Tags {
					if tag < numTags {
						e.tags[tag] = c.pos
					}
				}
				if tr.State == t.final {
					recordMatch(e.tags)
				}
				s.reachPos.Set(conv.IntToUint32(tr.State), nNext)
				nNext++
			}
		} else if numTags == 0 || nNext == 0 {
			// The match cannot get longer, or its submatches cannot change.
			break
		}

		if c.next == endOfText {
			break
		}
		if steps%pollInterval == 0 {
			if err := t.checkContext(ctx); err != nil {
				return -1, err
			}
		}

		c.step(input)
		reach, reachNext = reachNext, reach
		nReach, nNext = nNext, 0
		s.reachPos.Clear()

		// A new match ends every non-greedy repetition that could only
		// continue it at a larger end tag.
		if len(t.minimalTags) > 0 && newMatch {
			newMatch = false
			kept := 0
			for i := 0; i < nReach; i++ {
				if t.pastMinimal(reach[i].tags, matchTags, numTags) {
					continue
				}
				reach[kept].state = reach[i].state
				reach[kept].tags, reach[i].tags = reach[i].tags, reach[kept].tags
				kept++
			}
			nReach = kept
		}

		for i := 0; i < nReach; i++ {
			e := &reach[i]
			for ti := range t.states[e.state] {
				tr := &t.states[e.state][ti]
				if tr.CodeMin > c.prev || tr.CodeMax < c.prev {
					continue
				}
				if tr.Assertions != 0 &&
					(t.assertionsFail(tr.Assertions, &c, eflags) || t.classesFail(tr, c.prev)) {
					continue
				}

				tmp := s.tmp[:numTags]
				copy(tmp, e.tags[:numTags])
				for _, tag := range tr.Tags {
					if tag < numTags {
						tmp[tag] = c.pos
					}
				}

				key := conv.IntToUint32(tr.State)
				idx, seen := s.reachPos.Get(key)
				if !seen {
					ne := &reachNext[nNext]
					ne.state = tr.State
					ne.tags, s.tmp = s.tmp, ne.tags
					s.reachPos.Set(key, nNext)
					nNext++
					if tr.State == t.final &&
						(matchEO == -1 || (numTags > 0 && ne.tags[0] <= matchTags[0])) {
						recordMatch(ne.tags)
					}
					continue
				}

				// Another path already reached this state in this step.
				ne := &reachNext[idx]
				if tagOrder(numTags, t.tagDirections, tmp, ne.tags) {
					ne.tags, s.tmp = s.tmp, ne.tags
					if tr.State == t.final {
						recordMatch(ne.tags)
					}
				}
			}
		}
	}

	// The sets may have been swapped; keep the pooled scratch consistent.
	s.reach, s.reachNext = reach, reachNext
	return matchEO, nil
}

// pastMinimal reports whether a path must be dropped after a new match
// because one of its non-greedy repetitions would extend past the match.
func (t *TNFA) pastMinimal(tags, matchTags []int, numTags int) bool {
	for _, m := range t.minimalTags {
		if m.end >= numTags {
			return true
		}
		if tags[m.start] == matchTags[m.start] && tags[m.end] < matchTags[m.end] {
			return true
		}
	}
	return false
}
