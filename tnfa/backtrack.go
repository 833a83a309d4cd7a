package tnfa

import (
	"bytes"
	"context"
	"unicode/utf8"

	"github.com/coregx/tre/internal/conv"
	"github.com/coregx/tre/internal/sparse"
	"github.com/coregx/tre/internal/stack"
	"github.com/coregx/tre/syntax"
)

// backtrackMatcher explores one path at a time depth-first, saving the
// alternatives it did not take on a stack. It is the only matcher that
// handles back-references and is selected for every pattern that has one.
//
// Every path from a start position is explored, so the longest match wins;
// among matches of equal length tagOrder decides. The worst case is
// exponential. The frame stack is bounded by Config.MaxBacktrackFrames.
type backtrackMatcher struct{}

// btFrame is a saved alternative: the state to resume in, the cursor and a
// private copy of the tags at that point.
type btFrame struct {
	cur   cursor
	state int
	tags  []int
}

// btSearch is the state of one backtracking search.
type btSearch struct {
	t      *TNFA
	input  []byte
	eflags ExecFlags

	frames *stack.Stack[btFrame]
	free   [][]int // tag vectors of popped frames
	tags   []int
	pmatch []Match

	// statesSeen marks back-reference states entered through an empty
	// back-reference, so such loops end.
	statesSeen *sparse.SparseSet
}

func (s *btSearch) newTags() []int {
	if n := len(s.free); n > 0 {
		v := s.free[n-1]
		s.free = s.free[:n-1]
		return v
	}
	return make([]int, s.t.numTags)
}

// push saves an alternative taking tr, with tr's tags set to the current
// position.
func (s *btSearch) push(c cursor, tr *Transition) error {
	tags := s.newTags()
	copy(tags, s.tags)
	for _, tag := range tr.Tags {
		tags[tag] = c.pos
	}
	if err := s.frames.Push(btFrame{cur: c, state: tr.State, tags: tags}); err != nil {
		s.free = append(s.free, tags)
		return err
	}
	return nil
}

func (s *btSearch) isBackrefState(state int) bool {
	trs := s.t.states[state]
	return len(trs) > 0 && trs[0].Assertions&syntax.AssertBackref != 0
}

func (backtrackMatcher) run(ctx context.Context, t *TNFA, input []byte, start int, matchTags []int, eflags ExecFlags) (int, error) {
	t.stats.backtrack.Add(1)

	cfg := t.cfg
	s := &btSearch{
		t:          t,
		input:      input,
		eflags:     eflags,
		frames:     stack.New[btFrame](min(cfg.StackInitial, cfg.MaxBacktrackFrames), cfg.MaxBacktrackFrames, cfg.StackIncrement),
		tags:       make([]int, t.numTags),
		pmatch:     make([]Match, t.numSubmatches),
		statesSeen: sparse.NewSparseSet(t.numStates),
	}

	matchEO := -1
	steps := 0
	retry := cursorAt(input, start)

	for {
		for i := range s.tags {
			s.tags[i] = -1
		}
		for i := range matchTags {
			matchTags[i] = -1
		}
		s.statesSeen.Clear()

		c := retry
		state := -1
		var firstTags []int
		for i := range t.initial {
			tr := &t.initial[i]
			if tr.Assertions != 0 && t.assertionsFail(tr.Assertions, &c, eflags) {
				continue
			}
			if state < 0 {
				state = tr.State
				firstTags = tr.Tags
				continue
			}
			if err := s.push(c, tr); err != nil {
				return -1, err
			}
		}
		for _, tag := range firstTags {
			s.tags[tag] = c.pos
		}

		for {
			steps++
			if steps%pollInterval == 0 {
				if err := t.checkContext(ctx); err != nil {
					return -1, err
				}
			}

			if state >= 0 && state == t.final {
				if matchEO < c.pos ||
					(matchEO == c.pos && matchTags != nil && tagOrder(t.numTags, t.tagDirections, s.tags, matchTags)) {
					matchEO = c.pos
					copy(matchTags, s.tags)
				}
				// The final state has no transitions.
				state = -1
			}

			if state >= 0 {
				var ok bool
				var err error
				state, ok, err = s.step(&c, state)
				if err != nil {
					return -1, err
				}
				if ok {
					continue
				}
			}

			// Backtrack.
			if s.frames.Len() == 0 {
				break
			}
			f := s.frames.Pop()
			if s.isBackrefState(f.state) {
				s.statesSeen.Remove(conv.IntToUint32(f.state))
			}
			s.free = append(s.free, s.tags)
			s.tags = f.tags
			c = f.cur
			state = f.state
		}

		if matchEO >= 0 || retry.next == endOfText {
			break
		}
		next := retry.pos + retry.width
		if t.prefilter != nil {
			cand := t.prefilter.Find(input, next)
			if cand < 0 {
				break
			}
			if cand > next {
				t.stats.skips.Add(1)
			}
			next = cand
		}
		retry = cursorAt(input, next)
	}
	return matchEO, nil
}

// step moves from state over one character, or over the text of a
// back-reference, and takes the first transition that fits. The other
// fitting transitions are pushed. It returns false when no transition fits.
func (s *btSearch) step(c *cursor, state int) (int, bool, error) {
	t := s.t
	trs := t.states[state]
	backref := s.isBackrefState(state)

	if backref {
		bt := trs[0].Backref
		t.fillPmatch(s.pmatch[:bt+1], t.flags&^syntax.NoSub, s.tags, c.pos)
		so, eo := s.pmatch[bt].So, s.pmatch[bt].Eo
		var text []byte
		if so >= 0 {
			text = s.input[so:eo]
		}
		if !bytes.HasPrefix(s.input[c.pos:], text) {
			return -1, false, nil
		}

		key := conv.IntToUint32(state)
		if len(text) == 0 {
			if s.statesSeen.Contains(key) {
				return -1, false, nil
			}
			s.statesSeen.Insert(key)
		} else {
			s.statesSeen.Remove(key)
			c.prev, _ = utf8.DecodeLastRune(text)
			c.pos += len(text)
			c.next, c.width = decodeAt(s.input, c.pos)
		}
	} else {
		if c.next == endOfText {
			return -1, false, nil
		}
		c.step(s.input)
	}

	next := -1
	var nextTags []int
	for i := range trs {
		tr := &trs[i]
		if !backref && (tr.CodeMin > c.prev || tr.CodeMax < c.prev) {
			continue
		}
		if tr.Assertions != 0 &&
			(t.assertionsFail(tr.Assertions, c, s.eflags) || t.classesFail(tr, c.prev)) {
			continue
		}
		if next < 0 {
			next = tr.State
			nextTags = tr.Tags
			continue
		}
		if err := s.push(*c, tr); err != nil {
			return -1, false, err
		}
	}
	if next < 0 {
		return -1, false, nil
	}
	for _, tag := range nextTags {
		s.tags[tag] = c.pos
	}
	return next, true, nil
}
