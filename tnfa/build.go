package tnfa

import (
	"slices"

	"github.com/coregx/tre/syntax"
)

// buildTransitions turns the lastpos/firstpos sets of root into the
// transition table. Catenations connect the end of the left side with the
// start of the right side; unbounded iterations connect their argument's end
// with its own start.
func (t *TNFA) buildTransitions(tree *syntax.Tree, root *syntax.Node, position int) error {
	counts := make([]int, position)
	if err := walkTransitions(tree, root, func(p1, p2 []syntax.PosTags) {
		for _, p := range p1 {
			counts[p.Position] += len(p2)
		}
	}); err != nil {
		return err
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	backing := make([]Transition, total)
	states := make([][]Transition, position)
	off := 0
	for i, c := range counts {
		states[i] = backing[off:off:off+c]
		off += c
	}

	if err := walkTransitions(tree, root, func(p1, p2 []syntax.PosTags) {
		makeTransitions(states, p1, p2)
	}); err != nil {
		return err
	}

	initial := make([]Transition, 0, len(root.Firstpos))
	for _, p := range root.Firstpos {
		initial = append(initial, Transition{
			State:      p.Position,
			Tags:       cloneTags(p.Tags),
			Assertions: p.Assertions,
			Backref:    -1,
		})
	}

	t.states = states
	t.initial = initial
	t.final = root.Lastpos[0].Position
	t.numStates = position
	return nil
}

// walkTransitions calls link for every pair of sets that must be connected,
// in pre-order.
func walkTransitions(tree *syntax.Tree, root *syntax.Node, link func(p1, p2 []syntax.PosTags)) error {
	stk := syntax.NewStack[*syntax.Node](tree)
	if err := stk.Push(root); err != nil {
		return err
	}
	for stk.Len() > 0 {
		node := stk.Pop()
		var err error
		switch node.Op {
		case syntax.OpUnion:
			if err = stk.Push(node.Right); err == nil {
				err = stk.Push(node.Left)
			}
		case syntax.OpCatenation:
			link(node.Left.Lastpos, node.Right.Firstpos)
			if err = stk.Push(node.Right); err == nil {
				err = stk.Push(node.Left)
			}
		case syntax.OpIteration:
			if node.Max == -1 {
				link(node.Arg.Lastpos, node.Arg.Firstpos)
			}
			err = stk.Push(node.Arg)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// makeTransitions adds an edge from every position in p1 to every position
// in p2. The character data comes from the source position, which is where
// the character is consumed.
func makeTransitions(states [][]Transition, p1, p2 []syntax.PosTags) {
	for _, from := range p1 {
		prev := -1
		for _, to := range p2 {
			if to.Position == prev {
				continue
			}
			prev = to.Position

			tr := Transition{
				CodeMin:    rune(from.CodeMin),
				CodeMax:    rune(from.CodeMax),
				State:      to.Position,
				Assertions: from.Assertions | to.Assertions,
				NegClasses: from.NegClasses,
				Backref:    -1,
			}
			if from.Class != syntax.ClassNone {
				tr.Assertions |= syntax.AssertCharClass
			}
			if len(from.NegClasses) > 0 {
				tr.Assertions |= syntax.AssertCharClassNeg
			}
			if from.Backref >= 0 {
				tr.Backref = from.Backref
				tr.Assertions |= syntax.AssertBackref
			} else {
				tr.Class = from.Class
			}

			var tags []int
			tags = append(tags, from.Tags...)
			for _, tag := range to.Tags {
				if !slices.Contains(from.Tags, tag) {
					tags = append(tags, tag)
				}
			}
			tr.Tags = tags

			states[from.Position] = append(states[from.Position], tr)
		}
	}
}

func cloneTags(tags []int) []int {
	if len(tags) == 0 {
		return nil
	}
	return slices.Clone(tags)
}
