package tnfa

import (
	"slices"

	"github.com/coregx/tre/syntax"
)

type nflSymbol uint8

const (
	nflRecurse nflSymbol = iota
	nflPostUnion
	nflPostCatenation
	nflPostIteration
)

type nflFrame struct {
	sym  nflSymbol
	node *syntax.Node
}

// computeNFL fills Nullable, Firstpos and Lastpos for every node below root.
func computeNFL(tree *syntax.Tree, root *syntax.Node) error {
	stk := syntax.NewStack[nflFrame](tree)
	empty := syntax.NewStack[*syntax.Node](tree)
	push := func(sym nflSymbol, n *syntax.Node) error {
		return stk.Push(nflFrame{sym: sym, node: n})
	}

	if err := push(nflRecurse, root); err != nil {
		return err
	}
	for stk.Len() > 0 {
		f := stk.Pop()
		node := f.node
		switch f.sym {
		case nflRecurse:
			switch node.Op {
			case syntax.OpLiteral:
				computeLiteralNFL(node)
			case syntax.OpUnion, syntax.OpCatenation:
				sym := nflPostUnion
				if node.Op == syntax.OpCatenation {
					sym = nflPostCatenation
				}
				if err := push(sym, node); err != nil {
					return err
				}
				if err := push(nflRecurse, node.Right); err != nil {
					return err
				}
				if err := push(nflRecurse, node.Left); err != nil {
					return err
				}
			case syntax.OpIteration:
				if err := push(nflPostIteration, node); err != nil {
					return err
				}
				if err := push(nflRecurse, node.Arg); err != nil {
					return err
				}
			}

		case nflPostUnion:
			node.Nullable = nullability(isNullable(node.Left) || isNullable(node.Right))
			node.Firstpos = setUnion(node.Left.Firstpos, node.Right.Firstpos, nil, 0)
			node.Lastpos = setUnion(node.Left.Lastpos, node.Right.Lastpos, nil, 0)

		case nflPostIteration:
			node.Nullable = nullability(node.Min == 0 || isNullable(node.Arg))
			node.Firstpos = node.Arg.Firstpos
			node.Lastpos = node.Arg.Lastpos

		case nflPostCatenation:
			left, right := node.Left, node.Right
			node.Nullable = nullability(isNullable(left) && isNullable(right))

			// Positions reached across an empty left side carry the tags
			// and assertions of its preferred empty path.
			if isNullable(left) {
				tags, assertions, err := matchEmpty(empty, left)
				if err != nil {
					return err
				}
				node.Firstpos = setUnion(right.Firstpos, left.Firstpos, tags, assertions)
			} else {
				node.Firstpos = left.Firstpos
			}

			if isNullable(right) {
				tags, assertions, err := matchEmpty(empty, right)
				if err != nil {
					return err
				}
				node.Lastpos = setUnion(left.Lastpos, right.Lastpos, tags, assertions)
			} else {
				node.Lastpos = right.Lastpos
			}
		}
	}
	return nil
}

func computeLiteralNFL(node *syntax.Node) {
	lit := node.Lit
	switch {
	case lit.IsBackref():
		// Any character may follow; the transition compares the
		// referenced text instead.
		node.Nullable = syntax.NullFalse
		node.Firstpos = []syntax.PosTags{{
			Position: lit.Position,
			CodeMax:  syntax.MaxChar,
			Backref:  -1,
		}}
		node.Lastpos = []syntax.PosTags{{
			Position: lit.Position,
			CodeMax:  syntax.MaxChar,
			Backref:  lit.CodeMax,
		}}
	case lit.IsSpecial():
		node.Nullable = syntax.NullTrue
		node.Firstpos = nil
		node.Lastpos = nil
	default:
		node.Nullable = syntax.NullFalse
		node.Firstpos = []syntax.PosTags{{
			Position: lit.Position,
			CodeMin:  lit.CodeMin,
			CodeMax:  lit.CodeMax,
			Backref:  -1,
		}}
		node.Lastpos = []syntax.PosTags{{
			Position:   lit.Position,
			CodeMin:    lit.CodeMin,
			CodeMax:    lit.CodeMax,
			Class:      lit.Class,
			NegClasses: lit.NegClasses,
			Backref:    -1,
		}}
	}
}

func isNullable(n *syntax.Node) bool { return n.Nullable == syntax.NullTrue }

func nullability(b bool) syntax.Nullability {
	if b {
		return syntax.NullTrue
	}
	return syntax.NullFalse
}

// setUnion returns set1 followed by set2. Members of set1 get tags appended
// and assertions added.
func setUnion(set1, set2 []syntax.PosTags, tags []int, assertions syntax.Assertion) []syntax.PosTags {
	out := make([]syntax.PosTags, 0, len(set1)+len(set2))
	for _, p := range set1 {
		p.Assertions |= assertions
		if len(tags) > 0 {
			p.Tags = append(slices.Clip(p.Tags), tags...)
		}
		out = append(out, p)
	}
	return append(out, set2...)
}

// matchEmpty follows the preferred way for node to match the empty string
// and collects the tags and assertions on it. Unions prefer the left branch;
// iterations go through their argument when it can be empty.
func matchEmpty(stk interface {
	Push(*syntax.Node) error
	Pop() *syntax.Node
	Len() int
}, node *syntax.Node) ([]int, syntax.Assertion, error) {
	var tags []int
	var assertions syntax.Assertion
	bottom := stk.Len()

	if err := stk.Push(node); err != nil {
		return nil, 0, err
	}
	for stk.Len() > bottom {
		n := stk.Pop()
		var err error
		switch n.Op {
		case syntax.OpLiteral:
			switch lit := n.Lit; {
			case lit.IsTag():
				if lit.CodeMax >= 0 && !slices.Contains(tags, lit.CodeMax) {
					tags = append(tags, lit.CodeMax)
				}
			case lit.IsAssertion():
				assertions |= syntax.Assertion(lit.CodeMax)
			}
		case syntax.OpUnion:
			if isNullable(n.Left) {
				err = stk.Push(n.Left)
			} else {
				err = stk.Push(n.Right)
			}
		case syntax.OpCatenation:
			if err = stk.Push(n.Left); err == nil {
				err = stk.Push(n.Right)
			}
		case syntax.OpIteration:
			if isNullable(n.Arg) {
				err = stk.Push(n.Arg)
			}
		}
		if err != nil {
			return nil, 0, err
		}
	}
	return tags, assertions, nil
}
