package tnfa

import "github.com/coregx/tre/syntax"

type expandSymbol uint8

const (
	expandRecurse expandSymbol = iota
	expandAfterIter
)

type expandFrame struct {
	sym    expandSymbol
	node   *syntax.Node
	posAdd int
}

// expand replaces every iteration with min > 1 or max > 1 by copies of its
// argument: min copies in sequence followed by an unbounded iteration of one
// more copy, or by max-min nested optional copies. Literal positions are
// shifted so that every copy gets positions of its own. It returns the new
// number of positions.
func expand(tree *syntax.Tree, root *syntax.Node, position int, dirs []TagDirection) (int, error) {
	stk := syntax.NewStack[expandFrame](tree)
	posAdd := 0
	posAddTotal := 0
	maxPos := 0
	iterDepth := 0

	if err := stk.Push(expandFrame{sym: expandRecurse, node: root}); err != nil {
		return 0, err
	}
	for stk.Len() > 0 {
		f := stk.Pop()
		node := f.node
		switch f.sym {
		case expandRecurse:
			switch node.Op {
			case syntax.OpLiteral:
				if lit := node.Lit; !lit.IsSpecial() || lit.IsBackref() {
					lit.Position += posAdd
					maxPos = max(maxPos, lit.Position)
				}
			case syntax.OpUnion, syntax.OpCatenation:
				if err := stk.Push(expandFrame{sym: expandRecurse, node: node.Right}); err != nil {
					return 0, err
				}
				if err := stk.Push(expandFrame{sym: expandRecurse, node: node.Left}); err != nil {
					return 0, err
				}
			case syntax.OpIteration:
				if err := stk.Push(expandFrame{sym: expandAfterIter, node: node, posAdd: posAdd}); err != nil {
					return 0, err
				}
				if err := stk.Push(expandFrame{sym: expandRecurse, node: node.Arg}); err != nil {
					return 0, err
				}
				// Positions inside an expanded iteration are shifted when
				// it is copied.
				if node.Min > 1 || node.Max > 1 {
					posAdd = 0
				}
				iterDepth++
			}

		case expandAfterIter:
			posAdd = f.posAdd
			posAddLast := posAdd
			if node.Min > 1 || node.Max > 1 {
				var err error
				if posAdd, err = expandIteration(tree, node, posAdd, dirs, &maxPos); err != nil {
					return 0, err
				}
			}
			iterDepth--
			posAddTotal += posAdd - posAddLast
			if iterDepth == 0 {
				posAdd = posAddTotal
			}
		}
	}

	position += posAddTotal
	return max(position, maxPos+1), nil
}

// expandIteration rewrites node in place and returns the position offset to
// continue with.
func expandIteration(tree *syntax.Tree, node *syntax.Node, posAdd int, dirs []TagDirection, maxPos *int) (int, error) {
	var seq1, seq2 *syntax.Node
	posAddSave := posAdd

	for j := 0; j < node.Min; j++ {
		// Only the last copy keeps its tags.
		flags := copyRemoveTags
		if j+1 == node.Min {
			flags = copyMaximizeFirstTag
		}
		posAddSave = posAdd
		cp, err := copyAST(tree, node.Arg, flags, &posAdd, dirs, maxPos)
		if err != nil {
			return 0, err
		}
		if seq1, err = tree.NewCatenation(seq1, cp); err != nil {
			return 0, err
		}
	}

	if node.Max == -1 {
		posAddSave = posAdd
		cp, err := copyAST(tree, node.Arg, 0, &posAdd, nil, maxPos)
		if err != nil {
			return 0, err
		}
		if seq2, err = tree.NewIteration(cp, 0, -1, node.Minimal); err != nil {
			return 0, err
		}
	} else {
		for j := node.Min; j < node.Max; j++ {
			posAddSave = posAdd
			cp, err := copyAST(tree, node.Arg, 0, &posAdd, nil, maxPos)
			if err != nil {
				return 0, err
			}
			if seq2 != nil {
				if seq2, err = tree.NewCatenation(cp, seq2); err != nil {
					return 0, err
				}
			} else {
				seq2 = cp
			}
			empty, err := tree.NewLiteral(syntax.CodeEmpty, -1, -1)
			if err != nil {
				return 0, err
			}
			if seq2, err = tree.NewUnion(empty, seq2); err != nil {
				return 0, err
			}
		}
	}

	posAdd = posAddSave
	if seq1 == nil {
		seq1 = seq2
	} else if seq2 != nil {
		var err error
		if seq1, err = tree.NewCatenation(seq1, seq2); err != nil {
			return 0, err
		}
	}

	node.Op = seq1.Op
	node.Lit = seq1.Lit
	node.Left, node.Right, node.Arg = seq1.Left, seq1.Right, seq1.Arg
	node.Min, node.Max, node.Minimal = seq1.Min, seq1.Max, seq1.Minimal
	return posAdd, nil
}

type copyFlags uint8

const (
	copyRemoveTags copyFlags = 1 << iota
	copyMaximizeFirstTag
)

type copySymbol uint8

const (
	copyRecurse copySymbol = iota
	copySetResult
)

type copyFrame struct {
	sym    copySymbol
	node   *syntax.Node
	result **syntax.Node
}

// copyAST returns a deep copy of root. Character literals are moved by
// *posAdd positions, which then grows by the number of literals copied.
func copyAST(tree *syntax.Tree, root *syntax.Node, flags copyFlags, posAdd *int, dirs []TagDirection, maxPos *int) (*syntax.Node, error) {
	stk := syntax.NewStack[copyFrame](tree)
	var out *syntax.Node
	result := &out
	copied := 0
	firstTag := true

	if err := stk.Push(copyFrame{sym: copyRecurse, node: root}); err != nil {
		return nil, err
	}
	for stk.Len() > 0 {
		f := stk.Pop()
		if f.sym == copySetResult {
			result = f.result
			continue
		}

		node := f.node
		switch node.Op {
		case syntax.OpLiteral:
			lit := node.Lit
			lo, hi, pos := lit.CodeMin, lit.CodeMax, lit.Position
			switch {
			case !lit.IsSpecial() || lit.IsBackref():
				pos += *posAdd
				copied++
			case lit.IsTag() && flags&copyRemoveTags != 0:
				lo, hi, pos = syntax.CodeEmpty, -1, -1
			case lit.IsTag() && flags&copyMaximizeFirstTag != 0 && firstTag:
				dirs[hi] = TagMaximize
				firstTag = false
			}
			n, err := tree.NewLiteral(lo, hi, pos)
			if err != nil {
				return nil, err
			}
			n.Lit.Class = lit.Class
			n.Lit.NegClasses = lit.NegClasses
			*result = n
			*maxPos = max(*maxPos, pos)

		case syntax.OpUnion, syntax.OpCatenation:
			var n *syntax.Node
			var err error
			if node.Op == syntax.OpUnion {
				n, err = tree.NewUnion(node.Left, node.Right)
			} else {
				n, err = tree.NewCatenation(node.Left, node.Right)
			}
			if err != nil {
				return nil, err
			}
			*result = n
			result = &n.Left
			if err := stk.Push(copyFrame{sym: copyRecurse, node: node.Right}); err != nil {
				return nil, err
			}
			if err := stk.Push(copyFrame{sym: copySetResult, result: &n.Right}); err != nil {
				return nil, err
			}
			if err := stk.Push(copyFrame{sym: copyRecurse, node: node.Left}); err != nil {
				return nil, err
			}

		case syntax.OpIteration:
			if err := stk.Push(copyFrame{sym: copyRecurse, node: node.Arg}); err != nil {
				return nil, err
			}
			n, err := tree.NewIteration(node.Arg, node.Min, node.Max, node.Minimal)
			if err != nil {
				return nil, err
			}
			*result = n
			result = &n.Arg
		}
	}
	*posAdd += copied
	return out, nil
}
