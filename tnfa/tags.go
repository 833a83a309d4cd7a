package tnfa

import (
	"slices"

	"github.com/coregx/tre/syntax"
)

type tagSymbol uint8

const (
	tagRecurse tagSymbol = iota
	tagAfterIteration
	tagAfterUnionLeft
	tagAfterUnionRight
	tagAfterCatLeft
	tagAfterCatRight
	tagSetSubmatchEnd
)

// tagFrame is a continuation of the tag walk. Which fields are set depends
// on sym.
type tagFrame struct {
	sym  tagSymbol
	node *syntax.Node

	// tagAfterUnionRight
	left, right *syntax.Node
	regsetBase  int
	tagLeft     int
	tagRight    int

	// tagAfterIteration, tagAfterUnionRight: whether a tag was added in
	// front of the node (first pass).
	added bool
	// tagAfterIteration (second pass)
	enterTag int
	minimal  bool

	// tagAfterCatLeft
	nextTag     int
	reservedTag int

	// tagSetSubmatchEnd
	id int
}

// regset holds the submatch boundaries waiting for the next tag. Entries are
// id*2 for a start and id*2+1 for an end. Entries below base are hidden; a
// union hides what its left branch left pending while the right branch is
// walked.
type regset struct {
	items []int
	base  int
}

func (r *regset) add(v int) { r.items = append(r.items, v) }
func (r *regset) empty() bool { return len(r.items) == r.base }
func (r *regset) clear() { r.items = r.items[:r.base] }
func (r *regset) visible() []int { return r.items[r.base:] }

// tagger is the state of one tag pass. The first pass only counts tags and
// records NumTags on the nodes; the second splices Tag literals into the
// tree.
type tagger struct {
	tree      *syntax.Tree
	firstPass bool

	regset     regset
	parents    []int
	tag        int
	nextTag    int
	numTags    int
	minimalTag int
	direction  TagDirection

	submatch   []SubmatchData
	directions []TagDirection
	minimals   []minimalPair
}

// addTags runs both tag passes over root and stores the results in t.
func (t *TNFA) addTags(tree *syntax.Tree, root *syntax.Node) error {
	counter := &tagger{tree: tree, firstPass: true}
	if err := counter.walk(root); err != nil {
		return err
	}

	dirs := make([]TagDirection, counter.numTags+1)
	for i := range dirs {
		dirs[i] = TagMaximize
	}
	sub := make([]SubmatchData, t.numSubmatches)
	for i := range sub {
		sub[i].SoTag, sub[i].EoTag = -1, -1
	}
	g := &tagger{tree: tree, submatch: sub, directions: dirs}
	if err := g.walk(root); err != nil {
		return err
	}

	t.numTags = g.numTags
	t.endTag = g.numTags
	t.submatchData = sub
	t.tagDirections = dirs
	t.minimalTags = g.minimals
	return nil
}

func (g *tagger) walk(root *syntax.Node) error {
	stk := syntax.NewStack[tagFrame](g.tree)
	g.tag, g.nextTag = 0, 1
	g.minimalTag = -1
	g.direction = TagMinimize

	if err := stk.Push(tagFrame{sym: tagRecurse, node: root}); err != nil {
		return err
	}
	for stk.Len() > 0 {
		f := stk.Pop()
		switch f.sym {
		case tagSetSubmatchEnd:
			g.regset.add(f.id*2 + 1)
			g.parents = g.parents[:len(g.parents)-1]

		case tagRecurse:
			if err := g.recurse(stk.Push, f.node); err != nil {
				return err
			}

		case tagAfterIteration:
			if g.firstPass {
				f.node.NumTags = f.node.Arg.NumTags
				if f.added {
					f.node.NumTags++
				}
				g.minimalTag = -1
			} else {
				if f.minimal {
					g.minimalTag = f.enterTag
					g.direction = TagMinimize
				} else {
					g.direction = TagMaximize
				}
			}

		case tagAfterCatLeft:
			g.nextTag = f.nextTag
			if f.reservedTag >= 0 {
				g.tag = f.reservedTag
			}

		case tagAfterCatRight:
			if g.firstPass {
				f.node.NumTags = f.node.Left.NumTags + f.node.Right.NumTags
			}

		case tagAfterUnionLeft:
			g.regset.base = len(g.regset.items)

		case tagAfterUnionRight:
			node := f.node
			if g.firstPass {
				node.NumTags = f.left.NumTags + f.right.NumTags
				if f.added {
					node.NumTags++
				}
				if node.NumSubmatches > 0 {
					node.NumTags += 2
				}
			}
			g.regset.base = f.regsetBase
			// Tag both branches at their ends, the left with the smaller
			// tag, so the left branch wins ties.
			if node.NumSubmatches > 0 {
				if !g.firstPass {
					if err := addTagRight(g.tree, f.left, f.tagLeft); err != nil {
						return err
					}
					g.directions[f.tagLeft] = TagMaximize
					if err := addTagRight(g.tree, f.right, f.tagRight); err != nil {
						return err
					}
					g.directions[f.tagRight] = TagMaximize
				}
				g.numTags += 2
			}
			g.direction = TagMaximize
		}
	}

	if !g.firstPass {
		g.purge(g.tag)
		if g.minimalTag >= 0 {
			g.minimals = append(g.minimals, minimalPair{end: g.tag, start: g.minimalTag})
			g.minimalTag = -1
		}
	}
	return nil
}

func (g *tagger) recurse(push func(tagFrame) error, node *syntax.Node) error {
	if id := node.SubmatchID; id >= 0 {
		g.regset.add(id * 2)
		if !g.firstPass && len(g.parents) > 0 {
			g.submatch[id].Parents = slices.Clone(g.parents)
		}
		if err := push(tagFrame{sym: tagSetSubmatchEnd, id: id}); err != nil {
			return err
		}
	}

	switch node.Op {
	case syntax.OpLiteral:
		if lit := node.Lit; !lit.IsSpecial() || lit.IsBackref() {
			if !g.regset.empty() {
				if g.firstPass {
					node.NumTags = 1
				} else if err := g.tagNode(node, g.direction); err != nil {
					return err
				}
				g.advance()
			}
		}

	case syntax.OpCatenation:
		left, right := node.Left, node.Right
		if err := push(tagFrame{sym: tagAfterCatRight, node: node}); err != nil {
			return err
		}
		if err := push(tagFrame{sym: tagRecurse, node: right}); err != nil {
			return err
		}
		after := tagFrame{sym: tagAfterCatLeft, nextTag: g.nextTag + left.NumTags, reservedTag: -1}
		if left.NumTags > 0 && right.NumTags > 0 {
			// The right child starts with a tag of its own.
			after.reservedTag = g.nextTag
			g.nextTag++
		}
		if err := push(after); err != nil {
			return err
		}
		if err := push(tagFrame{sym: tagRecurse, node: left}); err != nil {
			return err
		}

	case syntax.OpIteration:
		arg, minimal := node.Arg, node.Minimal
		needTag := !g.regset.empty() || minimal
		after := tagFrame{sym: tagAfterIteration, node: node}
		if g.firstPass {
			after.added = needTag
		} else {
			after.enterTag = g.tag
			after.minimal = minimal
		}
		if err := push(after); err != nil {
			return err
		}
		if err := push(tagFrame{sym: tagRecurse, node: arg}); err != nil {
			return err
		}
		if needTag {
			if !g.firstPass {
				dir := g.direction
				if minimal {
					dir = TagMaximize
				}
				if err := g.tagNode(node, dir); err != nil {
					return err
				}
			}
			g.advance()
		}
		g.direction = TagMinimize

	case syntax.OpUnion:
		left, right := node.Left, node.Right
		pending := !g.regset.empty()
		tagLeft, tagRight := g.tag, g.nextTag
		if pending {
			tagLeft, tagRight = g.nextTag, g.nextTag+1
		}
		if err := push(tagFrame{
			sym:        tagAfterUnionRight,
			node:       node,
			left:       left,
			right:      right,
			added:      pending,
			regsetBase: g.regset.base,
			tagLeft:    tagLeft,
			tagRight:   tagRight,
		}); err != nil {
			return err
		}
		if err := push(tagFrame{sym: tagRecurse, node: right}); err != nil {
			return err
		}
		if err := push(tagFrame{sym: tagAfterUnionLeft}); err != nil {
			return err
		}
		if err := push(tagFrame{sym: tagRecurse, node: left}); err != nil {
			return err
		}
		if pending {
			if !g.firstPass {
				if err := g.tagNode(node, g.direction); err != nil {
					return err
				}
			}
			g.advance()
		}
		if node.NumSubmatches > 0 {
			// Reserve the two branch marker tags.
			g.nextTag++
			g.tag = g.nextTag
			g.nextTag++
		}
	}

	if node.SubmatchID >= 0 {
		g.parents = append(g.parents, node.SubmatchID)
	}
	return nil
}

// tagNode puts the current tag in front of node and assigns it the pending
// submatch boundaries.
func (g *tagger) tagNode(node *syntax.Node, dir TagDirection) error {
	if err := addTagLeft(g.tree, node, g.tag); err != nil {
		return err
	}
	g.directions[g.tag] = dir
	if g.minimalTag >= 0 {
		g.minimals = append(g.minimals, minimalPair{end: g.tag, start: g.minimalTag})
		g.minimalTag = -1
	}
	g.purge(g.tag)
	return nil
}

func (g *tagger) advance() {
	g.regset.clear()
	g.tag = g.nextTag
	g.numTags++
	g.nextTag++
}

// purge records tag as the start or end tag of every visible pending
// boundary.
func (g *tagger) purge(tag int) {
	for _, v := range g.regset.visible() {
		if id := v / 2; v%2 == 0 {
			g.submatch[id].SoTag = tag
		} else {
			g.submatch[id].EoTag = tag
		}
	}
	g.regset.clear()
}

// addTagLeft turns node into the catenation of a tag literal and a copy of
// the original node.
func addTagLeft(tree *syntax.Tree, node *syntax.Node, tag int) error {
	return spliceTag(tree, node, tag, false)
}

// addTagRight turns node into the catenation of a copy of the original node
// and a tag literal.
func addTagRight(tree *syntax.Tree, node *syntax.Node, tag int) error {
	return spliceTag(tree, node, tag, true)
}

func spliceTag(tree *syntax.Tree, node *syntax.Node, tag int, right bool) error {
	tagNode, err := tree.NewLiteral(syntax.CodeTag, tag, -1)
	if err != nil {
		return err
	}
	moved, err := tree.NewNode(node.Op)
	if err != nil {
		return err
	}
	moved.Lit = node.Lit
	moved.Left, moved.Right, moved.Arg = node.Left, node.Right, node.Arg
	moved.Min, moved.Max, moved.Minimal = node.Min, node.Max, node.Minimal

	node.Op = syntax.OpCatenation
	node.Lit, node.Arg = nil, nil
	node.Min, node.Max, node.Minimal = 0, 0, false
	if right {
		node.Left, node.Right = moved, tagNode
	} else {
		node.Left, node.Right = tagNode, moved
	}
	return nil
}
