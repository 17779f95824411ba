// Package search contains the alpha-beta search and its observer tree.
package search

import (
	"sort"

	"github.com/herohde/moreau/pkg/board"
	"github.com/herohde/moreau/pkg/eval"
)

// Visitor observes one node of the search recursion. A visitor is attached to a
// single depth: the search creates a child for each recursive call, and the parent
// keeps the link to the most recently created child. Hooks within a node fire in a
// fixed order: Start, then per move CurrentMove / recursion / NewBestMove, then
// Mated or Stalemated if terminal, then End.
type Visitor interface {
	// Start is invoked on entry to the node.
	Start()
	// End is invoked on exit from the node.
	End()
	// CurrentMove announces the move about to be explored.
	CurrentMove(m board.Move)
	// NewBestMove reports that the current move improved alpha. pv marks a strict
	// improvement (principal variation) rather than a cutoff.
	NewBestMove(score eval.Score, pv bool)
	// Mated reports that the side to move is checkmated at this node.
	Mated()
	// Stalemated reports that the side to move is stalemated at this node.
	Stalemated()
	// Skip returns true iff the given move should not be visited at this node.
	Skip(m board.Move) bool
	// Halt returns true iff the search should unwind. Polled after each subtree.
	Halt() bool
	// Child returns a new visitor for a recursive call one ply deeper.
	Child() Visitor
}

// Node is a no-op Visitor, intended for embedding by visitors that only care about
// a few hooks.
type Node struct{}

func (Node) Start() {}
func (Node) End() {}
func (Node) CurrentMove(board.Move) {}
func (Node) NewBestMove(eval.Score, bool) {}
func (Node) Mated() {}
func (Node) Stalemated() {}
func (Node) Skip(board.Move) bool { return false }
func (Node) Halt() bool { return false }
func (Node) Child() Visitor { return Node{} }

// Bag holds a named collection of visitors. Every hook fans out to each member;
// Halt and Skip reduce by logical or. A child bag holds the children of each
// member, so every member sees its own parent chain intact.
type Bag struct {
	visitors map[string]Visitor
	names    []string // fixed fan-out order
}

// NewBag returns a bag of the given visitors.
func NewBag(visitors map[string]Visitor) *Bag {
	names := make([]string, 0, len(visitors))
	for name := range visitors {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Bag{visitors: visitors, names: names}
}

// Visitor returns the named member, if present.
func (b *Bag) Visitor(name string) (Visitor, bool) {
	v, ok := b.visitors[name]
	return v, ok
}

func (b *Bag) Start() {
	for _, name := range b.names {
		b.visitors[name].Start()
	}
}

func (b *Bag) End() {
	for _, name := range b.names {
		b.visitors[name].End()
	}
}

func (b *Bag) CurrentMove(m board.Move) {
	for _, name := range b.names {
		b.visitors[name].CurrentMove(m)
	}
}

func (b *Bag) NewBestMove(score eval.Score, pv bool) {
	for _, name := range b.names {
		b.visitors[name].NewBestMove(score, pv)
	}
}

func (b *Bag) Mated() {
	for _, name := range b.names {
		b.visitors[name].Mated()
	}
}

func (b *Bag) Stalemated() {
	for _, name := range b.names {
		b.visitors[name].Stalemated()
	}
}

func (b *Bag) Skip(m board.Move) bool {
	ret := false
	for _, name := range b.names {
		ret = b.visitors[name].Skip(m) || ret
	}
	return ret
}

func (b *Bag) Halt() bool {
	ret := false
	for _, name := range b.names {
		ret = b.visitors[name].Halt() || ret
	}
	return ret
}

func (b *Bag) Child() Visitor {
	children := make(map[string]Visitor, len(b.visitors))
	for name, v := range b.visitors {
		children[name] = v.Child()
	}
	return &Bag{visitors: children, names: b.names}
}
