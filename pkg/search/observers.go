package search

import (
	"time"

	"github.com/herohde/moreau/pkg/board"
	"github.com/herohde/moreau/pkg/eval"
	"go.uber.org/atomic"
)

// PV maintains the principal variation. Each improvement reported by a deeper node
// back-propagates through the parent chain, so the root holds a single full line
// when the search returns.
type PV struct {
	Node

	parent  *PV
	child   *PV
	current board.Move
	best    board.Move
	hasBest bool
	moves   []board.Move
}

// NewPV returns a new root PV visitor.
func NewPV() *PV {
	return &PV{}
}

// BestMove returns the move whose subtree last improved this node, if any.
func (v *PV) BestMove() (board.Move, bool) {
	return v.best, v.hasBest
}

// Moves returns the principal variation from this node.
func (v *PV) Moves() []board.Move {
	return v.moves
}

func (v *PV) CurrentMove(m board.Move) {
	v.current = m
}

func (v *PV) NewBestMove(score eval.Score, pv bool) {
	if !pv {
		return
	}
	v.best, v.hasBest = v.current, true

	line := append([]board.Move{v.best}, v.childMoves()...)
	v.moves = line

	if v.parent != nil {
		v.parent.NewBestMove(score.Negate(), true)
	}
}

func (v *PV) Child() Visitor {
	c := &PV{parent: v}
	v.child = c
	return c
}

func (v *PV) childMoves() []board.Move {
	if v.child == nil {
		return nil
	}
	return v.child.moves
}

// Stats counts explored moves across the whole search and measures wall time at the
// root. Counters live at the root so they can be read concurrently by a monitor
// while the search runs.
type Stats struct {
	Node

	root  *Stats
	nodes atomic.Uint64
	start atomic.Int64 // unix nanos; zero until the root starts
	end   atomic.Int64
}

// NewStats returns a new root stats visitor.
func NewStats() *Stats {
	return &Stats{}
}

// Nodes returns the number of moves explored by the whole search so far.
func (v *Stats) Nodes() uint64 {
	return v.rootStats().nodes.Load()
}

// Duration returns the wall time of the search: running time if still active,
// total time once the root scope has ended.
func (v *Stats) Duration() time.Duration {
	r := v.rootStats()
	start := r.start.Load()
	if start == 0 {
		return 0
	}
	if end := r.end.Load(); end != 0 {
		return time.Duration(end - start)
	}
	return time.Duration(time.Now().UnixNano() - start)
}

func (v *Stats) Start() {
	if v.root == nil {
		v.start.Store(time.Now().UnixNano())
		v.end.Store(0)
		v.nodes.Store(0)
	}
}

func (v *Stats) End() {
	if v.root == nil {
		v.end.Store(time.Now().UnixNano())
	}
}

func (v *Stats) CurrentMove(board.Move) {
	v.rootStats().nodes.Inc()
}

func (v *Stats) Child() Visitor {
	return &Stats{root: v.rootStats()}
}

func (v *Stats) rootStats() *Stats {
	if v.root != nil {
		return v.root
	}
	return v
}

// NodesHalt is a Stats that requests a halt once the node count reaches a limit.
type NodesHalt struct {
	Stats
	limit uint64
}

// NewNodesHalt returns a stats visitor that halts the search at the given node count.
func NewNodesHalt(limit uint64) *NodesHalt {
	return &NodesHalt{limit: limit}
}

func (v *NodesHalt) Halt() bool {
	return v.Nodes() >= v.limit
}

func (v *NodesHalt) Child() Visitor {
	return &NodesHalt{Stats: Stats{root: v.rootStats()}, limit: v.limit}
}

// TimeoutHalt requests a halt once the elapsed time since the root started exceeds
// the budget. Children consult the root's clock.
type TimeoutHalt struct {
	Node

	root    *TimeoutHalt
	timeout time.Duration
	start   time.Time
}

// NewTimeoutHalt returns a visitor that halts the search after the given duration.
func NewTimeoutHalt(timeout time.Duration) *TimeoutHalt {
	return &TimeoutHalt{timeout: timeout}
}

func (v *TimeoutHalt) Start() {
	if v.root == nil && v.start.IsZero() {
		v.start = time.Now()
	}
}

func (v *TimeoutHalt) Halt() bool {
	r := v
	if v.root != nil {
		r = v.root
	}
	return !r.start.IsZero() && time.Since(r.start) > r.timeout
}

func (v *TimeoutHalt) Child() Visitor {
	r := v
	if v.root != nil {
		r = v.root
	}
	return &TimeoutHalt{root: r, timeout: v.timeout}
}

// FilterMoves vetoes moves outside its allow-list at the root. Deeper nodes are
// unrestricted.
type FilterMoves struct {
	Node

	parent *FilterMoves
	moves  []board.Move
}

// NewFilterMoves returns a visitor restricting the root to the given moves.
func NewFilterMoves(moves []board.Move) *FilterMoves {
	return &FilterMoves{moves: moves}
}

func (v *FilterMoves) Skip(m board.Move) bool {
	if v.parent != nil {
		return false
	}
	for _, c := range v.moves {
		if c.Equals(m) {
			return false
		}
	}
	return true
}

func (v *FilterMoves) Child() Visitor {
	return &FilterMoves{parent: v}
}
