// Package engine provides the game-playing facade: it holds the current position,
// runs blocking or background searches and exposes cooperative termination.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/herohde/moreau/pkg/board"
	"github.com/herohde/moreau/pkg/board/fen"
	"github.com/herohde/moreau/pkg/eval"
	"github.com/herohde/moreau/pkg/search"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"go.uber.org/atomic"
)

var version = build.NewVersion(0, 9, 0)

// DefaultDepth is the search depth used when no limit is given. The core has no
// iterative deepening or time management, so some depth must bound every search.
const DefaultDepth = 4

var (
	// ErrIllegalMove is returned when asked to play a move that is not legal in
	// the current position. The position is left unchanged.
	ErrIllegalMove = errors.New("illegal move")
	// ErrSearchActive is returned when a search is requested while one is running.
	ErrSearchActive = errors.New("search already active")
	// ErrNotImplemented is returned by operations outside the engine's remit.
	ErrNotImplemented = errors.New("not implemented")
)

// Result is the outcome of a completed search. Err is set iff the search worker
// failed; Best is absent if the worker failed or the root position had no move to
// report (checkmate or stalemate).
type Result struct {
	Best lang.Optional[board.Move]
	Err  error
}

func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("failed(%v)", r.Err)
	}
	if m, ok := r.Best.V(); ok {
		return m.String()
	}
	return "none"
}

// SearchOptions hold dynamic search options. The user may change these on a
// particular search.
type SearchOptions struct {
	// DepthLimit bounds the search depth in plies. DefaultDepth if unset.
	DepthLimit lang.Optional[int]
	// NodeLimit halts the search once the given number of nodes is explored.
	NodeLimit lang.Optional[uint64]
	// Timeout halts the search once the given duration has elapsed.
	Timeout lang.Optional[time.Duration]
	// MoveFilter, if non-empty, restricts the root to the given moves.
	MoveFilter []board.Move
}

func (o SearchOptions) String() string {
	ret := fmt.Sprintf("depth=%v", o.depth())
	if v, ok := o.NodeLimit.V(); ok {
		ret += fmt.Sprintf(", nodes=%v", v)
	}
	if v, ok := o.Timeout.V(); ok {
		ret += fmt.Sprintf(", timeout=%v", v)
	}
	if len(o.MoveFilter) > 0 {
		ret += fmt.Sprintf(", filter=[%v]", board.PrintMoves(o.MoveFilter))
	}
	return "{" + ret + "}"
}

func (o SearchOptions) depth() int {
	if v, ok := o.DepthLimit.V(); ok {
		return v
	}
	return DefaultDepth
}

// TimeControl records the clock state reported by the front-end. The engine keeps
// it for reporting but does not let it drive search decisions.
type TimeControl struct {
	White, Black       time.Duration
	WhiteInc, BlackInc time.Duration
	Moves              int
}

// Engine encapsulates game-playing logic: position upkeep, search and termination.
type Engine struct {
	name, author string

	visitor search.Visitor // externally injected, if any

	b         *board.Board
	tc        TimeControl
	terminate *atomic.Bool
	worker    chan struct{} // closed when the background search exits
	done      lang.Optional[Result]
	mu        sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithSearchVisitor injects an additional visitor into every search.
func WithSearchVisitor(v search.Visitor) Option {
	return func(e *Engine) {
		e.visitor = v
	}
}

// New returns a new engine holding the standard initial position.
func New(ctx context.Context, name, author string, opts ...Option) *Engine {
	e := &Engine{
		name:      name,
		author:    author,
		terminate: atomic.NewBool(false),
	}
	for _, fn := range opts {
		fn(e)
	}
	e.b, _ = fen.Decode(fen.Initial)

	logw.Infof(ctx, "Initialized engine: %v", e.Name())
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author.
func (e *Engine) Author() string {
	return e.author
}

// SetSearchVisitor injects an additional visitor into every search.
func (e *Engine) SetSearchVisitor(v search.Visitor) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.visitor = v
}

// SetTimeControl records the clock state reported by the front-end.
func (e *Engine) SetTimeControl(tc TimeControl) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tc = tc
}

// Position returns the current position in FEN format.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.b)
}

// Board returns a copy of the current position.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.Fork()
}

// NewGame resets per-game state. A no-op for this engine, which carries no state
// across games beyond the position itself.
func (e *Engine) NewGame(ctx context.Context) {
	logw.Infof(ctx, "New game")
}

// ModifyPosition replaces the position from FEN, if given, and/or plays a sequence
// of moves onto it. An illegal or malformed input leaves the position unchanged.
func (e *Engine) ModifyPosition(ctx context.Context, position string, moves []board.Move) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.searchInProgress() {
		return ErrSearchActive
	}

	next := e.b.Fork()
	if position != "" {
		b, err := fen.Decode(position)
		if err != nil {
			return err
		}
		next = b
	}
	for _, m := range moves {
		if !playLegalMove(next, m) {
			return fmt.Errorf("%v in '%v': %w", m, fen.Encode(next), ErrIllegalMove)
		}
	}

	e.b = next
	logw.Infof(ctx, "Position %v", fen.Encode(e.b))
	return nil
}

// Search searches the current position and returns the best move, if any. If
// background is requested, it returns immediately and the outcome is published
// through SearchDone instead.
func (e *Engine) Search(ctx context.Context, opt SearchOptions, blocking bool) (lang.Optional[Result], error) {
	e.mu.Lock()
	if e.searchInProgress() {
		e.mu.Unlock()
		return lang.Optional[Result]{}, ErrSearchActive
	}

	logw.Infof(ctx, "Search %v, opt=%v, blocking=%v", fen.Encode(e.b), opt, blocking)

	bag, pv := e.newSearchBag(ctx, opt)
	b := e.b.Fork()
	run := func() Result {
		ab := search.AlphaBeta{Eval: eval.Material{}}
		ab.Search(b, opt.depth(), bag)

		var ret Result
		if m, ok := pv.BestMove(); ok {
			ret.Best = lang.Some(m)
		}
		return ret
	}

	if blocking {
		e.mu.Unlock()
		ret := run()
		return lang.Some(ret), nil
	}

	worker := make(chan struct{})
	e.worker = worker
	e.terminate.Store(false)
	e.done = lang.Optional[Result]{}
	e.mu.Unlock()

	go func() {
		defer close(worker)

		ret := func() (ret Result) {
			defer func() {
				if r := recover(); r != nil {
					ret = Result{Err: fmt.Errorf("search failed: %v", r)}
				}
			}()
			return run()
		}()

		e.mu.Lock()
		e.done = lang.Some(ret)
		e.mu.Unlock()

		if ret.Err != nil {
			logw.Errorf(ctx, "Search failed: %v", ret.Err)
		} else {
			logw.Infof(ctx, "Search done: %v", ret)
		}
	}()
	return lang.Optional[Result]{}, nil
}

// SearchMate searches for a forced mate. Present for protocol completeness; not
// supported by this engine.
func (e *Engine) SearchMate(ctx context.Context, opt SearchOptions, blocking bool) (lang.Optional[Result], error) {
	return lang.Optional[Result]{}, fmt.Errorf("mate search: %w", ErrNotImplemented)
}

// SearchDone returns the outcome of the background search, once stored.
func (e *Engine) SearchDone() lang.Optional[Result] {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.done
}

// SearchInProgress returns true iff a background search is running and its outcome
// has not yet been stored.
func (e *Engine) SearchInProgress() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.searchInProgress()
}

// Terminate requests that any running search halts as soon as possible.
func (e *Engine) Terminate() {
	e.terminate.Store(true)
}

// IsTerminating returns true iff termination was requested. The flag stays set after
// the search has wound down and is cleared when the next background search starts.
func (e *Engine) IsTerminating() bool {
	return e.terminate.Load()
}

// Quit terminates any in-flight search and waits for the worker to exit.
func (e *Engine) Quit(ctx context.Context) {
	e.Terminate()

	e.mu.Lock()
	worker := e.worker
	e.mu.Unlock()

	if worker != nil {
		<-worker
	}
	logw.Infof(ctx, "Engine quit")
}

func (e *Engine) searchInProgress() bool {
	if e.worker == nil {
		return false
	}
	select {
	case <-e.worker:
		return false
	default:
	}
	_, done := e.done.V()
	return !done
}

// newSearchBag assembles the composite visitor for a search: engine halt, PV and
// the optional limit/filter visitors, plus any injected one.
func (e *Engine) newSearchBag(ctx context.Context, opt SearchOptions) (*search.Bag, *search.PV) {
	pv := search.NewPV()
	visitors := map[string]search.Visitor{
		"halt": &haltVisitor{e: e, ctx: ctx},
		"pv":   pv,
	}
	if v, ok := opt.Timeout.V(); ok {
		visitors["timeout_halt"] = search.NewTimeoutHalt(v)
	}
	if v, ok := opt.NodeLimit.V(); ok {
		visitors["nodes_halt"] = search.NewNodesHalt(v)
	}
	if len(opt.MoveFilter) > 0 {
		visitors["filter_moves"] = search.NewFilterMoves(opt.MoveFilter)
	}
	if e.visitor != nil {
		visitors["custom"] = e.visitor
	}
	return search.NewBag(visitors), pv
}

// haltVisitor requests a halt when engine termination is requested or the search
// context is cancelled. Every depth consults the engine directly.
type haltVisitor struct {
	search.Node

	e   *Engine
	ctx context.Context
}

func (v *haltVisitor) Halt() bool {
	return v.e.IsTerminating() || contextx.IsCancelled(v.ctx)
}

func (v *haltVisitor) Child() search.Visitor {
	return &haltVisitor{e: v.e, ctx: v.ctx}
}

func playLegalMove(b *board.Board, candidate board.Move) bool {
	for _, m := range b.LegalMoves() {
		if candidate.Equals(m) {
			b.MakeMove(m)
			return true
		}
	}
	return false
}
