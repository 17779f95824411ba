// Package uci contains a driver for using the engine under the UCI protocol.
//
// See: http://wbec-ridderkerk.nl/html/UCIProtocol.html
// See: https://en.wikipedia.org/wiki/Universal_Chess_Interface
package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/herohde/moreau/pkg/board"
	"github.com/herohde/moreau/pkg/board/fen"
	"github.com/herohde/moreau/pkg/engine"
	"github.com/herohde/moreau/pkg/eval"
	"github.com/herohde/moreau/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"
)

const ProtocolName = "uci"

// waitingStep is the poll interval for isready and the search monitor.
const waitingStep = 5 * time.Millisecond

// goKeywords are the keywords recognised by the "go" command. Each keyword consumes
// the tokens up to the next recognised keyword.
var goKeywords = []string{
	"searchmoves", "ponder", "wtime", "btime", "winc", "binc", "movestogo",
	"depth", "nodes", "mate", "movetime", "infinite",
}

// Driver implements a UCI driver for an engine. It is activated if sent "uci".
type Driver struct {
	e  *engine.Engine
	sv *searchVisitor

	out chan string

	active  *atomic.Bool // user is waiting for engine to move
	monitor chan struct{} // closed when the search monitor exits
	quit    iox.AsyncCloser
}

// NewDriver returns a driver for the engine along with its output line stream. The
// driver reads commands from the input stream until "quit" or EOF.
func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		e:      e,
		out:    out,
		active: atomic.NewBool(false),
		quit:   iox.NewAsyncCloser(),
	}
	d.sv = newSearchVisitor(d)
	e.SetSearchVisitor(d.sv)

	go d.process(ctx, in)
	return d, out
}

// Close shuts the driver down. Idempotent.
func (d *Driver) Close() {
	d.quit.Close()
}

// Closed returns a channel that is closed when the driver has shut down.
func (d *Driver) Closed() <-chan struct{} {
	return d.quit.Closed()
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.quit.Close()
	defer close(d.out)

	logw.Infof(ctx, "UCI protocol initialized")

	d.identify()

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream closed. Exiting")
				d.shutdown(ctx)
				return
			}
			if !d.handle(ctx, line) {
				d.shutdown(ctx)
				return
			}

		case <-d.quit.Closed():
			d.shutdown(ctx)
			return
		}
	}
}

// handle interprets a single command line. Returns false to exit the loop.
func (d *Driver) handle(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return true
	}
	cmd, args := parts[0], parts[1:]

	switch strings.ToLower(cmd) {
	case "uci":
		d.identify()

	case "isready":
		// Synchronization point: block until any search has completed.

		for d.e.SearchInProgress() {
			time.Sleep(waitingStep)
		}
		d.out <- "readyok"

	case "ucinewgame":
		d.e.NewGame(ctx)

	case "position":
		// position [fen <fenstring> | startpos] [moves <move1> ... <movei>]

		if err := d.handlePosition(ctx, args); err != nil {
			logw.Errorf(ctx, "Invalid position '%v': %v", line, err)
		}

	case "go":
		if err := d.handleGo(ctx, args); err != nil {
			logw.Errorf(ctx, "Go failed '%v': %v", line, err)
		}

	case "stop":
		d.e.Terminate()

	case "quit":
		return false

	default:
		d.out <- fmt.Sprintf("Unknown command: %v", line)
		logw.Warningf(ctx, "Unknown command '%v': %v", cmd, args)
	}
	return true
}

func (d *Driver) identify() {
	d.out <- fmt.Sprintf("id name %v", d.e.Name())
	d.out <- fmt.Sprintf("id author %v", d.e.Author())
	d.out <- "uciok"
}

func (d *Driver) handlePosition(ctx context.Context, args []string) error {
	cmds := partitionArgs([]string{"startpos", "fen", "moves"}, args)

	position := ""
	if _, ok := cmds["startpos"]; ok {
		position = fen.Initial
	}
	if v, ok := cmds["fen"]; ok {
		if len(v) != 6 {
			return fmt.Errorf("invalid fen argument: %w", board.ErrMalformed)
		}
		position = strings.Join(v, " ")
	}

	var moves []board.Move
	if v, ok := cmds["moves"]; ok {
		ret, err := board.ParseMoves(strings.Join(v, " "))
		if err != nil {
			return err
		}
		moves = ret
	}

	return d.e.ModifyPosition(ctx, position, moves)
}

func (d *Driver) handleGo(ctx context.Context, args []string) error {
	cmds := partitionArgs(goKeywords, args)

	readInt := func(key string) (int, bool, error) {
		v, ok := cmds[key]
		if !ok {
			return 0, false, nil
		}
		if len(v) == 0 {
			return 0, false, fmt.Errorf("no argument for %v: %w", key, board.ErrMalformed)
		}
		n, err := strconv.Atoi(v[0])
		if err != nil {
			return 0, false, fmt.Errorf("invalid argument for %v: %w", key, board.ErrMalformed)
		}
		return n, true, nil
	}

	// Clock state is recorded, but does not drive search decisions.

	var tc engine.TimeControl
	for key, dst := range map[string]*time.Duration{
		"wtime": &tc.White, "btime": &tc.Black, "winc": &tc.WhiteInc, "binc": &tc.BlackInc,
	} {
		if n, ok, err := readInt(key); err != nil {
			return err
		} else if ok {
			*dst = time.Duration(n) * time.Millisecond
		}
	}
	if n, ok, err := readInt("movestogo"); err != nil {
		return err
	} else if ok {
		tc.Moves = n
	}
	d.e.SetTimeControl(tc)

	var opt engine.SearchOptions
	if n, ok, err := readInt("depth"); err != nil {
		return err
	} else if ok {
		opt.DepthLimit = lang.Some(n)
	}
	if n, ok, err := readInt("nodes"); err != nil {
		return err
	} else if ok {
		opt.NodeLimit = lang.Some(uint64(n))
	}
	if n, ok, err := readInt("movetime"); err != nil {
		return err
	} else if ok {
		opt.Timeout = lang.Some(time.Duration(n) * time.Millisecond)
	}
	if v, ok := cmds["searchmoves"]; ok {
		moves, err := board.ParseMoves(strings.Join(v, " "))
		if err != nil {
			return err
		}
		opt.MoveFilter = moves
	}

	if n, ok, err := readInt("mate"); err != nil {
		return err
	} else if ok {
		opt.DepthLimit = lang.Some(n)
		if _, err := d.e.SearchMate(ctx, opt, false); err != nil {
			return err
		}
		return nil
	}

	if _, err := d.e.Search(ctx, opt, false); err != nil {
		return err
	}
	d.active.Store(true)

	d.monitor = make(chan struct{})
	go d.monitorSearch(ctx, d.monitor)
	return nil
}

// monitorSearch periodically reports node statistics while a search runs and emits
// the bestmove line exactly once when it completes.
func (d *Driver) monitorSearch(ctx context.Context, done chan struct{}) {
	defer close(done)

	i := 0
	for {
		if _, ok := d.e.SearchDone().V(); ok {
			break
		}
		select {
		case <-d.quit.Closed():
			return
		default:
		}

		time.Sleep(waitingStep)
		if i = (i + 1) % int(time.Second/waitingStep); i == 0 {
			d.writeStats()
		}
	}

	d.writeStats()
	d.searchCompleted(ctx)
}

func (d *Driver) writeStats() {
	nodes := d.sv.stats.Nodes()
	npc := uint64(0)
	if duration := d.sv.stats.Duration(); duration > 0 {
		npc = uint64(float64(nodes) / duration.Seconds())
	}
	d.out <- fmt.Sprintf("info npc %v nodes %v", npc, nodes)
}

func (d *Driver) searchCompleted(ctx context.Context) {
	if !d.active.CompareAndSwap(true, false) {
		return // stale or duplicate result
	}

	r, ok := d.e.SearchDone().V()
	if !ok {
		return
	}
	if r.Err != nil {
		logw.Errorf(ctx, "Search failed: %v", r.Err)
	}

	if m, ok := r.Best.V(); ok {
		d.out <- fmt.Sprintf("bestmove %v", m)
	} else {
		// No best move: checkmate, stalemate or failure. Send NullMove.

		d.out <- "bestmove 0000"
	}
}

func (d *Driver) shutdown(ctx context.Context) {
	d.e.Quit(ctx)
	if d.monitor != nil {
		<-d.monitor
	}
	logw.Infof(ctx, "Driver closed")
}

// partitionArgs partitions the token sequence: each recognised keyword consumes the
// tokens following it up to the next recognised keyword. Tokens before the first
// keyword are dropped.
func partitionArgs(keywords []string, args []string) map[string][]string {
	recognised := map[string]bool{}
	for _, k := range keywords {
		recognised[k] = true
	}

	ret := map[string][]string{}
	current := ""
	for _, arg := range args {
		if recognised[arg] {
			current = arg
			if _, ok := ret[current]; !ok {
				ret[current] = nil
			}
			continue
		}
		if current != "" {
			ret[current] = append(ret[current], arg)
		}
	}
	return ret
}

// searchVisitor is the driver's reporting visitor: a bag of PV and stats whose root
// hooks emit "info" lines as the search progresses.
type searchVisitor struct {
	*search.Bag

	d     *Driver
	root  bool
	pv    *search.PV
	stats *search.Stats
}

func newSearchVisitor(d *Driver) *searchVisitor {
	pv := search.NewPV()
	stats := search.NewStats()
	bag := search.NewBag(map[string]search.Visitor{
		"pv":    pv,
		"stats": stats,
	})
	return &searchVisitor{Bag: bag, d: d, root: true, pv: pv, stats: stats}
}

func (v *searchVisitor) CurrentMove(m board.Move) {
	v.Bag.CurrentMove(m)
	if v.root {
		v.d.out <- fmt.Sprintf("info currmove %v", m)
	}
}

func (v *searchVisitor) NewBestMove(score eval.Score, pv bool) {
	v.Bag.NewBestMove(score, pv)
	if v.root && pv {
		moves := v.pv.Moves()
		v.d.out <- fmt.Sprintf("info depth %v score cp %v nodes %v time %v pv %v",
			len(moves), score.Centipawns(), v.stats.Nodes(), v.stats.Duration().Milliseconds(), board.PrintMoves(moves))
	}
}

func (v *searchVisitor) Child() search.Visitor {
	return &searchVisitor{Bag: v.Bag.Child().(*search.Bag), d: v.d, pv: v.pv, stats: v.stats}
}
