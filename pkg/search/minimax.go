package search

import (
	"github.com/herohde/moreau/pkg/board"
	"github.com/herohde/moreau/pkg/eval"
)

// Minimax implements naive negamax search. Useful for comparison and validation of
// the pruning search, which must compute the same scores over a full window.
type Minimax struct {
	// Eval is the leaf evaluator. Defaults to material balance.
	Eval eval.Evaluator
}

// Search runs the search to the given depth. It returns the score for the side to
// move and the principal variation.
func (s Minimax) Search(b *board.Board, depth int) (eval.Score, []board.Move) {
	run := &runMinimax{eval: materialIfNotSet(s.Eval), b: b}
	return run.search(depth)
}

type runMinimax struct {
	eval eval.Evaluator
	b    *board.Board
}

func (r *runMinimax) search(depth int) (eval.Score, []board.Move) {
	if depth == 0 {
		return r.eval.Evaluate(r.b), nil
	}

	moves := r.b.LegalMoves()
	if len(moves) == 0 {
		if r.b.InCheck() {
			return -eval.MateScore, nil
		}
		return 0, nil
	}

	best := eval.NegInf
	var pv []board.Move
	for _, m := range moves {
		var score eval.Score
		var rem []board.Move
		r.b.DoMove(m, func() {
			score, rem = r.search(depth - 1)
		})
		score = score.Negate()

		if best < score {
			best = score
			pv = append([]board.Move{m}, rem...)
		}
	}
	return best, pv
}
