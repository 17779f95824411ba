package search

import (
	"github.com/herohde/moreau/pkg/board"
	"github.com/herohde/moreau/pkg/eval"
)

// AlphaBeta implements fail-hard negamax alpha-beta pruning, driving a visitor tree
// that mirrors the recursion stack. Pseudo-code:
//
//	function alphabeta(node, depth, α, β) is
//	    if depth = 0 then
//	        return the heuristic value of node
//	    for each child of node do
//	        value := −alphabeta(child, depth − 1, −β, −α)
//	        if value ≥ β then
//	            return β (* cutoff *)
//	        α := max(α, value)
//	    return α
//
// See: https://en.wikipedia.org/wiki/Alpha–beta_pruning.
type AlphaBeta struct {
	// Eval is the leaf evaluator. Defaults to material balance.
	Eval eval.Evaluator
}

// Search runs the search to the given depth over the full window. The board is
// restored to its initial state on return.
func (s AlphaBeta) Search(b *board.Board, depth int, v Visitor) eval.Score {
	return s.SearchWindow(b, depth, eval.NegInf, eval.Inf, v)
}

// SearchWindow runs the search to the given depth within the [alpha, beta] window.
func (s AlphaBeta) SearchWindow(b *board.Board, depth int, alpha, beta eval.Score, v Visitor) eval.Score {
	run := &runAlphaBeta{eval: materialIfNotSet(s.Eval), b: b}
	return run.search(depth, alpha, beta, noopIfNotSet(v))
}

type runAlphaBeta struct {
	eval eval.Evaluator
	b    *board.Board
}

// search returns the score for the side to move. A checkmated node scores
// -MateScore and a stalemated node zero; both are classified to the visitor.
func (r *runAlphaBeta) search(depth int, alpha, beta eval.Score, v Visitor) eval.Score {
	v.Start()
	defer v.End()

	if depth == 0 {
		return r.eval.Evaluate(r.b)
	}

	mate := true
	for _, m := range r.b.LegalMoves() {
		if v.Skip(m) {
			continue
		}
		v.CurrentMove(m)
		mate = false

		child := v.Child()
		var score eval.Score
		r.b.DoMove(m, func() {
			score = r.search(depth-1, beta.Negate(), alpha.Negate(), child).Negate()
		})

		// Fail hard, but never let a synthetic infinite poison the bound.
		if score >= beta && score != eval.Inf {
			v.NewBestMove(score, false)
			return beta
		}
		if score > alpha {
			alpha = score
			v.NewBestMove(score, true)
		}
		if v.Halt() {
			return score
		}
	}

	if mate {
		if r.b.InCheck() {
			v.Mated()
			return -eval.MateScore
		}
		v.Stalemated()
		return 0
	}
	return alpha
}

func materialIfNotSet(e eval.Evaluator) eval.Evaluator {
	if e == nil {
		return eval.Material{}
	}
	return e
}

func noopIfNotSet(v Visitor) Visitor {
	if v == nil {
		return Node{}
	}
	return v
}
