// Package eval contains position evaluation logic and utilities.
package eval

import (
	"fmt"
	"math"

	"github.com/herohde/moreau/pkg/board"
)

// Score is a signed position score in pawns from the side to move's perspective.
// MateScore is reserved for "the side to move is mated here"; Inf and NegInf are
// sentinels beyond any real score and symmetric under negation.
type Score int32

const (
	MateScore Score = 32767
	Inf       Score = math.MaxInt32
	NegInf    Score = -Inf
)

func (s Score) Negate() Score {
	return -s
}

// Centipawns returns the score scaled for protocol reporting.
func (s Score) Centipawns() int {
	return int(s) * 100
}

func (s Score) String() string {
	switch s {
	case Inf:
		return "inf"
	case NegInf:
		return "-inf"
	default:
		return fmt.Sprintf("%d", int32(s))
	}
}

// Evaluator is a static position evaluator.
type Evaluator interface {
	// Evaluate returns the position score for the side to move.
	Evaluate(b *board.Board) Score
}

// Material returns the nominal material advantage balance for the side to move.
type Material struct{}

func (Material) Evaluate(b *board.Board) Score {
	turn := b.Turn()

	var score Score
	for _, p := range b.Pieces(turn) {
		score += NominalValue(p.Piece)
	}
	for _, p := range b.Pieces(turn.Opponent()) {
		score -= NominalValue(p.Piece)
	}
	return score
}

// NominalValue is the absolute nominal value in pawns of a piece. The King carries
// no material value.
func NominalValue(p board.Piece) Score {
	switch p {
	case board.Pawn:
		return 1
	case board.Bishop, board.Knight:
		return 3
	case board.Rook:
		return 5
	case board.Queen:
		return 9
	default:
		return 0
	}
}
