// Package perft implements move-path enumeration for move generator validation.
// See: https://www.chessprogramming.org/Perft_Results.
package perft

import (
	"github.com/herohde/moreau/pkg/board"
)

// Perft counts the positions at exactly the given depth. Depth 0 counts 1.
func Perft(b *board.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	var nodes uint64
	for _, m := range b.LegalMoves() {
		b.DoMove(m, func() {
			nodes += Perft(b, depth-1)
		})
	}
	return nodes
}

// Divide returns the total position count along with the count below each root move.
func Divide(b *board.Board, depth int) (uint64, map[board.Move]uint64) {
	if depth == 0 {
		return 1, nil
	}

	var nodes uint64
	moves := map[board.Move]uint64{}
	for _, m := range b.LegalMoves() {
		b.DoMove(m, func() {
			count := Perft(b, depth-1)
			nodes += count
			moves[m] = count
		})
	}
	return nodes, moves
}
