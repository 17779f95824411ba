package board_test

import (
	"testing"

	"github.com/herohde/moreau/pkg/board"
	"github.com/herohde/moreau/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moveSet(moves []board.Move) map[string]bool {
	ret := map[string]bool{}
	for _, m := range moves {
		ret[m.String()] = true
	}
	return ret
}

func TestPseudoLegalMoves(t *testing.T) {
	tests := []struct {
		position string
		color    board.Color
		expected []string
	}{
		{ // lone pawn: push and jump
			"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1",
			board.White,
			[]string{"e2e3", "e2e4", "e1d1", "e1d2", "e1f1", "e1f2"},
		},
		{ // black pawn obstructed after one step
			"4k3/4p3/8/4N3/8/8/8/4K3 b - - 0 1",
			board.Black,
			[]string{"e7e6", "e8d7", "e8d8", "e8f7", "e8f8"},
		},
		{ // pawn captures and promotions
			"4k3/8/8/8/8/8/1p6/N1N1K3 b - - 0 1",
			board.Black,
			[]string{
				"b2a1q", "b2a1r", "b2a1b", "b2a1n",
				"b2b1q", "b2b1r", "b2b1b", "b2b1n",
				"b2c1q", "b2c1r", "b2c1b", "b2c1n",
				"e8d7", "e8d8", "e8e7", "e8f7", "e8f8",
			},
		},
		{ // en passant from both adjacent files
			"4k3/8/8/2PpP3/8/8/8/4K3 w - d6 0 1",
			board.White,
			[]string{"c5c6", "c5d6", "e5e6", "e5d6", "e1d1", "e1d2", "e1e2", "e1f1", "e1f2"},
		},
		{ // knight on the rim
			"4k3/8/8/8/8/8/8/N3K3 w - - 0 1",
			board.White,
			[]string{"a1b3", "a1c2", "e1d1", "e1d2", "e1e2", "e1f1", "e1f2"},
		},
		{ // sliders stop at own pieces and capture opponents
			"4k3/8/8/8/1b6/8/8/R2BK3 w - - 0 1",
			board.White,
			[]string{
				"a1a2", "a1a3", "a1a4", "a1a5", "a1a6", "a1a7", "a1a8",
				"a1b1", "a1c1",
				"d1c2", "d1b3", "d1a4", "d1e2", "d1f3", "d1g4", "d1h5",
				"e1d2", "e1e2", "e1f1", "e1f2",
			},
		},
		{ // castling both sides when empty between
			"r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1",
			board.White,
			[]string{
				"a1b1", "a1c1", "a1d1", "a1a2", "a1a3", "a1a4", "a1a5", "a1a6", "a1a7", "a1a8",
				"h1g1", "h1f1", "h1h2", "h1h3", "h1h4", "h1h5", "h1h6", "h1h7", "h1h8",
				"e1d1", "e1d2", "e1e2", "e1f1", "e1f2", "e1g1", "e1c1",
			},
		},
	}
	for _, tt := range tests {
		b := mustDecode(t, tt.position)
		moves := b.PseudoLegalMoves(tt.color)

		assert.Equalf(t, len(moves), len(moveSet(moves)), "duplicate moves in %v", tt.position)

		expected := map[string]bool{}
		for _, m := range tt.expected {
			expected[m] = true
		}
		assert.Equalf(t, expected, moveSet(moves), "moves of %v", tt.position)
	}
}

func TestLegalMoves(t *testing.T) {
	t.Run("initial", func(t *testing.T) {
		b := mustDecode(t, fen.Initial)
		assert.Len(t, b.LegalMoves(), 20)
	})

	t.Run("no duplicates", func(t *testing.T) {
		positions := []string{
			fen.Initial,
			"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
			"4k3/8/8/2PpP3/8/8/8/4K3 w - d6 0 1",
		}
		for _, position := range positions {
			b := mustDecode(t, position)
			moves := b.LegalMoves()
			assert.Equalf(t, len(moves), len(moveSet(moves)), "duplicates in %v", position)
		}
	})

	t.Run("pinned piece may not move", func(t *testing.T) {
		// The e4 knight is pinned against the king by the e8 rook.
		b := mustDecode(t, "4r2k/8/8/8/4N3/8/8/4K3 w - - 0 1")

		for _, m := range b.LegalMoves() {
			assert.NotEqual(t, board.E4, m.From, "pinned knight moved: %v", m)
		}
	})

	t.Run("check must be answered", func(t *testing.T) {
		b := mustDecode(t, "4k3/8/8/8/8/8/4r3/4K3 w - - 0 1")
		require.True(t, b.InCheck())

		moves := moveSet(b.LegalMoves())
		assert.Equal(t, map[string]bool{"e1d1": true, "e1f1": true, "e1e2": true}, moves)
	})

	t.Run("castling blocked by attacks", func(t *testing.T) {
		tests := []struct {
			position string
			barred   []string
			allowed  []string
		}{
			{ // in check: no castling at all
				"r3k2r/8/8/8/4r3/8/8/R3K2R w KQkq - 0 1",
				[]string{"e1g1", "e1c1"},
				nil,
			},
			{ // f1 attacked: king-side barred, queen-side fine
				"r3k2r/8/8/8/5r2/8/8/R3K2R w KQkq - 0 1",
				[]string{"e1g1"},
				[]string{"e1c1"},
			},
			{ // d1 attacked: queen-side barred
				"r3k2r/8/8/8/3r4/8/8/R3K2R w KQkq - 0 1",
				[]string{"e1c1"},
				[]string{"e1g1"},
			},
			{ // b1 attacked: queen-side still allowed, the king does not pass b1
				"r3k2r/8/8/8/1r6/8/8/R3K2R w KQkq - 0 1",
				nil,
				[]string{"e1c1", "e1g1"},
			},
		}
		for _, tt := range tests {
			b := mustDecode(t, tt.position)
			moves := moveSet(b.LegalMoves())
			for _, m := range tt.barred {
				assert.Falsef(t, moves[m], "%v allowed in %v", m, tt.position)
			}
			for _, m := range tt.allowed {
				assert.Truef(t, moves[m], "%v barred in %v", m, tt.position)
			}
		}
	})

	t.Run("en passant", func(t *testing.T) {
		b := mustDecode(t, "4k3/8/8/3Pp3/8/8/8/4K3 w - e6 0 1")
		assert.True(t, moveSet(b.LegalMoves())["d5e6"])
	})
}

func TestAttackers(t *testing.T) {
	b := mustDecode(t, "4k3/8/8/8/8/5n2/8/R3K3 w - - 0 1")

	attackers := b.Attackers(board.E1, board.Black)
	require.Len(t, attackers, 1)
	assert.Equal(t, board.F3, attackers[0])

	assert.True(t, b.IsAttacked(board.E1, board.Black))
	assert.True(t, b.IsAttacked(board.A8, board.White)) // rook slides up the file
	assert.False(t, b.IsAttacked(board.B3, board.Black))

	assert.True(t, b.IsChecked(board.White))
	assert.True(t, b.InCheck())
	assert.False(t, b.IsChecked(board.Black))
}
