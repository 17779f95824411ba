package board_test

import (
	"testing"

	"github.com/herohde/moreau/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMove(t *testing.T) {
	m, err := board.ParseMove("e2e4")
	require.NoError(t, err)
	assert.Equal(t, board.Move{From: board.E2, To: board.E4}, m)
	assert.Equal(t, "e2e4", m.String())

	m, err = board.ParseMove("a7a8q")
	require.NoError(t, err)
	assert.Equal(t, board.Move{From: board.A7, To: board.A8, Promotion: board.Queen}, m)
	assert.Equal(t, "a7a8q", m.String())

	for _, bad := range []string{"", "e2", "e2e4e5", "e2x4", "a7a8k", "a7a8p", "e2 e4"} {
		_, err := board.ParseMove(bad)
		assert.Errorf(t, err, "expected error: %v", bad)
	}
}

func TestParseMoves(t *testing.T) {
	moves, err := board.ParseMoves("e2e4 e7e5 g1f3")
	require.NoError(t, err)
	assert.Equal(t, "e2e4 e7e5 g1f3", board.PrintMoves(moves))

	_, err = board.ParseMoves("e2e4 oops")
	assert.Error(t, err)
}

func TestMoveEquals(t *testing.T) {
	a, _ := board.ParseMove("b7b8q")
	b, _ := board.ParseMove("b7b8q")
	c, _ := board.ParseMove("b7b8n")

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
}
