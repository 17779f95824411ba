package fen_test

import (
	"testing"

	"github.com/herohde/moreau/pkg/board"
	"github.com/herohde/moreau/pkg/board/fen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tests := []string{
		fen.Initial,
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/3Pp3/8/8/8/4K3 w - e6 0 1",
		"4k3/8/4P3/8/8/8/8/4K3 b - - 0 1",
		"1Q2k3/8/8/8/8/8/8/4K3 b - - 0 1",
		"7k/8/8/8/3r4/8/2r5/K7 b - - 0 1",
		"r3k2r/8/8/8/8/8/8/R4RK1 b kq - 1 1",
		"8/8/8/8/8/8/8/Kk6 w - - 99 450",
	}
	for _, tt := range tests {
		b, err := fen.Decode(tt)
		require.NoErrorf(t, err, "failed to decode '%v'", tt)
		assert.Equal(t, tt, fen.Encode(b))
	}
}

func TestDecodeState(t *testing.T) {
	b, err := fen.Decode("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	require.NoError(t, err)

	assert.Equal(t, board.Black, b.Turn())
	assert.Equal(t, board.FullCastlingRights, b.Castling())
	assert.Equal(t, 0, b.HalfMoves())
	assert.Equal(t, 1, b.FullMoves())

	ep, ok := b.EnPassant()
	require.True(t, ok)
	assert.Equal(t, board.E3, ep)

	p, ok := b.Piece(board.E4, board.White)
	require.True(t, ok)
	assert.Equal(t, board.Pawn, p)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq -",       // missing fields
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",            // missing rank
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",   // bad run length
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPPP/RNBQKBNR w KQkq - 0 1",  // rank overflow
		"rnbxkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",   // bad piece
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",   // bad color
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KXkq - 0 1",   // bad castling
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e9 0 1",  // bad square
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq e4 0 1",  // bad en passant rank
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - -1 1",  // bad halfmove
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 0",   // bad fullmove
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 xyz", // bad fullmove
	}
	for _, tt := range tests {
		_, err := fen.Decode(tt)
		require.Errorf(t, err, "expected error: '%v'", tt)
		assert.ErrorIs(t, err, board.ErrMalformed)
	}
}

func TestDecodeIllegalPosition(t *testing.T) {
	tests := []string{
		"8/8/8/8/8/8/8/KK5k w - - 0 1",                              // two white kings
		"8/8/8/8/8/8/8/K7 w - - 0 1",                                // missing black king
		"k7/8/8/8/8/8/8/KP6 w - - 0 1",                              // pawn on rank 1
		"kp6/8/8/8/8/8/8/K7 w - - 0 1",                              // pawn on rank 8
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e3 0 1", // en passant for wrong side
	}
	for _, tt := range tests {
		_, err := fen.Decode(tt)
		require.Errorf(t, err, "expected error: '%v'", tt)
		assert.ErrorIs(t, err, fen.ErrIllegalPosition)
	}
}
