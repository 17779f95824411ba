// Package fen contains utilities for reading and writing positions in FEN notation.
package fen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/herohde/moreau/pkg/board"
)

const (
	Initial = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
)

// ErrIllegalPosition is returned when a FEN parses but violates position invariants,
// such as a missing king or a pawn on a back rank.
var ErrIllegalPosition = errors.New("illegal position")

// Decode returns a new board from a FEN description.
//
// Example:
//
//	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
func Decode(fen string) (*board.Board, error) {
	// A FEN record contains six space-separated fields.

	parts := strings.Split(strings.TrimSpace(fen), " ")
	if len(parts) != 6 {
		return nil, fmt.Errorf("invalid number of sections in FEN '%v': %w", fen, board.ErrMalformed)
	}

	b := board.NewBoard()

	// (1) Piece placement, rank 8 through rank 1, file a through file h within
	// each rank. Digits are runs of blank squares.

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("invalid number of ranks in FEN '%v': %w", fen, board.ErrMalformed)
	}
	for i, row := range ranks {
		r := board.Rank8 - board.Rank(i)
		f := board.ZeroFile

		for _, c := range row {
			switch {
			case unicode.IsDigit(c):
				f += board.File(c - '0')

			case unicode.IsLetter(c):
				if !f.IsValid() {
					return nil, fmt.Errorf("too many squares on rank %v in FEN '%v': %w", r, fen, board.ErrMalformed)
				}
				color, piece, ok := parsePiece(c)
				if !ok {
					return nil, fmt.Errorf("invalid piece '%c' in FEN '%v': %w", c, fen, board.ErrMalformed)
				}
				b.Put(board.NewSquare(f, r), color, piece)
				f++

			default:
				return nil, fmt.Errorf("invalid character '%c' in FEN '%v': %w", c, fen, board.ErrMalformed)
			}
		}
		if f != board.NumFiles {
			return nil, fmt.Errorf("invalid number of squares on rank %v in FEN '%v': %w", r, fen, board.ErrMalformed)
		}
	}

	// (2) Active color: "w" or "b".

	switch parts[1] {
	case "w":
		b.SetTurn(board.White)
	case "b":
		b.SetTurn(board.Black)
	default:
		return nil, fmt.Errorf("invalid active color in FEN '%v': %w", fen, board.ErrMalformed)
	}

	// (3) Castling availability: "-" or a subset of "KQkq".

	castling, ok := parseCastling(parts[2])
	if !ok {
		return nil, fmt.Errorf("invalid castling in FEN '%v': %w", fen, board.ErrMalformed)
	}
	b.SetCastling(castling)

	// (4) En passant target square, or "-". The square behind a just-made double
	// pawn push, so its rank is fixed by the side to move.

	if parts[3] != "-" {
		sq, err := board.ParseSquareStr(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant in FEN '%v': %w", fen, board.ErrMalformed)
		}
		if sq.Rank() != board.Rank3 && sq.Rank() != board.Rank6 {
			return nil, fmt.Errorf("invalid en passant rank in FEN '%v': %w", fen, board.ErrMalformed)
		}
		b.SetEnPassant(sq)
	}

	// (5) Halfmove clock: plies since the last pawn advance or capture.

	np, err := strconv.Atoi(parts[4])
	if err != nil || np < 0 {
		return nil, fmt.Errorf("invalid halfmove clock in FEN '%v': %w", fen, board.ErrMalformed)
	}
	b.SetHalfMoves(np)

	// (6) Fullmove number: starts at 1, incremented after Black's move.

	fm, err := strconv.Atoi(parts[5])
	if err != nil || fm < 1 {
		return nil, fmt.Errorf("invalid fullmove number in FEN '%v': %w", fen, board.ErrMalformed)
	}
	b.SetFullMoves(fm)

	if err := validate(b); err != nil {
		return nil, fmt.Errorf("invalid FEN '%v': %w", fen, err)
	}
	return b, nil
}

// Encode encodes the board in FEN notation. Castling rights are emitted in the
// fixed order "KQkq" and the en passant target prints "-" when absent.
func Encode(b *board.Board) string {
	var sb strings.Builder
	for i := board.ZeroRank; i < board.NumRanks; i++ {
		r := board.Rank8 - i
		blanks := 0
		for f := board.ZeroFile; f < board.NumFiles; f++ {
			color, piece, ok := b.Square(board.NewSquare(f, r))
			if !ok {
				blanks++
				continue
			}
			if blanks > 0 {
				sb.WriteString(strconv.Itoa(blanks))
				blanks = 0
			}
			sb.WriteRune(printPiece(color, piece))
		}
		if blanks > 0 {
			sb.WriteString(strconv.Itoa(blanks))
		}
		if r > board.Rank1 {
			sb.WriteString("/")
		}
	}

	ep := "-"
	if sq, ok := b.EnPassant(); ok {
		ep = sq.String()
	}

	return fmt.Sprintf("%v %v %v %v %v %v", sb.String(), b.Turn(), b.Castling(), ep, b.HalfMoves(), b.FullMoves())
}

func validate(b *board.Board) error {
	for c := board.ZeroColor; c < board.NumColors; c++ {
		kings := 0
		for _, p := range b.Pieces(c) {
			if p.Piece == board.King {
				kings++
			}
			if p.Piece == board.Pawn && (p.Square.Rank() == board.Rank1 || p.Square.Rank() == board.Rank8) {
				return fmt.Errorf("pawn on back rank %v: %w", p.Square, ErrIllegalPosition)
			}
		}
		if kings != 1 {
			return fmt.Errorf("invalid number of kings for %v: %w", c, ErrIllegalPosition)
		}
	}

	if sq, ok := b.EnPassant(); ok {
		if (b.Turn() == board.White) != (sq.Rank() == board.Rank6) {
			return fmt.Errorf("en passant target %v does not match side to move: %w", sq, ErrIllegalPosition)
		}
	}
	return nil
}

func parseCastling(str string) (board.Castling, bool) {
	var ret board.Castling

	if str == "-" {
		return ret, true
	}
	if str == "" {
		return 0, false
	}
	for _, r := range str {
		switch r {
		case 'K':
			ret |= board.WhiteKingSideCastle
		case 'Q':
			ret |= board.WhiteQueenSideCastle
		case 'k':
			ret |= board.BlackKingSideCastle
		case 'q':
			ret |= board.BlackQueenSideCastle
		default:
			return 0, false
		}
	}
	return ret, true
}

func parsePiece(r rune) (board.Color, board.Piece, bool) {
	p, ok := board.ParsePiece(unicode.ToLower(r))
	if !ok {
		return 0, 0, false
	}
	if unicode.IsUpper(r) {
		return board.White, p, true
	}
	return board.Black, p, true
}

func printPiece(c board.Color, p board.Piece) rune {
	r := []rune(p.String())[0]
	if c == board.White {
		return unicode.ToUpper(r)
	}
	return r
}
