package board

// Move generation. Moves are pseudo-legal: they obey piece geometry and occupancy
// but may leave the mover's king in check. LegalMoves applies the check filter.

var (
	knightOffsets = [][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingOffsets   = [][2]int{{0, 1}, {1, 1}, {1, 0}, {1, -1}, {0, -1}, {-1, -1}, {-1, 0}, {-1, 1}}
	rookOffsets   = [][2]int{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	bishopOffsets = [][2]int{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
	promotions    = []Piece{Knight, Bishop, Rook, Queen}
)

// PseudoLegalMoves returns the pseudo-legal moves for the given color.
func (b *Board) PseudoLegalMoves(c Color) []Move {
	var ret []Move
	for _, p := range b.Pieces(c) {
		switch p.Piece {
		case Pawn:
			ret = b.pawnMoves(ret, p.Square, c)
		case Knight:
			ret = b.leaperMoves(ret, p.Square, c, knightOffsets)
		case Bishop:
			ret = b.riderMoves(ret, p.Square, c, bishopOffsets)
		case Rook:
			ret = b.riderMoves(ret, p.Square, c, rookOffsets)
		case Queen:
			ret = b.riderMoves(ret, p.Square, c, rookOffsets)
			ret = b.riderMoves(ret, p.Square, c, bishopOffsets)
		case King:
			ret = b.leaperMoves(ret, p.Square, c, kingOffsets)
			ret = b.castlingMoves(ret, p.Square, c)
		}
	}
	return ret
}

// LegalMoves returns the legal moves for the side to move: pseudo-legal moves that
// do not leave the mover's king in check. Castling additionally requires that the
// king does not castle out of or through an attacked square.
func (b *Board) LegalMoves() []Move {
	us := b.turn

	var ret []Move
	for _, m := range b.PseudoLegalMoves(us) {
		if p, ok := b.Piece(m.From, us); ok && p == King && abs(m.To.File().V()-m.From.File().V()) == 2 {
			if b.IsChecked(us) {
				continue
			}
			transit := NewSquare((m.From.File()+m.To.File())/2, m.From.Rank())
			if b.IsAttacked(transit, us.Opponent()) {
				continue
			}
		}

		legal := false
		b.DoMove(m, func() {
			legal = !b.IsChecked(us)
		})
		if legal {
			ret = append(ret, m)
		}
	}
	return ret
}

// Attackers returns the squares of pieces of the given color whose pseudo-legal
// move set includes the given square.
func (b *Board) Attackers(sq Square, c Color) []Square {
	var ret []Square
	for _, m := range b.PseudoLegalMoves(c) {
		if m.To == sq && (len(ret) == 0 || ret[len(ret)-1] != m.From) {
			ret = append(ret, m.From)
		}
	}
	return ret
}

// IsAttacked returns true iff the square is attacked by the given color.
func (b *Board) IsAttacked(sq Square, c Color) bool {
	for _, m := range b.PseudoLegalMoves(c) {
		if m.To == sq {
			return true
		}
	}
	return false
}

// IsChecked returns true iff the color's king is attacked by the opponent.
func (b *Board) IsChecked(c Color) bool {
	king, ok := b.KingSquare(c)
	if !ok {
		return false
	}
	return b.IsAttacked(king, c.Opponent())
}

// InCheck returns true iff the side to move is in check.
func (b *Board) InCheck() bool {
	return b.IsChecked(b.turn)
}

func (b *Board) pawnMoves(ret []Move, sq Square, c Color) []Move {
	ahead := 1
	if c == Black {
		ahead = -1
	}
	promoting := sq.Rank() == relativeRank(c, Rank7)

	// Pushes require empty squares ahead; the double push is available from the
	// pawn's starting rank only.
	if end, ok := sq.Offset(0, ahead); ok && b.IsEmpty(end) {
		if promoting {
			for _, p := range promotions {
				ret = append(ret, Move{From: sq, To: end, Promotion: p})
			}
		} else {
			ret = append(ret, Move{From: sq, To: end})
			if sq.Rank() == relativeRank(c, Rank2) {
				if end2, ok := sq.Offset(0, 2*ahead); ok && b.IsEmpty(end2) {
					ret = append(ret, Move{From: sq, To: end2})
				}
			}
		}
	}

	for _, df := range []int{-1, 1} {
		end, ok := sq.Offset(df, ahead)
		if !ok {
			continue
		}
		if _, ok := b.Piece(end, c.Opponent()); ok {
			if promoting {
				for _, p := range promotions {
					ret = append(ret, Move{From: sq, To: end, Promotion: p})
				}
			} else {
				ret = append(ret, Move{From: sq, To: end})
			}
		}
	}

	// En passant: a pawn on an adjacent file may capture onto the target square.
	if ep, ok := b.EnPassant(); ok {
		for _, df := range []int{-1, 1} {
			if start, ok := ep.Offset(df, -ahead); ok && start == sq {
				ret = append(ret, Move{From: sq, To: ep})
			}
		}
	}
	return ret
}

func (b *Board) leaperMoves(ret []Move, sq Square, c Color, offsets [][2]int) []Move {
	for _, o := range offsets {
		end, ok := sq.Offset(o[0], o[1])
		if !ok {
			continue
		}
		if _, own := b.Piece(end, c); own {
			continue
		}
		ret = append(ret, Move{From: sq, To: end})
	}
	return ret
}

func (b *Board) riderMoves(ret []Move, sq Square, c Color, offsets [][2]int) []Move {
	for _, o := range offsets {
		end := sq
		for {
			next, ok := end.Offset(o[0], o[1])
			if !ok {
				break
			}
			end = next
			if _, own := b.Piece(end, c); own {
				break
			}
			ret = append(ret, Move{From: sq, To: end})
			if _, opp := b.Piece(end, c.Opponent()); opp {
				break
			}
		}
	}
	return ret
}

// castlingMoves emits the two-file king moves when the right is held and the squares
// between king and rook are empty. Attacks on the king's path are left to the
// legality filter.
func (b *Board) castlingMoves(ret []Move, sq Square, c Color) []Move {
	if sq != NewSquare(FileE, homeRank(c)) {
		return ret
	}

	if b.castling.IsAllowed(KingSideCastle(c)) {
		f, _ := sq.Offset(1, 0)
		g, _ := sq.Offset(2, 0)
		if b.IsEmpty(f) && b.IsEmpty(g) {
			ret = append(ret, Move{From: sq, To: g})
		}
	}
	if b.castling.IsAllowed(QueenSideCastle(c)) {
		d, _ := sq.Offset(-1, 0)
		cc, _ := sq.Offset(-2, 0)
		bb, _ := sq.Offset(-3, 0)
		if b.IsEmpty(d) && b.IsEmpty(cc) && b.IsEmpty(bb) {
			ret = append(ret, Move{From: sq, To: cc})
		}
	}
	return ret
}

func relativeRank(c Color, r Rank) Rank {
	if c == White {
		return r
	}
	return NumRanks - 1 - r
}
