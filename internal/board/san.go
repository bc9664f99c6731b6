package board

import "strings"

// pieceLetters maps a PieceType to its SAN letter, indexed by PieceType.
const pieceLetters = "PNBRQK"

// pieceLetterTypes maps a SAN piece-prefix letter to the PieceType it
// names (the move's mover, so King is included).
var pieceLetterTypes = map[byte]PieceType{
	'N': Knight,
	'B': Bishop,
	'R': Rook,
	'Q': Queen,
	'K': King,
}

// promotionLetters maps a SAN promotion letter to the PieceType it names
// (King is never a legal promotion target, so it's excluded).
var promotionLetters = map[byte]PieceType{
	'N': Knight,
	'B': Bishop,
	'R': Rook,
	'Q': Queen,
}

// ToSAN renders m as Standard Algebraic Notation in the context of pos
// (the position m is about to be played from).
func (m Move) ToSAN(pos *Position) string {
	if m == NoMove {
		return "-"
	}

	from, to := m.From(), m.To()
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return m.String()
	}

	if m.IsCastling() {
		if to > from {
			return "O-O"
		}
		return "O-O-O"
	}

	pt := piece.Type()
	var sb strings.Builder

	if pt != Pawn {
		sb.WriteByte(pieceLetters[pt])
		sb.WriteString(disambiguate(pos, m, pt))
	}

	if m.IsCapture(pos) {
		if pt == Pawn {
			sb.WriteByte('a' + byte(from.File()))
		}
		sb.WriteByte('x')
	}

	sb.WriteString(to.String())

	if m.IsPromotion() {
		sb.WriteByte('=')
		sb.WriteByte(pieceLetters[m.Promotion()])
	}

	after := pos.Copy()
	after.MakeMove(m)
	switch {
	case after.IsCheckmate():
		sb.WriteByte('#')
	case after.InCheck():
		sb.WriteByte('+')
	}

	return sb.String()
}

// disambiguate returns the file, rank, or full-square qualifier SAN needs
// to distinguish m from other legal moves by same-type pieces landing on
// the same destination square.
func disambiguate(pos *Position, m Move, pt PieceType) string {
	from, to := m.From(), m.To()
	sameTypePieces := pos.Pieces[pos.SideToMove][pt]

	var rivals []Square
	legal := pos.GenerateLegalMoves()
	for i := 0; i < legal.Len(); i++ {
		other := legal.Get(i)
		if other.To() != to || other.From() == from {
			continue
		}
		if sameTypePieces.IsSet(other.From()) {
			rivals = append(rivals, other.From())
		}
	}
	if len(rivals) == 0 {
		return ""
	}

	fileClash, rankClash := false, false
	for _, sq := range rivals {
		fileClash = fileClash || sq.File() == from.File()
		rankClash = rankClash || sq.Rank() == from.Rank()
	}

	switch {
	case !fileClash:
		return string('a' + byte(from.File()))
	case !rankClash:
		return string('1' + byte(from.Rank()))
	default:
		return from.String()
	}
}

// ParseSAN parses s (Standard Algebraic Notation, optionally with a
// trailing +/# marker) into the legal move it names in pos.
func ParseSAN(s string, pos *Position) (Move, error) {
	s = strings.TrimSpace(s)

	switch s {
	case "O-O", "0-0":
		if pos.SideToMove == White {
			return NewCastling(E1, G1), nil
		}
		return NewCastling(E8, G8), nil
	case "O-O-O", "0-0-0":
		if pos.SideToMove == White {
			return NewCastling(E1, C1), nil
		}
		return NewCastling(E8, C8), nil
	}

	s = strings.TrimSuffix(s, "+")
	s = strings.TrimSuffix(s, "#")

	promo := NoPieceType
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		if pt, ok := promotionLetters[s[idx+1]]; ok {
			promo = pt
		}
		s = s[:idx]
	}

	isCapture := strings.Contains(s, "x")
	s = strings.ReplaceAll(s, "x", "")

	pt := Pawn
	if len(s) > 0 && s[0] >= 'A' && s[0] <= 'Z' {
		if found, ok := pieceLetterTypes[s[0]]; ok {
			pt = found
		}
		s = s[1:]
	}

	if len(s) < 2 {
		return NoMove, nil
	}
	dest, err := ParseSquare(s[len(s)-2:])
	if err != nil {
		return NoMove, err
	}
	s = s[:len(s)-2]

	disambigFile, disambigRank := -1, -1
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'h':
			disambigFile = int(c - 'a')
		case c >= '1' && c <= '8':
			disambigRank = int(c - '1')
		}
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.To() != dest {
			continue
		}
		from := m.From()
		if pos.PieceAt(from).Type() != pt {
			continue
		}
		if disambigFile >= 0 && from.File() != disambigFile {
			continue
		}
		if disambigRank >= 0 && from.Rank() != disambigRank {
			continue
		}
		if isCapture && !m.IsCapture(pos) {
			continue
		}
		if promo != NoPieceType && (!m.IsPromotion() || m.Promotion() != promo) {
			continue
		}
		return m, nil
	}

	return NoMove, nil
}

// MovesToSAN renders a sequence of moves played one after another from
// pos into their SAN strings.
func MovesToSAN(pos *Position, moves []Move) []string {
	result := make([]string, len(moves))
	cur := pos.Copy()
	for i, m := range moves {
		result[i] = m.ToSAN(cur)
		cur.MakeMove(m)
	}
	return result
}
