package board

import "strings"

// Color distinguishes the two sides.
type Color uint8

const (
	White Color = iota
	Black
	NoColor Color = 2
)

// Other returns the opposing color.
func (c Color) Other() Color {
	return c ^ 1
}

var colorNames = [2]string{"White", "Black"}

func (c Color) String() string {
	if c >= NoColor {
		return "NoColor"
	}
	return colorNames[c]
}

// PieceType identifies a kind of piece independent of color.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType PieceType = 6
)

var pieceTypeNames = [6]string{"Pawn", "Knight", "Bishop", "Rook", "Queen", "King"}

func (pt PieceType) String() string {
	if pt >= NoPieceType {
		return "None"
	}
	return pieceTypeNames[pt]
}

// pieceTypeChars holds the lowercase FEN letter for each PieceType, in
// PieceType order.
const pieceTypeChars = "pnbrqk"

// Char returns the lowercase FEN letter for the piece type, or a space
// if pt isn't one of the six real piece types.
func (pt PieceType) Char() byte {
	if pt >= NoPieceType {
		return ' '
	}
	return pieceTypeChars[pt]
}

// PieceValue gives each PieceType's material worth in centipawns, indexed
// by PieceType; the trailing zero covers NoPieceType.
var PieceValue = [7]int{100, 320, 330, 500, 900, 20000, 0}

// Piece packs a PieceType and Color into one small value: pieceType +
// color*6, so White's six pieces occupy 0-5 and Black's occupy 6-11.
// internal/engine relies on this contiguous 0-11 range to index arrays
// directly by Piece, so the encoding must not change.
type Piece uint8

const (
	WhitePawn Piece = iota
	WhiteKnight
	WhiteBishop
	WhiteRook
	WhiteQueen
	WhiteKing
	BlackPawn
	BlackKnight
	BlackBishop
	BlackRook
	BlackQueen
	BlackKing
	NoPiece
)

// pieceChars holds the FEN letter for each Piece in constant order above:
// uppercase for White's pieces, lowercase for Black's.
const pieceChars = "PNBRQKpnbrqk"

// NewPiece builds the Piece for a type and color, or NoPiece if either
// input is out of range.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(c)*6 + Piece(pt)
}

// Type extracts the PieceType packed into p.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color extracts the Color packed into p.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// String returns p's FEN letter, or a single space for NoPiece.
func (p Piece) String() string {
	if p >= NoPiece {
		return " "
	}
	return string(pieceChars[p])
}

// PieceFromChar converts a FEN piece letter to a Piece, or NoPiece if c
// isn't one of the twelve recognized letters.
func PieceFromChar(c byte) Piece {
	idx := strings.IndexByte(pieceChars, c)
	if idx < 0 {
		return NoPiece
	}
	return Piece(idx)
}

// Value returns p's material worth in centipawns.
func (p Piece) Value() int {
	return PieceValue[p.Type()]
}
