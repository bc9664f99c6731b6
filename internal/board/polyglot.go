package board

// Zobrist keys for the Polyglot-style book hash, kept separate from the
// engine's own zobristPiece table. They follow Polyglot's layout (one flat
// index per piece kind, four castling keys, eight en passant file keys, one
// turn key) but are generated from this package's own seed rather than
// taken from Polyglot's published key table, so keys computed here do not
// match books built by other Polyglot tools.
var (
	polyglotPieces     [12][64]uint64
	polyglotCastling   [4]uint64 // White-O-O, White-O-O-O, Black-O-O, Black-O-O-O
	polyglotEnPassant  [8]uint64
	polyglotSideToMove uint64
)

func init() {
	initPolyglotKeys()
}

// polyglotPieceIndex maps [Color][PieceType] to this package's flat piece
// index: black pawn..king occupy 0-5, white pawn..king occupy 6-11.
var polyglotPieceIndex = [2][6]int{
	Black: {0, 1, 2, 3, 4, 5},
	White: {6, 7, 8, 9, 10, 11},
}

var polyglotCastlingBits = [4]CastlingRights{
	WhiteKingSideCastle, WhiteQueenSideCastle,
	BlackKingSideCastle, BlackQueenSideCastle,
}

// PolyglotHash computes the position's key under a Polyglot-style hashing
// scheme (the keys above), for probing and building .bin format books with
// this package.
func (p *Position) PolyglotHash() uint64 {
	var hash uint64

	for color := White; color <= Black; color++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[color][pt]
			for bb != 0 {
				hash ^= polyglotPieces[polyglotPieceIndex[color][pt]][bb.PopLSB()]
			}
		}
	}

	for i, bit := range polyglotCastlingBits {
		if p.CastlingRights&bit != 0 {
			hash ^= polyglotCastling[i]
		}
	}

	if p.EnPassant != NoSquare && p.hasEnPassantCapturer() {
		hash ^= polyglotEnPassant[p.EnPassant.File()]
	}

	if p.SideToMove == White {
		hash ^= polyglotSideToMove
	}

	return hash
}

// hasEnPassantCapturer reports whether a pawn of the side to move actually
// sits beside the en passant square; Polyglot only mixes the en passant
// key in when a capture is truly available, not merely legal-looking.
func (p *Position) hasEnPassantCapturer() bool {
	file := p.EnPassant.File()
	capturerRank := 4
	pawns := p.Pieces[White][Pawn]
	if p.SideToMove != White {
		capturerRank = 3
		pawns = p.Pieces[Black][Pawn]
	}

	if file > 0 && pawns.IsSet(NewSquare(file-1, capturerRank)) {
		return true
	}
	if file < 7 && pawns.IsSet(NewSquare(file+1, capturerRank)) {
		return true
	}
	return false
}

// initPolyglotKeys fills the polyglot key tables from a fixed seed,
// reusing the same splitmix64 generator the engine's own Zobrist keys use.
func initPolyglotKeys() {
	rng := splitmix64{state: 0x37B4A4B3F0D1C0D0}

	for piece := 0; piece < 12; piece++ {
		for sq := 0; sq < 64; sq++ {
			polyglotPieces[piece][sq] = rng.next()
		}
	}
	for i := range polyglotCastling {
		polyglotCastling[i] = rng.next()
	}
	for i := range polyglotEnPassant {
		polyglotEnPassant[i] = rng.next()
	}
	polyglotSideToMove = rng.next()
}
