package board

import "testing"

// TestScholarsMate plays the classic four-move mate and checks the final
// position is checkmate with white to deliver it.
func TestScholarsMate(t *testing.T) {
	pos := NewPosition()
	moves := []string{"e2e4", "e7e5", "f1c4", "b8c6", "d1h5", "g8f6", "h5f7"}

	for _, ms := range moves {
		m, err := ParseMove(ms, pos)
		if err != nil {
			t.Fatalf("parsing %s: %v", ms, err)
		}
		if !pos.IsLegal(m) {
			t.Fatalf("move %s not legal in %s", ms, pos.ToFEN())
		}
		pos.MakeMove(m)
	}

	if !pos.InCheck() {
		t.Error("expected check after Qxf7#")
	}
	if !pos.IsCheckmate() {
		t.Error("expected checkmate after Qxf7#")
	}
}

// TestFoolsMate plays the fastest possible mate and checks the result.
func TestFoolsMate(t *testing.T) {
	pos := NewPosition()
	moves := []string{"f2f3", "e7e5", "g2g4", "d8h4"}

	for _, ms := range moves {
		m, err := ParseMove(ms, pos)
		if err != nil {
			t.Fatalf("parsing %s: %v", ms, err)
		}
		pos.MakeMove(m)
	}

	if !pos.IsCheckmate() {
		t.Error("expected checkmate after Qh4#")
	}
}

// TestFiftyMoveDraw constructs a position at the fifty-move threshold and
// checks IsDraw reports true even with legal moves available.
func TestFiftyMoveDraw(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/8/4K2R w K - 100 60")
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}
	if !pos.HasLegalMoves() {
		t.Fatal("expected at least one legal move")
	}
	if !pos.IsDraw() {
		t.Error("expected IsDraw() = true at halfmove clock 100")
	}
}

// TestThreefoldRepetition replays a shuffling sequence of knight moves back
// to the starting position three times and checks repetition is detected.
func TestThreefoldRepetition(t *testing.T) {
	pos := NewPosition()
	moves := []string{"g1f3", "g8f6", "f3g1", "f6g8", "g1f3", "g8f6", "f3g1", "f6g8"}

	for _, ms := range moves {
		m, err := ParseMove(ms, pos)
		if err != nil {
			t.Fatalf("parsing %s: %v", ms, err)
		}
		pos.MakeMove(m)
	}

	if !pos.IsThreefoldRepetition() {
		t.Error("expected threefold repetition after shuffling back to the start position three times")
	}
}
