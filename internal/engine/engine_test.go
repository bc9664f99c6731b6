package engine

import (
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

func TestSearchBasic(t *testing.T) {
	pos := board.NewPosition()
	eng := NewEngine(16)

	move, _ := eng.Search(pos, SearchLimits{Depth: 4, MoveTime: 2 * time.Second})
	if move == board.NoMove {
		t.Error("Search returned NoMove for starting position")
	}
	t.Logf("Best move: %s", move.String())
}

// TestSearchFindsMateInOne checks that the searcher finds a forced mate when
// one is on the board, at a depth just deep enough to see it.
func TestSearchFindsMateInOne(t *testing.T) {
	pos, err := board.ParseFEN("6k1/5ppp/8/8/8/8/5PPP/R5K1 w - - 0 1")
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}
	eng := NewEngine(16)

	move, score := eng.Search(pos, SearchLimits{Depth: 2})
	want, err := board.ParseMove("a1a8", pos)
	if err != nil {
		t.Fatalf("parsing expected move: %v", err)
	}
	if move != want {
		t.Errorf("bestMove = %s, want %s", move.String(), want.String())
	}
	if score < MateScore-2 {
		t.Errorf("score = %d, want >= MateScore-2 (%d)", score, MateScore-2)
	}
}

// TestSearchSequentialPositions exercises the engine across several
// consecutive searches, as a UCI front-end would reuse one Engine across a
// game's worth of "go" commands.
func TestSearchSequentialPositions(t *testing.T) {
	eng := NewEngine(16)

	positions := []string{
		board.StartFEN,
		"r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3", // Italian Game
		"8/8/8/4k3/8/4K3/4P3/8 w - - 0 1",                                  // KP endgame
	}

	for i, fen := range positions {
		pos, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatalf("Failed to parse position %d: %v", i, err)
		}

		move, _ := eng.Search(pos, SearchLimits{Depth: 5, MoveTime: 300 * time.Millisecond})
		if move == board.NoMove && pos.HasLegalMoves() {
			t.Errorf("Position %d: Search returned NoMove despite legal moves", i)
		} else {
			t.Logf("Position %d: best move = %s", i, move.String())
		}
	}
}

func TestEngineClearResetsHash(t *testing.T) {
	eng := NewEngine(16)
	pos := board.NewPosition()

	eng.Search(pos, SearchLimits{Depth: 6, MoveTime: 200 * time.Millisecond})
	if eng.thread.Context().TranspositionTable().HashFull() == 0 {
		t.Skip("search completed too fast to populate the table meaningfully")
	}

	eng.Clear()
	if hf := eng.thread.Context().TranspositionTable().HashFull(); hf != 0 {
		t.Errorf("HashFull after Clear = %d, want 0", hf)
	}
}

func TestPawnHashTable(t *testing.T) {
	pt := NewPawnTable(1) // 1MB
	pos := board.NewPosition()

	_, _, found := pt.Probe(pos.PawnKey)
	if found {
		t.Error("Expected cache miss on first probe")
	}

	pt.Store(pos.PawnKey, -15, -20)

	mg, eg, found := pt.Probe(pos.PawnKey)
	if !found {
		t.Error("Expected cache hit after store")
	}
	if mg != -15 || eg != -20 {
		t.Errorf("Wrong values: got mg=%d, eg=%d, want -15, -20", mg, eg)
	}

	oldKey := pos.PawnKey
	after := board.AfterMove(pos, board.NewMove(board.E2, board.E4))
	if after.PawnKey == oldKey {
		t.Error("PawnKey should change when a pawn moves")
	}
	if pos.PawnKey != oldKey {
		t.Error("the original position's PawnKey should be untouched by AfterMove")
	}
}
