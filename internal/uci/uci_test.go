package uci

import (
	"testing"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/engine"
)

func newTestUCI(t *testing.T) *UCI {
	t.Helper()
	return New(engine.NewEngine(1), nil)
}

func TestHandlePositionStartpos(t *testing.T) {
	u := newTestUCI(t)
	u.handlePosition([]string{"startpos"})

	if u.position.Hash != board.NewPosition().Hash {
		t.Errorf("expected startpos hash, got a different position")
	}
}

func TestHandlePositionStartposWithMoves(t *testing.T) {
	u := newTestUCI(t)
	u.handlePosition([]string{"startpos", "moves", "e2e4", "e7e5"})

	if u.position.SideToMove != board.White {
		t.Errorf("after two half-moves it should be White to move again, got %v", u.position.SideToMove)
	}
	if u.position.PieceAt(board.E4) == board.NoPiece {
		t.Error("expected a white pawn on e4 after e2e4")
	}
}

func TestHandlePositionFEN(t *testing.T) {
	u := newTestUCI(t)
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R b KQkq - 3 3"
	u.handlePosition([]string{"fen", "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R", "b", "KQkq", "-", "3", "3"})

	want, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("parsing FEN: %v", err)
	}
	if u.position.Hash != want.Hash {
		t.Error("position after 'position fen ...' does not match the expected FEN")
	}
}

func TestHandlePositionInvalidMoveLeavesPositionUnchanged(t *testing.T) {
	u := newTestUCI(t)
	u.handlePosition([]string{"startpos", "moves", "e2e5"}) // illegal pawn jump

	if u.position.Hash != board.NewPosition().Hash {
		t.Error("an invalid move in the moves list should leave the position untouched")
	}
}

func TestParseGoLimits(t *testing.T) {
	u := newTestUCI(t)
	limits := u.parseGoLimits([]string{
		"wtime", "60000", "btime", "50000", "winc", "1000", "binc", "500",
		"movestogo", "30", "depth", "10",
	})

	if limits.Time[board.White] != 60*time.Second {
		t.Errorf("wtime = %v, want 60s", limits.Time[board.White])
	}
	if limits.Time[board.Black] != 50*time.Second {
		t.Errorf("btime = %v, want 50s", limits.Time[board.Black])
	}
	if limits.Inc[board.White] != time.Second {
		t.Errorf("winc = %v, want 1s", limits.Inc[board.White])
	}
	if limits.MovesToGo != 30 {
		t.Errorf("movestogo = %d, want 30", limits.MovesToGo)
	}
	if limits.Depth != 10 {
		t.Errorf("depth = %d, want 10", limits.Depth)
	}
}

func TestParseGoLimitsInfiniteAndMoveTime(t *testing.T) {
	u := newTestUCI(t)

	infinite := u.parseGoLimits([]string{"infinite"})
	if !infinite.Infinite {
		t.Error("expected Infinite = true")
	}

	timed := u.parseGoLimits([]string{"movetime", "1500"})
	if timed.MoveTime != 1500*time.Millisecond {
		t.Errorf("movetime = %v, want 1.5s", timed.MoveTime)
	}
}

func TestHandleSetOptionHash(t *testing.T) {
	u := newTestUCI(t)
	// Resizing must not panic, and the engine must still search afterward.
	u.handleSetOption([]string{"name", "Hash", "value", "32"})

	move, _ := u.engine.Search(board.NewPosition(), engine.SearchLimits{Depth: 3, MoveTime: time.Second})
	if move == board.NoMove {
		t.Error("expected a move after resizing Hash")
	}
}

func TestHandleSetOptionClearHash(t *testing.T) {
	u := newTestUCI(t)
	u.engine.Search(board.NewPosition(), engine.SearchLimits{Depth: 3, MoveTime: time.Second})
	u.handleSetOption([]string{"name", "Clear", "Hash"}) // must not panic
}

func TestParseMoveInvalidReturnsNoMove(t *testing.T) {
	u := newTestUCI(t)
	if m := u.parseMove("zz99"); m != board.NoMove {
		t.Errorf("parseMove(garbage) = %v, want NoMove", m)
	}
}
