package engine

import (
	"log"
	"time"

	"github.com/hailam/chesscore/internal/board"
	"github.com/hailam/chesscore/internal/book"
)

// SearchInfo reports progress for a single iterative-deepening iteration, in
// a shape convenient for a UCI front-end's "info" line.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int
}

// SearchLimits specifies constraints on a single search.
type SearchLimits struct {
	Depth    int           // maximum depth (0 = no limit)
	Nodes    uint64        // maximum nodes (0 = no limit)
	MoveTime time.Duration // time for this move (0 = no limit)
	Infinite bool          // search until stopped
}

// Engine wires together a single search thread, an optional opening book,
// and the UCI-facing option surface (Hash, OwnBook, BookFile). There is no
// worker pool: one Context, one background goroutine, per the search-thread
// contract in worker.go.
type Engine struct {
	thread *SearchThread

	book    *book.Book
	ownBook bool

	// OnInfo is invoked once per completed iterative-deepening depth.
	OnInfo func(SearchInfo)
}

// NewEngine creates a chess engine with the given transposition table size in MB.
func NewEngine(ttSizeMB int) *Engine {
	return &Engine{
		thread: NewSearchThread(NewTranspositionTable(ttSizeMB)),
	}
}

// SetHashSizeMB resizes the transposition table. Equivalent to destroying and
// recreating the search thread, since TranspositionTable has no in-place
// resize.
func (e *Engine) SetHashSizeMB(mb int) {
	e.thread.Shutdown()
	e.thread = NewSearchThread(NewTranspositionTable(mb))
}

// LoadBook loads an opening book from a Polyglot file.
func (e *Engine) LoadBook(filename string) error {
	b, err := book.LoadPolyglot(filename)
	if err != nil {
		return err
	}
	e.book = b
	return nil
}

// SetOwnBook toggles whether the engine consults its opening book.
func (e *Engine) SetOwnBook(use bool) {
	e.ownBook = use
}

// OwnBook reports whether book moves are currently being offered.
func (e *Engine) OwnBook() bool {
	return e.ownBook
}

// HasBook returns true if an opening book is loaded.
func (e *Engine) HasBook() bool {
	return e.book != nil
}

// Search finds the best move for the given position, honoring limits. It
// blocks until the search settles (either limits are exhausted or Stop is
// called from another goroutine).
func (e *Engine) Search(pos *board.Position, limits SearchLimits) (board.Move, int) {
	return e.SearchWithUCILimits(pos, toUCILimits(limits), pos.FullMoveNumber*2)
}

// SearchWithUCILimits finds the best move using UCI time controls (wtime,
// btime, winc, binc), computing the per-move time budget via TimeManager.
func (e *Engine) SearchWithUCILimits(pos *board.Position, limits UCILimits, ply int) (board.Move, int) {
	if e.ownBook && e.book != nil {
		if move, ok := e.book.Probe(pos); ok {
			log.Printf("[Engine] Book move: %s", move.String())
			return move, 0
		}
	}

	var searchTime time.Duration
	if limits.MoveTime > 0 {
		searchTime = limits.MoveTime
	} else if !limits.Infinite && (limits.Time[pos.SideToMove] > 0) {
		tm := NewTimeManager()
		tm.Init(limits, pos.SideToMove, ply)
		searchTime = tm.MaximumTime()
	}

	depth := limits.Depth
	if depth <= 0 {
		depth = MaxPly - 1
	}

	opts := Options{
		Position:   pos,
		Depth:      depth,
		SearchTime: searchTime,
		MaxNodes:   limits.Nodes,
	}

	cb := Callbacks{
		OnIteration: func(r Result) {
			if e.OnInfo != nil {
				e.OnInfo(SearchInfo{
					Depth:    r.Depth,
					Score:    r.Score,
					Nodes:    r.NodesSearched,
					Time:     r.Duration,
					PV:       e.thread.Context().GetPV(),
					HashFull: e.thread.Context().TranspositionTable().HashFull(),
				})
			}
		},
	}

	e.thread.Start(opts, cb)
	e.thread.Wait()

	result := e.thread.Context().LastResult()
	return result.BestMove, result.Score
}

// toUCILimits adapts plain SearchLimits to the UCILimits shape expected by
// SearchWithUCILimits, when no clock-based time control is in play.
func toUCILimits(limits SearchLimits) UCILimits {
	return UCILimits{
		Depth:    limits.Depth,
		Nodes:    limits.Nodes,
		MoveTime: limits.MoveTime,
		Infinite: limits.Infinite,
	}
}

// Stop aborts the in-flight search, if any.
func (e *Engine) Stop() {
	e.thread.Abort()
}

// Clear stops any running search and clears the transposition table between
// games; move-ordering tables are not cleared here.
func (e *Engine) Clear() {
	e.thread.Reset()
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		child := board.AfterMove(pos, moves.Get(i))
		nodes += e.Perft(child, depth-1)
	}
	return nodes
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return Evaluate(pos)
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if score > MateScore-100 {
		mateIn := (MateScore - score + 1) / 2
		return "Mate in " + itoa(mateIn)
	}
	if score < -MateScore+100 {
		mateIn := (MateScore + score + 1) / 2
		return "Mated in " + itoa(mateIn)
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	pawns := score / 100
	centipawns := score % 100

	return sign + itoa(pawns) + "." + itoa(centipawns)
}

// itoa is a minimal integer-to-string helper (avoids pulling in fmt/strconv
// for this one call site).
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	s := ""
	for n > 0 {
		s = string('0'+byte(n%10)) + s
		n /= 10
	}
	return s
}
