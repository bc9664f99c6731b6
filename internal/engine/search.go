package engine

import (
	"sync/atomic"
	"time"

	"github.com/hailam/chesscore/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// PVTable stores the principal variation discovered at each ply.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Result is the outcome of a completed (or interrupted) iterative-deepening
// iteration, delivered via Callbacks.
type Result struct {
	Duration      time.Duration
	Depth         int
	Score         int
	BestMove      board.Move
	NodesSearched uint64
}

// Options configures a single search. Position is copied by Context.Run, so
// no aliasing occurs between the caller's position and the search tree.
type Options struct {
	Position      *board.Position
	Depth         int           // maximum plies; 0 means unbounded (MaxPly-1)
	SearchTime    time.Duration // 0 means no wall-clock limit
	MaxNodes      uint64        // 0 means no node budget
	MovesToSearch []board.Move  // empty means all legal root moves
}

// Callbacks are invoked by the searcher as an iterative-deepening search
// progresses.
type Callbacks struct {
	OnIteration      func(Result)
	OnSearchComplete func(Result)
}

// interrupter captures a search's start time and decides when cooperative
// cancellation should kick in: either the caller set exit, or the wall-clock
// budget ran out.
type interrupter struct {
	start time.Time
	limit time.Duration
	exit  *atomic.Bool
}

func newInterrupter(limit time.Duration, exit *atomic.Bool) *interrupter {
	return &interrupter{start: time.Now(), limit: limit, exit: exit}
}

func (in *interrupter) shouldExit() bool {
	if in.exit.Load() {
		return true
	}
	return in.limit > 0 && time.Since(in.start) >= in.limit
}

// Context owns everything a search needs across its lifetime: options,
// callbacks, the transposition table, and the two atomic flags that make
// cancellation cooperative rather than preemptive. At most one search runs
// per Context; the front-end must not touch the table or options while
// Active() is true.
type Context struct {
	options   Options
	callbacks Callbacks
	tt        *TranspositionTable
	orderer   *MoveOrderer
	pawnTable *PawnTable

	exit   atomic.Bool
	active atomic.Bool

	nodes       uint64
	pv          PVTable
	interrupter *interrupter
	lastResult  Result
}

// NewContext creates a Context backed by the given transposition table.
func NewContext(tt *TranspositionTable) *Context {
	return &Context{
		tt:        tt,
		orderer:   NewMoveOrderer(),
		pawnTable: NewPawnTable(4),
	}
}

// evaluate is the static evaluation used throughout the search, routed
// through the pawn hash cache.
func (c *Context) evaluate(pos *board.Position) int {
	return EvaluateWithPawnTable(pos, c.pawnTable)
}

// Configure installs Options and Callbacks for the next search. Forbidden
// while a search is active.
func (c *Context) Configure(opts Options, cb Callbacks) {
	c.options = opts
	c.callbacks = cb
}

// Abort sets the exit flag. Non-blocking; the in-flight search notices it at
// its next cooperative check.
func (c *Context) Abort() {
	c.exit.Store(true)
}

// Active reports whether the searcher is currently working.
func (c *Context) Active() bool {
	return c.active.Load()
}

// Nodes returns the number of nodes visited by the most recent (or current)
// search.
func (c *Context) Nodes() uint64 {
	return c.nodes
}

// TranspositionTable exposes the owned table, e.g. for HashFull reporting.
func (c *Context) TranspositionTable() *TranspositionTable {
	return c.tt
}

// GetPV returns the principal variation discovered at the root of the most
// recent search.
func (c *Context) GetPV() []board.Move {
	pv := make([]board.Move, c.pv.length[0])
	for i := 0; i < c.pv.length[0]; i++ {
		pv[i] = c.pv.moves[0][i]
	}
	return pv
}

// Run performs the iterative-deepening search described by Options, invoking
// Callbacks as it progresses, and returns the final Result. It is synchronous;
// the search-thread wrapper in worker.go is what runs it off the caller's
// goroutine.
func (c *Context) Run() Result {
	c.active.Store(true)
	defer c.active.Store(false)

	c.exit.Store(false)
	c.nodes = 0
	c.orderer.Clear()

	pos := c.options.Position.Copy()
	maxDepth := c.options.Depth
	if maxDepth <= 0 || maxDepth > MaxPly-1 {
		maxDepth = MaxPly - 1
	}

	c.interrupter = newInterrupter(c.options.SearchTime, &c.exit)
	start := time.Now()

	var result Result

	for depth := 1; depth <= maxDepth; depth++ {
		score := c.alphaBeta(pos, depth, 0, -Infinity, Infinity)

		if c.interrupter.shouldExit() && result.BestMove != board.NoMove {
			break
		}

		bestMove := board.NoMove
		if c.pv.length[0] > 0 {
			bestMove = c.pv.moves[0][0]
		} else if result.BestMove != board.NoMove {
			bestMove = result.BestMove
		}

		result = Result{
			Duration:      time.Since(start),
			Depth:         depth,
			Score:         score,
			BestMove:      bestMove,
			NodesSearched: c.nodes,
		}

		if c.callbacks.OnIteration != nil {
			c.callbacks.OnIteration(result)
		}

		if c.interrupter.shouldExit() {
			break
		}
	}

	if c.callbacks.OnSearchComplete != nil {
		c.callbacks.OnSearchComplete(result)
	}

	c.lastResult = result
	return result
}

// LastResult returns the Result produced by the most recently completed Run.
func (c *Context) LastResult() Result {
	return c.lastResult
}

// nodesExceeded reports whether the soft maxNodes budget has been used up.
func (c *Context) nodesExceeded() bool {
	return c.options.MaxNodes > 0 && c.nodes >= c.options.MaxNodes
}

// restrictRootMoves filters the legal root moves down to options.MovesToSearch,
// when that list is non-empty.
func restrictRootMoves(moves *board.MoveList, allowed []board.Move) *board.MoveList {
	if len(allowed) == 0 {
		return moves
	}
	filtered := &board.MoveList{}
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		for _, a := range allowed {
			if a == m {
				filtered.Add(m)
				break
			}
		}
	}
	return filtered
}

// alphaBeta implements alphaBeta(pos, depth, plyFromRoot, α, β) → score with
// fail-hard cutoffs: a beta cutoff always returns beta, never the (possibly
// higher) score that caused it.
func (c *Context) alphaBeta(pos *board.Position, depth, ply, alpha, beta int) int {
	c.nodes++
	c.pv.length[ply] = ply

	if c.interrupter.shouldExit() || c.nodesExceeded() {
		return alpha
	}

	// 1. TT probe.
	if v, ok := c.tt.ProbeEval(pos.Hash, depth, ply, alpha, beta); ok {
		return v
	}

	// 2. Draw.
	if ply > 0 && pos.IsDraw() {
		c.tt.Store(pos.Hash, depth, ply, 0, TTExact, board.NoMove)
		return 0
	}

	// 4. Mate-distance pruning.
	mateDist := MateScore - ply
	if alpha >= mateDist {
		return mateDist
	}
	if beta <= -mateDist {
		return -mateDist
	}
	if alpha < -mateDist {
		alpha = -mateDist
	}
	if beta > mateDist {
		beta = mateDist
	}

	// 3. Generate moves; terminal scores.
	moves := pos.GenerateLegalMoves()
	if ply == 0 {
		moves = restrictRootMoves(moves, c.options.MovesToSearch)
	}

	if moves.Len() == 0 {
		if pos.InCheck() {
			score := -(MateScore - ply)
			c.tt.Store(pos.Hash, depth, ply, score, TTExact, board.NoMove)
			return score
		}
		return 0
	}

	if depth <= 0 {
		return c.quiescence(pos, ply, alpha, beta)
	}

	// 5. Order moves: TT move first, then MVV-LVA/killers/history/castling/etc.
	var ttMove board.Move
	if mv, ok := c.tt.ProbeMove(pos.Hash); ok {
		ttMove = mv
	}
	scores := c.orderer.ScoreMoves(pos, moves, ply, ttMove)

	bestMove := board.NoMove
	kind := TTUpperBound

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)
		isCapture := move.IsCapture(pos)

		child := board.AfterMove(pos, move)

		var score int
		if depth > 1 {
			score = -c.alphaBeta(child, depth-1, ply+1, -beta, -alpha)
		} else {
			score = -c.quiescence(child, ply+1, -beta, -alpha)
		}

		if score >= beta {
			c.tt.Store(pos.Hash, depth, ply, beta, TTLowerBound, move)
			if !isCapture {
				c.orderer.UpdateKillers(move, ply)
				c.orderer.UpdateHistory(move, depth, true)
			}
			return beta
		}

		if score > alpha {
			alpha = score
			bestMove = move
			kind = TTExact

			c.pv.moves[ply][ply] = move
			for j := ply + 1; j < c.pv.length[ply+1]; j++ {
				c.pv.moves[ply][j] = c.pv.moves[ply+1][j]
			}
			c.pv.length[ply] = c.pv.length[ply+1]
		}

		if c.interrupter.shouldExit() {
			break
		}
	}

	// 7. Store and return.
	c.tt.Store(pos.Hash, depth, ply, alpha, kind, bestMove)
	return alpha
}

// quiescence searches only captures, to avoid the horizon effect, with
// unlimited depth but a hard ply ceiling. Every stored record uses the
// depth-1 sentinel so any normal search to depth ≥ 2 can overwrite it.
func (c *Context) quiescence(pos *board.Position, ply, alpha, beta int) int {
	c.nodes++
	if ply < MaxPly {
		c.pv.length[ply] = ply
	}

	if c.interrupter.shouldExit() || c.nodesExceeded() || ply >= MaxPly {
		return alpha
	}

	if pos.IsDraw() {
		return 0
	}
	if pos.IsCheckmate() {
		return -(MateScore - ply)
	}

	standPat := c.evaluate(pos)
	if standPat >= beta {
		c.tt.Store(pos.Hash, 1, ply, beta, TTLowerBound, board.NoMove)
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	// Delta pruning: if even the best plausible gain can't reach alpha, stop.
	if standPat+QueenValue < alpha {
		return alpha
	}

	moves := pos.GenerateCaptures()
	scores := c.orderer.ScoreMoves(pos, moves, ply, board.NoMove)

	bestMove := board.NoMove
	kind := TTUpperBound
	inCheck := pos.InCheck()

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		if !inCheck {
			var captureValue int
			if move.IsEnPassant() {
				captureValue = PawnValue
			} else if cp := pos.PieceAt(move.To()); cp != board.NoPiece {
				captureValue = pieceValues[cp.Type()]
			}
			if move.IsPromotion() {
				captureValue += QueenValue - PawnValue
			}
			if standPat+captureValue+200 < alpha {
				continue
			}

			// Skip captures that lose material outright.
			if SEE(pos, move) < 0 {
				continue
			}
		}

		child := board.AfterMove(pos, move)
		score := -c.quiescence(child, ply+1, -beta, -alpha)

		if score >= beta {
			c.tt.Store(pos.Hash, 1, ply, beta, TTLowerBound, move)
			return beta
		}
		if score > alpha {
			alpha = score
			bestMove = move
			kind = TTExact
		}

		if c.interrupter.shouldExit() {
			break
		}
	}

	c.tt.Store(pos.Hash, 1, ply, alpha, kind, bestMove)
	return alpha
}
