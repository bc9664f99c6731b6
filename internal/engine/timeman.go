package engine

import (
	"time"

	"github.com/hailam/chesscore/internal/board"
)

// UCILimits mirrors the parameters a UCI "go" command can carry.
type UCILimits struct {
	Time      [2]time.Duration // wtime, btime
	Inc       [2]time.Duration // winc, binc
	MovesToGo int              // 0 means sudden death (no fixed control point)
	MoveTime  time.Duration    // fixed time for this move, overrides the clock-based plan
	Depth     int
	Nodes     uint64
	Infinite  bool
	Ponder    bool
}

// TimeManager turns a UCI time control into a concrete optimum/maximum
// budget for the current search, and tracks elapsed wall-clock time
// against it.
type TimeManager struct {
	optimumTime time.Duration
	maximumTime time.Duration
	startTime   time.Time
}

// NewTimeManager returns a zero-value TimeManager, ready for Init.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init plans the time budget for a search starting at game ply ply, for
// the side to move us.
func (tm *TimeManager) Init(limits UCILimits, us board.Color, ply int) {
	tm.startTime = time.Now()

	if limits.MoveTime > 0 {
		tm.optimumTime = limits.MoveTime
		tm.maximumTime = limits.MoveTime
		return
	}

	if limits.Infinite || limits.Time[us] == 0 {
		tm.optimumTime = time.Hour
		tm.maximumTime = time.Hour
		return
	}

	timeLeft := limits.Time[us]
	mtg := limits.MovesToGo
	if mtg == 0 {
		mtg = estimateMovesToGo(ply)
	}

	tm.optimumTime = planOptimumTime(timeLeft, limits.Inc[us], mtg, ply)
	tm.maximumTime = planMaximumTime(tm.optimumTime, timeLeft)
}

// estimateMovesToGo guesses how many moves remain before the game likely
// ends, for a sudden-death clock with no explicit movestogo: the estimate
// shrinks as the game goes on, clamped to a sane middlegame-to-endgame
// range.
func estimateMovesToGo(ply int) int {
	mtg := 50 - ply/4
	switch {
	case mtg < 10:
		return 10
	case mtg > 50:
		return 50
	default:
		return mtg
	}
}

// planOptimumTime computes the time this move should target: an even
// share of the remaining clock plus a fraction of the increment, trimmed
// slightly in the opening to keep a buffer for the moves that follow.
func planOptimumTime(timeLeft, inc time.Duration, mtg, ply int) time.Duration {
	incDivisor := mtg / 10
	if incDivisor < 1 {
		incDivisor = 1
	}

	optimum := timeLeft/time.Duration(mtg) + inc/time.Duration(incDivisor)
	if ply < 8 {
		optimum = optimum * 85 / 100
	}
	if optimum < 10*time.Millisecond {
		optimum = 10 * time.Millisecond
	}
	return optimum
}

// planMaximumTime caps how long a single move may run: the smaller of 5x
// the optimum or 80% of what's left, itself never more than 95% of the
// remaining clock.
func planMaximumTime(optimum, timeLeft time.Duration) time.Duration {
	maximum := optimum * 5
	if fromRemaining := timeLeft * 8 / 10; fromRemaining < maximum {
		maximum = fromRemaining
	}
	if safety := timeLeft * 95 / 100; maximum > safety {
		maximum = safety
	}
	if maximum < 50*time.Millisecond {
		maximum = 50 * time.Millisecond
	}
	return maximum
}

// Elapsed returns how long the current search has been running.
func (tm *TimeManager) Elapsed() time.Duration {
	return time.Since(tm.startTime)
}

// OptimumTime returns the planned target duration for this move.
func (tm *TimeManager) OptimumTime() time.Duration {
	return tm.optimumTime
}

// MaximumTime returns the hard cap for this move.
func (tm *TimeManager) MaximumTime() time.Duration {
	return tm.maximumTime
}

// ShouldStop reports whether the search has hit its maximum time.
func (tm *TimeManager) ShouldStop() bool {
	return tm.Elapsed() >= tm.maximumTime
}

// PastOptimum reports whether the search has passed its target time.
func (tm *TimeManager) PastOptimum() bool {
	return tm.Elapsed() >= tm.optimumTime
}

// AdjustForStability shrinks the optimum-time budget when the best move
// has held steady for stability consecutive iterative-deepening depths,
// letting the search finish early instead of re-confirming the same move.
func (tm *TimeManager) AdjustForStability(stability int) {
	switch {
	case stability >= 6:
		tm.optimumTime = tm.optimumTime * 40 / 100
	case stability >= 4:
		tm.optimumTime = tm.optimumTime * 60 / 100
	case stability >= 2:
		tm.optimumTime = tm.optimumTime * 80 / 100
	}
}

// AdjustForInstability grows the optimum-time budget, up to the maximum,
// when the best move has changed changes times across recent depths.
func (tm *TimeManager) AdjustForInstability(changes int) {
	switch {
	case changes >= 4:
		tm.optimumTime = tm.optimumTime * 200 / 100
	case changes >= 2:
		tm.optimumTime = tm.optimumTime * 150 / 100
	default:
		return
	}
	if tm.optimumTime > tm.maximumTime {
		tm.optimumTime = tm.maximumTime
	}
}
