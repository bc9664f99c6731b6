package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// Move ordering score bands. Buckets are spaced widely apart so a bonus
// from one heuristic (e.g. capture history) can nudge a move without
// crossing into the next band.
const (
	TTMoveScore         = 10000000
	GoodCaptureBase     = 1000000
	KillerScore1        = 900000
	KillerScore2        = 800000
	BadCaptureBase      = -100000
	CastlingBonus       = 5000
	PawnAttackedPenalty = 3000

	historyMax = 400000
)

// mvvLva holds Most-Valuable-Victim/Least-Valuable-Attacker scores,
// indexed [victim][attacker]: each victim row is 10 above the one before
// (pawn 15, knight 25, ... queen 55) and, within a row, a cheaper attacker
// scores higher (knight and bishop tie), biasing capture ordering toward
// taking the biggest piece with the smallest one. The King row is zero
// since it's never a capture victim.
var mvvLva = [6][6]int{
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// MoveOrderer accumulates the heuristics used to sort each node's move
// list so the search explores the most promising moves first.
type MoveOrderer struct {
	killers [MaxPly][2]board.Move // quiet moves that caused a beta cutoff at this ply
	history [64][64]int           // [from][to]

	counterMoves       [12][64]board.Move       // [piece][to] -> the move that refuted it last time
	captureHistory     [12][64][6]int           // [attackerPiece][to][victimType]
	countermoveHistory [12][64][12][64]int       // [prevPiece][prevTo][movePiece][moveTo]
}

// NewMoveOrderer returns a zero-value MoveOrderer, ready to use.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets killers and counter-moves and ages (halves) the history
// tables for a fresh search, rather than zeroing them outright, so
// knowledge from the previous search still weighs in lightly.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for i := range mo.counterMoves {
		for j := range mo.counterMoves[i] {
			mo.counterMoves[i][j] = board.NoMove
		}
	}

	halveInPlace(mo.history[:])
	mo.scaleCaptureHistory()
	mo.scaleCountermoveHistory()
}

// halveInPlace divides every history score by 2, the aging step applied
// between searches to keep old evidence from dominating forever without
// discarding it entirely.
func halveInPlace(rows [][64]int) {
	for i := range rows {
		for j := range rows[i] {
			rows[i][j] /= 2
		}
	}
}

// ScoreMoves assigns each move in moves an ordering score.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, ttMove board.Move) []int {
	scores := make([]int, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		scores[i] = mo.scoreMove(pos, moves.Get(i), ply, ttMove)
	}
	return scores
}

// ScoreMovesWithCounter is ScoreMoves plus a counter-move bonus and a
// countermove-history bonus for quiet moves, both keyed off the move
// actually played immediately before this node.
func (mo *MoveOrderer) ScoreMovesWithCounter(pos *board.Position, moves *board.MoveList, ply int, ttMove, prevMove board.Move) []int {
	scores := make([]int, moves.Len())
	counterMove := mo.GetCounterMove(prevMove, pos)

	prevPiece := board.NoPiece
	if prevMove != board.NoMove {
		prevPiece = pos.PieceAt(prevMove.To())
	}

	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		score := mo.scoreMove(pos, move, ply, ttMove)

		if move == counterMove && score < KillerScore2 {
			score = KillerScore2 - 10000
		}

		if !move.IsCapture(pos) && !move.IsPromotion() && move != ttMove {
			movePiece := pos.PieceAt(move.From())
			score += mo.GetCountermoveHistoryScore(prevMove, prevPiece, movePiece, move.To()) / 2
		}

		scores[i] = score
	}

	return scores
}

// opponentPawnAttacks returns every square attacked by the side not to
// move's pawns, used to discourage walking a non-pawn into one.
func opponentPawnAttacks(pos *board.Position) board.Bitboard {
	them := pos.SideToMove.Other()
	pawns := pos.Pieces[them][board.Pawn]
	var attacked board.Bitboard
	for pawns != 0 {
		attacked |= board.PawnAttacks(pawns.PopLSB(), them)
	}
	return attacked
}

// scoreMove computes m's base ordering score: TT move first, then
// castling, captures (MVV-LVA plus capture history), promotions, killer
// moves, and finally plain history for everything else.
func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, ttMove board.Move) int {
	if m == ttMove {
		return TTMoveScore
	}
	if m.IsCastling() {
		return CastlingBonus
	}
	if m.IsCapture(pos) {
		return mo.scoreCapture(pos, m)
	}
	if m.IsPromotion() {
		return GoodCaptureBase - 1000 + int(m.Promotion())*100
	}
	if m == mo.killers[ply][0] {
		return KillerScore1
	}
	if m == mo.killers[ply][1] {
		return KillerScore2
	}
	return mo.scoreQuiet(pos, m)
}

// scoreCapture scores a capturing move via MVV-LVA, SEE, and capture
// history; captures that lose material by SEE despite using a cheaper
// attacker fall into the bad-capture band instead of the good one.
func (mo *MoveOrderer) scoreCapture(pos *board.Position, m board.Move) int {
	from, to := m.From(), m.To()
	attackerPiece := pos.PieceAt(from)
	if attackerPiece == board.NoPiece {
		return GoodCaptureBase
	}
	attacker := attackerPiece.Type()

	victim := board.Pawn
	if !m.IsEnPassant() {
		capturedPiece := pos.PieceAt(to)
		if capturedPiece == board.NoPiece {
			return GoodCaptureBase
		}
		victim = capturedPiece.Type()
	}
	if victim >= board.King || attacker > board.King {
		return GoodCaptureBase
	}

	base := GoodCaptureBase
	if pieceValues[attacker] > pieceValues[victim] && SEE(pos, m) < 0 {
		base = BadCaptureBase
	}

	score := base + mvvLva[victim][attacker]*1000
	score += mo.GetCaptureHistoryScore(attackerPiece, to, victim) / 4
	if pieceValues[attacker] < pieceValues[victim] {
		score += 10000
	}
	return score
}

// scoreQuiet scores a non-capture, non-promotion, non-killer move from
// plain history, penalized if it walks a non-pawn onto a square an enemy
// pawn attacks.
func (mo *MoveOrderer) scoreQuiet(pos *board.Position, m board.Move) int {
	from, to := m.From(), m.To()
	score := mo.history[from][to]
	if pos.PieceAt(from).Type() != board.Pawn && opponentPawnAttacks(pos)&board.SquareBB(to) != 0 {
		score -= PawnAttackedPenalty
	}
	return score
}

// SortMoves fully sorts moves by scores, descending, via selection sort
// (the list is short enough - typically under 40 moves - that its O(n^2)
// cost doesn't matter).
func SortMoves(moves *board.MoveList, scores []int) {
	n := moves.Len()
	for i := 0; i < n-1; i++ {
		best := i
		for j := i + 1; j < n; j++ {
			if scores[j] > scores[best] {
				best = j
			}
		}
		if best != i {
			moves.Swap(i, best)
			scores[i], scores[best] = scores[best], scores[i]
		}
	}
}

// PickMove moves the best-scoring move from [index, len) into index,
// letting callers sort lazily: only as many positions as are actually
// visited ever get selected.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers records m as a killer at ply, shifting the previous
// first killer down to second. A no-op if m is already the first killer.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// historyBonus is the depth-scaled reward/penalty applied to a history
// table cell: deeper cutoffs carry more weight since they represent a
// more thoroughly searched refutation.
func historyBonus(depth int) int {
	return depth * depth
}

// UpdateHistory adjusts the plain history score for a from-to move,
// rewarding it on a cutoff and penalizing it otherwise, clamped to
// +-historyMax and halved everywhere once it overflows that band.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int, isGood bool) {
	from, to := m.From(), m.To()
	cell := &mo.history[from][to]
	if applyBonus(cell, historyBonus(depth), isGood) {
		halveInPlace(mo.history[:])
	}
}

// applyBonus adds (or subtracts) bonus to *cell, clamps it at -historyMax
// on the negative side, and reports whether it rose above historyMax (the
// positive side is not clamped) so the whole table should be aged down.
func applyBonus(cell *int, bonus int, isGood bool) (overflowed bool) {
	if isGood {
		*cell += bonus
		if *cell > historyMax {
			return true
		}
		return false
	}
	*cell -= bonus
	if *cell < -historyMax {
		*cell = -historyMax
	}
	return false
}

// UpdateCounterMove records counterMove as the reply that refuted
// prevMove, keyed by the piece that made prevMove and its destination.
func (mo *MoveOrderer) UpdateCounterMove(prevMove, counterMove board.Move, pos *board.Position) {
	if prevMove == board.NoMove {
		return
	}
	piece := pos.PieceAt(prevMove.To())
	if piece == board.NoPiece {
		return
	}
	mo.counterMoves[piece][prevMove.To()] = counterMove
}

// GetCounterMove returns the recorded reply to prevMove, or NoMove if
// none is recorded.
func (mo *MoveOrderer) GetCounterMove(prevMove board.Move, pos *board.Position) board.Move {
	if prevMove == board.NoMove {
		return board.NoMove
	}
	piece := pos.PieceAt(prevMove.To())
	if piece == board.NoPiece {
		return board.NoMove
	}
	return mo.counterMoves[piece][prevMove.To()]
}

// GetHistoryScore returns m's plain history score.
func (mo *MoveOrderer) GetHistoryScore(m board.Move) int {
	return mo.history[m.From()][m.To()]
}

// UpdateCaptureHistory adjusts the capture-history score for a piece
// capturing a piece of capturedType on toSq.
func (mo *MoveOrderer) UpdateCaptureHistory(attackerPiece board.Piece, toSq board.Square, capturedType board.PieceType, depth int, isGood bool) {
	if attackerPiece == board.NoPiece || capturedType >= board.King {
		return
	}
	cell := &mo.captureHistory[attackerPiece][toSq][capturedType]
	if applyBonus(cell, historyBonus(depth), isGood) {
		mo.scaleCaptureHistory()
	}
}

func (mo *MoveOrderer) scaleCaptureHistory() {
	for i := range mo.captureHistory {
		for j := range mo.captureHistory[i] {
			for k := range mo.captureHistory[i][j] {
				mo.captureHistory[i][j][k] /= 2
			}
		}
	}
}

// GetCaptureHistoryScore returns the capture-history score for an
// attackerPiece taking a capturedType on toSq.
func (mo *MoveOrderer) GetCaptureHistoryScore(attackerPiece board.Piece, toSq board.Square, capturedType board.PieceType) int {
	if attackerPiece == board.NoPiece || capturedType >= board.King {
		return 0
	}
	return mo.captureHistory[attackerPiece][toSq][capturedType]
}

// UpdateCountermoveHistory adjusts the countermove-history score for
// playing goodMove with movePiece right after prevMove was played with
// prevPiece.
func (mo *MoveOrderer) UpdateCountermoveHistory(prevMove, goodMove board.Move, prevPiece, movePiece board.Piece, depth int, isGood bool) {
	if prevMove == board.NoMove || prevPiece == board.NoPiece || movePiece == board.NoPiece {
		return
	}
	cell := &mo.countermoveHistory[prevPiece][prevMove.To()][movePiece][goodMove.To()]
	if applyBonus(cell, historyBonus(depth), isGood) {
		mo.scaleCountermoveHistory()
	}
}

func (mo *MoveOrderer) scaleCountermoveHistory() {
	for i := range mo.countermoveHistory {
		for j := range mo.countermoveHistory[i] {
			for k := range mo.countermoveHistory[i][j] {
				for l := range mo.countermoveHistory[i][j][k] {
					mo.countermoveHistory[i][j][k][l] /= 2
				}
			}
		}
	}
}

// GetCountermoveHistoryScore returns the countermove-history score for
// playing movePiece to moveTo right after prevMove was played with
// prevPiece.
func (mo *MoveOrderer) GetCountermoveHistoryScore(prevMove board.Move, prevPiece, movePiece board.Piece, moveTo board.Square) int {
	if prevMove == board.NoMove || prevPiece == board.NoPiece || movePiece == board.NoPiece {
		return 0
	}
	return mo.countermoveHistory[prevPiece][prevMove.To()][movePiece][moveTo]
}
