package engine

import (
	"github.com/hailam/chesscore/internal/board"
)

// TTFlag indicates the type of bound stored in the transposition table.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // Exact score
	TTLowerBound               // Failed high (beta cutoff)
	TTUpperBound               // Failed low
)

// TTEntry represents an entry in the transposition table. Eval is stored in
// root-independent form: mate scores are normalized to the ±MATE sentinel on
// store and re-expanded to ply-indexed form on probe, via AdjustScoreToTT /
// AdjustScoreFromTT.
type TTEntry struct {
	Key      uint32     // Upper 32 bits of Zobrist hash for verification
	BestMove board.Move // Best move found
	Eval     int32      // Root-independent score
	Depth    int8       // Search depth the record was computed at
	Kind     TTFlag     // Type of bound
}

// TranspositionTable is a hash table for storing search results. It is owned
// by a Context and its lifetime spans multiple searches unless Clear is
// called explicitly between them.
type TranspositionTable struct {
	entries []TTEntry
	size    uint64
	mask    uint64

	hits   uint64
	probes uint64
}

// NewTranspositionTable creates a transposition table with the given size in MB.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	entrySize := uint64(16) // approximate size of TTEntry
	numEntries := (uint64(sizeMB) * 1024 * 1024) / entrySize

	numEntries = roundDownToPowerOf2(numEntries)
	if numEntries == 0 {
		numEntries = 1
	}

	return &TranspositionTable{
		entries: make([]TTEntry, numEntries),
		size:    numEntries,
		mask:    numEntries - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// rawProbe returns the raw stored entry for hash, if the key matches.
func (tt *TranspositionTable) rawProbe(hash uint64) (TTEntry, bool) {
	tt.probes++

	idx := hash & tt.mask
	entry := tt.entries[idx]

	if entry.Depth > 0 && entry.Key == uint32(hash>>32) {
		tt.hits++
		return entry, true
	}
	return TTEntry{}, false
}

// ProbeEval implements probeEval(hash, depth, α, β): it returns a usable
// score and true iff the stored record's depth is at least depth and either
// the kind is Exact, or the kind is UpperBound with eval ≤ α (returns α), or
// the kind is LowerBound with eval ≥ β (returns β). ply is the current
// plyFromRoot, used to re-expand a normalized mate score.
func (tt *TranspositionTable) ProbeEval(hash uint64, depth, ply, alpha, beta int) (int, bool) {
	entry, ok := tt.rawProbe(hash)
	if !ok || int(entry.Depth) < depth {
		return 0, false
	}

	eval := AdjustScoreFromTT(int(entry.Eval), ply)

	switch entry.Kind {
	case TTExact:
		return eval, true
	case TTUpperBound:
		if eval <= alpha {
			return alpha, true
		}
	case TTLowerBound:
		if eval >= beta {
			return beta, true
		}
	}
	return 0, false
}

// ProbeMove returns the best move recorded for hash, for move-ordering hints,
// without requiring a depth or bound match.
func (tt *TranspositionTable) ProbeMove(hash uint64) (board.Move, bool) {
	entry, ok := tt.rawProbe(hash)
	if !ok || entry.BestMove == board.NoMove {
		return board.NoMove, false
	}
	return entry.BestMove, true
}

// Store implements store(hash, record): replace iff the new record's depth
// is strictly greater than the stored one, or the new kind is Exact and the
// stored kind is not. eval must already be ply-indexed; it is normalized to
// root-independent form here before writing.
func (tt *TranspositionTable) Store(hash uint64, depth, ply, eval int, kind TTFlag, bestMove board.Move) {
	idx := hash & tt.mask
	entry := &tt.entries[idx]

	if entry.Depth > 0 && int(entry.Depth) >= depth && (entry.Kind == TTExact || kind != TTExact) {
		return
	}

	entry.Key = uint32(hash >> 32)
	entry.BestMove = bestMove
	entry.Eval = int32(AdjustScoreToTT(eval, ply))
	entry.Depth = int8(depth)
	entry.Kind = kind
}

// Clear clears the transposition table.
func (tt *TranspositionTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.hits = 0
	tt.probes = 0
}

// HashFull returns the permille (parts per thousand) of the table that is used.
func (tt *TranspositionTable) HashFull() int {
	used := 0
	sampleSize := 1000
	if uint64(sampleSize) > tt.size {
		sampleSize = int(tt.size)
	}

	for i := 0; i < sampleSize; i++ {
		if tt.entries[i].Depth > 0 {
			used++
		}
	}

	return (used * 1000) / sampleSize
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of entries in the table.
func (tt *TranspositionTable) Size() uint64 {
	return tt.size
}

// AdjustScoreFromTT re-expands a root-independent mate score read from the
// table into ply-indexed form for use at the current node.
func AdjustScoreFromTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT normalizes a ply-indexed mate score to root-independent
// form (the ±MATE sentinel) before it is written to the table.
func AdjustScoreToTT(score int, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
