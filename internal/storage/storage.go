// Package storage provides persistent storage for engine preferences and a
// cross-session position cache.
package storage

import (
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/chesscore/internal/board"
)

// Storage keys
const (
	keyPreferences    = "preferences"
	keyFirstLaunch    = "first_launch"
	positionKeyPrefix = "pos/"
)

// EnginePreferences holds the UCI-facing option defaults that persist across
// sessions: transposition table size, whether to consult an opening book,
// and which book file to load. Recovered from the original GUI's
// user-preferences feature, repurposed for a UCI front-end rather than a
// human player profile.
type EnginePreferences struct {
	HashSizeMB int       `json:"hash_size_mb"`
	OwnBook    bool      `json:"own_book"`
	BookFile   string    `json:"book_file"`
	LastUsed   time.Time `json:"last_used"`
}

// DefaultPreferences returns the engine's default option values.
func DefaultPreferences() *EnginePreferences {
	return &EnginePreferences{
		HashSizeMB: 16,
		OwnBook:    false,
		BookFile:   "",
		LastUsed:   time.Now(),
	}
}

// PositionCacheEntry is a durable warm-start record for a single position:
// the best move and the depth/score it was searched to. Not part of the
// transposition table's contract (internal/engine) — this is a cross-session
// cache the front-end can pre-seed on ucinewgame.
type PositionCacheEntry struct {
	BestMove board.Move `json:"best_move"`
	Depth    int        `json:"depth"`
	Score    int        `json:"score"`
}

// Storage wraps BadgerDB for persistent storage.
type Storage struct {
	db *badger.DB
}

// NewStorage creates a new storage instance rooted at the platform data dir.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return openAt(dbDir)
}

// openAt opens a Storage at an explicit directory, used by NewStorage and by
// tests that need isolation from the platform-specific data dir.
func openAt(dbDir string) (*Storage, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// IsFirstLaunch returns true if this is the first launch.
func (s *Storage) IsFirstLaunch() (bool, error) {
	var firstLaunch bool = true

	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyFirstLaunch))
		if err == badger.ErrKeyNotFound {
			firstLaunch = true
			return nil
		}
		if err != nil {
			return err
		}
		firstLaunch = false
		return nil
	})

	return firstLaunch, err
}

// MarkFirstLaunchComplete marks that first launch setup is complete.
func (s *Storage) MarkFirstLaunchComplete() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyFirstLaunch), []byte("done"))
	})
}

// SavePreferences saves engine preferences.
func (s *Storage) SavePreferences(prefs *EnginePreferences) error {
	prefs.LastUsed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads engine preferences, returning defaults if none were
// ever saved.
func (s *Storage) LoadPreferences() (*EnginePreferences, error) {
	prefs := DefaultPreferences()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPreferences))
		if err == badger.ErrKeyNotFound {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, prefs)
		})
	})

	return prefs, err
}

// SavePosition records a warm-start entry for a position, keyed by its
// Zobrist hash.
func (s *Storage) SavePosition(hash uint64, entry PositionCacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(positionKey(hash), data)
	})
}

// LoadPosition looks up a cached warm-start entry by Zobrist hash.
func (s *Storage) LoadPosition(hash uint64) (PositionCacheEntry, bool, error) {
	var entry PositionCacheEntry
	found := false

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(positionKey(hash))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})

	return entry, found, err
}

func positionKey(hash uint64) []byte {
	key := make([]byte, len(positionKeyPrefix)+8)
	copy(key, positionKeyPrefix)
	for i := 0; i < 8; i++ {
		key[len(positionKeyPrefix)+i] = byte(hash >> (8 * i))
	}
	return key
}
