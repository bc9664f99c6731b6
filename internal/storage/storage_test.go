package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hailam/chesscore/internal/board"
)

func TestDefaultPreferences(t *testing.T) {
	prefs := DefaultPreferences()
	if prefs.HashSizeMB != 16 {
		t.Errorf("Expected default hash size 16MB, got %d", prefs.HashSizeMB)
	}
	if prefs.OwnBook {
		t.Errorf("Expected OwnBook disabled by default")
	}
	if prefs.BookFile != "" {
		t.Errorf("Expected empty default book file")
	}
}

// newTestStorage opens a Storage rooted at a fresh temp directory, bypassing
// GetDatabaseDir's platform-specific resolution.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "chesscore-storage-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	dbDir := filepath.Join(tmpDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		t.Fatalf("Failed to create db dir: %v", err)
	}

	s, err := openAt(dbDir)
	if err != nil {
		t.Fatalf("openAt failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPreferencesRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	want := &EnginePreferences{
		HashSizeMB: 128,
		OwnBook:    true,
		BookFile:   "/opt/books/performance.bin",
	}
	if err := s.SavePreferences(want); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	got, err := s.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if got.HashSizeMB != want.HashSizeMB || got.OwnBook != want.OwnBook || got.BookFile != want.BookFile {
		t.Errorf("round trip mismatch: got %+v, want HashSizeMB=%d OwnBook=%v BookFile=%s",
			got, want.HashSizeMB, want.OwnBook, want.BookFile)
	}
}

func TestLoadPreferencesDefaultsWhenUnset(t *testing.T) {
	s := newTestStorage(t)

	prefs, err := s.LoadPreferences()
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if prefs.HashSizeMB != 16 || prefs.OwnBook {
		t.Errorf("expected defaults when nothing saved, got %+v", prefs)
	}
}

func TestPositionCacheRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	pos := board.NewPosition()

	_, found, err := s.LoadPosition(pos.Hash)
	if err != nil {
		t.Fatalf("LoadPosition: %v", err)
	}
	if found {
		t.Error("expected cache miss before any Save")
	}

	move, err := board.ParseMove("e2e4", pos)
	if err != nil {
		t.Fatalf("parsing move: %v", err)
	}
	want := PositionCacheEntry{BestMove: move, Depth: 12, Score: 34}
	if err := s.SavePosition(pos.Hash, want); err != nil {
		t.Fatalf("SavePosition: %v", err)
	}

	got, found, err := s.LoadPosition(pos.Hash)
	if err != nil {
		t.Fatalf("LoadPosition: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit after Save")
	}
	if got != want {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestFirstLaunch(t *testing.T) {
	s := newTestStorage(t)

	first, err := s.IsFirstLaunch()
	if err != nil {
		t.Fatalf("IsFirstLaunch: %v", err)
	}
	if !first {
		t.Error("expected first launch to be true before marking complete")
	}

	if err := s.MarkFirstLaunchComplete(); err != nil {
		t.Fatalf("MarkFirstLaunchComplete: %v", err)
	}

	first, err = s.IsFirstLaunch()
	if err != nil {
		t.Fatalf("IsFirstLaunch: %v", err)
	}
	if first {
		t.Error("expected first launch to be false after marking complete")
	}
}

func TestDataPaths(t *testing.T) {
	// Test that GetDataDir returns a valid path
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	// Verify directory exists
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("Data directory was not created: %s", dataDir)
	}

	t.Logf("Data directory: %s", dataDir)
}
