package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Carlsmeister/wikicap/internal/summary"
)

// DefaultDataDir is where snapshots land unless overridden.
const DefaultDataDir = "~/.local/share/wikicap"

// Snapshot wraps a persisted year summary with its fetch time.
type Snapshot struct {
	FetchedAt time.Time            `json:"fetched_at"`
	Summary   *summary.YearSummary `json:"summary"`
}

// Storage handles persistence of year summary snapshots
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{dataDir: dataDir}, nil
}

func (s *Storage) snapshotPath(year int) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("summary_%d.json", year))
}

// LoadSummary loads a year's snapshot from disk. A snapshot older than
// maxAge, or one that never existed, reports ok=false.
func (s *Storage) LoadSummary(year int, maxAge time.Duration) (*summary.YearSummary, bool, error) {
	data, err := os.ReadFile(s.snapshotPath(year))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snap.Summary == nil {
		return nil, false, nil
	}
	if maxAge > 0 && time.Since(snap.FetchedAt) > maxAge {
		return nil, false, nil
	}
	return snap.Summary, true, nil
}

// SaveSummary saves a year's snapshot to disk
func (s *Storage) SaveSummary(result *summary.YearSummary) error {
	snap := Snapshot{
		FetchedAt: time.Now().UTC(),
		Summary:   result,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(s.snapshotPath(result.Year), data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}
