// Package file implements analysis cache persistence as a single JSON
// snapshot on disk, written atomically via a temp-file rename.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"solana-paper-trader/internal/domain"
	"solana-paper-trader/internal/storage"
)

// AnalysisStore persists the analysis cache to a JSON file.
type AnalysisStore struct {
	path string
}

// NewAnalysisStore creates a store writing to the given path.
func NewAnalysisStore(path string) *AnalysisStore {
	return &AnalysisStore{path: path}
}

// Load reads the snapshot. A missing file yields an empty map; a file
// that cannot be decoded yields ErrCorruptSnapshot.
func (s *AnalysisStore) Load(_ context.Context) (map[string]domain.AnalysisRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]domain.AnalysisRecord{}, nil
		}
		return nil, fmt.Errorf("read analysis snapshot: %w", err)
	}

	var records map[string]domain.AnalysisRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", storage.ErrCorruptSnapshot, err)
	}
	if records == nil {
		records = map[string]domain.AnalysisRecord{}
	}
	return records, nil
}

// Save writes the full mapping atomically: marshal to a temp file in
// the same directory, then rename over the target.
func (s *AnalysisStore) Save(_ context.Context, records map[string]domain.AnalysisRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal analysis snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".analysis-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Verify interface compliance at compile time.
var _ storage.AnalysisStore = (*AnalysisStore)(nil)
