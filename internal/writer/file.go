package writer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rickgao/nft-pricewatch/internal/model"
)

// FileSink writes the snapshot to a JSON file.
type FileSink struct {
	path   string
	logger *slog.Logger
}

// NewFileSink creates a FileSink for path.
func NewFileSink(path string, logger *slog.Logger) *FileSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSink{path: path, logger: logger}
}

// Path returns the output file path.
func (s *FileSink) Path() string {
	return s.path
}

// Write replaces the file with snap. Readers see either the previous or the
// new document, never a partial one.
func (s *FileSink) Write(_ context.Context, snap model.Snapshot) error {
	data, err := snap.Encode()
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	s.logger.Debug("snapshot written", "path", s.path, "bytes", len(data))
	return nil
}

// ReadSnapshot loads a snapshot written by FileSink.
func ReadSnapshot(path string) (model.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap, err := model.DecodeSnapshot(data)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return snap, nil
}

// WriteFileAtomic writes data to a temp file in the same directory, syncs it
// and renames it over path.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
