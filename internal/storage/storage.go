// Package storage persists run results as one JSON file per run id,
// optionally zstd-compressed. Loading is transparent to either form.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/langgap/langbench/internal/models"
)

const compressedExt = ".json.zst"

// Store writes and reads RunResults files under a results directory.
type Store struct {
	dir string
}

// NewStore creates a Store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Save writes the run keyed by its run id and returns the file path. Raw
// model responses make result files large, so compress stores them as
// zstd-compressed JSON instead of plain JSON.
func (s *Store) Save(run *models.RunResults, compress bool) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating results directory: %w", err)
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling results: %w", err)
	}

	if !compress {
		path := filepath.Join(s.dir, run.RunID+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return "", fmt.Errorf("writing results: %w", err)
		}
		return path, nil
	}

	path := filepath.Join(s.dir, run.RunID+compressedExt)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("writing results: %w", err)
	}

	enc, err := zstd.NewWriter(f)
	if err != nil {
		f.Close()
		return "", fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		f.Close()
		return "", fmt.Errorf("compressing results: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return "", fmt.Errorf("compressing results: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("writing results: %w", err)
	}
	return path, nil
}

// SaveFile writes the run to an explicit path instead of the store layout.
// The payload is zstd-compressed when the path ends in ".zst".
func SaveFile(run *models.RunResults, path string) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}

	if strings.HasSuffix(path, ".zst") {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return fmt.Errorf("creating zstd writer: %w", err)
		}
		data = enc.EncodeAll(data, nil)
		if err := enc.Close(); err != nil {
			return fmt.Errorf("compressing results: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// Load reads a results file saved by Save, decompressing when the path has
// the zstd extension.
func Load(path string) (*models.RunResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results file: %w", err)
	}

	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("creating zstd reader: %w", err)
		}
		defer dec.Close()
		data, err = dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", path, err)
		}
	}

	var run models.RunResults
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &run, nil
}
