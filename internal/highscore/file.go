package highscore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// fileRecord is the on-disk format of the file store.
type fileRecord struct {
	HighScore int `json:"danmakuHighScore"`
}

// File keeps the high score in a small JSON file.
type File struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*File)(nil)

// NewFile creates a file store. The file is created on the first save.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Load(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

func (f *File) read() (int, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read high score: %w", err)
	}

	var rec fileRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, fmt.Errorf("decode high score %s: %w", f.path, err)
	}
	if rec.HighScore < 0 {
		return 0, nil
	}
	return rec.HighScore, nil
}

// Save writes through a temporary file so a crash never leaves a torn file.
func (f *File) Save(_ context.Context, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.read()
	if err != nil {
		return err
	}
	if score <= current {
		return nil
	}

	data, err := json.Marshal(fileRecord{HighScore: score})
	if err != nil {
		return fmt.Errorf("encode high score: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".highscore-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write high score: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write high score: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace high score: %w", err)
	}
	return nil
}

func (f *File) Close() error { return nil }
