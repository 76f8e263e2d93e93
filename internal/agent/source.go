package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var ErrNoFrames = errors.New("no frames available")

// FrameSource yields successive JPEG frames for upload. A camera would
// implement this; the dir source replays files for development runs.
type FrameSource interface {
	Next(ctx context.Context) ([]byte, error)
}

// DirSource cycles through the JPEG files of a directory in name order,
// wrapping around at the end. The directory is listed once at creation.
type DirSource struct {
	mu    sync.Mutex
	paths []string
	next  int
}

func NewDirSource(dir string) (*DirSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".jpg" || ext == ".jpeg" {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, ErrNoFrames
	}
	return &DirSource{paths: paths}, nil
}

func (s *DirSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	path := s.paths[s.next]
	s.next = (s.next + 1) % len(s.paths)
	s.mu.Unlock()

	return os.ReadFile(path)
}
