package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ppiankov/moodlebank/internal/extract"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

// Loader reads saved pages from disk and parses them
type Loader struct {
	maxBytes int64
}

// NewLoader creates a loader that reads at most maxBytes per page
func NewLoader(maxBytes int64) *Loader {
	return &Loader{maxBytes: maxBytes}
}

// LoadResult is a parsed page and what is known about its file
type LoadResult struct {
	Path      string
	Name      string
	Size      int64
	Truncated bool
	Doc       *html.Node
}

// Load reads and parses the page at path
func (l *Loader) Load(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	body, err := io.ReadAll(io.LimitReader(f, l.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	truncated := info.Size() > l.maxBytes
	if truncated {
		log.Warn().Str("file", path).Int64("size", info.Size()).Int64("max_bytes", l.maxBytes).Msg("page truncated")
	}

	doc, err := extract.Parse(bytes.NewReader(body), "")
	if err != nil {
		return nil, err
	}

	return &LoadResult{
		Path:      path,
		Name:      filepath.Base(path),
		Size:      info.Size(),
		Truncated: truncated,
		Doc:       doc,
	}, nil
}
