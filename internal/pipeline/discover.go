package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrInputDirNotFound is returned when the input directory does not exist.
// It ends the run before anything is written.
var ErrInputDirNotFound = errors.New("input directory not found")

// pageExt is the extension of saved quiz pages
const pageExt = ".html"

// Discover lists the saved pages directly inside dir, sorted by name.
// Subdirectories such as the "<page>_files" asset folders browsers create
// are not descended into.
func Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputDirNotFound, dir)
		}
		return nil, fmt.Errorf("stat input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInputDirNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !strings.EqualFold(filepath.Ext(e.Name()), pageExt) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		// Stat follows symlinks, so linked pages count as files
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return paths, nil
}

// ReadPathList reads page paths from a file, one per line. Blank lines and
// lines starting with # are skipped, duplicates are dropped, and relative
// paths are resolved against the list file's directory.
func ReadPathList(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open list: %w", err)
	}
	defer func() { _ = file.Close() }()

	base := filepath.Dir(listPath)
	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !filepath.IsAbs(line) {
			line = filepath.Join(base, line)
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan list: %w", err)
	}

	return paths, nil
}
