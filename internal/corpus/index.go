// Package corpus reads and writes the accumulated plain-text answer corpus
// and derives the set of record identities it already contains.
//
// Corpus layout, one block per record:
//
//	<test name>
//
//	<question>
//	- <answer 1>
//	- <answer 2>
//
// Blocks end with a blank line; each batch starts with a test-name line.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/moodlebank/internal/model"
	"github.com/ppiankov/moodlebank/internal/normalize"
)

// AnswerMarker starts every answer line
const AnswerMarker = "- "

// EscapeMarker prefixes a question line that would otherwise read as an
// answer or a header. The reader drops it.
const EscapeMarker = `\`

// headerKeywords mark section header lines when combined with a colon.
// Matching is case-sensitive.
var headerKeywords = []string{"Test", "katse"}

// Index is a set of record identities
type Index struct {
	keys map[string]model.Identity
}

// NewIndex creates an empty index
func NewIndex() *Index {
	return &Index{keys: make(map[string]model.Identity)}
}

// Contains reports whether the identity is in the index
func (i *Index) Contains(id model.Identity) bool {
	_, ok := i.keys[id.Key()]
	return ok
}

// Add inserts an identity. It never fails; the error satisfies the same
// contract as persisted identity sets.
func (i *Index) Add(id model.Identity) error {
	i.keys[id.Key()] = id
	return nil
}

// Len returns the number of identities
func (i *Index) Len() int {
	return len(i.keys)
}

// Identities returns all identities ordered by key
func (i *Index) Identities() []model.Identity {
	keys := make([]string, 0, len(i.keys))
	for k := range i.keys {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ids := make([]model.Identity, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, i.keys[k])
	}
	return ids
}

// IsHeader reports whether a corpus line looks like a section header
func IsHeader(line string) bool {
	if !strings.Contains(line, ":") {
		return false
	}
	for _, kw := range headerKeywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}

// indexBuilder tracks the block being read
type indexBuilder struct {
	index    *Index
	question string
	answers  []string
}

// commit inserts the pending block if it is complete, then resets it
func (b *indexBuilder) commit() {
	if b.question != "" && len(b.answers) > 0 {
		_ = b.index.Add(normalize.Identity(b.question, b.answers))
	}
	b.question = ""
	b.answers = nil
}

func (b *indexBuilder) line(raw string) {
	line := strings.TrimSpace(raw)

	switch {
	case line == "":
		b.commit()
	case strings.HasPrefix(line, AnswerMarker):
		b.answers = append(b.answers, strings.TrimSpace(line[len(AnswerMarker):]))
	case strings.HasPrefix(line, EscapeMarker):
		b.startQuestion(line[len(EscapeMarker):])
	case IsHeader(line):
		// not part of any record
	default:
		b.startQuestion(line)
	}
}

func (b *indexBuilder) startQuestion(question string) {
	if len(b.answers) > 0 {
		b.commit()
	}
	b.question = question
	b.answers = nil
}

// ParseIndex reads a corpus and returns the identities it contains
func ParseIndex(r io.Reader) (*Index, error) {
	b := &indexBuilder{index: NewIndex()}

	reader := bufio.NewReader(r)
	for {
		raw, err := reader.ReadString('\n')
		if raw != "" {
			b.line(raw)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read corpus: %w", err)
		}
	}
	b.commit()

	return b.index, nil
}

// BuildIndex is ParseIndex over corpus text already in memory
func BuildIndex(text string) *Index {
	// strings.Reader never fails, so neither does the parse
	idx, _ := ParseIndex(strings.NewReader(text))
	return idx
}

// LoadIndex builds the index of the corpus file at path. A missing file is an
// empty corpus.
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewIndex(), nil
		}
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer func() { _ = f.Close() }()

	idx, err := ParseIndex(f)
	if err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}
	return idx, nil
}
