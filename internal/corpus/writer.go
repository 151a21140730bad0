package corpus

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/moodlebank/internal/model"
	"github.com/ppiankov/moodlebank/internal/normalize"
)

// WriteBatch writes one batch: the test-name line, a blank line, then one
// block per record. Nothing is written for an empty batch.
func WriteBatch(w io.Writer, testName string, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString(testName)
	b.WriteString("\n\n")
	for _, rec := range records {
		b.WriteString(QuestionLine(rec.Question))
		b.WriteString("\n")
		for _, answer := range rec.Answers {
			b.WriteString(AnswerMarker)
			b.WriteString(answer)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write batch: %w", err)
	}
	return nil
}

// QuestionLine renders a question so the reader gets it back unchanged.
// An empty question becomes the question placeholder. A question the parser
// would misread as another kind of line is prefixed with EscapeMarker.
func QuestionLine(question string) string {
	question = normalize.Clean(question)
	if question == "" {
		return model.PlaceholderQuestion
	}
	if strings.HasPrefix(question, AnswerMarker) ||
		strings.HasPrefix(question, EscapeMarker) ||
		IsHeader(question) {
		return EscapeMarker + question
	}
	return question
}

// FormatBatch returns WriteBatch output as a string
func FormatBatch(testName string, records []model.Record) string {
	var buf bytes.Buffer
	_ = WriteBatch(&buf, testName, records)
	return buf.String()
}

// AppendFile appends payload to the corpus at path, creating it if needed.
// When the existing file does not end in a newline one is added first so the
// payload starts on its own line.
func AppendFile(path string, payload []byte) (err error) {
	if len(payload) == 0 {
		return nil
	}

	needsNewline, err := lacksTrailingNewline(path)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open corpus for append: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close corpus: %w", closeErr)
		}
	}()

	if needsNewline {
		if _, err := f.Write([]byte("\n")); err != nil {
			return fmt.Errorf("append to corpus: %w", err)
		}
	}
	if _, err := f.Write(payload); err != nil {
		return fmt.Errorf("append to corpus: %w", err)
	}
	return nil
}

func lacksTrailingNewline(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("open corpus: %w", err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return false, fmt.Errorf("stat corpus: %w", err)
	}
	if info.Size() == 0 {
		return false, nil
	}

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, fmt.Errorf("read corpus tail: %w", err)
	}
	return last[0] != '\n', nil
}
