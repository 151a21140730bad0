package model

import "strings"

// Placeholders substituted for missing page structure. They are written to the
// corpus verbatim so they stay searchable.
const (
	PlaceholderQuestion = "[Question text not found]"
	PlaceholderAnswer   = "[Answer not found]"
	PlaceholderTestName = "Unknown Test"
	PlaceholderNumber   = "?"
)

// Record is one quiz question with its correct answers
type Record struct {
	Number      string   `json:"number,omitempty"`      // Question ordinal as shown on the page
	Question    string   `json:"question"`              // Cleaned question text
	Answers     []string `json:"answers"`               // Correct answers in page order
	SourceLabel string   `json:"source_label"`          // Test name the record was extracted under
	SourceFile  string   `json:"source_file,omitempty"` // File name of the saved page
}

// Identity is the canonical form of a record used for duplicate detection.
// Answers are sorted and unique, so two identities built from the same
// answer set compare equal regardless of page order.
type Identity struct {
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

// Key returns a string that is equal for equal identities
func (id Identity) Key() string {
	return id.Question + "\x00" + strings.Join(id.Answers, "\x1f")
}

// Equal reports whether two identities describe the same record
func (id Identity) Equal(other Identity) bool {
	return id.Key() == other.Key()
}
