// Package normalize canonicalizes text pulled out of quiz pages.
//
// Clean is used for everything that is displayed or written to the corpus.
// ForComparison is used only for duplicate detection and never for display.
package normalize

import (
	"sort"
	"strings"

	"github.com/ppiankov/moodlebank/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Clean collapses every run of whitespace to a single space and trims the
// result. Unicode spaces such as NBSP count as whitespace.
func Clean(text string) string {
	if text == "" {
		return ""
	}
	return strings.Join(strings.Fields(text), " ")
}

// ForComparison returns the lower-cased form of Clean(text)
func ForComparison(text string) string {
	cleaned := Clean(text)
	if cleaned == "" {
		return ""
	}
	// cases.Caser is stateful, so a fresh one per call keeps this safe to
	// use from anywhere.
	return cases.Lower(language.Und).String(cleaned)
}

// Identity builds the canonical form of a question and its answers
func Identity(question string, answers []string) model.Identity {
	seen := make(map[string]struct{}, len(answers))
	set := make([]string, 0, len(answers))
	for _, a := range answers {
		key := ForComparison(a)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		set = append(set, key)
	}
	sort.Strings(set)

	return model.Identity{
		Question: ForComparison(question),
		Answers:  set,
	}
}

// RecordIdentity is Identity applied to a record
func RecordIdentity(r model.Record) model.Identity {
	return Identity(r.Question, r.Answers)
}
