package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/moodlebank/internal/model"
	"github.com/ppiankov/moodlebank/internal/normalize"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"
)

var (
	// " | TÜ Moodle" site suffix on page titles
	siteSuffix = regexp.MustCompile(`\s*\|\s*TÜ Moodle\s*$`)
	// ": katse ülevaade" (attempt review) suffix
	reviewSuffix = regexp.MustCompile(`:\s*katse ülevaade\s*$`)
	// "Õige vastus on:" / "Õiged vastused on järgmised:"
	answerPrefix = regexp.MustCompile(`^Õige[d]?\s+vastuse?d?\s+(?:on järgmised|on):\s*`)
	// list punctuation left over around paragraph answers
	trailingPunct = regexp.MustCompile(`[,.]\s*$`)
	leadingPunct  = regexp.MustCompile(`^[,.\s]+`)
)

// Layout names the structural anchors of a quiz review page
type Layout struct {
	QuestionTag   string
	QuestionClass string
	NumberTag     string
	NumberClass   string
	TextTag       string
	TextClass     string
	AnswerTag     string
	AnswerClass   string
	FallbackTag   string
	FallbackClass string
	FallbackAttr  string
}

// MoodleLayout is the Moodle quiz review layout
func MoodleLayout() Layout {
	return Layout{
		QuestionTag:   "div",
		QuestionClass: "que",
		NumberTag:     "span",
		NumberClass:   "qno",
		TextTag:       "div",
		TextClass:     "qtext",
		AnswerTag:     "div",
		AnswerClass:   "rightanswer",
		FallbackTag:   "input",
		FallbackClass: "correct",
		FallbackAttr:  "value",
	}
}

// Document is everything extracted from one saved page
type Document struct {
	TestName string
	Records  []model.Record
}

// QuizExtractor extracts question/answer records from quiz review pages
type QuizExtractor struct {
	layout   Layout
	recordOf func(*html.Node) model.Record
}

// NewQuizExtractor creates an extractor for the Moodle layout
func NewQuizExtractor() *QuizExtractor {
	return NewQuizExtractorWithLayout(MoodleLayout())
}

// NewQuizExtractorWithLayout creates an extractor for a custom layout
func NewQuizExtractorWithLayout(layout Layout) *QuizExtractor {
	e := &QuizExtractor{layout: layout}
	e.recordOf = e.record
	return e
}

// Extract walks a parsed page and returns its test name and records.
// Extraction is best-effort: missing structure becomes placeholder text and
// one broken question never costs the rest of the page.
func (e *QuizExtractor) Extract(doc *html.Node, sourceFile string) Document {
	testName := TestName(doc)

	containers := findAll(doc, element(e.layout.QuestionTag, e.layout.QuestionClass))
	records := make([]model.Record, 0, len(containers))
	for i, container := range containers {
		rec, err := e.safeRecord(container)
		if err != nil {
			log.Warn().Err(err).Str("file", sourceFile).Int("container", i).Msg("question extraction failed; using placeholders")
			rec = model.Record{
				Number:   model.PlaceholderNumber,
				Question: model.PlaceholderQuestion,
				Answers:  []string{model.PlaceholderAnswer},
			}
		}
		rec.SourceLabel = testName
		rec.SourceFile = sourceFile
		records = append(records, rec)
	}

	return Document{
		TestName: testName,
		Records:  records,
	}
}

// safeRecord isolates a single container so a panic in the walk turns into
// an error for that question only.
func (e *QuizExtractor) safeRecord(container *html.Node) (rec model.Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered: %v", r)
		}
	}()
	return e.recordOf(container), nil
}

func (e *QuizExtractor) record(container *html.Node) model.Record {
	rec := model.Record{
		Number:   model.PlaceholderNumber,
		Question: model.PlaceholderQuestion,
	}

	if n := findFirst(container, element(e.layout.NumberTag, e.layout.NumberClass)); n != nil {
		rec.Number = normalize.Clean(textContent(n))
	}
	if n := findFirst(container, element(e.layout.TextTag, e.layout.TextClass)); n != nil {
		if text := normalize.Clean(textContent(n)); text != "" {
			rec.Question = text
		}
	}

	rec.Answers = e.answers(container)
	return rec
}

// answers applies the answer sources in priority order: paragraphs of the
// right-answer block, the block's prefixed text, then the fallback input.
func (e *QuizExtractor) answers(container *html.Node) []string {
	block := findFirst(container, element(e.layout.AnswerTag, e.layout.AnswerClass))
	if block == nil {
		return e.fallbackAnswer(container)
	}

	var answers []string
	if paragraphs := findAll(block, element("p", "")); len(paragraphs) > 0 {
		for _, p := range paragraphs {
			if answer := CleanAnswer(textContent(p)); answer != "" {
				answers = append(answers, answer)
			}
		}
	} else if answer := StripAnswerPrefix(normalize.Clean(textContent(block))); answer != "" {
		answers = append(answers, answer)
	}

	if len(answers) == 0 {
		return []string{model.PlaceholderAnswer}
	}
	return answers
}

func (e *QuizExtractor) fallbackAnswer(container *html.Node) []string {
	input := findFirst(container, element(e.layout.FallbackTag, e.layout.FallbackClass))
	if input != nil {
		if value, ok := getAttribute(input, e.layout.FallbackAttr); ok {
			if value = normalize.Clean(value); value != "" {
				return []string{value}
			}
		}
	}
	return []string{model.PlaceholderAnswer}
}

// CleanAnswer cleans one paragraph answer and removes a trailing comma or
// period plus any leading list punctuation.
func CleanAnswer(text string) string {
	answer := normalize.Clean(text)
	answer = trailingPunct.ReplaceAllString(answer, "")
	answer = leadingPunct.ReplaceAllString(answer, "")
	return strings.TrimSpace(answer)
}

// StripAnswerPrefix removes the localized "the correct answer is:" lead-in
func StripAnswerPrefix(text string) string {
	return strings.TrimSpace(answerPrefix.ReplaceAllString(text, ""))
}

// TestName returns the page title without the site and review suffixes
func TestName(doc *html.Node) string {
	title := findFirst(doc, element("title", ""))
	if title == nil {
		return model.PlaceholderTestName
	}

	name := textContent(title)
	name = siteSuffix.ReplaceAllString(name, "")
	name = reviewSuffix.ReplaceAllString(name, "")
	name = normalize.Clean(name)
	if name == "" {
		return model.PlaceholderTestName
	}
	return name
}
