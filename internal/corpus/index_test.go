package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/moodlebank/internal/model"
	"github.com/ppiankov/moodlebank/internal/normalize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex_Blocks(t *testing.T) {
	text := "Test 1 - Aine korralduslik info\n" +
		"\n" +
		"Capital of Estonia?\n" +
		"- Tallinn\n" +
		"\n" +
		"Pick two\n" +
		"- Red\n" +
		"- Blue\n" +
		"\n"

	idx := BuildIndex(text)
	require.Equal(t, 2, idx.Len())
	assert.True(t, idx.Contains(normalize.Identity("capital of estonia?", []string{"tallinn"})))
	assert.True(t, idx.Contains(normalize.Identity("Pick two", []string{"Blue", "Red"})))
	assert.False(t, idx.Contains(normalize.Identity("Pick two", []string{"Red"})))
}

func TestBuildIndex_QuestionWithoutAnswersIgnored(t *testing.T) {
	idx := BuildIndex("Lonely question\n\nAnother\n- yes\n")
	require.Equal(t, 1, idx.Len())
	assert.True(t, idx.Contains(normalize.Identity("Another", []string{"yes"})))
}

func TestBuildIndex_CommitBeforeOverwrite(t *testing.T) {
	// No blank lines between blocks
	idx := BuildIndex("Q1\n- a\nQ2\n- b\n- c\nQ3\nQ4\n- d")
	require.Equal(t, 3, idx.Len())
	assert.True(t, idx.Contains(normalize.Identity("Q1", []string{"a"})))
	assert.True(t, idx.Contains(normalize.Identity("Q2", []string{"b", "c"})))
	assert.True(t, idx.Contains(normalize.Identity("Q4", []string{"d"})))
	assert.False(t, idx.Contains(normalize.Identity("Q3", []string{"d"})))
}

func TestBuildIndex_HeaderSkipped(t *testing.T) {
	text := "Q1\n- a\nTest 3: katse ülevaade\n- b\n\nkatse: kaks\n\nQ2\n- c\n\n"

	idx := BuildIndex(text)
	// The header does not end the pending block, so "b" joins Q1
	require.Equal(t, 2, idx.Len())
	assert.True(t, idx.Contains(normalize.Identity("Q1", []string{"a", "b"})))
	assert.True(t, idx.Contains(normalize.Identity("Q2", []string{"c"})))
}

func TestIsHeader(t *testing.T) {
	assert.True(t, IsHeader("Test 1: intro"))
	assert.True(t, IsHeader("Aine: katse ülevaade"))
	assert.False(t, IsHeader("Test 1 - intro"))
	assert.False(t, IsHeader("test: lower-case keyword"))
	assert.False(t, IsHeader("Ratio: 1 to 2"))
}

func TestBuildIndex_CRLFAndIndentedMarkers(t *testing.T) {
	idx := BuildIndex("Capital of Estonia?\r\n  - Tallinn  \r\n\r\n")
	require.Equal(t, 1, idx.Len())
	assert.True(t, idx.Contains(normalize.Identity("Capital of Estonia?", []string{"Tallinn"})))
}

func TestBuildIndex_Empty(t *testing.T) {
	assert.Equal(t, 0, BuildIndex("").Len())
	assert.Equal(t, 0, BuildIndex("\n\n\n").Len())
}

func TestLoadIndex_MissingFile(t *testing.T) {
	idx, err := LoadIndex(filepath.Join(t.TempDir(), "nope.md"))
	require.NoError(t, err)
	assert.Equal(t, 0, idx.Len())
}

func TestLoadIndex_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.md")
	require.NoError(t, os.WriteFile(path, []byte("Capital of Estonia?\n- Tallinn\n\n"), 0644))

	idx, err := LoadIndex(path)
	require.NoError(t, err)
	assert.True(t, idx.Contains(normalize.Identity("capital of estonia?", []string{"tallinn"})))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestParseIndex_ReadError(t *testing.T) {
	_, err := ParseIndex(failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestIndex_Identities(t *testing.T) {
	idx := NewIndex()
	b := normalize.Identity("b", []string{"x"})
	a := normalize.Identity("a", []string{"x"})
	require.NoError(t, idx.Add(b))
	require.NoError(t, idx.Add(a))
	require.NoError(t, idx.Add(a))

	assert.Equal(t, []model.Identity{a, b}, idx.Identities())
}
