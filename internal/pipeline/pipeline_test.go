package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/moodlebank/internal/model"
)

const pageOne = `<html><head><title>Test 1 - Intro: katse ülevaade | TÜ Moodle</title></head><body>
<div class="que"><span class="qno">1</span><div class="qtext">Capital of Estonia?</div>
<div class="rightanswer"><p>Tallinn.</p></div></div>
<div class="que"><span class="qno">2</span><div class="qtext">What is 2+2?</div>
<div class="rightanswer">Õige vastus on: 4</div></div>
</body></html>`

const pageTwo = `<html><head><title>Test 2 - Review: katse ülevaade | TÜ Moodle</title></head><body>
<div class="que"><div class="qtext"> what is   2+2? </div><div class="rightanswer">Õige vastus on: 4</div></div>
<div class="que"><div class="qtext">Largest lake?</div><input class="correct" value="Peipus"></div>
</body></html>`

func writePages(t *testing.T, dir string, pages map[string]string) {
	t.Helper()
	for name, content := range pages {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func testConfig(t *testing.T) *model.Config {
	t.Helper()
	root := t.TempDir()
	input := filepath.Join(root, "moodle")
	if err := os.Mkdir(input, 0755); err != nil {
		t.Fatal(err)
	}

	cfg := model.DefaultConfig()
	cfg.Input.Dir = input
	cfg.Output.CorpusPath = filepath.Join(root, "extracted_answers.md")
	cfg.Index.StoreDir = filepath.Join(root, "index")
	return cfg
}

func readCorpus(t *testing.T, cfg *model.Config) string {
	t.Helper()
	data, err := os.ReadFile(cfg.Output.CorpusPath)
	if err != nil {
		t.Fatalf("read corpus: %v", err)
	}
	return string(data)
}

func TestPipeline_Run(t *testing.T) {
	cfg := testConfig(t)
	writePages(t, cfg.Input.Dir, map[string]string{
		"b.html":     pageTwo,
		"a.HTML":     pageOne,
		"notes.txt":  "not a page",
		"a_files.js": "asset",
	})
	if err := os.Mkdir(filepath.Join(cfg.Input.Dir, "a_files"), 0755); err != nil {
		t.Fatal(err)
	}

	report, err := NewPipeline(cfg).Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.RunID == "" {
		t.Error("Expected a run id")
	}
	if report.Files != 2 || report.Failed != 0 {
		t.Errorf("Expected 2 files and no failures, got %d/%d", report.Files, report.Failed)
	}
	if report.Questions != 4 || report.New != 3 || report.Duplicates != 1 {
		t.Errorf("Unexpected counts: questions=%d new=%d duplicates=%d", report.Questions, report.New, report.Duplicates)
	}

	want := "Test 1 - Intro\n\n" +
		"Capital of Estonia?\n- Tallinn\n\n" +
		"What is 2+2?\n- 4\n\n" +
		"Test 2 - Review\n\n" +
		"Largest lake?\n- Peipus\n\n"
	if got := readCorpus(t, cfg); got != want {
		t.Errorf("Unexpected corpus:\n%s\nwant:\n%s", got, want)
	}
}

func TestPipeline_SecondRunAddsNothing(t *testing.T) {
	cfg := testConfig(t)
	writePages(t, cfg.Input.Dir, map[string]string{"a.html": pageOne, "b.html": pageTwo})

	if _, err := NewPipeline(cfg).Run(); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	before := readCorpus(t, cfg)

	report, err := NewPipeline(cfg).Run()
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if report.New != 0 || report.Duplicates != 4 {
		t.Errorf("Expected 0 new and 4 duplicates, got %d/%d", report.New, report.Duplicates)
	}
	if after := readCorpus(t, cfg); after != before {
		t.Errorf("Corpus changed on second run:\n%s", after)
	}
}

const pageAwkward = `<html><head><title>Test 3</title></head><body>
<div class="que"><div class="qtext"><img src="q.png"></div><div class="rightanswer">Õige vastus on: Tartu</div></div>
<div class="que"><div class="qtext">- 5 + 3 = ?</div><div class="rightanswer">Õige vastus on: 8</div></div>
<div class="que"><div class="qtext">Test: pick one</div><div class="rightanswer">Õige vastus on: B</div></div>
</body></html>`

func TestPipeline_AwkwardQuestionsStayDeduplicated(t *testing.T) {
	cfg := testConfig(t)
	writePages(t, cfg.Input.Dir, map[string]string{"c.html": pageAwkward})

	first, err := NewPipeline(cfg).Run()
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.New != 3 {
		t.Fatalf("Expected 3 new records, got %d", first.New)
	}
	want := "Test 3\n\n" +
		model.PlaceholderQuestion + "\n- Tartu\n\n" +
		"\\- 5 + 3 = ?\n- 8\n\n" +
		"\\Test: pick one\n- B\n\n"
	if got := readCorpus(t, cfg); got != want {
		t.Errorf("Unexpected corpus:\n%q\nwant:\n%q", got, want)
	}

	for run := 2; run <= 3; run++ {
		report, err := NewPipeline(cfg).Run()
		if err != nil {
			t.Fatalf("run %d failed: %v", run, err)
		}
		if report.New != 0 || report.Duplicates != 3 {
			t.Errorf("run %d: expected 0 new and 3 duplicates, got %d/%d", run, report.New, report.Duplicates)
		}
	}
	if got := readCorpus(t, cfg); got != want {
		t.Errorf("Corpus changed on later runs:\n%q", got)
	}
}

func TestPipeline_StoreMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Index.Mode = model.IndexModeStore

	// Pre-existing corpus seeds the store
	if err := os.WriteFile(cfg.Output.CorpusPath, []byte("Capital of Estonia?\n- Tallinn\n\n"), 0644); err != nil {
		t.Fatal(err)
	}
	writePages(t, cfg.Input.Dir, map[string]string{"a.html": pageOne})

	report, err := NewPipeline(cfg).Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.New != 1 || report.Duplicates != 1 {
		t.Errorf("Expected 1 new and 1 duplicate, got %d/%d", report.New, report.Duplicates)
	}

	// The store, not the text, is consulted from now on
	if err := os.Remove(cfg.Output.CorpusPath); err != nil {
		t.Fatal(err)
	}
	report, err = NewPipeline(cfg).Run()
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if report.New != 0 || report.Duplicates != 2 {
		t.Errorf("Expected store to remember both records, got new=%d duplicates=%d", report.New, report.Duplicates)
	}
}

func TestPipeline_DryRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.DryRun = true
	writePages(t, cfg.Input.Dir, map[string]string{"a.html": pageOne})

	report, err := NewPipeline(cfg).Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.New != 2 {
		t.Errorf("Expected 2 new records, got %d", report.New)
	}
	if _, err := os.Stat(cfg.Output.CorpusPath); !os.IsNotExist(err) {
		t.Error("Expected dry run to leave the corpus unwritten")
	}
}

func TestPipeline_FailingPageIsIsolated(t *testing.T) {
	cfg := testConfig(t)
	writePages(t, cfg.Input.Dir, map[string]string{"a.html": pageOne})

	list := filepath.Join(cfg.Input.Dir, "pages.txt")
	content := "# saved reviews\nmissing.html\na.html\n\na.html\n"
	if err := os.WriteFile(list, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg.Input.ListFile = list

	report, err := NewPipeline(cfg).Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.Files != 2 || report.Failed != 1 {
		t.Errorf("Expected 2 files with 1 failure, got %d/%d", report.Files, report.Failed)
	}
	if report.Documents[0].Error == "" || report.Documents[0].New != 0 {
		t.Errorf("Expected first document to fail without records: %+v", report.Documents[0])
	}
	if report.New != 2 {
		t.Errorf("Expected the healthy page to contribute 2 records, got %d", report.New)
	}
}

func TestPipeline_MissingInputDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Input.Dir = filepath.Join(cfg.Input.Dir, "nope")

	_, err := NewPipeline(cfg).Run()
	if !errors.Is(err, ErrInputDirNotFound) {
		t.Fatalf("Expected ErrInputDirNotFound, got %v", err)
	}
	if _, err := os.Stat(cfg.Output.CorpusPath); !os.IsNotExist(err) {
		t.Error("Expected no corpus to be written")
	}
}

func TestPipeline_NoInputFiles(t *testing.T) {
	cfg := testConfig(t)

	report, err := NewPipeline(cfg).Run()
	if err != nil {
		t.Fatalf("Expected empty input to be a normal exit, got %v", err)
	}
	if report.Files != 0 {
		t.Errorf("Expected 0 files, got %d", report.Files)
	}

	var buf bytes.Buffer
	RenderSummary(&buf, report)
	if !strings.Contains(buf.String(), "No HTML files found") {
		t.Errorf("Unexpected summary:\n%s", buf.String())
	}
}

func TestDiscover_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Discover(file)
	if !errors.Is(err, ErrInputDirNotFound) {
		t.Errorf("Expected ErrInputDirNotFound, got %v", err)
	}
}

func TestReadPathList_NonExistent(t *testing.T) {
	if _, err := ReadPathList(filepath.Join(t.TempDir(), "none.txt")); err == nil {
		t.Error("Expected error for missing list file")
	}
}

func TestLoader_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.html")
	if err := os.WriteFile(path, []byte(pageOne), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := NewLoader(10).Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !res.Truncated {
		t.Error("Expected page to be marked truncated")
	}
	if res.Name != "big.html" {
		t.Errorf("Unexpected name %q", res.Name)
	}
}

func TestLoader_Directory(t *testing.T) {
	if _, err := NewLoader(1024).Load(t.TempDir()); err == nil {
		t.Error("Expected error when loading a directory")
	}
}

func TestRenderJSONAndSummary(t *testing.T) {
	cfg := testConfig(t)
	writePages(t, cfg.Input.Dir, map[string]string{"a.html": pageOne})

	report, err := NewPipeline(cfg).Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "reports", "run.json")
	if err := RenderJSON(report, path); err != nil {
		t.Fatalf("RenderJSON failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded model.RunReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.New != 2 || len(decoded.Documents) != 1 || len(decoded.Documents[0].Accepted) != 2 {
		t.Errorf("Unexpected decoded report: %+v", decoded)
	}

	var buf bytes.Buffer
	RenderProgress(&buf, report)
	RenderSummary(&buf, report)
	out := buf.String()
	for _, want := range []string{"✓ a.html: 2 questions (2 new, 0 duplicate)", "New:         2", cfg.Output.CorpusPath} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output:\n%s", want, out)
		}
	}
}
