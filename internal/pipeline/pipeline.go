package pipeline

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/moodlebank/internal/corpus"
	"github.com/ppiankov/moodlebank/internal/dedupe"
	"github.com/ppiankov/moodlebank/internal/extract"
	"github.com/ppiankov/moodlebank/internal/model"
	"github.com/rs/zerolog/log"
)

// Pipeline orchestrates a complete extraction run
type Pipeline struct {
	loader    *Loader
	extractor *extract.QuizExtractor
	config    *model.Config
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	return &Pipeline{
		loader:    NewLoader(cfg.Input.MaxBytes),
		extractor: extract.NewQuizExtractor(),
		config:    cfg,
	}
}

// Run processes every input page in order and appends the new records to the
// corpus. Only a missing input directory, an unreadable corpus or a failed
// write end the run with an error; a page that cannot be processed is
// reported and skipped.
func (p *Pipeline) Run() (*model.RunReport, error) {
	report := &model.RunReport{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Output:    p.config.Output.CorpusPath,
		IndexMode: p.config.Index.Mode,
		DryRun:    p.config.Output.DryRun,
		Documents: []model.DocumentReport{},
	}
	if p.config.Input.ListFile == "" {
		report.InputDir = p.config.Input.Dir
	}

	paths, err := p.inputs()
	if err != nil {
		return nil, err
	}
	report.Files = len(paths)
	if len(paths) == 0 {
		log.Info().Str("dir", p.config.Input.Dir).Msg("no input pages found")
		return report, nil
	}

	base, err := p.openIdentities()
	if err != nil {
		return nil, err
	}
	staged := dedupe.NewStaged(base)

	var out bytes.Buffer
	for _, path := range paths {
		doc, err := p.processFile(path, staged, &out)
		if err != nil {
			return nil, err
		}

		report.Documents = append(report.Documents, doc)
		if doc.Error != "" {
			report.Failed++
			continue
		}
		report.Questions += doc.Questions
		report.New += doc.New
		report.Duplicates += doc.Duplicates
	}

	if p.config.Output.DryRun {
		log.Info().Int("new", report.New).Msg("dry run; corpus not written")
		return report, nil
	}
	if out.Len() == 0 {
		return report, nil
	}

	if err := corpus.AppendFile(p.config.Output.CorpusPath, out.Bytes()); err != nil {
		return nil, fmt.Errorf("append corpus: %w", err)
	}
	if err := staged.Commit(); err != nil {
		return nil, fmt.Errorf("commit index: %w", err)
	}
	log.Info().Str("out", p.config.Output.CorpusPath).Int("new", report.New).Msg("appended to corpus")

	return report, nil
}

// processFile extracts one page and reconciles it. Read and parse failures
// are recorded on the returned report; the error return is reserved for
// failures that must stop the run.
func (p *Pipeline) processFile(path string, set dedupe.IdentitySet, out *bytes.Buffer) (model.DocumentReport, error) {
	dr := model.DocumentReport{File: path}

	loaded, err := p.loader.Load(path)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("processing failed; skipping page")
		dr.Error = err.Error()
		return dr, nil
	}

	doc := p.extractor.Extract(loaded.Doc, loaded.Name)
	dr.TestName = doc.TestName
	dr.Questions = len(doc.Records)

	res, err := dedupe.Reconcile(set, doc.Records)
	if err != nil {
		return dr, fmt.Errorf("reconcile %s: %w", path, err)
	}
	dr.New = len(res.Accepted)
	dr.Duplicates = res.Duplicates
	dr.Accepted = res.Accepted

	if err := corpus.WriteBatch(out, doc.TestName, res.Accepted); err != nil {
		return dr, err
	}

	log.Debug().
		Str("file", loaded.Name).
		Str("test", doc.TestName).
		Int("questions", dr.Questions).
		Int("new", dr.New).
		Int("duplicates", dr.Duplicates).
		Msg("processed page")
	return dr, nil
}

func (p *Pipeline) inputs() ([]string, error) {
	if p.config.Input.ListFile != "" {
		return ReadPathList(p.config.Input.ListFile)
	}
	return Discover(p.config.Input.Dir)
}

// openIdentities returns the identities already committed to the corpus
func (p *Pipeline) openIdentities() (dedupe.IdentitySet, error) {
	switch p.config.Index.Mode {
	case model.IndexModeStore:
		store, err := corpus.OpenStore(p.config.Index.StoreDir, p.config.Output.CorpusPath)
		if err != nil {
			return nil, fmt.Errorf("open identity store: %w", err)
		}
		return store, nil
	default:
		idx, err := corpus.LoadIndex(p.config.Output.CorpusPath)
		if err != nil {
			return nil, fmt.Errorf("load corpus index: %w", err)
		}
		log.Debug().Int("identities", idx.Len()).Msg("loaded corpus index")
		return idx, nil
	}
}
