package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/matsen/bibextract/internal/reference"
)

// Item is an extracted reference and the document it came from.
type Item struct {
	Source string
	Ref    reference.ParsedReference
}

// Library is the pair of JSONL files holding saved references and runs.
type Library struct {
	RefsPath string
	RunsPath string
}

// NewLibrary returns a library over the given files.
func NewLibrary(refsPath, runsPath string) *Library {
	return &Library{RefsPath: refsPath, RunsPath: runsPath}
}

// Refs returns every saved reference in file order.
func (l *Library) Refs() ([]StoredRef, error) {
	return ReadAll(l.RefsPath)
}

// Runs returns the run log in file order.
func (l *Library) Runs() ([]Run, error) {
	return ReadRuns(l.RunsPath)
}

// Save appends items under a new run. Items whose fingerprint is already in
// the library, or earlier in items, are skipped. The run is logged even when
// nothing was added.
func (l *Library) Save(sources []string, items []Item, now time.Time) (Run, error) {
	existing, err := l.Refs()
	if err != nil {
		return Run{}, err
	}

	seen := make(map[string]bool, len(existing)+len(items))
	for _, r := range existing {
		seen[r.Fingerprint] = true
	}

	run := Run{
		ID:        uuid.NewString(),
		StartedAt: now.UTC(),
		Sources:   sources,
		Extracted: len(items),
	}

	for _, it := range items {
		fp := Fingerprint(it.Ref)
		if seen[fp] {
			run.Skipped++
			continue
		}
		seen[fp] = true

		stored := StoredRef{
			ID:          uuid.NewString(),
			RunID:       run.ID,
			Source:      it.Source,
			Fingerprint: fp,
			AddedAt:     run.StartedAt,
			Ref:         it.Ref,
		}
		if err := Append(l.RefsPath, stored); err != nil {
			return Run{}, fmt.Errorf("saving reference from %s: %w", it.Source, err)
		}
		run.Added++
	}

	if err := AppendRun(l.RunsPath, run); err != nil {
		return Run{}, err
	}
	return run, nil
}
