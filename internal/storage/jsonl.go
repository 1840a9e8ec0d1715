// Package storage handles data persistence in JSONL and SQLite formats.
//
// JSONL files under .bibx are the source of truth; the SQLite database in
// .bibx/cache is a query index rebuilt from them.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/matsen/bibextract/internal/reference"
)

// MaxJSONLLineCapacity is the maximum buffer size for reading JSONL lines (1MB per line).
const MaxJSONLLineCapacity = 1024 * 1024

// StoredRef is one line of refs.jsonl.
type StoredRef struct {
	ID          string                    `json:"id"`
	RunID       string                    `json:"run_id"`
	Source      string                    `json:"source"`
	Fingerprint string                    `json:"fingerprint"`
	AddedAt     time.Time                 `json:"added_at"`
	Ref         reference.ParsedReference `json:"ref"`
}

// Run is one line of runs.jsonl: a single saved extraction.
type Run struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	Sources   []string  `json:"sources"`
	Extracted int       `json:"extracted"`
	Added     int       `json:"added"`
	Skipped   int       `json:"skipped"`
}

// ReadAll reads all stored references from a JSONL file.
// A missing file is an empty library.
func ReadAll(path string) ([]StoredRef, error) {
	return readJSONL[StoredRef](path, "refs")
}

// ReadRuns reads the run log.
func ReadRuns(path string) ([]Run, error) {
	return readJSONL[Run](path, "runs")
}

// Append adds a stored reference to the end of a JSONL file.
func Append(path string, ref StoredRef) error {
	return appendJSONL(path, "refs", ref)
}

// AppendRun adds a run to the end of the run log.
func AppendRun(path string, run Run) error {
	return appendJSONL(path, "runs", run)
}

// WriteAll writes all stored references to a JSONL file, replacing existing content.
func WriteAll(path string, refs []StoredRef) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating refs file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i, ref := range refs {
		data, err := json.Marshal(ref)
		if err != nil {
			return fmt.Errorf("encoding reference %d: %w", i, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("writing reference %d: %w", i, err)
		}
	}
	return w.Flush()
}

// FindByDOI searches for a stored reference by DOI.
func FindByDOI(refs []StoredRef, doi string) (int, bool) {
	if doi == "" {
		return -1, false
	}
	for i, r := range refs {
		if r.Ref.DOI == doi {
			return i, true
		}
	}
	return -1, false
}

// FindByID searches for a stored reference by ID.
func FindByID(refs []StoredRef, id string) (int, bool) {
	for i, r := range refs {
		if r.ID == id {
			return i, true
		}
	}
	return -1, false
}

func readJSONL[T any](path, what string) ([]T, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening %s file: %w", what, err)
	}
	defer f.Close()

	var out []T
	scanner := bufio.NewScanner(f)

	// Increase buffer size for long lines
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var v T
		if err := json.Unmarshal(line, &v); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", what, lineNum, err)
		}
		out = append(out, v)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s file: %w", what, err)
	}

	return out, nil
}

func appendJSONL(path, what string, v any) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening %s file for append: %w", what, err)
	}
	defer f.Close()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", what, err)
	}

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing %s record: %w", what, err)
	}
	return nil
}
