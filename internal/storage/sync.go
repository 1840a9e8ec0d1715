package storage

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Keys in the _meta table.
const (
	metaJSONLHash   = "jsonl_hash"
	metaLastRebuild = "last_rebuild"
)

// ComputeJSONLHash returns the blake2b-256 hex digest of a JSONL file's
// contents. A missing file hashes like an empty one.
func ComputeJSONLHash(path string) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return hex.EncodeToString(h.Sum(nil)), nil
		}
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// NeedsRebuild reports whether the index was built from a different version
// of the JSONL file, or never built at all.
func (d *DB) NeedsRebuild(jsonlPath string) (bool, error) {
	current, err := ComputeJSONLHash(jsonlPath)
	if err != nil {
		return true, err
	}
	stored, err := d.getMeta(metaJSONLHash)
	if err != nil {
		return true, err
	}
	return current != stored, nil
}

// LastRebuild returns when the index was last rebuilt, zero if never.
func (d *DB) LastRebuild() (time.Time, error) {
	v, err := d.getMeta(metaLastRebuild)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, v)
}

func (d *DB) getMeta(key string) (string, error) {
	var v sql.NullString
	err := d.db.QueryRow("SELECT value FROM _meta WHERE key = ?", key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v.String, nil
}

func setMeta(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec("INSERT OR REPLACE INTO _meta (key, value) VALUES (?, ?)", key, value)
	return err
}
