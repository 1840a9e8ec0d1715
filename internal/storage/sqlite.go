package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS refs (
			id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			source TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			title TEXT,
			author TEXT,
			year INTEGER,
			journal TEXT,
			doi TEXT,
			confidence REAL NOT NULL,
			parser TEXT NOT NULL,
			record_json TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_refs_doi ON refs(doi) WHERE doi IS NOT NULL AND doi != '';
		CREATE INDEX IF NOT EXISTS idx_refs_fingerprint ON refs(fingerprint);

		CREATE TABLE IF NOT EXISTS _meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS refs_fts USING fts5(
			id UNINDEXED,
			title,
			authors_text,
			journal
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from a JSONL file.
// The file's hash is recorded so NeedsRebuild can detect later edits.
func (d *DB) RebuildFromJSONL(jsonlPath string) (int, error) {
	hash, err := ComputeJSONLHash(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("computing hash: %w", err)
	}

	refs, err := ReadAll(jsonlPath)
	if err != nil {
		return 0, fmt.Errorf("reading JSONL: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM refs"); err != nil {
		return 0, fmt.Errorf("clearing refs table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM refs_fts"); err != nil {
		return 0, fmt.Errorf("clearing refs_fts table: %w", err)
	}

	refsStmt, err := tx.Prepare(`
		INSERT INTO refs (
			id, run_id, source, fingerprint,
			title, author, year, journal, doi,
			confidence, parser, record_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing refs insert: %w", err)
	}
	defer refsStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO refs_fts (id, title, authors_text, journal)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, r := range refs {
		record, err := json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("encoding ref %s: %w", r.ID, err)
		}

		ref := r.Ref
		_, err = refsStmt.Exec(
			r.ID, r.RunID, r.Source, r.Fingerprint,
			nullableStringValue(ref.Title), nullableStringValue(ref.Author),
			nullableYear(ref.Year), nullableStringValue(ref.Journal),
			nullableStringValue(strings.ToLower(ref.DOI)),
			ref.Confidence, string(ref.Parser), string(record),
		)
		if err != nil {
			return 0, fmt.Errorf("inserting ref %s: %w", r.ID, err)
		}

		_, err = ftsStmt.Exec(r.ID, ref.Title, authorsText(r), ref.Journal)
		if err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", r.ID, err)
		}
	}

	if err := setMeta(tx, metaJSONLHash, hash); err != nil {
		return 0, fmt.Errorf("updating hash: %w", err)
	}
	if err := setMeta(tx, metaLastRebuild, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return 0, fmt.Errorf("updating rebuild time: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(refs), nil
}

// authorsText creates a searchable text representation of authors.
func authorsText(r StoredRef) string {
	if len(r.Ref.Authors) > 0 {
		return strings.Join(r.Ref.Authors, ", ")
	}
	return r.Ref.Author
}

// SearchFilters contains optional filters for Search. Text filters go
// through FTS5, the rest are SQL conditions. All filters are ANDed.
type SearchFilters struct {
	Keyword       string   // General keyword search across title, authors and journal
	Title         string   // Search in title only (FTS)
	Authors       []string // Author names (AND logic, prefix matching)
	Journal       string   // Filter by journal (SQL LIKE, case-insensitive)
	YearFrom      int      // Minimum year (0 = no minimum)
	YearTo        int      // Maximum year (0 = no maximum)
	DOI           string   // Exact DOI match
	Source        string   // Exact source document path
	MinConfidence float64  // Minimum parse confidence (0 = any)
}

// Search returns stored references matching every filter, in insertion
// order. limit <= 0 means no limit.
func (d *DB) Search(filters SearchFilters, limit int) ([]StoredRef, error) {
	query, args, err := buildSearch(filters, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building search query: %w", err)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("searching with filters: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

func buildSearch(filters SearchFilters, limit int) sq.SelectBuilder {
	q := sq.Select("record_json").From("refs")

	var ftsTerms []string
	if filters.Keyword != "" {
		ftsTerms = append(ftsTerms, prepareFTSQuery(filters.Keyword))
	}
	if filters.Title != "" {
		ftsTerms = append(ftsTerms, "title:"+prepareFTSQuery(filters.Title))
	}
	for _, author := range filters.Authors {
		if author = strings.TrimSpace(author); author != "" {
			ftsTerms = append(ftsTerms, "authors_text:"+prepareAuthorQuery(author))
		}
	}
	if len(ftsTerms) > 0 {
		q = q.Where("id IN (SELECT id FROM refs_fts WHERE refs_fts MATCH ?)", strings.Join(ftsTerms, " AND "))
	}

	if filters.YearFrom > 0 {
		q = q.Where(sq.GtOrEq{"year": filters.YearFrom})
	}
	if filters.YearTo > 0 {
		q = q.Where(sq.LtOrEq{"year": filters.YearTo})
	}
	if filters.Journal != "" {
		q = q.Where(sq.Like{"journal": "%" + filters.Journal + "%"})
	}
	if filters.DOI != "" {
		q = q.Where(sq.Eq{"doi": strings.ToLower(filters.DOI)})
	}
	if filters.Source != "" {
		q = q.Where(sq.Eq{"source": filters.Source})
	}
	if filters.MinConfidence > 0 {
		q = q.Where(sq.GtOrEq{"confidence": filters.MinConfidence})
	}

	q = q.OrderBy("rowid")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	return q
}

// GetByID retrieves a stored reference by its ID, or nil if absent.
func (d *DB) GetByID(id string) (*StoredRef, error) {
	var record string
	err := d.db.QueryRow(`SELECT record_json FROM refs WHERE id = ?`, id).Scan(&record)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return decodeRecord(record)
}

// Count returns the total number of references.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM refs").Scan(&count)
	return count, err
}

func scanRecords(rows *sql.Rows) ([]StoredRef, error) {
	var out []StoredRef
	for rows.Next() {
		var record string
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}
		r, err := decodeRecord(record)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

func decodeRecord(record string) (*StoredRef, error) {
	var r StoredRef
	if err := json.Unmarshal([]byte(record), &r); err != nil {
		return nil, fmt.Errorf("parsing stored record: %w", err)
	}
	return &r, nil
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableYear(year string) sql.NullInt64 {
	n, err := strconv.Atoi(year)
	if err != nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(n), Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}

// prepareAuthorQuery prepares an author name for FTS5 search with prefix matching,
// so "Jon" matches "Jonaitis".
func prepareAuthorQuery(author string) string {
	var terms []string
	for _, part := range strings.Fields(author) {
		escaped := strings.ReplaceAll(strings.Trim(part, ".,"), "\"", "\"\"")
		if escaped == "" {
			continue
		}
		terms = append(terms, "\""+escaped+"\"*")
	}
	if len(terms) == 0 {
		return `""`
	}
	// Use OR for multi-word author queries (match any part)
	return "(" + strings.Join(terms, " OR ") + ")"
}
