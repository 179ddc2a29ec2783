// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists extracted program records in a SQLite database
// with a full-text index over program names and descriptions.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/decktools/pkg/types"
)

const (
	dbFile = "catalog.db"

	defaultDir        = ".decktools/catalog"
	defaultMaxResults = 20

	// ftsTokenizer indexes every three-character window, so substrings of
	// unsegmented Chinese text are searchable.
	ftsTokenizer = "tokenize='trigram'"
)

// ErrNotFound is returned when a program ID is not in the catalog.
var ErrNotFound = errors.New("program not found")

// namespace scopes the name-based UUIDs of decks and programs.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("decktools/catalog"))

// Extractor reads a deck into a fee report. *fees.Runner implements it.
type Extractor interface {
	ExtractFile(ctx context.Context, path string) (types.FeeReport, error)
}

// Store manages the catalog database.
type Store struct {
	db         *sql.DB
	dir        string
	maxResults int
	extractor  Extractor
	logger     *zap.Logger
}

// NewStore opens or creates the catalog at cfg.Dir/catalog.db and creates
// the schema if it does not exist. The extractor is used by Ingest and may
// be nil when the store is only queried.
func NewStore(cfg types.CatalogConfig, ext Extractor, logger *zap.Logger) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = defaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dir, dbFile)+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		db:         db,
		dir:        dir,
		maxResults: maxResults,
		extractor:  ext,
		logger:     logger,
	}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS decks (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL UNIQUE,
			mod_time TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS programs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			deck_id TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
			slide_index INTEGER NOT NULL,
			position INTEGER NOT NULL,
			country TEXT NOT NULL,
			name TEXT,
			duration TEXT,
			fee TEXT,
			intro TEXT,
			raw TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_programs_deck_id ON programs(deck_id)`,
		`CREATE INDEX IF NOT EXISTS idx_programs_country ON programs(country)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	var ftsSQL string
	err := s.db.QueryRow(
		`SELECT sql FROM sqlite_master WHERE type='table' AND name='programs_fts'`,
	).Scan(&ftsSQL)
	switch {
	case err == nil && strings.Contains(ftsSQL, ftsTokenizer):
		return nil
	case err == nil:
		// Catalogs from earlier versions used the unicode61 tokenizer.
		s.logger.Info("rebuilding full-text index", zap.String("tokenizer", ftsTokenizer))
		for _, stmt := range []string{
			`DROP TRIGGER IF EXISTS programs_ai`,
			`DROP TRIGGER IF EXISTS programs_ad`,
			`DROP TRIGGER IF EXISTS programs_au`,
			`DROP TABLE programs_fts`,
		} {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("dropping old FTS index: %w", err)
			}
		}
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("checking FTS table: %w", err)
	}

	ftsStatements := []string{
		`CREATE VIRTUAL TABLE programs_fts USING fts5(name, intro, content=programs, content_rowid=rowid, ` + ftsTokenizer + `)`,
		`CREATE TRIGGER programs_ai AFTER INSERT ON programs BEGIN
			INSERT INTO programs_fts(rowid, name, intro) VALUES (new.rowid, new.name, new.intro);
		END`,
		`CREATE TRIGGER programs_ad AFTER DELETE ON programs BEGIN
			INSERT INTO programs_fts(programs_fts, rowid, name, intro) VALUES('delete', old.rowid, old.name, old.intro);
		END`,
		`CREATE TRIGGER programs_au AFTER UPDATE ON programs BEGIN
			INSERT INTO programs_fts(programs_fts, rowid, name, intro) VALUES('delete', old.rowid, old.name, old.intro);
			INSERT INTO programs_fts(rowid, name, intro) VALUES (new.rowid, new.name, new.intro);
		END`,
		`INSERT INTO programs_fts(programs_fts) VALUES('rebuild')`,
	}
	for _, stmt := range ftsStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating FTS infrastructure: %w", err)
		}
	}
	return nil
}

// DeckID returns the catalog ID of the deck at path.
func DeckID(path string) string {
	return uuid.NewSHA1(namespace, []byte(path)).String()
}

// ProgramID returns the catalog ID of the program at position (1-based)
// on a slide of the deck at path.
func ProgramID(path string, slide, position int) string {
	return uuid.NewSHA1(namespace, fmt.Appendf(nil, "%s#%d#%d", path, slide, position)).String()
}

// IngestSummary holds counts from a catalog indexing run.
type IngestSummary struct {
	Indexed int
	Updated int
	Skipped int
	Failed  int
}

// Total returns the number of decks processed.
func (s IngestSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Ingest extracts each deck in paths and stores its programs. Decks whose
// modification time matches the stored one are skipped; changed decks
// have their programs replaced. On any change export.yaml is rewritten.
func (s *Store) Ingest(ctx context.Context, paths []string, w io.Writer) (IngestSummary, error) {
	if s.extractor == nil {
		return IngestSummary{}, errors.New("catalog has no extractor")
	}

	var summary IngestSummary
	for _, p := range paths {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		path, err := filepath.Abs(p)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", p, err)
			summary.Failed++
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", p, err)
			summary.Failed++
			continue
		}

		stored, known, err := s.modTime(ctx, path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", p, err)
			summary.Failed++
			continue
		}
		if known && stored == formatTime(info.ModTime()) {
			fmt.Fprintf(w, "skipped %s\n", p)
			summary.Skipped++
			continue
		}

		report, err := s.extractor.ExtractFile(ctx, path)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", p, err)
			summary.Failed++
			continue
		}
		report.Source = path

		if err := s.Put(ctx, report, info.ModTime()); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", p, err)
			summary.Failed++
			continue
		}

		if known {
			fmt.Fprintf(w, "updated %s (%d programs)\n", p, report.ProgramCount())
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexing %s (%d programs)\n", p, report.ProgramCount())
			summary.Indexed++
		}
	}

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Failed)

	if summary.Indexed > 0 || summary.Updated > 0 {
		if err := s.ExportYAML(ctx, QueryOptions{}); err != nil {
			fmt.Fprintf(w, "warning: export.yaml write failed: %v\n", err)
		}
	}
	return summary, nil
}

// Put stores the programs of report under its Source deck, replacing any
// programs previously stored for that deck. Relative sources are made
// absolute.
func (s *Store) Put(ctx context.Context, report types.FeeReport, modTime time.Time) error {
	if report.Source == "" {
		return errors.New("report has no source deck")
	}
	source, err := filepath.Abs(report.Source)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", report.Source, err)
	}
	report.Source = source
	deckID := DeckID(source)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM programs WHERE deck_id = ?`, deckID); err != nil {
		return fmt.Errorf("deleting old programs: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO decks (id, path, mod_time) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET mod_time=excluded.mod_time`,
		deckID, report.Source, formatTime(modTime),
	); err != nil {
		return fmt.Errorf("upserting deck: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO programs (id, deck_id, slide_index, position, country, name, duration, fee, intro, raw)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, country := range types.CountryOrder {
		for _, g := range report.Groups[country] {
			for i, p := range g.Programs {
				id := ProgramID(report.Source, g.SlideIndex, i+1)
				rawJSON, err := json.Marshal(p.Raw)
				if err != nil {
					return fmt.Errorf("encoding raw lines of %s: %w", id, err)
				}
				if _, err := stmt.ExecContext(ctx,
					id, deckID, g.SlideIndex, i+1, string(country),
					p.Name, p.Duration, p.Fee, p.Intro, string(rawJSON),
				); err != nil {
					return fmt.Errorf("inserting program %s: %w", id, err)
				}
				n++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	s.logger.Debug("stored programs", zap.String("deck", report.Source), zap.Int("programs", n))
	return nil
}

// modTime returns the stored modification time of the deck at path and
// whether the deck is known.
func (s *Store) modTime(ctx context.Context, path string) (string, bool, error) {
	var stored sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT mod_time FROM decks WHERE path = ?`, path).Scan(&stored)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up deck: %w", err)
	}
	return stored.String, true, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
