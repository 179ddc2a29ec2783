// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/decktools/pkg/types"
)

// QueryOptions holds parameters for catalog queries.
type QueryOptions struct {
	// Query holds whitespace-separated search terms over name and intro.
	// Every term must appear, as a substring. Terms shorter than three
	// characters fall back to a LIKE scan, which the trigram index cannot
	// serve.
	Query string

	// Country filters by country group.
	Country types.Country

	// DeckID filters by source deck.
	DeckID string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Country == "" && q.DeckID == ""
}

// Entry is a stored program with its provenance.
type Entry struct {
	ID         string        `json:"id" yaml:"id"`
	DeckID     string        `json:"deck_id" yaml:"deck_id"`
	DeckPath   string        `json:"deck_path" yaml:"deck_path"`
	SlideIndex int           `json:"slide_index" yaml:"slide_index"`
	Position   int           `json:"position" yaml:"position"`
	Country    types.Country `json:"country" yaml:"country"`

	types.Program `yaml:",inline"`
}

const selectEntry = `SELECT p.id, p.deck_id, d.path, p.slide_index, p.position, p.country,
	p.name, p.duration, p.fee, p.intro, p.raw`

// Query searches the catalog. Full-text queries are ranked by relevance;
// filter-only queries are ordered by deck, slide, and position.
func (s *Store) Query(ctx context.Context, opts QueryOptions) ([]Entry, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		terms  = strings.Fields(opts.Query)
		useFTS = len(terms) > 0 && !hasShortTerm(terms)
	)
	qb.WriteString(selectEntry)
	switch {
	case useFTS:
		qb.WriteString(`
			FROM programs_fts
			JOIN programs p ON p.rowid = programs_fts.rowid
			JOIN decks d ON d.id = p.deck_id
			WHERE programs_fts MATCH ?`)
		args = append(args, ftsPhrases(terms))
	default:
		qb.WriteString(`
			FROM programs p
			JOIN decks d ON d.id = p.deck_id
			WHERE 1=1`)
		for _, term := range terms {
			pattern := "%" + escapeLike(term) + "%"
			qb.WriteString(` AND (p.name LIKE ? ESCAPE '\' OR p.intro LIKE ? ESCAPE '\')`)
			args = append(args, pattern, pattern)
		}
	}

	if opts.Country != "" {
		qb.WriteString(` AND p.country = ?`)
		args = append(args, string(opts.Country))
	}
	if opts.DeckID != "" {
		qb.WriteString(` AND p.deck_id = ?`)
		args = append(args, opts.DeckID)
	}

	if useFTS {
		qb.WriteString(` ORDER BY programs_fts.rank`)
	} else {
		qb.WriteString(` ORDER BY d.path, p.slide_index, p.position`)
	}
	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// trigramLen is the shortest term the trigram index can match.
const trigramLen = 3

func hasShortTerm(terms []string) bool {
	for _, t := range terms {
		if utf8.RuneCountInString(t) < trigramLen {
			return true
		}
	}
	return false
}

// ftsPhrases quotes each term as an FTS5 string so punctuation such as
// "U.S." is matched literally.
func ftsPhrases(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(quoted, " ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Get returns the program with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, selectEntry+`
		FROM programs p
		JOIN decks d ON d.id = p.deck_id
		WHERE p.id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e       Entry
		country string
		name    sql.NullString
		dur     sql.NullString
		fee     sql.NullString
		intro   sql.NullString
		rawJSON sql.NullString
	)
	if err := sc.Scan(
		&e.ID, &e.DeckID, &e.DeckPath, &e.SlideIndex, &e.Position, &country,
		&name, &dur, &fee, &intro, &rawJSON,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scanning row: %w", err)
	}

	e.Country = types.Country(country)
	e.Name, e.Duration, e.Fee, e.Intro = name.String, dur.String, fee.String, intro.String
	if rawJSON.Valid && rawJSON.String != "" {
		if err := json.Unmarshal([]byte(rawJSON.String), &e.Raw); err != nil {
			return Entry{}, fmt.Errorf("decoding raw lines of %s: %w", e.ID, err)
		}
	}
	return e, nil
}
