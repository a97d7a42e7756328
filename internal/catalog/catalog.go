// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog loads classified papers into a SQLite database so they
// can be listed by category across years.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-sorter/internal/scrape"
	"github.com/pdiddy/paper-sorter/pkg/types"
)

// DefaultFile is the database file name used when no path is configured.
const DefaultFile = "catalog.db"

// Store manages the catalog SQLite database.
type Store struct {
	db *sql.DB
}

// Entry is one paper/category pairing returned by ByCategory.
type Entry struct {
	Year     int
	Title    string
	PDFLink  string
	Category string
}

// CategoryCount is the number of papers carrying a category.
type CategoryCount struct {
	Category string
	Papers   int
}

// Open opens or creates the catalog at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
		`CREATE TABLE IF NOT EXISTS papers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			year INTEGER NOT NULL,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			pdf_link TEXT,
			UNIQUE (year, position)
		)`,
		`CREATE TABLE IF NOT EXISTS paper_categories (
			paper_id INTEGER NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			category TEXT NOT NULL,
			PRIMARY KEY (paper_id, category)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_year ON papers(year)`,
		`CREATE INDEX IF NOT EXISTS idx_paper_categories_category ON paper_categories(category)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Ingest replaces every row for year with records. Records without
// categories are stored without category rows. Returns the number of
// papers written.
func (s *Store) Ingest(ctx context.Context, year int, records []types.ClassifiedPaperRecord) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE year = ?`, year); err != nil {
		return 0, fmt.Errorf("clearing year %d: %w", year, err)
	}

	paperStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO papers (year, position, title, pdf_link) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing paper insert: %w", err)
	}
	defer paperStmt.Close()

	catStmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO paper_categories (paper_id, category) VALUES (?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing category insert: %w", err)
	}
	defer catStmt.Close()

	for i, r := range records {
		var link sql.NullString
		if r.PDFLink != nil {
			link = sql.NullString{String: *r.PDFLink, Valid: true}
		}

		res, err := paperStmt.ExecContext(ctx, year, i, r.Title, link)
		if err != nil {
			return 0, fmt.Errorf("inserting %q: %w", r.Title, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("reading id for %q: %w", r.Title, err)
		}

		for _, c := range r.Categories {
			if _, err := catStmt.ExecContext(ctx, id, c); err != nil {
				return 0, fmt.Errorf("tagging %q with %q: %w", r.Title, c, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing year %d: %w", year, err)
	}
	return len(records), nil
}

// IngestCheckpoint loads pdf_links_<year>_updated.json from workDir.
func (s *Store) IngestCheckpoint(ctx context.Context, workDir string, year int) (int, error) {
	var records []types.ClassifiedPaperRecord
	if err := scrape.ReadJSON(scrape.UpdatedPath(workDir, year), &records); err != nil {
		return 0, err
	}
	return s.Ingest(ctx, year, records)
}

// ByCategory lists papers tagged with category, ordered by year and listing
// position. A year of 0 matches every year.
func (s *Store) ByCategory(ctx context.Context, category string, year int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.year, p.title, COALESCE(p.pdf_link, ''), c.category
		FROM papers p
		JOIN paper_categories c ON c.paper_id = p.id
		WHERE c.category = ? AND (? = 0 OR p.year = ?)
		ORDER BY p.year, p.position`,
		category, year, year)
	if err != nil {
		return nil, fmt.Errorf("querying category %q: %w", category, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Year, &e.Title, &e.PDFLink, &e.Category); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Counts returns per-category paper totals, largest first. A year of 0
// counts across every year.
func (s *Store) Counts(ctx context.Context, year int) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.category, COUNT(*) AS n
		FROM paper_categories c
		JOIN papers p ON p.id = c.paper_id
		WHERE ? = 0 OR p.year = ?
		GROUP BY c.category
		ORDER BY n DESC, c.category`,
		year, year)
	if err != nil {
		return nil, fmt.Errorf("counting categories: %w", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Papers); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Years lists the years present in the catalog in ascending order.
func (s *Store) Years(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT year FROM papers ORDER BY year`)
	if err != nil {
		return nil, fmt.Errorf("listing years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("scanning year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}
