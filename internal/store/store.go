// Package store persists crawled job rows in SQLite and serves the review
// queries used by the jobs subcommands.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/rolehounds/jobscrawler/internal/crawler"
	"github.com/rolehounds/jobscrawler/internal/metrics"
)

// Table names. Production runs write to main_jobs, test runs to test.
const (
	MainTable = "main_jobs"
	TestTable = "test"
)

const createTableTemplate = `
CREATE TABLE IF NOT EXISTS %s (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	title         TEXT NOT NULL,
	link          TEXT NOT NULL UNIQUE,
	description   TEXT,
	pubdate       TEXT,
	location      TEXT,
	timestamp     DATETIME DEFAULT CURRENT_TIMESTAMP,
	location_tags TEXT,
	status        TEXT DEFAULT 'new',
	notes         TEXT
);`

// Store wraps the SQLite handle with the crawl and review operations.
type Store struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// Job models one persisted row for the review tooling.
type Job struct {
	ID           int64          `db:"id"`
	Title        string         `db:"title"`
	Link         string         `db:"link"`
	Description  sql.NullString `db:"description"`
	PubDate      sql.NullString `db:"pubdate"`
	Location     sql.NullString `db:"location"`
	Timestamp    string         `db:"timestamp"`
	LocationTags sql.NullString `db:"location_tags"`
	Status       sql.NullString `db:"status"`
	Notes        sql.NullString `db:"notes"`
}

// NextFilter narrows the review queue returned by NextJobs. Zero values
// leave the corresponding clause out.
type NextFilter struct {
	LinkLike             string
	TitleIncludes        []string
	TitleExcludes        []string
	DescriptionIncludes  []string
	Limit                int
}

// Open connects to the SQLite file at path, creating parent directories
// and both tables on first use.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// SQLite serializes writers; a single connection avoids lock errors
	// when the three strategy families insert concurrently.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Table selects the destination table for a run.
func Table(test bool) string {
	if test {
		return TestTable
	}
	return MainTable
}

func (s *Store) ensureSchema() error {
	for _, table := range []string{MainTable, TestTable} {
		if _, err := s.db.Exec(fmt.Sprintf(createTableTemplate, table)); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
		if err := s.migrateReviewColumns(table); err != nil {
			return err
		}
		indexes := []string{
			fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS idx_%s_link ON %s (link)", table, table),
			fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_timestamp ON %s (timestamp)", table, table),
		}
		for _, stmt := range indexes {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("create index on %s: %w", table, err)
			}
		}
	}
	return nil
}

// migrateReviewColumns adds the status and notes columns to tables created
// before the review workflow existed.
func (s *Store) migrateReviewColumns(table string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspect table %s: %w", table, err)
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &defaultVal, &pk); err != nil {
			return fmt.Errorf("scan table info for %s: %w", table, err)
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read table info for %s: %w", table, err)
	}

	additions := map[string]string{
		"status": fmt.Sprintf("ALTER TABLE %s ADD COLUMN status TEXT DEFAULT 'new'", table),
		"notes":  fmt.Sprintf("ALTER TABLE %s ADD COLUMN notes TEXT", table),
	}
	for column, stmt := range additions {
		if existing[column] {
			continue
		}
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("add column %s to %s: %w", column, table, err)
		}
		s.logger.Info("Added review column", zap.String("table", table), zap.String("column", column))
	}
	return nil
}

func validTable(table string) error {
	if table != MainTable && table != TestTable {
		return fmt.Errorf("unknown table %q", table)
	}
	return nil
}

// InsertRecord persists one row, reporting whether it was actually written.
// A link already present leaves the existing row untouched.
func (s *Store) InsertRecord(ctx context.Context, table string, rec crawler.Record) (bool, error) {
	if err := validTable(table); err != nil {
		return false, err
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (title, link, description, pubdate, location, timestamp, location_tags)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (link) DO NOTHING`, table)

	res, err := s.db.ExecContext(ctx, query,
		rec.Title,
		rec.Link,
		rec.Description,
		rec.PubDate,
		rec.Location,
		rec.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		rec.LocationTags,
	)
	if err != nil {
		return false, fmt.Errorf("insert row: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		metrics.DuplicateLinks.Inc()
		s.logger.Debug("Conflict on insert, link already stored", zap.String("link", rec.Link))
		return false, nil
	}
	return true, nil
}

// LinkExists reports whether a link is already stored in table.
func (s *Store) LinkExists(ctx context.Context, table, link string) (bool, error) {
	if err := validTable(table); err != nil {
		return false, err
	}
	var count int
	query := fmt.Sprintf("SELECT COUNT(1) FROM %s WHERE link = ?", table)
	if err := s.db.GetContext(ctx, &count, query, link); err != nil {
		return false, fmt.Errorf("check link: %w", err)
	}
	return count > 0, nil
}

// Count reports the number of stored rows in table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	if err := validTable(table); err != nil {
		return 0, err
	}
	var count int
	query := fmt.Sprintf("SELECT COUNT(1) FROM %s", table)
	if err := s.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return count, nil
}

// NextJobs returns unreviewed rows matching the filter, newest first.
func (s *Store) NextJobs(ctx context.Context, table string, filter NextFilter) ([]Job, error) {
	if err := validTable(table); err != nil {
		return nil, err
	}

	var (
		clauses = []string{"(status IS NULL OR status = 'new')"}
		args    []any
	)
	if filter.LinkLike != "" {
		clauses = append(clauses, "link LIKE ?")
		args = append(args, "%"+filter.LinkLike+"%")
	}
	for _, kw := range filter.TitleIncludes {
		clauses = append(clauses, "LOWER(title) LIKE ?")
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}
	for _, kw := range filter.TitleExcludes {
		clauses = append(clauses, "LOWER(title) NOT LIKE ?")
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}
	for _, kw := range filter.DescriptionIncludes {
		clauses = append(clauses, "LOWER(description) LIKE ?")
		args = append(args, "%"+strings.ToLower(kw)+"%")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 1
	}

	query := fmt.Sprintf(
		"SELECT * FROM %s WHERE %s ORDER BY timestamp DESC LIMIT %d",
		table, strings.Join(clauses, " AND "), limit,
	)

	var jobs []Job
	if err := s.db.SelectContext(ctx, &jobs, query, args...); err != nil {
		return nil, fmt.Errorf("select next jobs: %w", err)
	}
	return jobs, nil
}

// UpdateStatus sets the review status (and optional notes) on one row,
// addressed by id or by link. Returns the number of rows changed.
func (s *Store) UpdateStatus(ctx context.Context, table string, id int64, link, status, notes string) (int64, error) {
	if err := validTable(table); err != nil {
		return 0, err
	}
	if id == 0 && link == "" {
		return 0, fmt.Errorf("either id or link must be given")
	}

	var (
		where string
		key   any
	)
	if id != 0 {
		where, key = "id = ?", id
	} else {
		where, key = "link = ?", link
	}

	query := fmt.Sprintf("UPDATE %s SET status = ?, notes = COALESCE(NULLIF(?, ''), notes) WHERE %s", table, where)
	res, err := s.db.ExecContext(ctx, query, status, notes, key)
	if err != nil {
		return 0, fmt.Errorf("update status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// Dedup adapts the store to the per-strategy link checker, fixing the
// destination table.
func (s *Store) Dedup(table string) crawler.LinkChecker {
	return dedupChecker{store: s, table: table}
}

type dedupChecker struct {
	store *Store
	table string
}

func (d dedupChecker) LinkExists(ctx context.Context, link string) (bool, error) {
	return d.store.LinkExists(ctx, d.table, link)
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
