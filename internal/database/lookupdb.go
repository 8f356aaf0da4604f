package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/kbreplace/internal/model"
)

// FileName is the database file created inside the data directory.
const FileName = "kbreplace.db"

// ErrDatabaseNotFound is returned by Open when the database file is missing
// and CreateIfNotExists is false.
var ErrDatabaseNotFound = errors.New("database not found")

// LookupDB provides SQLite-based storage for lookup history.
type LookupDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures LookupDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a LookupDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist,
// ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*LookupDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rwc"
	if !opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ldb := &LookupDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := ldb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return ldb, nil
}

// Close closes the database connection.
func (ldb *LookupDB) Close() error {
	return ldb.db.Close()
}

// Path returns the database file path.
func (ldb *LookupDB) Path() string {
	return ldb.dbPath
}

// createTables creates the database schema if it doesn't exist.
// Timestamps are stored as RFC 3339 text written by this package.
func (ldb *LookupDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS lookups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		input TEXT NOT NULL,
		number TEXT NOT NULL,
		title TEXT,
		search_url TEXT,
		redirect_id TEXT,
		detail_url TEXT,
		chain_json TEXT NOT NULL,
		replaces TEXT NOT NULL,
		started_at TEXT NOT NULL,
		completed_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lookups_number ON lookups(number);
	CREATE INDEX IF NOT EXISTS idx_lookups_completed ON lookups(completed_at);
	`

	_, err := ldb.db.ExecContext(context.Background(), schema)
	return err
}

// Record is a stored lookup.
type Record struct {
	ID     int64
	Lookup *model.Lookup
}

// InsertLookup stores a lookup and returns its row id.
func (ldb *LookupDB) InsertLookup(ctx context.Context, lookup *model.Lookup) (int64, error) {
	chainJSON, err := json.Marshal(lookup.Chain)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize chain: %w", err)
	}

	query := `
	INSERT INTO lookups (input, number, title, search_url, redirect_id, detail_url, chain_json, replaces, started_at, completed_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := ldb.db.ExecContext(ctx, query,
		lookup.Input,
		lookup.Number,
		lookup.Title,
		lookup.SearchURL,
		lookup.RedirectID,
		lookup.DetailURL,
		string(chainJSON),
		lookup.Replaces,
		formatTimestamp(lookup.StartedAt),
		formatTimestamp(lookup.CompletedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert lookup: %w", err)
	}

	return result.LastInsertId()
}

// ListOptions filters ListLookups.
type ListOptions struct {
	// Number restricts results to one seven digit update number.
	Number string

	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

// ListLookups returns stored lookups, most recent first.
func (ldb *LookupDB) ListLookups(ctx context.Context, opts ListOptions) ([]Record, error) {
	query := `
	SELECT id, input, number, title, search_url, redirect_id, detail_url, chain_json, replaces, started_at, completed_at
	FROM lookups
	WHERE 1=1
	`
	args := make([]any, 0, 2)

	if opts.Number != "" {
		query += " AND number = ?"
		args = append(args, opts.Number)
	}

	query += " ORDER BY id DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := ldb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lookups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []Record
	for rows.Next() {
		var (
			rec         Record
			l           model.Lookup
			chainJSON   string
			startedAt   string
			completedAt string
			title       sql.NullString
			searchURL   sql.NullString
			redirectID  sql.NullString
			detailURL   sql.NullString
		)

		if err := rows.Scan(
			&rec.ID,
			&l.Input,
			&l.Number,
			&title,
			&searchURL,
			&redirectID,
			&detailURL,
			&chainJSON,
			&l.Replaces,
			&startedAt,
			&completedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lookup: %w", err)
		}

		if err := json.Unmarshal([]byte(chainJSON), &l.Chain); err != nil {
			return nil, fmt.Errorf("failed to parse chain: %w", err)
		}

		l.Title = title.String
		l.SearchURL = searchURL.String
		l.RedirectID = redirectID.String
		l.DetailURL = detailURL.String
		l.StartedAt = parseTimestamp(startedAt)
		l.CompletedAt = parseTimestamp(completedAt)

		rec.Lookup = &l
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate lookups: %w", err)
	}

	return records, nil
}

// CountLookups returns the number of stored lookups.
func (ldb *LookupDB) CountLookups(ctx context.Context) (int, error) {
	var count int
	if err := ldb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lookups").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count lookups: %w", err)
	}
	return count, nil
}

// DeleteOlderThan removes lookups completed more than d ago and returns
// the number of rows removed.
func (ldb *LookupDB) DeleteOlderThan(ctx context.Context, d time.Duration) (int64, error) {
	cutoff := formatTimestamp(time.Now().Add(-d))

	result, err := ldb.db.ExecContext(ctx, "DELETE FROM lookups WHERE completed_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete lookups: %w", err)
	}
	return result.RowsAffected()
}

// timestampLayout sorts lexically in time order for UTC values.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// parseTimestamp returns the zero time for unparsable values.
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
