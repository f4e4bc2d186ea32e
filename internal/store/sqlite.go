package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/jobhub/internal/dedupe"
	"github.com/amishk599/jobhub/internal/model"
)

const schema = `CREATE TABLE IF NOT EXISTS listings (
	key          TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	external_id  TEXT NOT NULL DEFAULT '',
	title        TEXT NOT NULL,
	company      TEXT NOT NULL DEFAULT '',
	location     TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	url          TEXT NOT NULL DEFAULT '',
	posted_at    TEXT,
	salary       TEXT NOT NULL DEFAULT '',
	kind         TEXT NOT NULL DEFAULT '',
	requirements TEXT NOT NULL DEFAULT '[]',
	first_seen   TEXT NOT NULL,
	last_seen    TEXT NOT NULL
)`

const firstSeenIndex = `CREATE INDEX IF NOT EXISTS listings_first_seen ON listings (first_seen)`

// SQLiteCatalog keeps every listing the watcher has ingested, one row per
// identity key.
type SQLiteCatalog struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the catalog database at dbPath and ensures
// the listings table exists.
func OpenSQLite(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// sqlite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	for _, stmt := range []string{schema, firstSeenIndex} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating listings table: %w", err)
		}
	}

	return &SQLiteCatalog{db: db, now: time.Now}, nil
}

// Save inserts unseen records and refreshes the mutable fields of known ones.
// It returns the number of records that were new to the catalog.
func (c *SQLiteCatalog) Save(ctx context.Context, records []model.JobRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}
	now := c.now().UTC().Format(time.RFC3339Nano)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning catalog transaction: %w", err)
	}
	defer tx.Rollback()

	insert, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO listings
		(key, source, external_id, title, company, location, description, url,
		 posted_at, salary, kind, requirements, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer insert.Close()

	update, err := tx.PrepareContext(ctx, `UPDATE listings SET
		title = ?, company = ?, location = ?, description = ?, url = ?,
		posted_at = ?, salary = ?, kind = ?, requirements = ?, last_seen = ?
		WHERE key = ?`)
	if err != nil {
		return 0, fmt.Errorf("preparing update: %w", err)
	}
	defer update.Close()

	added := 0
	for _, rec := range records {
		key := dedupe.KeysOf(rec).Primary()
		reqs, err := json.Marshal(rec.Requirements)
		if err != nil {
			return 0, fmt.Errorf("encoding requirements for %s: %w", key, err)
		}
		posted := formatPosted(rec.PostedAt)

		res, err := insert.ExecContext(ctx, key, rec.Source, rec.ID, rec.Title, rec.Company,
			rec.Location, rec.Description, rec.URL, posted, rec.Salary, string(rec.Kind),
			string(reqs), now, now)
		if err != nil {
			return 0, fmt.Errorf("inserting listing %s: %w", key, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
			continue
		}

		if _, err := update.ExecContext(ctx, rec.Title, rec.Company, rec.Location,
			rec.Description, rec.URL, posted, rec.Salary, string(rec.Kind), string(reqs),
			now, key); err != nil {
			return 0, fmt.Errorf("updating listing %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing catalog transaction: %w", err)
	}
	return added, nil
}

// Recent returns up to limit entries, most recently discovered first.
func (c *SQLiteCatalog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		return nil, nil
	}
	rows, err := c.db.QueryContext(ctx, `SELECT source, external_id, title, company,
		location, description, url, posted_at, salary, kind, requirements,
		first_seen, last_seen
		FROM listings ORDER BY first_seen DESC, key LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent listings: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                   Entry
			posted              sql.NullString
			kind, reqs          string
			firstSeen, lastSeen string
		)
		r := &e.Record
		if err := rows.Scan(&r.Source, &r.ID, &r.Title, &r.Company, &r.Location,
			&r.Description, &r.URL, &posted, &r.Salary, &kind, &reqs,
			&firstSeen, &lastSeen); err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		r.Kind = model.Kind(kind)
		if posted.Valid {
			if t, err := time.Parse(time.RFC3339Nano, posted.String); err == nil {
				r.PostedAt = &t
			}
		}
		if err := json.Unmarshal([]byte(reqs), &r.Requirements); err != nil {
			return nil, fmt.Errorf("decoding requirements: %w", err)
		}
		e.FirstSeen, _ = time.Parse(time.RFC3339Nano, firstSeen)
		e.LastSeen, _ = time.Parse(time.RFC3339Nano, lastSeen)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating listings: %w", err)
	}
	return entries, nil
}

// Count returns the number of catalogued listings.
func (c *SQLiteCatalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting listings: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}

func formatPosted(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
