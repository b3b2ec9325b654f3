package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"salonscout/internal/model"
)

// DB persists admitted records across harvest runs so a later run can seed
// its dedup index and keep counting toward the cap instead of re-admitting
// the same businesses.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the harvest store at path.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  address TEXT NOT NULL,
  phone TEXT NOT NULL,
  source_url TEXT NOT NULL,
  source_location TEXT NOT NULL,
  origin TEXT NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(name, source_url)
);
CREATE INDEX IF NOT EXISTS idx_records_origin ON records(origin);
CREATE INDEX IF NOT EXISTS idx_records_location ON records(source_location);
`
	if _, err := d.conn.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// SaveRecords inserts the records in one transaction. Rows that collide on
// (name, source_url) are left as-is; the store keeps the first admission.
func (d *DB) SaveRecords(records []model.Record) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
INSERT INTO records (name, address, phone, source_url, source_location, origin)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(name, source_url) DO NOTHING
`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		if _, err := stmt.Exec(
			rec.Name, rec.Address, rec.Phone,
			rec.SourceURL, rec.SourceLocation, string(rec.Origin),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListRecords returns every stored record in insertion order.
func (d *DB) ListRecords() ([]model.Record, error) {
	rows, err := d.conn.Query(`
SELECT name, address, phone, source_url, source_location, origin
FROM records ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.Record
	for rows.Next() {
		var rec model.Record
		var origin string
		if err := rows.Scan(
			&rec.Name, &rec.Address, &rec.Phone,
			&rec.SourceURL, &rec.SourceLocation, &origin,
		); err != nil {
			return nil, err
		}
		rec.Origin = model.Origin(origin)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns how many records the store holds.
func (d *DB) Count() (int, error) {
	var n int
	err := d.conn.QueryRow(`SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}
