package storage

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no export matches the requested id.
var ErrNotFound = errors.New("export not found")

// Export represents an archived conversation document.
type Export struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Platform  string    `json:"platform"`
	Title     string    `json:"title"`
	Markdown  string    `json:"markdown"`
	Checksum  string    `json:"checksum"`
	Messages  int       `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

// Storage manages the SQLite archive.
type Storage struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS exports (
	id TEXT PRIMARY KEY,
	source TEXT NOT NULL,
	platform TEXT NOT NULL,
	title TEXT NOT NULL,
	markdown TEXT NOT NULL,
	checksum TEXT NOT NULL UNIQUE,
	messages INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_exports_source ON exports (source);
CREATE INDEX IF NOT EXISTS idx_exports_created ON exports (created_at);
`

const columns = `id, source, platform, title, markdown, checksum, messages, created_at`

// NewStorage creates or opens the archive database.
func NewStorage(dbPath string) (*Storage, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Checksum returns the hex sha256 of a rendered document.
func Checksum(markdown string) string {
	sum := sha256.Sum256([]byte(markdown))
	return hex.EncodeToString(sum[:])
}

// UpsertExport stores e. Exports are deduplicated by checksum: storing the
// same document again refreshes its metadata and keeps the original id.
func (s *Storage) UpsertExport(e *Export) (*Export, error) {
	if e.Checksum == "" {
		e.Checksum = Checksum(e.Markdown)
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
	INSERT INTO exports(`+columns+`)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(checksum) DO UPDATE SET
		source=excluded.source,
		platform=excluded.platform,
		title=excluded.title,
		messages=excluded.messages;
	`, e.ID, e.Source, e.Platform, e.Title, e.Markdown, e.Checksum, e.Messages, e.CreatedAt.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to store export: %w", err)
	}

	stored, err := scanExport(tx.QueryRow(`SELECT `+columns+` FROM exports WHERE checksum = ?`, e.Checksum))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return stored, nil
}

// GetExport retrieves an export by id.
func (s *Storage) GetExport(id string) (*Export, error) {
	return scanExport(s.db.QueryRow(`SELECT `+columns+` FROM exports WHERE id = ?`, id))
}

// ListExports returns a page of exports, newest first, and the total count.
func (s *Storage) ListExports(limit, offset int) ([]*Export, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM exports`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count exports: %w", err)
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`SELECT `+columns+` FROM exports ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, limit, max(offset, 0))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list exports: %w", err)
	}
	exports, err := scanExports(rows)
	if err != nil {
		return nil, 0, err
	}
	return exports, total, nil
}

// SearchExports finds exports whose title or body contains query,
// case-insensitively.
func (s *Storage) SearchExports(query string, limit int) ([]*Export, error) {
	if limit <= 0 {
		limit = -1
	}
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"

	rows, err := s.db.Query(`
	SELECT `+columns+` FROM exports
	WHERE lower(title) LIKE ? ESCAPE '\' OR lower(markdown) LIKE ? ESCAPE '\'
	ORDER BY created_at DESC, id
	LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search exports: %w", err)
	}
	return scanExports(rows)
}

// DeleteExport deletes an export by id.
func (s *Storage) DeleteExport(id string) error {
	res, err := s.db.Exec(`DELETE FROM exports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete export: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExportsBySource deletes every export whose source starts with prefix.
func (s *Storage) DeleteExportsBySource(prefix string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM exports WHERE source LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%")
	if err != nil {
		return 0, fmt.Errorf("failed to delete exports: %w", err)
	}
	return res.RowsAffected()
}

// Clean removes every export.
func (s *Storage) Clean() error {
	if _, err := s.db.Exec(`DELETE FROM exports`); err != nil {
		return fmt.Errorf("failed to clean archive: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(row scanner) (*Export, error) {
	var (
		e       Export
		created int64
	)
	err := row.Scan(&e.ID, &e.Source, &e.Platform, &e.Title, &e.Markdown, &e.Checksum, &e.Messages, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	e.CreatedAt = time.Unix(created, 0)
	return &e, nil
}

func scanExports(rows *sql.Rows) ([]*Export, error) {
	defer rows.Close()

	var exports []*Export
	for rows.Next() {
		e, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		exports = append(exports, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read exports: %w", err)
	}
	return exports, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
