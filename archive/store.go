package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/s0up4200/jnetcce/cce"
)

// Store persists consumed file ids and retrieved documents in SQLite. It
// implements cce.Ledger so consumption is tracked across runs.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

var _ cce.Ledger = (*Store)(nil)

// Open opens or creates the archive at path
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Opened archive")
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS consumed_files (
		file_id TEXT PRIMARY KEY,
		claimed_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS documents (
		file_id TEXT PRIMARY KEY,
		tracking_id TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		payload TEXT NOT NULL,
		archived_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_documents_tracking ON documents(tracking_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Claim records id as consumed. A second claim of the same id fails with
// cce.KindAlreadyConsumed, also across processes sharing the file.
func (s *Store) Claim(ctx context.Context, id cce.FileID) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO consumed_files (file_id, claimed_at) VALUES (?, ?)`,
		string(id), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to claim file %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to claim file %s: %w", id, err)
	}
	if n == 0 {
		return &cce.Error{
			Kind:    cce.KindAlreadyConsumed,
			Message: fmt.Sprintf("file %s was already retrieved", id),
			RawData: id,
		}
	}
	return nil
}

// Claimed reports whether id has been claimed
func (s *Store) Claimed(ctx context.Context, id cce.FileID) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM consumed_files WHERE file_id = ?`, string(id)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to look up file %s: %w", id, err)
	}
	return n > 0, nil
}

// Save stores docs in one transaction, replacing earlier copies
func (s *Store) Save(ctx context.Context, docs []cce.RetrievedDocument) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO documents (file_id, tracking_id, outcome, payload, archived_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, doc := range docs {
		payload, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode document %s: %w", doc.FileID, err)
		}
		if _, err := stmt.ExecContext(ctx, string(doc.FileID), doc.CorrelationID, string(doc.Outcome), string(payload), now); err != nil {
			return fmt.Errorf("failed to store document %s: %w", doc.FileID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit documents: %w", err)
	}

	s.logger.Debug().Msgf("Archived %d documents", len(docs))
	return nil
}

// Documents returns archived documents, all of them when trackingID is empty
func (s *Store) Documents(ctx context.Context, trackingID string) ([]cce.RetrievedDocument, error) {
	query := `SELECT payload FROM documents ORDER BY archived_at, file_id`
	args := []any{}
	if trackingID != "" {
		query = `SELECT payload FROM documents WHERE tracking_id = ? ORDER BY archived_at, file_id`
		args = append(args, trackingID)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []cce.RetrievedDocument
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		var doc cce.RetrievedDocument
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}
