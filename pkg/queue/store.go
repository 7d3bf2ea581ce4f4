package queue

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; stale databases must be cleared.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database was created by a different schema
// version.
var ErrSchemaMismatch = errors.New("queue: schema version mismatch")

// Store persists batches in SQLite so deferred work survives restarts.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to (or creates) the queue database and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("queue: open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("queue: apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("queue: check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("queue: read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d", ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("queue: begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("queue: create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("queue: record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("queue: commit schema: %w", err)
	}
	return nil
}

// SaveBatch inserts the batch and its tasks in order.
func (s *Store) SaveBatch(ctx context.Context, batch Batch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("queue: begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createdAt := batch.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO batches (id, created_at) VALUES (?, ?)`,
		batch.ID, createdAt.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("queue: insert batch: %w", err)
	}

	for position, task := range batch.Tasks {
		argsJSON, err := json.Marshal(task.Args)
		if err != nil {
			return fmt.Errorf("queue: marshal task args: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (id, batch_id, position, callback, args_json, attempts)
             VALUES (?, ?, ?, ?, ?, ?)`,
			task.ID, batch.ID, position, task.Callback, string(argsJSON), task.Attempts,
		); err != nil {
			return fmt.Errorf("queue: insert task: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("queue: commit save: %w", err)
	}
	return nil
}

// LoadBatches returns all persisted batches, oldest first, tasks in position
// order with their saved attempt counts.
func (s *Store) LoadBatches(ctx context.Context) ([]Batch, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at FROM batches ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("queue: query batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var (
			batch      Batch
			createdRaw string
		)
		if err := rows.Scan(&batch.ID, &createdRaw); err != nil {
			return nil, fmt.Errorf("queue: scan batch: %w", err)
		}
		if created, parseErr := time.Parse(time.RFC3339Nano, createdRaw); parseErr == nil {
			batch.CreatedAt = created
		}
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("queue: iterate batches: %w", err)
	}

	for i := range batches {
		tasks, err := s.loadTasks(ctx, batches[i].ID)
		if err != nil {
			return nil, err
		}
		batches[i].Tasks = tasks
	}
	return batches, nil
}

func (s *Store) loadTasks(ctx context.Context, batchID string) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, callback, args_json, attempts FROM tasks WHERE batch_id = ? ORDER BY position`,
		batchID,
	)
	if err != nil {
		return nil, fmt.Errorf("queue: query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var (
			task     Task
			argsJSON sql.NullString
		)
		if err := rows.Scan(&task.ID, &task.Callback, &argsJSON, &task.Attempts); err != nil {
			return nil, fmt.Errorf("queue: scan task: %w", err)
		}
		if argsJSON.Valid && argsJSON.String != "" {
			if err := json.Unmarshal([]byte(argsJSON.String), &task.Args); err != nil {
				return nil, fmt.Errorf("queue: unmarshal task args: %w", err)
			}
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// UpdateAttempts persists a task's attempt count.
func (s *Store) UpdateAttempts(ctx context.Context, taskID string, attempts int) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET attempts = ? WHERE id = ?`, attempts, taskID,
	); err != nil {
		return fmt.Errorf("queue: update attempts: %w", err)
	}
	return nil
}

// DeleteTask removes a completed or dropped task.
func (s *Store) DeleteTask(ctx context.Context, taskID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, taskID); err != nil {
		return fmt.Errorf("queue: delete task: %w", err)
	}
	return nil
}

// DeleteBatch removes a batch and, via cascade, any remaining tasks.
func (s *Store) DeleteBatch(ctx context.Context, batchID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, batchID); err != nil {
		return fmt.Errorf("queue: delete batch: %w", err)
	}
	return nil
}

// Pending counts persisted tasks across all batches.
func (s *Store) Pending(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("queue: count pending: %w", err)
	}
	return count, nil
}
