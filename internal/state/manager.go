// Package state persists operation history in a local sqlite database.
package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Manager handles operation history persistence
type Manager struct {
	db *sql.DB
}

// OperationRecord represents a single completed operation run
type OperationRecord struct {
	ID           int64
	Operation    string // "scan", "copy", "move", "cloud_backup", "cloud_restore"
	StartedAt    time.Time
	FinishedAt   time.Time
	Status       string // "completed", "cancelled", "failed"
	FilesTotal   int
	SuccessCount int
	FailedCount  int
	Error        string
}

// Duration returns how long the operation ran.
func (r OperationRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// NewManager opens (creating if needed) the history database at dbPath.
func NewManager(dbPath string) (*Manager, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("history database path cannot be empty")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Limit connection pool to prevent "database is locked" errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	// Enable WAL mode for better concurrency and set busy timeout
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode and busy timeout: %w", err)
	}

	manager := &Manager{db: db}

	// Initialize schema
	if err := manager.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return manager, nil
}

// initSchema creates the database schema
func (m *Manager) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS operations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		operation TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		status TEXT NOT NULL,
		files_total INTEGER DEFAULT 0,
		success_count INTEGER DEFAULT 0,
		failed_count INTEGER DEFAULT 0,
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_operations_op_time ON operations(operation, started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_operations_status ON operations(status);
	`

	_, err := m.db.Exec(schema)
	return err
}

// SaveOperation records a finished operation run
func (m *Manager) SaveOperation(record OperationRecord) error {
	// Validate status
	if record.Status != "completed" && record.Status != "cancelled" && record.Status != "failed" {
		return fmt.Errorf("invalid status: %s (must be 'completed', 'cancelled', or 'failed')", record.Status)
	}

	query := `
		INSERT INTO operations (operation, started_at, finished_at, status, files_total, success_count, failed_count, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := m.db.Exec(query,
		record.Operation,
		record.StartedAt,
		record.FinishedAt,
		record.Status,
		record.FilesTotal,
		record.SuccessCount,
		record.FailedCount,
		record.Error,
	)

	if err != nil {
		return fmt.Errorf("failed to save operation record: %w", err)
	}

	return nil
}

// GetHistory retrieves the most recent operation runs, newest first
func (m *Manager) GetHistory(limit int) ([]OperationRecord, error) {
	// Validate limit
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	query := `
		SELECT id, operation, started_at, finished_at, status, files_total, success_count, failed_count, error
		FROM operations
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := m.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var records []OperationRecord
	for rows.Next() {
		var record OperationRecord
		err := rows.Scan(
			&record.ID,
			&record.Operation,
			&record.StartedAt,
			&record.FinishedAt,
			&record.Status,
			&record.FilesTotal,
			&record.SuccessCount,
			&record.FailedCount,
			&record.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}

	return records, nil
}

// GetLastSuccess retrieves the most recent completed run of an operation
func (m *Manager) GetLastSuccess(operation string) (*OperationRecord, error) {
	query := `
		SELECT id, operation, started_at, finished_at, status, files_total, success_count, failed_count, error
		FROM operations
		WHERE operation = ? AND status = 'completed'
		ORDER BY started_at DESC
		LIMIT 1
	`

	var record OperationRecord
	err := m.db.QueryRow(query, operation).Scan(
		&record.ID,
		&record.Operation,
		&record.StartedAt,
		&record.FinishedAt,
		&record.Status,
		&record.FilesTotal,
		&record.SuccessCount,
		&record.FailedCount,
		&record.Error,
	)

	if err == sql.ErrNoRows {
		return nil, nil // No completed run found
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query last success: %w", err)
	}

	return &record, nil
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
