package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	manager, err := NewManager(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	t.Cleanup(func() { manager.Close() })
	return manager
}

func TestNewManager(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	manager, err := NewManager(dbPath)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	defer manager.Close()

	if manager.db == nil {
		t.Error("Database connection is nil")
	}

	// Verify database file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestNewManager_EmptyPath(t *testing.T) {
	_, err := NewManager("")
	if err == nil {
		t.Error("Expected error for empty path, got nil")
	}
}

func TestSaveAndGetOperation(t *testing.T) {
	manager := newTestManager(t)

	// Save an operation record
	record := OperationRecord{
		Operation:    "scan",
		StartedAt:    time.Now().Add(-10 * time.Minute),
		FinishedAt:   time.Now(),
		Status:       "completed",
		FilesTotal:   20,
		SuccessCount: 18,
		FailedCount:  2,
		Error:        "",
	}

	err := manager.SaveOperation(record)
	if err != nil {
		t.Fatalf("Failed to save operation: %v", err)
	}

	// Retrieve history
	history, err := manager.GetHistory(10)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}

	if len(history) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(history))
	}

	retrieved := history[0]
	if retrieved.Operation != record.Operation {
		t.Errorf("Expected operation %s, got %s", record.Operation, retrieved.Operation)
	}

	if retrieved.Status != record.Status {
		t.Errorf("Expected status %s, got %s", record.Status, retrieved.Status)
	}

	if retrieved.FilesTotal != record.FilesTotal {
		t.Errorf("Expected files total %d, got %d", record.FilesTotal, retrieved.FilesTotal)
	}

	if retrieved.SuccessCount != record.SuccessCount {
		t.Errorf("Expected success count %d, got %d", record.SuccessCount, retrieved.SuccessCount)
	}

	if retrieved.FailedCount != record.FailedCount {
		t.Errorf("Expected failed count %d, got %d", record.FailedCount, retrieved.FailedCount)
	}
}

func TestGetLastSuccess(t *testing.T) {
	manager := newTestManager(t)

	// Save multiple records with different statuses
	records := []OperationRecord{
		{
			Operation:    "cloud_backup",
			StartedAt:    time.Now().Add(-30 * time.Minute),
			FinishedAt:   time.Now().Add(-29 * time.Minute),
			Status:       "completed",
			FilesTotal:   5,
			SuccessCount: 5,
		},
		{
			Operation:   "cloud_backup",
			StartedAt:   time.Now().Add(-20 * time.Minute),
			FinishedAt:  time.Now().Add(-19 * time.Minute),
			Status:      "failed",
			FilesTotal:  3,
			FailedCount: 3,
			Error:       "device disconnected",
		},
		{
			Operation:    "cloud_backup",
			StartedAt:    time.Now().Add(-10 * time.Minute),
			FinishedAt:   time.Now().Add(-9 * time.Minute),
			Status:       "completed",
			FilesTotal:   10,
			SuccessCount: 10,
		},
	}

	for _, record := range records {
		if err := manager.SaveOperation(record); err != nil {
			t.Fatalf("Failed to save operation: %v", err)
		}
	}

	// Retrieve last success
	lastSuccess, err := manager.GetLastSuccess("cloud_backup")
	if err != nil {
		t.Fatalf("Failed to get last success: %v", err)
	}

	if lastSuccess == nil {
		t.Fatal("Expected last success, got nil")
	}

	if lastSuccess.SuccessCount != 10 {
		t.Errorf("Expected last success to have 10 files, got %d", lastSuccess.SuccessCount)
	}

	if lastSuccess.Status != "completed" {
		t.Errorf("Expected status 'completed', got %s", lastSuccess.Status)
	}
}

func TestGetLastSuccess_NoCompleted(t *testing.T) {
	manager := newTestManager(t)

	// Save only failed records
	record := OperationRecord{
		Operation:   "move",
		StartedAt:   time.Now().Add(-10 * time.Minute),
		FinishedAt:  time.Now(),
		Status:      "failed",
		FilesTotal:  2,
		FailedCount: 2,
		Error:       "no device connected",
	}

	if err := manager.SaveOperation(record); err != nil {
		t.Fatalf("Failed to save operation: %v", err)
	}

	// Retrieve last success (should be nil)
	lastSuccess, err := manager.GetLastSuccess("move")
	if err != nil {
		t.Fatalf("Failed to get last success: %v", err)
	}

	if lastSuccess != nil {
		t.Error("Expected nil for last success, got a record")
	}
}

func TestGetLastSuccess_OtherOperation(t *testing.T) {
	manager := newTestManager(t)

	record := OperationRecord{
		Operation:    "scan",
		StartedAt:    time.Now().Add(-10 * time.Minute),
		FinishedAt:   time.Now(),
		Status:       "completed",
		FilesTotal:   7,
		SuccessCount: 7,
	}

	if err := manager.SaveOperation(record); err != nil {
		t.Fatalf("Failed to save operation: %v", err)
	}

	// A completed scan must not show up as a completed restore
	lastSuccess, err := manager.GetLastSuccess("cloud_restore")
	if err != nil {
		t.Fatalf("Failed to get last success: %v", err)
	}

	if lastSuccess != nil {
		t.Error("Expected nil for other operation, got a record")
	}
}

func TestGetHistory_AllOperations(t *testing.T) {
	manager := newTestManager(t)

	// Save records for multiple operation types
	records := []OperationRecord{
		{Operation: "scan", StartedAt: time.Now().Add(-30 * time.Minute), FinishedAt: time.Now().Add(-29 * time.Minute), Status: "completed", FilesTotal: 5, SuccessCount: 5},
		{Operation: "copy", StartedAt: time.Now().Add(-20 * time.Minute), FinishedAt: time.Now().Add(-19 * time.Minute), Status: "completed", FilesTotal: 10, SuccessCount: 10},
		{Operation: "scan", StartedAt: time.Now().Add(-10 * time.Minute), FinishedAt: time.Now().Add(-9 * time.Minute), Status: "cancelled", FilesTotal: 0},
	}

	for _, record := range records {
		if err := manager.SaveOperation(record); err != nil {
			t.Fatalf("Failed to save operation: %v", err)
		}
	}

	history, err := manager.GetHistory(100)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}

	if len(history) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(history))
	}

	// Verify ordering (should be DESC by started_at)
	if history[0].Operation != "scan" || history[0].Status != "cancelled" {
		t.Error("Expected most recent record to be the cancelled scan")
	}
}

func TestGetHistory_Limit(t *testing.T) {
	manager := newTestManager(t)

	// Save 5 records
	for i := 0; i < 5; i++ {
		record := OperationRecord{
			Operation:    "copy",
			StartedAt:    time.Now().Add(time.Duration(-i*10) * time.Minute),
			FinishedAt:   time.Now().Add(time.Duration(-i*10+1) * time.Minute),
			Status:       "completed",
			FilesTotal:   i,
			SuccessCount: i,
		}
		if err := manager.SaveOperation(record); err != nil {
			t.Fatalf("Failed to save operation: %v", err)
		}
	}

	// Get only 3 most recent
	history, err := manager.GetHistory(3)
	if err != nil {
		t.Fatalf("Failed to get history: %v", err)
	}

	if len(history) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(history))
	}

	// Verify we got the most recent ones
	if history[0].FilesTotal != 0 {
		t.Errorf("Expected most recent record to have 0 files total, got %d", history[0].FilesTotal)
	}
}

// Test validation: invalid status
func TestSaveOperation_InvalidStatus(t *testing.T) {
	manager := newTestManager(t)

	record := OperationRecord{
		Operation:  "scan",
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Status:     "invalid_status", // Invalid status
	}

	err := manager.SaveOperation(record)
	if err == nil {
		t.Error("Expected error for invalid status, got nil")
	}
}

// Test validation: invalid limit in GetHistory
func TestGetHistory_InvalidLimit(t *testing.T) {
	manager := newTestManager(t)

	_, err := manager.GetHistory(0)
	if err == nil {
		t.Error("Expected error for limit=0, got nil")
	}

	_, err = manager.GetHistory(-1)
	if err == nil {
		t.Error("Expected error for limit=-1, got nil")
	}
}

func TestOperationRecord_Duration(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	record := OperationRecord{
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
	}

	if got := record.Duration(); got != 90*time.Second {
		t.Errorf("Duration() = %v, want 90s", got)
	}
}
