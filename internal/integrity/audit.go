package integrity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditLogger appends scan and repair records to a JSON Lines file.
// A logger without a path records nothing.
type AuditLogger struct {
	path   string
	file   *os.File
	mu     sync.Mutex
	buffer []AuditEntry
}

// NewAuditLogger opens path for appending, creating parent directories.
func NewAuditLogger(path string) (*AuditLogger, error) {
	if path == "" {
		return &AuditLogger{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create audit log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &AuditLogger{path: path, file: file}, nil
}

func (a *AuditLogger) enabled() bool {
	return a != nil && a.file != nil
}

// LogScan records a scan.
func (a *AuditLogger) LogScan(report *ScanReport) error {
	return a.writeEntry(AuditEntry{
		ID:            uuid.New().String(),
		Timestamp:     time.Now(),
		OperationType: "scan",
		ScanID:        report.ID,
		Success:       true,
		Details: map[string]interface{}{
			"duration_ms":   report.Duration.Milliseconds(),
			"files_scanned": report.FilesScanned,
			"issues_found":  report.Summary.TotalIssues,
			"health_score":  report.Summary.HealthScore,
		},
	})
}

// LogExecution records a repair execution with the files it changed.
func (a *AuditLogger) LogExecution(result *RepairResult) error {
	var changed []string
	for _, op := range result.Operations {
		if op.Success && !result.DryRun {
			changed = append(changed, op.Operation.File)
		}
	}

	return a.writeEntry(AuditEntry{
		ID:            uuid.New().String(),
		Timestamp:     time.Now(),
		OperationType: "execution",
		PlanID:        result.PlanID,
		ExecutionID:   result.ExecutionID,
		Success:       result.FailureCount == 0,
		Details: map[string]interface{}{
			"duration_ms":   result.Duration.Milliseconds(),
			"success_count": result.SuccessCount,
			"failure_count": result.FailureCount,
			"dry_run":       result.DryRun,
			"changed_files": changed,
		},
	})
}

func (a *AuditLogger) writeEntry(entry AuditEntry) error {
	if !a.enabled() {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.buffer = append(a.buffer, entry)
	return a.flushLocked()
}

// flushLocked writes buffered entries (must be called with lock held).
func (a *AuditLogger) flushLocked() error {
	for len(a.buffer) > 0 {
		data, err := json.Marshal(a.buffer[0])
		if err != nil {
			return fmt.Errorf("failed to marshal audit entry: %w", err)
		}
		if _, err := fmt.Fprintf(a.file, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write audit entry: %w", err)
		}
		a.buffer = a.buffer[1:]
	}
	return nil
}

// Close flushes and closes the log file.
func (a *AuditLogger) Close() error {
	if !a.enabled() {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.flushLocked(); err != nil {
		return err
	}
	err := a.file.Close()
	a.file = nil
	return err
}
