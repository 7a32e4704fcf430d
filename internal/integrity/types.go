// Package integrity audits a resource pack for inconsistencies between item
// files, models and textures, scores its health and repairs what can be
// repaired mechanically.
package integrity

import (
	"time"
)

// IssueType represents the type of integrity issue detected.
type IssueType string

const (
	// IssueTypeDuplicateCase is an item file listing the same model twice
	IssueTypeDuplicateCase IssueType = "duplicate_case"

	// IssueTypeDanglingCase is a case whose model file does not exist
	IssueTypeDanglingCase IssueType = "dangling_case"

	// IssueTypeMissingTexture is a model with neither a texture nor layers
	IssueTypeMissingTexture IssueType = "missing_texture"

	// IssueTypeOrphanAnimation is a .mcmeta file without its texture
	IssueTypeOrphanAnimation IssueType = "orphan_animation"

	// IssueTypeInvalidName is a file whose name is not snake_case
	IssueTypeInvalidName IssueType = "invalid_name"

	// IssueTypeUnreadable is a JSON file that cannot be parsed
	IssueTypeUnreadable IssueType = "unreadable"
)

// Severity represents how critical an issue is.
type Severity string

const (
	// SeverityLow indicates a cosmetic issue
	SeverityLow Severity = "low"

	// SeverityMedium indicates redundant or stray data
	SeverityMedium Severity = "medium"

	// SeverityHigh indicates something the game will render wrongly
	SeverityHigh Severity = "high"

	// SeverityCritical indicates the pack cannot be loaded
	SeverityCritical Severity = "critical"
)

// RiskLevel indicates the risk of a repair operation.
type RiskLevel string

const (
	// RiskLow indicates a repair that only removes redundancy
	RiskLow RiskLevel = "low"

	// RiskMedium indicates a repair that removes data the author may want back
	RiskMedium RiskLevel = "medium"

	// RiskHigh indicates a repair that needs review
	RiskHigh RiskLevel = "high"
)

// ScanReport contains the results of an integrity scan.
type ScanReport struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`

	// FilesScanned is the number of item, model and animation files checked
	FilesScanned int `json:"files_scanned"`

	IssuesFound []Issue     `json:"issues_found"`
	Summary     ScanSummary `json:"summary"`
}

// ScanSummary provides aggregated scan statistics.
type ScanSummary struct {
	TotalIssues int               `json:"total_issues"`
	ByType      map[IssueType]int `json:"by_type"`
	BySeverity  map[Severity]int  `json:"by_severity"`

	// HealthScore is a 0-100 score indicating pack health
	HealthScore int `json:"health_score"`
}

// Issue represents a single integrity problem.
type Issue struct {
	ID       string    `json:"id"`
	Type     IssueType `json:"type"`
	Severity Severity  `json:"severity"`

	// File is the affected file, relative to the pack root
	File string `json:"file"`

	// Subject is the material or model the issue is about
	Subject string `json:"subject"`

	Description string                 `json:"description"`
	Details     map[string]interface{} `json:"details,omitempty"`
	DetectedAt  time.Time              `json:"detected_at"`

	// SuggestedResolution is set when the issue can be repaired automatically
	SuggestedResolution *Resolution `json:"suggested_resolution,omitempty"`
}

// Resolution describes how to fix an issue.
type Resolution struct {
	Risk        RiskLevel         `json:"risk"`
	Description string            `json:"description"`
	Operations  []RepairOperation `json:"operations"`
}

// OperationType categorizes repair operations.
type OperationType string

const (
	// OpDedupeCases drops repeated cases from an item file
	OpDedupeCases OperationType = "dedupe_cases"

	// OpRemoveCase drops the cases naming a missing model
	OpRemoveCase OperationType = "remove_case"

	// OpDeleteFile removes a stray file
	OpDeleteFile OperationType = "delete_file"
)

// RepairOperation represents a single repair action.
type RepairOperation struct {
	ID   string        `json:"id"`
	Type OperationType `json:"type"`

	// File is the target, relative to the pack root
	File string `json:"file"`

	// Model is the case to remove for OpRemoveCase
	Model string `json:"model,omitempty"`

	Action string    `json:"action"`
	Risk   RiskLevel `json:"risk"`
}

// RepairPlan contains a sequence of operations to fix issues.
type RepairPlan struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	ScanID     string            `json:"scan_id"`
	Operations []RepairOperation `json:"operations"`

	// DryRun reports what would change without writing
	DryRun bool `json:"dry_run"`

	// RiskFilter limits operations to certain risk levels
	RiskFilter []RiskLevel `json:"risk_filter"`
}

// RepairResult contains the outcome of executing a repair plan.
type RepairResult struct {
	PlanID       string            `json:"plan_id"`
	ExecutionID  string            `json:"execution_id"`
	StartTime    time.Time         `json:"start_time"`
	EndTime      time.Time         `json:"end_time"`
	Duration     time.Duration     `json:"duration"`
	Operations   []OperationResult `json:"operations"`
	SuccessCount int               `json:"success_count"`
	FailureCount int               `json:"failure_count"`
	DryRun       bool              `json:"dry_run"`
}

// OperationResult contains the outcome of a single operation.
type OperationResult struct {
	Operation RepairOperation        `json:"operation"`
	Success   bool                   `json:"success"`
	Error     string                 `json:"error,omitempty"`
	DryRun    bool                   `json:"dry_run"`
	Changes   map[string]interface{} `json:"changes,omitempty"`
}

// PackHealth represents the overall health of the pack.
type PackHealth struct {
	Timestamp        time.Time         `json:"timestamp"`
	FilesScanned     int               `json:"files_scanned"`
	IssueCount       int               `json:"issue_count"`
	IssuesByType     map[IssueType]int `json:"issues_by_type"`
	IssuesBySeverity map[Severity]int  `json:"issues_by_severity"`
	HealthScore      int               `json:"health_score"`
	Recommendations  []string          `json:"recommendations"`
}

// AuditEntry records an integrity operation.
type AuditEntry struct {
	ID            string                 `json:"id"`
	Timestamp     time.Time              `json:"timestamp"`
	OperationType string                 `json:"operation_type"`
	ScanID        string                 `json:"scan_id,omitempty"`
	PlanID        string                 `json:"plan_id,omitempty"`
	ExecutionID   string                 `json:"execution_id,omitempty"`
	Success       bool                   `json:"success"`
	Error         string                 `json:"error,omitempty"`
	Details       map[string]interface{} `json:"details,omitempty"`
}
