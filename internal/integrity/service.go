package integrity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"evalgo.org/packsmith/internal/paths"
)

// Service scans a pack and repairs what it finds.
//
// The scan covers:
//   - item files: unreadable JSON, names, repeated cases and cases whose
//     model file is missing
//   - model files: unreadable JSON, names and models with no texture
//   - animation metadata left behind without its texture
//
// Repairs are limited to removing redundant or stray data; nothing is ever
// invented. Each repair operation carries a risk level so callers can filter.
type Service struct {
	paths  paths.Resolver
	logger zerolog.Logger
	audit  *AuditLogger
	now    func() time.Time
}

// NewService creates a Service. auditPath is a JSON Lines file recording
// scans and repairs; empty disables auditing.
func NewService(resolver paths.Resolver, auditPath string, logger zerolog.Logger) (*Service, error) {
	audit, err := NewAuditLogger(auditPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create audit logger: %w", err)
	}

	return &Service{
		paths:  resolver,
		logger: logger.With().Str("component", "integrity").Logger(),
		audit:  audit,
		now:    time.Now,
	}, nil
}

// Scan performs a full integrity scan of the pack.
func (s *Service) Scan(ctx context.Context) (*ScanReport, error) {
	startTime := s.now()
	report := &ScanReport{
		ID:          uuid.New().String(),
		Timestamp:   startTime,
		IssuesFound: []Issue{},
		Summary: ScanSummary{
			ByType:     make(map[IssueType]int),
			BySeverity: make(map[Severity]int),
		},
	}

	s.logger.Info().Str("root", s.paths.Root).Msg("Starting integrity scan")

	scanners := []struct {
		name string
		scan func(ctx context.Context) ([]Issue, int, error)
	}{
		{"items", s.scanItems},
		{"models", s.scanModels},
		{"animations", s.scanAnimations},
	}
	for _, sc := range scanners {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		issues, scanned, err := sc.scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", sc.name, err)
		}
		report.FilesScanned += scanned
		report.IssuesFound = append(report.IssuesFound, issues...)
	}

	report.Summary.TotalIssues = len(report.IssuesFound)
	for _, issue := range report.IssuesFound {
		report.Summary.ByType[issue.Type]++
		report.Summary.BySeverity[issue.Severity]++
	}
	report.Summary.HealthScore = calculateHealthScore(report.Summary.BySeverity)
	report.Duration = time.Since(startTime)

	if err := s.audit.LogScan(report); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write audit entry")
	}

	s.logger.Info().
		Int("files", report.FilesScanned).
		Int("issues", report.Summary.TotalIssues).
		Int("health_score", report.Summary.HealthScore).
		Dur("duration", report.Duration).
		Msg("Scan completed")

	return report, nil
}

// calculateHealthScore computes a 0-100 health score based on issues found.
func calculateHealthScore(bySeverity map[Severity]int) int {
	score := 100
	for severity, count := range bySeverity {
		switch severity {
		case SeverityCritical:
			score -= count * 20
		case SeverityHigh:
			score -= count * 10
		case SeverityMedium:
			score -= count * 3
		case SeverityLow:
			score -= count
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// CheckHealth scans the pack and turns the result into recommendations.
func (s *Service) CheckHealth(ctx context.Context) (*PackHealth, error) {
	report, err := s.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan for health check: %w", err)
	}

	health := &PackHealth{
		Timestamp:        report.Timestamp,
		FilesScanned:     report.FilesScanned,
		IssueCount:       report.Summary.TotalIssues,
		IssuesByType:     report.Summary.ByType,
		IssuesBySeverity: report.Summary.BySeverity,
		HealthScore:      report.Summary.HealthScore,
		Recommendations:  []string{},
	}

	if health.HealthScore < 50 {
		health.Recommendations = append(health.Recommendations,
			"Critical: pack health is poor. Review the issues before releasing.")
	} else if health.HealthScore < 80 {
		health.Recommendations = append(health.Recommendations,
			"Warning: pack has integrity issues. Run `check --fix`.")
	}
	if n := health.IssuesByType[IssueTypeDuplicateCase]; n > 0 {
		health.Recommendations = append(health.Recommendations,
			fmt.Sprintf("%d item file(s) repeat a case. `check --fix` removes the repeats.", n))
	}
	if n := health.IssuesByType[IssueTypeDanglingCase]; n > 0 {
		health.Recommendations = append(health.Recommendations,
			fmt.Sprintf("%d case(s) name a missing model. Restore the model or run `check --fix --risk medium`.", n))
	}
	if n := health.IssuesByType[IssueTypeMissingTexture]; n > 0 {
		health.Recommendations = append(health.Recommendations,
			fmt.Sprintf("%d model(s) have no texture. Add the texture with `add model`.", n))
	}

	return health, nil
}

// Close flushes the audit log.
func (s *Service) Close() error {
	return s.audit.Close()
}
