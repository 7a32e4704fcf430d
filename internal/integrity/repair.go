package integrity

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/jsonstore"
	"evalgo.org/packsmith/internal/schema"
)

// CreateRepairPlan collects the suggested operations of report whose risk
// is in riskFilter. An empty filter allows only low-risk operations.
func (s *Service) CreateRepairPlan(report *ScanReport, riskFilter []RiskLevel, dryRun bool) *RepairPlan {
	if len(riskFilter) == 0 {
		riskFilter = []RiskLevel{RiskLow}
	}
	allowed := make(map[RiskLevel]bool, len(riskFilter))
	for _, r := range riskFilter {
		allowed[r] = true
	}

	plan := &RepairPlan{
		ID:         uuid.New().String(),
		Timestamp:  s.now(),
		ScanID:     report.ID,
		Operations: []RepairOperation{},
		DryRun:     dryRun,
		RiskFilter: riskFilter,
	}

	for _, issue := range report.IssuesFound {
		if issue.SuggestedResolution == nil {
			continue
		}
		for _, op := range issue.SuggestedResolution.Operations {
			if !allowed[op.Risk] {
				s.logger.Debug().Str("issue", issue.ID).Str("risk", string(op.Risk)).Msg("Skipping operation due to risk filter")
				continue
			}
			plan.Operations = append(plan.Operations, op)
		}
	}

	s.logger.Info().Str("plan", plan.ID).Int("operations", len(plan.Operations)).Msg("Generated repair plan")
	return plan
}

// ExecutePlan applies a repair plan. A failed operation is recorded and the
// rest still run.
func (s *Service) ExecutePlan(ctx context.Context, plan *RepairPlan) (*RepairResult, error) {
	startTime := s.now()
	result := &RepairResult{
		PlanID:      plan.ID,
		ExecutionID: uuid.New().String(),
		StartTime:   startTime,
		Operations:  []OperationResult{},
		DryRun:      plan.DryRun,
	}

	for _, op := range plan.Operations {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		opResult := s.executeOperation(op, plan.DryRun)
		result.Operations = append(result.Operations, opResult)
		if opResult.Success {
			result.SuccessCount++
		} else {
			result.FailureCount++
			s.logger.Warn().Str("file", op.File).Str("error", opResult.Error).Msg("Repair operation failed")
		}
	}

	result.EndTime = s.now()
	result.Duration = result.EndTime.Sub(startTime)

	if err := s.audit.LogExecution(result); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write audit entry")
	}

	s.logger.Info().
		Int("succeeded", result.SuccessCount).
		Int("failed", result.FailureCount).
		Bool("dry_run", plan.DryRun).
		Msg("Repair plan executed")

	return result, nil
}

func (s *Service) executeOperation(op RepairOperation, dryRun bool) OperationResult {
	res := OperationResult{Operation: op, DryRun: dryRun}
	path := filepath.Join(s.paths.Root, filepath.FromSlash(op.File))

	var err error
	switch op.Type {
	case OpDedupeCases:
		err = s.editResource(path, dryRun, &res, func(r *schema.ItemResource) int { return r.DedupeCases() })
	case OpRemoveCase:
		err = s.editResource(path, dryRun, &res, func(r *schema.ItemResource) int { return r.RemoveCase(op.Model) })
	case OpDeleteFile:
		if !jsonstore.Exists(path) {
			err = apperr.NotFound("file", path)
		} else if !dryRun {
			if rmErr := os.Remove(path); rmErr != nil {
				err = apperr.IO("delete", path, rmErr)
			}
		}
		res.Changes = map[string]interface{}{"deleted": op.File}
	default:
		err = fmt.Errorf("unknown operation type %q", op.Type)
	}

	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	return res
}

func (s *Service) editResource(path string, dryRun bool, res *OperationResult, edit func(*schema.ItemResource) int) error {
	resource, err := jsonstore.Read[schema.ItemResource](path)
	if err != nil {
		return err
	}
	removed := edit(&resource)
	res.Changes = map[string]interface{}{"cases_removed": removed}
	if dryRun || removed == 0 {
		return nil
	}
	return jsonstore.Write(path, resource)
}

// SavePlanToFile writes a plan as JSON for later review.
func SavePlanToFile(plan *RepairPlan, filename string) error {
	return jsonstore.Write(filename, plan)
}

// LoadPlanFromFile reads a plan written by SavePlanToFile.
func LoadPlanFromFile(filename string) (*RepairPlan, error) {
	plan, err := jsonstore.Read[RepairPlan](filename)
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

