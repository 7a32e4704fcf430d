package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"evalgo.org/packsmith/internal/integrity"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Audit the pack for integrity issues",
	Long: `Scan item files, models and animation metadata for problems: repeated
cases, cases naming missing models, models without textures, stray
animation files, names that are not snake_case and unreadable JSON.

With --fix the repairs whose risk is allowed by --risk are applied. Low risk
repairs only remove repeated cases; medium risk repairs also drop cases of
missing models and delete stray animation files.`,
	PreRunE: requirePackRoot,
	RunE:    runCheck,
}

func init() {
	checkCmd.Flags().Bool("fix", false, "apply repairs")
	checkCmd.Flags().String("risk", "low", "comma separated risk levels to repair (low, medium, high)")
	checkCmd.Flags().Bool("dry-run", false, "report repairs without writing")
	checkCmd.Flags().Bool("json", false, "print the scan report as JSON")
	checkCmd.Flags().String("audit-log", "", "append scan and repair records to this JSON Lines file")
	checkCmd.Flags().String("save-plan", "", "write the repair plan to this file")
}

func runCheck(cmd *cobra.Command, args []string) error {
	fix, _ := cmd.Flags().GetBool("fix")
	risk, _ := cmd.Flags().GetString("risk")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	outputJSON, _ := cmd.Flags().GetBool("json")
	auditLog, _ := cmd.Flags().GetString("audit-log")
	savePlan, _ := cmd.Flags().GetString("save-plan")

	var riskFilter []integrity.RiskLevel
	for _, r := range splitList(risk) {
		switch lvl := integrity.RiskLevel(r); lvl {
		case integrity.RiskLow, integrity.RiskMedium, integrity.RiskHigh:
			riskFilter = append(riskFilter, lvl)
		default:
			return fmt.Errorf("invalid risk level %q (want low, medium or high)", r)
		}
	}

	svc, err := integrity.NewService(resolver(), auditLog, newLogger())
	if err != nil {
		return fmt.Errorf("failed to create integrity service: %w", err)
	}
	defer svc.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	report, err := svc.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if outputJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	} else {
		printReport(out, report)
	}

	if !fix && savePlan == "" {
		if report.Summary.TotalIssues > 0 {
			return fmt.Errorf("found %d integrity issues", report.Summary.TotalIssues)
		}
		return nil
	}

	plan := svc.CreateRepairPlan(report, riskFilter, dryRun || !fix)
	if savePlan != "" {
		if err := integrity.SavePlanToFile(plan, savePlan); err != nil {
			return fmt.Errorf("failed to save repair plan: %w", err)
		}
		fmt.Fprintf(out, "%s Saved repair plan to %s\n", okMark, savePlan)
	}
	if !fix {
		return nil
	}

	if len(plan.Operations) == 0 {
		fmt.Fprintf(out, "%s No repairs allowed at risk %s\n", okMark, risk)
		if report.Summary.TotalIssues > 0 {
			return fmt.Errorf("found %d integrity issues", report.Summary.TotalIssues)
		}
		return nil
	}

	result, err := svc.ExecutePlan(ctx, plan)
	if err != nil {
		return fmt.Errorf("repair failed: %w", err)
	}
	printRepair(out, result)

	if result.FailureCount > 0 {
		return fmt.Errorf("%d repair operations failed", result.FailureCount)
	}
	return nil
}

func printReport(out io.Writer, report *integrity.ScanReport) {
	fmt.Fprintf(out, "Files Scanned:  %d\n", report.FilesScanned)
	fmt.Fprintf(out, "Issues Found:   %d\n", report.Summary.TotalIssues)
	fmt.Fprintf(out, "Health Score:   %s\n", scoreColor(report.Summary.HealthScore).Sprintf("%d/100", report.Summary.HealthScore))

	if len(report.IssuesFound) == 0 {
		fmt.Fprintf(out, "\n%s No integrity issues found\n", okMark)
		return
	}

	issues := append([]integrity.Issue(nil), report.IssuesFound...)
	sort.SliceStable(issues, func(i, j int) bool {
		return severityRank(issues[i].Severity) > severityRank(issues[j].Severity)
	})

	fmt.Fprintln(out, "\nIssues:")
	for _, issue := range issues {
		fixable := ""
		if issue.SuggestedResolution != nil {
			fixable = fmt.Sprintf(" (fixable, %s risk)", issue.SuggestedResolution.Risk)
		}
		fmt.Fprintf(out, "  %s [%s] %s: %s%s\n",
			failMark,
			severityColor(issue.Severity).Sprint(issue.Severity),
			issue.File,
			issue.Description,
			fixable)
	}
}

func printRepair(out io.Writer, result *integrity.RepairResult) {
	if result.DryRun {
		fmt.Fprintln(out, "\nDry run, nothing written:")
	} else {
		fmt.Fprintln(out, "\nRepairs:")
	}
	for _, op := range result.Operations {
		mark := okMark
		detail := op.Operation.Action
		if !op.Success {
			mark = failMark
			detail += ": " + op.Error
		}
		fmt.Fprintf(out, "  %s %s %s\n", mark, op.Operation.File, detail)
	}
	fmt.Fprintf(out, "Succeeded: %d, failed: %d\n", result.SuccessCount, result.FailureCount)
}

func scoreColor(score int) *color.Color {
	switch {
	case score >= 90:
		return color.New(color.FgGreen)
	case score >= 70:
		return color.New(color.FgYellow)
	case score >= 50:
		return color.New(color.FgHiYellow)
	default:
		return color.New(color.FgRed)
	}
}

func severityColor(s integrity.Severity) *color.Color {
	switch s {
	case integrity.SeverityCritical, integrity.SeverityHigh:
		return color.New(color.FgRed)
	case integrity.SeverityMedium:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func severityRank(s integrity.Severity) int {
	switch s {
	case integrity.SeverityCritical:
		return 3
	case integrity.SeverityHigh:
		return 2
	case integrity.SeverityMedium:
		return 1
	default:
		return 0
	}
}
