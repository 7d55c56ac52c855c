package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reqsync/core/excel"
	"reqsync/core/reconcile"
)

var (
	updateInput  string
	updateDryRun bool
	updateYes    bool
)

// updateCmd applies workbook edits back to the project.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Apply workbook edits to the Jama project",
	Long: `Update reads an edited workbook and applies its changes: rows without
a JAMA_ID are created, rows whose メモ cell is exactly 「削除」 are
deleted, and rows with Description更新 set to 「する」 are updated.
Everything else is skipped.

Creates run first, then updates, then deletes. One row's failure does
not stop the run; failed rows are listed at the end.

Examples:
  # Preview without touching the project
  reqsync update -i requirements.xlsx --dry-run

  # Apply with interactive confirmation
  reqsync update -i requirements.xlsx

  # Apply non-interactively
  reqsync update -i requirements.xlsx --yes`,
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVarP(&updateInput, "input", "i", "", "Input workbook path (required)")
	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "Classify and report only, no remote changes")
	updateCmd.Flags().BoolVar(&updateYes, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	updateCmd.MarkFlagRequired("input")

	RootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, l, client, err := setup()
	if err != nil {
		return err
	}
	defer l.Sync()

	rows, err := excel.Read(updateInput)
	if err != nil {
		return fmt.Errorf("failed to read workbook: %w", err)
	}
	l.Info("Workbook loaded", zap.String("input", updateInput), zap.Int("rows", len(rows)))

	project, err := client.GetProject(ctx)
	if err != nil {
		return fmt.Errorf("failed to reach project %d: %w", cfg.Jama.ProjectID, err)
	}
	l.Info("Starting update", zap.String("project", project))

	engine := &reconcile.Engine{
		Source:    client,
		Transport: client,
		Reporter:  progressReporter(l),
		Log:       l,
		Cfg:       cfg.Sync,
	}

	// Classify first so the confirmation prompt can show what would
	// happen before anything is applied.
	plan, err := engine.Update(ctx, rows, reconcile.UpdateOptions{DryRun: true})
	if err != nil {
		return fmt.Errorf("failed to classify workbook: %w", err)
	}
	printPlan(l, plan)

	mutations := plan.Summary.Creates + plan.Summary.Updates + plan.Summary.Deletes
	if mutations == 0 {
		l.Info("No changes requested in the workbook.")
		return nil
	}
	if updateDryRun {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}

	if !confirmDestructiveAction() {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	result, err := engine.Update(ctx, rows, reconcile.UpdateOptions{})
	if err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	printSummary(l, result)
	return nil
}

// printPlan lists the classified actions, skips excluded.
func printPlan(l *zap.Logger, plan *reconcile.UpdateResult) {
	s := plan.Summary
	l.Info("Planned actions",
		zap.Int("total_rows", s.Total),
		zap.Int("creates", s.Creates),
		zap.Int("updates", s.Updates),
		zap.Int("deletes", s.Deletes),
		zap.Int("skips", s.Skips),
	)
	for _, rec := range plan.Actions {
		if rec.Type == reconcile.ActionSkip {
			continue
		}
		l.Info("Planned action",
			zap.String("type", string(rec.Type)),
			zap.String("jama_id", rec.Row.JamaID),
			zap.String("name", rec.Row.Name()),
		)
	}
}

// printSummary reports the apply outcome. Per-row failures are listed
// but do not make the command fail; the operator decides what to redo.
func printSummary(l *zap.Logger, result *reconcile.UpdateResult) {
	s := result.Summary
	l.Info("Update complete",
		zap.Int("succeeded", s.Succeeded),
		zap.Int("failed", s.Failed),
		zap.Int("skipped", s.Skips),
		zap.Int("created", len(result.CreatedIDs)),
	)
	for _, f := range result.Failures {
		l.Warn("Row failed",
			zap.String("action", string(f.Action)),
			zap.String("jama_id", f.JamaID),
			zap.String("name", f.Name),
			zap.String("reason", f.Reason),
		)
	}
	if len(result.CreatedIDs) > 0 {
		l.Info("Created item ids", zap.Ints("ids", result.CreatedIDs))
		l.Info("Fill the new ids into the JAMA_ID column before re-running this workbook.")
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if updateYes {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\nApply these changes to the project? [y/N]: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
