package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"cvsync/core/reconcile"
	cvsync "cvsync/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunSync bool
	yesConfirm bool
)

// syncCmd is the parent command of both sync directions.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync devices and tags between Nautobot and CloudVision",
	Long: `Reconcile Nautobot and CloudVision in one direction.

The run loads both sides, prints the differences and, once confirmed, applies
them to the target. Devices and ports missing from the source are only deleted
when sync.delete_on_sync is set.

Examples:
  # Show what an import would change
  sync from-cloudvision --dry-run

  # Import with interactive confirmation
  sync from-cloudvision

  # Push Nautobot tags without prompting
  sync to-cloudvision --yes`,
}

func init() {
	for _, dir := range cvsync.Directions() {
		dir := dir
		sub := &cobra.Command{
			Use:  string(dir),
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSync(cmd.Context(), dir)
			},
		}
		if dir == cvsync.FromCloudVision {
			sub.Short = "Import CloudVision devices, system tags and interfaces into Nautobot"
		} else {
			sub.Short = "Push Nautobot tags and assignments to CloudVision"
		}
		syncCmd.AddCommand(sub)
	}

	syncCmd.PersistentFlags().BoolVar(&dryRunSync, "dry-run", false, "Report the differences without applying them")
	syncCmd.PersistentFlags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm changes (non-interactive)")

	RootCmd.AddCommand(syncCmd)
}

func runSync(ctx context.Context, dir cvsync.Direction) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.logger.Sync()
	l := rt.logger

	sinks, _, release := rt.sinks()
	defer release()

	l.Info("Starting sync", zap.String("direction", string(dir)), zap.Bool("dry_run", dryRunSync))
	report, err := rt.service(sinks).Run(ctx, dir, cvsync.RunOptions{
		DryRun: dryRunSync,
		Confirm: func(_ context.Context, diff *reconcile.Diff) bool {
			printDiff(l, diff)
			return confirmDestructiveAction()
		},
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	printSyncReport(l, report)
	if report.Cancelled {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}
	if report.DryRun {
		l.Info("Dry-run mode: No changes were made.")
		return nil
	}
	if n := report.Summary.Totals.Failed; n > 0 {
		return fmt.Errorf("%d changes failed", n)
	}
	return nil
}

// printDiff logs the pending changes per type and a sample of them.
func printDiff(l *zap.Logger, diff *reconcile.Diff) {
	for t, ops := range diff.Counts() {
		fields := []zap.Field{zap.String("type", string(t))}
		for op, n := range ops {
			fields = append(fields, zap.Int(string(op), n))
		}
		l.Info("Pending changes", fields...)
	}

	maxShow := 5
	if len(diff.Changes) < maxShow {
		maxShow = len(diff.Changes)
	}
	for _, ch := range diff.Changes[:maxShow] {
		l.Info("Sample change",
			zap.String("op", string(ch.Op)),
			zap.String("type", string(ch.Type)),
			zap.String("key", string(ch.Key)),
		)
	}
	if len(diff.Changes) > maxShow {
		l.Info("Additional changes not shown", zap.Int("count", len(diff.Changes)-maxShow))
	}
}

// printSyncReport logs the outcome of a run.
func printSyncReport(l *zap.Logger, report *cvsync.Report) {
	t := report.Summary.Totals
	l.Info("Sync report",
		zap.String("id", report.ID),
		zap.String("direction", string(report.Direction)),
		zap.Int("applied", t.Applied),
		zap.Int("skipped", t.Skipped),
		zap.Int("failed", t.Failed),
		zap.Int("pending", t.Pending),
		zap.Duration("took", report.Duration()),
	)
	if report.DryRun {
		printDiff(l, &reconcile.Diff{
			Current: report.Summary.Current,
			Desired: report.Summary.Desired,
			Changes: report.Summary.Changes(),
		})
	}

	for _, res := range report.Summary.Results {
		if res.State == reconcile.StateSkipped {
			l.Debug("Skipped change",
				zap.String("key", string(res.Change.Key)),
				zap.String("reason", res.Reason),
			)
		}
	}
	for _, res := range report.Summary.Failures() {
		l.Error("Failed change",
			zap.String("op", string(res.Change.Op)),
			zap.String("type", string(res.Change.Type)),
			zap.String("key", string(res.Change.Key)),
			zap.String("error", res.Error),
		)
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to apply these changes: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(response)
	return response == "yes"
}
