package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"site-janitor/core/reconcile"
	"site-janitor/feature/maintenance"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	scanSort   string
	scanDelete bool
	scanDryRun bool
	scanYes    bool
	scanJSON   bool
)

// scanCmd is the parent command for reconciliation scans.
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Reconcile the asset bucket against the catalog",
	Long: `Scan the asset bucket for folders and objects the catalog no longer knows about.
Optionally delete every candidate after confirmation.`,
}

var scanFoldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Report site folders with no catalog record",
	Long: `Lists the top two levels of the bucket and matches folder names against site ids.

Examples:
  # Report only
  scan folders

  # Delete every missing folder after an interactive prompt
  scan folders --delete

  # Delete without prompting
  scan folders --delete --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, reconcile.PolicyFolders)
	},
}

var scanObjectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "Report objects no catalog row refers to",
	Long: `Walks the whole bucket and compares every object with the asset paths stored in the catalog.

Examples:
  # Newest redundant objects first, as JSON
  scan objects --sort recent --json

  # Show what would be deleted
  scan objects --delete --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, reconcile.PolicyObjects)
	},
}

func init() {
	for _, c := range []*cobra.Command{scanFoldersCmd, scanObjectsCmd} {
		c.Flags().BoolVar(&scanDelete, "delete", false, "Delete every candidate after the report")
		c.Flags().BoolVar(&scanDryRun, "dry-run", false, "Validate the deletion without removing anything")
		c.Flags().BoolVar(&scanYes, "yes", false, "Auto-confirm destructive actions (non-interactive)")
		c.Flags().BoolVar(&scanJSON, "json", false, "Print the report as JSON")
		scanCmd.AddCommand(c)
	}
	scanObjectsCmd.Flags().StringVar(&scanSort, "sort", "path", "Order of redundant objects (path, recent)")

	RootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, policy reconcile.Policy) error {
	ctx := cmd.Context()

	view, err := reconcile.ParseObjectView(scanSort)
	if err != nil {
		return err
	}

	env, err := setup()
	if err != nil {
		return err
	}
	l := env.logger
	defer l.Sync()

	svc := maintenance.NewService(env.store, env.catalog, env.cfg.Storage, env.cfg.Scan, l, nil)

	l.Info("Scanning", zap.String("policy", string(policy)))
	report, err := svc.Scan(ctx, policy)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}
	reconcile.SortObjects(report.Redundant, view)

	if err := printReport(cmd.OutOrStdout(), l, report, scanJSON); err != nil {
		return err
	}

	if !scanDelete {
		return nil
	}

	candidates := report.Candidates()
	if len(candidates) == 0 {
		l.Info("Nothing to delete")
		return nil
	}

	if !scanDryRun && !confirmDestructiveAction(cmd.InOrStdin(), cmd.ErrOrStderr(), scanYes) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	result, err := svc.Delete(ctx, policy, candidates, scanDryRun)
	if err != nil {
		return fmt.Errorf("deletion failed: %w", err)
	}

	if result.DryRun {
		l.Info("Dry-run mode: No changes were made.", zap.Int("selected", len(result.Paths)))
		return nil
	}
	l.Info("Successfully deleted candidates",
		zap.Int("selected", len(result.Paths)),
		zap.Int("objects", result.Deleted))
	return nil
}

// printReport writes report as JSON to out, or summarizes it through l.
func printReport(out io.Writer, l *zap.Logger, report *reconcile.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	s := report.Stats
	l.Info("Scan report",
		zap.String("policy", string(report.Policy)),
		zap.Int("scanned", s.Scanned),
		zap.Int("matched", s.Matched),
		zap.Int("missing", s.Missing),
		zap.Int("redundant", s.Redundant),
		zap.Int("entities", s.TotalEntities),
		zap.Int("referenced_paths", s.ReferencedPaths),
		zap.Int("skipped_values", s.Skipped),
	)

	const maxShow = 10
	candidates := report.Candidates()
	for i, p := range candidates {
		if i == maxShow {
			l.Info("Additional candidates not shown", zap.Int("count", len(candidates)-maxShow))
			break
		}
		l.Info("Candidate", zap.String("path", p))
	}
	return nil
}

// confirmDestructiveAction reads a "yes" from in unless auto is set.
func confirmDestructiveAction(in io.Reader, out io.Writer, auto bool) bool {
	if auto {
		fmt.Fprintln(out, "\n✓ Auto-confirmed via --yes flag")
		return true
	}
	if in == nil {
		in = os.Stdin
	}

	fmt.Fprint(out, "\n⚠️  Type 'yes' to confirm destructive actions: ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	return strings.TrimSpace(response) == "yes"
}
