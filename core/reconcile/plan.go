package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"site-janitor/core/deleter"
	"site-janitor/core/walker"
)

var (
	// ErrNoReport is returned when a deletion is planned without a completed scan.
	ErrNoReport = errors.New("no completed scan report")
	// ErrEmptySelection is returned when no paths are selected.
	ErrEmptySelection = errors.New("no paths selected")
)

// UnknownPathsError lists selected paths that the report does not offer for
// deletion.
type UnknownPathsError struct {
	Paths []string
}

func (e *UnknownPathsError) Error() string {
	return fmt.Sprintf("%d selected path(s) are not deletion candidates: %s", len(e.Paths), strings.Join(e.Paths, ", "))
}

// Plan is a validated deletion request.
type Plan struct {
	Policy Policy   `json:"policy"`
	Paths  []string `json:"paths"`
}

// PlanDeletion checks selection against the candidates of report. Every
// selected path must be a missing folder or a redundant object of report.
// Duplicates are dropped and selection order is kept.
func PlanDeletion(report *Report, selection []string) (*Plan, error) {
	if report == nil {
		return nil, ErrNoReport
	}

	candidates := make(map[string]struct{})
	for _, p := range report.Candidates() {
		candidates[p] = struct{}{}
	}

	plan := &Plan{Policy: report.Policy}
	seen := make(map[string]struct{})
	var unknown []string
	for _, p := range selection {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		if _, ok := candidates[p]; !ok {
			unknown = append(unknown, p)
			continue
		}
		plan.Paths = append(plan.Paths, p)
	}

	if len(unknown) > 0 {
		return nil, &UnknownPathsError{Paths: unknown}
	}
	if len(plan.Paths) == 0 {
		return nil, ErrEmptySelection
	}
	return plan, nil
}

// PlanAll selects every candidate of report.
func PlanAll(report *Report) (*Plan, error) {
	if report == nil {
		return nil, ErrNoReport
	}
	return PlanDeletion(report, report.Candidates())
}

// ApplyPlan deletes the objects of plan and returns how many leaf objects
// were removed. Folder plans are first expanded into the leaves they contain.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
func ApplyPlan(ctx context.Context, plan *Plan, d *deleter.Deleter, w *walker.Walker, opts DeleteOptions) (int, error) {
	// Safety check: do not execute if not confirmed or dry-run
	if !opts.Confirmed || opts.DryRun {
		return 0, nil
	}

	targets := plan.Paths
	if plan.Policy == PolicyFolders {
		leaves, err := deleter.ExpandFolders(ctx, w, plan.Paths)
		if err != nil {
			return 0, err
		}
		targets = leaves
	}
	if len(targets) == 0 {
		return 0, nil
	}

	if err := d.Delete(ctx, targets); err != nil {
		return 0, err
	}
	return len(targets), nil
}
