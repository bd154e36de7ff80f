// Package reconcile classifies the contents of the asset bucket against the
// catalog.
//
// Two policies share the walker and the reference set:
//
//   - Folder policy: root folders are matched by name against site ids.
//     Unmatched roots are opened one level and their child folders become
//     owner/site candidates. Reserved asset folder names never qualify.
//
//   - Object policy: the whole bucket is walked and every leaf whose
//     normalized path is not referenced by a catalog row is redundant.
//
// Store and catalog are read without coordination, so a write landing
// between the two reads can misclassify an object. Re-running the scan is
// the remedy.
//
// # Lifecycle
//
// A Scanner holds the latest Report for one policy and moves through
// Idle, Scanning, Ready and Failed. Concurrent refreshes share one run.
//
// # Deletion
//
// PlanDeletion validates a selection against a Ready report. ApplyPlan only
// deletes when the options are confirmed and not a dry run.
//
//	engine := reconcile.NewEngine(w, store, cat, builder, normalizer, cfg.Scan, log)
//	report, err := engine.ScanObjects(ctx, reconcile.ViewRecent)
//	plan, err := reconcile.PlanAll(report)
//	n, err := reconcile.ApplyPlan(ctx, plan, del, w, reconcile.DeleteOptions{Confirmed: true})
package reconcile
