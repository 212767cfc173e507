package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/0xb0rn3/gitnav/internal/domain"
	"github.com/0xb0rn3/gitnav/internal/gitexec"
	"github.com/0xb0rn3/gitnav/internal/inventory"
)

// CloneUpdater is the executor surface the orchestrator depends on.
// *gitexec.Executor satisfies it; tests substitute fakes.
type CloneUpdater interface {
	Clone(ctx context.Context, cloneURL, destPath string, progress gitexec.ProgressFunc) domain.Outcome
	Update(ctx context.Context, localPath string) domain.Outcome
}

// ConfirmFunc is the injectable yes/no gate shown before any batch that
// would clone or pull. Pre-supplying a constant answer makes every flow
// non-interactive.
type ConfirmFunc func(prompt string) bool

// ProgressFunc receives filtered clone progress for one repository.
type ProgressFunc func(repo, line string)

// Options configures an orchestrator run.
type Options struct {
	Confirm  ConfirmFunc
	Progress ProgressFunc
	Out      io.Writer
}

// Orchestrator composes dispatcher runs for the full-backup and sync use
// cases. Orphaned local repositories are reported but never deleted or
// modified.
type Orchestrator struct {
	dispatcher *Dispatcher
	executor   CloneUpdater
	inventory  *inventory.Inventory
	opts       Options
}

// NewOrchestrator creates an orchestrator. A nil Confirm declines
// everything; a nil Out discards reports.
func NewOrchestrator(d *Dispatcher, exec CloneUpdater, inv *inventory.Inventory, opts Options) *Orchestrator {
	if opts.Confirm == nil {
		opts.Confirm = func(string) bool { return false }
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Orchestrator{
		dispatcher: d,
		executor:   exec,
		inventory:  inv,
		opts:       opts,
	}
}

// FullBackup clones every remote repository that is not yet backed up and
// optionally updates the ones that are. Nothing happens before the operator
// confirms; with nothing to do, no prompt is shown at all.
func (o *Orchestrator) FullBackup(ctx context.Context, owner string, remote []domain.Repository) (domain.RunResult, error) {
	c, err := o.dispatcher.Classify(remote, owner)
	if err != nil {
		return domain.RunResult{}, err
	}
	result := domain.RunResult{Classification: c}

	if c.Empty() {
		fmt.Fprintln(o.opts.Out, "Nothing to back up.")
		result.State = domain.RunEmpty
		return result, nil
	}

	fmt.Fprintf(o.opts.Out, "Backup plan for %s: %d to clone, %d already cloned\n",
		owner, len(c.ToClone), len(c.ToUpdate))

	if !o.opts.Confirm(fmt.Sprintf("Back up %d repositories?", len(c.ToClone)+len(c.ToUpdate))) {
		result.State = domain.RunCancelled
		return result, nil
	}

	if len(c.ToClone) > 0 {
		summary := o.dispatcher.RunBatch(ctx, o.cloneOp, c.ToClone)
		result.CloneSummary = &summary
		o.reportBatch("clone", summary)
	}

	if len(c.ToUpdate) > 0 && o.opts.Confirm(fmt.Sprintf("Also update %d existing clones?", len(c.ToUpdate))) {
		summary := o.dispatcher.RunBatch(ctx, o.updateOp, c.ToUpdate)
		result.UpdateSummary = &summary
		o.reportBatch("update", summary)
	}

	result.State = domain.RunCompleted
	return result, nil
}

// Sync brings the local backup in line with the remote listing: new
// repositories are cloned, existing ones pulled, and orphans reported by
// name as informational output only.
func (o *Orchestrator) Sync(ctx context.Context, owner string, remote []domain.Repository) (domain.RunResult, error) {
	c, err := o.dispatcher.Classify(remote, owner)
	if err != nil {
		return domain.RunResult{}, err
	}
	result := domain.RunResult{Classification: c}

	fmt.Fprintf(o.opts.Out, "Sync plan for %s: %d to clone, %d to update, %d orphaned\n",
		owner, len(c.ToClone), len(c.ToUpdate), len(c.Orphaned))
	if len(c.Orphaned) > 0 {
		fmt.Fprintf(o.opts.Out, "Orphaned locally (no longer on remote, kept as-is): %s\n",
			strings.Join(c.Orphaned, ", "))
	}

	if c.Empty() {
		result.State = domain.RunEmpty
		return result, nil
	}

	if !o.opts.Confirm(fmt.Sprintf("Synchronize %d repositories?", len(c.ToClone)+len(c.ToUpdate))) {
		result.State = domain.RunCancelled
		return result, nil
	}

	if len(c.ToClone) > 0 {
		summary := o.dispatcher.RunBatch(ctx, o.cloneOp, c.ToClone)
		result.CloneSummary = &summary
		o.reportBatch("clone", summary)
	}

	if len(c.ToUpdate) > 0 {
		summary := o.dispatcher.RunBatch(ctx, o.updateOp, c.ToUpdate)
		result.UpdateSummary = &summary
		o.reportBatch("update", summary)
	}

	result.State = domain.RunCompleted
	return result, nil
}

func (o *Orchestrator) cloneOp(ctx context.Context, repo domain.Repository) domain.Outcome {
	dest := o.inventory.ResolvePath(repo.Owner, repo.Name)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return domain.Outcome{Kind: domain.OutcomeCloneFailed, Reason: err.Error()}
	}

	var sink gitexec.ProgressFunc
	if o.opts.Progress != nil {
		sink = func(line string) { o.opts.Progress(repo.Name, line) }
	}
	return o.executor.Clone(ctx, repo.CloneURL, dest, sink)
}

func (o *Orchestrator) updateOp(ctx context.Context, repo domain.Repository) domain.Outcome {
	return o.executor.Update(ctx, o.inventory.ResolvePath(repo.Owner, repo.Name))
}

// reportBatch prints the explicit success/failure count and names every
// failed item with its reason. No silent drops.
func (o *Orchestrator) reportBatch(label string, summary domain.BatchSummary) {
	fmt.Fprintf(o.opts.Out, "%s batch %s: %d succeeded, %d failed\n",
		label, summary.ID, summary.Succeeded, summary.Failed)
	for _, item := range summary.PerItem {
		if !item.Outcome.OK() {
			fmt.Fprintf(o.opts.Out, "  failed: %s (%s)\n", item.Name, item.Outcome.Reason)
		}
	}
}
