package domain

// OutcomeKind classifies the result of a single clone or update.
type OutcomeKind string

const (
	OutcomeCloned       OutcomeKind = "cloned"
	OutcomeUpdated      OutcomeKind = "updated"
	OutcomeUpToDate     OutcomeKind = "up_to_date"
	OutcomeCloneFailed  OutcomeKind = "clone_failed"
	OutcomeUpdateFailed OutcomeKind = "update_failed"
	OutcomeToolMissing  OutcomeKind = "tool_unavailable"
)

// Outcome is the structured result of one executor invocation. A failed
// external process is reported here, never as a Go error; Reason carries
// any diagnostic text captured from the process.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

// OK reports whether the operation left the local copy in the desired state.
// "Already up to date" counts as success; the distinction is display only.
func (o Outcome) OK() bool {
	switch o.Kind {
	case OutcomeCloned, OutcomeUpdated, OutcomeUpToDate:
		return true
	}
	return false
}

// Classification partitions one remote listing against local state.
// ToClone and ToUpdate are disjoint and together name exactly the remote
// set; Orphaned names valid local checkouts with no matching remote entry.
type Classification struct {
	ToClone  []Repository
	ToUpdate []Repository
	Orphaned []string
}

// Empty reports whether there is no clone or update work to do.
func (c Classification) Empty() bool {
	return len(c.ToClone) == 0 && len(c.ToUpdate) == 0
}

// ItemResult pairs a repository name with its outcome inside a batch.
type ItemResult struct {
	Name    string
	Outcome Outcome
}

// BatchSummary aggregates the per-item outcomes of one bounded-concurrency
// batch. Completion order of PerItem is arbitrary.
type BatchSummary struct {
	ID        string
	Succeeded int
	Failed    int
	PerItem   []ItemResult
}

// FailedNames returns the names of the items that failed, for reporting.
func (s BatchSummary) FailedNames() []string {
	var names []string
	for _, it := range s.PerItem {
		if !it.Outcome.OK() {
			names = append(names, it.Name)
		}
	}
	return names
}

// RunState is the terminal state of one orchestrator invocation.
type RunState string

const (
	RunCompleted RunState = "completed"
	RunCancelled RunState = "cancelled"
	RunEmpty     RunState = "empty"
)

// RunResult is what an orchestrator entry point returns to the caller.
type RunResult struct {
	State          RunState
	Classification Classification
	CloneSummary   *BatchSummary
	UpdateSummary  *BatchSummary
}
