package backup

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/0xb0rn3/gitnav/internal/domain"
	"github.com/0xb0rn3/gitnav/internal/inventory"
	"github.com/0xb0rn3/gitnav/internal/store"
)

// Operation executes one clone or update and reports the result.
type Operation func(ctx context.Context, repo domain.Repository) domain.Outcome

// Dispatcher classifies a remote listing against local state and runs
// executor operations under a bounded worker pool, recording successful
// items in the metadata store as they complete.
type Dispatcher struct {
	inventory   *inventory.Inventory
	store       store.Store
	concurrency int
}

// NewDispatcher creates a dispatcher with the given concurrency bound.
func NewDispatcher(inv *inventory.Inventory, st store.Store, concurrency int) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{
		inventory:   inv,
		store:       st,
		concurrency: concurrency,
	}
}

// Classify partitions the remote listing: repositories without a valid
// local clone go to ToClone, the rest to ToUpdate. Valid local checkouts
// whose name matches no remote entry are reported as Orphaned.
func (d *Dispatcher) Classify(remote []domain.Repository, owner string) (domain.Classification, error) {
	var c domain.Classification

	remoteNames := make(map[string]struct{}, len(remote))
	for _, repo := range remote {
		remoteNames[repo.Name] = struct{}{}
		if d.inventory.IsCloned(owner, repo.Name) {
			c.ToUpdate = append(c.ToUpdate, repo)
		} else {
			c.ToClone = append(c.ToClone, repo)
		}
	}

	local, err := d.inventory.ListLocal(owner)
	if err != nil {
		return c, err
	}
	for _, name := range local {
		if _, ok := remoteNames[name]; !ok {
			c.Orphaned = append(c.Orphaned, name)
		}
	}
	sort.Strings(c.Orphaned)

	return c, nil
}

// RunBatch executes op for every item with at most the configured number of
// operations in flight. Items are independent; completion order is
// arbitrary. Successful items are written through to the metadata store
// immediately; failed items leave the store untouched. Failures never abort
// sibling work, and a started batch always runs every item to completion.
func (d *Dispatcher) RunBatch(ctx context.Context, op Operation, items []domain.Repository) domain.BatchSummary {
	summary := domain.BatchSummary{ID: uuid.New().String()}
	if len(items) == 0 {
		return summary
	}

	var mu sync.Mutex
	var wg sync.WaitGroup

	// Limit concurrent operations
	semaphore := make(chan struct{}, d.concurrency)

	for _, repo := range items {
		wg.Add(1)
		go func(r domain.Repository) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			outcome := op(ctx, r)
			if outcome.OK() {
				d.writeRecord(ctx, r, outcome)
			}

			mu.Lock()
			summary.PerItem = append(summary.PerItem, domain.ItemResult{Name: r.Name, Outcome: outcome})
			if outcome.OK() {
				summary.Succeeded++
			} else {
				summary.Failed++
			}
			mu.Unlock()
		}(repo)
	}

	wg.Wait()
	return summary
}

// writeRecord persists the backup state for a successful operation. A clone
// creates a fresh record; an update refreshes the existing one. A failed
// write is logged and swallowed: the clone or pull itself already succeeded
// on disk, and losing one metadata update degrades gracefully.
func (d *Dispatcher) writeRecord(ctx context.Context, repo domain.Repository, outcome domain.Outcome) {
	now := time.Now().UTC()

	var rec domain.BackupRecord
	if outcome.Kind == domain.OutcomeCloned {
		rec = domain.NewBackupRecord(repo, now)
	} else {
		existing, err := d.store.Get(ctx, repo.Owner, repo.Name)
		if err != nil {
			logger.Warnf("metadata read failed for %s: %v", repo.Key(), err)
		}
		if existing == nil {
			// Stale or missing store: recreate the record from what we know.
			rec = domain.NewBackupRecord(repo, now)
		} else {
			rec = existing.Refreshed(repo, now)
		}
	}

	if err := d.store.Put(ctx, rec); err != nil {
		logger.Warnf("metadata write failed for %s: %v", repo.Key(), err)
	}
}
