package setsync

import (
	"alcyxob/sets-tracker/internal/domain"
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultRetryInterval is how often Run retries an unacknowledged push.
const DefaultRetryInterval = 30 * time.Second

var (
	ErrSetNotFound = errors.New("set not found locally")
	// ErrStaleSync is returned by a Sync whose response arrived after a newer
	// Sync had started. The response is discarded.
	ErrStaleSync = errors.New("sync response superseded by a newer sync")
)

// Remote is the server side of a sync.
type Remote interface {
	// List returns every stored set.
	List(ctx context.Context) ([]domain.LoggedSet, error)
	// Push sends the full local state and returns the stored sets afterwards.
	Push(ctx context.Context, sets []domain.LoggedSet, deletedIDs []string) ([]domain.LoggedSet, error)
}

// Local persists the engine state between runs.
type Local interface {
	LoadSets(ctx context.Context) ([]domain.LoggedSet, error)
	SaveSets(ctx context.Context, sets []domain.LoggedSet) error
	LoadPendingSync(ctx context.Context) (bool, error)
	SavePendingSync(ctx context.Context, pending bool) error
	LoadPendingDeletes(ctx context.Context) ([]string, error)
	SavePendingDeletes(ctx context.Context, ids []string) error
}

// Engine owns the local set list. Mutations apply locally first, are
// persisted, and mark the state pending until a push is acknowledged.
// All state changes go through one mutex, so callers may share an Engine.
type Engine struct {
	local  Local
	remote Remote

	mu             sync.Mutex
	sets           []domain.LoggedSet
	pending        bool
	pendingDeletes []string
	version        uint64 // bumped by every local mutation
	seq            uint64 // bumped by every Sync
	lastErr        error

	signal        chan struct{}
	retryInterval time.Duration
	now           func() time.Time
	newID         func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithRetryInterval sets how often Run retries a pending push.
func WithRetryInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.retryInterval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces uuid.NewString for new set ids.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// NewEngine creates an engine. Call Load before use.
func NewEngine(local Local, remote Remote, opts ...Option) *Engine {
	e := &Engine{
		local:         local,
		remote:        remote,
		sets:          []domain.LoggedSet{},
		signal:        make(chan struct{}, 1),
		retryInterval: DefaultRetryInterval,
		now:           time.Now,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load reads the persisted state, then syncs. A failed sync is returned but
// leaves the local state usable.
func (e *Engine) Load(ctx context.Context) error {
	sets, err := e.local.LoadSets(ctx)
	if err != nil {
		return fmt.Errorf("load local sets: %w", err)
	}
	pending, err := e.local.LoadPendingSync(ctx)
	if err != nil {
		return fmt.Errorf("load pending flag: %w", err)
	}
	deletes, err := e.local.LoadPendingDeletes(ctx)
	if err != nil {
		return fmt.Errorf("load pending deletes: %w", err)
	}

	e.mu.Lock()
	e.sets = sets
	// A pending delete is itself an unacknowledged write.
	e.pending = pending || len(deletes) > 0
	e.pendingDeletes = deletes
	e.mu.Unlock()

	return e.Sync(ctx)
}

// Add logs a new set locally.
func (e *Engine) Add(ctx context.Context, in domain.SetInput) (domain.LoggedSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	set := domain.NewLoggedSet(e.newID(), in, e.now())
	e.sets = append([]domain.LoggedSet{set}, e.sets...)
	if err := e.markDirtyLocked(ctx); err != nil {
		return set, err
	}
	return set, nil
}

// Update applies patch to the local copy of id.
func (e *Engine) Update(ctx context.Context, id string, patch domain.SetPatch) (domain.LoggedSet, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i := range e.sets {
		if e.sets[i].ID != id {
			continue
		}
		patch.Apply(&e.sets[i], domain.FormatISO(e.now()))
		updated := e.sets[i]
		return updated, e.markDirtyLocked(ctx)
	}
	return domain.LoggedSet{}, ErrSetNotFound
}

// Delete removes id locally and queues the delete for the server. Deleting
// an id that is not present locally still queues it.
func (e *Engine) Delete(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.sets[:0:0]
	for _, s := range e.sets {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	e.sets = kept
	if !containsID(e.pendingDeletes, id) {
		e.pendingDeletes = append(e.pendingDeletes, id)
	}
	return e.markDirtyLocked(ctx)
}

// markDirtyLocked records a mutation, persists and wakes Run.
func (e *Engine) markDirtyLocked(ctx context.Context) error {
	e.version++
	e.pending = true
	if err := e.persistLocked(ctx); err != nil {
		return err
	}
	select {
	case e.signal <- struct{}{}:
	default:
	}
	return nil
}

func (e *Engine) persistLocked(ctx context.Context) error {
	if err := e.local.SaveSets(ctx, e.sets); err != nil {
		return fmt.Errorf("save local sets: %w", err)
	}
	if err := e.local.SavePendingSync(ctx, e.pending); err != nil {
		return fmt.Errorf("save pending flag: %w", err)
	}
	if err := e.local.SavePendingDeletes(ctx, e.pendingDeletes); err != nil {
		return fmt.Errorf("save pending deletes: %w", err)
	}
	return nil
}

// Sync pushes the full local state when writes are pending, otherwise pulls,
// and merges the server's answer into the local list. The pending flag is
// cleared only if no mutation happened while the push was in flight.
func (e *Engine) Sync(ctx context.Context) error {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	push := e.pending
	version := e.version
	sentSets := append([]domain.LoggedSet(nil), e.sets...)
	sentDeletes := append([]string(nil), e.pendingDeletes...)
	e.mu.Unlock()

	var remote []domain.LoggedSet
	var err error
	if push {
		remote, err = e.remote.Push(ctx, sentSets, sentDeletes)
	} else {
		remote, err = e.remote.List(ctx)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if seq != e.seq {
		return ErrStaleSync
	}
	if err != nil {
		e.lastErr = err
		log.Printf("WARN: Sync failed (pending=%t): %v", e.pending, err)
		return err
	}

	if push {
		e.pendingDeletes = withoutIDs(e.pendingDeletes, sentDeletes)
	}
	// Deletes queued after this sync started must not be resurrected.
	remote = filterIDs(remote, e.pendingDeletes)

	e.sets = MergeSets(e.sets, remote)
	if push && e.version == version {
		e.pending = false
	}
	e.lastErr = nil

	if err := e.persistLocked(ctx); err != nil {
		e.lastErr = err
		return err
	}
	return nil
}

// Run syncs whenever a mutation signals and retries pending pushes every
// retry interval, until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	ticker := time.NewTicker(e.retryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.signal:
		case <-ticker.C:
			if !e.Pending() {
				continue
			}
		}
		if err := e.Sync(ctx); err != nil && !errors.Is(err, ErrStaleSync) && ctx.Err() == nil {
			log.Printf("WARN: Background sync will retry in %s: %v", e.retryInterval, err)
		}
	}
}

// Sets returns a copy of the local set list.
func (e *Engine) Sets() []domain.LoggedSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.LoggedSet(nil), e.sets...)
}

// Pending reports whether unacknowledged local writes exist.
func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// PendingDeletes returns the ids waiting for server confirmation.
func (e *Engine) PendingDeletes() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.pendingDeletes...)
}

// Err returns the error of the last sync, nil after a successful one.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func withoutIDs(ids, remove []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !containsID(remove, id) {
			out = append(out, id)
		}
	}
	return out
}

func filterIDs(sets []domain.LoggedSet, drop []string) []domain.LoggedSet {
	if len(drop) == 0 {
		return sets
	}
	out := make([]domain.LoggedSet, 0, len(sets))
	for _, s := range sets {
		if !containsID(drop, s.ID) {
			out = append(out, s)
		}
	}
	return out
}
