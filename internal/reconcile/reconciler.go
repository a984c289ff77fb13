// Package reconcile merges the local session ledger with the remote session
// store.
//
// A cycle fetches the recent remote page, pushes every resolved local
// session that has never been confirmed, migrates the ledger record to the
// identifier the remote store assigned, and builds the merged view. The
// merged view is committed only when the whole cycle succeeds.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "focusflow/internal/errors"
	"focusflow/internal/ledger"
	"focusflow/internal/model"
)

const (
	DefaultFetchLimit = 100
	flightKey         = "reconcile"
)

type RemoteStore interface {
	FetchRecentSessions(ctx context.Context, token string, limit int) ([]model.RemoteSession, error)
	PushSession(ctx context.Context, token string, session model.Session) (string, error)
}

type Ledger interface {
	List(ctx context.Context, filter ledger.Filter) iter.Seq2[model.Session, error]
	ReplaceID(ctx context.Context, oldID, newID string) error
}

// TokenFunc returns the bearer credential for the remote store. An empty
// token means the user is signed out and reconciliation is skipped.
type TokenFunc func(ctx context.Context) (string, error)

type Migration struct {
	LocalID  string
	RemoteID string
}

type Result struct {
	Skipped bool
	// Merged is ordered by StartedAt ascending.
	Merged          []model.Session
	Migrations      []Migration
	MigrationErrors []error
	// CompletedFocusCount counts completed focus sessions in Merged.
	CompletedFocusCount int
	FinishedAt          time.Time
}

type Status struct {
	LastResult  *Result
	LastError   error
	LastAttempt time.Time
}

type Options struct {
	FetchLimit int
	Logger     *log.Logger
	Now        func() time.Time
}

type Reconciler struct {
	ledger     Ledger
	remote     RemoteStore
	token      TokenFunc
	fetchLimit int
	logger     *log.Logger
	now        func() time.Time

	group   singleflight.Group
	trigger chan struct{}

	mu          sync.Mutex
	last        *Result
	lastErr     error
	lastAttempt time.Time
}

func New(l Ledger, remote RemoteStore, token TokenFunc, opts Options) *Reconciler {
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = DefaultFetchLimit
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Reconciler{
		ledger:     l,
		remote:     remote,
		token:      token,
		fetchLimit: opts.FetchLimit,
		logger:     opts.Logger,
		now:        opts.Now,
		trigger:    make(chan struct{}, 1),
	}
}

// Reconcile runs one cycle. A call made while another cycle is in flight
// waits for and returns that cycle's outcome instead of starting a new one.
func (r *Reconciler) Reconcile(ctx context.Context) (*Result, error) {
	ch := r.group.DoChan(flightKey, func() (interface{}, error) {
		return r.reconcile(ctx)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Result), nil
	}
}

func (r *Reconciler) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		LastResult:  r.last,
		LastError:   r.lastErr,
		LastAttempt: r.lastAttempt,
	}
}

// Trigger asks a running Run loop for a cycle without blocking.
func (r *Reconciler) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// SessionResolved schedules a cycle for every resolved session.
func (r *Reconciler) SessionResolved(model.Session) {
	r.Trigger()
}

// Run reconciles once, then on every interval and every Trigger, until ctx
// is cancelled. A non-positive interval disables the periodic cycle.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if _, err := r.Reconcile(ctx); err != nil && ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-tick:
		case <-r.trigger:
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	r.lastAttempt = r.now()
	r.mu.Unlock()

	result, err := r.cycle(ctx)
	if err != nil {
		r.logger.Printf("reconcile: %v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastErr = err
	if err == nil && !result.Skipped {
		r.last = result
	}
	return result, err
}

func (r *Reconciler) cycle(ctx context.Context) (*Result, error) {
	token, err := r.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	if token == "" {
		return &Result{Skipped: true, FinishedAt: r.now()}, nil
	}

	remote, err := r.remote.FetchRecentSessions(ctx, token, r.fetchLimit)
	if err != nil {
		return nil, &apperrors.SyncError{Op: "fetch", Err: err}
	}

	local, err := collect(r.ledger.List(ctx, ledger.Filter{}))
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	result := &Result{}
	pushed := 0
	merge := make([]model.Session, 0, len(local))
	for i, session := range local {
		if session.Pending() || session.SyncStatus == model.SyncSynced {
			merge = append(merge, session)
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		remoteID, err := r.remote.PushSession(ctx, token, session)
		if err != nil {
			return nil, &apperrors.SyncError{Op: "push " + session.ID, Err: err}
		}
		pushed++

		// The remote holds the record now; the id change must land even if
		// the caller gives up, or the next cycle pushes it again.
		if err := r.ledger.ReplaceID(context.WithoutCancel(ctx), session.ID, remoteID); err != nil {
			if isContextErr(err) {
				return nil, err
			}
			r.logger.Printf("reconcile: migrate %s: %v", session.ID, err)
			result.MigrationErrors = append(result.MigrationErrors, err)
			// The refetched remote copy stands in for this record.
			continue
		}

		local[i].ID = remoteID
		local[i].SyncStatus = model.SyncSynced
		merge = append(merge, local[i])
		result.Migrations = append(result.Migrations, Migration{LocalID: session.ID, RemoteID: remoteID})
	}

	// Refetch so freshly pushed records come back in their remote form and a
	// following cycle with no new activity yields the same view.
	if pushed > 0 {
		remote, err = r.remote.FetchRecentSessions(ctx, token, r.fetchLimit)
		if err != nil {
			return nil, &apperrors.SyncError{Op: "refetch", Err: err}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Merged = Merge(merge, remote)
	result.CompletedFocusCount = CountCompletedFocus(result.Merged)
	result.FinishedAt = r.now()
	return result, nil
}

// Merge unions remote and local sessions by identifier. A remote record
// overrides the outcome and actual duration of the local record sharing its
// id; local records absent from the remote page are kept as they are.
func Merge(local []model.Session, remote []model.RemoteSession) []model.Session {
	localByID := make(map[string]model.Session, len(local))
	for _, session := range local {
		localByID[session.ID] = session
	}

	merged := make([]model.Session, 0, len(local)+len(remote))
	remoteIDs := make(map[string]struct{}, len(remote))
	for _, rs := range remote {
		if _, dup := remoteIDs[rs.ID]; dup {
			continue
		}
		remoteIDs[rs.ID] = struct{}{}

		if session, ok := localByID[rs.ID]; ok {
			merged = append(merged, model.OverlayRemote(session, rs))
		} else {
			merged = append(merged, model.FromRemoteSession(rs))
		}
	}
	for _, session := range local {
		if _, ok := remoteIDs[session.ID]; !ok {
			merged = append(merged, session)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		if !merged[i].StartedAt.Equal(merged[j].StartedAt) {
			return merged[i].StartedAt.Before(merged[j].StartedAt)
		}
		return merged[i].ID < merged[j].ID
	})
	return merged
}

func CountCompletedFocus(sessions []model.Session) int {
	count := 0
	for _, session := range sessions {
		if session.Mode == model.ModeFocus && session.Outcome == model.OutcomeCompleted {
			count++
		}
	}
	return count
}

func collect(seq iter.Seq2[model.Session, error]) ([]model.Session, error) {
	var sessions []model.Session
	for session, err := range seq {
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

// IsSyncError reports whether err came from the remote store.
func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func IsSyncError(err error) bool {
	var syncErr *apperrors.SyncError
	return errors.As(err, &syncErr)
}
