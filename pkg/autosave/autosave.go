// Package autosave provides a background saver for profile snapshots.
//
// The flow engine treats persistence as fire-and-forget: an accepted
// answer must never wait for storage. A Saver absorbs that by queueing
// snapshots on a buffered channel and writing them from a single
// background goroutine, with an optional retry policy per save. When the
// hosting surface goes away mid-flow, Flush drains the queue
// synchronously so nothing collected is lost.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/petrijr/onboard/internal/persistence"
	"github.com/petrijr/onboard/pkg/api"
)

// Config describes how a Saver behaves.
type Config struct {
	// Buffer is the queue capacity. When the queue is full the oldest
	// pending snapshot is dropped in favor of the newest: for a single
	// user, later snapshots strictly supersede earlier ones.
	// Defaults to 16.
	Buffer int

	// Retry applies to each save. The zero value means one attempt.
	Retry api.RetryPolicy

	// OnError is called when a save has exhausted its attempts.
	// Optional; errors are dropped otherwise.
	OnError func(snap *persistence.Snapshot, err error)
}

// Saver writes snapshots to a SnapshotStore from a background goroutine.
type Saver struct {
	store persistence.SnapshotStore
	cfg   Config
	ch    chan *persistence.Snapshot

	// saveMu serializes store writes between the background loop and
	// Flush, so a flush never races an in-flight save.
	saveMu sync.Mutex

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// New constructs a Saver for the given store. Call Start to begin
// background saving; a Saver that is never started still supports
// Enqueue + Flush as a purely synchronous pair.
func New(store persistence.SnapshotStore, cfg Config) *Saver {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 16
	}
	return &Saver{
		store: store,
		cfg:   cfg,
		ch:    make(chan *persistence.Snapshot, cfg.Buffer),
	}
}

// Start launches the background save loop. Calling Start on a running
// Saver is an error.
func (s *Saver) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("autosave: already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-s.ch:
				s.save(ctx, snap)
			}
		}
	}()
	return nil
}

// Enqueue queues a snapshot without blocking. When the buffer is full
// the oldest pending snapshot is discarded.
func (s *Saver) Enqueue(snap *persistence.Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
		}
		select {
		case <-s.ch: // drop oldest, retry the send
		default:
		}
	}
}

// Flush synchronously drains the queue, saving every pending snapshot.
// It also waits out any save the background loop has in flight. Flush is
// the abandon path: it must complete before the caller unloads.
func (s *Saver) Flush(ctx context.Context) error {
	var firstErr error
	for {
		select {
		case snap := <-s.ch:
			if err := s.save(ctx, snap); err != nil && firstErr == nil {
				firstErr = err
			}
		default:
			// Queue empty; grab saveMu once to wait for an in-flight save.
			s.saveMu.Lock()
			s.saveMu.Unlock() //nolint:staticcheck // barrier, not a critical section
			select {
			case snap := <-s.ch:
				if err := s.save(ctx, snap); err != nil && firstErr == nil {
					firstErr = err
				}
				continue
			default:
			}
			return firstErr
		}
	}
}

// Stop cancels the background loop and waits for it to exit. Pending
// snapshots stay queued; call Flush first if they must be written.
func (s *Saver) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Saver) save(ctx context.Context, snap *persistence.Snapshot) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	maxAttempts := s.cfg.Retry.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = s.store.SaveSnapshot(ctx, snap)
		if lastErr == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		if s.cfg.Retry.Backoff > 0 {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				attempt = maxAttempts
			case <-time.After(s.cfg.Retry.Backoff):
			}
		}
	}

	if s.cfg.OnError != nil {
		s.cfg.OnError(snap, lastErr)
	}
	return lastErr
}
