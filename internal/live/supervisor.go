package live

import (
	"context"
	"log/slog"
	"sort"
	"sync"
)

// WatchFunc follows one entity until ctx is done or the watch fails.
type WatchFunc func(ctx context.Context, id string) error

// Supervisor keeps exactly one running watch per id in the most recent set
// passed to Reconcile.
type Supervisor struct {
	run    WatchFunc
	logger *slog.Logger

	mu      sync.Mutex
	handles map[string]*handle
	wg      sync.WaitGroup
}

type handle struct {
	cancel context.CancelFunc
}

func NewSupervisor(run WatchFunc, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		run:     run,
		logger:  logger,
		handles: make(map[string]*handle),
	}
}

// Reconcile starts watches for ids that have none and stops watches whose id
// is no longer present. New watches are children of ctx.
func (s *Supervisor) Reconcile(ctx context.Context, ids []string) (started, stopped []string) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, h := range s.handles {
		if _, ok := want[id]; ok {
			continue
		}
		h.cancel()
		delete(s.handles, id)
		stopped = append(stopped, id)
	}
	sort.Strings(stopped)

	if ctx.Err() != nil {
		return nil, stopped
	}

	for _, id := range ids {
		if _, ok := s.handles[id]; ok {
			continue
		}
		wctx, cancel := context.WithCancel(ctx)
		h := &handle{cancel: cancel}
		s.handles[id] = h
		started = append(started, id)

		s.wg.Add(1)
		go s.watch(wctx, id, h)
	}

	return started, stopped
}

func (s *Supervisor) watch(ctx context.Context, id string, h *handle) {
	defer s.wg.Done()
	defer h.cancel()

	err := s.run(ctx, id)
	if err != nil && ctx.Err() == nil {
		s.logger.Warn("watch_stopped", "id", id, "error", err)
	}

	// forget the handle so the next Reconcile restarts it
	s.mu.Lock()
	if s.handles[id] == h {
		delete(s.handles, id)
	}
	s.mu.Unlock()
}

// Active returns the ids with a running watch, sorted.
func (s *Supervisor) Active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.handles))
	for id := range s.handles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stop cancels every watch and waits for all of them to return.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	for id, h := range s.handles {
		h.cancel()
		delete(s.handles, id)
	}
	s.mu.Unlock()

	s.wg.Wait()
}
