package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"showguide/services/epguides"
)

// MasterLister is the slice of the source client the refresher needs.
type MasterLister interface {
	MasterList(ctx context.Context) ([]epguides.ShowRow, error)
}

// Service keeps the master-list cache warm by re-reading it on an interval.
// Reads go through the normal cache-aside path, so a refresh only hits the
// upstream once the cached payload has expired; no user request then pays
// for the first cold fetch.
type Service struct {
	source   MasterLister
	interval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(source MasterLister, interval time.Duration) *Service {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Service{source: source, interval: interval}
}

// Start launches the refresh loop. Calling Start on a running service is a
// no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.running = true

	s.wg.Add(1)
	go s.run(ctx)
	log.Printf("[scheduler] master-list refresh every %s", s.interval)
}

// Stop halts the refresh loop and waits for an in-flight refresh to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Service) run(ctx context.Context) {
	defer s.wg.Done()

	s.refresh(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Service) refresh(ctx context.Context) {
	rows, err := s.source.MasterList(ctx)
	if err != nil {
		log.Printf("[scheduler] master-list refresh failed: %v", err)
		return
	}
	log.Printf("[scheduler] master list warm: %d shows", len(rows))
}
