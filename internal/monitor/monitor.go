package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"subscriber-activity-backend/config"
	"subscriber-activity-backend/internal/event"
	"subscriber-activity-backend/internal/notification"
	"subscriber-activity-backend/internal/timeline"
)

// ServiceActivity is the per-service slice of a computed snapshot: the raw
// reconstructed periods plus their window-relative projection.
type ServiceActivity struct {
	Key       string                     `json:"service_key"`
	Label     string                     `json:"label"`
	Periods   []timeline.ActivityPeriod  `json:"periods"`
	Projected []timeline.ProjectedPeriod `json:"projected"`
}

// Snapshot is one complete pipeline result. It is immutable once published;
// every poll cycle replaces it wholesale.
type Snapshot struct {
	ComputedAt time.Time               `json:"computed_at"`
	Window     timeline.TimeWindow     `json:"window"`
	Services   []ServiceActivity       `json:"services"`
	Totals     timeline.DurationTotals `json:"totals"`
}

// Compute runs the full reconstruction pipeline against one event snapshot
// with a single injected now: group, fold, derive the shared window, project
// each service, and total presence time.
func Compute(events []event.LifecycleEvent, now time.Time) *Snapshot {
	timelines := timeline.BuildTimelines(events, now)
	window := timeline.ComputeWindow(timelines, now)

	services := make([]ServiceActivity, 0, len(timelines))
	for _, tl := range timelines {
		services = append(services, ServiceActivity{
			Key:       tl.Key,
			Label:     tl.Label,
			Periods:   tl.Periods,
			Projected: timeline.Project(tl.Periods, window),
		})
	}

	return &Snapshot{
		ComputedAt: now,
		Window:     window,
		Services:   services,
		Totals:     timeline.SumDurations(timelines),
	}
}

// Service polls the event feed and publishes recomputed snapshots. All state
// is recomputed value; the only thing carried between cycles is the published
// snapshot, which is replaced atomically.
type Service struct {
	cfg        *config.Config
	source     event.Source
	workerPool *notification.WorkerPool
	now        func() time.Time

	mu       sync.RWMutex
	snapshot *Snapshot
}

// NewService creates and initializes a new monitor service. workerPool may
// be nil when offline notifications are not wanted.
func NewService(cfg *config.Config, source event.Source, workerPool *notification.WorkerPool) *Service {
	return &Service{
		cfg:        cfg,
		source:     source,
		workerPool: workerPool,
		now:        time.Now,
	}
}

// Run starts the polling loop. The first cycle runs immediately; subsequent
// cycles follow the configured fixed interval until ctx is cancelled.
func (s *Service) Run(ctx context.Context) {
	if !s.cfg.Poller.Enabled {
		log.Println("Poller is disabled. Not starting.")
		return
	}
	log.Println("Starting activity monitor...")

	if s.workerPool != nil {
		s.workerPool.Start(ctx)
	}

	s.PollOnce(ctx)

	timer := time.NewTimer(s.cfg.Poller.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Activity monitor shutting down.")
			return
		case <-timer.C:
			s.PollOnce(ctx)
			timer.Reset(s.cfg.Poller.Interval)
		}
	}
}

// PollOnce performs one poll cycle: fetch the full event snapshot, recompute
// the pipeline, and publish the result. A fetch failure retains the previous
// snapshot; the next tick acts as the retry.
func (s *Service) PollOnce(ctx context.Context) {
	events, err := s.source.FetchAll(ctx)
	if err != nil {
		log.Printf("Poll cycle failed, keeping previous snapshot: %v", err)
		return
	}

	next := Compute(events, s.now())
	wentOffline := s.publish(next)

	if s.workerPool != nil {
		for _, key := range wentOffline {
			s.workerPool.Dispatch(key)
		}
	}
}

// Snapshot returns the most recently published snapshot, or nil before the
// first successful cycle.
func (s *Service) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// publish swaps in the new snapshot and reports services whose latest period
// transitioned to offline since the previous one.
func (s *Service) publish(next *Snapshot) []string {
	s.mu.Lock()
	prev := s.snapshot
	s.snapshot = next
	s.mu.Unlock()

	return offlineTransitions(prev, next)
}

// offlineTransitions compares two snapshots by service key. Only services
// present in both, previously not offline and now offline, are reported; the
// first cycle (prev == nil) never notifies.
func offlineTransitions(prev, next *Snapshot) []string {
	if prev == nil || next == nil {
		return nil
	}

	prevStatus := make(map[string]timeline.Status, len(prev.Services))
	for _, svc := range prev.Services {
		if st, ok := latestStatus(svc.Periods); ok {
			prevStatus[svc.Key] = st
		}
	}

	var transitions []string
	for _, svc := range next.Services {
		st, ok := latestStatus(svc.Periods)
		if !ok || st != timeline.StatusOffline {
			continue
		}
		if before, seen := prevStatus[svc.Key]; seen && before != timeline.StatusOffline {
			transitions = append(transitions, svc.Key)
		}
	}
	return transitions
}

func latestStatus(periods []timeline.ActivityPeriod) (timeline.Status, bool) {
	if len(periods) == 0 {
		return "", false
	}
	return periods[len(periods)-1].Status, true
}
