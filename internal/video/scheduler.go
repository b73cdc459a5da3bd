package video

import (
	"container/heap"
	"sync"
	"time"

	"github.com/roylee0704/gron"

	"tvd/internal/models"
	"tvd/internal/providers"
	"tvd/internal/services"
	"tvd/internal/structures"
	"tvd/internal/video/interfaces"
)

type expiryItem struct {
	fireAt time.Time
	id     string
}

type expiryHeap []*expiryItem

func (h expiryHeap) Len() int            { return len(h) }
func (h expiryHeap) Less(i, j int) bool  { return h[i].fireAt.Before(h[j].fireAt) }
func (h expiryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x any)         { *h = append(*h, x.(*expiryItem)) }
func (h *expiryHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Scheduler owns record expiry: one job per record, fired at most once by a
// single background loop draining a min-heap. A job firing for an id that
// was already deleted is a no-op delete.
type Scheduler struct {
	config  *structures.Config
	logger  providers.Logger
	service services.VideoServiceInterface
	metrics providers.MetricsProviderInterface
	clock   interfaces.Clock

	cron *gron.Cron

	mu   sync.Mutex
	jobs expiryHeap
	wake chan struct{}
	done chan struct{}
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func NewScheduler(config *structures.Config, logger providers.Logger, service services.VideoServiceInterface, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return NewSchedulerWithClock(config, logger, service, metrics, realClock{})
}

func NewSchedulerWithClock(config *structures.Config, logger providers.Logger, service services.VideoServiceInterface, metrics providers.MetricsProviderInterface, clock interfaces.Clock) interfaces.SchedulerInterface {
	return &Scheduler{
		config:  config,
		logger:  logger,
		service: service,
		metrics: metrics,
		clock:   clock,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

func (s *Scheduler) Init() {
	go s.run()

	s.cron = gron.New()
	sweep := s.config.Video.SweepInterval
	if sweep <= 0 {
		sweep = time.Hour
	}
	s.cron.AddFunc(gron.Every(sweep), func() {
		s.Sweep()
		s.metrics.SetRecordsTotal(s.service.Count())
	})
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	close(s.done)
}

// Schedule registers an expiry job for id at fireAt and wakes the loop so a
// job earlier than the current head takes effect immediately.
func (s *Scheduler) Schedule(id string, fireAt time.Time) {
	s.mu.Lock()
	heap.Push(&s.jobs, &expiryItem{fireAt: fireAt, id: id})
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Restore loads the store file, drops records already past their TTL and
// schedules an expiry job for every surviving record. A malformed file is
// treated as an empty store, never a startup failure.
func (s *Scheduler) Restore() error {
	stored, err := s.service.Load()
	if err != nil {
		s.logger.Warnf(providers.TypeApp, "Store file unreadable, starting empty: %s", err)
		stored = make(models.VideoStorage)
	}

	now := s.clock.Now()
	kept := make(models.VideoStorage, len(stored))
	dropped := 0
	for id, rec := range stored {
		if rec == nil {
			continue
		}
		fireAt := rec.ExpiresAt(s.config.Video.TTL)
		if !fireAt.After(now) {
			dropped++
			continue
		}
		kept[id] = rec
		s.Schedule(id, fireAt)
	}

	s.service.PutSnapshot(kept)
	s.logger.Infof(providers.TypeApp, "Restored %d video(s), dropped %d expired", len(kept), dropped)

	if dropped > 0 {
		return s.Persist()
	}
	return nil
}

func (s *Scheduler) Persist() error {
	err := s.service.Persist()
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error while persisting videos: %s", err)
		return err
	}
	return nil
}

// Sweep deletes any record whose TTL elapsed without its job firing. It is
// a safety net behind the heap loop, not the primary expiry path.
func (s *Scheduler) Sweep() {
	now := s.clock.Now()
	for _, rec := range s.service.List() {
		if !rec.ExpiresAt(s.config.Video.TTL).After(now) {
			s.expire(rec.Id)
		}
	}
}

func (s *Scheduler) run() {
	for {
		s.mu.Lock()
		var wait time.Duration
		if len(s.jobs) == 0 {
			wait = time.Hour
		} else {
			wait = s.jobs[0].fireAt.Sub(s.clock.Now())
		}
		if wait <= 0 {
			item := heap.Pop(&s.jobs).(*expiryItem)
			s.mu.Unlock()
			s.expire(item.id)
			continue
		}
		s.mu.Unlock()

		select {
		case <-s.done:
			return
		case <-s.wake:
		case <-s.clock.After(wait):
		}
	}
}

func (s *Scheduler) expire(id string) {
	removed, err := s.service.Delete(id)
	if err != nil {
		s.logger.Errorf(providers.TypeApp, "Error persisting expiry of %s: %s", id, err)
		return
	}
	if !removed {
		// Stale job for an id deleted through another path.
		return
	}
	s.metrics.IncExpiries()
	s.logger.Infof(providers.TypeApp, "Video %s expired", id)
}
