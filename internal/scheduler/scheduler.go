package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-browser/internal/logger"
	"github.com/i474232898/weather-browser/internal/weather"
)

// Source lists the locations to refresh; it is consulted on every run so
// favorites added after Start are picked up.
type Source func() []weather.Location

// Refresher fetches and stores weather for one location.
type Refresher interface {
	FetchAndStore(ctx context.Context, loc weather.Location) (weather.WeatherSnapshot, error)
}

// Scheduler periodically refreshes weather for the locations from its source.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	service    Refresher
	source     Source
	interval   time.Duration
	jobTimeout time.Duration
}

// New creates a new Scheduler.
func New(source Source, interval time.Duration, service Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:  s,
		service:    service,
		source:     source,
		interval:   interval,
		jobTimeout: 30 * time.Second,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes every location concurrently and returns the number
// refreshed successfully.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	locations := s.source()
	if len(locations) == 0 {
		logger.L().Debug("scheduler_no_locations")
		return 0
	}
	logger.L().Info("scheduler_run", "locations", len(locations))

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, loc := range locations {
		wg.Add(1)
		go func(loc weather.Location) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
			defer cancel()

			if _, err := s.service.FetchAndStore(ctx, loc); err != nil {
				logger.L().Warn("scheduler_fetch_failed", "location", loc.Label(), "err", err)
				return
			}
			mu.Lock()
			ok++
			mu.Unlock()
		}(loc)
	}
	wg.Wait()
	logger.L().Info("scheduler_done", "refreshed", ok, "locations", len(locations))
	return ok
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
