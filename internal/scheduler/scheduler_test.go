package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/i474232898/weather-browser/internal/weather"
)

type recorder struct {
	mu   sync.Mutex
	seen []string
	fail string
}

func (r *recorder) FetchAndStore(_ context.Context, loc weather.Location) (weather.WeatherSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, loc.Name)
	if loc.Name == r.fail {
		return weather.WeatherSnapshot{}, errors.New("boom")
	}
	return weather.WeatherSnapshot{Location: loc}, nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func TestRunOnceRefreshesEveryLocation(t *testing.T) {
	rec := &recorder{fail: "B"}
	locs := []weather.Location{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	s := New(func() []weather.Location { return locs }, time.Hour, rec)

	if got := s.RunOnce(context.Background()); got != 2 {
		t.Fatalf("expected 2 successful refreshes, got %d", got)
	}
	if rec.count() != 3 {
		t.Fatalf("expected 3 fetches, got %d", rec.count())
	}
}

func TestRunOnceWithoutLocations(t *testing.T) {
	rec := &recorder{}
	s := New(func() []weather.Location { return nil }, time.Hour, rec)
	if got := s.RunOnce(context.Background()); got != 0 || rec.count() != 0 {
		t.Fatalf("expected no work")
	}
}

func TestStartRunsImmediately(t *testing.T) {
	rec := &recorder{}
	s := New(func() []weather.Location { return []weather.Location{{Name: "A"}} }, time.Hour, rec)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for rec.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("job did not run")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
