package location

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/i474232898/weather-browser/internal/gazetteer"
	"github.com/i474232898/weather-browser/internal/logger"
	"github.com/i474232898/weather-browser/internal/metrics"
)

// State of a Resolver.
type State string

const (
	StateIdle      State = "idle"
	StateQuerying  State = "querying"
	StateResolved  State = "resolved"
	StateExhausted State = "exhausted"
)

// Terminal reports whether no further transition happens without a new Begin.
func (s State) Terminal() bool {
	return s == StateResolved || s == StateExhausted
}

// ErrSuperseded is returned to callers waiting on an attempt that was replaced
// by a newer one or reset.
var ErrSuperseded = errors.New("resolution superseded")

// Resolved is the successful outcome of a resolution attempt.
type Resolved struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Options tune a resolution attempt.
type Options struct {
	// QueryTimeout bounds each candidate call; a timeout counts as no results.
	QueryTimeout time.Duration
	// AdvanceDelay is slept before every candidate after the first.
	AdvanceDelay time.Duration
}

// DefaultOptions match the interactive client behaviour.
func DefaultOptions() Options {
	return Options{QueryTimeout: 8 * time.Second, AdvanceDelay: 50 * time.Millisecond}
}

// Resolve tries queries in order and returns the first hit's coordinates
// labelled with name. Failed or empty candidates fall through to the next
// one; ErrLocationNotFound is returned once all are used up.
func Resolve(ctx context.Context, g Geocoder, name string, queries []string, opts Options) (Resolved, error) {
	if len(queries) == 0 {
		return Resolved{}, ErrNoCandidates
	}
	res, err := runAttempt(ctx, g, name, queries, opts, nil)
	switch {
	case err == nil:
		metrics.ResolutionsTotal.WithLabelValues("resolved").Inc()
	case errors.Is(err, ErrLocationNotFound):
		metrics.ResolutionsTotal.WithLabelValues("exhausted").Inc()
	}
	return res, err
}

// ResolveEntry plans and resolves a gazetteer entry.
func ResolveEntry(ctx context.Context, g Geocoder, e gazetteer.Entry, opts Options) (Resolved, error) {
	return Resolve(ctx, g, e.DisplayName, Plan(e), opts)
}

// runAttempt is the sequential candidate loop shared by Resolve and Resolver.
// before is called ahead of each dispatch; returning false abandons the attempt.
func runAttempt(ctx context.Context, g Geocoder, name string, queries []string, opts Options, before func(i int) bool) (Resolved, error) {
	for i, q := range queries {
		if i > 0 && opts.AdvanceDelay > 0 {
			t := time.NewTimer(opts.AdvanceDelay)
			select {
			case <-ctx.Done():
				t.Stop()
				return Resolved{}, ctx.Err()
			case <-t.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return Resolved{}, err
		}
		if before != nil && !before(i) {
			return Resolved{}, ErrSuperseded
		}

		results, err := queryOnce(ctx, g, q, opts.QueryTimeout)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Resolved{}, ctxErr
		}
		if err != nil {
			metrics.GeocodeQueriesTotal.WithLabelValues("error").Inc()
			logger.L().Warn("geocode_candidate_failed", "name", name, "query", q, "index", i, "err", err)
			continue
		}
		results = FilterValid(results)
		if len(results) == 0 {
			metrics.GeocodeQueriesTotal.WithLabelValues("empty").Inc()
			logger.L().Debug("geocode_candidate_empty", "name", name, "query", q, "index", i)
			continue
		}

		metrics.GeocodeQueriesTotal.WithLabelValues("hit").Inc()
		first := results[0]
		logger.L().Debug("geocode_candidate_hit", "name", name, "query", q, "index", i,
			"lat", first.Latitude, "lon", first.Longitude)
		return Resolved{Name: name, Latitude: first.Latitude, Longitude: first.Longitude}, nil
	}
	return Resolved{}, ErrLocationNotFound
}

func queryOnce(ctx context.Context, g Geocoder, q string, timeout time.Duration) ([]Result, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	res, err := g.Geocode(ctx, q)
	if err != nil {
		var se *ServiceError
		if !errors.As(err, &se) {
			err = &ServiceError{Provider: g.Name(), Query: q, Err: err}
		}
		return nil, err
	}
	return res, nil
}

// Status is a consistent snapshot of a Resolver.
type Status struct {
	State        State     `json:"state"`
	Generation   uint64    `json:"generation"`
	Name         string    `json:"name,omitempty"`
	Queries      []string  `json:"queries,omitempty"`
	CurrentIndex int       `json:"currentIndex"`
	Resolved     *Resolved `json:"resolved,omitempty"`
	Err          error     `json:"-"`
	Message      string    `json:"error,omitempty"`
}

func (s Status) clone() Status {
	s.Queries = slices.Clone(s.Queries)
	if s.Resolved != nil {
		r := *s.Resolved
		s.Resolved = &r
	}
	return s
}

// Resolver runs one resolution attempt at a time in the background. Starting
// a new attempt, or resetting, supersedes the running one: every state change
// is committed only if it carries the current generation, so late answers of
// an abandoned attempt are dropped.
type Resolver struct {
	geocoder Geocoder
	opts     Options
	onChange func(Status)

	// notifyMu spans a commit and its onChange call, so observers see
	// transitions in commit order.
	notifyMu sync.Mutex

	mu      sync.Mutex
	gen     uint64
	status  Status
	cancel  context.CancelFunc
	changed chan struct{}

	wg sync.WaitGroup
}

// NewResolver creates an idle Resolver.
func NewResolver(g Geocoder, opts Options) *Resolver {
	return &Resolver{
		geocoder: g,
		opts:     opts,
		status:   Status{State: StateIdle},
		changed:  make(chan struct{}),
	}
}

// OnChange registers a callback invoked after every committed transition,
// one at a time and in commit order. It must be set before the first Begin
// and must not call Begin or Reset.
func (r *Resolver) OnChange(fn func(Status)) { r.onChange = fn }

// BeginEntry plans e and begins resolving it under its display name.
func (r *Resolver) BeginEntry(e gazetteer.Entry) uint64 {
	return r.Begin(e.DisplayName, Plan(e))
}

// Begin starts a new attempt and returns its generation.
func (r *Resolver) Begin(name string, queries []string) uint64 {
	queries = slices.Clone(queries)

	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	r.abandonLocked()
	r.gen++
	gen := r.gen
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	if len(queries) == 0 {
		r.status = Status{State: StateExhausted, Generation: gen, Name: name, Err: ErrNoCandidates, Message: ErrNoCandidates.Error()}
		r.cancel = nil
		cancel()
	} else {
		r.status = Status{State: StateQuerying, Generation: gen, Name: name, Queries: queries}
	}
	st := r.publishLocked()
	r.mu.Unlock()
	r.notify(st)

	if st.State == StateQuerying {
		logger.L().Info("resolution_begin", "generation", gen, "name", name, "candidates", len(queries))
		r.wg.Add(1)
		go r.run(ctx, gen, name, queries)
	}
	return gen
}

// Reset abandons any running attempt and returns to idle.
func (r *Resolver) Reset() {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	r.abandonLocked()
	r.gen++
	r.status = Status{State: StateIdle, Generation: r.gen}
	st := r.publishLocked()
	r.mu.Unlock()
	r.notify(st)
}

// Status returns the current snapshot.
func (r *Resolver) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status.clone()
}

// Wait blocks until the attempt identified by gen reaches a terminal state.
// It returns ErrSuperseded if another attempt or a reset replaced it, and the
// attempt's failure (ErrLocationNotFound) if it was exhausted.
func (r *Resolver) Wait(ctx context.Context, gen uint64) (Status, error) {
	for {
		r.mu.Lock()
		st := r.status.clone()
		ch := r.changed
		r.mu.Unlock()

		if st.Generation != gen {
			return st, ErrSuperseded
		}
		switch st.State {
		case StateResolved:
			return st, nil
		case StateExhausted:
			return st, st.Err
		case StateIdle:
			return st, ErrSuperseded
		}

		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-ch:
		}
	}
}

// Shutdown cancels the running attempt and waits for background work to stop.
func (r *Resolver) Shutdown() {
	r.mu.Lock()
	if r.status.State == StateQuerying {
		r.abandonLocked()
		r.gen++
		r.status = Status{State: StateIdle, Generation: r.gen}
		r.publishLocked()
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *Resolver) run(ctx context.Context, gen uint64, name string, queries []string) {
	defer r.wg.Done()

	res, err := runAttempt(ctx, r.geocoder, name, queries, r.opts, func(i int) bool {
		return r.commit(gen, func(s *Status) { s.CurrentIndex = i })
	})
	if ctx.Err() != nil || errors.Is(err, ErrSuperseded) {
		logger.L().Debug("resolution_discarded", "generation", gen, "name", name)
		return
	}

	committed := r.commit(gen, func(s *Status) {
		if err == nil {
			s.State = StateResolved
			s.Resolved = &res
			return
		}
		s.State = StateExhausted
		s.Err = err
		s.Message = err.Error()
	})
	if !committed {
		logger.L().Debug("resolution_discarded", "generation", gen, "name", name)
		return
	}

	if err == nil {
		metrics.ResolutionsTotal.WithLabelValues("resolved").Inc()
		logger.L().Info("resolution_resolved", "generation", gen, "name", name, "lat", res.Latitude, "lon", res.Longitude)
	} else {
		metrics.ResolutionsTotal.WithLabelValues("exhausted").Inc()
		logger.L().Info("resolution_exhausted", "generation", gen, "name", name, "candidates", len(queries))
	}
}

// commit applies fn if gen is still current. A terminal transition releases
// the attempt's context.
func (r *Resolver) commit(gen uint64, fn func(*Status)) bool {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	if gen != r.gen || r.status.State != StateQuerying {
		r.mu.Unlock()
		return false
	}
	fn(&r.status)
	if r.status.State.Terminal() && r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	st := r.publishLocked()
	r.mu.Unlock()
	r.notify(st)
	return true
}

func (r *Resolver) abandonLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.status.State == StateQuerying {
		metrics.ResolutionsTotal.WithLabelValues("superseded").Inc()
	}
}

// publishLocked wakes waiters and returns the snapshot to hand to onChange.
func (r *Resolver) publishLocked() Status {
	close(r.changed)
	r.changed = make(chan struct{})
	return r.status.clone()
}

func (r *Resolver) notify(st Status) {
	if r.onChange != nil {
		r.onChange(st)
	}
}
