// Package browse tracks which location the user is looking at: a place
// picked from search, their reported position, or the configured default.
package browse

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/weather-browser/internal/gazetteer"
	"github.com/i474232898/weather-browser/internal/location"
	"github.com/i474232898/weather-browser/internal/logger"
)

// Source says where the current location came from.
type Source string

const (
	SourceSearch   Source = "search"
	SourcePosition Source = "position"
	SourceDefault  Source = "default"
	SourcePending  Source = "pending"
)

// Current is the location weather should be shown for. Place is nil while
// pending.
type Current struct {
	Source Source             `json:"source"`
	Place  *location.Resolved `json:"place,omitempty"`
}

// Status is a consistent view of the whole session.
type Status struct {
	Current       Current            `json:"current"`
	Resolution    location.Status    `json:"resolution"`
	Position      *location.Position `json:"position,omitempty"`
	PositionError string             `json:"positionError,omitempty"`
	Error         string             `json:"error,omitempty"`
}

// Session is safe for concurrent use.
type Session struct {
	resolver *location.Resolver
	reverse  location.ReverseGeocoder
	fallback location.Resolved
	now      func() time.Time

	mu              sync.RWMutex
	selected        *location.Resolved
	position        *location.Position
	positionName    string
	positionErr     *location.PositionError
	dismissedGen    uint64
	dismissedPosErr bool
}

// New builds a session around resolver. reverse may be nil, in which case
// the reported position is shown as UnknownLocationName.
func New(resolver *location.Resolver, reverse location.ReverseGeocoder, fallback location.Resolved) *Session {
	s := &Session{
		resolver: resolver,
		reverse:  reverse,
		fallback: fallback,
		now:      time.Now,
	}
	resolver.OnChange(s.observe)
	return s
}

// observe keeps the selected place in step with the resolver. A place is
// replaced only by a successful resolution and dropped only by a reset.
func (s *Session) observe(st location.Status) {
	switch {
	case st.State == location.StateResolved && st.Resolved != nil:
		place := *st.Resolved
		s.mu.Lock()
		s.selected = &place
		s.mu.Unlock()
	case st.State == location.StateIdle:
		s.mu.Lock()
		s.selected = nil
		s.mu.Unlock()
	}
}

// ReportPosition records a fix from the position provider and labels it.
func (s *Session) ReportPosition(ctx context.Context, lat, lon float64) error {
	if !location.ValidCoordinates(lat, lon) {
		return &location.PositionError{Kind: location.PositionUnavailable}
	}
	name := location.Label(ctx, s.reverse, lat, lon)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = &location.Position{Latitude: lat, Longitude: lon, ReportedAt: s.now().UTC()}
	s.positionName = name
	s.positionErr = nil
	s.dismissedPosErr = false
	logger.L().Info("position_reported", "lat", lat, "lon", lon, "name", name)
	return nil
}

// ReportPositionError records that the position provider failed. A
// previously reported fix is kept when still younger than PositionMaximumAge.
func (s *Session) ReportPositionError(kind location.PositionErrorKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positionErr = &location.PositionError{Kind: kind}
	s.dismissedPosErr = false
	if s.position != nil && s.now().Sub(s.position.ReportedAt) > location.PositionMaximumAge {
		s.position = nil
		s.positionName = ""
	}
	logger.L().Info("position_failed", "kind", kind)
}

// Select starts resolving a gazetteer entry and returns the attempt's
// generation. Any attempt still running is superseded.
func (s *Session) Select(e gazetteer.Entry) uint64 {
	return s.resolver.BeginEntry(e)
}

// Wait blocks until the attempt gen finishes.
func (s *Session) Wait(ctx context.Context, gen uint64) (location.Status, error) {
	return s.resolver.Wait(ctx, gen)
}

// ResetToCurrentLocation drops the selected place, cancelling a running
// resolution.
func (s *Session) ResetToCurrentLocation() {
	s.resolver.Reset()
}

// DismissError hides the error currently shown.
func (s *Session) DismissError() {
	st := s.resolver.Status()
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.State == location.StateExhausted {
		s.dismissedGen = st.Generation
	}
	s.dismissedPosErr = true
}

// Current returns the last place resolved from search, else the reported
// position, else the default location when the position failed, else
// pending. A failed search leaves the previously selected place in view.
func (s *Session) Current() Current {
	return s.Status().Current
}

func (s *Session) Status() Status {
	res := s.resolver.Status()

	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{Resolution: res}
	switch {
	case res.State == location.StateResolved && res.Resolved != nil:
		place := *res.Resolved
		st.Current = Current{Source: SourceSearch, Place: &place}
	case res.State != location.StateIdle && s.selected != nil:
		place := *s.selected
		st.Current = Current{Source: SourceSearch, Place: &place}
	case s.position != nil:
		st.Current = Current{Source: SourcePosition, Place: &location.Resolved{
			Name:      s.positionName,
			Latitude:  s.position.Latitude,
			Longitude: s.position.Longitude,
		}}
	case s.positionErr != nil:
		fallback := s.fallback
		st.Current = Current{Source: SourceDefault, Place: &fallback}
	default:
		st.Current = Current{Source: SourcePending}
	}

	if s.position != nil {
		p := *s.position
		st.Position = &p
	}
	if s.positionErr != nil {
		st.PositionError = s.positionErr.Error()
	}

	switch {
	case res.State == location.StateExhausted && res.Generation != s.dismissedGen:
		st.Error = res.Message
	case s.positionErr != nil && !s.dismissedPosErr:
		st.Error = s.positionErr.Error()
	}
	return st
}

// Shutdown stops background resolution work.
func (s *Session) Shutdown() {
	s.resolver.Shutdown()
}
