package browse

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/i474232898/weather-browser/internal/gazetteer"
	"github.com/i474232898/weather-browser/internal/location"
)

type mapGeocoder map[string][]location.Result

func (m mapGeocoder) Name() string { return "map" }

func (m mapGeocoder) Geocode(_ context.Context, q string) ([]location.Result, error) {
	return m[q], nil
}

type staticReverse string

func (s staticReverse) Reverse(context.Context, float64, float64) (string, error) {
	return string(s), nil
}

var fallback = location.Resolved{Name: "서울 강남구", Latitude: 37.4979, Longitude: 127.0276}

func newSession(t *testing.T, g location.Geocoder) *Session {
	t.Helper()
	r := location.NewResolver(g, location.Options{QueryTimeout: time.Second})
	s := New(r, staticReverse("서울특별시 중구"), fallback)
	t.Cleanup(s.Shutdown)
	return s
}

func entry(t *testing.T, raw string) gazetteer.Entry {
	t.Helper()
	e, err := gazetteer.ParseEntry(0, raw)
	if err != nil {
		t.Fatalf("ParseEntry: %v", err)
	}
	return e
}

func TestPendingUntilPositionKnown(t *testing.T) {
	s := newSession(t, mapGeocoder{})
	if got := s.Current(); got.Source != SourcePending || got.Place != nil {
		t.Fatalf("got %+v", got)
	}
}

func TestReportedPositionIsLabelled(t *testing.T) {
	s := newSession(t, mapGeocoder{})
	if err := s.ReportPosition(context.Background(), 37.5636, 126.9976); err != nil {
		t.Fatalf("ReportPosition: %v", err)
	}
	cur := s.Current()
	if cur.Source != SourcePosition || cur.Place.Name != "서울특별시 중구" || cur.Place.Latitude != 37.5636 {
		t.Fatalf("got %+v", cur)
	}
}

func TestRejectsInvalidPosition(t *testing.T) {
	s := newSession(t, mapGeocoder{})
	var perr *location.PositionError
	if err := s.ReportPosition(context.Background(), 100, 0); !errors.As(err, &perr) {
		t.Fatalf("expected PositionError, got %v", err)
	}
}

func TestPositionErrorFallsBackToDefault(t *testing.T) {
	s := newSession(t, mapGeocoder{})
	s.ReportPositionError(location.PositionPermissionDenied)

	st := s.Status()
	if st.Current.Source != SourceDefault || *st.Current.Place != fallback {
		t.Fatalf("got %+v", st.Current)
	}
	if st.Error != "위치 권한이 거부되었습니다." {
		t.Fatalf("error %q", st.Error)
	}
	s.DismissError()
	if st := s.Status(); st.Error != "" || st.PositionError == "" {
		t.Fatalf("dismiss should hide the banner only: %+v", st)
	}
}

func TestPositionErrorKeepsRecentFix(t *testing.T) {
	s := newSession(t, mapGeocoder{})
	now := time.Now()
	s.now = func() time.Time { return now }
	_ = s.ReportPosition(context.Background(), 37.5, 127.0)

	now = now.Add(30 * time.Second)
	s.ReportPositionError(location.PositionTimedOut)
	if got := s.Current(); got.Source != SourcePosition {
		t.Fatalf("recent fix should survive, got %+v", got)
	}

	now = now.Add(2 * time.Minute)
	s.ReportPositionError(location.PositionTimedOut)
	if got := s.Current(); got.Source != SourceDefault {
		t.Fatalf("stale fix should be dropped, got %+v", got)
	}
}

func TestSelectResolvesAndReset(t *testing.T) {
	s := newSession(t, mapGeocoder{
		"종로구, 서울": {{Latitude: 37.5735, Longitude: 126.979}},
	})
	_ = s.ReportPosition(context.Background(), 37.5, 127.0)

	gen := s.Select(entry(t, "서울특별시-종로구"))
	st, err := s.Wait(context.Background(), gen)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if st.State != location.StateResolved {
		t.Fatalf("state %s", st.State)
	}
	cur := s.Current()
	if cur.Source != SourceSearch || cur.Place.Name != "서울특별시 종로구" || cur.Place.Latitude != 37.5735 {
		t.Fatalf("got %+v", cur)
	}

	s.ResetToCurrentLocation()
	if got := s.Current(); got.Source != SourcePosition {
		t.Fatalf("reset should return to the position, got %+v", got)
	}
}

func TestExhaustionShowsErrorUntilDismissed(t *testing.T) {
	s := newSession(t, mapGeocoder{})
	_ = s.ReportPosition(context.Background(), 37.5, 127.0)

	gen := s.Select(entry(t, "서울특별시-종로구"))
	if _, err := s.Wait(context.Background(), gen); !errors.Is(err, location.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}
	st := s.Status()
	if st.Error != location.ErrLocationNotFound.Error() || st.Current.Source != SourcePosition {
		t.Fatalf("got %+v", st)
	}

	s.DismissError()
	if st := s.Status(); st.Error != "" {
		t.Fatalf("error still shown: %q", st.Error)
	}

	// A new failure is shown again.
	gen = s.Select(entry(t, "부산광역시-해운대구"))
	_, _ = s.Wait(context.Background(), gen)
	if st := s.Status(); st.Error == "" {
		t.Fatalf("new failure must be shown")
	}
}

func TestFailedSearchKeepsSelectedPlace(t *testing.T) {
	s := newSession(t, mapGeocoder{
		"종로구, 서울": {{Latitude: 37.5735, Longitude: 126.979}},
	})
	s.ReportPositionError(location.PositionPermissionDenied)

	gen := s.Select(entry(t, "서울특별시-종로구"))
	if _, err := s.Wait(context.Background(), gen); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	gen = s.Select(entry(t, "부산광역시-해운대구"))
	if _, err := s.Wait(context.Background(), gen); !errors.Is(err, location.ErrLocationNotFound) {
		t.Fatalf("expected ErrLocationNotFound, got %v", err)
	}

	st := s.Status()
	if st.Current.Source != SourceSearch || st.Current.Place.Name != "서울특별시 종로구" {
		t.Fatalf("previous place should stay in view, got %+v", st.Current)
	}
	if st.Error != location.ErrLocationNotFound.Error() {
		t.Fatalf("error %q", st.Error)
	}

	s.ResetToCurrentLocation()
	if got := s.Current(); got.Source != SourceDefault {
		t.Fatalf("reset should drop the selected place, got %+v", got)
	}
}
