package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-browser/internal/browse"
	"github.com/i474232898/weather-browser/internal/favorites"
	"github.com/i474232898/weather-browser/internal/gazetteer"
	"github.com/i474232898/weather-browser/internal/kv"
	"github.com/i474232898/weather-browser/internal/location"
	"github.com/i474232898/weather-browser/internal/store"
	"github.com/i474232898/weather-browser/internal/theme"
	"github.com/i474232898/weather-browser/internal/weather"
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

// stubProvider answers every location with the same reading and a day of
// hourly forecast starting at the current hour.
type stubProvider struct {
	temp float64
	err  error
}

func (p stubProvider) Name() string { return "stub" }

func (p stubProvider) Fetch(context.Context, weather.Location) (weather.ProviderReading, error) {
	if p.err != nil {
		return weather.ProviderReading{}, p.err
	}
	return weather.ProviderReading{
		ProviderName: "stub",
		Timestamp:    time.Now().UTC(),
		TemperatureC: p.temp,
		HumidityPct:  40,
		Condition:    weather.ConditionClear,
	}, nil
}

func (p stubProvider) FetchHourly(context.Context, weather.Location) (weather.HourlySeries, error) {
	if p.err != nil {
		return weather.HourlySeries{}, p.err
	}
	start := time.Now().Truncate(time.Hour)
	series := weather.HourlySeries{}
	for i := 0; i < 30; i++ {
		series.Readings = append(series.Readings, weather.HourlyReading{
			Time:         start.Add(time.Duration(i) * time.Hour),
			TemperatureC: p.temp,
			PrecipProb:   20,
		})
	}
	return series, nil
}

var testEntries = []string{
	"서울특별시-종로구",
	"부산광역시-해운대구",
	"제주특별자치도",
}

func newTestApp(t *testing.T, providers ...weather.Provider) *fiber.App {
	t.Helper()
	ctx := context.Background()

	gaz, err := gazetteer.New(testEntries)
	if err != nil {
		t.Fatalf("gazetteer: %v", err)
	}
	geo := mapGeocoder{
		"종로구, 서울": {{Name: "종로구", Latitude: 37.5735, Longitude: 126.979}},
	}
	opts := location.Options{QueryTimeout: time.Second}

	session := browse.New(location.NewResolver(geo, opts), staticReverse("서울특별시 중구"),
		location.Resolved{Name: "서울 강남구", Latitude: 37.4979, Longitude: 127.0276})
	t.Cleanup(session.Shutdown)

	ledger, err := favorites.New(ctx, kv.NewMemory())
	if err != nil {
		t.Fatalf("favorites: %v", err)
	}
	themes, err := theme.New(ctx, kv.NewMemory(), theme.Light)
	if err != nil {
		t.Fatalf("theme: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, Deps{
		Gazetteer:      gaz,
		Geocoder:       geo,
		ResolveOptions: opts,
		Session:        session,
		Favorites:      ledger,
		Theme:          themes,
		Weather:        weather.NewService(store.NewMemoryStore(10, time.Hour), providers, 10*time.Minute),
	})
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected status %d, got %d", want, resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	resp, body := do(t, app, http.MethodGet, "/api/v1/health", nil)
	expectStatus(t, resp, http.StatusOK)
	if body["status"] != "ok" {
		t.Fatalf("got %v", body)
	}
}

func TestSearchLocations(t *testing.T) {
	app := newTestApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/v1/locations/search?q="+url.QueryEscape("종로"), nil)
	expectStatus(t, resp, http.StatusOK)
	results, _ := body["results"].([]any)
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %v", body["results"])
	}
	if got := results[0].(map[string]any)["displayName"]; got != "서울특별시 종로구" {
		t.Fatalf("displayName = %v", got)
	}

	resp, body = do(t, app, http.MethodGet, "/api/v1/locations/search?q=", nil)
	expectStatus(t, resp, http.StatusOK)
	if results, _ := body["results"].([]any); len(results) != 0 {
		t.Fatalf("empty query should yield no results, got %v", body["results"])
	}

	resp, _ = do(t, app, http.MethodGet, "/api/v1/locations/search?q=a&limit=1000", nil)
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestPlanLocation(t *testing.T) {
	app := newTestApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/v1/locations/0/plan", nil)
	expectStatus(t, resp, http.StatusOK)
	queries, _ := body["queries"].([]any)
	if len(queries) == 0 || queries[0] != "종로구, 서울" {
		t.Fatalf("queries = %v", body["queries"])
	}

	resp, _ = do(t, app, http.MethodGet, "/api/v1/locations/99/plan", nil)
	expectStatus(t, resp, http.StatusNotFound)

	resp, _ = do(t, app, http.MethodGet, "/api/v1/locations/abc/plan", nil)
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestResolveLocation(t *testing.T) {
	app := newTestApp(t)

	resp, body := do(t, app, http.MethodPost, "/api/v1/locations/resolve", map[string]any{"entryId": 0})
	expectStatus(t, resp, http.StatusOK)
	loc, _ := body["location"].(map[string]any)
	if loc["name"] != "서울특별시 종로구" || loc["latitude"] != 37.5735 {
		t.Fatalf("location = %v", body["location"])
	}

	resp, body = do(t, app, http.MethodPost, "/api/v1/locations/resolve", map[string]any{"entryId": 1})
	expectStatus(t, resp, http.StatusNotFound)
	if body["error"] != true {
		t.Fatalf("expected error body, got %v", body)
	}

	resp, _ = do(t, app, http.MethodPost, "/api/v1/locations/resolve", map[string]any{})
	expectStatus(t, resp, http.StatusBadRequest)
}

func TestSessionSelectAndDismiss(t *testing.T) {
	app := newTestApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/v1/session", nil)
	expectStatus(t, resp, http.StatusOK)
	if cur := body["current"].(map[string]any); cur["source"] != "pending" {
		t.Fatalf("current = %v", cur)
	}

	resp, body = do(t, app, http.MethodPost, "/api/v1/session/select?wait=true", map[string]any{"entryId": 0})
	expectStatus(t, resp, http.StatusOK)
	if cur := body["current"].(map[string]any); cur["source"] != "search" {
		t.Fatalf("current = %v", cur)
	}

	resp, _ = do(t, app, http.MethodPost, "/api/v1/session/select?wait=true", map[string]any{"entryId": 2})
	expectStatus(t, resp, http.StatusNotFound)

	resp, body = do(t, app, http.MethodGet, "/api/v1/session", nil)
	expectStatus(t, resp, http.StatusOK)
	if body["error"] == nil {
		t.Fatalf("expected an error banner, got %v", body)
	}
	if cur := body["current"].(map[string]any); cur["source"] != "search" {
		t.Fatalf("the earlier selection should stay in view, got %v", cur)
	}

	resp, _ = do(t, app, http.MethodDelete, "/api/v1/session/error", nil)
	expectStatus(t, resp, http.StatusNoContent)

	_, body = do(t, app, http.MethodGet, "/api/v1/session", nil)
	if body["error"] != nil {
		t.Fatalf("banner should be dismissed, got %v", body["error"])
	}

	resp, _ = do(t, app, http.MethodPost, "/api/v1/session/select", map[string]any{"entryId": 0})
	expectStatus(t, resp, http.StatusAccepted)
}

func TestSessionPosition(t *testing.T) {
	app := newTestApp(t)

	resp, _ := do(t, app, http.MethodPost, "/api/v1/session/position", map[string]any{"latitude": 37.5})
	expectStatus(t, resp, http.StatusBadRequest)

	resp, _ = do(t, app, http.MethodPost, "/api/v1/session/position", map[string]any{"error": "bogus"})
	expectStatus(t, resp, http.StatusBadRequest)

	resp, body := do(t, app, http.MethodPost, "/api/v1/session/position", map[string]any{"error": "permission_denied"})
	expectStatus(t, resp, http.StatusOK)
	if cur := body["current"].(map[string]any); cur["source"] != "default" {
		t.Fatalf("current = %v", cur)
	}

	resp, body = do(t, app, http.MethodPost, "/api/v1/session/position",
		map[string]any{"latitude": 37.5636, "longitude": 126.9976})
	expectStatus(t, resp, http.StatusOK)
	cur := body["current"].(map[string]any)
	if cur["source"] != "position" || cur["place"].(map[string]any)["name"] != "서울특별시 중구" {
		t.Fatalf("current = %v", cur)
	}
}

func TestWeatherCurrentValidation(t *testing.T) {
	app := newTestApp(t, stubProvider{temp: 21})

	for _, path := range []string{
		"/api/v1/weather/current",
		"/api/v1/weather/current?lat=37.5",
		"/api/v1/weather/current?lat=abc&lon=127",
		"/api/v1/weather/current?lat=91&lon=127",
	} {
		resp, _ := do(t, app, http.MethodGet, path, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusBadRequest, resp.StatusCode)
		}
	}
}

func TestWeatherCurrentAndHourly(t *testing.T) {
	app := newTestApp(t, stubProvider{temp: 21})

	resp, body := do(t, app, http.MethodGet, "/api/v1/weather/current?lat=37.5&lon=127&name=test", nil)
	expectStatus(t, resp, http.StatusOK)
	if body["temperatureC"] != 21.0 {
		t.Fatalf("temperature = %v", body["temperatureC"])
	}
	if loc := body["location"].(map[string]any); loc["name"] != "test" {
		t.Fatalf("location = %v", loc)
	}

	resp, body = do(t, app, http.MethodGet, "/api/v1/weather/hourly?lat=37.5&lon=127", nil)
	expectStatus(t, resp, http.StatusOK)
	if slots, _ := body["hourly"].([]any); len(slots) != weather.HourlySlots {
		t.Fatalf("expected %d slots, got %v", weather.HourlySlots, body["hourly"])
	}
}

func TestWeatherErrors(t *testing.T) {
	resp, _ := do(t, newTestApp(t), http.MethodGet, "/api/v1/weather/current?lat=37.5&lon=127", nil)
	expectStatus(t, resp, http.StatusServiceUnavailable)

	failing := newTestApp(t, stubProvider{err: errors.New("boom")})
	resp, _ = do(t, failing, http.MethodGet, "/api/v1/weather/current?lat=37.5&lon=127", nil)
	expectStatus(t, resp, http.StatusBadGateway)
}

func TestWeatherHistory(t *testing.T) {
	app := newTestApp(t, stubProvider{temp: 18})

	resp, _ := do(t, app, http.MethodGet, "/api/v1/weather/history?lat=37.5&lon=127", nil)
	expectStatus(t, resp, http.StatusBadRequest)

	from := time.Now().Add(-time.Hour).Unix()
	to := time.Now().Add(time.Hour).Unix()
	path := fmt.Sprintf("/api/v1/weather/history?lat=37.5&lon=127&from=%d&to=%d", from, to)

	resp, _ = do(t, app, http.MethodGet, path, nil)
	expectStatus(t, resp, http.StatusNotFound)

	resp, _ = do(t, app, http.MethodGet, "/api/v1/weather/current?lat=37.5&lon=127", nil)
	expectStatus(t, resp, http.StatusOK)

	resp, body := do(t, app, http.MethodGet, path, nil)
	expectStatus(t, resp, http.StatusOK)
	if snaps, _ := body["snapshots"].([]any); len(snaps) != 1 {
		t.Fatalf("snapshots = %v", body["snapshots"])
	}

	inverted := fmt.Sprintf("/api/v1/weather/history?lat=37.5&lon=127&from=%d&to=%d", to, from)
	resp, _ = do(t, app, http.MethodGet, inverted, nil)
	expectStatus(t, resp, http.StatusBadRequest)
}

func addFavorite(t *testing.T, app *fiber.App, name string, lat, lon float64) (*http.Response, map[string]any) {
	t.Helper()
	return do(t, app, http.MethodPost, "/api/v1/favorites", map[string]any{
		"name": name, "originalName": name, "latitude": lat, "longitude": lon,
	})
}

func TestFavoritesLifecycle(t *testing.T) {
	app := newTestApp(t, stubProvider{temp: 15})

	resp, first := addFavorite(t, app, "종로구", 37.5735, 126.979)
	expectStatus(t, resp, http.StatusCreated)
	id, _ := first["id"].(string)
	if id == "" {
		t.Fatalf("missing id in %v", first)
	}

	resp, _ = addFavorite(t, app, "종로구 again", 37.5738, 126.9792)
	expectStatus(t, resp, http.StatusConflict)

	resp, _ = do(t, app, http.MethodPost, "/api/v1/favorites", map[string]any{"name": "x"})
	expectStatus(t, resp, http.StatusBadRequest)

	resp, body := do(t, app, http.MethodPut, "/api/v1/favorites/"+id+"/alias", map[string]any{"alias": "  "})
	expectStatus(t, resp, http.StatusBadRequest)

	resp, body = do(t, app, http.MethodPut, "/api/v1/favorites/"+id+"/alias", map[string]any{"alias": "회사"})
	expectStatus(t, resp, http.StatusOK)
	if body["name"] != "회사" || body["originalName"] != "종로구" {
		t.Fatalf("alias = %v", body)
	}

	resp, body = do(t, app, http.MethodPost, "/api/v1/favorites/"+id+"/alias/reset", nil)
	expectStatus(t, resp, http.StatusOK)
	if body["name"] != "종로구" {
		t.Fatalf("reset = %v", body)
	}

	resp, body = do(t, app, http.MethodGet, "/api/v1/favorites/"+id+"/weather", nil)
	expectStatus(t, resp, http.StatusOK)
	if cur := body["current"].(map[string]any); cur["temperatureC"] != 15.0 {
		t.Fatalf("current = %v", cur)
	}

	resp, _ = do(t, app, http.MethodPut, "/api/v1/favorites/missing/alias", map[string]any{"alias": "x"})
	expectStatus(t, resp, http.StatusNotFound)

	resp, _ = do(t, app, http.MethodDelete, "/api/v1/favorites/"+id, nil)
	expectStatus(t, resp, http.StatusNoContent)

	resp, _ = do(t, app, http.MethodGet, "/api/v1/favorites/"+id, nil)
	expectStatus(t, resp, http.StatusNotFound)
}

func TestFavoritesCapacityAndReorder(t *testing.T) {
	app := newTestApp(t)

	var ids []string
	for i := 0; i < favorites.MaxFavorites; i++ {
		resp, body := addFavorite(t, app, fmt.Sprintf("place-%d", i), 33+float64(i), 127)
		expectStatus(t, resp, http.StatusCreated)
		ids = append(ids, body["id"].(string))
	}

	resp, body := do(t, app, http.MethodGet, "/api/v1/favorites", nil)
	expectStatus(t, resp, http.StatusOK)
	if body["canAdd"] != false || body["max"] != float64(favorites.MaxFavorites) {
		t.Fatalf("list = %v", body)
	}

	resp, _ = addFavorite(t, app, "overflow", 20, 127)
	expectStatus(t, resp, http.StatusUnprocessableEntity)

	resp, _ = do(t, app, http.MethodPost, "/api/v1/favorites/reorder", map[string]any{"activeId": ids[2]})
	expectStatus(t, resp, http.StatusBadRequest)

	resp, body = do(t, app, http.MethodPost, "/api/v1/favorites/reorder",
		map[string]any{"activeId": ids[2], "overId": ids[0]})
	expectStatus(t, resp, http.StatusOK)
	list := body["favorites"].([]any)
	if got := list[0].(map[string]any)["id"]; got != ids[2] {
		t.Fatalf("first = %v, want %s", got, ids[2])
	}
	if got := list[1].(map[string]any)["id"]; got != ids[0] {
		t.Fatalf("second = %v, want %s", got, ids[0])
	}
}

func TestTheme(t *testing.T) {
	app := newTestApp(t)

	resp, body := do(t, app, http.MethodGet, "/api/v1/theme", nil)
	expectStatus(t, resp, http.StatusOK)
	if body["theme"] != "system" || body["resolved"] != "light" {
		t.Fatalf("theme = %v", body)
	}

	resp, body = do(t, app, http.MethodPost, "/api/v1/theme/toggle", nil)
	expectStatus(t, resp, http.StatusOK)
	if body["theme"] != "dark" || body["resolved"] != "dark" {
		t.Fatalf("toggle = %v", body)
	}

	resp, body = do(t, app, http.MethodPut, "/api/v1/theme", map[string]any{"theme": "system"})
	expectStatus(t, resp, http.StatusOK)
	if body["theme"] != "system" {
		t.Fatalf("set = %v", body)
	}

	resp, _ = do(t, app, http.MethodPut, "/api/v1/theme", map[string]any{"theme": "sepia"})
	expectStatus(t, resp, http.StatusBadRequest)
}
