package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "8080" || cfg.HTTPTimeout != 10*time.Second {
		t.Fatalf("server defaults wrong: %+v", cfg)
	}
	if cfg.Geocode.QueryTimeout != 8*time.Second || cfg.Geocode.Language != "ko" || cfg.Geocode.Country != "KR" {
		t.Fatalf("geocode defaults wrong: %+v", cfg.Geocode)
	}
	if cfg.Weather.StaleTime != 5*time.Minute || cfg.Weather.RefreshInterval != time.Hour {
		t.Fatalf("weather defaults wrong: %+v", cfg.Weather)
	}
	if cfg.Storage.Driver != "memory" || cfg.SearchLimit != 10 {
		t.Fatalf("storage defaults wrong: %+v", cfg.Storage)
	}
	if cfg.DefaultLocation.Name != "서울 강남구" || cfg.DefaultLocation.Latitude != 37.4979 {
		t.Fatalf("default location wrong: %+v", cfg.DefaultLocation)
	}
}

func TestOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("GEOCODE_QUERY_TIMEOUT", "2s")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("STORAGE_DSN", "/tmp/x.db")
	t.Setenv("DEFAULT_LOCATION_LAT", "35.1796")
	t.Setenv("THEME_SYSTEM_DEFAULT", "dark")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.Port != "9090" || cfg.Geocode.QueryTimeout != 2*time.Second || cfg.Storage.DSN != "/tmp/x.db" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.DefaultLocation.Latitude != 35.1796 || cfg.ThemeSystemDefault != "dark" {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestInvalidValues(t *testing.T) {
	cases := map[string][2]string{
		"bad duration":     {"GEOCODE_QUERY_TIMEOUT", "soon"},
		"bad driver":       {"STORAGE_DRIVER", "etcd"},
		"bad latitude":     {"DEFAULT_LOCATION_LAT", "123"},
		"unparsable lat":   {"DEFAULT_LOCATION_LAT", "north"},
		"bad theme":        {"THEME_SYSTEM_DEFAULT", "system"},
		"short interval":   {"WEATHER_REFRESH_INTERVAL", "10s"},
		"non-numeric port": {"PORT", "http"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := FromEnv(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestErrorNamesVariable(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "fast")
	_, err := FromEnv()
	if err == nil || !strings.Contains(err.Error(), "HTTP_TIMEOUT") {
		t.Fatalf("expected error naming HTTP_TIMEOUT, got %v", err)
	}
}
