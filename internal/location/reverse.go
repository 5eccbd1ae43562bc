package location

import (
	"context"
	"strings"

	"github.com/i474232898/weather-browser/internal/logger"
)

// UnknownLocationName labels coordinates nobody could name.
const UnknownLocationName = "알 수 없는 위치"

// Label names the coordinates through rg, falling back to
// UnknownLocationName on any failure or when rg is nil.
func Label(ctx context.Context, rg ReverseGeocoder, lat, lon float64) string {
	if rg == nil {
		return UnknownLocationName
	}
	name, err := rg.Reverse(ctx, lat, lon)
	if err != nil {
		logger.L().Warn("reverse_geocode_failed", "lat", lat, "lon", lon, "err", err)
		return UnknownLocationName
	}
	if name = strings.TrimSpace(name); name == "" {
		return UnknownLocationName
	}
	return name
}

// ComposeName joins administrative parts into a label, skipping blanks and
// repeats ("서울특별시", "서울특별시", "종로구" -> "서울특별시 종로구").
func ComposeName(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	return strings.Join(out, " ")
}
