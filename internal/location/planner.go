package location

import (
	"regexp"
	"strings"

	"github.com/i474232898/weather-browser/internal/gazetteer"
)

// regionSuffix matches the administrative suffix of a top-level region
// ("서울특별시" -> "서울", "경기도" -> "경기"). Geocoders index the short form.
var regionSuffix = regexp.MustCompile(`(특별시|광역시|특별자치시|특별자치도|도)$`)

// NormalizeRegion strips the administrative suffix from a region name. A name
// that would become empty is returned unchanged.
func NormalizeRegion(name string) string {
	short := regionSuffix.ReplaceAllString(name, "")
	if strings.TrimSpace(short) == "" {
		return name
	}
	return short
}

// Plan returns the geocoding candidate queries for an entry, most specific
// first:
//
//	region-city-district -> "district, city, region", "city, region", "city", "region"
//	region-city          -> "city, region", "city", "region"
//	region               -> "region", raw name if it differs
//
// The region is normalised with NormalizeRegion and duplicates are dropped.
// Plan is nil only for an entry without segments.
func Plan(e gazetteer.Entry) []string {
	parts := e.Segments
	var queries []string

	switch {
	case len(parts) == 0:
		return nil
	case len(parts) >= 3:
		region := NormalizeRegion(parts[0])
		specific := make([]string, 0, len(parts))
		for i := len(parts) - 1; i >= 1; i-- {
			specific = append(specific, parts[i])
		}
		specific = append(specific, region)
		queries = append(queries,
			strings.Join(specific, ", "),
			parts[1]+", "+region,
			parts[1],
			region,
		)
	case len(parts) == 2:
		region := NormalizeRegion(parts[0])
		queries = append(queries,
			parts[1]+", "+region,
			parts[1],
			region,
		)
	default:
		queries = append(queries, NormalizeRegion(parts[0]), parts[0])
	}

	return dedupe(queries)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, q := range in {
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		out = append(out, q)
	}
	return out
}
