// Package gazetteer holds the static list of known place names and the
// in-memory substring search over it.
//
// Raw entries are hierarchical strings, most general segment first, separated
// by Delimiter ("서울특별시-종로구-청운동"). An Index is built once and is
// read-only afterwards, so it can be shared without synchronisation.
package gazetteer

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/i474232898/weather-browser/internal/metrics"
)

const (
	// Delimiter separates the segments of a raw entry.
	Delimiter = "-"
	// MaxSegments is the deepest hierarchy accepted (region, city, district).
	MaxSegments = 3
	// DefaultLimit is used when Search is called with a non-positive limit.
	DefaultLimit = 10
)

// ErrMalformedEntry is returned when a raw entry violates the format contract.
var ErrMalformedEntry = errors.New("malformed gazetteer entry")

// Entry is one parsed place name.
type Entry struct {
	ID          int      `json:"id"`
	Segments    []string `json:"segments"`
	DisplayName string   `json:"displayName"`
	LeafName    string   `json:"leafName"`

	leafKey    string
	displayKey string
	displayLen int
}

// Depth reports the number of segments.
func (e Entry) Depth() int { return len(e.Segments) }

func (e Entry) clone() Entry {
	e.Segments = slices.Clone(e.Segments)
	return e
}

// Index is an immutable gazetteer.
type Index struct {
	entries []Entry
}

// ParseEntry parses one raw entry. The id is assigned by the caller.
func ParseEntry(id int, raw string) (Entry, error) {
	parts := strings.Split(raw, Delimiter)
	if len(parts) > MaxSegments {
		return Entry{}, fmt.Errorf("%w: %q has %d segments", ErrMalformedEntry, raw, len(parts))
	}

	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return Entry{}, fmt.Errorf("%w: %q has an empty segment", ErrMalformedEntry, raw)
		}
		segments = append(segments, p)
	}

	display := strings.Join(segments, " ")
	leaf := segments[len(segments)-1]
	return Entry{
		ID:          id,
		Segments:    segments,
		DisplayName: display,
		LeafName:    leaf,
		leafKey:     normalize(leaf),
		displayKey:  normalize(display),
		displayLen:  utf8.RuneCountInString(display),
	}, nil
}

// New parses every raw entry. IDs are the ordinal positions in raw.
func New(raw []string) (*Index, error) {
	entries := make([]Entry, 0, len(raw))
	for i, r := range raw {
		e, err := ParseEntry(i, r)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, e)
	}
	return &Index{entries: entries}, nil
}

// Len returns the number of entries.
func (ix *Index) Len() int { return len(ix.entries) }

// Get returns the entry with the given id.
func (ix *Index) Get(id int) (Entry, bool) {
	if id < 0 || id >= len(ix.entries) {
		return Entry{}, false
	}
	return ix.entries[id].clone(), true
}

// Search returns entries whose leaf or display name contains query, ignoring
// case. Entries whose leaf starts with the query come first; ties prefer the
// shorter display name and then gazetteer order. An empty query yields an
// empty result. The returned slice is always freshly allocated.
func (ix *Index) Search(query string, limit int) []Entry {
	q := normalize(query)
	if q == "" {
		return []Entry{}
	}
	metrics.GazetteerSearchesTotal.Inc()
	if limit <= 0 {
		limit = DefaultLimit
	}

	type hit struct {
		idx    int
		prefix bool
	}
	var hits []hit
	for i := range ix.entries {
		e := &ix.entries[i]
		if strings.Contains(e.leafKey, q) || strings.Contains(e.displayKey, q) {
			hits = append(hits, hit{idx: i, prefix: strings.HasPrefix(e.leafKey, q)})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		ha, hb := hits[a], hits[b]
		if ha.prefix != hb.prefix {
			return ha.prefix
		}
		return ix.entries[ha.idx].displayLen < ix.entries[hb.idx].displayLen
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]Entry, 0, len(hits))
	for _, h := range hits {
		out = append(out, ix.entries[h.idx].clone())
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
