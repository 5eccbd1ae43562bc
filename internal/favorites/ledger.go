// Package favorites keeps the user's bounded, ordered list of saved places.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-browser/internal/kv"
	"github.com/i474232898/weather-browser/internal/location"
	"github.com/i474232898/weather-browser/internal/logger"
	"github.com/i474232898/weather-browser/internal/metrics"
)

const (
	// MaxFavorites bounds the ledger; adds beyond it are rejected, never evicted.
	MaxFavorites = 6
	// CoordEpsilon is the per-axis tolerance of the duplicate check.
	CoordEpsilon = 0.001
	// StorageKey is the kv key the ledger is persisted under.
	StorageKey = "weather-favorites"
)

var (
	ErrCapacityExceeded    = fmt.Errorf("즐겨찾기는 최대 %d개까지 추가할 수 있습니다", MaxFavorites)
	ErrDuplicateCoordinate = errors.New("이미 즐겨찾기에 추가된 위치입니다")
	ErrEmptyAlias          = errors.New("alias must not be empty")
	ErrNotFound            = errors.New("favorite not found")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Favorite is one saved place. Coordinates are its identity key.
type Favorite struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	OriginalName string    `json:"originalName"`
	Latitude     float64   `json:"lat"`
	Longitude    float64   `json:"lon"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Candidate is the input of Add.
type Candidate struct {
	Name         string
	OriginalName string
	Latitude     float64
	Longitude    float64
}

// SameCoordinates reports whether two points fall inside the duplicate box.
func SameCoordinates(lat1, lon1, lat2, lon2 float64) bool {
	return math.Abs(lat1-lat2) < CoordEpsilon && math.Abs(lon1-lon2) < CoordEpsilon
}

type persisted struct {
	Favorites []Favorite `json:"favorites"`
}

// Ledger is safe for concurrent use. Every mutation persists the new list
// before it becomes visible; a failed write leaves the ledger unchanged.
type Ledger struct {
	mu    sync.RWMutex
	items []Favorite
	kv    kv.Store
	now   func() time.Time
	newID func() string
}

// New loads the ledger from store. A missing key starts empty; an
// unreadable blob is logged and also starts empty.
func New(ctx context.Context, store kv.Store) (*Ledger, error) {
	l := &Ledger{
		kv:    store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	raw, err := store.Get(ctx, StorageKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load favorites: %w", err)
	default:
		var p persisted
		if err := json.Unmarshal(raw, &p); err != nil {
			logger.L().Warn("favorites_blob_corrupt", "err", err)
		} else {
			l.items = sanitize(p.Favorites)
		}
	}
	metrics.FavoritesCount.Set(float64(len(l.items)))
	return l, nil
}

// sanitize drops entries that would break the ledger invariants.
func sanitize(in []Favorite) []Favorite {
	out := make([]Favorite, 0, len(in))
	for _, f := range in {
		if len(out) == MaxFavorites {
			break
		}
		if f.ID == "" || !location.ValidCoordinates(f.Latitude, f.Longitude) || indexByCoords(out, f.Latitude, f.Longitude) >= 0 {
			continue
		}
		if strings.TrimSpace(f.Name) == "" {
			f.Name = f.OriginalName
		}
		out = append(out, f)
	}
	return out
}

func indexByCoords(items []Favorite, lat, lon float64) int {
	for i, f := range items {
		if SameCoordinates(f.Latitude, f.Longitude, lat, lon) {
			return i
		}
	}
	return -1
}

func indexByID(items []Favorite, id string) int {
	for i, f := range items {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// commitLocked persists next and swaps it in. Caller holds mu.
func (l *Ledger) commitLocked(ctx context.Context, next []Favorite) error {
	raw, err := json.Marshal(persisted{Favorites: next})
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if err := l.kv.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("persist favorites: %w", err)
	}
	l.items = next
	metrics.FavoritesCount.Set(float64(len(next)))
	return nil
}

func (l *Ledger) snapshotLocked() []Favorite {
	return append([]Favorite(nil), l.items...)
}

// Add appends a new favorite. It fails with ErrCapacityExceeded when the
// ledger is full and ErrDuplicateCoordinate when the place is already saved.
func (l *Ledger) Add(ctx context.Context, c Candidate) (Favorite, error) {
	if !location.ValidCoordinates(c.Latitude, c.Longitude) {
		return Favorite{}, ErrInvalidCoordinates
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.items) >= MaxFavorites {
		metrics.FavoritesRejectedTotal.WithLabelValues("capacity").Inc()
		return Favorite{}, ErrCapacityExceeded
	}
	if indexByCoords(l.items, c.Latitude, c.Longitude) >= 0 {
		metrics.FavoritesRejectedTotal.WithLabelValues("duplicate").Inc()
		return Favorite{}, ErrDuplicateCoordinate
	}

	name := strings.TrimSpace(c.Name)
	original := strings.TrimSpace(c.OriginalName)
	if original == "" {
		original = name
	}
	if name == "" {
		name = original
	}
	f := Favorite{
		ID:           l.newID(),
		Name:         name,
		OriginalName: original,
		Latitude:     c.Latitude,
		Longitude:    c.Longitude,
		CreatedAt:    l.now().UTC(),
	}
	if err := l.commitLocked(ctx, append(l.snapshotLocked(), f)); err != nil {
		return Favorite{}, err
	}
	logger.L().Info("favorite_added", "id", f.ID, "name", f.Name)
	return f, nil
}

// Remove deletes the favorite with id; an unknown id is a no-op.
func (l *Ledger) Remove(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexByID(l.items, id)
	if i < 0 {
		return nil
	}
	next := l.snapshotLocked()
	next = append(next[:i], next[i+1:]...)
	return l.commitLocked(ctx, next)
}

// UpdateAlias renames a favorite. The alias is trimmed; a blank alias is
// rejected with ErrEmptyAlias and the name stays as it was.
func (l *Ledger) UpdateAlias(ctx context.Context, id, alias string) (Favorite, error) {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return Favorite{}, ErrEmptyAlias
	}
	return l.rename(ctx, id, func(Favorite) string { return alias })
}

// ResetAlias restores the name captured when the favorite was added.
func (l *Ledger) ResetAlias(ctx context.Context, id string) (Favorite, error) {
	return l.rename(ctx, id, func(f Favorite) string { return f.OriginalName })
}

func (l *Ledger) rename(ctx context.Context, id string, name func(Favorite) string) (Favorite, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := indexByID(l.items, id)
	if i < 0 {
		return Favorite{}, ErrNotFound
	}
	next := l.snapshotLocked()
	next[i].Name = name(next[i])
	if next[i].Name == l.items[i].Name {
		return next[i], nil
	}
	if err := l.commitLocked(ctx, next); err != nil {
		return Favorite{}, err
	}
	return next[i], nil
}

// Reorder moves activeID to overID's position, shifting the entries in
// between. Unknown ids and activeID == overID are no-ops.
func (l *Ledger) Reorder(ctx context.Context, activeID, overID string) error {
	if activeID == overID {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	from, to := indexByID(l.items, activeID), indexByID(l.items, overID)
	if from < 0 || to < 0 {
		return nil
	}
	return l.commitLocked(ctx, move(l.snapshotLocked(), from, to))
}

func move(items []Favorite, from, to int) []Favorite {
	f := items[from]
	items = append(items[:from], items[from+1:]...)
	items = append(items[:to], append([]Favorite{f}, items[to:]...)...)
	return items
}

// IsFavorite reports whether the coordinates are already saved.
func (l *Ledger) IsFavorite(lat, lon float64) bool {
	_, ok := l.FindByCoords(lat, lon)
	return ok
}

// FindByCoords returns the favorite inside the duplicate box of (lat, lon).
func (l *Ledger) FindByCoords(lat, lon float64) (Favorite, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := indexByCoords(l.items, lat, lon); i >= 0 {
		return l.items[i], true
	}
	return Favorite{}, false
}

func (l *Ledger) Get(id string) (Favorite, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := indexByID(l.items, id); i >= 0 {
		return l.items[i], true
	}
	return Favorite{}, false
}

// List returns a copy of the ledger in display order.
func (l *Ledger) List() []Favorite {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// CanAdd reports whether the ledger has room for another favorite.
func (l *Ledger) CanAdd() bool {
	return l.Len() < MaxFavorites
}
