package exception

import (
	"sort"
	"sync"
	"time"
)

// Registry is an in-memory exception store. model.Store persists the same
// transitions in sqlite; the registry backs previews that must not touch the
// database and is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	items map[Key]Exception
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[Key]Exception), now: time.Now}
}

// Apply upserts the exception for (seriesID, originalStart).
func (r *Registry) Apply(seriesID string, originalStart time.Time, kind Kind, payload *Override) (Exception, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := KeyOf(seriesID, originalStart)
	var prev *Exception
	if e, ok := r.items[key]; ok {
		prev = &e
	}
	next, err := Apply(prev, seriesID, originalStart, kind, payload, r.now())
	if err != nil {
		return Exception{}, err
	}
	r.items[key] = next
	return next, nil
}

// ForSeries lists a series' exceptions ordered by original start.
func (r *Registry) ForSeries(seriesID string) []Exception {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Exception, 0)
	for k, e := range r.items {
		if k.SeriesID == seriesID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OriginalStart.Before(out[j].OriginalStart) })
	return out
}
