package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// ObservationWindow is the sliding window of recently served feature
// vectors, keyed by prediction id. Entries expire after the drift
// window so data drift is always evaluated against fresh traffic.
type ObservationWindow struct {
	entries *cache.Cache
}

func NewObservationWindow(ttl time.Duration) *ObservationWindow {
	return &ObservationWindow{
		entries: cache.New(ttl, ttl),
	}
}

func (w *ObservationWindow) Add(id uuid.UUID, vec []float64) {
	w.entries.SetDefault(id.String(), vec)
}

// Snapshot returns the unexpired feature vectors, in no particular order.
func (w *ObservationWindow) Snapshot() [][]float64 {
	items := w.entries.Items()
	vecs := make([][]float64, 0, len(items))
	for _, item := range items {
		if vec, ok := item.Object.([]float64); ok {
			vecs = append(vecs, vec)
		}
	}
	return vecs
}

func (w *ObservationWindow) Len() int {
	return len(w.entries.Items())
}
