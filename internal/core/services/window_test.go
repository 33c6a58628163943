package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestObservationWindow_AddSnapshot(t *testing.T) {
	w := NewObservationWindow(time.Minute)
	assert.Equal(t, 0, w.Len())

	w.Add(uuid.New(), []float64{1, 2})
	w.Add(uuid.New(), []float64{3, 4})

	assert.Equal(t, 2, w.Len())
	vecs := w.Snapshot()
	assert.Len(t, vecs, 2)
	assert.ElementsMatch(t, [][]float64{{1, 2}, {3, 4}}, vecs)
}

func TestObservationWindow_SameIDOverwrites(t *testing.T) {
	w := NewObservationWindow(time.Minute)

	id := uuid.New()
	w.Add(id, []float64{1})
	w.Add(id, []float64{2})

	assert.Equal(t, 1, w.Len())
	assert.Equal(t, [][]float64{{2}}, w.Snapshot())
}

func TestObservationWindow_Expiry(t *testing.T) {
	w := NewObservationWindow(20 * time.Millisecond)

	w.Add(uuid.New(), []float64{1})
	assert.Equal(t, 1, w.Len())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, w.Len())
}
