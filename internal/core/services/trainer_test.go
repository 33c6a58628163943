package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"model-inference-service/internal/core/domain"
)

func gradeSchema() domain.Schema {
	return domain.Schema{
		Features: []domain.Feature{
			{Name: "size", Kind: domain.FeatureNumeric},
			{Name: "grade", Kind: domain.FeatureCategorical, Categories: []string{"low", "high"}},
		},
		Target: "y",
	}
}

// syntheticRows follows y = 100 + 10*size + 50*grade exactly.
func syntheticRows(n int) []map[string]string {
	rows := make([]map[string]string, 0, n)
	for i := 0; i < n; i++ {
		size := float64(i%10) + 1
		grade := "low"
		gradeVal := 0.0
		if i%2 == 1 {
			grade = "high"
			gradeVal = 1
		}
		y := 100 + 10*size + 50*gradeVal
		rows = append(rows, map[string]string{
			"size":  fmt.Sprintf("%g", size),
			"grade": grade,
			"y":     fmt.Sprintf("%g", y),
		})
	}
	return rows
}

func TestTrainer_Fit(t *testing.T) {
	trainer := NewTrainer(gradeSchema(), 0.001)

	a, err := trainer.Fit(syntheticRows(40))
	assert.NoError(t, err)
	assert.NotEmpty(t, a.ModelVersion)
	assert.Equal(t, 40, a.Metrics.Samples)
	assert.InDelta(t, 0, a.Metrics.RMSE, 1.0)
	assert.InDelta(t, 1, a.Metrics.R2, 0.01)

	p, err := a.Pipeline()
	assert.NoError(t, err)

	y, _, err := p.Predict(map[string]interface{}{"size": 5.0, "grade": "high"})
	assert.NoError(t, err)
	assert.InDelta(t, 200, y, 2.0)
}

func TestTrainer_Fit_ReferenceStats(t *testing.T) {
	trainer := NewTrainer(gradeSchema(), 0.001)

	a, err := trainer.Fit(syntheticRows(40))
	assert.NoError(t, err)

	for _, feat := range []string{"size", "grade"} {
		ref, ok := a.Reference.Features[feat]
		assert.True(t, ok, feat)
		assert.Len(t, ref.Edges, 9)
		assert.Len(t, ref.Expected, 10)

		var sum float64
		for _, e := range ref.Expected {
			sum += e
		}
		assert.InDelta(t, 1, sum, 1e-9)
	}
}

func TestTrainer_Fit_TooFewRows(t *testing.T) {
	trainer := NewTrainer(gradeSchema(), 1.0)

	_, err := trainer.Fit(syntheticRows(2))
	assert.ErrorIs(t, err, domain.ErrNotEnoughSamples)
}

func TestTrainer_Fit_MissingTarget(t *testing.T) {
	trainer := NewTrainer(gradeSchema(), 1.0)

	rows := syntheticRows(10)
	delete(rows[3], "y")
	_, err := trainer.Fit(rows)
	assert.ErrorIs(t, err, domain.ErrMissingColumn)
}

func TestTrainer_Fit_BadTarget(t *testing.T) {
	trainer := NewTrainer(gradeSchema(), 1.0)

	rows := syntheticRows(10)
	rows[5]["y"] = "expensive"
	_, err := trainer.Fit(rows)
	assert.ErrorIs(t, err, domain.ErrInvalidFeatureValue)
}

func TestTrainer_Fit_UnknownCategory(t *testing.T) {
	trainer := NewTrainer(gradeSchema(), 1.0)

	rows := syntheticRows(10)
	rows[2]["grade"] = "medium"
	_, err := trainer.Fit(rows)
	assert.ErrorIs(t, err, domain.ErrUnknownCategory)
}

func TestSolveLinearSystem(t *testing.T) {
	// 2x + y = 5, x - y = 1 -> x = 2, y = 1
	a := [][]float64{{2, 1}, {1, -1}}
	b := []float64{5, 1}

	w, err := solveLinearSystem(a, b)
	assert.NoError(t, err)
	assert.InDelta(t, 2, w[0], 1e-9)
	assert.InDelta(t, 1, w[1], 1e-9)
}

func TestSolveLinearSystem_Singular(t *testing.T) {
	a := [][]float64{{1, 2}, {2, 4}}
	b := []float64{3, 6}

	_, err := solveLinearSystem(a, b)
	assert.ErrorIs(t, err, domain.ErrDegenerateTraining)
}
