package services

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/caio/go-tdigest/v4"
	"github.com/google/uuid"

	"model-inference-service/internal/artifact"
	"model-inference-service/internal/core/domain"
)

// referenceBinCount is how many PSI bins the trainer derives per
// feature (deciles of the training distribution).
const referenceBinCount = 10

// Trainer fits the standardize-then-ridge-regression pipeline from a
// raw training table and packages it as an artifact.
type Trainer struct {
	schema domain.Schema
	l2     float64
}

func NewTrainer(schema domain.Schema, l2 float64) *Trainer {
	return &Trainer{schema: schema, l2: l2}
}

func (t *Trainer) Fit(rows []map[string]string) (*artifact.Artifact, error) {
	if err := t.schema.Validate(); err != nil {
		return nil, err
	}

	p := len(t.schema.Features)
	if len(rows) < p+1 {
		return nil, fmt.Errorf("%w: %d rows for %d features", domain.ErrNotEnoughSamples, len(rows), p)
	}

	x, y, err := t.encode(rows)
	if err != nil {
		return nil, err
	}
	n := len(x)

	scaler := fitScaler(x)
	z := make([][]float64, n)
	for i, row := range x {
		z[i] = scaler.Transform(row)
	}

	weights, err := ridgeFit(z, y, t.l2)
	if err != nil {
		return nil, err
	}
	model := domain.LinearModel{
		Intercept:    weights[0],
		Coefficients: weights[1:],
	}

	rmse, r2 := fitError(z, y, model)

	reference, err := t.referenceStats(x)
	if err != nil {
		return nil, err
	}

	return &artifact.Artifact{
		SchemaVersion: artifact.SchemaVersion,
		ModelVersion:  uuid.New().String(),
		TrainedAt:     time.Now(),
		Schema:        t.schema,
		Scaler:        scaler,
		Model:         model,
		L2:            t.l2,
		Metrics: domain.TrainingMetrics{
			RMSE:    rmse,
			R2:      r2,
			Samples: n,
		},
		Reference: reference,
	}, nil
}

// encode vectorizes every row and parses the target column. Bad rows
// fail the fit; a build-time trainer should refuse skewed input rather
// than silently drop it.
func (t *Trainer) encode(rows []map[string]string) ([][]float64, []float64, error) {
	x := make([][]float64, 0, len(rows))
	y := make([]float64, 0, len(rows))

	for i, row := range rows {
		features := make(map[string]interface{}, len(row))
		for k, v := range row {
			features[k] = v
		}

		vec, err := t.schema.Vectorize(features)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		raw, ok := row[t.schema.Target]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrMissingColumn, t.schema.Target)
		}
		target, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w: %s", i+1, domain.ErrInvalidFeatureValue, t.schema.Target)
		}

		x = append(x, vec)
		y = append(y, target)
	}
	return x, y, nil
}

func fitScaler(x [][]float64) domain.StandardScaler {
	n := float64(len(x))
	p := len(x[0])
	means := make([]float64, p)
	stds := make([]float64, p)

	for j := 0; j < p; j++ {
		var sum float64
		for i := range x {
			sum += x[i][j]
		}
		means[j] = sum / n

		var sq float64
		for i := range x {
			d := x[i][j] - means[j]
			sq += d * d
		}
		stds[j] = math.Sqrt(sq / n)
	}
	return domain.StandardScaler{Means: means, Stds: stds}
}

// ridgeFit solves the normal equations (GᵀG + λI)w = Gᵀy over the
// intercept-augmented design matrix; the intercept is not penalized.
func ridgeFit(z [][]float64, y []float64, l2 float64) ([]float64, error) {
	n := len(z)
	d := len(z[0]) + 1

	g := make([][]float64, n)
	for i, row := range z {
		g[i] = make([]float64, d)
		g[i][0] = 1
		copy(g[i][1:], row)
	}

	a := make([][]float64, d)
	b := make([]float64, d)
	for j := 0; j < d; j++ {
		a[j] = make([]float64, d)
		for k := 0; k < d; k++ {
			var sum float64
			for i := 0; i < n; i++ {
				sum += g[i][j] * g[i][k]
			}
			a[j][k] = sum
		}
		if j > 0 {
			a[j][j] += l2
		}
		var sum float64
		for i := 0; i < n; i++ {
			sum += g[i][j] * y[i]
		}
		b[j] = sum
	}

	return solveLinearSystem(a, b)
}

// solveLinearSystem runs Gaussian elimination with partial pivoting.
// The system here is tiny (features+1 square), so no linear algebra
// dependency is warranted.
func solveLinearSystem(a [][]float64, b []float64) ([]float64, error) {
	d := len(b)

	for col := 0; col < d; col++ {
		pivot := col
		for row := col + 1; row < d; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, domain.ErrDegenerateTraining
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < d; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < d; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	w := make([]float64, d)
	for row := d - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < d; k++ {
			sum -= a[row][k] * w[k]
		}
		w[row] = sum / a[row][row]
	}
	return w, nil
}

func fitError(z [][]float64, y []float64, model domain.LinearModel) (rmse, r2 float64) {
	pairs := make([]domain.FeedbackPair, len(z))
	for i, row := range z {
		pairs[i] = domain.FeedbackPair{
			Predicted: model.Predict(row),
			Actual:    y[i],
		}
	}
	return regressionError(pairs)
}

// referenceStats derives the PSI reference bins per feature from the
// encoded (pre-scaling) training columns: decile edges from a t-digest
// plus the empirical proportion of training values per bin.
func (t *Trainer) referenceStats(x [][]float64) (domain.ReferenceStats, error) {
	stats := domain.ReferenceStats{
		Features: make(map[string]domain.FeatureReference, len(t.schema.Features)),
	}

	for j, feat := range t.schema.Features {
		td, err := tdigest.New()
		if err != nil {
			return domain.ReferenceStats{}, fmt.Errorf("create digest: %w", err)
		}
		for i := range x {
			if err := td.Add(x[i][j]); err != nil {
				return domain.ReferenceStats{}, fmt.Errorf("digest %s: %w", feat.Name, err)
			}
		}

		edges := make([]float64, referenceBinCount-1)
		for k := 1; k < referenceBinCount; k++ {
			edges[k-1] = td.Quantile(float64(k) / referenceBinCount)
		}

		counts := make([]int, referenceBinCount)
		for i := range x {
			counts[binIndex(x[i][j], edges)]++
		}
		expected := make([]float64, referenceBinCount)
		for k, count := range counts {
			expected[k] = float64(count) / float64(len(x))
		}

		stats.Features[feat.Name] = domain.FeatureReference{
			Edges:    edges,
			Expected: expected,
			Median:   td.Quantile(0.5),
		}
	}
	return stats, nil
}
