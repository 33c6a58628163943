package domain

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

type FeatureKind string

const (
	FeatureNumeric     FeatureKind = "numeric"
	FeatureCategorical FeatureKind = "categorical"
)

// Feature describes one input column. Categorical features carry their
// categories in ordinal order; the encoded value is the category index.
type Feature struct {
	Name       string      `json:"name"`
	Kind       FeatureKind `json:"kind"`
	Categories []string    `json:"categories,omitempty"`
}

type Schema struct {
	Features []Feature `json:"features"`
	Target   string    `json:"target"`
}

// DiamondSchema is the stock schema the trainer and server operate on:
// the diamond price regression features in their natural quality order.
func DiamondSchema() Schema {
	return Schema{
		Features: []Feature{
			{Name: "carat", Kind: FeatureNumeric},
			{Name: "cut", Kind: FeatureCategorical, Categories: []string{"Fair", "Good", "Very Good", "Premium", "Ideal"}},
			{Name: "color", Kind: FeatureCategorical, Categories: []string{"J", "I", "H", "G", "F", "E", "D"}},
			{Name: "clarity", Kind: FeatureCategorical, Categories: []string{"I1", "SI2", "SI1", "VS2", "VS1", "VVS2", "VVS1", "IF"}},
			{Name: "depth", Kind: FeatureNumeric},
			{Name: "table", Kind: FeatureNumeric},
		},
		Target: "price",
	}
}

func (s Schema) Validate() error {
	if len(s.Features) == 0 {
		return fmt.Errorf("%w: schema has no features", ErrInvalidSchema)
	}
	if s.Target == "" {
		return fmt.Errorf("%w: schema has no target", ErrInvalidSchema)
	}
	seen := make(map[string]bool, len(s.Features))
	for _, f := range s.Features {
		if f.Name == "" {
			return fmt.Errorf("%w: feature with empty name", ErrInvalidSchema)
		}
		if seen[f.Name] {
			return fmt.Errorf("%w: duplicate feature %q", ErrInvalidSchema, f.Name)
		}
		seen[f.Name] = true
		switch f.Kind {
		case FeatureNumeric:
		case FeatureCategorical:
			if len(f.Categories) < 2 {
				return fmt.Errorf("%w: categorical feature %q needs at least 2 categories", ErrInvalidSchema, f.Name)
			}
		default:
			return fmt.Errorf("%w: feature %q has unknown kind %q", ErrInvalidSchema, f.Name, f.Kind)
		}
	}
	return nil
}

func (s Schema) Names() []string {
	names := make([]string, len(s.Features))
	for i, f := range s.Features {
		names[i] = f.Name
	}
	return names
}

// Vectorize encodes a raw feature map into the schema's fixed-order
// vector. Numerics accept JSON numbers or numeric strings; categoricals
// are ordinal-encoded by category index.
func (s Schema) Vectorize(features map[string]interface{}) ([]float64, error) {
	vec := make([]float64, len(s.Features))
	for i, f := range s.Features {
		raw, ok := features[f.Name]
		if !ok || raw == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingFeature, f.Name)
		}

		switch f.Kind {
		case FeatureNumeric:
			v, err := toFloat(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrInvalidFeatureValue, f.Name)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: %s", ErrInvalidFeatureValue, f.Name)
			}
			vec[i] = v

		case FeatureCategorical:
			label, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrInvalidFeatureValue, f.Name)
			}
			idx := -1
			for j, c := range f.Categories {
				if c == label {
					idx = j
					break
				}
			}
			if idx < 0 {
				return nil, fmt.Errorf("%w: %s=%q", ErrUnknownCategory, f.Name, label)
			}
			vec[i] = float64(idx)
		}
	}
	return vec, nil
}

func toFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, fmt.Errorf("unsupported value type %T", raw)
	}
}

// StandardScaler holds per-feature mean and standard deviation fitted
// at training time. A zero std marks a constant training column; the
// scaled value is forced to 0 instead of dividing by zero.
type StandardScaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

func (sc StandardScaler) Transform(vec []float64) []float64 {
	out := make([]float64, len(vec))
	for i, v := range vec {
		if sc.Stds[i] <= 0 {
			out[i] = 0
			continue
		}
		out[i] = (v - sc.Means[i]) / sc.Stds[i]
	}
	return out
}

type LinearModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

func (m LinearModel) Predict(vec []float64) float64 {
	y := m.Intercept
	for i, v := range vec {
		y += m.Coefficients[i] * v
	}
	return y
}

type TrainingMetrics struct {
	RMSE    float64 `json:"rmse"`
	R2      float64 `json:"r2"`
	Samples int     `json:"samples"`
}

// FeatureReference summarizes the training distribution of one encoded
// feature. Edges are interior bin edges (deciles of the training
// values); Expected holds the training proportion per bin, so PSI
// stays exact for discrete ordinal features where quantile bins are
// not uniform.
type FeatureReference struct {
	Edges    []float64 `json:"edges"`
	Expected []float64 `json:"expected"`
	Median   float64   `json:"median"`
}

type ReferenceStats struct {
	Features map[string]FeatureReference `json:"features"`
}

// Pipeline is the fitted inference pipeline: ordinal encoding per the
// schema, standardization, then the linear model.
type Pipeline struct {
	Version   string
	TrainedAt time.Time
	Schema    Schema
	Scaler    StandardScaler
	Model     LinearModel
	Metrics   TrainingMetrics
	Reference ReferenceStats
}

func (p *Pipeline) Validate() error {
	if err := p.Schema.Validate(); err != nil {
		return err
	}
	n := len(p.Schema.Features)
	if len(p.Scaler.Means) != n || len(p.Scaler.Stds) != n {
		return fmt.Errorf("%w: scaler has %d/%d stats for %d features",
			ErrSchemaMismatch, len(p.Scaler.Means), len(p.Scaler.Stds), n)
	}
	if len(p.Model.Coefficients) != n {
		return fmt.Errorf("%w: model has %d coefficients for %d features",
			ErrSchemaMismatch, len(p.Model.Coefficients), n)
	}
	for name, ref := range p.Reference.Features {
		if len(ref.Edges) == 0 {
			return fmt.Errorf("%w: feature %q has no reference edges", ErrSchemaMismatch, name)
		}
		if len(ref.Expected) != len(ref.Edges)+1 {
			return fmt.Errorf("%w: feature %q has %d expected proportions for %d bins",
				ErrSchemaMismatch, name, len(ref.Expected), len(ref.Edges)+1)
		}
	}
	return nil
}

// Predict runs the full pipeline. The returned vector is the encoded,
// pre-scaling representation; drift detection compares these against
// the reference quantiles, which are kept on the same scale.
func (p *Pipeline) Predict(features map[string]interface{}) (float64, []float64, error) {
	vec, err := p.Schema.Vectorize(features)
	if err != nil {
		return 0, nil, err
	}
	scaled := p.Scaler.Transform(vec)
	return p.Model.Predict(scaled), vec, nil
}
