package artifact

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"model-inference-service/internal/core/domain"
)

func testArtifact() *Artifact {
	return &Artifact{
		SchemaVersion: SchemaVersion,
		ModelVersion:  "v-test",
		TrainedAt:     time.Now().UTC(),
		Schema: domain.Schema{
			Features: []domain.Feature{
				{Name: "x", Kind: domain.FeatureNumeric},
				{Name: "grade", Kind: domain.FeatureCategorical, Categories: []string{"low", "high"}},
			},
			Target: "y",
		},
		Scaler: domain.StandardScaler{Means: []float64{0, 0}, Stds: []float64{1, 1}},
		Model:  domain.LinearModel{Intercept: 1, Coefficients: []float64{2, 3}},
		L2:     1.0,
		Metrics: domain.TrainingMetrics{
			RMSE:    0.5,
			R2:      0.9,
			Samples: 100,
		},
		Reference: domain.ReferenceStats{Features: map[string]domain.FeatureReference{
			"x": {Edges: []float64{1, 2}, Expected: []float64{0.3, 0.3, 0.4}, Median: 1.5},
		}},
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.json")

	a := testArtifact()
	assert.NoError(t, Save(path, a))

	p, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "v-test", p.Version)
	assert.Equal(t, a.Model.Coefficients, p.Model.Coefficients)
	assert.Equal(t, a.Scaler.Means, p.Scaler.Means)
	assert.Equal(t, a.Reference.Features["x"].Expected, p.Reference.Features["x"].Expected)
}

func TestSave_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "pipeline.json")
	assert.NoError(t, Save(path, testArtifact()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestSave_RejectsInvalid(t *testing.T) {
	a := testArtifact()
	a.Model.Coefficients = []float64{1}

	err := Save(filepath.Join(t.TempDir(), "p.json"), a)
	assert.ErrorIs(t, err, domain.ErrInvalidArtifact)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_BadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	assert.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := Load(path)
	assert.ErrorIs(t, err, domain.ErrInvalidArtifact)
}

func TestPipeline_WrongSchemaVersion(t *testing.T) {
	a := testArtifact()
	a.SchemaVersion = SchemaVersion + 1

	_, err := a.Pipeline()
	assert.ErrorIs(t, err, domain.ErrInvalidArtifact)
}

func TestPipeline_MissingModelVersion(t *testing.T) {
	a := testArtifact()
	a.ModelVersion = ""

	_, err := a.Pipeline()
	assert.ErrorIs(t, err, domain.ErrInvalidArtifact)
}
