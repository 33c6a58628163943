package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/caio/go-tdigest/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-inference-service/internal/core/domain"
	ports "model-inference-service/internal/core/ports/output"
	"model-inference-service/internal/telemetry"
)

// psiEpsilon floors bin proportions so empty bins cannot blow the
// PSI sum up to infinity.
const psiEpsilon = 1e-4

// PipelineProvider hands the drift detectors the currently loaded
// pipeline; the prediction service implements it.
type PipelineProvider interface {
	Pipeline() *domain.Pipeline
}

type DriftSettings struct {
	PSIThreshold     float64
	ConceptThreshold float64
	MinSamples       int
	Window           time.Duration
}

// DriftService runs data drift (PSI of the observation window against
// the artifact's reference bins) and concept drift (RMSE degradation
// over feedback pairs against the training baseline).
type DriftService struct {
	pipelines PipelineProvider
	window    *ObservationWindow
	feedback  ports.FeedbackRepository
	reports   ports.DriftReportRepository
	alerts    ports.AlertPublisher
	metrics   *telemetry.Metrics
	settings  DriftSettings
}

// NewDriftService wires the drift detectors. alerts may be nil when
// alert publishing is disabled.
func NewDriftService(
	pipelines PipelineProvider,
	window *ObservationWindow,
	feedback ports.FeedbackRepository,
	reports ports.DriftReportRepository,
	alerts ports.AlertPublisher,
	metrics *telemetry.Metrics,
	settings DriftSettings,
) *DriftService {
	return &DriftService{
		pipelines: pipelines,
		window:    window,
		feedback:  feedback,
		reports:   reports,
		alerts:    alerts,
		metrics:   metrics,
		settings:  settings,
	}
}

// Evaluate runs both detectors. Detectors without enough samples are
// reported as skipped rather than failing the run.
func (s *DriftService) Evaluate(ctx context.Context) ([]*domain.DriftReport, []domain.DriftKind, error) {
	var reports []*domain.DriftReport
	var skipped []domain.DriftKind

	data, err := s.EvaluateData(ctx)
	switch {
	case errors.Is(err, domain.ErrNotEnoughSamples):
		skipped = append(skipped, domain.DriftKindData)
	case err != nil:
		return nil, nil, err
	default:
		reports = append(reports, data)
	}

	concept, err := s.EvaluateConcept(ctx)
	switch {
	case errors.Is(err, domain.ErrNotEnoughSamples):
		skipped = append(skipped, domain.DriftKindConcept)
	case err != nil:
		return nil, nil, err
	default:
		reports = append(reports, concept)
	}

	return reports, skipped, nil
}

// EvaluateData scores each feature's current window distribution
// against the artifact's reference bins. The report score is the
// worst per-feature PSI.
func (s *DriftService) EvaluateData(ctx context.Context) (*domain.DriftReport, error) {
	p := s.pipelines.Pipeline()
	if p == nil {
		return nil, domain.ErrModelNotLoaded
	}

	vecs := s.window.Snapshot()
	if len(vecs) < s.settings.MinSamples {
		return nil, domain.ErrNotEnoughSamples
	}

	now := time.Now()
	features := make([]domain.FeatureDrift, 0, len(p.Schema.Features))
	score := 0.0

	for i, feat := range p.Schema.Features {
		ref, ok := p.Reference.Features[feat.Name]
		if !ok {
			continue
		}

		values := make([]float64, 0, len(vecs))
		for _, vec := range vecs {
			if i < len(vec) {
				values = append(values, vec[i])
			}
		}

		psi := psiScore(values, ref.Edges, ref.Expected)
		fd := domain.FeatureDrift{
			Feature:         feat.Name,
			PSI:             psi,
			ReferenceMedian: ref.Median,
			CurrentMedian:   median(values),
			Drifted:         psi > s.settings.PSIThreshold,
		}
		features = append(features, fd)
		if psi > score {
			score = psi
		}
	}

	report := &domain.DriftReport{
		ID:           uuid.New(),
		CreatedAt:    now,
		Kind:         domain.DriftKindData,
		Score:        score,
		Threshold:    s.settings.PSIThreshold,
		Drifted:      score > s.settings.PSIThreshold,
		WindowStart:  now.Add(-s.settings.Window),
		WindowEnd:    now,
		Samples:      len(vecs),
		ModelVersion: p.Version,
		Detail:       domain.DriftDetail{Features: features},
	}

	if err := s.finishReport(ctx, report); err != nil {
		return nil, err
	}
	s.metrics.DataDrift.Update(score)
	return report, nil
}

// EvaluateConcept compares prediction error over the window's feedback
// pairs with the training baseline RMSE.
func (s *DriftService) EvaluateConcept(ctx context.Context) (*domain.DriftReport, error) {
	p := s.pipelines.Pipeline()
	if p == nil {
		return nil, domain.ErrModelNotLoaded
	}

	now := time.Now()
	since := now.Add(-s.settings.Window)
	pairs, err := s.feedback.ListPairs(ctx, since)
	if err != nil {
		return nil, err
	}
	if len(pairs) < s.settings.MinSamples {
		return nil, domain.ErrNotEnoughSamples
	}

	rmse, r2 := regressionError(pairs)
	baseline := p.Metrics.RMSE

	var score float64
	switch {
	case rmse <= baseline:
		score = 0
	case baseline > 0:
		score = (rmse - baseline) / baseline
	default:
		// Zero-error baseline means any observed error is drift.
		score = 1
	}

	report := &domain.DriftReport{
		ID:           uuid.New(),
		CreatedAt:    now,
		Kind:         domain.DriftKindConcept,
		Score:        score,
		Threshold:    s.settings.ConceptThreshold,
		Drifted:      score > s.settings.ConceptThreshold,
		WindowStart:  since,
		WindowEnd:    now,
		Samples:      len(pairs),
		ModelVersion: p.Version,
		Detail: domain.DriftDetail{
			RMSE:         rmse,
			BaselineRMSE: baseline,
			R2:           r2,
		},
	}

	if err := s.finishReport(ctx, report); err != nil {
		return nil, err
	}
	s.metrics.ConceptDrift.Update(score)
	return report, nil
}

func (s *DriftService) finishReport(ctx context.Context, report *domain.DriftReport) error {
	if err := s.reports.Create(ctx, report); err != nil {
		return err
	}

	if report.Drifted {
		log.WithFields(log.Fields{
			"kind":    report.Kind,
			"score":   report.Score,
			"samples": report.Samples,
		}).Warn("drift detected")

		if s.alerts != nil {
			if err := s.alerts.PublishDriftAlert(ctx, report); err != nil {
				log.WithError(err).Error("publish drift alert failed")
			}
		}
	}
	return nil
}

func (s *DriftService) GetReport(ctx context.Context, id uuid.UUID) (*domain.DriftReport, error) {
	return s.reports.GetByID(ctx, id)
}

func (s *DriftService) ListReports(ctx context.Context, filter ports.DriftListFilter) ([]*domain.DriftReport, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.reports.List(ctx, filter)
}

// psiScore bins values by the reference edges and sums
// (observed-expected)*ln(observed/expected) over the bins.
func psiScore(values []float64, edges, expected []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	counts := make([]int, len(edges)+1)
	for _, v := range values {
		counts[binIndex(v, edges)]++
	}

	psi := 0.0
	n := float64(len(values))
	for i, count := range counts {
		obs := math.Max(float64(count)/n, psiEpsilon)
		exp := math.Max(expected[i], psiEpsilon)
		psi += (obs - exp) * math.Log(obs/exp)
	}
	return psi
}

func binIndex(v float64, edges []float64) int {
	for i, edge := range edges {
		if v <= edge {
			return i
		}
	}
	return len(edges)
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	td, err := tdigest.New()
	if err != nil {
		return 0
	}
	for _, v := range values {
		_ = td.Add(v)
	}
	return td.Quantile(0.5)
}

// regressionError computes RMSE and R2 of predictions against actuals.
func regressionError(pairs []domain.FeedbackPair) (rmse, r2 float64) {
	n := float64(len(pairs))

	var meanActual float64
	for _, pair := range pairs {
		meanActual += pair.Actual
	}
	meanActual /= n

	var ssRes, ssTot float64
	for _, pair := range pairs {
		d := pair.Predicted - pair.Actual
		ssRes += d * d
		t := pair.Actual - meanActual
		ssTot += t * t
	}

	rmse = math.Sqrt(ssRes / n)
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	return rmse, r2
}
