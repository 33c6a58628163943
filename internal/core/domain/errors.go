package domain

import "errors"

// ============================================================================
// Model / Pipeline Errors
// ============================================================================

var (
	ErrModelNotLoaded      = errors.New("model pipeline not loaded")
	ErrInvalidSchema       = errors.New("invalid feature schema")
	ErrSchemaMismatch      = errors.New("artifact does not match feature schema")
	ErrInvalidArtifact     = errors.New("invalid model artifact")
	ErrMissingFeature      = errors.New("missing feature")
	ErrUnknownCategory     = errors.New("unknown category")
	ErrInvalidFeatureValue = errors.New("invalid feature value")
	ErrEmptyBatch          = errors.New("batch contains no feature rows")
)

// ============================================================================
// Prediction Log / Feedback Errors
// ============================================================================

var (
	ErrPredictionNotFound      = errors.New("prediction not found")
	ErrFeedbackAlreadyRecorded = errors.New("feedback already recorded for this prediction")
	ErrInvalidActualValue      = errors.New("actual value must be a finite number")
)

// ============================================================================
// Drift Errors
// ============================================================================

var (
	ErrDriftReportNotFound = errors.New("drift report not found")
	ErrNotEnoughSamples    = errors.New("not enough samples in the window")
	ErrInvalidDriftKind    = errors.New("invalid drift kind")
)

// ============================================================================
// Training Errors
// ============================================================================

var (
	ErrDegenerateTraining = errors.New("training data produced a singular system")
	ErrMissingColumn      = errors.New("dataset is missing a required column")
)

// ============================================================================
// Stats Errors
// ============================================================================

var (
	ErrInvalidTimeRange       = errors.New("invalid time range")
	ErrPrometheusNotAvailable = errors.New("prometheus is not available")
	ErrPrometheusQueryFailed  = errors.New("prometheus query failed")
)
