// The trainer fits the diamond price pipeline from a CSV table and
// writes the artifact the server loads. It runs at image-build time
// and is configured through the same env layer as the server
// (TRAINING_DATA_PATH, TRAINING_L2, MODEL_ARTIFACT_PATH).
package main

import (
	log "github.com/sirupsen/logrus"

	"model-inference-service/internal/artifact"
	"model-inference-service/internal/config"
	"model-inference-service/internal/core/domain"
	"model-inference-service/internal/core/services"
	"model-inference-service/internal/dataset"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	rows, err := dataset.Load(cfg.Training.DataPath)
	if err != nil {
		log.Fatalf("load training data: %v", err)
	}
	log.WithFields(log.Fields{
		"path": cfg.Training.DataPath,
		"rows": len(rows),
	}).Info("training data loaded")

	trainer := services.NewTrainer(domain.DiamondSchema(), cfg.Training.L2)
	a, err := trainer.Fit(rows)
	if err != nil {
		log.Fatalf("fit pipeline: %v", err)
	}

	if err := artifact.Save(cfg.Model.ArtifactPath, a); err != nil {
		log.Fatalf("save artifact: %v", err)
	}

	log.WithFields(log.Fields{
		"model_version": a.ModelVersion,
		"rmse":          a.Metrics.RMSE,
		"r2":            a.Metrics.R2,
		"samples":       a.Metrics.Samples,
		"artifact":      cfg.Model.ArtifactPath,
	}).Info("pipeline trained")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
