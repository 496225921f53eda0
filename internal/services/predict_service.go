package services

import (
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"netguard/internal/ml"
	"netguard/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ClassColumn holds the ground-truth label in uploaded datasets.
	ClassColumn = "Class"
	// TopFeatureCount bounds the feature-importance chart.
	TopFeatureCount = 10
)

// ChartRenderer draws the two diagnostic charts as PNG bytes.
type ChartRenderer interface {
	ConfusionMatrix(cm [][]int, labels []string) ([]byte, error)
	FeatureImportance(features []models.FeatureImportance) ([]byte, error)
}

// EventPublisher announces completed predictions.
type EventPublisher interface {
	PublishPredictionCompleted(event models.PredictionEvent) error
}

// PredictService scores uploaded datasets with the loaded model bundle.
type PredictService struct {
	bundle    *ml.Bundle
	charts    ChartRenderer
	publisher EventPublisher
	logger    *zap.Logger
}

// NewPredictService creates a new PredictService. publisher may be nil.
func NewPredictService(bundle *ml.Bundle, charts ChartRenderer, publisher EventPublisher, logger *zap.Logger) *PredictService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictService{
		bundle:    bundle,
		charts:    charts,
		publisher: publisher,
		logger:    logger,
	}
}

// Features returns the columns an upload must contain.
func (s *PredictService) Features() []string {
	return s.bundle.Features()
}

// Predict runs the full pipeline over a CSV upload. A *MissingFeaturesError
// is returned before any scoring when schema columns are absent; every other
// error is an internal failure.
func (s *PredictService) Predict(upload io.Reader) (*models.PredictionReport, error) {
	ds, err := ml.ReadCSV(upload)
	if err != nil {
		return nil, err
	}

	features := s.bundle.Features()
	if missing := ds.MissingColumns(features); len(missing) > 0 {
		return nil, &MissingFeaturesError{Missing: missing}
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("upload has no data rows")
	}

	x, err := ds.Matrix(features)
	if err != nil {
		return nil, err
	}
	actual, err := ds.Labels(ClassColumn)
	if err != nil {
		return nil, err
	}

	scaled, err := s.bundle.Scaler().Transform(x)
	if err != nil {
		return nil, fmt.Errorf("failed to scale features: %w", err)
	}
	classifier := s.bundle.Classifier()
	pred := classifier.Predict(scaled)

	labels := s.bundle.Labels()
	report := &models.PredictionReport{
		BatchID:     uuid.New().String(),
		Rows:        len(pred),
		Result:      ml.ClassDistribution(pred, labels),
		Matrix:      ml.ConfusionMatrix(actual, pred, labels.Classes()),
		TopFeatures: ml.TopFeatures(features, classifier.FeatureImportances(), TopFeatureCount),
	}

	cmImage, err := s.charts.ConfusionMatrix(report.Matrix, labels.Names())
	if err != nil {
		return nil, fmt.Errorf("failed to render confusion matrix: %w", err)
	}
	fiImage, err := s.charts.FeatureImportance(report.TopFeatures)
	if err != nil {
		return nil, fmt.Errorf("failed to render feature importance: %w", err)
	}
	report.ConfusionMatrix = base64.StdEncoding.EncodeToString(cmImage)
	report.FeatureImportance = base64.StdEncoding.EncodeToString(fiImage)

	s.logger.Info("prediction completed",
		zap.String("batch_id", report.BatchID),
		zap.Int("rows", report.Rows),
		zap.Any("result", report.Result),
	)
	s.publish(report)

	return report, nil
}

func (s *PredictService) publish(report *models.PredictionReport) {
	if s.publisher == nil {
		return
	}
	event := models.PredictionEvent{
		BatchID:   report.BatchID,
		Rows:      report.Rows,
		Result:    report.Result,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishPredictionCompleted(event); err != nil {
		s.logger.Warn("failed to publish prediction event",
			zap.String("batch_id", report.BatchID),
			zap.Error(err),
		)
	}
}
