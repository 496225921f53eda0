package models

import "time"

// FeatureImportance pairs a feature column with the classifier's importance score.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// PredictionReport is the response body of a successful prediction.
// Only Result and the two images are serialized; the remaining fields are
// kept for logging, events and tests.
type PredictionReport struct {
	Result            map[string]float64 `json:"result"`
	ConfusionMatrix   string             `json:"confusion_matrix"`   // base64 PNG
	FeatureImportance string             `json:"feature_importance"` // base64 PNG

	BatchID     string              `json:"-"`
	Rows        int                 `json:"-"`
	Matrix      [][]int             `json:"-"`
	TopFeatures []FeatureImportance `json:"-"`
}

// PredictionEvent is published once per completed prediction batch.
type PredictionEvent struct {
	BatchID   string             `json:"batch_id"`
	Rows      int                `json:"rows"`
	Result    map[string]float64 `json:"result"`
	CreatedAt time.Time          `json:"created_at"`
}
