package ridge

import (
	"encoding/json"
	"fmt"

	"siren/internal/feature"
	"siren/internal/incident/model"
)

// ErrModelSchema reports a stored model payload missing one of its required
// fields.
var ErrModelSchema = fmt.Errorf("ridge: model payload is missing required fields")

const payloadVersion = 1

// Model is a trained linear map from feature vectors to resource counts.
// Unlike the kNN path, the feature order and level vocabulary are pinned at
// training time, so inference does not need the historical dataset.
// Consumed read-only until retrained.
type Model struct {
	FeatureOrder []string       `json:"feature_order"`
	Levels       feature.Levels `json:"categorical_levels"`
	Coef         [][]float64    `json:"coef"`
	Intercept    []float64      `json:"intercept"`
}

// Targets is a point prediction, one non-negative value per resource type.
type Targets struct {
	Engines    float64 `json:"firetrucks_dispatched_engines"`
	Ambulances float64 `json:"ambulances_dispatched"`
}

// Predict vectorizes the incident under the trained feature order and
// applies the linear map, clamping each output to non-negative.
func (m *Model) Predict(fields model.Record) (Targets, error) {
	if len(m.Coef) != len(feature.TargetFields) {
		return Targets{}, fmt.Errorf("ridge: model has %d target rows, want %d", len(m.Coef), len(feature.TargetFields))
	}
	vec := feature.Vectorize(fields, m.FeatureOrder, m.Levels)
	out := make([]float64, len(m.Coef))
	for t, row := range m.Coef {
		if len(row) != len(m.FeatureOrder) {
			return Targets{}, fmt.Errorf("ridge: coefficient row %d has %d columns, want %d", t, len(row), len(m.FeatureOrder))
		}
		sum := m.Intercept[t]
		for j, c := range row {
			sum += c * vec[j]
		}
		if sum < 0 {
			sum = 0
		}
		out[t] = sum
	}
	return Targets{Engines: out[0], Ambulances: out[1]}, nil
}

type modelPayload struct {
	Version      int             `json:"version"`
	FeatureOrder *[]string       `json:"feature_order"`
	Levels       *feature.Levels `json:"categorical_levels"`
	Coef         *[][]float64    `json:"coef"`
	Intercept    *[]float64      `json:"intercept"`
}

// Encode serializes the model as a versioned artifact.
func (m *Model) Encode() ([]byte, error) {
	return json.Marshal(struct {
		Version int `json:"version"`
		*Model
	}{Version: payloadVersion, Model: m})
}

// Decode parses a stored artifact, rejecting payloads missing the feature
// order, level vocabulary, coefficients or intercept.
func Decode(data []byte) (*Model, error) {
	var payload modelPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("ridge: decode model: %w", err)
	}
	if payload.FeatureOrder == nil || payload.Levels == nil || payload.Coef == nil || payload.Intercept == nil {
		return nil, ErrModelSchema
	}
	return &Model{
		FeatureOrder: *payload.FeatureOrder,
		Levels:       *payload.Levels,
		Coef:         *payload.Coef,
		Intercept:    *payload.Intercept,
	}, nil
}
