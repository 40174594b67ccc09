package eval

import (
	"fmt"
	"math"

	"github.com/valyala/fastrand"

	"siren/internal/feature"
	"siren/internal/incident/model"
	"siren/internal/predictor/ridge"
)

// Report holds per-target holdout error for a training run. Index 0 is
// engines, index 1 ambulances, matching the target field order.
type Report struct {
	MAE       []float64 `json:"mae"`
	RMSE      []float64 `json:"rmse"`
	TrainRows int       `json:"train_rows"`
	TestRows  int       `json:"test_rows"`
}

// Split shuffles the rows with the seeded generator and cuts them at
// trainRatio. The input slice is not modified.
func Split(rows []model.Record, trainRatio float64, seed uint32) (train, test []model.Record) {
	shuffled := make([]model.Record, len(rows))
	copy(shuffled, rows)
	var rng fastrand.RNG
	rng.Seed(seed)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := int(rng.Uint32n(uint32(i + 1)))
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	cut := int(float64(len(shuffled)) * trainRatio)
	return shuffled[:cut], shuffled[cut:]
}

// Holdout trains a ridge model on the training split and reports MAE and
// RMSE per target over the held-out rows.
func Holdout(rows []model.Record, trainRatio, lambda float64, seed uint32) (*Report, error) {
	train, test := Split(rows, trainRatio, seed)
	if len(test) == 0 {
		return nil, fmt.Errorf("eval: test split is empty, adjust train ratio or data volume")
	}

	m, err := ridge.Train(train, lambda)
	if err != nil {
		return nil, fmt.Errorf("eval: train on split: %w", err)
	}

	targets := len(feature.TargetFields)
	absSum := make([]float64, targets)
	sqSum := make([]float64, targets)
	for _, row := range test {
		predicted, err := m.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("eval: predict holdout row: %w", err)
		}
		actual := feature.Targets(row)
		diffs := []float64{predicted.Engines - actual[0], predicted.Ambulances - actual[1]}
		for t, d := range diffs {
			absSum[t] += math.Abs(d)
			sqSum[t] += d * d
		}
	}

	mae := make([]float64, targets)
	rmse := make([]float64, targets)
	for t := 0; t < targets; t++ {
		mae[t] = absSum[t] / float64(len(test))
		rmse[t] = math.Sqrt(sqSum[t] / float64(len(test)))
	}

	return &Report{
		MAE:       mae,
		RMSE:      rmse,
		TrainRows: len(train),
		TestRows:  len(test),
	}, nil
}
