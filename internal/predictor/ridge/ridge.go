package ridge

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"siren/internal/dataset"
	"siren/internal/feature"
	"siren/internal/incident/model"
)

type Config struct {
	Lambda float64 `envconfig:"SIREN_RIDGE_LAMBDA" default:"1.0"`
}

// Train fits the model by regularized least squares: the design matrix gets
// a leading bias column of ones and the solution is (XᵀX + λI')⁻¹XᵀY, where
// I' zeroes the bias diagonal entry so the intercept is not shrunk. A
// rank-deficient design relative to λ surfaces as the solver's error; retry
// with a different λ.
func Train(rows []model.Record, lambda float64) (*Model, error) {
	if len(rows) == 0 {
		return nil, dataset.ErrEmpty
	}

	levels := feature.CollectLevels(rows)
	order := feature.BuildOrder(levels)

	n := len(rows)
	d := len(order) + 1
	targets := len(feature.TargetFields)

	xb := mat.NewDense(n, d, nil)
	y := mat.NewDense(n, targets, nil)
	for i := range rows {
		vec := feature.Vectorize(rows[i], order, levels)
		xb.Set(i, 0, 1.0)
		for j, v := range vec {
			xb.Set(i, j+1, v)
		}
		t := feature.Targets(rows[i])
		for j, v := range t {
			y.Set(i, j, v)
		}
	}

	var xtx mat.Dense
	xtx.Mul(xb.T(), xb)
	for j := 1; j < d; j++ {
		xtx.Set(j, j, xtx.At(j, j)+lambda)
	}

	var inv mat.Dense
	if err := inv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("ridge: normal matrix is not invertible with lambda=%g: %w", lambda, err)
	}

	var xty, weights mat.Dense
	xty.Mul(xb.T(), y)
	weights.Mul(&inv, &xty)

	intercept := make([]float64, targets)
	coef := make([][]float64, targets)
	for t := 0; t < targets; t++ {
		intercept[t] = weights.At(0, t)
		coef[t] = make([]float64, d-1)
		for j := 1; j < d; j++ {
			coef[t][j-1] = weights.At(j, t)
		}
	}

	return &Model{
		FeatureOrder: order,
		Levels:       levels,
		Coef:         coef,
		Intercept:    intercept,
	}, nil
}
