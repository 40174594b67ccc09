package knn

import (
	"fmt"

	"siren/internal/geom"
	"siren/internal/predictor"
)

type DistanceFuncType string

const (
	DistanceFuncTypeEuclidean DistanceFuncType = "EUCLIDEAN"
	DistanceFuncTypeChebyshev DistanceFuncType = "CHEBYSHEV"
	DistanceFuncTypeManhattan DistanceFuncType = "MANHATTAN"
)

type Config struct {
	DefaultK       int              `envconfig:"SIREN_KNN_DEFAULT_K" default:"15"`
	MinPool        int              `envconfig:"SIREN_KNN_MIN_POOL" default:"0"`
	MetricFuncType DistanceFuncType `envconfig:"SIREN_KNN_DISTANCE_FUNC" default:"EUCLIDEAN"`
}

func DistanceFuncFor(d DistanceFuncType) (predictor.PointsDistanceFn, error) {
	switch d {
	case DistanceFuncTypeChebyshev:
		return geom.ChebyshevDistance, nil
	case DistanceFuncTypeEuclidean:
		return geom.EuclideanDistance, nil
	case DistanceFuncTypeManhattan:
		return geom.ManhattanDistance, nil
	default:
		return nil, fmt.Errorf("unknown distance function: %s", d)
	}
}
