package knn

import (
	"fmt"
	"math"

	"siren/internal/dataset"
	"siren/internal/feature"
	"siren/internal/geom"
	"siren/internal/incident/model"
	"siren/internal/predictor"
	"siren/pkg/pqueue"
)

var _ predictor.Estimator = (*Regressor)(nil)

// epsilon stabilizes the inverse-distance weight so an exact match keeps a
// finite weight instead of dividing by zero.
const epsilon = 1e-6

const explainTopN = 5

type Option func(*Regressor)

func WithDistance(f predictor.PointsDistanceFn) Option {
	return func(r *Regressor) {
		r.distFunc = f
	}
}

// WithMinPool widens the neighborhood to at least n rows when the requested
// k is smaller, still capped by the dataset size. Zero disables widening and
// keeps k_used == min(k, N).
func WithMinPool(n int) Option {
	return func(r *Regressor) {
		r.minPool = n
	}
}

// New returns a distance-weighted k-nearest-neighbor regressor. The
// regressor holds no dataset state: the vocabulary and feature order are
// rebuilt from the snapshot on every call, so estimations are
// snapshot-relative.
func New(opts ...Option) *Regressor {
	r := &Regressor{distFunc: geom.EuclideanDistance}
	for _, f := range opts {
		f(r)
	}
	return r
}

type Regressor struct {
	distFunc predictor.PointsDistanceFn
	minPool  int
}

// Estimate predicts engine and ambulance counts for the query against the
// snapshot, using the k nearest historical rows by distance. Ties in
// distance resolve to the earlier row. The raw weighted average is clamped
// to zero and rounded up: under-provisioning is the failure mode to avoid.
func (r *Regressor) Estimate(query model.Record, snap *dataset.Snapshot, k int) (*predictor.Estimation, error) {
	rows := snap.Rows()
	if len(rows) == 0 {
		return nil, dataset.ErrEmpty
	}

	levels := feature.CollectLevels(rows)
	order := feature.BuildOrder(levels)
	queryVec := feature.Vectorize(query, order, levels)

	pool := k
	if pool < 1 {
		pool = 1
	}
	if r.minPool > pool {
		pool = r.minPool
	}
	if pool > len(rows) {
		pool = len(rows)
	}

	pq := pqueue.New(pqueue.WithOrderAsc(), pqueue.WithCap(uint(pool)))
	for i := range rows {
		vec := feature.Vectorize(rows[i], order, levels)
		distance, err := r.distFunc(queryVec.Points(), vec.Points())
		if err != nil {
			return nil, fmt.Errorf("unable to compute distance to row %d: %w", i, err)
		}
		pq.Push(i, distance)
	}

	kUsed := pq.Len()
	acc := make(geom.Point, len(feature.TargetFields))
	var weightSum float64
	for i := 0; i < kUsed; i++ {
		value, distance := pq.Seek(i)
		targets := feature.Targets(rows[value.(int)])
		weight := 1.0 / (distance + epsilon)
		weightSum += weight
		for j := range acc {
			acc[j] += weight * targets[j]
		}
	}
	if weightSum > 0 {
		acc.Scale(1.0 / weightSum)
	} else {
		// degenerate weighting, fall back to the unweighted mean
		acc.Zero()
		for i := 0; i < kUsed; i++ {
			value, _ := pq.Seek(i)
			targets := feature.Targets(rows[value.(int)])
			for j := range acc {
				acc[j] += targets[j]
			}
		}
		acc.Scale(1.0 / float64(kUsed))
	}

	topN := explainTopN
	if kUsed < topN {
		topN = kUsed
	}
	neighbors := make([]predictor.Neighbor, 0, topN)
	for rank := 0; rank < topN; rank++ {
		value, distance := pq.Seek(rank)
		row := rows[value.(int)]
		targets := feature.Targets(row)
		neighbors = append(neighbors, predictor.Neighbor{
			Rank:                 rank + 1,
			RowIndex:             value.(int),
			Distance:             distance,
			Category:             row[feature.FieldCategory],
			Subtype:              row[feature.FieldSubtype],
			City:                 row[feature.FieldCity],
			State:                row[feature.FieldState],
			PopulationAffected:   feature.ParseFloat(row[feature.FieldPopulationAffected]),
			StructuresDamaged:    feature.ParseFloat(row[feature.FieldStructuresDamaged]),
			StructuresThreatened: feature.ParseFloat(row[feature.FieldStructuresThreatened]),
			ActualEngines:        targets[0],
			ActualAmbulances:     targets[1],
		})
	}

	return &predictor.Estimation{
		Engines:     ceilNonNeg(acc[0]),
		Ambulances:  ceilNonNeg(acc[1]),
		KUsed:       kUsed,
		Fingerprint: snap.Fingerprint(),
		Query:       summarize(query),
		Neighbors:   neighbors,
	}, nil
}

// ceilNonNeg clamps a raw prediction to zero and rounds up to the next
// whole unit.
func ceilNonNeg(x float64) int {
	if x < 0 {
		return 0
	}
	return int(math.Ceil(x))
}

func summarize(query model.Record) predictor.QuerySummary {
	return predictor.QuerySummary{
		Category:           query[feature.FieldCategory],
		Subtype:            query[feature.FieldSubtype],
		City:               query[feature.FieldCity],
		State:              query[feature.FieldState],
		BuildingsAffected:  feature.ParseFloat(query[feature.FieldStructuresDamaged]),
		PopulationAffected: feature.ParseFloat(query[feature.FieldPopulationAffected]),
		Severity:           feature.ParseFloat(query[feature.FieldSeverity]),
	}
}
