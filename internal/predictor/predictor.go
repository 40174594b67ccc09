package predictor

import (
	"siren/internal/dataset"
	"siren/internal/incident/model"
)

type ProvideFn func() (Estimator, error)

type PointsDistanceFn func(vec, vec1 []float64) (float64, error)

// Estimator predicts resource counts for an incoming incident against a
// historical dataset snapshot. Implementations are pure functions of their
// inputs: the same snapshot and query always yield the same estimation.
type Estimator interface {
	Estimate(query model.Record, snap *dataset.Snapshot, k int) (*Estimation, error)
}

// Neighbor describes one of the nearest historical incidents, reported for
// operator transparency.
type Neighbor struct {
	Rank                 int     `json:"rank"`
	RowIndex             int     `json:"row_index"`
	Distance             float64 `json:"distance"`
	Category             string  `json:"incident_category"`
	Subtype              string  `json:"incident_subtype"`
	City                 string  `json:"city"`
	State                string  `json:"state"`
	PopulationAffected   float64 `json:"population_affected_est"`
	StructuresDamaged    float64 `json:"structures_damaged"`
	StructuresThreatened float64 `json:"structures_threatened"`
	ActualEngines        float64 `json:"actual_firetrucks_dispatched_engines"`
	ActualAmbulances     float64 `json:"actual_ambulances_dispatched"`
}

// QuerySummary echoes the salient fields of the query the estimation was
// computed for.
type QuerySummary struct {
	Category           string  `json:"incident_category"`
	Subtype            string  `json:"incident_subtype"`
	City               string  `json:"city"`
	State              string  `json:"state"`
	BuildingsAffected  float64 `json:"buildings_affected"`
	PopulationAffected float64 `json:"population_affected_est"`
	Severity           float64 `json:"severity_1_5"`
}

// Estimation is the full prediction result. Computed synchronously per
// request and never persisted.
type Estimation struct {
	Engines     int          `json:"firetrucks_dispatched_engines"`
	Ambulances  int          `json:"ambulances_dispatched"`
	KUsed       int          `json:"k_used"`
	Fingerprint string       `json:"dataset_fingerprint"`
	Query       QuerySummary `json:"query_used"`
	Neighbors   []Neighbor   `json:"similar_incidents_top5"`
}
