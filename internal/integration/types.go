package integration

type IncidentQuery struct {
	City                 string  `json:"city"`
	StructuresThreatened float64 `json:"structures_threatened"`
	StructuresDamaged    float64 `json:"structures_damaged"`
	PopulationAffected   float64 `json:"population_affected_est"`
	Category             string  `json:"incident_category"`
	Subtype              string  `json:"incident_subtype"`
}

type PredictRequest struct {
	Incidents []IncidentQuery `json:"incidents"`
	K         int             `json:"k"`
}

type CollectRequest struct {
	Incidents []map[string]string `json:"incidents"`
}

type TrainRequest struct {
	Lambda  *float64 `json:"lambda,omitempty"`
	Holdout bool     `json:"holdout,omitempty"`
}
