package model

import (
	"time"

	"github.com/google/uuid"

	"siren/internal/feature"
	"siren/internal/geom"
)

// Record is the raw field map of an incident as loaded from a tabular
// source. Records never mutate once loaded.
type Record = map[string]string

func NewIncident(fields Record, createdAt time.Time) Incident {
	return Incident{
		ID:        uuid.New(),
		Fields:    fields,
		CreatedAt: createdAt,
	}
}

type Incident struct {
	ID        uuid.UUID `json:"id"`
	Fields    Record    `json:"fields"`
	CreatedAt time.Time `json:"createdAt"`
}

func (i Incident) Field(name string) string {
	return i.Fields[name]
}

// Targets returns the (engines, ambulances) historical outcome pair.
func (i Incident) Targets() geom.Point {
	return feature.Targets(i.Fields)
}

func (i Incident) Category() string {
	return i.Fields[feature.FieldCategory]
}

func (i Incident) City() string {
	return i.Fields[feature.FieldCity]
}
