package model

import (
	"time"

	"github.com/google/uuid"

	"siren/internal/forecast"
)

func NewAlert(report forecast.Report) Alert {
	return Alert{
		ID:        uuid.New(),
		Report:    report,
		CreatedAt: time.Now(),
	}
}

// Alert is one issued low-supply warning, kept for audit.
type Alert struct {
	ID        uuid.UUID       `json:"id"`
	Report    forecast.Report `json:"report"`
	CreatedAt time.Time       `json:"createdAt"`
}
