package model

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeAmbulance Type = "AMB"
	TypeEngine    Type = "ENG"
)

type Status string

const (
	StatusAvailable    Status = "AVAILABLE"
	StatusDispatched   Status = "DISPATCHED"
	StatusToScene      Status = "TO_SCENE"
	StatusOnScene      Status = "ON_SCENE"
	StatusToHospital   Status = "TO_HOSPITAL"
	StatusAtHospital   Status = "AT_HOSPITAL"
	StatusOutOfService Status = "OOS"
)

var validStatuses = map[Status]struct{}{
	StatusAvailable:    {},
	StatusDispatched:   {},
	StatusToScene:      {},
	StatusOnScene:      {},
	StatusToHospital:   {},
	StatusAtHospital:   {},
	StatusOutOfService: {},
}

func ValidStatus(s Status) bool {
	_, ok := validStatuses[s]
	return ok
}

func NewUnit(name string, unitType Type) Unit {
	now := time.Now()
	return Unit{
		ID:           uuid.New(),
		Name:         name,
		Type:         unitType,
		Status:       StatusAvailable,
		LastStatusAt: now,
		CreatedAt:    now,
	}
}

type Unit struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Type         Type      `json:"unit_type"`
	Status       Status    `json:"status"`
	LastStatusAt time.Time `json:"last_status_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// LogEntry records one status transition. The log is the single source of
// truth the low-supply forecast reads its consumption rate from.
type LogEntry struct {
	ID         uuid.UUID `json:"id"`
	UnitID     uuid.UUID `json:"unit_id"`
	UnitType   Type      `json:"unit_type"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	CreatedAt  time.Time `json:"created_at"`
}

func NewLogEntry(unit Unit, from, to Status) LogEntry {
	return LogEntry{
		ID:         uuid.New(),
		UnitID:     unit.ID,
		UnitType:   unit.Type,
		FromStatus: from,
		ToStatus:   to,
		CreatedAt:  time.Now(),
	}
}
