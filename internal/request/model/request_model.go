package model

import (
	"time"

	"github.com/google/uuid"

	unitmodel "siren/internal/unit/model"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPartial   Status = "PARTIAL"
	StatusCompleted Status = "COMPLETED"
)

// Assignment binds one unit to a request. A unit is assigned to a given
// request at most once.
type Assignment struct {
	UnitID     uuid.UUID `json:"unit_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// ResourceRequest is an incident commander's ask for units of one type.
// Assignments accumulate across dispatches until Quantity is covered.
type ResourceRequest struct {
	ID          uuid.UUID      `json:"id"`
	UnitType    unitmodel.Type `json:"unit_type"`
	Quantity    int            `json:"quantity"`
	Note        string         `json:"note,omitempty"`
	Status      Status         `json:"status"`
	Assignments []Assignment   `json:"assignments"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func NewRequest(unitType unitmodel.Type, quantity int, note string) ResourceRequest {
	now := time.Now()
	return ResourceRequest{
		ID:        uuid.New(),
		UnitType:  unitType,
		Quantity:  quantity,
		Note:      note,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r *ResourceRequest) Assigned(unitID uuid.UUID) bool {
	for _, a := range r.Assignments {
		if a.UnitID == unitID {
			return true
		}
	}
	return false
}
