package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TopicMilestoneUpdatedV1 = "progress.milestone.updated.v1"
	EventVersionV1          = 1
)

type MilestoneUpdatedV1 struct {
	EventID         uuid.UUID       `json:"event_id"`
	EventVersion    int             `json:"event_version"`
	RequestID       string          `json:"request_id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	ComponentID     uuid.UUID       `json:"component_id"`
	MilestoneName   string          `json:"milestone_name"`
	Action          string          `json:"action"`
	PreviousValue   json.RawMessage `json:"previous_value,omitempty"`
	NewValue        json.RawMessage `json:"new_value"`
	PercentComplete float64         `json:"percent_complete"`
	UserID          uuid.UUID       `json:"user_id"`
	TransactionTime time.Time       `json:"transaction_time"`
}
