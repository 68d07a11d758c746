package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	TopicWeldImportCompletedV1 = "importer.weld_import.completed.v1"
	EventVersionV1             = 1
)

type WeldImportCompletedV1 struct {
	EventID         uuid.UUID `json:"event_id"`
	EventVersion    int       `json:"event_version"`
	RequestID       string    `json:"request_id"`
	TenantID        uuid.UUID `json:"tenant_id"`
	ProjectID       uuid.UUID `json:"project_id"`
	TotalRows       int       `json:"total_rows"`
	SuccessCount    int       `json:"success_count"`
	ErrorCount      int       `json:"error_count"`
	TransactionTime time.Time `json:"transaction_time"`
}
