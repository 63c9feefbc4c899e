package models

import (
	"encoding/json"
	"time"
)

type AuditLog struct {
	ID             int64           `json:"id" db:"id"`
	OrganizationID *int64          `json:"organizationId,omitempty" db:"organization_id"`
	UserID         *int64          `json:"userId,omitempty" db:"user_id"`
	Action         string          `json:"action" db:"action"`
	ResourceType   string          `json:"resourceType" db:"resource_type"`
	ResourceID     *int64          `json:"resourceId,omitempty" db:"resource_id"`
	Details        json.RawMessage `json:"details,omitempty" db:"details"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
}
