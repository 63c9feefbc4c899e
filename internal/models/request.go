package models

import (
	"encoding/json"
	"time"
)

// Request type values are kept in Portuguese for compatibility with the
// rows already present in production databases.
const (
	RequestTypePlan   = "plano"
	RequestTypeModule = "módulo"
)

const (
	RequestStatusPending  = "pendente"
	RequestStatusApproved = "aprovado"
	RequestStatusRejected = "rejeitado"
)

type Request struct {
	ID             int64           `json:"id" db:"id"`
	OrganizationID int64           `json:"organizationId" db:"organization_id"`
	Type           string          `json:"type" db:"type"`
	Status         string          `json:"status" db:"status"`
	Data           json.RawMessage `json:"data" db:"data"`
	Description    string          `json:"description,omitempty" db:"description"`
	CreatedByID    int64           `json:"createdById" db:"created_by_id"`
	ReviewedByID   *int64          `json:"reviewedById,omitempty" db:"reviewed_by_id"`
	ReviewedAt     *time.Time      `json:"reviewedAt,omitempty" db:"reviewed_at"`
	CreatedAt      time.Time       `json:"createdAt" db:"created_at"`
}
