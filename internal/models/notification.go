package models

import "time"

const (
	NotificationInfo    = "info"
	NotificationWarning = "warning"
	NotificationSuccess = "success"
	NotificationError   = "error"
)

type Notification struct {
	ID             int64     `json:"id" db:"id"`
	UserID         int64     `json:"userId" db:"user_id"`
	OrganizationID *int64    `json:"organizationId,omitempty" db:"organization_id"`
	TicketID       *int64    `json:"ticketId,omitempty" db:"ticket_id"`
	Title          string    `json:"title" db:"title"`
	Message        string    `json:"message" db:"message"`
	Type           string    `json:"type" db:"type"`
	IsRead         bool      `json:"isRead" db:"is_read"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
