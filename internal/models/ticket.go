package models

import "time"

const (
	TicketPriorityLow      = "low"
	TicketPriorityMedium   = "medium"
	TicketPriorityHigh     = "high"
	TicketPriorityCritical = "critical"
)

type SupportTicket struct {
	ID             int64      `json:"id" db:"id"`
	OrganizationID *int64     `json:"organizationId,omitempty" db:"organization_id"`
	CreatedByID    int64      `json:"createdById" db:"created_by_id"`
	Subject        string     `json:"subject" db:"subject"`
	Priority       string     `json:"priority" db:"priority"`
	Status         string     `json:"status" db:"status"`
	FirstReplyAt   *time.Time `json:"firstReplyAt,omitempty" db:"first_reply_at"`
	CreatedAt      time.Time  `json:"createdAt" db:"created_at"`
}
