package models

import "time"

const (
	RoleAdmin    = "admin"
	RoleOrgAdmin = "org_admin"
	RoleMember   = "member"
)

type User struct {
	ID             int64     `json:"id" db:"id"`
	OrganizationID *int64    `json:"organizationId,omitempty" db:"organization_id"`
	Role           string    `json:"role" db:"role"`
	Email          string    `json:"email" db:"email"`
	FullName       string    `json:"fullName,omitempty" db:"full_name"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
