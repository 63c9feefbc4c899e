package models

import "time"

type Organization struct {
	ID                int64      `json:"id" db:"id"`
	Name              string     `json:"name" db:"name"`
	Email             string     `json:"email" db:"email"`
	Phone             string     `json:"phone,omitempty" db:"phone"`
	Address           string     `json:"address,omitempty" db:"address"`
	City              string     `json:"city,omitempty" db:"city"`
	State             string     `json:"state,omitempty" db:"state"`
	PostalCode        string     `json:"postalCode,omitempty" db:"postal_code"`
	LogoURL           string     `json:"logoUrl,omitempty" db:"logo_url"`
	PlanID            *int64     `json:"planId,omitempty" db:"plan_id"`
	PlanExpiryDate    *time.Time `json:"planExpiryDate,omitempty" db:"plan_expiry_date"`
	SendNotifications bool       `json:"sendNotifications" db:"send_notifications"`
	Theme             string     `json:"theme" db:"theme"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time  `json:"updatedAt" db:"updated_at"`
}

type Plan struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Tier       string    `json:"tier" db:"tier"`
	MaxRecords int       `json:"maxRecords" db:"max_records"`
	PriceCents int64     `json:"priceCents" db:"price_cents"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

type Module struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Type        string    `json:"type" db:"type"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// OrganizationModule links an organization to a catalog module.
// Active marks whether the module is currently enabled for the tenant.
type OrganizationModule struct {
	ID             int64     `json:"id" db:"id"`
	OrganizationID int64     `json:"organizationId" db:"organization_id"`
	ModuleID       int64     `json:"moduleId" db:"module_id"`
	Active         bool      `json:"active" db:"active"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}
