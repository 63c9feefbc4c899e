package organization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/endurancy/platform/internal/cache"
	"github.com/endurancy/platform/internal/catalog"
	"github.com/endurancy/platform/internal/models"
)

var ErrNotFound = errors.New("organization not found")

const planOverviewTTL = 2 * time.Minute

type Service struct {
	db    *pgxpool.Pool
	cache *cache.Cache
}

func NewService(db *pgxpool.Pool, c *cache.Cache) *Service {
	return &Service{db: db, cache: c}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	var o models.Organization
	err := s.db.QueryRow(ctx,
		`SELECT id, name, email, phone, address, city, state, postal_code, logo_url,
		        plan_id, plan_expiry_date, send_notifications, theme, created_at, updated_at
		 FROM organizations WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name, &o.Email, &o.Phone, &o.Address, &o.City, &o.State, &o.PostalCode,
		&o.LogoURL, &o.PlanID, &o.PlanExpiryDate, &o.SendNotifications, &o.Theme,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return &o, nil
}

type UpdateSettingsInput struct {
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Phone             *string `json:"phone,omitempty"`
	Address           *string `json:"address,omitempty"`
	City              *string `json:"city,omitempty"`
	State             *string `json:"state,omitempty"`
	PostalCode        *string `json:"postalCode,omitempty"`
	SendNotifications *bool   `json:"sendNotifications,omitempty"`
	Theme             *string `json:"theme,omitempty"`
}

// UpdateSettings rewrites the organization's contact and branding fields.
// Optional fields left nil keep their current value.
func (s *Service) UpdateSettings(ctx context.Context, id int64, in UpdateSettingsInput) (*models.Organization, error) {
	var o models.Organization
	err := s.db.QueryRow(ctx,
		`UPDATE organizations SET
		    name = $2,
		    email = $3,
		    phone = COALESCE($4, phone),
		    address = COALESCE($5, address),
		    city = COALESCE($6, city),
		    state = COALESCE($7, state),
		    postal_code = COALESCE($8, postal_code),
		    send_notifications = COALESCE($9, send_notifications),
		    theme = COALESCE($10, theme),
		    updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, email, phone, address, city, state, postal_code, logo_url,
		           plan_id, plan_expiry_date, send_notifications, theme, created_at, updated_at`,
		id, in.Name, in.Email, in.Phone, in.Address, in.City, in.State, in.PostalCode,
		in.SendNotifications, in.Theme,
	).Scan(&o.ID, &o.Name, &o.Email, &o.Phone, &o.Address, &o.City, &o.State, &o.PostalCode,
		&o.LogoURL, &o.PlanID, &o.PlanExpiryDate, &o.SendNotifications, &o.Theme,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update organization settings: %w", err)
	}

	s.invalidateOverview(ctx, id)
	return &o, nil
}

func (s *Service) SetLogo(ctx context.Context, id int64, logoURL string) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE organizations SET logo_url = $2, updated_at = now() WHERE id = $1", id, logoURL)
	if err != nil {
		return fmt.Errorf("set organization logo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) CountUsers(ctx context.Context, orgID int64) (int, error) {
	var n int
	err := s.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM users WHERE organization_id = $1", orgID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count organization users: %w", err)
	}
	return n, nil
}

type PlanInfo struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Tier       string     `json:"tier"`
	MaxRecords int        `json:"maxRecords"`
	ExpiryDate *time.Time `json:"expiryDate,omitempty"`
	Features   []string   `json:"features"`
}

type ModuleInfo struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Features    []string `json:"features"`
}

type PlanOverview struct {
	Plan               *PlanInfo    `json:"plan"`
	ActiveModules      []ModuleInfo `json:"activeModules"`
	RegistrationsUsed  int          `json:"registrationsUsed"`
	RegistrationsTotal int          `json:"registrationsTotal"`
}

// PlanOverview joins the organization with its plan, collects the active
// modules with their catalog rows, and counts the users registered under
// the tenant. The result is cached briefly; mutations that change it go
// through invalidateOverview.
func (s *Service) PlanOverview(ctx context.Context, orgID int64) (*PlanOverview, error) {
	key := overviewKey(orgID)
	if s.cache != nil {
		var cached PlanOverview
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	org, err := s.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	ov := &PlanOverview{ActiveModules: []ModuleInfo{}}

	if org.PlanID != nil {
		var p models.Plan
		err := s.db.QueryRow(ctx,
			"SELECT id, name, tier, max_records FROM plans WHERE id = $1", *org.PlanID,
		).Scan(&p.ID, &p.Name, &p.Tier, &p.MaxRecords)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get organization plan: %w", err)
		}
		if err == nil {
			ov.Plan = &PlanInfo{
				ID:         p.ID,
				Name:       p.Name,
				Tier:       p.Tier,
				MaxRecords: p.MaxRecords,
				ExpiryDate: org.PlanExpiryDate,
				Features:   catalog.PlanFeatures(p.Tier, p.MaxRecords),
			}
			ov.RegistrationsTotal = p.MaxRecords
		}
	}

	rows, err := s.db.Query(ctx,
		`SELECT m.id, m.name, m.type, m.description
		 FROM organization_modules om
		 JOIN modules m ON m.id = om.module_id
		 WHERE om.organization_id = $1 AND om.active = true
		 ORDER BY m.name`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list active modules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var mi ModuleInfo
		if err := rows.Scan(&mi.ID, &mi.Name, &mi.Type, &mi.Description); err != nil {
			return nil, fmt.Errorf("scan active module: %w", err)
		}
		mi.Features = catalog.ModuleFeatures(mi.Type)
		ov.ActiveModules = append(ov.ActiveModules, mi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate active modules: %w", err)
	}

	used, err := s.CountUsers(ctx, orgID)
	if err != nil {
		return nil, err
	}
	ov.RegistrationsUsed = used

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, ov, planOverviewTTL); err != nil {
			slog.Warn("failed to cache plan overview", "org_id", orgID, "error", err)
		}
	}
	return ov, nil
}

// InvalidateOverview drops the cached plan overview for an organization.
// Called after request approvals flip plans or module activations.
func (s *Service) InvalidateOverview(ctx context.Context, orgID int64) {
	s.invalidateOverview(ctx, orgID)
}

func (s *Service) invalidateOverview(ctx context.Context, orgID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, overviewKey(orgID)); err != nil {
		slog.Warn("failed to invalidate plan overview cache", "org_id", orgID, "error", err)
	}
}

func overviewKey(orgID int64) string {
	return fmt.Sprintf("org:%d:plan_overview", orgID)
}
