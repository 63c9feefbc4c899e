package request

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/endurancy/platform/internal/models"
	"github.com/endurancy/platform/internal/notification"
)

var (
	ErrNotFound             = errors.New("request not found")
	ErrPendingRequestExists = errors.New("a pending request of this type already exists")
	ErrModuleAlreadyActive  = errors.New("module already active for this organization")
	ErrNotPending           = errors.New("request is not pending")
)

// DB is the slice of the pgx pool the ledger uses.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Catalog resolves the plan and module rows a request references.
type Catalog interface {
	GetPlan(ctx context.Context, id int64) (*models.Plan, error)
	GetModule(ctx context.Context, id int64) (*models.Module, error)
}

// Organizations resolves the requesting tenant and drops its cached
// plan overview after an approval changes it.
type Organizations interface {
	GetByID(ctx context.Context, id int64) (*models.Organization, error)
	InvalidateOverview(ctx context.Context, orgID int64)
}

// Notifier delivers request lifecycle notifications.
type Notifier interface {
	Create(ctx context.Context, in notification.CreateInput) (*models.Notification, error)
	NotifyAdmins(ctx context.Context, orgID *int64, typ, title, message string) (int, error)
}

// Service is the request/approval ledger: organization admins file plan
// and module change requests, platform admins approve or reject them.
type Service struct {
	db            DB
	catalog       Catalog
	orgs          Organizations
	notifications Notifier
}

func NewService(db DB, cat Catalog, orgs Organizations, n Notifier) *Service {
	return &Service{db: db, catalog: cat, orgs: orgs, notifications: n}
}

// RequestPlanChange files a pending plan-change request. At most one
// pending plan request may exist per organization; the check is a read
// followed by an insert, so two racing calls can both pass it.
func (s *Service) RequestPlanChange(ctx context.Context, orgID, planID, requestedBy int64) (*models.Request, error) {
	plan, err := s.catalog.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
		    SELECT 1 FROM requests
		    WHERE organization_id = $1 AND type = $2 AND status = $3)`,
		orgID, models.RequestTypePlan, models.RequestStatusPending,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check pending plan request: %w", err)
	}
	if exists {
		return nil, ErrPendingRequestExists
	}

	data, err := encodeData(PlanChangeData{PlanID: planID, PreviousPlanID: org.PlanID})
	if err != nil {
		return nil, err
	}

	req, err := s.insert(ctx, orgID, models.RequestTypePlan, data, requestedBy,
		fmt.Sprintf("Solicitação de mudança para o plano %s", plan.Name))
	if err != nil {
		return nil, err
	}

	s.fanOutToAdmins(ctx, org, "Nova solicitação de plano",
		fmt.Sprintf("A organização %s solicitou mudança para o plano %s.", org.Name, plan.Name))

	return req, nil
}

// RequestModuleActivation files a pending module-activation request.
// Fails when the module is already active for the organization or when a
// pending request for the same module exists. Duplicate detection decodes
// the stored payloads and compares the module id structurally.
func (s *Service) RequestModuleActivation(ctx context.Context, orgID, moduleID, requestedBy int64) (*models.Request, error) {
	mod, err := s.catalog.GetModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	var active bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
		    SELECT 1 FROM organization_modules
		    WHERE organization_id = $1 AND module_id = $2 AND active = true)`,
		orgID, moduleID,
	).Scan(&active)
	if err != nil {
		return nil, fmt.Errorf("check active module: %w", err)
	}
	if active {
		return nil, ErrModuleAlreadyActive
	}

	dup, err := s.hasPendingModuleRequest(ctx, orgID, moduleID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, ErrPendingRequestExists
	}

	data, err := encodeData(ModuleActivationData{ModuleID: moduleID})
	if err != nil {
		return nil, err
	}

	req, err := s.insert(ctx, orgID, models.RequestTypeModule, data, requestedBy,
		fmt.Sprintf("Solicitação de ativação do módulo %s", mod.Name))
	if err != nil {
		return nil, err
	}

	s.fanOutToAdmins(ctx, org, "Nova solicitação de módulo",
		fmt.Sprintf("A organização %s solicitou a ativação do módulo %s.", org.Name, mod.Name))

	return req, nil
}

func (s *Service) hasPendingModuleRequest(ctx context.Context, orgID, moduleID int64) (bool, error) {
	rows, err := s.db.Query(ctx,
		"SELECT data FROM requests WHERE organization_id = $1 AND type = $2 AND status = $3",
		orgID, models.RequestTypeModule, models.RequestStatusPending)
	if err != nil {
		return false, fmt.Errorf("list pending module requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return false, fmt.Errorf("scan pending request data: %w", err)
		}
		d, err := decodeModuleData(raw)
		if err != nil {
			// A malformed legacy payload should not block new requests.
			slog.Warn("skipping undecodable request payload", "org_id", orgID, "error", err)
			continue
		}
		if d.ModuleID == moduleID {
			return true, nil
		}
	}
	return false, rows.Err()
}

func (s *Service) insert(ctx context.Context, orgID int64, typ string, data []byte, createdBy int64, description string) (*models.Request, error) {
	var r models.Request
	err := s.db.QueryRow(ctx,
		`INSERT INTO requests (organization_id, type, status, data, description, created_by_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, organization_id, type, status, data, description, created_by_id,
		           reviewed_by_id, reviewed_at, created_at`,
		orgID, typ, models.RequestStatusPending, data, description, createdBy,
	).Scan(&r.ID, &r.OrganizationID, &r.Type, &r.Status, &r.Data, &r.Description,
		&r.CreatedByID, &r.ReviewedByID, &r.ReviewedAt, &r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}
	return &r, nil
}

// fanOutToAdmins is best effort: a notification failure never rolls back
// an already-recorded request.
func (s *Service) fanOutToAdmins(ctx context.Context, org *models.Organization, title, message string) {
	if _, err := s.notifications.NotifyAdmins(ctx, &org.ID, models.NotificationInfo, title, message); err != nil {
		slog.Error("failed to notify admins of new request", "org_id", org.ID, "error", err)
	}
}

type ListFilter struct {
	Status string
	Type   string
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]models.Request, error) {
	query := `SELECT id, organization_id, type, status, data, description, created_by_id,
	                 reviewed_by_id, reviewed_at, created_at
	          FROM requests WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, f.Status)
		argIdx++
	}
	if f.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, f.Type)
		argIdx++
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	requests := []models.Request{}
	for rows.Next() {
		var r models.Request
		if err := rows.Scan(&r.ID, &r.OrganizationID, &r.Type, &r.Status, &r.Data, &r.Description,
			&r.CreatedByID, &r.ReviewedByID, &r.ReviewedAt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *Service) GetByID(ctx context.Context, id int64) (*models.Request, error) {
	var r models.Request
	err := s.db.QueryRow(ctx,
		`SELECT id, organization_id, type, status, data, description, created_by_id,
		        reviewed_by_id, reviewed_at, created_at
		 FROM requests WHERE id = $1`, id,
	).Scan(&r.ID, &r.OrganizationID, &r.Type, &r.Status, &r.Data, &r.Description,
		&r.CreatedByID, &r.ReviewedByID, &r.ReviewedAt, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return &r, nil
}

// Approve flips a pending request to approved and applies its effect in
// one transaction: plan requests update the organization's plan, module
// requests upsert the organization_modules link as active. The requester
// is notified after commit.
func (s *Service) Approve(ctx context.Context, id, reviewedBy int64) (*models.Request, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin approve tx: %w", err)
	}
	defer tx.Rollback(ctx)

	r, err := s.lockPending(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	switch r.Type {
	case models.RequestTypePlan:
		d, err := decodePlanData(r.Data)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx,
			"UPDATE organizations SET plan_id = $2, updated_at = now() WHERE id = $1",
			r.OrganizationID, d.PlanID); err != nil {
			return nil, fmt.Errorf("apply plan change: %w", err)
		}
	case models.RequestTypeModule:
		d, err := decodeModuleData(r.Data)
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO organization_modules (organization_id, module_id, active)
			 VALUES ($1, $2, true)
			 ON CONFLICT (organization_id, module_id) DO UPDATE SET active = true`,
			r.OrganizationID, d.ModuleID); err != nil {
			return nil, fmt.Errorf("activate module: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown request type %q", r.Type)
	}

	if err := s.finish(ctx, tx, r, models.RequestStatusApproved, reviewedBy); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit approve tx: %w", err)
	}

	s.orgs.InvalidateOverview(ctx, r.OrganizationID)
	s.notifyRequester(ctx, r, models.NotificationSuccess, "Solicitação aprovada",
		fmt.Sprintf("Sua solicitação #%d foi aprovada.", r.ID))

	return r, nil
}

// Reject flips a pending request to rejected without applying any effect.
func (s *Service) Reject(ctx context.Context, id, reviewedBy int64, reason string) (*models.Request, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reject tx: %w", err)
	}
	defer tx.Rollback(ctx)

	r, err := s.lockPending(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := s.finish(ctx, tx, r, models.RequestStatusRejected, reviewedBy); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reject tx: %w", err)
	}

	message := fmt.Sprintf("Sua solicitação #%d foi rejeitada.", r.ID)
	if reason != "" {
		message = fmt.Sprintf("Sua solicitação #%d foi rejeitada: %s", r.ID, reason)
	}
	s.notifyRequester(ctx, r, models.NotificationError, "Solicitação rejeitada", message)

	return r, nil
}

func (s *Service) lockPending(ctx context.Context, tx pgx.Tx, id int64) (*models.Request, error) {
	var r models.Request
	err := tx.QueryRow(ctx,
		`SELECT id, organization_id, type, status, data, description, created_by_id,
		        reviewed_by_id, reviewed_at, created_at
		 FROM requests WHERE id = $1 FOR UPDATE`, id,
	).Scan(&r.ID, &r.OrganizationID, &r.Type, &r.Status, &r.Data, &r.Description,
		&r.CreatedByID, &r.ReviewedByID, &r.ReviewedAt, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock request: %w", err)
	}
	if r.Status != models.RequestStatusPending {
		return nil, ErrNotPending
	}
	return &r, nil
}

func (s *Service) finish(ctx context.Context, tx pgx.Tx, r *models.Request, status string, reviewedBy int64) error {
	err := tx.QueryRow(ctx,
		`UPDATE requests SET status = $2, reviewed_by_id = $3, reviewed_at = now()
		 WHERE id = $1 RETURNING status, reviewed_by_id, reviewed_at`,
		r.ID, status, reviewedBy,
	).Scan(&r.Status, &r.ReviewedByID, &r.ReviewedAt)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	return nil
}

func (s *Service) notifyRequester(ctx context.Context, r *models.Request, typ, title, message string) {
	if _, err := s.notifications.Create(ctx, notification.CreateInput{
		UserID:         r.CreatedByID,
		OrganizationID: &r.OrganizationID,
		Title:          title,
		Message:        message,
		Type:           typ,
	}); err != nil {
		slog.Error("failed to notify requester", "request_id", r.ID, "error", err)
	}
}
