package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/endurancy/platform/internal/models"
)

var (
	ErrPlanNotFound   = errors.New("plan not found")
	ErrModuleNotFound = errors.New("module not found")
)

// Service reads the plan and module catalog. The catalog is managed out
// of band; this slice never writes to it.
type Service struct {
	db *pgxpool.Pool
}

func NewService(db *pgxpool.Pool) *Service {
	return &Service{db: db}
}

func (s *Service) GetPlan(ctx context.Context, id int64) (*models.Plan, error) {
	var p models.Plan
	err := s.db.QueryRow(ctx,
		"SELECT id, name, tier, max_records, price_cents, created_at FROM plans WHERE id = $1", id,
	).Scan(&p.ID, &p.Name, &p.Tier, &p.MaxRecords, &p.PriceCents, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plan: %w", err)
	}
	return &p, nil
}

func (s *Service) GetModule(ctx context.Context, id int64) (*models.Module, error) {
	var m models.Module
	err := s.db.QueryRow(ctx,
		"SELECT id, name, type, description, created_at FROM modules WHERE id = $1", id,
	).Scan(&m.ID, &m.Name, &m.Type, &m.Description, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrModuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get module: %w", err)
	}
	return &m, nil
}

func (s *Service) ListPlans(ctx context.Context) ([]models.Plan, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, name, tier, max_records, price_cents, created_at FROM plans ORDER BY price_cents")
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []models.Plan
	for rows.Next() {
		var p models.Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.Tier, &p.MaxRecords, &p.PriceCents, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (s *Service) ListModules(ctx context.Context) ([]models.Module, error) {
	rows, err := s.db.Query(ctx,
		"SELECT id, name, type, description, created_at FROM modules ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer rows.Close()

	var modules []models.Module
	for rows.Next() {
		var m models.Module
		if err := rows.Scan(&m.ID, &m.Name, &m.Type, &m.Description, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}
