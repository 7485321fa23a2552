package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/tracktroop/backend/internal/domain"
)

func (r *Repository) CreateFitnessPlan(plan *domain.FitnessPlan) error {
	query := `
		INSERT INTO fitness_plans (id, title, status, exercises, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	exercises, err := json.Marshal(plan.Exercises)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	plan.ID = uuid.New().String()

	args := []any{plan.ID, plan.Title, plan.Status, exercises, plan.CreatedBy}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&plan.CreatedAt); err != nil {
		plan.ID = ""
		return err
	}

	return nil
}

func (r *Repository) GetFitnessPlanByID(id string) (*domain.FitnessPlan, error) {
	query := `
		SELECT title, status, exercises, created_by, created_at
		FROM fitness_plans WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	plan := &domain.FitnessPlan{
		ID: id,
	}

	var exercises []byte
	dst := []any{&plan.Title, &plan.Status, &exercises, &plan.CreatedBy, &plan.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(exercises, &plan.Exercises); err != nil {
		return nil, err
	}

	return plan, nil
}

// GetAllFitnessPlans returns plans newest first, optionally filtered by
// status.
func (r *Repository) GetAllFitnessPlans(status *domain.FitnessStatus) ([]*domain.FitnessPlan, error) {
	query := `
		SELECT id, title, status, exercises, created_by, created_at
		FROM fitness_plans
		WHERE $1::text IS NULL OR status = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]*domain.FitnessPlan, 0)
	for rows.Next() {
		plan := &domain.FitnessPlan{}
		var exercises []byte
		dst := []any{&plan.ID, &plan.Title, &plan.Status, &exercises, &plan.CreatedBy, &plan.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(exercises, &plan.Exercises); err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return plans, nil
}
