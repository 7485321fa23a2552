package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tracktroop/backend/internal/domain"
)

// CreatePlanAssignment records a plan assignment. Unknown user or plan ids
// surface as foreign-key violations for the caller to map.
func (r *Repository) CreatePlanAssignment(assignment *domain.PlanAssignment) error {
	query := `
		INSERT INTO plan_assignments (id, user_id, plan_id, assigned_by)
		VALUES ($1, $2, $3, $4)
		RETURNING assigned_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	assignment.ID = uuid.New().String()

	args := []any{assignment.ID, assignment.UserID, assignment.PlanID, assignment.AssignedBy}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&assignment.AssignedAt); err != nil {
		assignment.ID = ""
		return err
	}

	return nil
}

func (r *Repository) GetLatestPlanAssignment(userID string) (*domain.PlanAssignment, error) {
	query := `
		SELECT id, plan_id, assigned_by, assigned_at
		FROM plan_assignments
		WHERE user_id = $1
		ORDER BY assigned_at DESC
		LIMIT 1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	assignment := &domain.PlanAssignment{
		UserID: userID,
	}

	dst := []any{&assignment.ID, &assignment.PlanID, &assignment.AssignedBy, &assignment.AssignedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, userID).Scan(dst...); err != nil {
		return nil, err
	}

	return assignment, nil
}
