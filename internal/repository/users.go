package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tracktroop/backend/internal/domain"
)

// CreateUser inserts the user and fills in the generated id and creation
// timestamp. The users_email_key constraint is the source of truth for
// duplicate emails; callers map that violation to a conflict.
func (r *Repository) CreateUser(user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, user_type, service_no)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user.ID = uuid.New().String()

	args := []any{user.ID, user.Email, user.PasswordHash, user.FullName, user.UserType, user.ServiceNo}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.CreatedAt); err != nil {
		user.ID = ""
		return err
	}

	return nil
}

func (r *Repository) GetUserByEmail(email string) (*domain.User, error) {
	query := `
		SELECT id, password_hash, full_name, user_type, service_no, fitness_status, created_at
		FROM users WHERE email = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		Email: email,
	}

	dst := []any{&user.ID, &user.PasswordHash, &user.FullName, &user.UserType, &user.ServiceNo, &user.FitnessStatus, &user.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetUserByID(id string) (*domain.User, error) {
	query := `
		SELECT email, password_hash, full_name, user_type, service_no, fitness_status, created_at
		FROM users WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	user := &domain.User{
		ID: id,
	}

	dst := []any{&user.Email, &user.PasswordHash, &user.FullName, &user.UserType, &user.ServiceNo, &user.FitnessStatus, &user.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

// EmailExists is a fast-path check only; the unique constraint decides.
func (r *Repository) EmailExists(email string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	exists := false
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

func (r *Repository) UpdateUserPassword(id string, passwordHash string) error {
	query := `
		UPDATE users SET password_hash = $1 WHERE id = $2
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var updatedID string
	if err := r.dbpool.QueryRowContext(ctx, query, passwordHash, id).Scan(&updatedID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateFitnessStatus(id string, status domain.FitnessStatus) error {
	query := `
		UPDATE users SET fitness_status = $1 WHERE id = $2
		RETURNING id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	var updatedID string
	if err := r.dbpool.QueryRowContext(ctx, query, status, id).Scan(&updatedID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllFitnessStatuses() ([]domain.UserFitnessStatus, error) {
	query := `
		SELECT id, fitness_status FROM users
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := make([]domain.UserFitnessStatus, 0)
	for rows.Next() {
		var s domain.UserFitnessStatus
		if err := rows.Scan(&s.UserID, &s.Status); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return statuses, nil
}
