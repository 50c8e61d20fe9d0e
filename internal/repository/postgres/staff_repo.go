package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/resolvehq/complaints-backend/internal/models"
)

type staffRepo struct{ pool *pgxpool.Pool }

func (r *staffRepo) Create(ctx context.Context, u models.StaffUser) (models.StaffUser, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx, `
INSERT INTO staff_users (id, username, password_hash, role, name)
VALUES ($1,$2,$3,$4,$5)
RETURNING created_at`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.Name,
	).Scan(&u.CreatedAt)
	return u, err
}

func (r *staffRepo) GetByUsername(ctx context.Context, username string) (models.StaffUser, error) {
	var u models.StaffUser
	err := r.pool.QueryRow(ctx, `
SELECT id, username, password_hash, role, name, created_at
  FROM staff_users WHERE username=$1`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Name, &u.CreatedAt)
	return u, err
}

func (r *staffRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM staff_users`).Scan(&n)
	return n, err
}
