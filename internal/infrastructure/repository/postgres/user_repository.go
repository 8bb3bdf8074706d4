package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ragul2105/plant-disease-api/internal/core/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (uid, email, name, phone, location, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (uid) DO UPDATE
SET email = EXCLUDED.email,
    name = EXCLUDED.name,
    phone = EXCLUDED.phone,
    location = EXCLUDED.location,
    updated_at = EXCLUDED.updated_at
`, profile.UID, profile.Email, profile.Name, profile.Phone, profile.Location, profile.CreatedAt, profile.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUID(ctx context.Context, uid string) (*domain.UserProfile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT uid, email, name, phone, location, created_at, updated_at
FROM users
WHERE uid = $1
`, uid)

	// name/phone/location are nullable in the schema.
	var profile domain.UserProfile
	var name, phone, location sql.NullString
	err := row.Scan(
		&profile.UID,
		&profile.Email,
		&name,
		&phone,
		&location,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("uid=%s", uid))
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	profile.Name = name.String
	profile.Phone = phone.String
	profile.Location = location.String
	return &profile, nil
}
