package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// PostgresTaxProfileRepository implements TaxProfileRepository using PostgreSQL
type PostgresTaxProfileRepository struct {
	db *pgxpool.Pool
}

// NewPostgresTaxProfileRepository creates a new PostgreSQL tax profile repository
func NewPostgresTaxProfileRepository(db *pgxpool.Pool) TaxProfileRepository {
	return &PostgresTaxProfileRepository{db: db}
}

// GetProfile retrieves the user's tax profile for a year
func (r *PostgresTaxProfileRepository) GetProfile(ctx context.Context, userID string, year int) (*domain.TaxProfile, error) {
	var profile domain.TaxProfile
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, year, net_income, dependant_income, claiming_for, created_at, updated_at
		FROM tax_profiles
		WHERE user_id = $1 AND year = $2
	`, userID, year).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Year,
		&profile.NetIncome,
		&profile.DependantIncome,
		&profile.ClaimingFor,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tax profile: %w", err)
	}

	return &profile, nil
}

// UpsertProfile creates or updates the profile keyed on (user, year)
func (r *PostgresTaxProfileRepository) UpsertProfile(ctx context.Context, profile *domain.TaxProfile) (*domain.TaxProfile, error) {
	err := r.db.QueryRow(ctx, `
		INSERT INTO tax_profiles (user_id, year, net_income, dependant_income, claiming_for)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, year) DO UPDATE
		SET net_income = EXCLUDED.net_income,
			dependant_income = EXCLUDED.dependant_income,
			claiming_for = EXCLUDED.claiming_for,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, profile.UserID, profile.Year, profile.NetIncome, profile.DependantIncome, profile.ClaimingFor).Scan(
		&profile.ID, &profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert tax profile: %w", err)
	}

	return profile, nil
}
