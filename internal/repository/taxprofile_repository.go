package repository

import (
	"context"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// TaxProfileRepository defines the interface for tax profile data operations.
// Profiles are unique per (user, year); saves are upserts on that key.
type TaxProfileRepository interface {
	GetProfile(ctx context.Context, userID string, year int) (*domain.TaxProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.TaxProfile) (*domain.TaxProfile, error)
}
