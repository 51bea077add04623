package model

import (
	"github.com/celiacapp/celiac-tracker-service/internal/domain"
)

// TaxProfileRequest represents a per-year tax profile save. Saves are
// upserts on (user, year).
type TaxProfileRequest struct {
	Year            int      `json:"year" binding:"required"`
	NetIncome       *float64 `json:"netIncome"`
	DependantIncome *float64 `json:"dependantIncome"`
	ClaimingFor     string   `json:"claimingFor"`
}

// ToDomain converts the request to a domain TaxProfile
func (r *TaxProfileRequest) ToDomain() *domain.TaxProfile {
	return &domain.TaxProfile{
		Year:            r.Year,
		NetIncome:       r.NetIncome,
		DependantIncome: r.DependantIncome,
		ClaimingFor:     domain.ClaimingParty(r.ClaimingFor),
	}
}
