package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/celiacapp/celiac-tracker-service/internal/model"
	"github.com/celiacapp/celiac-tracker-service/internal/service"
)

// TaxHandler handles HTTP requests for tax calculation operations
type TaxHandler struct {
	taxService service.TaxService
}

// NewTaxHandler creates a new tax handler
func NewTaxHandler(taxService service.TaxService) *TaxHandler {
	return &TaxHandler{
		taxService: taxService,
	}
}

// GetSummary handles the GET /tax/summary endpoint
// @Summary Tax year summary
// @Description Totals, counts and a monthly breakdown of claimable amounts for a year. Threshold fields are only present when an income is on file.
// @Tags tax
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year (defaults to current)"
// @Success 200 {object} domain.TaxSummary "Summary"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/tax/summary [get]
func (h *TaxHandler) GetSummary(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	year, err := getQueryYear(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	summary, err := h.taxService.GetTaxSummary(c.Request.Context(), userID, year)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, summary)
}

// GetDeductionEstimate handles the GET /tax/deduction-estimate endpoint
// @Summary Deduction estimate
// @Description Full threshold breakdown for a year. The income query parameter overrides the saved profile; with neither, responds 422 so the client can prompt for income.
// @Tags tax
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year (defaults to current)"
// @Param income query number false "Net income override"
// @Success 200 {object} domain.DeductionEstimate "Estimate"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 422 {object} model.ErrorResponse "Income unknown"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/tax/deduction-estimate [get]
func (h *TaxHandler) GetDeductionEstimate(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	year, err := getQueryYear(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	income, err := getQueryFloat(c, "income")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	estimate, err := h.taxService.GetDeductionEstimate(c.Request.Context(), userID, year, income)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, estimate)
}

// GetProfile handles the GET /tax/profile/:year endpoint
// @Summary Get a tax profile
// @Description Return the saved income profile for a year
// @Tags tax
// @Produce json
// @Security BearerAuth
// @Param year path int true "Year"
// @Success 200 {object} domain.TaxProfile "Profile"
// @Failure 400 {object} model.ErrorResponse "Invalid year"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 404 {object} model.ErrorResponse "No profile for this year"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/tax/profile/{year} [get]
func (h *TaxHandler) GetProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	yearStr, err := getPathParam(c, "year")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil {
		respondBadRequest(c, "year must be an integer")
		return
	}

	profile, err := h.taxService.GetProfile(c.Request.Context(), userID, year)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, profile)
}

// SaveProfile handles the PUT /tax/profile endpoint
// @Summary Save a tax profile
// @Description Create or replace the income profile for a year. One profile per (user, year).
// @Tags tax
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.TaxProfileRequest true "Profile data"
// @Success 200 {object} domain.TaxProfile "Saved profile"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/tax/profile [put]
func (h *TaxHandler) SaveProfile(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	var req model.TaxProfileRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	profile, err := h.taxService.SaveProfile(c.Request.Context(), userID, req.ToDomain())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, profile)
}
