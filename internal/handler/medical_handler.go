package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
	"github.com/celiacapp/celiac-tracker-service/internal/model"
	"github.com/celiacapp/celiac-tracker-service/internal/service"
)

// MedicalHandler handles HTTP requests for medical expense operations
type MedicalHandler struct {
	medicalService service.MedicalExpenseService
}

// NewMedicalHandler creates a new medical expense handler
func NewMedicalHandler(medicalService service.MedicalExpenseService) *MedicalHandler {
	return &MedicalHandler{
		medicalService: medicalService,
	}
}

// CreateExpense handles the POST /medical-expenses endpoint
// @Summary Record a medical expense
// @Description Record a celiac-related medical expense (consultation, medication, test, supplement, other)
// @Tags medical-expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.MedicalExpenseRequest true "Expense data"
// @Success 201 {object} domain.MedicalExpense "Expense created"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/medical-expenses [post]
func (h *MedicalHandler) CreateExpense(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	var req model.MedicalExpenseRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	expense, err := req.ToDomain()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	created, err := h.medicalService.CreateExpense(c.Request.Context(), userID, expense)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondCreated(c, created)
}

// GetExpense handles the GET /medical-expenses/:id endpoint
// @Summary Get a medical expense
// @Tags medical-expenses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 200 {object} domain.MedicalExpense "Expense"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 404 {object} model.ErrorResponse "Not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/medical-expenses/{id} [get]
func (h *MedicalHandler) GetExpense(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	expenseID, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	expense, err := h.medicalService.GetExpense(c.Request.Context(), expenseID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, expense)
}

// ListExpenses handles the GET /medical-expenses endpoint
// @Summary List medical expenses
// @Description List the user's medical expenses, optionally filtered by category, year and month
// @Tags medical-expenses
// @Produce json
// @Security BearerAuth
// @Param category query string false "Filter by category"
// @Param year query int false "Filter by year"
// @Param month query int false "Filter by month (1-12, requires year)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param sortBy query string false "Sort column (date, amount, category, created_at)"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} domain.PaginatedMedicalExpenses "Expenses"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/medical-expenses [get]
func (h *MedicalHandler) ListExpenses(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	page, err := getQueryInt(c, "page", 1)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	limit, err := getQueryInt(c, "limit", 20)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := validatePagination(page, limit); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	filter := domain.MedicalExpenseFilter{
		UserID:    userID,
		Category:  c.Query("category"),
		Page:      page,
		Limit:     limit,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}

	if yearStr := c.Query("year"); yearStr != "" {
		year, err := getQueryInt(c, "year", 0)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		filter.Year = &year
	}
	if monthStr := c.Query("month"); monthStr != "" {
		month, err := getQueryInt(c, "month", 0)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		if month < 1 || month > 12 {
			respondBadRequest(c, "month must be between 1 and 12")
			return
		}
		filter.Month = &month
	}

	expenses, err := h.medicalService.ListExpenses(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, expenses)
}

// UpdateExpense handles the PUT /medical-expenses/:id endpoint
// @Summary Update a medical expense
// @Description Partially update a medical expense; absent fields are left unchanged
// @Tags medical-expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Param request body model.UpdateMedicalExpenseRequest true "Fields to change"
// @Success 200 {object} domain.MedicalExpense "Updated expense"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 404 {object} model.ErrorResponse "Not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/medical-expenses/{id} [put]
func (h *MedicalHandler) UpdateExpense(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	expenseID, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var req model.UpdateMedicalExpenseRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	patch, err := req.ToPatch()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	expense, err := h.medicalService.UpdateExpense(c.Request.Context(), expenseID, userID, patch)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, expense)
}

// DeleteExpense handles the DELETE /medical-expenses/:id endpoint
// @Summary Delete a medical expense
// @Tags medical-expenses
// @Security BearerAuth
// @Param id path string true "Expense ID"
// @Success 204 "Deleted"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 404 {object} model.ErrorResponse "Not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/medical-expenses/{id} [delete]
func (h *MedicalHandler) DeleteExpense(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	expenseID, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := h.medicalService.DeleteExpense(c.Request.Context(), expenseID, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	respondNoContent(c)
}

// ListCategories handles the GET /medical-expenses/categories/list endpoint
// @Summary List expense categories
// @Description List the fixed set of medical expense categories
// @Tags medical-expenses
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.CategoriesResponse "Categories"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Router /v1/medical-expenses/categories/list [get]
func (h *MedicalHandler) ListCategories(c *gin.Context) {
	respondOK(c, model.CategoriesResponse{Categories: h.medicalService.ListCategories()})
}

// GetStats handles the GET /medical-expenses/summary/stats endpoint
// @Summary Medical expense statistics
// @Description Per-category and per-month totals for a year
// @Tags medical-expenses
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year (defaults to current)"
// @Success 200 {object} service.MedicalExpenseStats "Statistics"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/medical-expenses/summary/stats [get]
func (h *MedicalHandler) GetStats(c *gin.Context) {
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

	stats, err := h.medicalService.GetStats(c.Request.Context(), userID, year)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, stats)
}
