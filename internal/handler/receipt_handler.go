package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
	"github.com/celiacapp/celiac-tracker-service/internal/model"
	"github.com/celiacapp/celiac-tracker-service/internal/service"
)

// maxImageSize caps receipt image uploads at 10 MB
const maxImageSize = 10 << 20

// ReceiptHandler handles HTTP requests for receipt-related operations
type ReceiptHandler struct {
	receiptService service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService: receiptService,
	}
}

// CreateReceipt handles the POST /receipts endpoint
// @Summary Create a receipt
// @Description Record a store receipt. With items present, totals are recomputed server-side from the item list and any caller-supplied totals are ignored.
// @Tags receipts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ReceiptRequest true "Receipt data"
// @Success 201 {object} domain.Receipt "Receipt created"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts [post]
func (h *ReceiptHandler) CreateReceipt(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	var req model.ReceiptRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	receipt, err := h.receiptService.CreateReceipt(c.Request.Context(), userID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondCreated(c, receipt)
}

// GetReceipt handles the GET /receipts/:id endpoint
// @Summary Get a receipt
// @Description Return one of the user's receipts with its items
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Success 200 {object} domain.Receipt "Receipt"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 404 {object} model.ErrorResponse "Not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/{id} [get]
func (h *ReceiptHandler) GetReceipt(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	receiptID, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), receiptID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, receipt)
}

// ListReceipts handles the GET /receipts endpoint
// @Summary List receipts
// @Description List the user's receipts, optionally filtered by date range and store
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Param startDate query string false "Start date (YYYY-MM-DD)"
// @Param endDate query string false "End date (YYYY-MM-DD)"
// @Param store query string false "Filter by store name"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} domain.PaginatedReceipts "Receipts"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts [get]
func (h *ReceiptHandler) ListReceipts(c *gin.Context) {
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

	filter := domain.ReceiptFilter{
		UserID:    userID,
		StoreName: c.Query("store"),
		Page:      page,
		Limit:     limit,
	}

	if startDate, err := parseDate(c.Query("startDate")); err != nil {
		respondBadRequest(c, err.Error())
		return
	} else if !startDate.IsZero() {
		filter.StartDate = &startDate
	}

	if endDate, err := parseDate(c.Query("endDate")); err != nil {
		respondBadRequest(c, err.Error())
		return
	} else if !endDate.IsZero() {
		filter.EndDate = &endDate
	}

	receipts, err := h.receiptService.ListReceipts(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, receipts)
}

// UpdateReceipt handles the PUT /receipts/:id endpoint
// @Summary Update a receipt
// @Description Replace a receipt's fields and item list. The old items are replaced atomically and totals recomputed.
// @Tags receipts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Param request body model.ReceiptRequest true "Receipt data"
// @Success 200 {object} domain.Receipt "Updated receipt"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 404 {object} model.ErrorResponse "Not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/{id} [put]
func (h *ReceiptHandler) UpdateReceipt(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	receiptID, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var req model.ReceiptRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	input, err := req.ToInput()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	receipt, err := h.receiptService.UpdateReceipt(c.Request.Context(), receiptID, userID, input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, receipt)
}

// DeleteReceipt handles the DELETE /receipts/:id endpoint
// @Summary Delete a receipt
// @Description Delete a receipt and its items
// @Tags receipts
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Success 204 "Deleted"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 404 {object} model.ErrorResponse "Not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/{id} [delete]
func (h *ReceiptHandler) DeleteReceipt(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	receiptID, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := h.receiptService.DeleteReceipt(c.Request.Context(), receiptID, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	respondNoContent(c)
}

// RecalculateTotals handles the POST /receipts/recalculate endpoint
// @Summary Recalculate totals for an item list
// @Description Derive {totalAmount, eligibleAmount} from an item list without persisting anything. Used by clients for live preview while editing.
// @Tags receipts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.RecalculateRequest true "Item list"
// @Success 200 {object} model.RecalculateResponse "Derived totals"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Router /v1/receipts/recalculate [post]
func (h *ReceiptHandler) RecalculateTotals(c *gin.Context) {
	if _, ok := getUserID(c); !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	var req model.RecalculateRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	totals, err := h.receiptService.RecalculateTotals(req.ToItems())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, model.RecalculateResponse{
		TotalAmount:    totals.TotalAmount,
		EligibleAmount: totals.EligibleAmount,
	})
}

// UploadImage handles the POST /receipts/:id/image endpoint
// @Summary Upload a receipt image
// @Description Attach a photo of the receipt. The image is stored in S3-compatible storage and its public URL recorded on the receipt.
// @Tags receipts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Receipt ID"
// @Param image formData file true "Receipt image file"
// @Success 200 {object} domain.Receipt "Receipt with image reference"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 404 {object} model.ErrorResponse "Not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/{id}/image [post]
func (h *ReceiptHandler) UploadImage(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	receiptID, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	file, header, err := getFormFile(c, "image")
	if err != nil {
		respondBadRequest(c, err.Error(), newErrorDetail("image", "Receipt image is required"))
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		respondBadRequest(c, "Image exceeds the 10 MB limit")
		return
	}

	fileBytes, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		logError(c, "failed_to_read_image", err, map[string]interface{}{
			"receipt_id": receiptID,
		})
		respondInternalServerError(c, ErrFileUpload)
		return
	}

	receipt, err := h.receiptService.UploadImage(
		c.Request.Context(), receiptID, userID,
		fileBytes, header.Filename, header.Header.Get("Content-Type"),
	)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, receipt)
}

// GetMonthlyStats handles the GET /receipts/stats/monthly endpoint
// @Summary Monthly receipt statistics
// @Description Per-month receipt counts and totals for a year, with empty months zero-filled
// @Tags receipts
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year (defaults to current)"
// @Success 200 {array} repository.MonthlyReceiptStat "Monthly statistics"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/receipts/stats/monthly [get]
func (h *ReceiptHandler) GetMonthlyStats(c *gin.Context) {
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

	stats, err := h.receiptService.GetMonthlyStats(c.Request.Context(), userID, year)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, stats)
}
