package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
	"github.com/celiacapp/celiac-tracker-service/internal/model"
	"github.com/celiacapp/celiac-tracker-service/internal/service"
)

// ProductHandler handles HTTP requests for product-related operations
type ProductHandler struct {
	productService service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// CreateProduct handles the POST /products endpoint
// @Summary Create a product
// @Description Add a private product to the user's list
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.CreateProductRequest true "Product data"
// @Success 201 {object} domain.Product "Product created"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	var req model.CreateProductRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), userID, req.ToDomain())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondCreated(c, product)
}

// GetProduct handles the GET /products/:id endpoint
// @Summary Get a product
// @Description Return a product the user owns, or one from the public catalog
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} domain.Product "Product"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 404 {object} model.ErrorResponse "Not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	productID, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), productID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, product)
}

// ListProducts handles the GET /products endpoint
// @Summary List products
// @Description List the user's products merged with the public catalog
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param category query string false "Filter by category"
// @Param search query string false "Search in name and brand"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param sortBy query string false "Sort column (name, category, price, created_at)"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} model.ProductListResponse "Products"
// @Failure 400 {object} model.ErrorResponse "Invalid query parameters"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
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

	filter := domain.ProductFilter{
		UserID:    userID,
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		Page:      page,
		Limit:     limit,
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}

	products, total, err := h.productService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, model.NewProductListResponse(products, total, page, limit))
}

// UpdateProduct handles the PUT /products/:id endpoint
// @Summary Update a product
// @Description Update a product the user owns. Editing a catalog product creates a private copy with the changes applied.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body model.UpdateProductRequest true "Fields to change"
// @Success 200 {object} domain.Product "Updated product"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 404 {object} model.ErrorResponse "Not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	productID, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	var req model.UpdateProductRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), productID, userID, req.ToPatch())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, product)
}

// DeleteProduct handles the DELETE /products/:id endpoint
// @Summary Delete a product
// @Description Delete a product the user owns. Catalog products cannot be deleted.
// @Tags products
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 204 "Deleted"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 404 {object} model.ErrorResponse "Not found"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/products/{id} [delete]
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	productID, err := getPathParam(c, "id")
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), productID, userID); err != nil {
		handleServiceError(c, err)
		return
	}

	respondNoContent(c)
}

// ListCategories handles the GET /products/categories/list endpoint
// @Summary List product categories
// @Description List the distinct categories across the user's products and the catalog
// @Tags products
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.CategoriesResponse "Categories"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/products/categories/list [get]
func (h *ProductHandler) ListCategories(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	categories, err := h.productService.ListCategories(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, model.CategoriesResponse{Categories: categories})
}
