package model

// ErrorResponse represents an error response
type ErrorResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CategoriesResponse lists the categories in use plus the fixed set the
// client can always offer
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
