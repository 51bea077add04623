package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/celiacapp/celiac-tracker-service/internal/model"
	"github.com/celiacapp/celiac-tracker-service/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register creates a new user account
// @Summary Register a new user
// @Description Create an account with email, password and display name
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Registration data"
// @Success 201 {object} service.AuthResponse "Account created"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 409 {object} model.ErrorResponse "Email already registered"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	authResponse, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			respondConflict(c, "An account with this email already exists")
			return
		}
		handleServiceError(c, err)
		return
	}

	respondCreated(c, authResponse)
}

// Login authenticates a user
// @Summary Log in
// @Description Authenticate with email and password, returning JWT tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Credentials"
// @Success 200 {object} service.AuthResponse "Authentication successful"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 401 {object} model.ErrorResponse "Invalid credentials"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	authResponse, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondUnauthorized(c, "Invalid email or password")
			return
		}
		handleServiceError(c, err)
		return
	}

	respondOK(c, authResponse)
}

// RefreshToken generates a new access token from a refresh token
// @Summary Refresh access token
// @Description Generate a new access token using a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} service.TokenPair "New tokens"
// @Failure 400 {object} model.ErrorResponse "Invalid input"
// @Failure 401 {object} model.ErrorResponse "Invalid or expired refresh token"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req model.RefreshTokenRequest
	if err := bindJSON(c, &req); err != nil {
		respondBadRequest(c, ErrInvalidInput)
		return
	}

	tokens, err := h.authService.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			respondUnauthorized(c, "Invalid or expired refresh token")
			return
		}
		handleServiceError(c, err)
		return
	}

	respondOK(c, tokens)
}

// Me returns the authenticated user's profile
// @Summary Get current user
// @Description Return the profile of the authenticated user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.User "Current user"
// @Failure 401 {object} model.ErrorResponse "Unauthorized"
// @Failure 500 {object} model.ErrorResponse "Internal server error"
// @Router /v1/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		respondUnauthorized(c, "User not authenticated")
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	respondOK(c, user)
}
