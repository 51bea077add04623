package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/celiacapp/celiac-tracker-service/internal/domain"
	"github.com/celiacapp/celiac-tracker-service/internal/repository"
)

// Common errors
var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles authentication operations
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*AuthResponse, error)
	Login(ctx context.Context, email, password string) (*AuthResponse, error)

	GenerateTokens(user *domain.User) (*TokenPair, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error)

	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
}

// AuthResponse contains authentication response data
type AuthResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"` // seconds
}

// TokenPair contains access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds
}

// Claims represents JWT claims
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// authService implements AuthService
type authService struct {
	userRepo             repository.UserRepository
	jwtSecret            []byte
	jwtAccessExpiration  time.Duration
	jwtRefreshExpiration time.Duration
}

// AuthServiceConfig holds configuration for auth service
type AuthServiceConfig struct {
	UserRepo             repository.UserRepository
	JWTSecret            string
	JWTAccessExpiration  time.Duration
	JWTRefreshExpiration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(config AuthServiceConfig) AuthService {
	return &authService{
		userRepo:             config.UserRepo,
		jwtSecret:            []byte(config.JWTSecret),
		jwtAccessExpiration:  config.JWTAccessExpiration,
		jwtRefreshExpiration: config.JWTRefreshExpiration,
	}
}

// Register creates a new user with a hashed password and returns tokens
func (s *authService) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, domain.NewValidationError("email", "must be a valid email address")
	}
	if len(password) < 8 {
		return nil, domain.NewValidationError("password", "must be at least 8 characters")
	}

	// Check if user already exists
	if _, err := s.userRepo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hash),
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

// Login verifies credentials and returns tokens
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *domain.User) (*AuthResponse, error) {
	tokens, err := s.GenerateTokens(user)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		User:         user,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}, nil
}

// GenerateTokens creates an access/refresh token pair for a user
func (s *authService) GenerateTokens(user *domain.User) (*TokenPair, error) {
	now := time.Now()

	accessClaims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtAccessExpiration)),
		},
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshClaims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtRefreshExpiration)),
		},
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwtAccessExpiration.Seconds()),
	}, nil
}

// ValidateAccessToken parses and validates a JWT, returning its claims
func (s *authService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RefreshAccessToken validates a refresh token and issues a new token pair
func (s *authService) RefreshAccessToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.ValidateAccessToken(refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return s.GenerateTokens(user)
}

// GetUserByID retrieves a user by ID
func (s *authService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}
