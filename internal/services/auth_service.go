package services

import (
	"context"
	"errors"
	"fmt"

	"sari_pos_backend/internal/models"
	"sari_pos_backend/internal/repositories"
	"sari_pos_backend/internal/sessions"
	"sari_pos_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors ---
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameExists     = errors.New("username already exists")
	ErrUserInactive       = errors.New("user account is deactivated")
	ErrInvalidRole        = errors.New("invalid role")
	ErrTokenGeneration    = errors.New("failed to generate token")
	ErrInvalidRefresh     = errors.New("invalid or revoked refresh token")
)

// --- DTOs ---

type RegisterUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
	Role     string `json:"role"` // defaults to cashier
}

type AuthResponse struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
}

// --- AuthService Interface ---

type AuthService interface {
	RegisterUser(ctx context.Context, req RegisterUserRequest) (*models.User, error)
	LoginUser(ctx context.Context, req models.Credentials) (*AuthResponse, error)
	RefreshAccessToken(ctx context.Context, refreshToken string) (*AuthResponse, error)
	LogoutUser(ctx context.Context, refreshToken string) error
	GetUserProfile(userID int64) (*models.User, error)
}

type authService struct {
	authRepo repositories.AuthRepository
	tokens   sessions.TokenStore
	tx       repositories.TxManager
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(ar repositories.AuthRepository, tokens sessions.TokenStore, tx repositories.TxManager) AuthService {
	return &authService{authRepo: ar, tokens: tokens, tx: tx}
}

// RegisterUser handles the business logic for user registration.
func (s *authService) RegisterUser(ctx context.Context, req RegisterUserRequest) (*models.User, error) {
	role := req.Role
	if role == "" {
		role = models.RoleCashier
	}
	if role != models.RoleAdmin && role != models.RoleCashier {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hashedPasswordBytes),
		FullName:     utils.NewNullString(req.FullName),
		Role:         role,
		IsActive:     true,
	}

	tx, err := s.tx.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.authRepo.CreateUser(tx, &user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrUsernameExists, req.Username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user creation: %w", err)
	}
	return &user, nil
}

// LoginUser verifies credentials and issues an access/refresh token pair.
// The refresh token is recorded in the session store so logout can revoke it.
func (s *authService) LoginUser(ctx context.Context, req models.Credentials) (*AuthResponse, error) {
	user, err := s.authRepo.GetUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	if err := s.tokens.Save(ctx, refreshToken, user.ID, utils.RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshAccessToken validates a refresh token against both its signature and
// the session store, then issues a fresh access token.
func (s *authService) RefreshAccessToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := utils.ValidateToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	storedUserID, err := s.tokens.Lookup(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sessions.ErrTokenNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}
	if storedUserID != claims.UserID {
		return nil, ErrInvalidRefresh
	}

	user, err := s.authRepo.GetUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return &AuthResponse{User: user, AccessToken: accessToken}, nil
}

// LogoutUser revokes the refresh token. Access tokens simply age out.
func (s *authService) LogoutUser(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, refreshToken)
}

func (s *authService) GetUserProfile(userID int64) (*models.User, error) {
	user, err := s.authRepo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}
	return user, nil
}
