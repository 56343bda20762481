package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mimos-de-madera/backoffice-service/internal/apperrors"
	"github.com/mimos-de-madera/backoffice-service/internal/auth"
	"github.com/mimos-de-madera/backoffice-service/internal/logging"
	"github.com/mimos-de-madera/backoffice-service/internal/models"
	"github.com/mimos-de-madera/backoffice-service/internal/repository"
)

// UserService handles dashboard accounts and authentication.
type UserService struct {
	userRepo repository.UserRepository
	auth     *auth.Manager
	logger   *logging.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, authManager *auth.Manager) *UserService {
	return &UserService{
		userRepo: userRepo,
		auth:     authManager,
		logger:   logging.NewLogger("user-service"),
	}
}

// Login verifies credentials and issues a bearer token. Wrong username and
// wrong password are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if !user.Active {
		return nil, apperrors.ErrUnauthorized
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn("Failed login attempt", logging.Fields{"username": req.Username})
		return nil, apperrors.ErrUnauthorized
	}

	token, expiresAt, err := s.auth.BuildJWT(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", logging.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// CreateUser registers a new dashboard account.
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if err := ValidateCreateUserRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil {
		return nil, apperrors.NewValidationError("username", "username is already taken")
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		IsAdmin:      req.IsAdmin,
		Active:       true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User created", logging.Fields{
		"user_id":  user.ID,
		"username": user.Username,
		"is_admin": user.IsAdmin,
	})
	return user, nil
}

// GetUser retrieves an account by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers retrieves all accounts.
func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

// UpdateUser applies field updates to an account.
func (s *UserService) UpdateUser(ctx context.Context, id string, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		if err := validateEmail(*req.Email, "email"); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return nil, apperrors.NewValidationError("password", "password must be at least 8 characters")
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes an account. The acting user cannot delete themselves.
func (s *UserService) DeleteUser(ctx context.Context, id, actingUserID string) error {
	if id == actingUserID {
		return apperrors.NewValidationError("id", "cannot delete your own account")
	}
	return s.userRepo.Delete(ctx, id)
}

// ToggleAdmin flips the admin flag on an account. The acting user cannot
// demote themselves.
func (s *UserService) ToggleAdmin(ctx context.Context, id, actingUserID string) (*models.User, error) {
	if id == actingUserID {
		return nil, apperrors.NewValidationError("id", "cannot change your own admin status")
	}

	user, err := s.userRepo.ToggleAdmin(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Admin flag toggled", logging.Fields{
		"user_id":  user.ID,
		"is_admin": user.IsAdmin,
	})
	return user, nil
}
