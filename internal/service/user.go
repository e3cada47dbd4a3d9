package service

import (
	"context"
	"strings"

	"github.com/guildhall/arena/internal/model"
)

const (
	defaultUserListLimit = 100
	maxUserListLimit     = 100
)

// UserService handles guild member management
type UserService struct {
	userRepo     UserRepository
	tokenService *TokenService
}

// UserServiceConfig holds configuration for the user service
type UserServiceConfig struct {
	UserRepo     UserRepository
	TokenService *TokenService
}

// NewUserService creates a new user service
func NewUserService(cfg UserServiceConfig) *UserService {
	return &UserService{
		userRepo:     cfg.UserRepo,
		tokenService: cfg.TokenService,
	}
}

// List retrieves guild members with skip/limit paging
func (s *UserService) List(ctx context.Context, skip, limit int) ([]*model.User, int, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultUserListLimit
	}
	if limit > maxUserListLimit {
		limit = maxUserListLimit
	}

	users, err := s.userRepo.List(ctx, skip, limit)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// GetByID retrieves a single guild member
func (s *UserService) GetByID(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateUserRequest holds the mutable fields of a user. Nil fields are
// left unchanged.
type UpdateUserRequest struct {
	Email    *string
	FullName *string
	Password *string
	Role     *string
	Active   *bool
}

// Update modifies a guild member. Members may update themselves; only
// admins may update others or change the role and active flags.
func (s *UserService) Update(ctx context.Context, actor *model.TokenClaims, userID string, req UpdateUserRequest) (*model.User, error) {
	if actor.UserID != userID && actor.Role != string(model.UserRoleAdmin) {
		return nil, ErrNotAuthorized
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	// Validate and hash the new password up front so a rejected request
	// leaves no partial update behind
	var passwordHash string
	if req.Password != nil {
		if err := validatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = hash
	}

	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if !isValidEmail(email) {
			return nil, ErrInvalidEmail
		}
		if email != user.Email {
			existing, err := s.userRepo.GetByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if existing != nil && existing.ID != user.ID {
				return nil, ErrEmailAlreadyExists
			}
			user.Email = email
		}
	}

	if req.FullName != nil {
		user.FullName = stringPtr(strings.TrimSpace(*req.FullName))
	}

	if req.Role != nil {
		if actor.Role != string(model.UserRoleAdmin) {
			return nil, ErrNotAuthorized
		}
		role := model.UserRole(*req.Role)
		if role != model.UserRoleMember && role != model.UserRoleAdmin {
			return nil, ErrInvalidRole
		}
		user.Role = role
	}

	if req.Active != nil {
		if actor.Role != string(model.UserRoleAdmin) {
			return nil, ErrNotAuthorized
		}
		user.Active = *req.Active
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	if req.Password != nil {
		if err := s.userRepo.UpdatePassword(ctx, user.ID, passwordHash); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// Delete removes a guild member and their mission progress. Admin only.
func (s *UserService) Delete(ctx context.Context, actor *model.TokenClaims, userID string) error {
	if actor.Role != string(model.UserRoleAdmin) {
		return ErrNotAuthorized
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	// Revoke sessions before the record disappears
	if s.tokenService != nil {
		_ = s.tokenService.RevokeAllUserTokens(ctx, userID)
	}

	return s.userRepo.Delete(ctx, userID)
}
