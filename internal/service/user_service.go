package service

import (
	"context"
	"errors"
	"strings"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/auth"
	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

// UserService manages user accounts.
type UserService struct {
	store      *store.Store
	bcryptCost int
	logger     *zap.Logger
}

func NewUserService(store *store.Store, bcryptCost int) *UserService {
	return &UserService{
		store:      store,
		bcryptCost: bcryptCost,
		logger:     util.GetLogger(),
	}
}

// CreateUserRequest is the account creation payload.
type CreateUserRequest struct {
	FirstName   string  `json:"first_name" binding:"required,min=2,max=50"`
	LastName    string  `json:"last_name" binding:"required,min=2,max=50"`
	Email       string  `json:"email" binding:"required,email"`
	PhoneNumber *string `json:"phone_number,omitempty" binding:"omitempty,max=32"`
	Password    string  `json:"password" binding:"required,min=6"`
	Role        string  `json:"role" binding:"required,oneof=customer vendor admin delivery_agent"`
}

// UpdateUserRequest holds the fields a partial update may change.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name,omitempty" binding:"omitempty,min=2,max=50"`
	LastName  *string `json:"last_name,omitempty" binding:"omitempty,min=2,max=50"`
	Email     *string `json:"email,omitempty" binding:"omitempty,email"`
}

// ListUsers returns one page of users matching search.
func (s *UserService) ListUsers(ctx context.Context, search string, page, size int) (store.Page, error) {
	ctx, span := util.StartSpan(ctx, "UserService.ListUsers")
	defer span.End()

	p := store.NewPagination(page, size)
	users, total, err := s.store.ListUsers(ctx, strings.TrimSpace(search), p)
	if err != nil {
		return store.Page{}, util.RecordError(span, internal(err))
	}
	return p.NewPage(users, total), nil
}

// GetUser returns a user by id.
func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.GetUser")
	defer span.End()

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "User not found")
	}
	return user, nil
}

// CreateUser creates an account with a hashed password.
func (s *UserService) CreateUser(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.CreateUser")
	defer span.End()

	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, util.RecordError(span, internal(err))
	}

	user := &models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.BadRequest("User already exists")
		}
		return nil, util.RecordError(span, internal(err))
	}

	s.logger.Info("User created", zap.Int64("user_id", user.ID))
	return user, nil
}

// UpdateUser applies a partial update.
func (s *UserService) UpdateUser(ctx context.Context, id int64, req *UpdateUserRequest) (*models.User, error) {
	ctx, span := util.StartSpan(ctx, "UserService.UpdateUser")
	defer span.End()

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.store.UpdateUser(ctx, id, store.UserPatch{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.BadRequest("Email already in use")
		}
		return nil, notFoundOr(err, "User not found")
	}
	return user, nil
}

// DeleteUser removes a user.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	ctx, span := util.StartSpan(ctx, "UserService.DeleteUser")
	defer span.End()

	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, store.ErrInvalidReference) {
			return apperr.BadRequest("User still has orders or a vendor profile")
		}
		return notFoundOr(err, "User not found")
	}

	s.logger.Info("User deleted", zap.Int64("user_id", id))
	return nil
}
