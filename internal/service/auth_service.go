package service

import (
	"context"
	"errors"
	"strings"

	"marketplace-service/internal/apperr"
	"marketplace-service/internal/auth"
	"marketplace-service/internal/broker"
	"marketplace-service/internal/models"
	"marketplace-service/internal/store"
	"marketplace-service/internal/util"

	"go.uber.org/zap"
)

const invalidCredentials = "Invalid credentials"

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	store      *store.Store
	tokens     *auth.TokenManager
	publisher  Publisher
	bcryptCost int
	logger     *zap.Logger
}

func NewAuthService(store *store.Store, tokens *auth.TokenManager, publisher Publisher, bcryptCost int) *AuthService {
	return &AuthService{
		store:      store,
		tokens:     tokens,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     util.GetLogger(),
	}
}

// RegisterRequest is the self-registration payload.
type RegisterRequest struct {
	FirstName   string  `json:"first_name" binding:"required,max=100"`
	LastName    string  `json:"last_name" binding:"required,max=100"`
	Email       string  `json:"email" binding:"required,email"`
	PhoneNumber *string `json:"phone_number,omitempty" binding:"omitempty,max=32"`
	Password    string  `json:"password" binding:"required,min=6"`
	Role        string  `json:"role" binding:"required,oneof=customer vendor admin delivery_agent"`
}

// LoginRequest carries credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserSummary is the identity returned alongside a token.
type UserSummary struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    UserSummary `json:"user"`
}

// Register creates an account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Register")
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

	token, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, util.RecordError(span, internal(err))
	}

	util.UsersRegisteredTotal.Inc()
	s.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("role", user.Role))

	event := &models.UserRegisteredEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeUserRegistered),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
	}
	if err := s.publisher.PublishUserRegistered(ctx, event); err != nil {
		s.logger.Error("Failed to publish UserRegistered event", zap.Error(err))
	}

	return &AuthResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    UserSummary{ID: user.ID, Email: user.Email, Role: user.Role},
	}, nil
}

// Login verifies credentials. Unknown email and wrong password are indistinguishable
// to the caller.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	req.Email = strings.TrimSpace(req.Email)
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			util.LoginFailuresTotal.Inc()
			return nil, apperr.Unauthenticated(invalidCredentials)
		}
		return nil, util.RecordError(span, internal(err))
	}

	ok, err := auth.CheckPassword(user.PasswordHash, req.Password)
	if err != nil {
		s.logger.Warn("Stored password hash is unreadable", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	if !ok {
		util.LoginFailuresTotal.Inc()
		return nil, apperr.Unauthenticated(invalidCredentials)
	}

	token, err := s.tokens.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, util.RecordError(span, internal(err))
	}

	return &AuthResponse{
		Message: "Login successful",
		Token:   token,
		User:    UserSummary{ID: user.ID, Email: user.Email, Role: user.Role},
	}, nil
}
