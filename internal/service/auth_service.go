package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/auth"
	"storefront/internal/cache"
	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

// MinPasswordLength is the shortest password accepted on profile updates.
const MinPasswordLength = 6

// RegisterInput carries the sign-up form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Address  model.Address
	Answer   string
}

// ProfileInput carries a profile update. Empty fields keep their stored value.
type ProfileInput struct {
	Name     string
	Password string
	Phone    string
	Address  *model.Address
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password string) (token string, user *model.User, err error)
	ForgotPassword(ctx context.Context, email, answer, newPassword string) error
	UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*model.User, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	cache      *cache.Client
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface, cache *cache.Client, logger *zap.Logger) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		cache:      cache,
		logger:     logger,
	}
}

func validateRegistration(in RegisterInput) error {
	checks := []struct {
		missing bool
		message string
	}{
		{strings.TrimSpace(in.Name) == "", "Name is Required"},
		{strings.TrimSpace(in.Email) == "", "Email is Required"},
		{in.Password == "", "Password is Required"},
		{strings.TrimSpace(in.Phone) == "", "Phone no is Required"},
		{in.Address.IsZero(), "Address is Required"},
		{strings.TrimSpace(in.Answer) == "", "Answer is Required"},
	}
	for _, c := range checks {
		if c.missing {
			field := strings.SplitN(c.message, " ", 2)[0]
			return apperrors.NewValidationError(strings.ToLower(field), c.message, http.StatusBadRequest)
		}
	}
	return nil
}

// Register creates a new customer account with hashed credentials.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}
	email := normalizeEmail(in.Email)

	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if err != nil && !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	passwordHash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	answerHash, err := auth.HashAnswer(in.Answer)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Phone:        strings.TrimSpace(in.Phone),
		Address:      in.Address,
		AnswerHash:   answerHash,
		Role:         model.RoleCustomer,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and issues a sign-in token.
func (s *authService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, apperrors.ErrInvalidCredentials
	}
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return "", nil, apperrors.ErrEmailNotRegistered
		}
		return "", nil, fmt.Errorf("find user: %w", err)
	}
	if !auth.ComparePassword(password, user.PasswordHash) {
		return "", nil, apperrors.ErrInvalidPassword
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// ForgotPassword resets the password when the security answer matches.
func (s *authService) ForgotPassword(ctx context.Context, email, answer, newPassword string) error {
	switch {
	case strings.TrimSpace(email) == "":
		return apperrors.NewValidationError("email", "Email is required", http.StatusBadRequest)
	case strings.TrimSpace(answer) == "":
		return apperrors.NewValidationError("answer", "answer is required", http.StatusBadRequest)
	case newPassword == "":
		return apperrors.NewValidationError("newPassword", "New Password is required", http.StatusBadRequest)
	}

	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return apperrors.ErrWrongAnswer
		}
		return fmt.Errorf("find user: %w", err)
	}
	if !auth.VerifyAnswer(answer, user.AnswerHash) {
		return apperrors.ErrWrongAnswer
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hashed
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// UpdateProfile applies the non-empty fields of in to the user.
func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileInput) (*model.User, error) {
	if in.Password != "" && len(in.Password) < MinPasswordLength {
		return nil, apperrors.NewValidationError("password",
			"Password is required and 6 character long", http.StatusBadRequest)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		user.Name = name
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		user.Phone = phone
	}
	if in.Address != nil && !in.Address.IsZero() {
		user.Address = *in.Address
	}
	if in.Password != "" {
		hashed, err := auth.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hashed
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	_ = s.cache.Delete(ctx, userCacheKey(user.ID))
	return user, nil
}

// Logout revokes the presented token until it would have expired.
func (s *authService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperrors.ErrUnauthorized
	}
	if err := s.tokenStore.Revoke(ctx, claims.ID, s.jwtService.RemainingTTL(claims)); err != nil {
		s.logger.Warn("revoke token", zap.String("jti", claims.ID), zap.Error(err))
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
