package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"neuron_backoffice/internal/apperrors"
	"neuron_backoffice/internal/auth"
	"neuron_backoffice/internal/repository"

	"go.uber.org/zap"
)

type LoginInput struct {
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required"`
	TurnstileToken string `json:"turnstileToken"`
}

type LoginResult struct {
	AccessToken string `json:"accessToken"`
}

// CaptchaVerifier checks a human-verification token. Nil disables the check.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

type AuthService interface {
	Login(ctx context.Context, input LoginInput, remoteIP string) (*LoginResult, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	captcha  CaptchaVerifier
	logger   *zap.Logger
	verify   func(hash, password string) error
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, captcha CaptchaVerifier, logger *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		captcha:  captcha,
		logger:   logger,
		verify:   auth.VerifyPassword,
	}
}

// Login answers every credential failure with the same ErrUnauthorized so
// callers cannot tell unknown, inactive and wrong-password accounts apart.
func (s *authService) Login(ctx context.Context, input LoginInput, remoteIP string) (*LoginResult, error) {
	if s.captcha != nil {
		if err := s.captcha.Verify(ctx, input.TurnstileToken, remoteIP); err != nil {
			s.logger.Info("captcha rejected", zap.Error(err))
			return nil, apperrors.ErrUnauthorized
		}
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	// Unknown and inactive accounts still pay one bcrypt compare.
	hash := auth.DummyHash()
	if user != nil {
		hash = user.Password
	}
	if err := s.verify(hash, input.Password); err != nil || user == nil || !user.IsActive {
		return nil, apperrors.ErrUnauthorized
	}

	roleName := ""
	var permissions []string
	if user.Role != nil {
		roleName = user.Role.Name
		permissions = user.Role.PermissionKeys()
	}

	token, err := s.tokens.Issue(user.ID, user.Email, roleName, permissions)
	if err != nil {
		return nil, fmt.Errorf("issue token for %s: %w", user.ID, err)
	}
	s.logger.Info("user logged in", zap.String("user_id", user.ID.String()))
	return &LoginResult{AccessToken: token}, nil
}
