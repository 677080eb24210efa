package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"radiator-erp/internal/apperr"
	"radiator-erp/internal/models"
	"radiator-erp/internal/repository"
)

// AuthService issues and backs the bearer tokens the middleware validates.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error)
}

type authService struct {
	users  repository.UserRepository
	secret []byte
	expiry time.Duration
	logger *zap.Logger
}

func NewAuthService(users repository.UserRepository, secret string, expiryHours int, logger *zap.Logger) AuthService {
	return &authService{
		users:  users,
		secret: []byte(secret),
		expiry: time.Duration(expiryHours) * time.Hour,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	logger := s.logger.With(zap.String("operation", "register"), zap.String("email", email))

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("failed to check email", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := &models.User{Name: req.Name, Email: email, PasswordHash: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}

	logger.Info("✅ user registered", zap.Int("user_id", user.ID))
	return &models.AuthResult{Token: token, User: *user}, nil
}

func (s *authService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	logger := s.logger.With(zap.String("operation", "login"), zap.String("email", email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Internal("failed to load user", err)
	}
	// Same message for unknown email and wrong password.
	if user == nil {
		return nil, apperr.Validation("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		logger.Warn("login rejected")
		return nil, apperr.Validation("invalid email or password")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}

	logger.Info("✅ user logged in", zap.Int("user_id", user.ID))
	return &models.AuthResult{Token: token, User: *user}, nil
}

func (s *authService) issueToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"name":    user.Name,
		"iat":     now.Unix(),
		"exp":     now.Add(s.expiry).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
