package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"omgplace/internal/app/marketplace/entity"
	"omgplace/internal/app/marketplace/repository"
	"omgplace/internal/app/marketplace/util"
	"omgplace/pkg/metrics"

	"github.com/google/uuid"
)

// AuthService выдает учетные данные. Ядро маркетплейса этим не пользуется -
// оно доверяет роли из токена, - но кто-то должен токены выдавать.
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *util.JWTManager
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtManager *util.JWTManager) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// Register регистрирует нового пользователя
// Роль по умолчанию - buyer
func (s *AuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.User, error) {
	role := entity.Role(req.Role)
	if req.Role == "" {
		role = entity.RoleBuyer
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := util.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	metrics.UsersRegistered.Inc()
	return user, nil
}

// Login проверяет пароль и выдает access token
// Неактивный или отсутствующий пользователь неотличим от неверного пароля
func (s *AuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.AuthLogins.WithLabelValues("failed").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !util.CheckPassword(req.Password, user.PasswordHash) {
		metrics.AuthLogins.WithLabelValues("failed").Inc()
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	metrics.AuthLogins.WithLabelValues("success").Inc()
	return &entity.TokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.jwtManager.GetAccessTokenDuration().Seconds()),
	}, nil
}
