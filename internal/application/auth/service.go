// Package auth 实现用户注册登录与令牌管理
package auth

import (
	"context"
	"net/mail"
	"strings"

	"go.opentelemetry.io/otel"

	"ai-gallery-api/internal/config"
	"ai-gallery-api/internal/domain/entity"
	"ai-gallery-api/internal/domain/repository"
	"ai-gallery-api/pkg/errors"
	"ai-gallery-api/pkg/logger"
	"ai-gallery-api/pkg/utils"
)

var tracer = otel.Tracer("auth-service")

// 注册参数约束
const (
	usernameMinLen = 3
	usernameMaxLen = 30
	passwordMinLen = 8
)

// Service 认证应用服务
type Service struct {
	userRepo   repository.UserRepository
	jwtManager *utils.JWTManager
	jwtCfg     config.JWTConfig
}

// NewService 创建认证服务
func NewService(cfg *config.Config, userRepo repository.UserRepository) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtManager: utils.NewJWTManager(cfg.Security.JWT.Secret, cfg.Security.JWT.Issuer),
		jwtCfg:     cfg.Security.JWT,
	}
}

// Register 注册新用户并签发令牌
func (s *Service) Register(ctx context.Context, username, email, password string) (*entity.User, *utils.TokenPair, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if len(username) < usernameMinLen || len(username) > usernameMaxLen {
		return nil, nil, errors.New(errors.CodeInvalidParam, "invalid parameter").
			WithDetail("username must be 3-30 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, errors.New(errors.CodeInvalidParam, "invalid parameter").
			WithDetail("invalid email address")
	}
	if len(password) < passwordMinLen {
		return nil, nil, errors.New(errors.CodeInvalidParam, "invalid parameter").
			WithDetail("password must be at least 8 characters")
	}

	taken, err := s.userRepo.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, nil, errors.NewDatabaseError(err)
	}
	if taken {
		return nil, nil, errors.New(errors.CodeConflict, "resource conflict").
			WithDetail("username already taken")
	}

	registered, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, nil, errors.NewDatabaseError(err)
	}
	if registered {
		return nil, nil, errors.New(errors.CodeConflict, "resource conflict").
			WithDetail("email already registered")
	}

	user := entity.NewUser(username, email)
	if err := user.SetPassword(password); err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInternalError, "failed to hash password")
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, errors.NewDatabaseError(err)
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.FromContext(ctx).Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, pair, nil
}

// Login 校验凭证并签发令牌
func (s *Service) Login(ctx context.Context, username, password string) (*entity.User, *utils.TokenPair, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, nil, errors.NewDatabaseError(err)
	}
	// 用户不存在与密码错误返回同一错误，避免枚举用户名
	if user == nil || !user.CheckPassword(password) {
		return nil, nil, errors.New(errors.CodeUnauthorized, "invalid username or password")
	}

	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}

	logger.FromContext(ctx).Info("user logged in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh 以刷新令牌换取新令牌对
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Refresh")
	defer span.End()

	claims, err := s.jwtManager.ParseToken(refreshToken)
	if err != nil {
		if err == utils.ErrExpiredToken {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrTokenInvalid
	}
	if claims.Type != "refresh" {
		return nil, errors.ErrTokenInvalid
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	if user == nil {
		return nil, errors.ErrUserNotFound
	}

	return s.issueTokens(user)
}

// Profile 获取当前用户信息
func (s *Service) Profile(ctx context.Context, userID string) (*entity.User, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Profile")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError(err)
	}
	if user == nil {
		return nil, errors.ErrUserNotFound
	}
	return user, nil
}

// VerifyAccess 校验访问令牌，供认证中间件使用
func (s *Service) VerifyAccess(token string) (*utils.Claims, error) {
	claims, err := s.jwtManager.ParseToken(token)
	if err != nil {
		if err == utils.ErrExpiredToken {
			return nil, errors.ErrTokenExpired
		}
		return nil, errors.ErrTokenInvalid
	}
	if claims.Type != "access" {
		return nil, errors.ErrTokenInvalid
	}
	return claims, nil
}

func (s *Service) issueTokens(user *entity.User) (*utils.TokenPair, error) {
	pair, err := s.jwtManager.GenerateTokenPair(
		user.ID,
		user.Username,
		s.jwtCfg.Expiration,
		s.jwtCfg.RefreshExpiration,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternalError, "failed to sign tokens")
	}
	return pair, nil
}
