package auth

import (
	"context"
	"testing"
	"time"

	"ai-gallery-api/internal/config"
	"ai-gallery-api/internal/domain/entity"
	"ai-gallery-api/internal/domain/repository"
	apperrors "ai-gallery-api/pkg/errors"
)

type memUserRepo struct {
	repository.UserRepository
	byID       map[string]*entity.User
	byUsername map[string]*entity.User
	byEmail    map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byID:       map[string]*entity.User{},
		byUsername: map[string]*entity.User{},
		byEmail:    map[string]*entity.User{},
	}
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	user.ID = "user-" + user.Username
	r.byID[user.ID] = user
	r.byUsername[user.Username] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return r.byID[id], nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	return r.byUsername[username], nil
}

func (r *memUserRepo) ExistsByUsername(_ context.Context, username string) (bool, error) {
	_, ok := r.byUsername[username]
	return ok, nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

func newTestService(repo repository.UserRepository) *Service {
	cfg := &config.Config{}
	cfg.Security.JWT = config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "ai-gallery-api",
		Expiration:        time.Hour,
		RefreshExpiration: 24 * time.Hour,
	}
	return NewService(cfg, repo)
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(repo)

	user, pair, err := svc.Register(context.Background(), "alice", "Alice@Example.com", "password123")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Email = %q, want lowercased", user.Email)
	}
	if user.PasswordHash == "" || user.PasswordHash == "password123" {
		t.Error("password must be stored hashed")
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("token pair must be issued on register")
	}

	_, loginPair, err := svc.Login(context.Background(), "alice", "password123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	claims, err := svc.VerifyAccess(loginPair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccess returned error: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "alice" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"username too short", "ab", "a@b.com", "password123"},
		{"bad email", "alice", "not-an-email", "password123"},
		{"password too short", "alice", "a@b.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMemUserRepo())
			_, _, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)
			appErr, ok := err.(*apperrors.AppError)
			if !ok || appErr.Code != apperrors.CodeInvalidParam {
				t.Fatalf("err = %v, want invalid param", err)
			}
		})
	}
}

func TestRegisterConflicts(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(repo)

	if _, _, err := svc.Register(context.Background(), "alice", "a@b.com", "password123"); err != nil {
		t.Fatalf("seed register failed: %v", err)
	}

	_, _, err := svc.Register(context.Background(), "alice", "other@b.com", "password123")
	appErr, ok := err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("duplicate username: err = %v, want conflict", err)
	}

	_, _, err = svc.Register(context.Background(), "bob", "a@b.com", "password123")
	appErr, ok = err.(*apperrors.AppError)
	if !ok || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("duplicate email: err = %v, want conflict", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(repo)
	if _, _, err := svc.Register(context.Background(), "alice", "a@b.com", "password123"); err != nil {
		t.Fatalf("seed register failed: %v", err)
	}

	for _, tc := range []struct{ username, password string }{
		{"alice", "wrong-password"},
		{"nobody", "password123"},
	} {
		_, _, err := svc.Login(context.Background(), tc.username, tc.password)
		appErr, ok := err.(*apperrors.AppError)
		if !ok || appErr.Code != apperrors.CodeUnauthorized {
			t.Errorf("Login(%q): err = %v, want unauthorized", tc.username, err)
		}
	}
}

func TestRefresh(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(repo)
	_, pair, err := svc.Register(context.Background(), "alice", "a@b.com", "password123")
	if err != nil {
		t.Fatalf("seed register failed: %v", err)
	}

	newPair, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if _, err := svc.VerifyAccess(newPair.AccessToken); err != nil {
		t.Errorf("refreshed access token invalid: %v", err)
	}

	// 访问令牌不能用于刷新
	if _, err := svc.Refresh(context.Background(), pair.AccessToken); err == nil {
		t.Error("Refresh must reject an access token")
	}

	if _, err := svc.Refresh(context.Background(), "garbage"); err == nil {
		t.Error("Refresh must reject a malformed token")
	}
}

func TestVerifyAccessRejectsRefreshToken(t *testing.T) {
	repo := newMemUserRepo()
	svc := newTestService(repo)
	_, pair, err := svc.Register(context.Background(), "alice", "a@b.com", "password123")
	if err != nil {
		t.Fatalf("seed register failed: %v", err)
	}

	if _, err := svc.VerifyAccess(pair.RefreshToken); err == nil {
		t.Error("VerifyAccess must reject a refresh token")
	}
}
