package services

import (
	"context"
	"errors"
	"testing"

	"sari_pos_backend/internal/models"
	"sari_pos_backend/pkg/utils"
)

func newAuthTestEnv() (*fakeStore, *fakeTokenStore, AuthService) {
	utils.InitJWT("test-secret-key")
	store := newFakeStore()
	tokens := newFakeTokenStore()
	svc := NewAuthService(&fakeAuthRepo{store: store}, tokens, &fakeTxManager{store: store})
	return store, tokens, svc
}

func TestRegisterAndLogin(t *testing.T) {
	_, _, svc := newAuthTestEnv()
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, RegisterUserRequest{
		Username: "maria",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	if user.Role != models.RoleCashier {
		t.Errorf("expected default role cashier, got %s", user.Role)
	}
	if user.PasswordHash == "correct-horse" {
		t.Error("password stored in plain text")
	}

	resp, err := svc.LoginUser(ctx, models.Credentials{Username: "maria", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("LoginUser failed: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected both tokens on login")
	}

	claims, err := utils.ValidateToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("access token does not validate: %v", err)
	}
	if claims.UserID != user.ID || claims.Username != "maria" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	_, _, svc := newAuthTestEnv()
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, RegisterUserRequest{Username: "maria", Password: "password-one"}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	_, err := svc.RegisterUser(ctx, RegisterUserRequest{Username: "maria", Password: "password-two"})
	if !errors.Is(err, ErrUsernameExists) {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, _, svc := newAuthTestEnv()
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, RegisterUserRequest{Username: "maria", Password: "correct-horse"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if _, err := svc.LoginUser(ctx, models.Credentials{Username: "maria", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := svc.LoginUser(ctx, models.Credentials{Username: "nobody", Password: "whatever"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRefreshAndLogout(t *testing.T) {
	_, _, svc := newAuthTestEnv()
	ctx := context.Background()

	if _, err := svc.RegisterUser(ctx, RegisterUserRequest{Username: "maria", Password: "correct-horse"}); err != nil {
		t.Fatalf("register failed: %v", err)
	}
	login, err := svc.LoginUser(ctx, models.Credentials{Username: "maria", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := svc.RefreshAccessToken(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshAccessToken failed: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("expected a fresh access token")
	}

	if err := svc.LogoutUser(ctx, login.RefreshToken); err != nil {
		t.Fatalf("LogoutUser failed: %v", err)
	}
	if _, err := svc.RefreshAccessToken(ctx, login.RefreshToken); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("expected ErrInvalidRefresh after logout, got %v", err)
	}
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	_, _, svc := newAuthTestEnv()
	if _, err := svc.RefreshAccessToken(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidRefresh) {
		t.Fatalf("expected ErrInvalidRefresh, got %v", err)
	}
}
