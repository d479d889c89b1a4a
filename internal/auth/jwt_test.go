package auth_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/santapan/api/internal/auth"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()
	role := "customer"

	token, err := auth.GenerateToken(secret, userID, role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	claims, err := auth.ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("validate token: %v", err)
	}

	if claims.UserID != userID {
		t.Errorf("user ID: got %v, want %v", claims.UserID, userID)
	}
	if claims.Role != role {
		t.Errorf("role: got %v, want %v", claims.Role, role)
	}
}

func TestValidateTokenWithWrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("secret-a", uuid.New(), "customer")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	_, err = auth.ValidateToken("secret-b", token)
	if err == nil {
		t.Fatal("expected error validating with wrong secret")
	}
}

func TestValidateTokenWithInvalidString(t *testing.T) {
	_, err := auth.ValidateToken("secret", "not-a-jwt")
	if err == nil {
		t.Fatal("expected error validating invalid token string")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := auth.GenerateRefreshToken("secret", userID)
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	got, err := auth.ValidateRefreshToken("secret", token)
	if err != nil {
		t.Fatalf("validate refresh token: %v", err)
	}
	if got != userID {
		t.Errorf("user ID: got %v, want %v", got, userID)
	}
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	userID := uuid.New()
	refresh, _ := auth.GenerateRefreshToken("secret", userID)
	access, _ := auth.GenerateToken("secret", userID, "admin")

	if _, err := auth.ValidateToken("secret", refresh); err == nil {
		t.Error("refresh token accepted as access token")
	}
	if _, err := auth.ValidateRefreshToken("secret", access); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !auth.CheckPassword(hash, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if auth.CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
