package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "student@campus.edu", "student")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	claims, err := svc.ValidateAccessToken(token)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id %s, got %s", userID, claims.UserID)
	}
	if claims.Email != "student@campus.edu" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.Role != "student" {
		t.Fatalf("unexpected role %q", claims.Role)
	}
}

func TestValidateExpired(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)

	token, err := svc.GenerateAccessToken(uuid.New(), "student@campus.edu", "student")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if _, err := svc.ValidateAccessToken(token); err != ErrExpiredToken {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := NewService("secret-a", time.Hour).GenerateAccessToken(uuid.New(), "x@campus.edu", "student")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if _, err := NewService("secret-b", time.Hour).ValidateAccessToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
