package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/campusquest/campusquest-api/internal/pkg/jwt"
)

type repoStub struct {
	byEmail map[string]*User
	byID    map[uuid.UUID]*User
}

func newRepoStub() *repoStub {
	return &repoStub{
		byEmail: make(map[string]*User),
		byID:    make(map[uuid.UUID]*User),
	}
}

func (r *repoStub) Create(_ context.Context, u *User) error {
	if _, taken := r.byEmail[u.Email]; taken {
		return ErrEmailTaken
	}
	r.byEmail[u.Email] = u
	r.byID[u.ID] = u
	return nil
}

func (r *repoStub) GetByEmail(_ context.Context, email string) (*User, error) {
	return r.byEmail[email], nil
}

func (r *repoStub) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	return r.byID[id], nil
}

func newTestService() (*Service, *repoStub) {
	repo := newRepoStub()
	return NewService(repo, jwt.NewService("test-secret", 15*time.Minute)), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestService()

	u, token, err := svc.Register(context.Background(), "Alice@Uni.edu", "Alice", "correct horse", "student")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if u.Email != "alice@uni.edu" {
		t.Errorf("email = %q, want normalized %q", u.Email, "alice@uni.edu")
	}
	if token == "" {
		t.Error("Register() returned empty token")
	}
	if u.PasswordHash == "correct horse" {
		t.Error("password stored in plain text")
	}

	logged, token, err := svc.Login(context.Background(), "alice@uni.edu", "correct horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if logged.ID != u.ID || token == "" {
		t.Errorf("Login() = (%v, %q), want user %v and a token", logged.ID, token, u.ID)
	}

	if _, _, err := svc.Login(context.Background(), "alice@uni.edu", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), "nobody@uni.edu", "x"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown email) error = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService()

	if _, _, err := svc.Register(context.Background(), "alice@uni.edu", "Alice", "password1", "student"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	if _, _, err := svc.Register(context.Background(), "alice@uni.edu", "Other", "password2", "student"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("second Register() error = %v, want ErrEmailTaken", err)
	}
}
