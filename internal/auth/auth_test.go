package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bestsplit/bestsplit/internal/models"
	"github.com/bestsplit/bestsplit/internal/storage"
)

// memoryUserStorage backs authenticator tests without a database.
type memoryUserStorage struct {
	byEmail map[string]*models.User
}

func newMemoryUserStorage() *memoryUserStorage {
	return &memoryUserStorage{byEmail: make(map[string]*models.User)}
}

func (m *memoryUserStorage) CreateUser(_ context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	m.byEmail[user.Email] = user
	return nil
}

func (m *memoryUserStorage) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	a := NewPasswordAuthenticator(newMemoryUserStorage())
	ctx := context.Background()

	user, err := a.Register(ctx, "alice@example.com", "Alice", "correct horse battery")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.ID == "" {
		t.Error("expected a generated user ID")
	}
	if user.PasswordHash == "correct horse battery" {
		t.Error("password stored in plain text")
	}

	got, err := a.Authenticate(ctx, "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("authenticated as %q, want %q", got.ID, user.ID)
	}
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	a := NewPasswordAuthenticator(newMemoryUserStorage())
	if _, err := a.Register(context.Background(), "a@b.com", "A", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("error = %v, want ErrWeakPassword", err)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	a := NewPasswordAuthenticator(newMemoryUserStorage())
	ctx := context.Background()

	if _, err := a.Register(ctx, "alice@example.com", "Alice", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := a.Register(ctx, "alice@example.com", "Alice 2", "password456"); !errors.Is(err, ErrEmailExists) {
		t.Errorf("error = %v, want ErrEmailExists", err)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	a := NewPasswordAuthenticator(newMemoryUserStorage())
	ctx := context.Background()

	if _, err := a.Register(ctx, "alice@example.com", "Alice", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, err := a.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)
	user := &models.User{ID: "u1", Email: "alice@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "alice@example.com" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestJWTRejectsTampering(t *testing.T) {
	m := NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)
	other := NewJWTManager("a-completely-different-secret!!!", time.Hour)
	user := &models.User{ID: "u1", Email: "alice@example.com"}

	token, err := other.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong-key error = %v, want ErrInvalidToken", err)
	}

	if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token error = %v, want ErrInvalidToken", err)
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	m := NewJWTManager("test-secret-key-32-bytes-long!!!", -time.Minute)
	token, err := m.Generate(&models.User{ID: "u1"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if _, err := m.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token error = %v, want ErrInvalidToken", err)
	}
}
