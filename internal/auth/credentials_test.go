package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Dan9191/task-service/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type memoryUsers struct {
	users     map[string]*models.User
	createErr error
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]*models.User{}}
}

func (m *memoryUsers) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, ok := m.users[username]
	return ok, nil
}

func (m *memoryUsers) CreateUser(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[user.Username]; ok {
		return models.ErrDuplicateUsername
	}
	copied := *user
	m.users[user.Username] = &copied
	return nil
}

func (m *memoryUsers) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func TestCredentialsCreateHashesPassword(t *testing.T) {
	repo := newMemoryUsers()
	creds := NewCredentials(repo, bcrypt.MinCost)

	user, err := creds.Create(context.Background(), "alice", "p1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected id to be assigned")
	}
	stored := repo.users["alice"]
	if stored.PasswordHash == "p1" || !strings.HasPrefix(stored.PasswordHash, "$2") {
		t.Fatalf("expected bcrypt digest, got %q", stored.PasswordHash)
	}
	if !creds.VerifyPassword("p1", stored.PasswordHash) {
		t.Fatalf("expected correct password to verify")
	}
	if creds.VerifyPassword("wrong", stored.PasswordHash) {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestCredentialsCreateDuplicate(t *testing.T) {
	creds := NewCredentials(newMemoryUsers(), bcrypt.MinCost)
	ctx := context.Background()
	if _, err := creds.Create(ctx, "alice", "p1"); err != nil {
		t.Fatalf("create: %v", err)
	}
	taken, err := creds.IsUsernameTaken(ctx, "alice")
	if err != nil || !taken {
		t.Fatalf("expected alice to be taken, got %v %v", taken, err)
	}
	if taken, _ := creds.IsUsernameTaken(ctx, "Alice"); taken {
		t.Fatalf("usernames are case-sensitive")
	}
	if _, err := creds.Create(ctx, "alice", "p2"); !errors.Is(err, models.ErrDuplicateUsername) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestCredentialsCreateValidation(t *testing.T) {
	creds := NewCredentials(newMemoryUsers(), bcrypt.MinCost)
	ctx := context.Background()
	if _, err := creds.Create(ctx, "", "p1"); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error for empty username, got %v", err)
	}
	if _, err := creds.Create(ctx, "alice", ""); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error for empty password, got %v", err)
	}
	if _, err := creds.Create(ctx, "alice", strings.Repeat("x", 73)); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error for long password, got %v", err)
	}
}

func TestCredentialsCreateStoreFailure(t *testing.T) {
	repo := newMemoryUsers()
	repo.createErr = models.ErrStoreUnavailable
	creds := NewCredentials(repo, bcrypt.MinCost)
	if _, err := creds.Create(context.Background(), "alice", "p1"); !errors.Is(err, models.ErrStoreUnavailable) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestCredentialsFindByUsername(t *testing.T) {
	creds := NewCredentials(newMemoryUsers(), bcrypt.MinCost)
	if _, err := creds.FindByUsername(context.Background(), "nobody"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestVerifyPasswordEmptyDigestDoesFullWork(t *testing.T) {
	creds := NewCredentials(newMemoryUsers(), bcrypt.MinCost)
	if creds.VerifyPassword("", "") || creds.VerifyPassword("p1", "") {
		t.Fatalf("an empty digest must never verify")
	}
	cost, err := bcrypt.Cost(creds.dummyDigest())
	if err != nil || cost != bcrypt.MinCost {
		t.Fatalf("expected a throwaway digest at the configured cost, got %d %v", cost, err)
	}
}
