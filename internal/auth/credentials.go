package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Dan9191/task-service/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the persistence the credential store needs
type UserRepository interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Credentials owns user identities and their bcrypt digests
type Credentials struct {
	repo UserRepository
	cost int

	dummyOnce sync.Once
	dummy     []byte
}

// NewCredentials initializes a credential store; cost <= 0 means bcrypt.DefaultCost
func NewCredentials(repo UserRepository, cost int) *Credentials {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &Credentials{repo: repo, cost: cost}
}

// IsUsernameTaken is an advisory pre-check; the unique index decides.
func (c *Credentials) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	return c.repo.UsernameExists(ctx, username)
}

// Create hashes the password and persists a new user
func (c *Credentials) Create(ctx context.Context, username, password string) (*models.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, models.Invalid("username", "is required")
	}
	if password == "" {
		return nil, models.Invalid("password", "is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), c.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, models.Invalid("password", "must be at most 72 bytes")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
	}
	if err := c.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// FindByUsername returns models.ErrNotFound on a miss
func (c *Credentials) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return c.repo.FindUserByUsername(ctx, username)
}

// VerifyPassword compares in constant time via bcrypt. An empty digest is
// checked against a throwaway digest of the same cost and always fails, so
// unknown usernames cost as much as wrong passwords.
func (c *Credentials) VerifyPassword(password, digest string) bool {
	if digest == "" {
		bcrypt.CompareHashAndPassword(c.dummyDigest(), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}

func (c *Credentials) dummyDigest() []byte {
	c.dummyOnce.Do(func() {
		c.dummy, _ = bcrypt.GenerateFromPassword([]byte(uuid.NewString()), c.cost)
	})
	return c.dummy
}
