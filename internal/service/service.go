package service

import (
	"context"
	"errors"
	"iter"

	"github.com/Dan9191/task-service/internal/auth"
	"github.com/Dan9191/task-service/internal/metrics"
	"github.com/Dan9191/task-service/internal/models"
	"github.com/sirupsen/logrus"
)

// CredentialStore establishes and checks user identity
type CredentialStore interface {
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, username, password string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// VerifyPassword must do full-cost work and fail for an empty digest.
	VerifyPassword(password, digest string) bool
}

// TokenService mints and verifies identity tokens
type TokenService interface {
	Issue(id models.Identity) (string, error)
	Verify(token string) (models.Identity, bool)
}

// TaskStore persists tasks keyed by owner
type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
	FindTaskByID(ctx context.Context, id string) (*models.Task, error)
	FindTasksByOwner(ctx context.Context, ownerID string) iter.Seq2[models.Task, error]
	UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) (int64, error)
}

// Service handles business logic
type Service struct {
	users  CredentialStore
	tokens TokenService
	tasks  TaskStore
	log    *logrus.Logger

	// enforceOwnership requires the caller's token userId to match a task's owner.
	enforceOwnership bool
}

// NewService initializes a new service
func NewService(users CredentialStore, tokens TokenService, tasks TaskStore, log *logrus.Logger, enforceOwnership bool) *Service {
	return &Service{
		users:            users,
		tokens:           tokens,
		tasks:            tasks,
		log:              log,
		enforceOwnership: enforceOwnership,
	}
}

// Signup registers a user and returns a token for it
func (s *Service) Signup(ctx context.Context, username, password string) (string, error) {
	token, err := s.signup(ctx, username, password)
	metrics.AuthEvents.WithLabelValues("signup", outcome(err)).Inc()
	return token, err
}

func (s *Service) signup(ctx context.Context, username, password string) (string, error) {
	taken, err := s.users.IsUsernameTaken(ctx, username)
	if err != nil {
		return "", err
	}
	if taken {
		s.log.WithField("username", username).Warn("Username already exists")
		return "", models.ErrDuplicateUsername
	}

	user, err := s.users.Create(ctx, username, password)
	if errors.Is(err, models.ErrDuplicateUsername) {
		// Lost the race against a concurrent signup; the unique index caught it.
		s.log.WithField("username", username).Warn("Username already exists")
		return "", err
	}
	if err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return "", err
	}

	s.log.WithFields(logrus.Fields{"username": username, "user_id": user.ID}).Info("User registered")
	return token, nil
}

// Login authenticates a user and returns a token
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	token, err := s.login(ctx, username, password)
	metrics.AuthEvents.WithLabelValues("login", outcome(err)).Inc()
	return token, err
}

func (s *Service) login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, models.ErrNotFound) {
		s.users.VerifyPassword(password, "")
		s.log.WithField("username", username).Warn("Invalid credentials")
		return "", models.ErrBadCredentials
	}
	if err != nil {
		return "", err
	}
	if !s.users.VerifyPassword(password, user.PasswordHash) {
		s.log.WithField("username", username).Warn("Invalid credentials")
		return "", models.ErrBadCredentials
	}

	token, err := s.tokens.Issue(identityOf(user))
	if err != nil {
		return "", err
	}

	s.log.WithField("username", username).Info("User logged in")
	return token, nil
}

// VerifyToken delegates to the token service
func (s *Service) VerifyToken(token string) (models.Identity, bool) {
	id, ok := s.tokens.Verify(token)
	if ok {
		metrics.AuthEvents.WithLabelValues("verify", "ok").Inc()
		s.log.WithField("user_id", id.UserID).Debug("Token validated")
	} else {
		metrics.AuthEvents.WithLabelValues("verify", "invalid").Inc()
		s.log.Debug("Invalid token")
	}
	return id, ok
}

// CreateTask stores a new task for task.CreatedBy
func (s *Service) CreateTask(ctx context.Context, task models.Task) (*models.Task, error) {
	if err := s.authenticated(ctx); err != nil {
		return nil, s.taskResult("create", err)
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, task.CreatedBy); err != nil {
		return nil, s.taskResult("create", err)
	}
	if err := s.tasks.CreateTask(ctx, &task); err != nil {
		return nil, s.taskResult("create", err)
	}
	s.log.WithFields(logrus.Fields{"task_id": task.ID, "owner": task.CreatedBy}).Info("Task created")
	return &task, s.taskResult("create", nil)
}

// UpdateTask overwrites the supplied fields of task id
func (s *Service) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	if err := s.authenticated(ctx); err != nil {
		return nil, s.taskResult("update", err)
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if s.enforceOwnership {
		if err := s.authorizeTask(ctx, id); err != nil {
			return nil, s.taskResult("update", err)
		}
	}
	task, err := s.tasks.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, s.taskResult("update", err)
	}
	s.log.WithField("task_id", id).Info("Task updated")
	return task, s.taskResult("update", nil)
}

// DeleteTask removes task id; models.ErrNotFound when nothing matched
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if s.enforceOwnership {
		if err := s.authorizeTask(ctx, id); err != nil {
			return s.taskResult("delete", err)
		}
	}
	n, err := s.tasks.DeleteTask(ctx, id)
	if err != nil {
		return s.taskResult("delete", err)
	}
	if n == 0 {
		return s.taskResult("delete", models.ErrNotFound)
	}
	s.log.WithField("task_id", id).Info("Task deleted")
	return s.taskResult("delete", nil)
}

// ListTasksByOwner returns the owner's tasks as a lazy sequence
func (s *Service) ListTasksByOwner(ctx context.Context, ownerID string) (iter.Seq2[models.Task, error], error) {
	if err := s.authorize(ctx, ownerID); err != nil {
		return nil, s.taskResult("list", err)
	}
	s.taskResult("list", nil)
	return s.tasks.FindTasksByOwner(ctx, ownerID), nil
}

// CollectTasksByOwner drains ListTasksByOwner; never nil on success
func (s *Service) CollectTasksByOwner(ctx context.Context, ownerID string) ([]models.Task, error) {
	seq, err := s.ListTasksByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	tasks := []models.Task{}
	for task, err := range seq {
		if err != nil {
			s.log.WithError(err).WithField("owner", ownerID).Error("Task list failed")
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if len(tasks) == 0 {
		s.log.WithField("owner", ownerID).Warn("No tasks found for user")
	} else {
		s.log.WithField("owner", ownerID).Infof("Retrieved %d tasks", len(tasks))
	}
	return tasks, nil
}

// authorize checks the caller may act on ownerID's tasks
func (s *Service) authorize(ctx context.Context, ownerID string) error {
	if !s.enforceOwnership {
		return nil
	}
	caller, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return models.ErrAuthInvalid
	}
	if caller.UserID != ownerID {
		s.log.WithFields(logrus.Fields{"user_id": caller.UserID, "owner": ownerID}).Warn("Ownership check failed")
		return models.ErrForbidden
	}
	return nil
}

// authenticated fails fast for anonymous callers when ownership is enforced
func (s *Service) authenticated(ctx context.Context) error {
	if !s.enforceOwnership {
		return nil
	}
	if _, ok := auth.IdentityFromContext(ctx); !ok {
		return models.ErrAuthInvalid
	}
	return nil
}

func (s *Service) authorizeTask(ctx context.Context, id string) error {
	if err := s.authenticated(ctx); err != nil {
		return err
	}
	task, err := s.tasks.FindTaskByID(ctx, id)
	if err != nil {
		return err
	}
	return s.authorize(ctx, task.CreatedBy)
}

func (s *Service) taskResult(op string, err error) error {
	metrics.TaskOperations.WithLabelValues(op, outcome(err)).Inc()
	if errors.Is(err, models.ErrStoreUnavailable) {
		s.log.WithError(err).Errorf("Task %s failed", op)
	}
	return err
}

func identityOf(user *models.User) models.Identity {
	return models.Identity{UserID: user.ID, Username: user.Username}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrValidation):
		return "invalid"
	case errors.Is(err, models.ErrDuplicateUsername):
		return "duplicate"
	case errors.Is(err, models.ErrBadCredentials):
		return "bad_credentials"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrAuthInvalid):
		return "unauthenticated"
	case errors.Is(err, models.ErrForbidden):
		return "forbidden"
	}
	return metrics.Outcome(err)
}
