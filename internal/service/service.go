package service

import (
	"context"
	"time"

	"todo_api/internal/logger"
	"todo_api/internal/metrics"
	"todo_api/internal/models"
	"todo_api/internal/repository"
	"todo_api/internal/security/token"
)

// Users covers registration, sessions and account lifecycle.
type Users interface {
	Register(ctx context.Context, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	FindByToken(ctx context.Context, raw string) (*models.User, error)
	Logout(ctx context.Context, u *models.User, raw string) error
	DeleteAccount(ctx context.Context, u *models.User) error
	Sessions(ctx context.Context, u *models.User, current string) ([]SessionInfo, error)
}

// Todos exposes owner-scoped todo operations.
type Todos interface {
	Create(ctx context.Context, ownerID, text string) (*models.Todo, error)
	List(ctx context.Context, ownerID string) ([]models.Todo, error)
	Get(ctx context.Context, ownerID, id string) (*models.Todo, error)
	Delete(ctx context.Context, ownerID, id string) (*models.Todo, error)
	Update(ctx context.Context, ownerID, id string, p TodoPatch) (*models.Todo, error)
}

// EventLog exposes the per-account audit trail with filtering access.
type EventLog interface {
	List(ctx context.Context, userID string, f LogFilter) ([]models.AuthEvent, error)
}

// Health reports whether the store answers.
type Health interface {
	Check(ctx context.Context) error
}

// Sweeper runs the background loop that drops expired tokens.
// Stop via context cancellation in main() for graceful shutdown.
type Sweeper interface {
	Run(ctx context.Context, interval time.Duration)
}

// CredentialHasher is satisfied by *hasher.Bcrypt.
type CredentialHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
}

// TokenCodec is satisfied by *token.Codec.
type TokenCodec interface {
	Issue(userID, purpose string) (string, error)
	Verify(raw string) (token.Claims, error)
}

// Deps are the collaborators shared by the services.
type Deps struct {
	Hasher            CredentialHasher
	Tokens            TokenCodec
	Logger            *logger.Logger
	Metrics           *metrics.Metrics
	MinPasswordLength int
}

// Service aggregates all sub-services.
type Service struct {
	Users    Users
	Todos    Todos
	EventLog EventLog
	Health   Health
	Sweeper  Sweeper
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	return &Service{
		Users:    NewUserService(repos.Users, repos.Todos, repos.Events, deps),
		Todos:    NewTodoService(repos.Todos),
		EventLog: NewEventLogService(repos.Events),
		Health:   NewHealthService(repos.Health),
		Sweeper:  NewTokenSweeper(repos.Users, deps.Logger, deps.Metrics),
	}
}
