package repository

import (
	"context"
	"database/sql"
	"time"

	"todo_api/internal/models"
)

type UserRepo interface {
	Create(ctx context.Context, u models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Delete(ctx context.Context, id string) (bool, error)

	AddToken(ctx context.Context, s models.Session) error
	FindByToken(ctx context.Context, userID, token, purpose string) (*models.User, error)
	RevokeToken(ctx context.Context, userID, token string) (bool, error)
	ListTokens(ctx context.Context, userID string) ([]models.Session, error)
	TokenPurger
}

// TokenPurger removes tokens whose expiry has passed.
type TokenPurger interface {
	DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type TodoRepo interface {
	Create(ctx context.Context, t models.Todo) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error)
	Get(ctx context.Context, ownerID, id string) (*models.Todo, error)
	Delete(ctx context.Context, ownerID, id string) (*models.Todo, error)
	Update(ctx context.Context, ownerID, id string, p TodoUpdate) (*models.Todo, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

// TodoUpdate is the full set of column values written by TodoRepo.Update.
// A nil Text leaves the stored text unchanged.
type TodoUpdate struct {
	Text        *string
	Completed   bool
	CompletedAt *time.Time
}

type EventRepo interface {
	Append(ctx context.Context, e models.AuthEvent) error
	List(ctx context.Context, userID string, from, to time.Time, typ string) ([]models.AuthEvent, error)
}

type HealthRepo interface {
	Ping(ctx context.Context) error
}

// Options tune every repository built on one *sql.DB.
type Options struct {
	Dialect      Dialect
	QueryTimeout time.Duration // 0 disables the per-call deadline
}

type Repository struct {
	Users  UserRepo
	Todos  TodoRepo
	Events EventRepo
	Health HealthRepo
}

func NewRepository(db *sql.DB, opts Options) *Repository {
	return &Repository{
		Users:  NewUserRepository(db, opts),
		Todos:  NewTodoRepository(db, opts),
		Events: NewEventRepository(db, opts),
		Health: NewHealthRepository(db, opts),
	}
}

// conn carries what every repository needs to issue a bounded query.
type conn struct {
	db   *sql.DB
	opts Options
}

func (c conn) q(query string) string { return c.opts.Dialect.Rebind(query) }

func (c conn) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.opts.QueryTimeout)
}

// HealthSQL pings the database within the query timeout.
type HealthSQL struct {
	conn
}

func NewHealthRepository(db *sql.DB, opts Options) *HealthSQL {
	return &HealthSQL{conn{db: db, opts: opts}}
}

func (r *HealthSQL) Ping(ctx context.Context) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()
	return r.fail(ctx, "ping database", r.db.PingContext(ctx))
}

// nullTime converts an optional time into a value both drivers accept.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
