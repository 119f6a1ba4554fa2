package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"todo_api/internal/models"
)

type UserRepository struct {
	conn
}

func NewUserRepository(db *sql.DB, opts Options) *UserRepository {
	return &UserRepository{conn{db: db, opts: opts}}
}

// Ensure implementation of UserRepo interface at compile time.
var _ UserRepo = (*UserRepository)(nil)

const (
	insertUserSQL        = `INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`
	selectUserByEmailSQL = `SELECT id, email, password_hash, created_at FROM users WHERE email = ?`
	selectUserByIDSQL    = `SELECT id, email, password_hash, created_at FROM users WHERE id = ?`
	deleteUserSQL        = `DELETE FROM users WHERE id = ?`

	insertTokenSQL = `INSERT INTO user_tokens (token, user_id, purpose, issued_at, expires_at) VALUES (?, ?, ?, ?, ?)`

	selectUserByTokenSQL = `SELECT u.id, u.email, u.password_hash, u.created_at
		FROM users u JOIN user_tokens t ON t.user_id = u.id
		WHERE u.id = ? AND t.token = ? AND t.purpose = ?`

	deleteTokenSQL        = `DELETE FROM user_tokens WHERE user_id = ? AND token = ?`
	selectTokensSQL       = `SELECT token, user_id, purpose, issued_at, expires_at FROM user_tokens WHERE user_id = ? ORDER BY issued_at ASC, token ASC`
	deleteExpiredTokenSQL = `DELETE FROM user_tokens WHERE expires_at IS NOT NULL AND expires_at <= ?`
)

// Create inserts a new user. A taken email surfaces as ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u models.User) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, r.q(insertUserSQL), u.ID, u.Email, u.PasswordHash, u.CreatedAt.UTC())
	return r.fail(ctx, "insert user", err)
}

// GetByEmail fetches a user by email. Returns (nil, nil) if not found.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.selectOne(ctx, "select user by email", selectUserByEmailSQL, email)
}

// GetByID fetches a user by id. Returns (nil, nil) if not found.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.selectOne(ctx, "select user by id", selectUserByIDSQL, id)
}

// FindByToken returns the user only if it still owns token for purpose.
// Returns (nil, nil) when the user is gone or the token was revoked.
func (r *UserRepository) FindByToken(ctx context.Context, userID, token, purpose string) (*models.User, error) {
	return r.selectOne(ctx, "select user by token", selectUserByTokenSQL, userID, token, purpose)
}

func (r *UserRepository) selectOne(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	var u models.User
	err := r.db.QueryRowContext(ctx, r.q(query), args...).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, r.fail(ctx, op, err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

// Delete removes the user row; its tokens go with it (ON DELETE CASCADE).
// Reports whether a row was removed.
func (r *UserRepository) Delete(ctx context.Context, id string) (bool, error) {
	return r.execAffected(ctx, "delete user", deleteUserSQL, id)
}

// AddToken appends a token to the user's active list.
// A missing user surfaces as ErrMissingParent.
func (r *UserRepository) AddToken(ctx context.Context, s models.Session) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, r.q(insertTokenSQL),
		s.Token,
		s.UserID,
		s.Purpose,
		s.IssuedAt.UTC(),
		nullTime(s.ExpiresAt),
	)
	return r.fail(ctx, "insert token", err)
}

// RevokeToken removes one token. Removing an absent token is not an error.
func (r *UserRepository) RevokeToken(ctx context.Context, userID, token string) (bool, error) {
	return r.execAffected(ctx, "delete token", deleteTokenSQL, userID, token)
}

// ListTokens returns the user's active tokens in issue order.
func (r *UserRepository) ListTokens(ctx context.Context, userID string) ([]models.Session, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.q(selectTokensSQL), userID)
	if err != nil {
		return nil, r.fail(ctx, "select tokens", err)
	}
	defer rows.Close()

	out := make([]models.Session, 0, 4)
	for rows.Next() {
		var (
			s   models.Session
			exp sql.NullTime
		)
		if err := rows.Scan(&s.Token, &s.UserID, &s.Purpose, &s.IssuedAt, &exp); err != nil {
			return nil, r.fail(ctx, "scan token", err)
		}
		s.IssuedAt = s.IssuedAt.UTC()
		s.ExpiresAt = timePtr(exp)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, "iterate tokens", err)
	}
	return out, nil
}

// DeleteExpiredTokens removes every token that expired at or before now.
func (r *UserRepository) DeleteExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.q(deleteExpiredTokenSQL), now.UTC())
	if err != nil {
		return 0, r.fail(ctx, "delete expired tokens", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, r.fail(ctx, "expired tokens rows affected", err)
	}
	return n, nil
}

func (r *UserRepository) execAffected(ctx context.Context, op, query string, args ...any) (bool, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.q(query), args...)
	if err != nil {
		return false, r.fail(ctx, op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, r.fail(ctx, op+" rows affected", err)
	}
	return n > 0, nil
}
