package repository

import (
	"context"
	"database/sql"
	"errors"

	"todo_api/internal/models"
)

type TodoRepository struct {
	conn
}

func NewTodoRepository(db *sql.DB, opts Options) *TodoRepository {
	return &TodoRepository{conn{db: db, opts: opts}}
}

var _ TodoRepo = (*TodoRepository)(nil)

const (
	todoColumns = `id, owner_id, text, completed, completed_at, created_at`

	insertTodoSQL = `INSERT INTO todos (id, owner_id, text, completed, completed_at, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	selectTodosByOwnerSQL = `SELECT ` + todoColumns + ` FROM todos WHERE owner_id = ? ORDER BY created_at ASC, id ASC`
	selectTodoSQL         = `SELECT ` + todoColumns + ` FROM todos WHERE id = ? AND owner_id = ?`

	deleteTodoSQL = `DELETE FROM todos WHERE id = ? AND owner_id = ? RETURNING ` + todoColumns

	updateTodoSQL = `UPDATE todos SET text = COALESCE(?, text), completed = ?, completed_at = ?
		WHERE id = ? AND owner_id = ? RETURNING ` + todoColumns

	deleteTodosByOwnerSQL = `DELETE FROM todos WHERE owner_id = ?`
)

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(s rowScanner) (models.Todo, error) {
	var (
		t    models.Todo
		done sql.NullTime
	)
	if err := s.Scan(&t.ID, &t.OwnerID, &t.Text, &t.Completed, &done, &t.CreatedAt); err != nil {
		return models.Todo{}, err
	}
	t.CompletedAt = timePtr(done)
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

// Create inserts a todo. A missing owner surfaces as ErrMissingParent.
func (r *TodoRepository) Create(ctx context.Context, t models.Todo) error {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, r.q(insertTodoSQL),
		t.ID,
		t.OwnerID,
		t.Text,
		t.Completed,
		nullTime(t.CompletedAt),
		t.CreatedAt.UTC(),
	)
	return r.fail(ctx, "insert todo", err)
}

// ListByOwner returns the owner's todos in creation order.
func (r *TodoRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Todo, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.q(selectTodosByOwnerSQL), ownerID)
	if err != nil {
		return nil, r.fail(ctx, "select todos", err)
	}
	defer rows.Close()

	out := make([]models.Todo, 0, 16)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, r.fail(ctx, "scan todo", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, "iterate todos", err)
	}
	return out, nil
}

// Get returns one todo of the owner, or (nil, nil).
func (r *TodoRepository) Get(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	return r.queryOne(ctx, "select todo", selectTodoSQL, id, ownerID)
}

// Delete removes one todo of the owner and returns it, or (nil, nil).
func (r *TodoRepository) Delete(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	return r.queryOne(ctx, "delete todo", deleteTodoSQL, id, ownerID)
}

// Update overwrites the completion state (and text when given) in one
// statement and returns the stored row, or (nil, nil).
func (r *TodoRepository) Update(ctx context.Context, ownerID, id string, p TodoUpdate) (*models.Todo, error) {
	var text sql.NullString
	if p.Text != nil {
		text = sql.NullString{String: *p.Text, Valid: true}
	}
	return r.queryOne(ctx, "update todo", updateTodoSQL,
		text,
		p.Completed,
		nullTime(p.CompletedAt),
		id,
		ownerID,
	)
}

// DeleteByOwner removes every todo of the owner.
func (r *TodoRepository) DeleteByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.q(deleteTodosByOwnerSQL), ownerID)
	if err != nil {
		return 0, r.fail(ctx, "delete owner todos", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, r.fail(ctx, "owner todos rows affected", err)
	}
	return n, nil
}

func (r *TodoRepository) queryOne(ctx context.Context, op, query string, args ...any) (*models.Todo, error) {
	ctx, cancel := r.bounded(ctx)
	defer cancel()

	t, err := scanTodo(r.db.QueryRowContext(ctx, r.q(query), args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, r.fail(ctx, op, err)
	}
	return &t, nil
}
