package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"todo_api/internal/models"

	"github.com/google/uuid"
)

type EventRepository struct {
	conn
}

func NewEventRepository(db *sql.DB, opts Options) *EventRepository {
	return &EventRepository{conn{db: db, opts: opts}}
}

var _ EventRepo = (*EventRepository)(nil)

const (
	insertEventSQL = `INSERT INTO auth_events (id, user_id, occurred_at, type, message, meta) VALUES (?, ?, ?, ?, ?, ?)`
	selectEventSQL = `SELECT id, user_id, occurred_at, type, message, meta FROM auth_events`
)

// Append inserts a new event. If EventID or OccurredAt are empty, they’re set.
func (r *EventRepository) Append(ctx context.Context, e models.AuthEvent) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	} else {
		e.OccurredAt = e.OccurredAt.UTC()
	}

	// marshal metadata if present
	var meta sql.NullString
	if e.Metadata != nil {
		if b, err := json.Marshal(e.Metadata); err == nil {
			meta = sql.NullString{String: string(b), Valid: true}
		}
	}

	ctx, cancel := r.bounded(ctx)
	defer cancel()

	_, err := r.db.ExecContext(ctx, r.q(insertEventSQL),
		e.EventID,
		e.UserID,
		e.OccurredAt,
		strings.ToUpper(strings.TrimSpace(e.Type)),
		e.Description,
		meta,
	)
	return r.fail(ctx, "insert auth event", err)
}

// List returns the user's events filtered by [from, to] (inclusive) and/or type, ordered ASC.
func (r *EventRepository) List(ctx context.Context, userID string, from, to time.Time, typ string) ([]models.AuthEvent, error) {
	conds := []string{"user_id = ?"}
	args := []any{userID}

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if typ = strings.ToUpper(strings.TrimSpace(typ)); typ != "" {
		conds = append(conds, "type = ?")
		args = append(args, typ)
	}

	q := selectEventSQL + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY occurred_at ASC"

	ctx, cancel := r.bounded(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.q(q), args...)
	if err != nil {
		return nil, r.fail(ctx, "select auth events", err)
	}
	defer rows.Close()

	out := make([]models.AuthEvent, 0, 64)
	for rows.Next() {
		var ev models.AuthEvent
		var metaStr sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.UserID, &ev.OccurredAt, &ev.Type, &ev.Description, &metaStr); err != nil {
			return nil, r.fail(ctx, "scan auth event", err)
		}
		ev.OccurredAt = ev.OccurredAt.UTC()

		if metaStr.Valid && metaStr.String != "" {
			var v any
			if err := json.Unmarshal([]byte(metaStr.String), &v); err == nil {
				ev.Metadata = v
			} else {
				ev.Metadata = metaStr.String // keep raw if malformed
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail(ctx, "iterate auth events", err)
	}
	return out, nil
}
