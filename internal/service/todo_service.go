package service

import (
	"context"
	"strings"
	"time"

	"todo_api/internal/models"
	"todo_api/internal/repository"
)

type TodoService struct {
	todoRepo repository.TodoRepo
	now      func() time.Time
}

func NewTodoService(todoRepo repository.TodoRepo) *TodoService {
	return &TodoService{todoRepo: todoRepo, now: time.Now}
}

func normalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}

// Create stores a new open todo for ownerID.
func (s *TodoService) Create(ctx context.Context, ownerID, text string) (*models.Todo, error) {
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}

	t := models.Todo{
		ID:        newID(),
		OwnerID:   ownerID,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.todoRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TodoService) List(ctx context.Context, ownerID string) ([]models.Todo, error) {
	return s.todoRepo.ListByOwner(ctx, ownerID)
}

// Get returns ErrTodoNotFound for malformed ids and for todos of other owners.
func (s *TodoService) Get(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	if !validID(id) {
		return nil, ErrTodoNotFound
	}
	return found(s.todoRepo.Get(ctx, ownerID, id))
}

func (s *TodoService) Delete(ctx context.Context, ownerID, id string) (*models.Todo, error) {
	if !validID(id) {
		return nil, ErrTodoNotFound
	}
	return found(s.todoRepo.Delete(ctx, ownerID, id))
}

// Update applies p in a single statement. Completing stamps completed_at
// with the current time; anything else (including an absent flag) reopens
// the todo and clears the stamp.
func (s *TodoService) Update(ctx context.Context, ownerID, id string, p TodoPatch) (*models.Todo, error) {
	if !validID(id) {
		return nil, ErrTodoNotFound
	}

	var upd repository.TodoUpdate
	if p.Text != nil {
		text, err := normalizeText(*p.Text)
		if err != nil {
			return nil, err
		}
		upd.Text = &text
	}
	if p.Completed != nil && *p.Completed {
		now := s.now().UTC()
		upd.Completed = true
		upd.CompletedAt = &now
	}
	return found(s.todoRepo.Update(ctx, ownerID, id, upd))
}

func found(t *models.Todo, err error) (*models.Todo, error) {
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTodoNotFound
	}
	return t, nil
}
