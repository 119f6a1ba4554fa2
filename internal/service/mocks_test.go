package service

import (
	"context"
	"time"

	"todo_api/internal/models"
	"todo_api/internal/repository"
)

// mockUserRepo is a lightweight in-test mock for repository.UserRepo.
// Unset funcs behave like an empty store.
type mockUserRepo struct {
	CreateFn      func(u models.User) error
	GetByEmailFn  func(email string) (*models.User, error)
	DeleteFn      func(id string) (bool, error)
	AddTokenFn    func(s models.Session) error
	FindByTokenFn func(userID, token, purpose string) (*models.User, error)
	RevokeTokenFn func(userID, token string) (bool, error)
	ListTokensFn  func(userID string) ([]models.Session, error)
	PurgeFn       func(now time.Time) (int64, error)

	created []models.User
	tokens  []models.Session
	calls   []string
}

var _ repository.UserRepo = (*mockUserRepo)(nil)

func (m *mockUserRepo) Create(_ context.Context, u models.User) error {
	m.calls = append(m.calls, "Create")
	m.created = append(m.created, u)
	if m.CreateFn == nil {
		return nil
	}
	return m.CreateFn(u)
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.calls = append(m.calls, "GetByEmail")
	if m.GetByEmailFn == nil {
		return nil, nil
	}
	return m.GetByEmailFn(email)
}

func (m *mockUserRepo) GetByID(context.Context, string) (*models.User, error) {
	m.calls = append(m.calls, "GetByID")
	return nil, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) (bool, error) {
	m.calls = append(m.calls, "Delete")
	if m.DeleteFn == nil {
		return true, nil
	}
	return m.DeleteFn(id)
}

func (m *mockUserRepo) AddToken(_ context.Context, s models.Session) error {
	m.calls = append(m.calls, "AddToken")
	m.tokens = append(m.tokens, s)
	if m.AddTokenFn == nil {
		return nil
	}
	return m.AddTokenFn(s)
}

func (m *mockUserRepo) FindByToken(_ context.Context, userID, token, purpose string) (*models.User, error) {
	m.calls = append(m.calls, "FindByToken")
	if m.FindByTokenFn == nil {
		return nil, nil
	}
	return m.FindByTokenFn(userID, token, purpose)
}

func (m *mockUserRepo) RevokeToken(_ context.Context, userID, token string) (bool, error) {
	m.calls = append(m.calls, "RevokeToken")
	if m.RevokeTokenFn == nil {
		return false, nil
	}
	return m.RevokeTokenFn(userID, token)
}

func (m *mockUserRepo) ListTokens(_ context.Context, userID string) ([]models.Session, error) {
	m.calls = append(m.calls, "ListTokens")
	if m.ListTokensFn == nil {
		return nil, nil
	}
	return m.ListTokensFn(userID)
}

func (m *mockUserRepo) DeleteExpiredTokens(_ context.Context, now time.Time) (int64, error) {
	m.calls = append(m.calls, "DeleteExpiredTokens")
	if m.PurgeFn == nil {
		return 0, nil
	}
	return m.PurgeFn(now)
}

// fakeTodoRepo records calls and returns canned values.
type fakeTodoRepo struct {
	todo    *models.Todo
	todos   []models.Todo
	err     error
	removed int64

	created   []models.Todo
	gotOwner  string
	gotID     string
	gotUpdate repository.TodoUpdate
	calls     []string
	order     *[]string // shared with a mockUserRepo-style log when set
}

var _ repository.TodoRepo = (*fakeTodoRepo)(nil)

func (f *fakeTodoRepo) record(name, owner, id string) {
	f.calls = append(f.calls, name)
	f.gotOwner, f.gotID = owner, id
	if f.order != nil {
		*f.order = append(*f.order, "todos."+name)
	}
}

func (f *fakeTodoRepo) Create(_ context.Context, t models.Todo) error {
	f.record("Create", t.OwnerID, t.ID)
	f.created = append(f.created, t)
	return f.err
}

func (f *fakeTodoRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Todo, error) {
	f.record("ListByOwner", ownerID, "")
	return f.todos, f.err
}

func (f *fakeTodoRepo) Get(_ context.Context, ownerID, id string) (*models.Todo, error) {
	f.record("Get", ownerID, id)
	return f.todo, f.err
}

func (f *fakeTodoRepo) Delete(_ context.Context, ownerID, id string) (*models.Todo, error) {
	f.record("Delete", ownerID, id)
	return f.todo, f.err
}

func (f *fakeTodoRepo) Update(_ context.Context, ownerID, id string, p repository.TodoUpdate) (*models.Todo, error) {
	f.record("Update", ownerID, id)
	f.gotUpdate = p
	return f.todo, f.err
}

func (f *fakeTodoRepo) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	f.record("DeleteByOwner", ownerID, "")
	return f.removed, f.err
}
