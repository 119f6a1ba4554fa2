package handlers

import (
	"context"
	"net/http"
	"time"

	"todo_api/internal/models"
	"todo_api/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockUsers struct {
	user     *models.User
	token    string
	err      error
	findErr  error
	sessions []service.SessionInfo

	// acceptCalls > 0 rejects the token after that many lookups.
	acceptCalls int
	findCalls   int

	lastEmail    string
	lastPassword string
	lastToken    string
	logoutCalls  int
	deleteCalls  int
}

func (m *mockUsers) Register(_ context.Context, email, password string) (*models.User, string, error) {
	m.lastEmail, m.lastPassword = email, password
	if m.err != nil {
		return nil, "", m.err
	}
	return m.user, m.token, nil
}

func (m *mockUsers) Login(_ context.Context, email, password string) (*models.User, string, error) {
	m.lastEmail, m.lastPassword = email, password
	if m.err != nil {
		return nil, "", m.err
	}
	return m.user, m.token, nil
}

// FindByToken accepts exactly m.token.
func (m *mockUsers) FindByToken(_ context.Context, raw string) (*models.User, error) {
	m.lastToken = raw
	m.findCalls++
	if m.acceptCalls > 0 && m.findCalls > m.acceptCalls {
		return nil, service.ErrInvalidToken
	}
	if m.findErr != nil {
		return nil, m.findErr
	}
	if raw == "" || raw != m.token {
		return nil, service.ErrInvalidToken
	}
	return m.user, nil
}

func (m *mockUsers) Logout(_ context.Context, _ *models.User, raw string) error {
	m.logoutCalls++
	m.lastToken = raw
	return m.err
}

func (m *mockUsers) DeleteAccount(context.Context, *models.User) error {
	m.deleteCalls++
	return m.err
}

func (m *mockUsers) Sessions(_ context.Context, _ *models.User, current string) ([]service.SessionInfo, error) {
	m.lastToken = current
	return m.sessions, m.err
}

type mockTodos struct {
	todo  *models.Todo
	todos []models.Todo
	err   error

	lastOwner string
	lastID    string
	lastText  string
	lastPatch service.TodoPatch
	listCalls int
}

func (m *mockTodos) Create(_ context.Context, ownerID, text string) (*models.Todo, error) {
	m.lastOwner, m.lastText = ownerID, text
	return m.todo, m.err
}

func (m *mockTodos) List(_ context.Context, ownerID string) ([]models.Todo, error) {
	m.lastOwner = ownerID
	m.listCalls++
	return m.todos, m.err
}

func (m *mockTodos) Get(_ context.Context, ownerID, id string) (*models.Todo, error) {
	m.lastOwner, m.lastID = ownerID, id
	return m.todo, m.err
}

func (m *mockTodos) Delete(_ context.Context, ownerID, id string) (*models.Todo, error) {
	m.lastOwner, m.lastID = ownerID, id
	return m.todo, m.err
}

func (m *mockTodos) Update(_ context.Context, ownerID, id string, p service.TodoPatch) (*models.Todo, error) {
	m.lastOwner, m.lastID, m.lastPatch = ownerID, id, p
	return m.todo, m.err
}

type mockEventLog struct {
	resp     []models.AuthEvent
	err      error
	lastUser string
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(_ context.Context, userID string, f service.LogFilter) ([]models.AuthEvent, error) {
	m.lastUser = userID
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

type mockHealth struct{ err error }

func (m mockHealth) Check(context.Context) error { return m.err }

// ---- Shared Test Helpers ----

const testToken = "tok123"

var testUser = &models.User{ID: "01J9ZK4S8N4V1W2X3Y4Z5A6B7C", Email: "alice@example.com"}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, nil, Options{})
	return h.InitRoutes()
}

// newAuthedService returns services whose Users mock accepts testToken.
func newAuthedService() (*service.Service, *mockUsers, *mockTodos) {
	users := &mockUsers{user: testUser, token: testToken}
	todos := &mockTodos{}
	return &service.Service{Users: users, Todos: todos, EventLog: &mockEventLog{}, Health: mockHealth{}}, users, todos
}

func tokenHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set(authHeader, token)
	}
	return h
}
