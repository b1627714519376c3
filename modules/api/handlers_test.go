package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domain "github.com/example/task-board/domain/task"
	"github.com/example/task-board/domain/user"
	"github.com/example/task-board/modules/auth"
	"github.com/example/task-board/modules/broadcast"
	"github.com/example/task-board/modules/task"
	"github.com/example/task-board/pkg/database"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// servicePort serves task.TaskPort from an in-process service. Update requests
// take the same JSON hop the request-reply adapter does.
type servicePort struct {
	svc *task.TaskService
}

func (p *servicePort) CreateTask(ctx context.Context, actor user.Actor, draft domain.Draft) (*task.TaskView, error) {
	return p.svc.Create(ctx, actor, draft)
}

func (p *servicePort) GetTask(ctx context.Context, taskID string) (*task.TaskView, error) {
	return p.svc.Get(ctx, taskID)
}

func (p *servicePort) ListTasks(ctx context.Context, req task.ListTasksRequest) ([]task.TaskView, error) {
	return p.svc.List(ctx, req.Status, req.AssigneeID)
}

func (p *servicePort) UpdateTask(ctx context.Context, actor user.Actor, taskID string, patch domain.Patch) (*task.TaskView, error) {
	data, err := json.Marshal(task.UpdateTaskRequest{Actor: actor, TaskID: taskID, Patch: patch})
	if err != nil {
		return nil, err
	}
	var req task.UpdateTaskRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return p.svc.Update(ctx, req.Actor, req.TaskID, req.Patch)
}

func (p *servicePort) DeleteTask(ctx context.Context, actor user.Actor, taskID string) error {
	return p.svc.Delete(ctx, actor, taskID)
}

var testUsers = map[string]user.Claims{
	"alice-token": {UserID: "alice-id", Username: "alice", Email: "alice@example.com", Role: user.RoleUser},
	"bob-token":   {UserID: "bob-id", Username: "bob", Email: "bob@example.com", Role: user.RoleUser},
	"admin-token": {UserID: "admin-id", Username: "admin", Email: "admin@example.com", Role: user.RoleAdmin},
}

func newTestAuth() *mockAuthPort {
	return &mockAuthPort{
		validateTokenFunc: func(_ context.Context, token string) (*user.Claims, error) {
			claims, ok := testUsers[token]
			if !ok {
				return nil, auth.ErrInvalidToken
			}
			return &claims, nil
		},
		listUsersFunc: func(_ context.Context, _ []string) ([]auth.UserResponse, error) {
			return []auth.UserResponse{
				{ID: "admin-id", Username: "admin", Email: "admin@example.com", Role: user.RoleAdmin},
				{ID: "alice-id", Username: "alice", Email: "alice@example.com", Role: user.RoleUser},
				{ID: "bob-id", Username: "bob", Email: "bob@example.com", Role: user.RoleUser},
			}, nil
		},
	}
}

func newTestServer(t *testing.T, authPort *mockAuthPort) *fiber.App {
	t.Helper()
	return newTestModule(t, authPort).app
}

func newTestModule(t *testing.T, authPort *mockAuthPort) *APIModule {
	t.Helper()

	db, err := database.OpenSQLite(":memory:", &domain.Task{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = database.Close(db) })

	logger := &mockLogger{}
	svc := task.NewTaskService(task.NewTaskRepository(db), authPort, nil, nil, logger)

	m := NewModule(logger)
	m.authAdapter = authPort
	m.taskAdapter = &servicePort{svc: svc}
	m.hub = broadcast.NewHub(logger)
	m.app = m.newApp()
	return m
}

type stubHealth struct {
	status mono.HealthStatus
}

func (s *stubHealth) Name() string                  { return "stub" }
func (s *stubHealth) Start(_ context.Context) error { return nil }
func (s *stubHealth) Stop(_ context.Context) error  { return nil }
func (s *stubHealth) Health(_ context.Context) mono.HealthStatus {
	return s.status
}

func do(t *testing.T, app *fiber.App, method, path, token, body string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decodeError(t *testing.T, body []byte) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e
}

func decodeTask(t *testing.T, body []byte) task.TaskView {
	t.Helper()
	var v task.TaskView
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func createTask(t *testing.T, app *fiber.App, token, body string) task.TaskView {
	t.Helper()
	status, data := do(t, app, http.MethodPost, "/api/v1/tasks", token, body)
	require.Equal(t, http.StatusCreated, status, string(data))
	return decodeTask(t, data)
}

func TestTaskAPI_BoardScenario(t *testing.T) {
	app := newTestServer(t, newTestAuth())

	created := createTask(t, app, "alice-token", `{"title":"Setup","priority":5,"status":"Done"}`)
	assert.Equal(t, domain.StatusTodo, created.Status)
	assert.Equal(t, "alice", created.CreatorName)
	path := "/api/v1/tasks/" + created.ID

	status, data := do(t, app, http.MethodPut, path, "alice-token", `{"status":"InProgress"}`)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.Equal(t, domain.StatusInProgress, decodeTask(t, data).Status)

	_, before := do(t, app, http.MethodGet, path, "bob-token", "")
	status, data = do(t, app, http.MethodPut, path, "bob-token", `{"status":"Done","title":"mine now"}`)
	assert.Equal(t, http.StatusForbidden, status)
	e := decodeError(t, data)
	assert.Equal(t, CodeForbidden, e.Error)
	assert.Equal(t, "only the task creator or an admin can modify this task", e.Message)
	_, after := do(t, app, http.MethodGet, path, "bob-token", "")
	assert.Equal(t, string(before), string(after), "a forbidden update must not change the stored task")

	status, data = do(t, app, http.MethodPut, path, "admin-token", `{"status":"Done"}`)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.Equal(t, domain.StatusDone, decodeTask(t, data).Status)

	status, data = do(t, app, http.MethodPut, path, "admin-token", `{"status":"Todo"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, CodeInvalidTransition, decodeError(t, data).Error)

	status, data = do(t, app, http.MethodGet, path, "alice-token", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, domain.StatusDone, decodeTask(t, data).Status)
}

func TestTaskAPI_StatusIsRenderedByName(t *testing.T) {
	app := newTestServer(t, newTestAuth())
	createTask(t, app, "alice-token", `{"title":"Named"}`)

	status, data := do(t, app, http.MethodGet, "/api/v1/tasks", "alice-token", "")
	require.Equal(t, http.StatusOK, status)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Todo", raw[0]["status"])
	assert.Equal(t, float64(3), raw[0]["priority"])
	assert.Nil(t, raw[0]["assigneeId"])
	for _, key := range []string{"id", "title", "description", "assigneeName", "creatorId", "creatorName", "createdAt", "updatedAt"} {
		assert.Contains(t, raw[0], key)
	}
}

func TestTaskAPI_PartialUpdate(t *testing.T) {
	app := newTestServer(t, newTestAuth())
	created := createTask(t, app, "alice-token", `{"title":"Partial","description":"keep me","assigneeId":"bob-id"}`)
	assert.Equal(t, "bob", created.AssigneeName)
	path := "/api/v1/tasks/" + created.ID

	status, data := do(t, app, http.MethodPut, path, "alice-token", `{"priority":1}`)
	require.Equal(t, http.StatusOK, status, string(data))
	v := decodeTask(t, data)
	assert.Equal(t, 1, v.Priority)
	assert.Equal(t, "keep me", v.Description)
	require.NotNil(t, v.AssigneeID)
	assert.Equal(t, "bob-id", *v.AssigneeID)

	status, data = do(t, app, http.MethodPut, path, "alice-token", `{"assigneeId":null}`)
	require.Equal(t, http.StatusOK, status, string(data))
	v = decodeTask(t, data)
	assert.Nil(t, v.AssigneeID)
	assert.Empty(t, v.AssigneeName)
	assert.Equal(t, 1, v.Priority)
}

func TestTaskAPI_ErrorMapping(t *testing.T) {
	app := newTestServer(t, newTestAuth())
	created := createTask(t, app, "alice-token", `{"title":"Errors"}`)
	path := "/api/v1/tasks/" + created.ID

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "no token", method: http.MethodGet, path: "/api/v1/tasks", wantStatus: http.StatusUnauthorized, wantCode: CodeUnauthorized},
		{name: "bad token", method: http.MethodGet, path: "/api/v1/tasks", token: "nope", wantStatus: http.StatusUnauthorized, wantCode: CodeUnauthorized},
		{name: "missing task", method: http.MethodGet, path: "/api/v1/tasks/missing", token: "alice-token", wantStatus: http.StatusNotFound, wantCode: CodeNotFound},
		{name: "update missing task", method: http.MethodPut, path: "/api/v1/tasks/missing", token: "admin-token", body: `{"title":"x"}`, wantStatus: http.StatusNotFound, wantCode: CodeNotFound},
		{name: "unknown status on update", method: http.MethodPut, path: path, token: "alice-token", body: `{"status":"Archived"}`, wantStatus: http.StatusBadRequest, wantCode: CodeValidation},
		{name: "null status", method: http.MethodPut, path: path, token: "alice-token", body: `{"status":null}`, wantStatus: http.StatusBadRequest, wantCode: CodeValidation},
		{name: "malformed json", method: http.MethodPut, path: path, token: "alice-token", body: `{"title":`, wantStatus: http.StatusBadRequest, wantCode: CodeInvalidRequest},
		{name: "priority out of range", method: http.MethodPut, path: path, token: "alice-token", body: `{"priority":9}`, wantStatus: http.StatusBadRequest, wantCode: CodeValidation},
		{name: "skip to done", method: http.MethodPut, path: path, token: "alice-token", body: `{"status":"Done"}`, wantStatus: http.StatusBadRequest, wantCode: CodeInvalidTransition},
		{name: "empty title on create", method: http.MethodPost, path: "/api/v1/tasks", token: "alice-token", body: `{"title":""}`, wantStatus: http.StatusBadRequest, wantCode: CodeValidation},
		{name: "unknown status filter", method: http.MethodGet, path: "/api/v1/tasks?status=bogus", token: "alice-token", wantStatus: http.StatusBadRequest, wantCode: CodeValidation},
		{name: "status filter naming another error", method: http.MethodGet, path: "/api/v1/tasks?status=task%20not%20found", token: "alice-token", wantStatus: http.StatusBadRequest, wantCode: CodeValidation},
		{name: "delete by stranger", method: http.MethodDelete, path: path, token: "bob-token", wantStatus: http.StatusForbidden, wantCode: CodeForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := do(t, app, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.wantStatus, status, string(data))
			assert.Equal(t, tt.wantCode, decodeError(t, data).Error)
		})
	}
}

func TestTaskAPI_ListFiltersAndDelete(t *testing.T) {
	app := newTestServer(t, newTestAuth())
	first := createTask(t, app, "alice-token", `{"title":"first","assigneeId":"bob-id"}`)
	second := createTask(t, app, "bob-token", `{"title":"second"}`)

	status, data := do(t, app, http.MethodPut, "/api/v1/tasks/"+second.ID, "bob-token", `{"status":"inprogress"}`)
	require.Equal(t, http.StatusOK, status, string(data))

	var views []task.TaskView
	status, data = do(t, app, http.MethodGet, "/api/v1/tasks?status=InProgress", "alice-token", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, second.ID, views[0].ID)

	status, data = do(t, app, http.MethodGet, "/api/v1/tasks?assignee=bob-id", "alice-token", "")
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, first.ID, views[0].ID)

	status, _ = do(t, app, http.MethodDelete, "/api/v1/tasks/"+first.ID, "admin-token", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, app, http.MethodGet, "/api/v1/tasks/"+first.ID, "alice-token", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, data = do(t, app, http.MethodGet, "/api/v1/tasks?status=Todo", "alice-token", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(data))
}

func TestAuthAPI(t *testing.T) {
	authPort := newTestAuth()
	authPort.registerFunc = func(_ context.Context, req auth.RegisterRequest) (*user.Session, error) {
		switch {
		case req.Email == "taken@example.com":
			return nil, auth.ErrUserExists
		case len(req.Password) < auth.MinPasswordLength:
			return nil, auth.ErrWeakPassword
		}
		return &user.Session{Token: "new-token", Username: req.Username, Role: user.RoleUser, ExpiresIn: 7200}, nil
	}
	authPort.loginFunc = func(_ context.Context, req auth.LoginRequest) (*user.Session, error) {
		if req.Password != "Admin123!" {
			return nil, auth.ErrInvalidCredentials
		}
		return &user.Session{Token: "admin-token", Username: "admin", Role: user.RoleAdmin, ExpiresIn: 7200}, nil
	}
	app := newTestServer(t, authPort)

	status, data := do(t, app, http.MethodPost, "/api/v1/auth/register", "", `{"username":"neo","email":"neo@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.JSONEq(t, `{"token":"new-token","username":"neo","role":"USER","expiresIn":7200}`, string(data))

	status, data = do(t, app, http.MethodPost, "/api/v1/auth/login", "", `{"email":"admin@example.com","password":"Admin123!"}`)
	require.Equal(t, http.StatusOK, status, string(data))
	assert.JSONEq(t, `{"token":"admin-token","username":"admin","role":"ADMIN","expiresIn":7200}`, string(data))

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{name: "duplicate email", path: "/api/v1/auth/register", body: `{"username":"x","email":"taken@example.com","password":"secret1"}`, wantStatus: http.StatusConflict, wantCode: CodeConflict},
		{name: "weak password", path: "/api/v1/auth/register", body: `{"username":"x","email":"x@example.com","password":"123"}`, wantStatus: http.StatusBadRequest, wantCode: CodeValidation},
		{name: "missing fields", path: "/api/v1/auth/register", body: `{"email":"x@example.com"}`, wantStatus: http.StatusBadRequest, wantCode: CodeValidation},
		{name: "malformed body", path: "/api/v1/auth/login", body: `not json`, wantStatus: http.StatusBadRequest, wantCode: CodeInvalidRequest},
		{name: "bad credentials", path: "/api/v1/auth/login", body: `{"email":"admin@example.com","password":"wrong"}`, wantStatus: http.StatusUnauthorized, wantCode: CodeUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := do(t, app, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.wantStatus, status, string(data))
			assert.Equal(t, tt.wantCode, decodeError(t, data).Error)
		})
	}
}

func TestUsersAPI(t *testing.T) {
	app := newTestServer(t, newTestAuth())

	status, data := do(t, app, http.MethodGet, "/api/v1/users", "alice-token", "")
	require.Equal(t, http.StatusOK, status)

	var users []auth.UserResponse
	require.NoError(t, json.Unmarshal(data, &users))
	require.Len(t, users, 3)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, user.RoleAdmin, users[0].Role)
}

func TestHealthAPI(t *testing.T) {
	app := newTestServer(t, newTestAuth())

	status, data := do(t, app, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, status, string(data))

	var health HealthResponse
	require.NoError(t, json.Unmarshal(data, &health))
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.Modules["api"].Healthy)
}

func TestHealthAPI_UnhealthyModule(t *testing.T) {
	m := newTestModule(t, newTestAuth())
	m.AddHealthCheck("task", &stubHealth{status: mono.HealthStatus{Healthy: true, Message: "operational"}})
	m.AddHealthCheck("cache", &stubHealth{status: mono.HealthStatus{Healthy: false, Message: "redis unreachable"}})

	status, data := do(t, m.app, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, status)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(data, &health))
	assert.Equal(t, "unhealthy", health.Status)
	assert.True(t, health.Modules["task"].Healthy)
	assert.False(t, health.Modules["cache"].Healthy)
	assert.Equal(t, "redis unreachable", health.Modules["cache"].Message)
}

func TestWebSocketRoute_RequiresUpgradeAndToken(t *testing.T) {
	app := newTestServer(t, newTestAuth())

	status, _ := do(t, app, http.MethodGet, "/ws?token=alice-token", "", "")
	assert.Equal(t, http.StatusUpgradeRequired, status)

	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
