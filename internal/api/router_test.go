package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remindful/remindful/internal/api"
	"github.com/remindful/remindful/internal/api/models"
	"github.com/remindful/remindful/internal/push"
	"github.com/remindful/remindful/internal/reminder"
	"github.com/remindful/remindful/internal/todo"
)

// stubScanRunner stands in for the scheduler driver.
type stubScanRunner struct {
	processed int
	err       error
	calls     int
}

func (s *stubScanRunner) RunScanPass(_ context.Context) (int, error) {
	s.calls++
	return s.processed, s.err
}

type testEnv struct {
	router    http.Handler
	reminders *reminder.InMemoryRepository
	todos     *todo.InMemoryRepository
	subs      *push.InMemoryRepository
	runner    *stubScanRunner
}

func newTestEnv(cronSecret string) *testEnv {
	logger := zerolog.New(io.Discard)

	reminderRepo := reminder.NewInMemoryRepository()
	todoRepo := todo.NewInMemoryRepository()
	subRepo := push.NewInMemoryRepository()
	runner := &stubScanRunner{}

	router := api.NewRouter(api.RouterConfig{
		Version:            "test",
		BuildTime:          "2026-01-01T00:00:00Z",
		Logger:             logger,
		ReminderService:    reminder.NewService(reminderRepo, logger),
		TodoService:        todo.NewService(todoRepo, logger),
		Subscriptions:      subRepo,
		ScanRunner:         runner,
		CronSecret:         cronSecret,
		VAPIDPublicKey:     "test-public-key",
		TelegramConfigured: true,
	})

	return &testEnv{
		router:    router,
		reminders: reminderRepo,
		todos:     todoRepo,
		subs:      subRepo,
		runner:    runner,
	}
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_HealthCheck(t *testing.T) {
	env := newTestEnv("")

	w := doJSON(t, env.router, http.MethodGet, "/api/ops/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_ReadinessCheck_NoDatabase(t *testing.T) {
	env := newTestEnv("")

	w := doJSON(t, env.router, http.MethodGet, "/api/ops/ready", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var health models.Health
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
}

func TestRouter_CreateReminder(t *testing.T) {
	env := newTestEnv("")

	w := doJSON(t, env.router, http.MethodPost, "/api/reminders", map[string]string{
		"title":    "Dentist",
		"message":  "Bring insurance card",
		"datetime": "2026-09-10T14:30",
		"repeat":   "weekly",
		"priority": "high",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("Location"))

	var rem models.Reminder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rem))
	assert.NotZero(t, rem.ID)
	assert.Equal(t, "Dentist", rem.Title)
	assert.Equal(t, "weekly", rem.Repeat)
	assert.Equal(t, "high", rem.Priority)
	assert.False(t, rem.Delivered)
}

func TestRouter_CreateReminder_MissingDatetime(t *testing.T) {
	env := newTestEnv("")

	w := doJSON(t, env.router, http.MethodPost, "/api/reminders", map[string]string{
		"title": "No schedule",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	assert.Equal(t, models.ProblemTypeValidation, problem.Type)
	assert.NotEmpty(t, problem.TraceID)

	// Rejected input must leave no trace in the store.
	stored, err := env.reminders.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRouter_CreateReminder_InvalidRepeat(t *testing.T) {
	env := newTestEnv("")

	w := doJSON(t, env.router, http.MethodPost, "/api/reminders", map[string]string{
		"title":    "Water plants",
		"datetime": "2026-09-10T08:00",
		"repeat":   "fortnightly",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var problem models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &problem))
	require.Len(t, problem.Errors, 1)
	assert.Equal(t, "repeat", problem.Errors[0].Field)
}

func TestRouter_UpdateReminder_NotFound(t *testing.T) {
	env := newTestEnv("")

	w := doJSON(t, env.router, http.MethodPut, "/api/reminders/999", map[string]string{
		"title":    "Ghost",
		"datetime": "2026-09-10T08:00",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_DeleteReminder(t *testing.T) {
	env := newTestEnv("")

	created := doJSON(t, env.router, http.MethodPost, "/api/reminders", map[string]string{
		"title":    "Ephemeral",
		"datetime": "2026-09-10T08:00",
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var rem models.Reminder
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &rem))

	w := doJSON(t, env.router, http.MethodDelete, created.Header().Get("Location"), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	stored, err := env.reminders.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRouter_TodoLifecycle(t *testing.T) {
	env := newTestEnv("")

	created := doJSON(t, env.router, http.MethodPost, "/api/todos", map[string]string{
		"title":    "Buy milk",
		"priority": "low",
	})
	require.Equal(t, http.StatusCreated, created.Code)

	var td models.Todo
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &td))
	assert.Equal(t, "Buy milk", td.Title)
	assert.False(t, td.Completed)

	updated := doJSON(t, env.router, http.MethodPut, created.Header().Get("Location"), map[string]bool{
		"completed": true,
	})
	require.Equal(t, http.StatusOK, updated.Code)

	require.NoError(t, json.Unmarshal(updated.Body.Bytes(), &td))
	assert.True(t, td.Completed)
	assert.Equal(t, "Buy milk", td.Title)
}

func TestRouter_TodoReorder(t *testing.T) {
	env := newTestEnv("")

	var ids []int64
	for _, title := range []string{"first", "second"} {
		w := doJSON(t, env.router, http.MethodPost, "/api/todos", map[string]string{"title": title})
		require.Equal(t, http.StatusCreated, w.Code)

		var td models.Todo
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &td))
		ids = append(ids, td.ID)
	}

	w := doJSON(t, env.router, http.MethodPut, "/api/todos/reorder/batch", models.TodoReorderRequest{
		Items: []models.TodoReorderItem{
			{ID: ids[0], SortOrder: 2},
			{ID: ids[1], SortOrder: 1},
		},
	})
	assert.Equal(t, http.StatusNoContent, w.Code)

	list := doJSON(t, env.router, http.MethodGet, "/api/todos", nil)
	require.Equal(t, http.StatusOK, list.Code)

	var todos []models.Todo
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &todos))
	require.Len(t, todos, 2)
	assert.Equal(t, "second", todos[0].Title)
	assert.Equal(t, "first", todos[1].Title)
}

func TestRouter_PushSubscribe_Upsert(t *testing.T) {
	env := newTestEnv("")

	sub := models.PushSubscribeRequest{
		Endpoint: "https://push.example.com/ep1",
		Keys:     models.PushSubscriptionKeys{P256dh: "key-a", Auth: "auth-a"},
	}
	w := doJSON(t, env.router, http.MethodPost, "/api/push/subscribe", sub)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Same endpoint again with new keys replaces the registration.
	sub.Keys = models.PushSubscriptionKeys{P256dh: "key-b", Auth: "auth-b"}
	w = doJSON(t, env.router, http.MethodPost, "/api/push/subscribe", sub)
	assert.Equal(t, http.StatusCreated, w.Code)

	stored, err := env.subs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "key-b", stored[0].P256dh)
	assert.Equal(t, "auth-b", stored[0].Auth)
}

func TestRouter_PushSubscribe_MissingKeys(t *testing.T) {
	env := newTestEnv("")

	w := doJSON(t, env.router, http.MethodPost, "/api/push/subscribe", models.PushSubscribeRequest{
		Endpoint: "https://push.example.com/ep1",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)

	stored, err := env.subs.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRouter_VAPIDKey(t *testing.T) {
	env := newTestEnv("")

	w := doJSON(t, env.router, http.MethodGet, "/api/push/vapid-key", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var key models.VAPIDKey
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &key))
	assert.Equal(t, "test-public-key", key.Key)
}

func TestRouter_TelegramStatus(t *testing.T) {
	env := newTestEnv("")

	w := doJSON(t, env.router, http.MethodGet, "/api/telegram/status", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var status models.TelegramStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.Configured)
}

func TestRouter_CronCheckReminders_Open(t *testing.T) {
	env := newTestEnv("")
	env.runner.processed = 3

	w := doJSON(t, env.router, http.MethodGet, "/api/cron/check-reminders", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var result models.CronResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.OK)
	assert.Equal(t, 3, result.Processed)
	assert.Equal(t, 1, env.runner.calls)
}

func TestRouter_CronCheckReminders_RequiresSecret(t *testing.T) {
	env := newTestEnv("s3cret")

	w := doJSON(t, env.router, http.MethodGet, "/api/cron/check-reminders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Zero(t, env.runner.calls)
}

func TestRouter_CronCheckReminders_WrongSecret(t *testing.T) {
	env := newTestEnv("s3cret")

	req := httptest.NewRequest(http.MethodGet, "/api/cron/check-reminders", http.NoBody)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Zero(t, env.runner.calls)
}

func TestRouter_CronCheckReminders_ValidSecret(t *testing.T) {
	env := newTestEnv("s3cret")
	env.runner.processed = 1

	req := httptest.NewRequest(http.MethodGet, "/api/cron/check-reminders", http.NoBody)
	req.Header.Set("Authorization", "Bearer s3cret")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result models.CronResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.OK)
	assert.Equal(t, 1, result.Processed)
}

func TestRouter_CronCheckReminders_ScanFailure(t *testing.T) {
	env := newTestEnv("")
	env.runner.err = errors.New("db gone")

	w := doJSON(t, env.router, http.MethodGet, "/api/cron/check-reminders", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	env := newTestEnv("")

	req := httptest.NewRequest(http.MethodGet, "/api/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom_request_id")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, "custom_request_id", w.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	env := newTestEnv("")

	w := doJSON(t, env.router, http.MethodGet, "/api/nonexistent", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
