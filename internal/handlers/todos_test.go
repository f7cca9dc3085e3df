package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/jakehq/jaketodo/internal/database"
	"github.com/jakehq/jaketodo/internal/models"
)

func newTestRouter(t *testing.T) (*mux.Router, *database.TodoRepository) {
	t.Helper()

	db, err := database.New(database.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	repo := database.NewTodoRepository(db)
	logger := zap.NewNop()

	r := mux.NewRouter()
	NewTodoHandler(repo, logger).RegisterRoutes(r.PathPrefix("/todos").Subrouter())
	NewAdminHandler(repo, logger).RegisterRoutes(r.PathPrefix("/admin").Subrouter())
	return r, repo
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

func createTodo(t *testing.T, r http.Handler, body map[string]any) models.Todo {
	t.Helper()

	rec := doJSON(t, r, http.MethodPost, "/todos", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create returned status %d: %s", rec.Code, rec.Body.String())
	}
	return decodeBody[models.Todo](t, rec)
}

func TestCreateTodo(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/todos", map[string]any{
		"description": "buy milk",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	todo := decodeBody[models.Todo](t, rec)
	if todo.ID == 0 {
		t.Error("expected assigned ID")
	}
	if todo.Description != "buy milk" {
		t.Errorf("description = %q", todo.Description)
	}
	if todo.Status != models.TodoStatusPending {
		t.Errorf("status = %q, want pending", todo.Status)
	}
	if todo.Priority != models.PriorityDefault {
		t.Errorf("priority = %d, want %d", todo.Priority, models.PriorityDefault)
	}

	// Nullable fields must appear as explicit nulls.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to re-decode body: %v", err)
	}
	for _, key := range []string{"due_date_text", "due_date", "notes", "gcal_event_id", "completed_at"} {
		v, ok := raw[key]
		if !ok {
			t.Errorf("response missing %q", key)
			continue
		}
		if string(v) != "null" {
			t.Errorf("%s = %s, want null", key, v)
		}
	}
	if _, ok := raw["deleted_at"]; ok {
		t.Error("deleted_at must not be serialized")
	}
}

func TestCreateTodo_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing description", map[string]any{"priority": 2}, "description"},
		{"empty description", map[string]any{"description": ""}, "description"},
		{"priority too low", map[string]any{"description": "x", "priority": 0}, "priority"},
		{"priority too high", map[string]any{"description": "x", "priority": 5}, "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newTestRouter(t)
			rec := doJSON(t, router, http.MethodPost, "/todos", tt.body)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}

			body := decodeBody[struct {
				Detail []fieldDetail `json:"detail"`
			}](t, rec)
			if len(body.Detail) == 0 {
				t.Fatal("expected at least one field detail")
			}
			if body.Detail[0].Field != tt.field {
				t.Errorf("detail field = %q, want %q", body.Detail[0].Field, tt.field)
			}
		})
	}
}

func TestCreateTodo_InvalidBody(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/todos", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetTodo(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	created := createTodo(t, router, map[string]any{"description": "read book", "priority": 1})

	rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/todos/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	got := decodeBody[models.Todo](t, rec)
	if got.ID != created.ID || got.Description != "read book" || got.Priority != 1 {
		t.Errorf("unexpected todo: %+v", got)
	}
}

func TestGetTodo_NotFound(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/todos/9999", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	body := decodeBody[struct {
		Detail string `json:"detail"`
	}](t, rec)
	if body.Detail != "TODO not found" {
		t.Errorf("detail = %q", body.Detail)
	}
}

func TestGetTodo_InvalidID(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/todos/abc", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListTodos(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	createTodo(t, router, map[string]any{"description": "a", "priority": 2})
	createTodo(t, router, map[string]any{"description": "b", "priority": 1})

	rec := doJSON(t, router, http.MethodGet, "/todos", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody[ListTodosResponse](t, rec)
	if body.Count != 2 || len(body.Todos) != 2 {
		t.Fatalf("count = %d, len = %d", body.Count, len(body.Todos))
	}
	// Neither has a due date, so priority breaks the tie.
	if body.Todos[0].Description != "b" {
		t.Errorf("first todo = %q, want %q", body.Todos[0].Description, "b")
	}
}

func TestListTodos_Empty(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/todos", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got, want := rec.Body.String(), `"todos":[]`; !bytes.Contains(rec.Body.Bytes(), []byte(want)) {
		t.Errorf("body %q does not contain %q", got, want)
	}
	body := decodeBody[ListTodosResponse](t, rec)
	if body.Count != 0 {
		t.Errorf("count = %d, want 0", body.Count)
	}
}

func TestListTodos_Filters(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	first := createTodo(t, router, map[string]any{"description": "p1", "priority": 1})
	createTodo(t, router, map[string]any{"description": "p2", "priority": 2})

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/todos/%d/complete", first.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete returned %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/todos?status=completed", nil)
	body := decodeBody[ListTodosResponse](t, rec)
	if body.Count != 1 || body.Todos[0].ID != first.ID {
		t.Errorf("status filter returned %+v", body)
	}

	rec = doJSON(t, router, http.MethodGet, "/todos?priority=2", nil)
	body = decodeBody[ListTodosResponse](t, rec)
	if body.Count != 1 || body.Todos[0].Description != "p2" {
		t.Errorf("priority filter returned %+v", body)
	}

	rec = doJSON(t, router, http.MethodGet, "/todos?status=completed&priority=2", nil)
	body = decodeBody[ListTodosResponse](t, rec)
	if body.Count != 0 {
		t.Errorf("combined filter count = %d, want 0", body.Count)
	}
}

func TestListTodos_InvalidFilters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{"bad status", "?status=done"},
		{"non-integer priority", "?priority=high"},
		{"out-of-range priority", "?priority=9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, _ := newTestRouter(t)
			rec := doJSON(t, router, http.MethodGet, "/todos"+tt.query, nil)
			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestUpdateTodo(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	created := createTodo(t, router, map[string]any{
		"description": "original",
		"notes":       "keep me",
		"due_date":    "2026-09-01",
	})

	rec := doJSON(t, router, http.MethodPut, fmt.Sprintf("/todos/%d", created.ID), map[string]any{
		"description": "updated",
		"priority":    1,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[models.Todo](t, rec)
	if got.Description != "updated" || got.Priority != 1 {
		t.Errorf("unexpected todo after update: %+v", got)
	}
	if got.Notes == nil || *got.Notes != "keep me" {
		t.Error("untouched notes must survive a partial update")
	}
	if got.DueDate == nil || got.DueDate.String() != "2026-09-01" {
		t.Error("untouched due_date must survive a partial update")
	}
}

func TestUpdateTodo_ExplicitNulls(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	created := createTodo(t, router, map[string]any{
		"description":   "has extras",
		"notes":         "to clear",
		"due_date":      "2026-09-01",
		"due_date_text": "next monday",
	})

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/todos/%d", created.ID),
		bytes.NewBufferString(`{"notes": null, "due_date": null, "due_date_text": null}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	got := decodeBody[models.Todo](t, rec)
	if got.Notes != nil || got.DueDate != nil || got.DueDateText != nil {
		t.Errorf("cleared fields still set: %+v", got)
	}
	if got.Description != "has extras" {
		t.Errorf("description = %q, want unchanged", got.Description)
	}
}

func TestUpdateTodo_NullDescriptionRejected(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	created := createTodo(t, router, map[string]any{"description": "keep"})

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/todos/%d", created.ID),
		bytes.NewBufferString(`{"description": null}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateTodo_NotFound(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPut, "/todos/404", map[string]any{"description": "x"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCompleteAndReopenTodo(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	created := createTodo(t, router, map[string]any{"description": "finish report"})

	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/todos/%d/complete", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete returned %d: %s", rec.Code, rec.Body.String())
	}
	completed := decodeBody[models.Todo](t, rec)
	if completed.Status != models.TodoStatusCompleted {
		t.Errorf("status = %q, want completed", completed.Status)
	}
	if completed.CompletedAt == nil {
		t.Fatal("completed_at must be set")
	}

	// Completing again keeps the original timestamp.
	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/todos/%d/complete", created.ID), nil)
	again := decodeBody[models.Todo](t, rec)
	if again.CompletedAt == nil || !again.CompletedAt.Equal(*completed.CompletedAt) {
		t.Error("repeat complete must not move completed_at")
	}

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/todos/%d/reopen", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reopen returned %d: %s", rec.Code, rec.Body.String())
	}
	reopened := decodeBody[models.Todo](t, rec)
	if reopened.Status != models.TodoStatusPending {
		t.Errorf("status = %q, want pending", reopened.Status)
	}
	if reopened.CompletedAt != nil {
		t.Error("completed_at must be cleared on reopen")
	}
}

func TestDeleteTodo(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	created := createTodo(t, router, map[string]any{"description": "ephemeral"})

	rec := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/todos/%d", created.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := decodeBody[DeleteTodoResponse](t, rec)
	if body.Message != "TODO deleted" || body.ID != created.ID {
		t.Errorf("unexpected delete response: %+v", body)
	}

	// Gone from reads, mutations, and repeat deletes.
	for _, probe := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, fmt.Sprintf("/todos/%d", created.ID)},
		{http.MethodDelete, fmt.Sprintf("/todos/%d", created.ID)},
		{http.MethodPost, fmt.Sprintf("/todos/%d/complete", created.ID)},
	} {
		rec := doJSON(t, router, probe.method, probe.path, nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s returned %d, want 404", probe.method, probe.path, rec.Code)
		}
	}

	rec = doJSON(t, router, http.MethodGet, "/todos", nil)
	list := decodeBody[ListTodosResponse](t, rec)
	if list.Count != 0 {
		t.Errorf("deleted todo still listed: %+v", list)
	}
}

func TestBulkCreateTodos(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/todos/bulk", map[string]any{
		"todos": []map[string]any{
			{"description": "first"},
			{"description": "second", "priority": 1},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[ListTodosResponse](t, rec)
	if body.Count != 2 {
		t.Fatalf("count = %d, want 2", body.Count)
	}
	for _, todo := range body.Todos {
		if todo.ID == 0 {
			t.Error("bulk-created todo missing ID")
		}
	}
}

func TestBulkCreateTodos_AllOrNothing(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/todos/bulk", map[string]any{
		"todos": []map[string]any{
			{"description": "fine"},
			{"description": "bad", "priority": 99},
		},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/todos", nil)
	list := decodeBody[ListTodosResponse](t, rec)
	if list.Count != 0 {
		t.Errorf("partial batch persisted: %+v", list)
	}
}

func TestBulkCreateTodos_EmptyBatch(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/todos/bulk", map[string]any{
		"todos": []map[string]any{},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPurgeTodos(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	keep := createTodo(t, router, map[string]any{"description": "keep"})
	gone := createTodo(t, router, map[string]any{"description": "gone"})

	rec := doJSON(t, router, http.MethodDelete, fmt.Sprintf("/todos/%d", gone.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodDelete, "/admin/purge", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("purge returned %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeBody[PurgeResponse](t, rec)
	if body.Message != "Purged deleted TODOs" || body.Count != 1 {
		t.Errorf("unexpected purge response: %+v", body)
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/todos/%d", keep.ID), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("active todo lost to purge: %d", rec.Code)
	}

	// Nothing left to purge.
	rec = doJSON(t, router, http.MethodDelete, "/admin/purge", nil)
	body = decodeBody[PurgeResponse](t, rec)
	if body.Count != 0 {
		t.Errorf("second purge count = %d, want 0", body.Count)
	}
}
