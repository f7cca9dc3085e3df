package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/jakehq/jaketodo/internal/database"
	"github.com/jakehq/jaketodo/internal/models"
	"github.com/jakehq/jaketodo/internal/validation"
)

const (
	// MaxDescriptionLength is the maximum length for todo descriptions
	MaxDescriptionLength = 10000
	// MaxBulkTodos caps a single bulk create request
	MaxBulkTodos = 100
)

// TodoHandler handles todo-related requests
type TodoHandler struct {
	store  database.TodoStore
	logger *zap.Logger
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(store database.TodoStore, logger *zap.Logger) *TodoHandler {
	return &TodoHandler{store: store, logger: logger}
}

// RegisterRoutes registers todo routes on the given router
// The router should already have the /todos prefix (e.g., from r.PathPrefix("/todos"))
func (h *TodoHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTodos).Methods("GET")
	r.HandleFunc("", h.CreateTodo).Methods("POST")
	r.HandleFunc("/bulk", h.BulkCreateTodos).Methods("POST")
	r.HandleFunc("/{id}", h.GetTodo).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTodo).Methods("PUT")
	r.HandleFunc("/{id}", h.DeleteTodo).Methods("DELETE")
	r.HandleFunc("/{id}/complete", h.CompleteTodo).Methods("POST")
	r.HandleFunc("/{id}/reopen", h.ReopenTodo).Methods("POST")
}

// CreateTodoRequest represents a create todo request
type CreateTodoRequest struct {
	Description string       `json:"description" validate:"required,max=10000"`
	DueDateText *string      `json:"due_date_text"`
	DueDate     *models.Date `json:"due_date"`
	Notes       *string      `json:"notes"`
	Priority    *int         `json:"priority" validate:"omitempty,min=1,max=4"`
	GCalEventID *string      `json:"gcal_event_id"`
}

// toTodo builds the model, applying the default priority and sanitizing the
// description.
func (req *CreateTodoRequest) toTodo() *models.Todo {
	priority := models.PriorityDefault
	if req.Priority != nil {
		priority = *req.Priority
	}
	return &models.Todo{
		Description: validation.SanitizeText(req.Description),
		DueDateText: req.DueDateText,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
		Priority:    priority,
		GCalEventID: req.GCalEventID,
	}
}

// BulkCreateTodosRequest represents a bulk create request
type BulkCreateTodosRequest struct {
	Todos []CreateTodoRequest `json:"todos" validate:"required,min=1,max=100,dive"`
}

// ListTodosResponse wraps the listed todos with their count
type ListTodosResponse struct {
	Todos []*models.Todo `json:"todos"`
	Count int            `json:"count"`
}

// DeleteTodoResponse confirms a soft delete
type DeleteTodoResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// todoID parses the {id} path segment, responding 400 on garbage.
func todoID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondDetail(w, http.StatusBadRequest, "Invalid todo ID")
		return 0, false
	}
	return id, true
}

// ListTodos lists active todos, optionally filtered by status and priority
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	var filter database.TodoFilter

	if s := r.URL.Query().Get("status"); s != "" {
		if err := validation.ValidateStatus(s); err != nil {
			respondRepoError(w, h.logger, err)
			return
		}
		status := models.TodoStatus(s)
		filter.Status = &status
	}

	if p := r.URL.Query().Get("priority"); p != "" {
		priority, err := strconv.Atoi(p)
		if err != nil {
			respondDetail(w, http.StatusUnprocessableEntity,
				[]fieldDetail{{Field: "priority", Reason: "must be an integer"}})
			return
		}
		if err := validation.ValidatePriority(priority); err != nil {
			respondRepoError(w, h.logger, err)
			return
		}
		filter.Priority = &priority
	}

	todos, err := h.store.List(r.Context(), filter)
	if err != nil {
		respondRepoError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, ListTodosResponse{Todos: todos, Count: len(todos)})
}

// CreateTodo creates a new todo
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req CreateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondStructErrors(w, err)
		return
	}

	todo := req.toTodo()
	if err := h.store.Create(r.Context(), todo); err != nil {
		respondRepoError(w, h.logger, err)
		return
	}

	h.logger.Info("todo_created", zap.Int64("id", todo.ID))
	respondJSON(w, http.StatusCreated, todo)
}

// BulkCreateTodos creates several todos in one all-or-nothing batch
func (h *TodoHandler) BulkCreateTodos(w http.ResponseWriter, r *http.Request) {
	var req BulkCreateTodosRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.Validate.Struct(req); err != nil {
		respondStructErrors(w, err)
		return
	}

	todos := make([]*models.Todo, 0, len(req.Todos))
	for i := range req.Todos {
		todos = append(todos, req.Todos[i].toTodo())
	}

	if err := h.store.CreateBatch(r.Context(), todos); err != nil {
		respondRepoError(w, h.logger, err)
		return
	}

	h.logger.Info("todos_bulk_created", zap.Int("count", len(todos)))
	respondJSON(w, http.StatusCreated, ListTodosResponse{Todos: todos, Count: len(todos)})
}

// GetTodo retrieves a todo by ID
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	todo, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		respondRepoError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, todo)
}

// UpdateTodo applies a partial update to a todo
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	var upd models.TodoUpdate
	if !decodeJSON(w, r, &upd) {
		return
	}

	if upd.Description.Set && upd.Description.Valid {
		if len(upd.Description.Value) > MaxDescriptionLength {
			respondDetail(w, http.StatusUnprocessableEntity,
				[]fieldDetail{{Field: "description", Reason: "failed \"max\" validation"}})
			return
		}
		upd.Description.Value = validation.SanitizeText(upd.Description.Value)
	}

	todo, err := h.store.Update(r.Context(), id, upd)
	if err != nil {
		respondRepoError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, todo)
}

// DeleteTodo soft deletes a todo
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	if err := h.store.SoftDelete(r.Context(), id); err != nil {
		respondRepoError(w, h.logger, err)
		return
	}

	h.logger.Info("todo_deleted", zap.Int64("id", id))
	respondJSON(w, http.StatusOK, DeleteTodoResponse{Message: "TODO deleted", ID: id})
}

// CompleteTodo marks a todo as completed
func (h *TodoHandler) CompleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	todo, err := h.store.Complete(r.Context(), id)
	if err != nil {
		respondRepoError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, todo)
}

// ReopenTodo returns a completed todo to pending
func (h *TodoHandler) ReopenTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := todoID(w, r)
	if !ok {
		return
	}

	todo, err := h.store.Reopen(r.Context(), id)
	if err != nil {
		respondRepoError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, todo)
}
