package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/jakehq/jaketodo/internal/database"
)

// AdminHandler handles operator endpoints
type AdminHandler struct {
	store  database.TodoStore
	logger *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(store database.TodoStore, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{store: store, logger: logger}
}

// RegisterRoutes registers admin routes on a router already rooted at /admin
func (h *AdminHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/purge", h.PurgeTodos).Methods("DELETE")
}

// PurgeResponse reports how many soft-deleted todos were removed
type PurgeResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

// PurgeTodos permanently removes all soft-deleted todos
func (h *AdminHandler) PurgeTodos(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Purge(r.Context())
	if err != nil {
		respondRepoError(w, h.logger, err)
		return
	}

	h.logger.Info("purged_deleted_todos", zap.Int64("count", count))
	respondJSON(w, http.StatusOK, PurgeResponse{Message: "Purged deleted TODOs", Count: count})
}
