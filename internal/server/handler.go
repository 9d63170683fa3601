package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielolaszy/jiractx/internal/logging"
	"github.com/danielolaszy/jiractx/pkg/models"
)

// ContextAssembler builds context items for a request.
type ContextAssembler interface {
	AssembleRequest(ctx context.Context, req models.ContextRequest) []models.ContextItem
}

// ContextHandler serves POST /context.
type ContextHandler struct {
	assembler ContextAssembler
}

// NewContextHandler creates a handler backed by assembler.
func NewContextHandler(assembler ContextAssembler) *ContextHandler {
	return &ContextHandler{assembler: assembler}
}

// Context decodes a context request and answers with zero or more items.
// Tracker problems never fail the request; only a malformed body does.
func (h *ContextHandler) Context(w http.ResponseWriter, r *http.Request) {
	var req models.ContextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logging.Warn("invalid context request", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	items := h.assembler.AssembleRequest(r.Context(), req)
	writeJSON(w, http.StatusOK, models.ContextResponse{Context: items})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to write response", "error", err)
	}
}
