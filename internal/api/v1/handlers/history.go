package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transcribe-beautifier/internal/api/middleware"
	"transcribe-beautifier/internal/api/v1/dto"
	"transcribe-beautifier/internal/app/repository"
)

const defaultHistoryLimit = 50

// HistoryHandler exposes the processing ledger.
type HistoryHandler struct {
	ledger repository.Ledger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(ledger repository.Ledger) *HistoryHandler {
	return &HistoryHandler{ledger: ledger}
}

// List handles GET /api/v1/history
func (h *HistoryHandler) List(c *gin.Context) {
	var req dto.HistoryRequest
	if err := middleware.ValidateQuery(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultHistoryLimit
	}

	entries, err := h.ledger.Recent(c.Request.Context(), req.Limit)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	resp := dto.HistoryResponse{Entries: make([]dto.HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, dto.NewHistoryEntry(e))
	}
	c.JSON(http.StatusOK, resp)
}
