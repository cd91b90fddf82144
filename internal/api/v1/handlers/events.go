package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apierrors "transcribe-beautifier/internal/api/errors"
	"transcribe-beautifier/internal/api/middleware"
	"transcribe-beautifier/internal/api/v1/dto"
	"transcribe-beautifier/internal/app/events"
	"transcribe-beautifier/internal/app/storage"
)

const maxEventBody = 1 << 20

// EventHandler accepts storage notifications and object triggers.
type EventHandler struct {
	start       events.Handler
	beautify    events.Handler
	concurrency int
}

// NewEventHandler creates a new event handler
func NewEventHandler(start, beautify events.Handler, concurrency int) *EventHandler {
	return &EventHandler{
		start:       start,
		beautify:    beautify,
		concurrency: concurrency,
	}
}

// Start handles POST /api/v1/events/start
func (h *EventHandler) Start(c *gin.Context) {
	h.dispatch(c, h.start)
}

// Beautify handles POST /api/v1/events/beautify
func (h *EventHandler) Beautify(c *gin.Context) {
	h.dispatch(c, h.beautify)
}

func (h *EventHandler) dispatch(c *gin.Context, handler events.Handler) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxEventBody))
	if err != nil {
		middleware.HandleError(c, apierrors.NewBadRequestError("unreadable request body"))
		return
	}

	refs, err := events.ParseNotification(body)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	// Failures are reported per object; the notification itself was accepted.
	outcomes, err := events.Dispatch(c.Request.Context(), refs, handler, h.concurrency)
	if err != nil {
		_ = c.Error(err)
	}
	resp := dto.NewEventResponse(outcomes)

	status := http.StatusOK
	if resp.Failed > 0 {
		status = http.StatusMultiStatus
	}
	c.JSON(status, resp)
}

// Trigger handles POST /api/v1/objects
func (h *EventHandler) Trigger(c *gin.Context) {
	var req dto.ObjectRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	handler := h.start
	if req.Action == "beautify" {
		handler = h.beautify
	}

	ref := storage.ObjectRef{Bucket: req.Bucket, Key: req.Key}
	outcomes, err := events.Dispatch(c.Request.Context(), []storage.ObjectRef{ref}, handler, 1)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcomes[0])
}
