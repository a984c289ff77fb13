package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"focusflow/internal/middleware"
	"focusflow/internal/model"
	"focusflow/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

type createSessionRequest struct {
	SessionType        model.SessionMode  `json:"sessionType"`
	DurationMinutes    int                `json:"durationMinutes"`
	Status             model.RemoteStatus `json:"status"`
	StartTime          time.Time          `json:"startTime"`
	EndTime            time.Time          `json:"endTime"`
	RelatedTaskID      *string            `json:"relatedTaskId"`
	Notes              *string            `json:"notes"`
	InterruptionReason *string            `json:"interruptionReason"`
}

type updateSessionRequest struct {
	Status             *model.RemoteStatus `json:"status"`
	EndTime            *time.Time          `json:"endTime"`
	Notes              *string             `json:"notes"`
	InterruptionReason *string             `json:"interruptionReason"`
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) Create(c *gin.Context) {
	var req createSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, apiErr := h.sessionService.Create(c.Request.Context(), middleware.UserID(c), service.CreateSessionInput{
		SessionType:        req.SessionType,
		DurationMinutes:    req.DurationMinutes,
		Status:             req.Status,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		RelatedTaskID:      req.RelatedTaskID,
		Notes:              req.Notes,
		InterruptionReason: req.InterruptionReason,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

func (h *SessionHandler) List(c *gin.Context) {
	from, apiErr := queryTime(c, "from")
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	to, apiErr := queryTime(c, "to")
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	input := service.ListSessionsInput{
		From:        from,
		To:          to,
		SessionType: model.SessionMode(c.Query("sessionType")),
		Status:      model.RemoteStatus(c.Query("status")),
	}
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil {
		input.Limit = parsed
	}
	if parsed, err := strconv.Atoi(c.Query("skip")); err == nil {
		input.Skip = parsed
	}

	sessions, apiErr := h.sessionService.List(c.Request.Context(), middleware.UserID(c), input)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

func (h *SessionHandler) Get(c *gin.Context) {
	session, apiErr := h.sessionService.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) Update(c *gin.Context) {
	var req updateSessionRequest
	if !bindJSON(c, &req) {
		return
	}

	session, apiErr := h.sessionService.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), service.UpdateSessionInput{
		Status:             req.Status,
		EndTime:            req.EndTime,
		Notes:              req.Notes,
		InterruptionReason: req.InterruptionReason,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) Delete(c *gin.Context) {
	if apiErr := h.sessionService.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) Stats(c *gin.Context) {
	from, apiErr := queryTime(c, "from")
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	to, apiErr := queryTime(c, "to")
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}

	stats, apiErr := h.sessionService.Stats(c.Request.Context(), middleware.UserID(c), from, to)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
