package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focusflow/internal/middleware"
	"focusflow/internal/service"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

type updateSettingsRequest struct {
	BaseVersion               int  `json:"baseVersion"`
	FocusDurationMinutes      int  `json:"focusDurationMinutes"`
	ShortBreakDurationMinutes int  `json:"shortBreakDurationMinutes"`
	LongBreakDurationMinutes  int  `json:"longBreakDurationMinutes"`
	LongBreakInterval         int  `json:"longBreakInterval"`
	AutoStartBreaks           bool `json:"autoStartBreaks"`
	AutoStartPomodoros        bool `json:"autoStartPomodoros"`
	DailyGoalSessions         int  `json:"dailyGoalSessions"`
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	settings, apiErr := h.settingsService.Get(c.Request.Context(), middleware.UserID(c))
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req updateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	settings, apiErr := h.settingsService.Update(c.Request.Context(), middleware.UserID(c), service.UpdateSettingsInput{
		BaseVersion:               req.BaseVersion,
		FocusDurationMinutes:      req.FocusDurationMinutes,
		ShortBreakDurationMinutes: req.ShortBreakDurationMinutes,
		LongBreakDurationMinutes:  req.LongBreakDurationMinutes,
		LongBreakInterval:         req.LongBreakInterval,
		AutoStartBreaks:           req.AutoStartBreaks,
		AutoStartPomodoros:        req.AutoStartPomodoros,
		DailyGoalSessions:         req.DailyGoalSessions,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
