package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/sponsor-deliverables-api/internal/clock"
	"github.com/yukikurage/sponsor-deliverables-api/internal/reminder"
	"go.uber.org/zap"
)

// Sweeper runs one reminder sweep.
type Sweeper interface {
	Run(ctx context.Context, now time.Time) (reminder.Result, error)
}

type ReminderHandler struct {
	sweeper Sweeper
	clock   clock.Clock
	logger  *zap.Logger
}

func NewReminderHandler(sweeper Sweeper, clk clock.Clock, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		sweeper: sweeper,
		clock:   clk,
		logger:  logger,
	}
}

type sendRemindersResponse struct {
	Success bool `json:"success"`
	reminder.Result
}

type sweepFailedResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	// Partial holds what was sent before the sweep stopped.
	Partial reminder.Result `json:"partial"`
}

// SendReminders runs a sweep for the scheduler. Individual delivery failures are
// listed in errors with a 200. A sweep that could not read deliverables is a 500
// failure; messages already sent by then are reported under partial.
func (h *ReminderHandler) SendReminders(c *gin.Context) {
	res, err := h.sweeper.Run(c.Request.Context(), h.clock.Now())
	if err != nil {
		h.logger.Error("Reminder sweep failed",
			zap.Int("sent_before_failure", res.SentCount),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, sweepFailedResponse{
			Success: false,
			Error:   err.Error(),
			Partial: res,
		})
		return
	}

	c.JSON(http.StatusOK, sendRemindersResponse{
		Success: true,
		Result:  res,
	})
}
