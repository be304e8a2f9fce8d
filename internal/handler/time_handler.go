package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/budgetly/budgetly-backend/internal/util"
	"github.com/labstack/echo/v4"
)

// TimeHandler exposes the server's reference clock so clients compute
// relative dates against it instead of their own clock
type TimeHandler struct {
	clock util.Clock
}

// NewTimeHandler creates a new TimeHandler
func NewTimeHandler(clock util.Clock) *TimeHandler {
	return &TimeHandler{clock: clock}
}

// ServerTimeResponse represents the server time API response
type ServerTimeResponse struct {
	Now      string `json:"now"`
	Date     string `json:"date"`
	Month    string `json:"month"`
	Timezone string `json:"timezone"`
}

// GetTime handles GET /api/v1/time
func (h *TimeHandler) GetTime(c echo.Context) error {
	return c.JSON(http.StatusOK, serverTime(h.clock.Now()))
}

func serverTime(now time.Time) ServerTimeResponse {
	return ServerTimeResponse{
		Now:      now.Format(time.RFC3339),
		Date:     util.DayKey(now),
		Month:    util.MonthTag(now),
		Timezone: now.Location().String(),
	}
}
