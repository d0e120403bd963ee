package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"hvac-dispatch-backend/internal/mw"
	"hvac-dispatch-backend/internal/parse"
	"hvac-dispatch-backend/internal/schedule"
)

// GetConflicts handles GET /api/conflicts. It answers a single
// (technician, proposed window, excluded order) query so the client can
// gate a drag before committing it.
func (h *Handler) GetConflicts(c *gin.Context) {
	technicianID, err := uuid.Parse(c.Query("technician_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid technician_id"})
		return
	}

	date, err := parse.Date(c.Query("date"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
		return
	}

	startMinutes, err := parse.Clock(c.Query("start_time"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid start_time, use HH:MM"})
		return
	}

	duration := 0
	if raw := c.Query("duration"); raw != "" {
		duration, err = strconv.Atoi(raw)
		if err != nil || duration < 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid duration"})
			return
		}
	}

	var excludeOrderID uuid.UUID
	if raw := c.Query("exclude_order_id"); raw != "" {
		excludeOrderID, err = uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid exclude_order_id"})
			return
		}
	}

	result, err := h.detector.Check(c.Request.Context(), technicianID, date, startMinutes, duration, excludeOrderID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "conflict check failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

type rescheduleRequest struct {
	NewStart time.Time `json:"new_start" binding:"required"`
	NewEnd   time.Time `json:"new_end" binding:"required"`
}

// Reschedule handles POST /api/orders/:order_id/reschedule, the commit of a
// calendar drag.
func (h *Handler) Reschedule(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewer := mw.ViewerFrom(c)
	err = h.rescheduler.MoveEvent(c.Request.Context(), viewer, orderID, req.NewStart, req.NewEnd)
	if err != nil {
		var conflictErr *schedule.ConflictError
		switch {
		case errors.Is(err, schedule.ErrForbidden):
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "rescheduling is not permitted for this viewer"})
		case errors.As(err, &conflictErr):
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":  conflictErr.Error(),
				"result": conflictErr.Result,
			})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "order not found"})
		default:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	// The client re-fetches the calendar after a successful move rather
	// than patching locally.
	c.JSON(http.StatusOK, gin.H{"status": "rescheduled"})
}
