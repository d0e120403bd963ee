package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hvac-dispatch-backend/internal/parse"
	"hvac-dispatch-backend/internal/schedule"
)

// GetWorkload handles GET /api/workload?month=YYYY-MM. It computes
// per-technician utilization over the selected month.
func (h *Handler) GetWorkload(c *gin.Context) {
	month := time.Now().UTC()
	if raw := c.Query("month"); raw != "" {
		parsed, err := parse.Month(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid month, use YYYY-MM"})
			return
		}
		month = parsed
	}
	from, to := parse.MonthRange(month)

	assignments, err := h.store.AssignmentsInRange(c.Request.Context(), from, to)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve assignments"})
		return
	}

	summaries := schedule.ComputeWorkload(
		assignments,
		from, to,
		h.scheduling.MonthlyCapacityHours,
		h.scheduling.DefaultDurationMinutes,
	)

	c.JSON(http.StatusOK, gin.H{
		"month":     from.Format("2006-01"),
		"workloads": summaries,
	})
}
