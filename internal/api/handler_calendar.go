package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hvac-dispatch-backend/internal/holiday"
	"hvac-dispatch-backend/internal/mw"
	"hvac-dispatch-backend/internal/parse"
)

// GetCalendar handles GET /api/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD&technician_id=...
// It projects the viewer's calendar events for the requested window.
func (h *Handler) GetCalendar(c *gin.Context) {
	viewer := mw.ViewerFrom(c)

	from, to, ok := h.calendarRange(c)
	if !ok {
		return
	}

	var technicianFilter *uuid.UUID
	if raw := c.Query("technician_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid technician_id"})
			return
		}
		technicianFilter = &id
	}

	orders, err := h.store.SchedulableOrders(c.Request.Context(), from, to, technicianFilter)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve orders"})
		return
	}

	// Holidays are fetched per calendar year and cached; the union is
	// trimmed back to the requested window.
	var holidays []holiday.Holiday
	for year := from.Year(); year <= to.Year(); year++ {
		for _, hd := range h.holidays.ForYear(c.Request.Context(), year) {
			if !hd.Date.Before(from) && hd.Date.Before(to) {
				holidays = append(holidays, hd)
			}
		}
	}

	events := h.projector.Project(orders, holidays, viewer, technicianFilter)
	sort.Slice(events, func(i, j int) bool { return events[i].Start.Before(events[j].Start) })

	c.JSON(http.StatusOK, events)
}

// calendarRange parses the from/to query parameters, defaulting to the
// current month.
func (h *Handler) calendarRange(c *gin.Context) (time.Time, time.Time, bool) {
	fromParam := c.Query("from")
	toParam := c.Query("to")
	if fromParam == "" && toParam == "" {
		from, to := parse.MonthRange(time.Now().UTC())
		return from, to, true
	}

	from, err := parse.Date(fromParam)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' date, use YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	to, err := parse.Date(toParam)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' date, use YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	if !to.After(from) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "'to' must be after 'from'"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
