package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hvac-dispatch-backend/internal/kanban"
	"hvac-dispatch-backend/internal/model"
	"hvac-dispatch-backend/internal/mw"
	"hvac-dispatch-backend/internal/parse"
)

// boardSession resolves the session key a board is held under: an explicit
// session header when the client sends one, else the viewer identity.
func boardSession(c *gin.Context) string {
	if sid := c.GetHeader("X-Session-Id"); sid != "" {
		return sid
	}
	viewer := mw.ViewerFrom(c)
	return string(viewer.Role) + ":" + viewer.ID.String()
}

func (h *Handler) boardFor(c *gin.Context) (*kanban.Board, bool) {
	month := time.Now().UTC()
	if raw := c.Query("month"); raw != "" {
		parsed, err := parse.Month(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid month, use YYYY-MM"})
			return nil, false
		}
		month = parsed
	}

	board, err := h.boards.Board(c.Request.Context(), boardSession(c), month)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load board"})
		return nil, false
	}
	return board, true
}

// GetBoard handles GET /api/board?month=YYYY-MM.
func (h *Handler) GetBoard(c *gin.Context) {
	board, ok := h.boardFor(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"columns": board.Columns(),
		"state":   board.Pipeline().State().String(),
	})
}

type moveCardRequest struct {
	TargetStatus model.OrderStatus `json:"target_status" binding:"required"`
}

// MoveCard handles POST /api/board/cards/:order_id/move. The optimistic
// mutation is applied before the response; persistence runs in the
// background and reconciles via the settle delay.
func (h *Handler) MoveCard(c *gin.Context) {
	viewer := mw.ViewerFrom(c)
	if !viewer.CanReschedule() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "board moves are not permitted for this viewer"})
		return
	}

	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req moveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, ok := h.boardFor(c)
	if !ok {
		return
	}

	move, err := board.Pipeline().MoveCard(orderID, req.TargetStatus)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if move == nil {
		// Dropped on its current column: no network call, no mutation.
		c.JSON(http.StatusOK, gin.H{"status": "noop"})
		return
	}

	// The request context dies with the response; the background write and
	// settle re-fetch must outlive it.
	go board.Pipeline().Persist(context.Background(), move)

	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"columns": board.Columns(),
	})
}

// ExpandColumn handles POST /api/board/columns/:status/expand, revealing one
// more page of already-fetched cards.
func (h *Handler) ExpandColumn(c *gin.Context) {
	status := model.OrderStatus(c.Param("status"))
	if !status.Valid() {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unknown column"})
		return
	}

	board, ok := h.boardFor(c)
	if !ok {
		return
	}

	board.Expand(status)
	c.JSON(http.StatusOK, gin.H{"columns": board.Columns()})
}
