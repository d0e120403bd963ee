package api

import (
	"github.com/SherClockHolmes/webpush-go"

	"hvac-dispatch-backend/config"
	"hvac-dispatch-backend/internal/holiday"
	"hvac-dispatch-backend/internal/kanban"
	"hvac-dispatch-backend/internal/schedule"
	"hvac-dispatch-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store       store.Store
	holidays    *holiday.Service
	projector   *schedule.Projector
	detector    *schedule.Detector
	rescheduler *schedule.Rescheduler
	boards      *kanban.Manager
	webpush     *webpush.Options
	scheduling  *config.SchedulingConfig
}

// NewHandler creates a new API handler.
func NewHandler(
	s store.Store,
	holidays *holiday.Service,
	projector *schedule.Projector,
	detector *schedule.Detector,
	rescheduler *schedule.Rescheduler,
	boards *kanban.Manager,
	webpushOptions *webpush.Options,
	scheduling *config.SchedulingConfig,
) *Handler {
	return &Handler{
		store:       s,
		holidays:    holidays,
		projector:   projector,
		detector:    detector,
		rescheduler: rescheduler,
		boards:      boards,
		webpush:     webpushOptions,
		scheduling:  scheduling,
	}
}
