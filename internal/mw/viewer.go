package mw

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"hvac-dispatch-backend/internal/schedule"
)

const viewerContextKey = "dispatch-viewer"

// Viewer is a middleware that resolves the requesting viewer's identity
// from the headers an upstream auth proxy sets. Authorization is not this
// service's job, the role only drives event masking and drag gating; a
// missing or unrecognized role is treated as partner (read-only, masked) so
// a stripped header fails closed.
func Viewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := schedule.Viewer{Role: schedule.RolePartner}

		switch schedule.Role(c.GetHeader("X-Viewer-Role")) {
		case schedule.RoleAdmin:
			viewer.Role = schedule.RoleAdmin
		case schedule.RoleTechnician:
			viewer.Role = schedule.RoleTechnician
		}

		if id, err := uuid.Parse(c.GetHeader("X-Viewer-Id")); err == nil {
			viewer.ID = id
		}

		c.Set(viewerContextKey, viewer)
		c.Next()
	}
}

// ViewerFrom returns the viewer resolved for the request. A request that
// never passed through the middleware is treated as partner.
func ViewerFrom(c *gin.Context) schedule.Viewer {
	if v, ok := c.Get(viewerContextKey); ok {
		if viewer, ok := v.(schedule.Viewer); ok {
			return viewer
		}
	}
	return schedule.Viewer{Role: schedule.RolePartner}
}
