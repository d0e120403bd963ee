package schedule

import (
	"github.com/google/uuid"

	"hvac-dispatch-backend/internal/model"
)

// Role is the coarse viewer role the identity layer resolves for a request.
// Authorization itself happens upstream; the scheduling core only uses the
// role for event masking and drag-permission gating.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RolePartner    Role = "partner"
)

// Viewer identifies who is looking at the calendar or board.
type Viewer struct {
	Role Role
	ID   uuid.UUID
}

// CanReschedule reports whether the viewer may drag events at all. Partner
// viewers are read-only.
func (v Viewer) CanReschedule() bool {
	return v.Role != RolePartner
}

// MaskedTitle replaces the title of events a restricted viewer does not own.
const MaskedTitle = "Reserved"

// MaskingPolicy decides, per viewer, which events keep their client detail.
// Masked events keep their real time slot so the viewer can still reason
// about availability.
type MaskingPolicy struct {
	viewer Viewer
}

// PolicyFor returns the masking policy for a viewer.
func PolicyFor(v Viewer) MaskingPolicy {
	return MaskingPolicy{viewer: v}
}

// Owns reports whether the viewer owns the order: the order's client was
// referred by the viewer. Unrestricted roles own everything.
func (p MaskingPolicy) Owns(order *model.ServiceOrder) bool {
	if p.viewer.Role != RolePartner {
		return true
	}
	ref := order.Client.ReferredByID
	return ref != nil && *ref == p.viewer.ID
}

// Apply strips client-identifying detail from an event the viewer does not
// own. Start, end and duration are left untouched.
func (p MaskingPolicy) Apply(ev *CalendarEvent) {
	if ev.Resource.OwnedByViewer || ev.Resource.Kind != ResourceOrder {
		return
	}
	ev.Title = MaskedTitle
	ev.Resource.ClientName = ""
	ev.Resource.Location = ""
	ev.Resource.OrderNumber = ""
}
