package model

import (
	"time"

	"github.com/google/uuid"
)

// Slot marks a partner as available at (date, startTime). A slot is
// independent of whether an appointment consumes it: booking does not delete
// the slot record, the appointment table is checked on its own.
type Slot struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PartnerID   uuid.UUID `db:"partner_id" json:"partnerId"`
	Date        Date      `db:"date" json:"date"`
	StartTime   string    `db:"start_time" json:"startTime"`
	PartnerName string    `db:"partner_name" json:"partnerName,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// ToggleSlotRequest toggles a partner's availability for one slot key.
// There are no separate create/delete endpoints.
type ToggleSlotRequest struct {
	PartnerID uuid.UUID `json:"partnerId" binding:"required"`
	Date      string    `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime string    `json:"startTime" binding:"required,hhmm"`
	Action    string    `json:"action" binding:"required,oneof=toggle"`
}
