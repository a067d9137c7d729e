package model

import (
	"time"

	"github.com/google/uuid"
)

// Appointment is a confirmed (partner, entrepreneur, date, startTime)
// booking. Three uniqueness rules hold simultaneously: one booking per
// partner slot, no entrepreneur double-booked at the same instant, and at
// most one appointment per (entrepreneur, partner, day).
type Appointment struct {
	ID               uuid.UUID `db:"id" json:"id"`
	PartnerID        uuid.UUID `db:"partner_id" json:"partnerId"`
	EntrepreneurID   uuid.UUID `db:"entrepreneur_id" json:"entrepreneurId"`
	Date             Date      `db:"date" json:"date"`
	StartTime        string    `db:"start_time" json:"startTime"`
	PartnerName      string    `db:"partner_name" json:"partnerName,omitempty"`
	EntrepreneurName string    `db:"entrepreneur_name" json:"entrepreneurName,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
}

type CreateAppointmentRequest struct {
	PartnerID      uuid.UUID `json:"partnerId" binding:"required"`
	EntrepreneurID uuid.UUID `json:"entrepreneurId" binding:"required"`
	Date           string    `json:"date" binding:"required,datetime=2006-01-02"`
	StartTime      string    `json:"startTime" binding:"required,hhmm"`
}
