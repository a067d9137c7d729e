package model

import (
	"time"

	"github.com/google/uuid"
)

// Partner offers availability slots that entrepreneurs can book. Partners are
// created by the seed process and immutable afterwards.
type Partner struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
