package model

import (
	"time"

	"github.com/google/uuid"
)

// Entrepreneur requests appointments against partner slots. Same lifecycle as
// Partner: seeded once, immutable afterwards.
type Entrepreneur struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
