package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectday/booking-api/internal/model"
)

// All repository interfaces in one file
type (
	PartnerRepository interface {
		List(ctx context.Context) ([]*model.Partner, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Partner, error)
		Create(ctx context.Context, partner *model.Partner) error
	}

	EntrepreneurRepository interface {
		List(ctx context.Context) ([]*model.Entrepreneur, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Entrepreneur, error)
		Create(ctx context.Context, entrepreneur *model.Entrepreneur) error
	}

	SlotRepository interface {
		ListByDate(ctx context.Context, date model.Date) ([]*model.Slot, error)
		// Find returns nil, nil when no slot exists for the key.
		Find(ctx context.Context, partnerID uuid.UUID, date model.Date, startTime string) (*model.Slot, error)
		Create(ctx context.Context, slot *model.Slot) error
		Delete(ctx context.Context, id uuid.UUID) error
	}

	AppointmentRepository interface {
		ListByDate(ctx context.Context, date model.Date) ([]*model.Appointment, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Create(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		ExistsForSlot(ctx context.Context, partnerID uuid.UUID, date model.Date, startTime string) (bool, error)
		ExistsForEntrepreneurAt(ctx context.Context, entrepreneurID uuid.UUID, date model.Date, startTime string) (bool, error)
		ExistsForPair(ctx context.Context, entrepreneurID, partnerID uuid.UUID, date model.Date) (bool, error)
	}
)
