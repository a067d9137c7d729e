package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/connectday/booking-api/internal/email"
	"github.com/connectday/booking-api/internal/hub"
	"github.com/connectday/booking-api/internal/model"
	"github.com/connectday/booking-api/internal/repository"
	"github.com/connectday/booking-api/internal/repository/postgres"
	apperrors "github.com/connectday/booking-api/pkg/errors"
)

// Conflict messages, one per conflict kind so callers can tell them apart.
const (
	msgSlotUnavailable  = "time slot is not available"
	msgSlotTaken        = "this time slot is already booked"
	msgTimeConflict     = "you already have an appointment at this time"
	msgDuplicatePartner = "you already have an appointment with this partner today"
)

type Service struct {
	slots         repository.SlotRepository
	appointments  repository.AppointmentRepository
	partners      repository.PartnerRepository
	entrepreneurs repository.EntrepreneurRepository
	hub           *hub.Hub
	mailer        email.Service
	logger        zerolog.Logger
}

func NewService(
	slots repository.SlotRepository,
	appointments repository.AppointmentRepository,
	partners repository.PartnerRepository,
	entrepreneurs repository.EntrepreneurRepository,
	h *hub.Hub,
	mailer email.Service,
	logger zerolog.Logger,
) *Service {
	return &Service{
		slots:         slots,
		appointments:  appointments,
		partners:      partners,
		entrepreneurs: entrepreneurs,
		hub:           h,
		mailer:        mailer,
		logger:        logger.With().Str("component", "booking").Logger(),
	}
}

func (s *Service) ListSlots(ctx context.Context, date model.Date) ([]*model.Slot, error) {
	slots, err := s.slots.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

func (s *Service) ListAppointments(ctx context.Context, date model.Date) ([]*model.Appointment, error) {
	appointments, err := s.appointments.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) ListPartners(ctx context.Context) ([]*model.Partner, error) {
	partners, err := s.partners.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	return partners, nil
}

func (s *Service) ListEntrepreneurs(ctx context.Context) ([]*model.Entrepreneur, error) {
	entrepreneurs, err := s.entrepreneurs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list entrepreneurs: %w", err)
	}
	return entrepreneurs, nil
}

// ToggleSlot deletes the slot for the key if it exists, otherwise creates it.
// Returns the affected slot and whether it now exists. Two toggles in a row
// restore the original state.
func (s *Service) ToggleSlot(ctx context.Context, req *model.ToggleSlotRequest) (*model.Slot, bool, error) {
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, false, apperrors.BadRequest("invalid date", err)
	}

	existing, err := s.slots.Find(ctx, req.PartnerID, date, req.StartTime)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up slot: %w", err)
	}

	if existing != nil {
		if err := s.slots.Delete(ctx, existing.ID); err != nil {
			// A concurrent toggle already removed it; same outcome.
			if errors.Is(err, sql.ErrNoRows) {
				return existing, false, nil
			}
			return nil, false, fmt.Errorf("failed to delete slot: %w", err)
		}
		s.hub.Broadcast(model.SlotEvent(model.EventSlotDeleted, existing))
		return existing, false, nil
	}

	slot := &model.Slot{
		PartnerID: req.PartnerID,
		Date:      date,
		StartTime: req.StartTime,
	}
	if err := s.slots.Create(ctx, slot); err != nil {
		// A concurrent toggle won the race to create the same key.
		if postgres.IsUniqueViolation(err, postgres.ConstraintSlotKey) {
			return nil, false, apperrors.Conflict("slot was just created by another request", err)
		}
		return nil, false, fmt.Errorf("failed to create slot: %w", err)
	}

	created, err := s.slots.Find(ctx, req.PartnerID, date, req.StartTime)
	if err != nil || created == nil {
		created = slot
	}
	s.hub.Broadcast(model.SlotEvent(model.EventSlotCreated, created))
	return created, true, nil
}

// CreateAppointment books a slot for an entrepreneur. The pre-checks exist to
// produce a specific conflict message; the store's uniqueness constraints are
// the race-free arbiter, so a conflicting insert that slips past a check is
// still mapped to the right conflict kind.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.BadRequest("invalid date", err)
	}

	partner, err := s.partners.Get(ctx, req.PartnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	if partner == nil {
		return nil, apperrors.BadRequest("unknown partner", nil)
	}

	entrepreneur, err := s.entrepreneurs.Get(ctx, req.EntrepreneurID)
	if err != nil {
		return nil, fmt.Errorf("failed to get entrepreneur: %w", err)
	}
	if entrepreneur == nil {
		return nil, apperrors.BadRequest("unknown entrepreneur", nil)
	}

	slot, err := s.slots.Find(ctx, req.PartnerID, date, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("failed to look up slot: %w", err)
	}
	if slot == nil {
		return nil, apperrors.Conflict(msgSlotUnavailable, nil)
	}

	taken, err := s.appointments.ExistsForSlot(ctx, req.PartnerID, date, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot booking: %w", err)
	}
	if taken {
		return nil, apperrors.Conflict(msgSlotTaken, nil)
	}

	busy, err := s.appointments.ExistsForEntrepreneurAt(ctx, req.EntrepreneurID, date, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("failed to check entrepreneur time: %w", err)
	}
	if busy {
		return nil, apperrors.Conflict(msgTimeConflict, nil)
	}

	paired, err := s.appointments.ExistsForPair(ctx, req.EntrepreneurID, req.PartnerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to check partner pairing: %w", err)
	}
	if paired {
		return nil, apperrors.Conflict(msgDuplicatePartner, nil)
	}

	apt := &model.Appointment{
		PartnerID:      req.PartnerID,
		EntrepreneurID: req.EntrepreneurID,
		Date:           date,
		StartTime:      req.StartTime,
	}
	if err := s.appointments.Create(ctx, apt); err != nil {
		if conflictErr := mapConstraintViolation(err); conflictErr != nil {
			return nil, conflictErr
		}
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	apt.PartnerName = partner.Name
	apt.EntrepreneurName = entrepreneur.Name

	s.hub.Broadcast(model.AppointmentEvent(model.EventAppointmentCreated, apt))
	s.notify(ctx, apt, partner.Email, entrepreneur.Email, model.EventAppointmentCreated)

	return apt, nil
}

// CancelAppointment deletes the appointment. The underlying slot record stays
// listed as offered; cancelling does not touch it.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	if apt == nil {
		return nil, apperrors.NotFound("appointment", nil)
	}

	if err := s.appointments.Delete(ctx, id); err != nil {
		// Deleted out from under us between the lookup and the delete.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to delete appointment: %w", err)
	}

	s.hub.Broadcast(model.AppointmentEvent(model.EventAppointmentDeleted, apt))

	var partnerEmail, entrepreneurEmail *string
	if partner, err := s.partners.Get(ctx, apt.PartnerID); err == nil && partner != nil {
		partnerEmail = partner.Email
	}
	if entrepreneur, err := s.entrepreneurs.Get(ctx, apt.EntrepreneurID); err == nil && entrepreneur != nil {
		entrepreneurEmail = entrepreneur.Email
	}
	s.notify(ctx, apt, partnerEmail, entrepreneurEmail, model.EventAppointmentDeleted)

	return apt, nil
}

func (s *Service) notify(ctx context.Context, apt *model.Appointment, partnerEmail, entrepreneurEmail *string, eventType string) {
	for _, to := range []*string{partnerEmail, entrepreneurEmail} {
		if to == nil || *to == "" {
			continue
		}
		var err error
		switch eventType {
		case model.EventAppointmentCreated:
			err = s.mailer.SendAppointmentCreated(ctx, *to, apt)
		case model.EventAppointmentDeleted:
			err = s.mailer.SendAppointmentCancelled(ctx, *to, apt)
		}
		if err != nil {
			s.logger.Warn().Err(err).
				Str("appointment_id", apt.ID.String()).
				Str("event_type", eventType).
				Msg("failed to send notification email")
		}
	}
}

// mapConstraintViolation translates a unique violation from the insert into
// the conflict the pre-check would have produced.
func mapConstraintViolation(err error) error {
	switch {
	case postgres.IsUniqueViolation(err, postgres.ConstraintAppointmentSlot):
		return apperrors.Conflict(msgSlotTaken, err)
	case postgres.IsUniqueViolation(err, postgres.ConstraintAppointmentTime):
		return apperrors.Conflict(msgTimeConflict, err)
	case postgres.IsUniqueViolation(err, postgres.ConstraintAppointmentPairDay):
		return apperrors.Conflict(msgDuplicatePartner, err)
	default:
		return nil
	}
}
