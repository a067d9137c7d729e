// Package testutil provides in-memory repository implementations for tests.
// They mirror the store's observable behavior: lookups return (nil, nil) when
// nothing matches, and list results carry joined display names.
package testutil

import (
	"context"

	"github.com/google/uuid"

	"github.com/connectday/booking-api/internal/model"
)

type PartnerStore struct {
	Partners map[uuid.UUID]*model.Partner
}

func NewPartnerStore() *PartnerStore {
	return &PartnerStore{Partners: map[uuid.UUID]*model.Partner{}}
}

func (s *PartnerStore) List(ctx context.Context) ([]*model.Partner, error) {
	out := []*model.Partner{}
	for _, p := range s.Partners {
		out = append(out, p)
	}
	return out, nil
}

func (s *PartnerStore) Get(ctx context.Context, id uuid.UUID) (*model.Partner, error) {
	return s.Partners[id], nil
}

func (s *PartnerStore) Create(ctx context.Context, p *model.Partner) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.Partners[p.ID] = p
	return nil
}

type EntrepreneurStore struct {
	Entrepreneurs map[uuid.UUID]*model.Entrepreneur
}

func NewEntrepreneurStore() *EntrepreneurStore {
	return &EntrepreneurStore{Entrepreneurs: map[uuid.UUID]*model.Entrepreneur{}}
}

func (s *EntrepreneurStore) List(ctx context.Context) ([]*model.Entrepreneur, error) {
	out := []*model.Entrepreneur{}
	for _, e := range s.Entrepreneurs {
		out = append(out, e)
	}
	return out, nil
}

func (s *EntrepreneurStore) Get(ctx context.Context, id uuid.UUID) (*model.Entrepreneur, error) {
	return s.Entrepreneurs[id], nil
}

func (s *EntrepreneurStore) Create(ctx context.Context, e *model.Entrepreneur) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	s.Entrepreneurs[e.ID] = e
	return nil
}

type SlotStore struct {
	Slots map[uuid.UUID]*model.Slot

	// DeleteErr, when set, is returned by Delete instead of removing.
	DeleteErr error
}

func NewSlotStore() *SlotStore {
	return &SlotStore{Slots: map[uuid.UUID]*model.Slot{}}
}

func (s *SlotStore) ListByDate(ctx context.Context, date model.Date) ([]*model.Slot, error) {
	out := []*model.Slot{}
	for _, slot := range s.Slots {
		if slot.Date.Equal(date) {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (s *SlotStore) Find(ctx context.Context, partnerID uuid.UUID, date model.Date, startTime string) (*model.Slot, error) {
	for _, slot := range s.Slots {
		if slot.PartnerID == partnerID && slot.Date.Equal(date) && slot.StartTime == startTime {
			return slot, nil
		}
	}
	return nil, nil
}

func (s *SlotStore) Create(ctx context.Context, slot *model.Slot) error {
	slot.ID = uuid.New()
	s.Slots[slot.ID] = slot
	return nil
}

func (s *SlotStore) Delete(ctx context.Context, id uuid.UUID) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.Slots, id)
	return nil
}

type AppointmentStore struct {
	Appointments map[uuid.UUID]*model.Appointment

	// CreateErr and DeleteErr, when set, are returned instead of mutating.
	// Used to simulate constraint violations and delete races surfaced by
	// the database.
	CreateErr error
	DeleteErr error
}

func NewAppointmentStore() *AppointmentStore {
	return &AppointmentStore{Appointments: map[uuid.UUID]*model.Appointment{}}
}

func (s *AppointmentStore) ListByDate(ctx context.Context, date model.Date) ([]*model.Appointment, error) {
	out := []*model.Appointment{}
	for _, a := range s.Appointments {
		if a.Date.Equal(date) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *AppointmentStore) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.Appointments[id], nil
}

func (s *AppointmentStore) Create(ctx context.Context, apt *model.Appointment) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	apt.ID = uuid.New()
	s.Appointments[apt.ID] = apt
	return nil
}

func (s *AppointmentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if s.DeleteErr != nil {
		return s.DeleteErr
	}
	delete(s.Appointments, id)
	return nil
}

func (s *AppointmentStore) ExistsForSlot(ctx context.Context, partnerID uuid.UUID, date model.Date, startTime string) (bool, error) {
	for _, a := range s.Appointments {
		if a.PartnerID == partnerID && a.Date.Equal(date) && a.StartTime == startTime {
			return true, nil
		}
	}
	return false, nil
}

func (s *AppointmentStore) ExistsForEntrepreneurAt(ctx context.Context, entrepreneurID uuid.UUID, date model.Date, startTime string) (bool, error) {
	for _, a := range s.Appointments {
		if a.EntrepreneurID == entrepreneurID && a.Date.Equal(date) && a.StartTime == startTime {
			return true, nil
		}
	}
	return false, nil
}

func (s *AppointmentStore) ExistsForPair(ctx context.Context, entrepreneurID, partnerID uuid.UUID, date model.Date) (bool, error) {
	for _, a := range s.Appointments {
		if a.EntrepreneurID == entrepreneurID && a.PartnerID == partnerID && a.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}
