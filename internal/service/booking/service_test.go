package booking

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectday/booking-api/internal/email"
	"github.com/connectday/booking-api/internal/hub"
	"github.com/connectday/booking-api/internal/model"
	"github.com/connectday/booking-api/internal/repository/postgres"
	"github.com/connectday/booking-api/internal/testutil"
	"github.com/connectday/booking-api/pkg/errors"
)

type fixture struct {
	service      *Service
	hub          *hub.Hub
	slots        *testutil.SlotStore
	appointments *testutil.AppointmentStore
	partner      *model.Partner
	partner2     *model.Partner
	entrepreneur *model.Entrepreneur
	other        *model.Entrepreneur
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	partners := testutil.NewPartnerStore()
	entrepreneurs := testutil.NewEntrepreneurStore()
	slots := testutil.NewSlotStore()
	appointments := testutil.NewAppointmentStore()

	partner := &model.Partner{Name: "Partner Chen"}
	partner2 := &model.Partner{Name: "Partner Novak"}
	entrepreneur := &model.Entrepreneur{Name: "Founder Kim"}
	other := &model.Entrepreneur{Name: "Founder Sato"}
	require.NoError(t, partners.Create(context.Background(), partner))
	require.NoError(t, partners.Create(context.Background(), partner2))
	require.NoError(t, entrepreneurs.Create(context.Background(), entrepreneur))
	require.NoError(t, entrepreneurs.Create(context.Background(), other))

	h := hub.New(zerolog.Nop(), nil, 16)
	t.Cleanup(h.Close)
	service := NewService(slots, appointments, partners, entrepreneurs, h, email.NewNoop(), zerolog.Nop())

	return &fixture{
		service:      service,
		hub:          h,
		slots:        slots,
		appointments: appointments,
		partner:      partner,
		partner2:     partner2,
		entrepreneur: entrepreneur,
		other:        other,
	}
}

func (f *fixture) toggle(t *testing.T, partnerID uuid.UUID, date, startTime string) (*model.Slot, bool) {
	t.Helper()
	slot, created, err := f.service.ToggleSlot(context.Background(), &model.ToggleSlotRequest{
		PartnerID: partnerID,
		Date:      date,
		StartTime: startTime,
		Action:    "toggle",
	})
	require.NoError(t, err)
	return slot, created
}

func (f *fixture) book(partnerID, entrepreneurID uuid.UUID, date, startTime string) (*model.Appointment, error) {
	return f.service.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		PartnerID:      partnerID,
		EntrepreneurID: entrepreneurID,
		Date:           date,
		StartTime:      startTime,
	})
}

func assertConflict(t *testing.T, err error, message string) {
	t.Helper()
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, errors.ErrConflict, appErr.Code)
	assert.Equal(t, message, appErr.Message)
}

func TestToggleSlotIsAnIdempotentPair(t *testing.T) {
	f := newFixture(t)

	slot, created := f.toggle(t, f.partner.ID, "2024-06-01", "09:00")
	assert.True(t, created)
	assert.Equal(t, "09:00", slot.StartTime)
	assert.Len(t, f.slots.Slots, 1)

	_, created = f.toggle(t, f.partner.ID, "2024-06-01", "09:00")
	assert.False(t, created)
	assert.Empty(t, f.slots.Slots)
}

func TestToggleSlotBroadcastsEvents(t *testing.T) {
	f := newFixture(t)
	sub := f.hub.Subscribe()
	defer f.hub.Unsubscribe(sub)
	<-sub.C // connected

	f.toggle(t, f.partner.ID, "2024-06-01", "09:00")
	assert.Contains(t, string(<-sub.C), model.EventSlotCreated)

	f.toggle(t, f.partner.ID, "2024-06-01", "09:00")
	assert.Contains(t, string(<-sub.C), model.EventSlotDeleted)
}

func TestCreateAppointmentRequiresOfferedSlot(t *testing.T) {
	f := newFixture(t)

	_, err := f.book(f.partner.ID, f.entrepreneur.ID, "2024-06-01", "09:00")
	assertConflict(t, err, msgSlotUnavailable)
	assert.Empty(t, f.appointments.Appointments)
}

func TestCreateAppointmentRejectsTakenSlot(t *testing.T) {
	f := newFixture(t)
	f.toggle(t, f.partner.ID, "2024-06-01", "09:00")

	_, err := f.book(f.partner.ID, f.entrepreneur.ID, "2024-06-01", "09:00")
	require.NoError(t, err)

	_, err = f.book(f.partner.ID, f.other.ID, "2024-06-01", "09:00")
	assertConflict(t, err, msgSlotTaken)
}

func TestCreateAppointmentRejectsDoubleBookedEntrepreneur(t *testing.T) {
	f := newFixture(t)
	f.toggle(t, f.partner.ID, "2024-06-01", "09:00")
	f.toggle(t, f.partner2.ID, "2024-06-01", "09:00")

	_, err := f.book(f.partner.ID, f.entrepreneur.ID, "2024-06-01", "09:00")
	require.NoError(t, err)

	_, err = f.book(f.partner2.ID, f.entrepreneur.ID, "2024-06-01", "09:00")
	assertConflict(t, err, msgTimeConflict)
}

func TestCreateAppointmentRejectsSamePartnerSameDay(t *testing.T) {
	f := newFixture(t)
	f.toggle(t, f.partner.ID, "2024-06-01", "09:00")
	f.toggle(t, f.partner.ID, "2024-06-01", "09:15")

	_, err := f.book(f.partner.ID, f.entrepreneur.ID, "2024-06-01", "09:00")
	require.NoError(t, err)

	_, err = f.book(f.partner.ID, f.entrepreneur.ID, "2024-06-01", "09:15")
	assertConflict(t, err, msgDuplicatePartner)
}

func TestCreateAppointmentRejectsUnknownIdentities(t *testing.T) {
	f := newFixture(t)
	f.toggle(t, f.partner.ID, "2024-06-01", "09:00")

	_, err := f.book(uuid.New(), f.entrepreneur.ID, "2024-06-01", "09:00")
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrBadRequest, appErr.Code)

	_, err = f.book(f.partner.ID, uuid.New(), "2024-06-01", "09:00")
	appErr, ok = errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrBadRequest, appErr.Code)
}

func TestCreateAppointmentMapsConstraintRace(t *testing.T) {
	// A conflicting insert that slips past the pre-checks surfaces as the
	// same conflict the check would have caught.
	f := newFixture(t)
	f.toggle(t, f.partner.ID, "2024-06-01", "09:00")
	f.appointments.CreateErr = &pq.Error{
		Code:       "23505",
		Constraint: postgres.ConstraintAppointmentTime,
	}

	_, err := f.book(f.partner.ID, f.entrepreneur.ID, "2024-06-01", "09:00")
	assertConflict(t, err, msgTimeConflict)
}

func TestToggleSlotDeleteRaceIsAlreadyDeleted(t *testing.T) {
	// Another toggle removing the row between the lookup and the delete is
	// the same outcome the caller asked for, not a failure.
	f := newFixture(t)
	f.toggle(t, f.partner.ID, "2024-06-01", "09:00")
	f.slots.DeleteErr = sql.ErrNoRows

	slot, created := f.toggle(t, f.partner.ID, "2024-06-01", "09:00")
	assert.False(t, created)
	assert.Equal(t, "09:00", slot.StartTime)
}

func TestCancelAppointmentDeleteRaceIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.toggle(t, f.partner.ID, "2024-06-01", "09:00")
	apt, err := f.book(f.partner.ID, f.entrepreneur.ID, "2024-06-01", "09:00")
	require.NoError(t, err)

	f.appointments.DeleteErr = fmt.Errorf("failed to delete appointment: %w", sql.ErrNoRows)

	_, err = f.service.CancelAppointment(context.Background(), apt.ID)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestCancelAppointmentNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CancelAppointment(context.Background(), uuid.New())
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestBookingScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date, err := model.ParseDate("2024-06-01")
	require.NoError(t, err)

	// Partner opens availability at 09:00.
	f.toggle(t, f.partner.ID, "2024-06-01", "09:00")
	slots, err := f.service.ListSlots(ctx, date)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, f.partner.ID, slots[0].PartnerID)
	assert.Equal(t, "09:00", slots[0].StartTime)

	// Entrepreneur books it.
	apt, err := f.book(f.partner.ID, f.entrepreneur.ID, "2024-06-01", "09:00")
	require.NoError(t, err)
	assert.Equal(t, f.partner.Name, apt.PartnerName)
	assert.Equal(t, f.entrepreneur.Name, apt.EntrepreneurName)

	appointments, err := f.service.ListAppointments(ctx, date)
	require.NoError(t, err)
	require.Len(t, appointments, 1)

	// A second entrepreneur cannot book the same slot.
	_, err = f.book(f.partner.ID, f.other.ID, "2024-06-01", "09:00")
	assertConflict(t, err, msgSlotTaken)

	// Cancelling removes the appointment but leaves the slot offered.
	_, err = f.service.CancelAppointment(ctx, apt.ID)
	require.NoError(t, err)

	appointments, err = f.service.ListAppointments(ctx, date)
	require.NoError(t, err)
	assert.Empty(t, appointments)

	slots, err = f.service.ListSlots(ctx, date)
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestAppointmentEventsCarryTheAffectedDate(t *testing.T) {
	f := newFixture(t)
	f.toggle(t, f.partner.ID, "2024-06-01", "09:00")

	sub := f.hub.Subscribe()
	defer f.hub.Unsubscribe(sub)
	<-sub.C // connected

	apt, err := f.book(f.partner.ID, f.entrepreneur.ID, "2024-06-01", "09:00")
	require.NoError(t, err)

	created := string(<-sub.C)
	assert.Contains(t, created, model.EventAppointmentCreated)
	assert.Contains(t, created, `"date":"2024-06-01"`)

	_, err = f.service.CancelAppointment(context.Background(), apt.ID)
	require.NoError(t, err)

	deleted := string(<-sub.C)
	assert.Contains(t, deleted, model.EventAppointmentDeleted)
	assert.Contains(t, deleted, `"date":"2024-06-01"`)
}
