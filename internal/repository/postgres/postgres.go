package postgres

import (
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/connectday/booking-api/internal/repository"
	"github.com/connectday/booking-api/pkg/metrics"
)

// base carries the handle and instrumentation shared by every repository.
type base struct {
	db *sqlx.DB
	m  *metrics.Metrics
}

// observe records one database operation. Meant to be deferred with a named
// error so the status label reflects the outcome.
func (b base) observe(operation string, start time.Time, err *error) {
	if b.m == nil {
		return
	}
	status := "success"
	if err != nil && *err != nil {
		status = "error"
	}
	b.m.DatabaseOperations.WithLabelValues(operation, status).Inc()
	b.m.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

type partnerRepository struct {
	base
}

type entrepreneurRepository struct {
	base
}

type slotRepository struct {
	base
}

type appointmentRepository struct {
	base
}

func NewPartnerRepository(db *sqlx.DB, m *metrics.Metrics) repository.PartnerRepository {
	return &partnerRepository{base{db: db, m: m}}
}

func NewEntrepreneurRepository(db *sqlx.DB, m *metrics.Metrics) repository.EntrepreneurRepository {
	return &entrepreneurRepository{base{db: db, m: m}}
}

func NewSlotRepository(db *sqlx.DB, m *metrics.Metrics) repository.SlotRepository {
	return &slotRepository{base{db: db, m: m}}
}

func NewAppointmentRepository(db *sqlx.DB, m *metrics.Metrics) repository.AppointmentRepository {
	return &appointmentRepository{base{db: db, m: m}}
}

// IsUniqueViolation reports whether err is a postgres unique-constraint
// violation on the named constraint. The booking service leans on this: the
// constraints are the final arbiter for conflicts racing past the pre-checks.
func IsUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == "23505" && pqErr.Constraint == constraint
}

// Constraint names from migrations/schema.sql.
const (
	ConstraintSlotKey            = "available_slots_partner_date_time_key"
	ConstraintAppointmentSlot    = "appointments_partner_date_time_key"
	ConstraintAppointmentTime    = "appointments_entrepreneur_date_time_key"
	ConstraintAppointmentPairDay = "appointments_entrepreneur_partner_date_key"
)
