package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/connectday/booking-api/internal/model"
)

func (r *appointmentRepository) ListByDate(ctx context.Context, date model.Date) (_ []*model.Appointment, err error) {
	defer r.observe("appointment_list", time.Now(), &err)

	query := `
		SELECT a.id, a.partner_id, a.entrepreneur_id, a.date, a.start_time, a.created_at,
		       p.name AS partner_name, e.name AS entrepreneur_name
		FROM appointments a
		JOIN partners p ON p.id = a.partner_id
		JOIN entrepreneurs e ON e.id = a.entrepreneur_id
		WHERE a.date = $1
		ORDER BY a.start_time ASC, p.name ASC
	`
	appointments := []*model.Appointment{}
	if err := r.db.SelectContext(ctx, &appointments, query, date); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Appointment, err error) {
	defer r.observe("appointment_get", time.Now(), &err)

	query := `
		SELECT a.id, a.partner_id, a.entrepreneur_id, a.date, a.start_time, a.created_at,
		       p.name AS partner_name, e.name AS entrepreneur_name
		FROM appointments a
		JOIN partners p ON p.id = a.partner_id
		JOIN entrepreneurs e ON e.id = a.entrepreneur_id
		WHERE a.id = $1
	`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) (err error) {
	defer r.observe("appointment_create", time.Now(), &err)

	query := `
		INSERT INTO appointments (id, partner_id, entrepreneur_id, date, start_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()

	// Unique-violation errors pass through unwrapped inside %w so the service
	// can map constraint names to conflict kinds.
	if _, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PartnerID,
		appointment.EntrepreneurID,
		appointment.Date,
		appointment.StartTime,
		appointment.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer r.observe("appointment_delete", time.Now(), &err)

	query := `
		DELETE FROM appointments
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *appointmentRepository) ExistsForSlot(ctx context.Context, partnerID uuid.UUID, date model.Date, startTime string) (_ bool, err error) {
	defer r.observe("appointment_exists_slot", time.Now(), &err)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE partner_id = $1 AND date = $2 AND start_time = $3
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, partnerID, date, startTime); err != nil {
		return false, fmt.Errorf("failed to check partner slot: %w", err)
	}
	return exists, nil
}

func (r *appointmentRepository) ExistsForEntrepreneurAt(ctx context.Context, entrepreneurID uuid.UUID, date model.Date, startTime string) (_ bool, err error) {
	defer r.observe("appointment_exists_time", time.Now(), &err)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE entrepreneur_id = $1 AND date = $2 AND start_time = $3
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, entrepreneurID, date, startTime); err != nil {
		return false, fmt.Errorf("failed to check entrepreneur time: %w", err)
	}
	return exists, nil
}

func (r *appointmentRepository) ExistsForPair(ctx context.Context, entrepreneurID, partnerID uuid.UUID, date model.Date) (_ bool, err error) {
	defer r.observe("appointment_exists_pair", time.Now(), &err)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE entrepreneur_id = $1 AND partner_id = $2 AND date = $3
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, entrepreneurID, partnerID, date); err != nil {
		return false, fmt.Errorf("failed to check partner pairing: %w", err)
	}
	return exists, nil
}
