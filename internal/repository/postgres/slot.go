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

func (r *slotRepository) ListByDate(ctx context.Context, date model.Date) (_ []*model.Slot, err error) {
	defer r.observe("slot_list", time.Now(), &err)

	query := `
		SELECT s.id, s.partner_id, s.date, s.start_time, s.created_at,
		       p.name AS partner_name
		FROM available_slots s
		JOIN partners p ON p.id = s.partner_id
		WHERE s.date = $1
		ORDER BY s.start_time ASC, p.name ASC
	`
	slots := []*model.Slot{}
	if err := r.db.SelectContext(ctx, &slots, query, date); err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	return slots, nil
}

func (r *slotRepository) Find(ctx context.Context, partnerID uuid.UUID, date model.Date, startTime string) (_ *model.Slot, err error) {
	defer r.observe("slot_find", time.Now(), &err)

	query := `
		SELECT s.id, s.partner_id, s.date, s.start_time, s.created_at,
		       p.name AS partner_name
		FROM available_slots s
		JOIN partners p ON p.id = s.partner_id
		WHERE s.partner_id = $1 AND s.date = $2 AND s.start_time = $3
	`
	var slot model.Slot
	if err := r.db.GetContext(ctx, &slot, query, partnerID, date, startTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}
	return &slot, nil
}

func (r *slotRepository) Create(ctx context.Context, slot *model.Slot) (err error) {
	defer r.observe("slot_create", time.Now(), &err)

	query := `
		INSERT INTO available_slots (id, partner_id, date, start_time, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	slot.ID = uuid.New()
	slot.CreatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query,
		slot.ID,
		slot.PartnerID,
		slot.Date,
		slot.StartTime,
		slot.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create slot: %w", err)
	}
	return nil
}

func (r *slotRepository) Delete(ctx context.Context, id uuid.UUID) (err error) {
	defer r.observe("slot_delete", time.Now(), &err)

	query := `
		DELETE FROM available_slots
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
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
