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

func (r *partnerRepository) List(ctx context.Context) (_ []*model.Partner, err error) {
	defer r.observe("partner_list", time.Now(), &err)

	query := `
		SELECT id, name, email, created_at
		FROM partners
		ORDER BY name ASC
	`
	partners := []*model.Partner{}
	if err := r.db.SelectContext(ctx, &partners, query); err != nil {
		return nil, fmt.Errorf("failed to list partners: %w", err)
	}
	return partners, nil
}

func (r *partnerRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Partner, err error) {
	defer r.observe("partner_get", time.Now(), &err)

	query := `
		SELECT id, name, email, created_at
		FROM partners
		WHERE id = $1
	`
	var partner model.Partner
	if err := r.db.GetContext(ctx, &partner, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	return &partner, nil
}

func (r *partnerRepository) Create(ctx context.Context, partner *model.Partner) (err error) {
	defer r.observe("partner_create", time.Now(), &err)

	query := `
		INSERT INTO partners (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if partner.ID == uuid.Nil {
		partner.ID = uuid.New()
	}
	partner.CreatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query, partner.ID, partner.Name, partner.Email, partner.CreatedAt); err != nil {
		return fmt.Errorf("failed to create partner: %w", err)
	}
	return nil
}
