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

func (r *entrepreneurRepository) List(ctx context.Context) (_ []*model.Entrepreneur, err error) {
	defer r.observe("entrepreneur_list", time.Now(), &err)

	query := `
		SELECT id, name, email, created_at
		FROM entrepreneurs
		ORDER BY name ASC
	`
	entrepreneurs := []*model.Entrepreneur{}
	if err := r.db.SelectContext(ctx, &entrepreneurs, query); err != nil {
		return nil, fmt.Errorf("failed to list entrepreneurs: %w", err)
	}
	return entrepreneurs, nil
}

func (r *entrepreneurRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Entrepreneur, err error) {
	defer r.observe("entrepreneur_get", time.Now(), &err)

	query := `
		SELECT id, name, email, created_at
		FROM entrepreneurs
		WHERE id = $1
	`
	var entrepreneur model.Entrepreneur
	if err := r.db.GetContext(ctx, &entrepreneur, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get entrepreneur: %w", err)
	}
	return &entrepreneur, nil
}

func (r *entrepreneurRepository) Create(ctx context.Context, entrepreneur *model.Entrepreneur) (err error) {
	defer r.observe("entrepreneur_create", time.Now(), &err)

	query := `
		INSERT INTO entrepreneurs (id, name, email, created_at)
		VALUES ($1, $2, $3, $4)
	`
	if entrepreneur.ID == uuid.Nil {
		entrepreneur.ID = uuid.New()
	}
	entrepreneur.CreatedAt = time.Now()

	if _, err := r.db.ExecContext(ctx, query, entrepreneur.ID, entrepreneur.Name, entrepreneur.Email, entrepreneur.CreatedAt); err != nil {
		return fmt.Errorf("failed to create entrepreneur: %w", err)
	}
	return nil
}
