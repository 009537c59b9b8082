package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/shenikar/community_alert_engine/internal/service"
)

type HelpOfferRepository struct {
	db *pgxpool.Pool
}

func NewHelpOfferRepository(db *pgxpool.Pool) service.HelpOfferRepository {
	return &HelpOfferRepository{db: db}
}

// Upsert сохраняет предложение помощи; повторное предложение того же
// пользователя по той же тревоге обновляет существующую запись
func (r *HelpOfferRepository) Upsert(ctx context.Context, offer *models.HelpOffer) error {
	query := `
		INSERT INTO help_offers (alert_id, helper_id, offer_type, description, contact, active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (alert_id, helper_id) DO UPDATE SET
			offer_type = EXCLUDED.offer_type,
			description = EXCLUDED.description,
			contact = EXCLUDED.contact,
			active = EXCLUDED.active
		RETURNING id, created_at;
	`
	err := r.db.QueryRow(ctx, query,
		offer.AlertID,
		offer.HelperID,
		offer.OfferType,
		offer.Description,
		offer.Contact,
		offer.Active,
	).Scan(&offer.ID, &offer.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert help offer: %w", err)
	}
	return nil
}

// ListActiveByAlert возвращает активные предложения помощи по тревоге
func (r *HelpOfferRepository) ListActiveByAlert(ctx context.Context, alertID uuid.UUID) ([]*models.HelpOffer, error) {
	query := `
		SELECT id, alert_id, helper_id, offer_type, description, contact, active, created_at, accepted_at
		FROM help_offers
		WHERE alert_id = $1 AND active = TRUE
		ORDER BY created_at;
	`
	rows, err := r.db.Query(ctx, query, alertID)
	if err != nil {
		return nil, fmt.Errorf("failed to list help offers: %w", err)
	}
	defer rows.Close()

	offers := make([]*models.HelpOffer, 0)
	for rows.Next() {
		offer := &models.HelpOffer{}
		err := rows.Scan(
			&offer.ID,
			&offer.AlertID,
			&offer.HelperID,
			&offer.OfferType,
			&offer.Description,
			&offer.Contact,
			&offer.Active,
			&offer.CreatedAt,
			&offer.AcceptedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan help offer row: %w", err)
		}
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error help offers iteration: %w", err)
	}
	return offers, nil
}

// MarkAccepted отмечает предложение принятым
func (r *HelpOfferRepository) MarkAccepted(ctx context.Context, alertID, helperID uuid.UUID) error {
	query := `
		UPDATE help_offers SET accepted_at = NOW()
		WHERE alert_id = $1 AND helper_id = $2 AND active = TRUE;
	`
	cmdTag, err := r.db.Exec(ctx, query, alertID, helperID)
	if err != nil {
		return fmt.Errorf("failed to accept help offer: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return &service.NotFoundError{Entity: "help offer", ID: alertID}
	}
	return nil
}
