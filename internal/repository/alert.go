package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/community_alert_engine/internal/models"
	"github.com/shenikar/community_alert_engine/internal/service"
)

// alertCacheTTL - срок жизни тревоги в кеше
const alertCacheTTL = 5 * time.Minute

type AlertRepository struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewAlertRepository(db *pgxpool.Pool, redisClient *redis.Client) service.AlertRepository {
	return &AlertRepository{
		db:          db,
		redisClient: redisClient,
	}
}

const alertColumns = `
	id,
	category,
	status,
	title,
	description,
	author_id,
	ST_Y(location::geometry) as latitude,
	ST_X(location::geometry) as longitude,
	address,
	city,
	neighborhood,
	reliability_score,
	created_at,
	updated_at,
	resolved_at,
	resolved_by
`

func scanAlert(row pgx.Row) (*models.Alert, error) {
	alert := &models.Alert{}
	err := row.Scan(
		&alert.ID,
		&alert.Category,
		&alert.Status,
		&alert.Title,
		&alert.Description,
		&alert.AuthorID,
		&alert.Latitude,
		&alert.Longitude,
		&alert.Address,
		&alert.City,
		&alert.Neighborhood,
		&alert.ReliabilityScore,
		&alert.CreatedAt,
		&alert.UpdatedAt,
		&alert.ResolvedAt,
		&alert.ResolvedBy,
	)
	if err != nil {
		return nil, err
	}
	return alert, nil
}

// Create создает новую запись о тревоге в бд
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) error {
	query := `
		INSERT INTO alerts (category, status, title, description, author_id, location, address, city, neighborhood, reliability_score)
		VALUES ($1, $2, $3, $4, $5,
			CASE WHEN $6::float8 IS NULL THEN NULL
			     ELSE ST_SetSRID(ST_MakePoint($7, $6), 4326)::geography END,
			$8, $9, $10, $11)
		RETURNING id, created_at, updated_at;
	`
	err := r.db.QueryRow(ctx, query,
		alert.Category,
		alert.Status,
		alert.Title,
		alert.Description,
		alert.AuthorID,
		alert.Latitude,
		alert.Longitude,
		alert.Address,
		alert.City,
		alert.Neighborhood,
		alert.ReliabilityScore,
	).Scan(&alert.ID, &alert.CreatedAt, &alert.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create alert: %w", err)
	}
	return nil
}

// GetByID возвращает тревогу по ее UUID
func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1;`

	alert, err := scanAlert(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &service.NotFoundError{Entity: "alert", ID: id}
		}
		return nil, fmt.Errorf("failed to get alert by id: %w", err)
	}
	return alert, nil
}

// UpdateStatus сохраняет новый статус и отметки о разрешении
func (r *AlertRepository) UpdateStatus(ctx context.Context, alert *models.Alert) error {
	query := `
		UPDATE alerts SET
			status = $1,
			resolved_at = $2,
			resolved_by = $3,
			updated_at = NOW()
		WHERE id = $4;
	`
	cmdTag, err := r.db.Exec(ctx, query,
		alert.Status,
		alert.ResolvedAt,
		alert.ResolvedBy,
		alert.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert status: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return &service.NotFoundError{Entity: "alert", ID: alert.ID}
	}
	return nil
}

// UpdateScore сохраняет пересчитанный рейтинг достоверности
func (r *AlertRepository) UpdateScore(ctx context.Context, id uuid.UUID, score float64) error {
	query := `
		UPDATE alerts SET
			reliability_score = $1,
			updated_at = NOW()
		WHERE id = $2;
	`
	cmdTag, err := r.db.Exec(ctx, query, score, id)
	if err != nil {
		return fmt.Errorf("failed to update alert score: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return &service.NotFoundError{Entity: "alert", ID: id}
	}
	return nil
}

// List возвращает список тревог с пагинацией и необязательными фильтрами по статусу и категории
func (r *AlertRepository) List(ctx context.Context, page, pageSize int, status models.AlertStatus, category models.AlertCategory) ([]*models.Alert, error) {
	offset := (page - 1) * pageSize

	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4;
	`
	rows, err := r.db.Query(ctx, query, string(status), string(category), pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	return collectAlerts(rows)
}

// ListByAuthor возвращает все тревоги автора для расчета его рейтинга доверия
func (r *AlertRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE author_id = $1 ORDER BY created_at DESC;`

	rows, err := r.db.Query(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts by author: %w", err)
	}
	defer rows.Close()

	return collectAlerts(rows)
}

// ListCreatedBetween возвращает тревоги, созданные в полуинтервале [start, end)
func (r *AlertRepository) ListCreatedBetween(ctx context.Context, start, end time.Time) ([]*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE created_at >= $1 AND created_at < $2;`

	rows, err := r.db.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts in range: %w", err)
	}
	defer rows.Close()

	return collectAlerts(rows)
}

func collectAlerts(rows pgx.Rows) ([]*models.Alert, error) {
	alerts := make([]*models.Alert, 0)
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert row: %w", err)
		}
		alerts = append(alerts, alert)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error alerts iteration: %w", err)
	}
	return alerts, nil
}

// GetAlertFromCache пытается получить тревогу из Redis
func (r *AlertRepository) GetAlertFromCache(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	key := fmt.Sprintf("alert:%s", id.String())
	val, err := r.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get alert from cache: %w", err)
	}

	alert := &models.Alert{}
	if err := json.Unmarshal(val, alert); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert from cache: %w", err)
	}
	return alert, nil
}

// SetAlertCache сохраняет тревогу в Redis
func (r *AlertRepository) SetAlertCache(ctx context.Context, alert *models.Alert) error {
	key := fmt.Sprintf("alert:%s", alert.ID.String())
	val, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert for cache: %w", err)
	}
	if err := r.redisClient.Set(ctx, key, val, alertCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set alert in cache: %w", err)
	}
	return nil
}

// InvalidateAlertCache удаляет тревогу из Redis кэша
func (r *AlertRepository) InvalidateAlertCache(ctx context.Context, id uuid.UUID) error {
	key := fmt.Sprintf("alert:%s", id.String())
	if err := r.redisClient.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate alert cache: %w", err)
	}
	return nil
}
