package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/community_alert_engine/internal/models"
)

// UserRepository отдает геопозиции и настройки уведомлений пользователей.
// Реализует LocationSource для geo-индекса и репозитории позиций/настроек
// для сервисного слоя.
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FindInBoundingBox возвращает позиции пользователей внутри ограничивающего
// прямоугольника. Пользователи без сохраненной позиции в выборку не попадают.
func (r *UserRepository) FindInBoundingBox(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]*models.UserLocation, error) {
	query := `
		SELECT
			user_id,
			ST_Y(location::geometry) as latitude,
			ST_X(location::geometry) as longitude
		FROM user_locations
		WHERE location && ST_MakeEnvelope($1, $2, $3, $4, 4326)::geography;
	`
	rows, err := r.db.Query(ctx, query, minLon, minLat, maxLon, maxLat)
	if err != nil {
		return nil, fmt.Errorf("failed to find users in bounding box: %w", err)
	}
	defer rows.Close()

	locations := make([]*models.UserLocation, 0)
	for rows.Next() {
		loc := &models.UserLocation{}
		if err := rows.Scan(&loc.UserID, &loc.Latitude, &loc.Longitude); err != nil {
			return nil, fmt.Errorf("failed to scan user location row: %w", err)
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error user locations iteration: %w", err)
	}
	return locations, nil
}

// GetByUserID возвращает последнюю позицию пользователя; nil без ошибки,
// если позиция не сохранена
func (r *UserRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserLocation, error) {
	query := `
		SELECT
			user_id,
			ST_Y(location::geometry) as latitude,
			ST_X(location::geometry) as longitude
		FROM user_locations
		WHERE user_id = $1;
	`
	loc := &models.UserLocation{}
	err := r.db.QueryRow(ctx, query, userID).Scan(&loc.UserID, &loc.Latitude, &loc.Longitude)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user location: %w", err)
	}
	return loc, nil
}

// SaveLocation сохраняет позицию пользователя (последняя известная точка)
func (r *UserRepository) SaveLocation(ctx context.Context, loc *models.UserLocation) error {
	query := `
		INSERT INTO user_locations (user_id, location)
		VALUES ($1, ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography)
		ON CONFLICT (user_id) DO UPDATE SET
			location = EXCLUDED.location,
			updated_at = NOW();
	`
	if _, err := r.db.Exec(ctx, query, loc.UserID, loc.Longitude, loc.Latitude); err != nil {
		return fmt.Errorf("failed to save user location: %w", err)
	}
	return nil
}

// EnabledForCategory возвращает для каждого запрошенного пользователя,
// включены ли у него уведомления по категории. Отсутствие явной настройки
// трактуется как включено.
func (r *UserRepository) EnabledForCategory(ctx context.Context, category models.AlertCategory, userIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	result := make(map[uuid.UUID]bool, len(userIDs))
	for _, id := range userIDs {
		result[id] = true
	}
	if len(userIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT user_id, enabled
		FROM notification_preferences
		WHERE category = $1 AND user_id = ANY($2);
	`
	rows, err := r.db.Query(ctx, query, category, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification preferences: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var enabled bool
		if err := rows.Scan(&id, &enabled); err != nil {
			return nil, fmt.Errorf("failed to scan preference row: %w", err)
		}
		result[id] = enabled
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error preferences iteration: %w", err)
	}
	return result, nil
}

// SetPreference сохраняет настройку уведомлений пользователя по категории
func (r *UserRepository) SetPreference(ctx context.Context, userID uuid.UUID, category models.AlertCategory, enabled bool) error {
	query := `
		INSERT INTO notification_preferences (user_id, category, enabled)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, category) DO UPDATE SET enabled = EXCLUDED.enabled;
	`
	if _, err := r.db.Exec(ctx, query, userID, category, enabled); err != nil {
		return fmt.Errorf("failed to set notification preference: %w", err)
	}
	return nil
}
