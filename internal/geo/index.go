package geo

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/shenikar/community_alert_engine/internal/models"
)

// kmPerDegreeLat - километров в одном градусе широты
const kmPerDegreeLat = 111.0

// minCosLat - нижняя граница cos(lat) при пересчете радиуса в дельту долготы.
// У полюсов cos стремится к нулю; без ограничителя дельта уходит в бесконечность,
// поэтому дельта вырождается в полный диапазон долгот, а точный фильтр
// по гаверсинусам отсекает лишнее.
const minCosLat = 1e-6

// LocationSource отдает позиции пользователей, попавшие в ограничивающий прямоугольник
type LocationSource interface {
	FindInBoundingBox(ctx context.Context, minLat, maxLat, minLon, maxLon float64) ([]*models.UserLocation, error)
}

// Index - поиск пользователей в радиусе от точки.
// Двухфазный фильтр: дешевый прямоугольный пре-фильтр по источнику данных,
// затем точная проверка расстояния по гаверсинусам.
type Index struct {
	source LocationSource
}

func NewIndex(source LocationSource) *Index {
	return &Index{source: source}
}

// FindWithinRadius возвращает кандидатов в радиусе radiusKm от центра,
// отсортированных по возрастанию дистанции (при равенстве - по id пользователя).
// Радиус <= 0 дает пустой результат, это не ошибка.
func (idx *Index) FindWithinRadius(ctx context.Context, centerLat, centerLon, radiusKm float64) ([]*models.CandidateUser, error) {
	if err := ValidateCoordinate(centerLat, centerLon); err != nil {
		return nil, err
	}
	if radiusKm <= 0 {
		return []*models.CandidateUser{}, nil
	}

	latDelta := radiusKm / kmPerDegreeLat

	cosLat := math.Cos(centerLat * math.Pi / 180)
	lonDelta := 180.0
	if cosLat > minCosLat {
		lonDelta = radiusKm / (kmPerDegreeLat * cosLat)
		if lonDelta > 180 {
			lonDelta = 180
		}
	}

	minLat := math.Max(centerLat-latDelta, -90)
	maxLat := math.Min(centerLat+latDelta, 90)
	minLon := math.Max(centerLon-lonDelta, -180)
	maxLon := math.Min(centerLon+lonDelta, 180)

	locations, err := idx.source.FindInBoundingBox(ctx, minLat, maxLat, minLon, maxLon)
	if err != nil {
		return nil, fmt.Errorf("geo: bounding box scan failed: %w", err)
	}

	candidates := make([]*models.CandidateUser, 0, len(locations))
	for _, loc := range locations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dist, err := DistanceKm(centerLat, centerLon, loc.Latitude, loc.Longitude)
		if err != nil {
			// Некорректно сохраненная позиция не должна ронять всю выборку
			continue
		}
		// Прямоугольник шире круга, особенно на высоких широтах
		if dist > radiusKm {
			continue
		}
		candidates = append(candidates, &models.CandidateUser{
			UserID:     loc.UserID,
			Latitude:   loc.Latitude,
			Longitude:  loc.Longitude,
			DistanceKm: dist,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return candidates[i].UserID.String() < candidates[j].UserID.String()
	})

	return candidates, nil
}
