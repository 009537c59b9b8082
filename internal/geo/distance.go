package geo

import (
	"fmt"
	"math"
)

// earthRadiusKm - средний радиус Земли для формулы гаверсинусов
const earthRadiusKm = 6371.0

// ErrInvalidCoordinate возвращается при некорректных координатах
type ErrInvalidCoordinate struct {
	Latitude  float64
	Longitude float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate: lat=%v lon=%v", e.Latitude, e.Longitude)
}

// ValidateCoordinate проверяет широту и долготу на NaN и выход за диапазон
func ValidateCoordinate(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) ||
		lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return &ErrInvalidCoordinate{Latitude: lat, Longitude: lon}
	}
	return nil
}

// DistanceKm вычисляет расстояние между двумя точками по формуле гаверсинусов.
// Чистая функция: симметрична и возвращает 0 для совпадающих точек.
func DistanceKm(lat1, lon1, lat2, lon2 float64) (float64, error) {
	if err := ValidateCoordinate(lat1, lon1); err != nil {
		return 0, err
	}
	if err := ValidateCoordinate(lat2, lon2); err != nil {
		return 0, err
	}

	if lat1 == lat2 && lon1 == lon2 {
		return 0, nil
	}

	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c, nil
}
