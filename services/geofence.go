package services

import (
	"fmt"
	"math"
	"time"

	"github.com/ontimesolutions/restaurant-audit/models"
	"github.com/ontimesolutions/restaurant-audit/utils"
	"gorm.io/gorm"
)

const (
	earthRadiusMeters     = 6371000.0
	defaultLocationRadius = 100.0
)

type GeofenceService struct {
	DB *gorm.DB
}

func NewGeofenceService(db *gorm.DB) *GeofenceService {
	return &GeofenceService{DB: db}
}

// DistanceMeters computes the great-circle distance between two points
// using the haversine formula.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180

	dLat := (lat2 - lat1) * degToRad
	dLon := (lon2 - lon1) * degToRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

type LocationResult struct {
	WithinRange    bool    `json:"within_range"`
	DistanceMeters float64 `json:"distance_meters"`
	AllowedRadius  float64 `json:"allowed_radius"`
	Message        string  `json:"message"`
}

// WithinRange validates a submitted position against the restaurant's
// geofence. Restaurants without configured coordinates impose no
// location constraint, so the check passes (explicit fail-open policy).
// Every call appends a LocationCheck log entry; a logging failure never
// blocks the result.
func (gs *GeofenceService) WithinRange(restaurant *models.Restaurant, userID uint, lat, lon float64, now time.Time) LocationResult {
	radius := restaurant.AllowedRadius()

	result := LocationResult{
		WithinRange:   true,
		AllowedRadius: radius,
	}

	if !restaurant.HasCoordinates() {
		result.Message = "no coordinates configured for this restaurant, location check skipped"
	} else {
		result.DistanceMeters = DistanceMeters(*restaurant.Latitude, *restaurant.Longitude, lat, lon)
		result.WithinRange = result.DistanceMeters <= radius
		if result.WithinRange {
			result.Message = fmt.Sprintf("within range: %.0f m from %s (allowed %.0f m)",
				result.DistanceMeters, restaurant.Name, radius)
		} else {
			result.Message = fmt.Sprintf("you are %.0f m away from %s, outside the allowed %.0f m radius",
				result.DistanceMeters, restaurant.Name, radius)
		}
	}

	check := models.LocationCheck{
		RestaurantID:   restaurant.ID,
		UserID:         userID,
		CheckedAt:      now,
		Latitude:       lat,
		Longitude:      lon,
		DistanceMeters: result.DistanceMeters,
		RadiusUsed:     radius,
		WithinRange:    result.WithinRange,
	}
	if err := gs.DB.Create(&check).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to write location check for restaurant %d: %v", restaurant.ID, err)
	}

	return result
}
