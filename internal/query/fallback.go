package query

import (
	"time"

	"github.com/PratikDhanave/safedrive-service/internal/models"
)

// Canned responses served when the store cannot answer. Shapes match the
// real responses so the dashboard renders them unchanged.

const (
	placeholderSpeed     = 42
	placeholderHeartRate = 75
)

// Default map position: University of Ghana, Legon.
const (
	defaultLat = 5.6545
	defaultLng = -0.1869
)

const day = 24 * time.Hour

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

func FallbackSensorReading(now time.Time) models.SensorReading {
	return models.SensorReading{
		ID: 1,
		Payload: models.Payload{
			Alcohol:    0.05,
			Vibration:  0.2,
			Distance:   150,
			Seatbelt:   true,
			Impact:     0.1,
			LCDDisplay: sptr("SYSTEM OK"),
		},
		HeartRate: fptr(placeholderHeartRate),
		Timestamp: now.UTC(),
		CreatedAt: now.UTC(),
	}
}

func FallbackStats() models.Stats {
	return models.Stats{
		TotalAccidents:     5,
		MaxAlcohol:         0.8,
		AvgAlcohol:         0.3,
		MaxImpact:          0.9,
		SeatbeltViolations: 2,
		TotalSensorPoints:  120,
	}
}

func FallbackMapPoints(now time.Time) []models.MapPoint {
	now = now.UTC()
	return []models.MapPoint{
		{ID: "abc123", Lat: 5.6545, Lng: -0.1869, Timestamp: now.Add(-1 * day)},
		{ID: "def456", Lat: 5.6540, Lng: -0.1875, Timestamp: now.Add(-2 * day)},
		{ID: "ghi789", Lat: 5.6550, Lng: -0.1880, Timestamp: now.Add(-3 * day)},
	}
}

func FallbackAccidents(now time.Time) []models.AccidentEvent {
	now = now.UTC()
	return []models.AccidentEvent{
		{
			ID: "abc123",
			Payload: models.Payload{
				Alcohol:    0.02,
				Vibration:  0.8,
				Distance:   20,
				Seatbelt:   true,
				Impact:     0.9,
				Lat:        fptr(5.6545),
				Lng:        fptr(-0.1869),
				LCDDisplay: sptr("ACCIDENT DETECTED"),
			},
			Timestamp: now.Add(-1 * day),
			CreatedAt: now.Add(-1 * day),
		},
		{
			ID: "def456",
			Payload: models.Payload{
				Alcohol:    0.04,
				Vibration:  0.7,
				Distance:   15,
				Seatbelt:   false,
				Impact:     0.8,
				Lat:        fptr(5.6540),
				Lng:        fptr(-0.1875),
				LCDDisplay: sptr("ACCIDENT DETECTED"),
			},
			Timestamp: now.Add(-2 * day),
			CreatedAt: now.Add(-2 * day),
		},
	}
}

func FallbackCarPosition() models.CarPosition {
	return models.CarPosition{Lat: defaultLat, Lng: defaultLng, Speed: placeholderSpeed}
}
