package query

import "github.com/PratikDhanave/safedrive-service/internal/models"

// ComputeStats aggregates accident records. Alcohol and impact figures are
// computed over accidents only and are 0 when there are none.
func ComputeStats(accidents []models.AccidentEvent, sensorPoints int64) models.Stats {
	stats := models.Stats{
		TotalAccidents:    len(accidents),
		TotalSensorPoints: sensorPoints,
	}
	if len(accidents) == 0 {
		return stats
	}

	var sum float64
	stats.MaxAlcohol = accidents[0].Alcohol
	stats.MaxImpact = accidents[0].Impact
	for _, a := range accidents {
		sum += a.Alcohol
		if a.Alcohol > stats.MaxAlcohol {
			stats.MaxAlcohol = a.Alcohol
		}
		if a.Impact > stats.MaxImpact {
			stats.MaxImpact = a.Impact
		}
		if !a.Seatbelt {
			stats.SeatbeltViolations++
		}
	}
	stats.AvgAlcohol = sum / float64(len(accidents))

	return stats
}
