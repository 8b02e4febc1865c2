// Package alerting derives alert rows from anomaly flags and fixed
// pollutant thresholds. Generation is pure: the same batch and detection
// results always produce the same alerts, and duplicates across retried
// cycles are tolerated downstream rather than deduplicated here.
package alerting

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/jinank/smart-aqms/internal/detector"
	"github.com/jinank/smart-aqms/internal/models"
)

const (
	SeverityModerate = "Moderate"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

const (
	TypeOutlier  = "Outlier Detected"
	TypePM25High = "High PM2.5"
	TypePM25     = "PM2.5 Alert"
	TypeCO2      = "CO₂ Alert"
)

const (
	pm25CriticalThreshold = 100.0
	pm25HighThreshold     = 55.0
	co2Threshold          = 800.0
	anomalyHighScore      = 5.0
)

// Generate combines two independent rule sets: anomaly-derived alerts from
// the detector's flags, and fixed-threshold alerts evaluated on every
// reading regardless of its anomaly status. One reading may yield zero, one,
// or several alerts.
func Generate(batch []models.Reading, results []detector.Result) []models.Alert {
	var alerts []models.Alert

	for i, res := range results {
		if i >= len(batch) || !res.Anomalous {
			continue
		}
		r := batch[i]
		severity := SeverityModerate
		if res.Score > anomalyHighScore {
			severity = SeverityHigh
		}
		alerts = append(alerts, models.Alert{
			StationID:    r.StationID,
			AlertType:    TypeOutlier,
			Severity:     severity,
			Message:      fmt.Sprintf("Anomaly: PM2.5=%.1f, CO₂=%.0f ppm", r.PM25, r.CO2PPM),
			AnomalyScore: res.Score,
			Details:      details(r),
		})
	}

	for _, r := range batch {
		if r.PM25 > pm25CriticalThreshold {
			alerts = append(alerts, models.Alert{
				StationID:    r.StationID,
				AlertType:    TypePM25High,
				Severity:     SeverityCritical,
				Message:      fmt.Sprintf("PM2.5 %.1f µg/m³", r.PM25),
				AnomalyScore: r.PM25 / 100,
				Details:      details(r),
			})
		} else if r.PM25 > pm25HighThreshold {
			alerts = append(alerts, models.Alert{
				StationID:    r.StationID,
				AlertType:    TypePM25,
				Severity:     SeverityHigh,
				Message:      fmt.Sprintf("PM2.5 %.1f µg/m³", r.PM25),
				AnomalyScore: r.PM25 / 100,
				Details:      details(r),
			})
		}
		if r.CO2PPM > co2Threshold {
			alerts = append(alerts, models.Alert{
				StationID:    r.StationID,
				AlertType:    TypeCO2,
				Severity:     SeverityModerate,
				Message:      fmt.Sprintf("CO₂ %.0f ppm", r.CO2PPM),
				AnomalyScore: r.CO2PPM / 1000,
				Details:      details(r),
			})
		}
	}

	return alerts
}

func details(r models.Reading) datatypes.JSON {
	raw, err := json.Marshal(map[string]any{
		"pm25":    r.PM25,
		"co2_ppm": r.CO2PPM,
		"ts":      r.TS,
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
