package alerting

import (
	"testing"

	"github.com/jinank/smart-aqms/internal/detector"
	"github.com/jinank/smart-aqms/internal/models"
)

func findAlert(alerts []models.Alert, alertType string) *models.Alert {
	for i := range alerts {
		if alerts[i].AlertType == alertType {
			return &alerts[i]
		}
	}
	return nil
}

func TestGenerateNormalReadingNoAlerts(t *testing.T) {
	batch := []models.Reading{{StationID: 1, PM25: 15, CO2PPM: 420}}
	results := []detector.Result{{Score: 0.4, Anomalous: false}}
	if alerts := Generate(batch, results); len(alerts) != 0 {
		t.Fatalf("got %d alerts for a normal reading, want 0", len(alerts))
	}
}

func TestGenerateCriticalPM25(t *testing.T) {
	batch := []models.Reading{{StationID: 3, PM25: 207.5, CO2PPM: 420}}
	alerts := Generate(batch, []detector.Result{{}})
	a := findAlert(alerts, TypePM25High)
	if a == nil {
		t.Fatalf("no %q alert, got %+v", TypePM25High, alerts)
	}
	if a.Severity != SeverityCritical {
		t.Fatalf("severity = %q, want %q", a.Severity, SeverityCritical)
	}
	if a.Message != "PM2.5 207.5 µg/m³" {
		t.Fatalf("message = %q", a.Message)
	}
	if a.AnomalyScore != 2.075 {
		t.Fatalf("score = %v, want 2.075", a.AnomalyScore)
	}
	if a.StationID != 3 {
		t.Fatalf("station = %d, want 3", a.StationID)
	}
}

func TestGenerateHighPM25(t *testing.T) {
	batch := []models.Reading{{StationID: 1, PM25: 60, CO2PPM: 420}}
	alerts := Generate(batch, []detector.Result{{}})
	if findAlert(alerts, TypePM25High) != nil {
		t.Fatalf("60 µg/m³ escalated to critical")
	}
	a := findAlert(alerts, TypePM25)
	if a == nil {
		t.Fatalf("no %q alert, got %+v", TypePM25, alerts)
	}
	if a.Severity != SeverityHigh {
		t.Fatalf("severity = %q, want %q", a.Severity, SeverityHigh)
	}
}

func TestGenerateCO2(t *testing.T) {
	batch := []models.Reading{{StationID: 2, PM25: 10, CO2PPM: 950}}
	alerts := Generate(batch, []detector.Result{{}})
	a := findAlert(alerts, TypeCO2)
	if a == nil {
		t.Fatalf("no %q alert, got %+v", TypeCO2, alerts)
	}
	if a.Severity != SeverityModerate {
		t.Fatalf("severity = %q, want %q", a.Severity, SeverityModerate)
	}
	if a.Message != "CO₂ 950 ppm" {
		t.Fatalf("message = %q", a.Message)
	}
	if a.AnomalyScore != 0.95 {
		t.Fatalf("score = %v, want 0.95", a.AnomalyScore)
	}
}

func TestGenerateAnomalySeveritySplit(t *testing.T) {
	batch := []models.Reading{
		{StationID: 1, PM25: 20, CO2PPM: 430},
		{StationID: 2, PM25: 22, CO2PPM: 450},
	}
	results := []detector.Result{
		{Score: 2.5, Anomalous: true},
		{Score: 6.1, Anomalous: true},
	}
	alerts := Generate(batch, results)
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2", len(alerts))
	}
	if alerts[0].AlertType != TypeOutlier || alerts[0].Severity != SeverityModerate {
		t.Fatalf("low-score anomaly = %q/%q, want %q/%q",
			alerts[0].AlertType, alerts[0].Severity, TypeOutlier, SeverityModerate)
	}
	if alerts[1].Severity != SeverityHigh {
		t.Fatalf("high-score anomaly severity = %q, want %q", alerts[1].Severity, SeverityHigh)
	}
	if alerts[0].Message != "Anomaly: PM2.5=20.0, CO₂=430 ppm" {
		t.Fatalf("message = %q", alerts[0].Message)
	}
	if alerts[1].AnomalyScore != 6.1 {
		t.Fatalf("anomaly score = %v, want the detector score", alerts[1].AnomalyScore)
	}
}

func TestGenerateRulesStack(t *testing.T) {
	// One anomalous reading above both pollutant thresholds produces three
	// independent alerts.
	batch := []models.Reading{{StationID: 5, PM25: 150, CO2PPM: 900}}
	results := []detector.Result{{Score: 7.2, Anomalous: true}}
	alerts := Generate(batch, results)
	if len(alerts) != 3 {
		t.Fatalf("got %d alerts, want 3: %+v", len(alerts), alerts)
	}
	for _, want := range []string{TypeOutlier, TypePM25High, TypeCO2} {
		if findAlert(alerts, want) == nil {
			t.Fatalf("missing %q alert", want)
		}
	}
}

func TestGenerateResultsShorterThanBatch(t *testing.T) {
	batch := []models.Reading{
		{StationID: 1, PM25: 10, CO2PPM: 400},
		{StationID: 2, PM25: 120, CO2PPM: 400},
	}
	alerts := Generate(batch, []detector.Result{{Score: 9, Anomalous: true}})
	// Threshold rules still cover the whole batch.
	if findAlert(alerts, TypePM25High) == nil {
		t.Fatalf("threshold alert missing when results are short")
	}
	if findAlert(alerts, TypeOutlier) == nil {
		t.Fatalf("anomaly alert for covered index missing")
	}
}
