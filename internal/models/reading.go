package models

import "time"

// Reading is one sensor measurement. Rows are immutable after insert; the
// pipeline refers back to them only by RecordID.
type Reading struct {
	RecordID     int64     `gorm:"column:record_id;primaryKey;autoIncrement" json:"record_id"`
	StationID    int64     `gorm:"column:station_id;not null;index" json:"station_id"`
	TS           time.Time `gorm:"column:ts;type:timestamptz;not null;index" json:"ts"`
	PM25         float64   `gorm:"column:pm25;not null" json:"pm25"`
	CO2PPM       float64   `gorm:"column:co2_ppm;not null" json:"co2_ppm"`
	TemperatureC float64   `gorm:"column:temperature_c;not null" json:"temperature_c"`
	Humidity     float64   `gorm:"column:humidity;not null" json:"humidity"`
	WindSpeed    float64   `gorm:"column:wind_speed;not null" json:"wind_speed"`
}

func (Reading) TableName() string {
	return "air_quality"
}

// Features returns the measurement vector in the fixed order the model layer
// expects: pm25, co2_ppm, temperature_c, humidity, wind_speed.
func (r Reading) Features() []float64 {
	return []float64{r.PM25, r.CO2PPM, r.TemperatureC, r.Humidity, r.WindSpeed}
}
