package models

// Station is a monitoring site. Rows are seeded externally; the pipeline only
// reads station IDs to attribute simulated measurements.
type Station struct {
	StationID   int64   `gorm:"column:station_id;primaryKey;autoIncrement" json:"station_id"`
	StationName string  `gorm:"type:varchar(100);not null" json:"station_name"`
	CityZone    string  `gorm:"type:varchar(50);index" json:"city_zone"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	SensorType  string  `gorm:"type:varchar(50)" json:"sensor_type"`
	Status      string  `gorm:"type:varchar(20);index" json:"status"`
}

func (Station) TableName() string {
	return "stations"
}
