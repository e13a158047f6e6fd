package models

// StationCounter — последний выданный номер позиции станции.
type StationCounter struct {
	StationID  string `gorm:"primaryKey;type:varchar(36)"`
	LastIssued int64  `gorm:"not null"`

	Station Station `gorm:"foreignKey:StationID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (StationCounter) TableName() string {
	return "station_counters"
}
