package models

import "time"

// Station — станция с собственной очередью.
type Station struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)"`
	Name       string    `gorm:"type:varchar(255);not null"`
	ManagerKey string    `gorm:"type:varchar(64);not null"` // Ключ оператора для просмотра и снятия с очереди
	CreatedAt  time.Time `gorm:"index"`
}

func (Station) TableName() string {
	return "stations"
}
