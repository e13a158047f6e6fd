package models

import "time"

// QueueEntry — участник в очереди станции. Пара (station_id, participant_id)
// и пара (station_id, position) уникальны.
type QueueEntry struct {
	StationID     string    `gorm:"primaryKey;type:varchar(36);uniqueIndex:idx_queue_entries_station_position,priority:1"`
	ParticipantID string    `gorm:"primaryKey;type:varchar(64);index"`
	Position      int64     `gorm:"not null;uniqueIndex:idx_queue_entries_station_position,priority:2"` // Номер талона, не переиспользуется
	CreatedAt     time.Time // Время вступления в очередь

	Station Station `gorm:"foreignKey:StationID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (QueueEntry) TableName() string {
	return "queue_entries"
}
