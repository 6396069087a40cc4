package shift

import "time"

type Shift struct {
	ID              int64      `gorm:"primaryKey"`
	UserID          string     `gorm:"column:user_id;not null;index"`
	ShiftStart      time.Time  `gorm:"column:shift_start;not null"`
	ShiftEnd        *time.Time `gorm:"column:shift_end"`
	DurationSeconds *int64     `gorm:"column:duration_seconds"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Shift) TableName() string {
	return "shifts"
}
