// File: internal/domain/stress_log.go
package domain

import "time"

const (
	MinStressLevel = 1
	MaxStressLevel = 10
)

// StressLog is an append-only self-reported stress sample.
type StressLog struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_stress_user_ts,priority:1"`
	Level     int       `json:"level" gorm:"not null"`
	Source    string    `json:"source" gorm:"size:100"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index:idx_stress_user_ts,priority:2"`
}
