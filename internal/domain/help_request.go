// File: internal/domain/help_request.go
package domain

import "time"

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
	SeverityCrisis Severity = "crisis"
)

// Valid reports whether s is one of the known severity labels.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCrisis:
		return true
	}
	return false
}

type HelpRequestStatus string

const (
	HelpRequestPending  HelpRequestStatus = "pending"
	HelpRequestResolved HelpRequestStatus = "resolved"
)

// HelpRequest asks a human counselor to reach out. Status only ever moves
// from pending to resolved.
type HelpRequest struct {
	ID        uint              `json:"id" gorm:"primarykey"`
	UserID    uint              `json:"user_id" gorm:"not null;index"`
	Severity  Severity          `json:"severity" gorm:"column:severity_level;size:20;not null"`
	Message   string            `json:"message" gorm:"type:text;not null"`
	Status    HelpRequestStatus `json:"status" gorm:"size:20;not null;default:pending"`
	Timestamp time.Time         `json:"timestamp" gorm:"not null"`
}
