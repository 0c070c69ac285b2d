// File: internal/services/wellness/service.go
package wellness

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/iyunix/go-wellness/internal/domain"
	"github.com/iyunix/go-wellness/internal/repository"
)

const (
	// HistorySize is how many stress samples the trend chart shows.
	HistorySize = 7

	officeOpensHour  = 9
	officeClosesHour = 17

	maxSourceLength = 100
)

// ValidationError is returned for bad caller input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StressEntry is one point of the stress trend chart.
type StressEntry struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Level  int    `json:"level"`
	Source string `json:"source"`
}

type HelpReceipt struct {
	RequestID  uint `json:"-"`
	AfterHours bool `json:"after_hours"`
}

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type Service struct {
	stress   repository.StressLogRepository
	help     repository.HelpRequestRepository
	logger   Logger
	now      func() time.Time
	location *time.Location
}

func NewService(stress repository.StressLogRepository, help repository.HelpRequestRepository, logger Logger) *Service {
	return &Service{
		stress:   stress,
		help:     help,
		logger:   logger,
		now:      time.Now,
		location: time.Local,
	}
}

// WithClock replaces the wall clock and the zone used for display and the
// after-hours rule.
func (s *Service) WithClock(now func() time.Time, loc *time.Location) *Service {
	s.now = now
	if loc != nil {
		s.location = loc
	}
	return s
}

func (s *Service) LogStress(ctx context.Context, userID uint, level int, source string) error {
	if level < domain.MinStressLevel || level > domain.MaxStressLevel {
		return &ValidationError{Field: "level", Message: fmt.Sprintf("level must be between %d and %d", domain.MinStressLevel, domain.MaxStressLevel)}
	}
	source = strings.TrimSpace(source)
	if len(source) > maxSourceLength {
		return &ValidationError{Field: "source", Message: fmt.Sprintf("source must be at most %d characters", maxSourceLength)}
	}

	entry := &domain.StressLog{
		UserID:    userID,
		Level:     level,
		Source:    source,
		Timestamp: s.now().UTC(),
	}
	if err := s.stress.Create(ctx, entry); err != nil {
		return fmt.Errorf("log stress for user %d: %w", userID, err)
	}
	s.logger.Info("stress logged", "user_id", userID, "level", level)
	return nil
}

// StressHistory returns the latest samples oldest first.
func (s *Service) StressHistory(ctx context.Context, userID uint) ([]StressEntry, error) {
	logs, err := s.stress.Recent(ctx, userID, HistorySize)
	if err != nil {
		return nil, fmt.Errorf("load stress history for user %d: %w", userID, err)
	}
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp.Before(logs[j].Timestamp)
	})

	entries := make([]StressEntry, 0, len(logs))
	for _, l := range logs {
		ts := l.Timestamp.In(s.location)
		entries = append(entries, StressEntry{
			Date:   ts.Format("Jan 02"),
			Time:   ts.Format("15:04"),
			Level:  l.Level,
			Source: l.Source,
		})
	}
	return entries, nil
}

func (s *Service) RequestHelp(ctx context.Context, userID uint, severity domain.Severity, message string) (*HelpReceipt, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, &ValidationError{Field: "message", Message: "Message is required"}
	}
	if severity == "" {
		severity = domain.SeverityMedium
	}
	severity = domain.Severity(strings.ToLower(string(severity)))
	if !severity.Valid() {
		return nil, &ValidationError{Field: "severity", Message: "severity must be one of low, medium, high, crisis"}
	}

	now := s.now()
	req := &domain.HelpRequest{
		UserID:    userID,
		Severity:  severity,
		Message:   message,
		Status:    domain.HelpRequestPending,
		Timestamp: now.UTC(),
	}
	if err := s.help.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("create help request for user %d: %w", userID, err)
	}

	afterHours := IsAfterHours(now.In(s.location))
	s.logger.Info("help request received",
		"request_id", req.ID,
		"user_id", userID,
		"severity", severity,
		"after_hours", afterHours,
	)
	return &HelpReceipt{RequestID: req.ID, AfterHours: afterHours}, nil
}

// ResolveHelpRequest closes a pending request. Resolving twice is a no-op.
func (s *Service) ResolveHelpRequest(ctx context.Context, id uint) error {
	req, err := s.help.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find help request %d: %w", id, err)
	}
	if req.Status == domain.HelpRequestResolved {
		return nil
	}
	if err := s.help.UpdateStatus(ctx, id, domain.HelpRequestResolved); err != nil {
		return fmt.Errorf("resolve help request %d: %w", id, err)
	}
	s.logger.Info("help request resolved", "request_id", id)
	return nil
}

// IsAfterHours is true outside 09:00-17:00 in t's own zone.
func IsAfterHours(t time.Time) bool {
	h := t.Hour()
	return h < officeOpensHour || h >= officeClosesHour
}
