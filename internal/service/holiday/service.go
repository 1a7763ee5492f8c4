package holiday

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
)

// Info is the calendar answer for one ISO date. This lookup is a standalone
// data source; the billing day-type classification does not consult it.
type Info struct {
	Date     string  `json:"date"`
	Type     string  `json:"type"`
	Holiday  bool    `json:"holiday"`
	Festival *string `json:"festival"`
}

type calendarFile struct {
	Days map[string]struct {
		Description string `json:"description"`
		IsHoliday   bool   `json:"isHoliday"`
	} `json:"days"`
}

// Service answers holiday lookups from per-year JSON calendar files.
type Service struct {
	dir string
	log *zap.Logger
}

func NewService(dir string, log *zap.Logger) *Service {
	return &Service{dir: dir, log: log}
}

// Lookup classifies an ISO date (YYYY-MM-DD). A missing year file degrades to
// a non-holiday answer instead of failing.
func (s *Service) Lookup(date string) (Info, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return Info{}, fmt.Errorf("%w: invalid date %q", domain.ErrValidation, date)
	}
	isWeekend := day.Weekday() == time.Saturday || day.Weekday() == time.Sunday

	data, err := os.ReadFile(filepath.Join(s.dir, date[:4]+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return Info{Date: date, Type: "查無年度資料", Holiday: false}, nil
		}
		return Info{}, err
	}

	var calendar calendarFile
	if err := json.Unmarshal(data, &calendar); err != nil {
		return Info{}, fmt.Errorf("parse calendar for %s: %w", date[:4], err)
	}

	var description string
	var flagged bool
	if entry, ok := calendar.Days[date]; ok {
		description = entry.Description
		flagged = entry.IsHoliday
	}

	// A weekend counts as a holiday unless it is a make-up workday.
	isHoliday := flagged || (isWeekend && !strings.Contains(description, "補班"))

	dayType := description
	if dayType == "" {
		if isWeekend {
			dayType = "週末"
		} else {
			dayType = "平日"
		}
	}

	var festival *string
	switch description {
	case "", "週六", "週日", "補班", "平日":
	default:
		festival = &description
	}

	return Info{Date: date, Type: dayType, Holiday: isHoliday, Festival: festival}, nil
}
