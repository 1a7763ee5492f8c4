package domain

import "time"

// Season splits the year into the TaiPower summer window (June 1 through
// September 30) and everything else.
type Season string

const (
	SeasonSummer    Season = "summer"
	SeasonNonSummer Season = "non_summer"
)

// DayType is the billing day classification. Only Saturday and Sunday count
// as holidays; the calendar-holiday lookup is a separate data source that the
// billing path does not consult.
type DayType string

const (
	DayTypeWeekday DayType = "weekday"
	DayTypeHoliday DayType = "holiday"
)

// SeasonOf classifies a point in time.
func SeasonOf(t time.Time) Season {
	from := time.Date(t.Year(), time.June, 1, 0, 0, 0, 0, t.Location())
	until := time.Date(t.Year(), time.September, 30, 23, 59, 59, 0, t.Location())
	if !t.Before(from) && !t.After(until) {
		return SeasonSummer
	}
	return SeasonNonSummer
}

// DayTypeOf classifies a point in time.
func DayTypeOf(t time.Time) DayType {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return DayTypeHoliday
	default:
		return DayTypeWeekday
	}
}

// PricingRule is one time-of-use price band. Start and End are "HH:MM"
// strings on a 24-hour clock; a band with Start > End wraps past midnight,
// and Start == End == "00:00" marks a full-day override.
type PricingRule struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	Season  Season  `json:"season" gorm:"index:idx_pricing_band"`
	DayType DayType `json:"day_type" gorm:"index:idx_pricing_band"`
	Start   string  `json:"start_time" gorm:"column:start_time"`
	End     string  `json:"end_time" gorm:"column:end_time"`
	Price   float64 `json:"price"`
}

// FullDay reports whether this band overrides the whole day.
func (r *PricingRule) FullDay() bool { return r.Start == "00:00" && r.End == "00:00" }

// Contains reports whether the "HH:MM" time of day falls inside the band,
// honoring midnight wrap.
func (r *PricingRule) Contains(hhmm string) bool {
	if r.Start <= r.End {
		return r.Start <= hhmm && hhmm < r.End
	}
	return hhmm >= r.Start || hhmm < r.End
}

// BaseRate holds the monthly billing parameters: a flat basic fee plus a
// per-kWh surcharge on energy beyond the threshold. Singleton row.
type BaseRate struct {
	ID                uint    `json:"id" gorm:"primaryKey"`
	MonthlyBasicFee   float64 `json:"monthly_basic_fee"`
	ThresholdKWh      float64 `json:"threshold_kwh" gorm:"column:threshold_kwh"`
	OverusePriceDelta float64 `json:"overuse_price_delta"`
}
