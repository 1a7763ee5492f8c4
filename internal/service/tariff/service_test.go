package tariff

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/mocks"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

// summerWeekdayRules mirrors the seeded TaiPower summer weekday bands.
func summerWeekdayRules() []domain.PricingRule {
	return []domain.PricingRule{
		{ID: 1, Season: domain.SeasonSummer, DayType: domain.DayTypeWeekday, Start: "00:00", End: "09:00", Price: 1.96},
		{ID: 2, Season: domain.SeasonSummer, DayType: domain.DayTypeWeekday, Start: "09:00", End: "24:00", Price: 5.01},
	}
}

func tariffRepoWith(rules []domain.PricingRule) *mocks.MockTariffRepository {
	return &mocks.MockTariffRepository{
		FindRulesFunc: func(ctx context.Context, season domain.Season, dayType domain.DayType) ([]domain.PricingRule, error) {
			return rules, nil
		},
	}
}

func TestPriceAt_OffPeakBand(t *testing.T) {
	// Arrange: Monday 2025-07-07 08:59 is summer/weekday off-peak
	service := NewService(tariffRepoWith(summerWeekdayRules()), newTestLogger())
	at := time.Date(2025, time.July, 7, 8, 59, 0, 0, time.UTC)

	// Act
	price, err := service.PriceAt(context.Background(), at)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if price != 1.96 {
		t.Errorf("expected 1.96, got %v", price)
	}
}

func TestPriceAt_PeakBandStartIsInclusive(t *testing.T) {
	// Arrange: exactly 09:00 belongs to the peak band
	service := NewService(tariffRepoWith(summerWeekdayRules()), newTestLogger())
	at := time.Date(2025, time.July, 7, 9, 0, 0, 0, time.UTC)

	// Act
	price, err := service.PriceAt(context.Background(), at)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if price != 5.01 {
		t.Errorf("expected 5.01, got %v", price)
	}
}

func TestPriceAt_FullDayOverrideWins(t *testing.T) {
	// Arrange: a 00:00-00:00 band overrides the narrower ones
	rules := append(summerWeekdayRules(),
		domain.PricingRule{ID: 3, Season: domain.SeasonSummer, DayType: domain.DayTypeWeekday, Start: "00:00", End: "00:00", Price: 1.5},
	)
	service := NewService(tariffRepoWith(rules), newTestLogger())
	at := time.Date(2025, time.July, 7, 12, 0, 0, 0, time.UTC)

	// Act
	price, err := service.PriceAt(context.Background(), at)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if price != 1.5 {
		t.Errorf("expected full-day price 1.5, got %v", price)
	}
}

func TestPriceAt_WrapPastMidnight(t *testing.T) {
	// Arrange: a 22:00-06:00 band covers both late evening and early morning
	rules := []domain.PricingRule{
		{ID: 1, Season: domain.SeasonNonSummer, DayType: domain.DayTypeWeekday, Start: "22:00", End: "06:00", Price: 1.2},
	}
	service := NewService(tariffRepoWith(rules), newTestLogger())

	// Act
	late, err := service.PriceAt(context.Background(), time.Date(2025, time.March, 10, 23, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	early, err := service.PriceAt(context.Background(), time.Date(2025, time.March, 10, 5, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Assert
	if late != 1.2 {
		t.Errorf("expected 1.2 at 23:30, got %v", late)
	}
	if early != 1.2 {
		t.Errorf("expected 1.2 at 05:30, got %v", early)
	}
}

func TestPriceAt_OverlapTakesLatestStart(t *testing.T) {
	// Arrange: 12:00 falls in both bands; the later start wins
	rules := []domain.PricingRule{
		{ID: 1, Season: domain.SeasonSummer, DayType: domain.DayTypeWeekday, Start: "00:00", End: "24:00", Price: 2.0},
		{ID: 2, Season: domain.SeasonSummer, DayType: domain.DayTypeWeekday, Start: "10:00", End: "14:00", Price: 6.0},
	}
	service := NewService(tariffRepoWith(rules), newTestLogger())
	at := time.Date(2025, time.July, 7, 12, 0, 0, 0, time.UTC)

	// Act
	price, err := service.PriceAt(context.Background(), at)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if price != 6.0 {
		t.Errorf("expected 6.0 from the later-starting band, got %v", price)
	}
}

func TestPriceAt_NoBandMatchesReturnsZero(t *testing.T) {
	// Arrange: a gap in the rule table must not fail the stop path
	rules := []domain.PricingRule{
		{ID: 1, Season: domain.SeasonSummer, DayType: domain.DayTypeWeekday, Start: "00:00", End: "06:00", Price: 1.96},
	}
	service := NewService(tariffRepoWith(rules), newTestLogger())
	at := time.Date(2025, time.July, 7, 12, 0, 0, 0, time.UTC)

	// Act
	price, err := service.PriceAt(context.Background(), at)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if price != 0 {
		t.Errorf("expected 0 when no band matches, got %v", price)
	}
}

func TestBaseRate_Missing(t *testing.T) {
	// Arrange
	service := NewService(&mocks.MockTariffRepository{}, newTestLogger())

	// Act
	_, err := service.BaseRate(context.Background())

	// Assert
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSeasonOf_Boundaries(t *testing.T) {
	cases := []struct {
		at   time.Time
		want domain.Season
	}{
		{time.Date(2025, time.May, 31, 23, 59, 0, 0, time.UTC), domain.SeasonNonSummer},
		{time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), domain.SeasonSummer},
		{time.Date(2025, time.September, 30, 23, 0, 0, 0, time.UTC), domain.SeasonSummer},
		{time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), domain.SeasonNonSummer},
	}
	for _, tc := range cases {
		if got := domain.SeasonOf(tc.at); got != tc.want {
			t.Errorf("SeasonOf(%s): expected %s, got %s", tc.at, tc.want, got)
		}
	}
}

func TestDayTypeOf_WeekendOnly(t *testing.T) {
	// Saturday and Sunday are holidays; the calendar lookup is not consulted
	saturday := time.Date(2025, time.March, 8, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	if got := domain.DayTypeOf(saturday); got != domain.DayTypeHoliday {
		t.Errorf("expected holiday for Saturday, got %s", got)
	}
	if got := domain.DayTypeOf(monday); got != domain.DayTypeWeekday {
		t.Errorf("expected weekday for Monday, got %s", got)
	}
}
