package tariff

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// Service resolves time-of-use unit prices from the pricing-rule table.
type Service struct {
	tariffs ports.TariffRepository
	log     *zap.Logger
}

func NewService(tariffs ports.TariffRepository, log *zap.Logger) *Service {
	return &Service{tariffs: tariffs, log: log}
}

// PriceAt resolves the unit price for an instant. Resolution order:
//  1. a full-day band (00:00-00:00) for the season/day-type wins outright;
//  2. otherwise the containing band with the latest start wins;
//  3. no band matches: 0, logged, never an error.
func (s *Service) PriceAt(ctx context.Context, at time.Time) (float64, error) {
	season := domain.SeasonOf(at)
	dayType := domain.DayTypeOf(at)

	rules, err := s.tariffs.FindRules(ctx, season, dayType)
	if err != nil {
		return 0, err
	}

	for i := range rules {
		if rules[i].FullDay() {
			return rules[i].Price, nil
		}
	}

	hhmm := at.Format("15:04")
	best := -1
	for i := range rules {
		if !rules[i].Contains(hhmm) {
			continue
		}
		if best < 0 || rules[i].Start > rules[best].Start {
			best = i
		}
	}
	if best < 0 {
		s.log.Warn("No pricing band matched, using zero price",
			zap.String("season", string(season)),
			zap.String("day_type", string(dayType)),
			zap.String("time", hhmm),
		)
		return 0, nil
	}
	return rules[best].Price, nil
}

func (s *Service) BaseRate(ctx context.Context) (*domain.BaseRate, error) {
	rate, err := s.tariffs.BaseRate(ctx)
	if err != nil {
		return nil, err
	}
	if rate == nil {
		return nil, domain.ErrNotFound
	}
	return rate, nil
}
