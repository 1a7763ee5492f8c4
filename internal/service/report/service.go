package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// Service answers the aggregation queries behind the reporting surface.
type Service struct {
	reports ports.ReportRepository
	log     *zap.Logger
}

func NewService(reports ports.ReportRepository, log *zap.Logger) *Service {
	return &Service{reports: reports, log: log}
}

// Summary groups closed-transaction energy by day, week or month.
func (s *Service) Summary(ctx context.Context, groupBy string) ([]ports.PeriodEnergy, error) {
	switch groupBy {
	case "day", "week", "month":
	default:
		return nil, fmt.Errorf("%w: group_by must be 'day', 'week' or 'month'", domain.ErrValidation)
	}
	return s.reports.EnergyByPeriod(ctx, groupBy)
}

// TopConsumers ranks by tag or charge point.
func (s *Service) TopConsumers(ctx context.Context, groupBy string, limit int) ([]ports.ConsumerEnergy, error) {
	var field string
	switch groupBy {
	case "idTag":
		field = "id_tag"
	case "chargePointId":
		field = "charge_point"
	default:
		return nil, fmt.Errorf("%w: group_by must be 'idTag' or 'chargePointId'", domain.ErrValidation)
	}
	if limit <= 0 {
		limit = 10
	}
	return s.reports.TopConsumers(ctx, field, limit)
}

// DailyByChargePoint is the per-day, per-charge-point energy matrix in kWh.
func (s *Service) DailyByChargePoint(ctx context.Context, start, end *time.Time) ([]map[string]interface{}, error) {
	byDay, err := s.reports.DailyEnergyByChargePoint(ctx, start, end)
	if err != nil {
		return nil, err
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	rows := make([]map[string]interface{}, 0, len(days))
	for _, day := range days {
		row := map[string]interface{}{"period": day}
		for cp, wh := range byDay[day] {
			row[cp] = round3(wh / 1000.0)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// DashboardSummary is the landing-page widget payload.
type DashboardSummary struct {
	ChargingCount  int     `json:"chargingCount"`
	TotalPowerW    float64 `json:"totalPowerW"`
	EnergyTodayKWh float64 `json:"energyTodayKWh"`
}

// Dashboard degrades each widget to zero on failure rather than failing the
// whole response.
func (s *Service) Dashboard(ctx context.Context, now time.Time) DashboardSummary {
	var out DashboardSummary

	if count, err := s.reports.OpenTransactionCount(ctx); err == nil {
		out.ChargingCount = count
	} else {
		s.log.Warn("Dashboard open-transaction count failed", zap.Error(err))
	}

	if power, err := s.reports.LatestMeterSum(ctx); err == nil {
		out.TotalPowerW = power
	} else {
		s.log.Warn("Dashboard power sum failed", zap.Error(err))
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if wh, err := s.reports.EnergySince(ctx, midnight); err == nil {
		out.EnergyTodayKWh = round2(wh / 1000.0)
	} else {
		s.log.Warn("Dashboard energy-today failed", zap.Error(err))
	}

	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
