package postgres

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

type ReportRepository struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewReportRepository(db *gorm.DB, log *zap.Logger) ports.ReportRepository {
	return &ReportRepository{db: db, log: log}
}

var periodFormats = map[string]string{
	"day":   "YYYY-MM-DD",
	"week":  "IYYY-IW",
	"month": "YYYY-MM",
}

func (r *ReportRepository) EnergyByPeriod(ctx context.Context, groupBy string) ([]ports.PeriodEnergy, error) {
	format, ok := periodFormats[groupBy]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported group %q", domain.ErrValidation, groupBy)
	}
	var rows []ports.PeriodEnergy
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select(fmt.Sprintf("to_char(start_time, '%s') AS period, COUNT(*) AS transaction_count, COALESCE(SUM(meter_stop - meter_start), 0) AS total_energy_wh", format)).
		Where("meter_stop IS NOT NULL").
		Group("period").
		Order("period asc").
		Scan(&rows).Error
	return rows, err
}

func (r *ReportRepository) TopConsumers(ctx context.Context, groupBy string, limit int) ([]ports.ConsumerEnergy, error) {
	col := "id_tag"
	if groupBy == "charge_point" {
		col = "charge_point_id"
	}
	var rows []ports.ConsumerEnergy
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select(col + " AS key, COUNT(*) AS transaction_count, COALESCE(SUM(meter_stop - meter_start), 0) AS total_energy_wh").
		Where("meter_stop IS NOT NULL").
		Group(col).
		Order("total_energy_wh desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *ReportRepository) TopConsumersSince(ctx context.Context, since time.Time, limit int) ([]ports.ConsumerEnergy, error) {
	var rows []ports.ConsumerEnergy
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select("id_tag AS key, COUNT(*) AS transaction_count, COALESCE(SUM(meter_stop - meter_start), 0) AS total_energy_wh").
		Where("meter_stop IS NOT NULL AND start_time >= ?", since).
		Group("id_tag").
		Order("total_energy_wh desc").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *ReportRepository) DailyEnergyByChargePoint(ctx context.Context, start, end *time.Time) (map[string]map[string]float64, error) {
	type row struct {
		Day           string
		ChargePointID string
		EnergyWh      float64
	}
	q := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select("to_char(start_time, 'YYYY-MM-DD') AS day, charge_point_id, COALESCE(SUM(meter_stop - meter_start), 0) AS energy_wh").
		Where("meter_stop IS NOT NULL")
	if start != nil {
		q = q.Where("start_time >= ?", *start)
	}
	if end != nil {
		q = q.Where("start_time <= ?", *end)
	}
	var rows []row
	if err := q.Group("day, charge_point_id").Order("day asc").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]map[string]float64, len(rows))
	for _, rr := range rows {
		if out[rr.Day] == nil {
			out[rr.Day] = make(map[string]float64)
		}
		out[rr.Day][rr.ChargePointID] = rr.EnergyWh
	}
	return out, nil
}

func (r *ReportRepository) OpenTransactionCount(ctx context.Context) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("meter_stop IS NULL").
		Count(&count).Error
	return int(count), err
}

func (r *ReportRepository) LatestMeterSum(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(m.value), 0)
		FROM meter_samples m
		JOIN (
			SELECT charge_point_id, MAX(id) AS latest_id
			FROM meter_samples
			GROUP BY charge_point_id
		) latest ON m.id = latest.latest_id`).
		Scan(&total).Error
	return total, err
}

func (r *ReportRepository) EnergySince(ctx context.Context, since time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select("COALESCE(SUM(meter_stop - meter_start), 0)").
		Where("meter_stop IS NOT NULL AND start_time >= ?", since).
		Scan(&total).Error
	return total, err
}
