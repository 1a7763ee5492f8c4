package transaction

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// BillingService computes session costs. SettlementCost is what actually gets
// debited: the whole session priced at the start-time rate. ComputeCost is the
// reporting view: per-sample integration plus monthly fees. They diverge by
// design and must stay separate.
type BillingService struct {
	transactions ports.TransactionRepository
	tariffs      ports.TariffService
	log          *zap.Logger
}

func NewBillingService(transactions ports.TransactionRepository, tariffs ports.TariffService, log *zap.Logger) *BillingService {
	return &BillingService{
		transactions: transactions,
		tariffs:      tariffs,
		log:          log,
	}
}

// SettlementCost prices the session's total energy at the rate in effect at
// start time, rounded to cents. Negative register deltas count as zero.
func (b *BillingService) SettlementCost(ctx context.Context, tx *domain.Transaction) (float64, error) {
	price, err := b.tariffs.PriceAt(ctx, tx.StartTime)
	if err != nil {
		return 0, err
	}
	return round2(tx.TotalEnergyKWh() * price), nil
}

// ComputeCost builds the detailed breakdown for a closed transaction: each
// consecutive sample pair is priced at the rate in effect at the pair's first
// sample, then the monthly basic fee and the over-threshold surcharge are
// added. With fewer than two samples the whole session is priced at the
// start-time rate.
func (b *BillingService) ComputeCost(ctx context.Context, transactionID int64) (*ports.CostBreakdown, error) {
	tx, err := b.transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, domain.ErrNotFound
	}
	if tx.Open() {
		return nil, domain.ErrIncomplete
	}

	totalKWh := float64(*tx.MeterStop-tx.MeterStart) / 1000.0

	samples, err := b.transactions.FindSamples(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	var details []ports.CostLineItem
	var energyCost float64

	if len(samples) < 2 {
		price, err := b.tariffs.PriceAt(ctx, tx.StartTime)
		if err != nil {
			return nil, err
		}
		energyCost = totalKWh * price
		details = []ports.CostLineItem{{
			From:  tx.StartTime,
			To:    *tx.StopTime,
			KWh:   round3(totalKWh),
			Price: price,
			Cost:  round2(energyCost),
		}}
	} else {
		for i := 1; i < len(samples); i++ {
			prev, cur := samples[i-1], samples[i]
			kwh := (cur.Value - prev.Value) / 1000.0
			if kwh < 0 {
				kwh = 0
			}
			price, err := b.tariffs.PriceAt(ctx, prev.Timestamp)
			if err != nil {
				return nil, err
			}
			cost := kwh * price
			energyCost += cost
			details = append(details, ports.CostLineItem{
				From:  prev.Timestamp,
				To:    cur.Timestamp,
				KWh:   round3(kwh),
				Price: price,
				Cost:  round2(cost),
			})
		}
	}

	rate, err := b.tariffs.BaseRate(ctx)
	if err != nil {
		return nil, err
	}

	overKWh := totalKWh - rate.ThresholdKWh
	if overKWh < 0 {
		overKWh = 0
	}
	overuseFee := overKWh * rate.OverusePriceDelta

	return &ports.CostBreakdown{
		TransactionID: transactionID,
		TotalCost:     round2(rate.MonthlyBasicFee + energyCost + overuseFee),
		BasicFee:      round2(rate.MonthlyBasicFee),
		EnergyCost:    round2(energyCost),
		OveruseFee:    round2(overuseFee),
		TotalKWh:      round3(totalKWh),
		Unit:          "kWh",
		Details:       details,
	}, nil
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
