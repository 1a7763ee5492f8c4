package postgres

import (
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seu-repo/ocpp-csms/internal/domain"
)

// Seed installs the TaiPower two-tier time-of-use rule set, the monthly base
// rate and a few demo tags/accounts. Existing rows are left untouched except
// for the pricing tables, which are replaced wholesale so rule edits in code
// take effect on restart.
func Seed(db *gorm.DB, log *zap.Logger) error {
	rules := []domain.PricingRule{
		{Season: domain.SeasonSummer, DayType: domain.DayTypeWeekday, Start: "00:00", End: "09:00", Price: 1.96},
		{Season: domain.SeasonSummer, DayType: domain.DayTypeWeekday, Start: "09:00", End: "24:00", Price: 5.01},
		{Season: domain.SeasonSummer, DayType: domain.DayTypeHoliday, Start: "00:00", End: "24:00", Price: 1.96},
		{Season: domain.SeasonNonSummer, DayType: domain.DayTypeWeekday, Start: "00:00", End: "06:00", Price: 1.89},
		{Season: domain.SeasonNonSummer, DayType: domain.DayTypeWeekday, Start: "06:00", End: "11:00", Price: 4.78},
		{Season: domain.SeasonNonSummer, DayType: domain.DayTypeWeekday, Start: "11:00", End: "14:00", Price: 1.89},
		{Season: domain.SeasonNonSummer, DayType: domain.DayTypeWeekday, Start: "14:00", End: "24:00", Price: 4.78},
		{Season: domain.SeasonNonSummer, DayType: domain.DayTypeHoliday, Start: "00:00", End: "24:00", Price: 1.89},
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.PricingRule{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&rules).Error; err != nil {
			return err
		}
		if err := tx.Where("1 = 1").Delete(&domain.BaseRate{}).Error; err != nil {
			return err
		}
		return tx.Create(&domain.BaseRate{ID: 1, MonthlyBasicFee: 75.0, ThresholdKWh: 2000, OverusePriceDelta: 1.02}).Error
	})
	if err != nil {
		return err
	}

	demoTags := []domain.IdTag{
		{IdTag: "ABC123", Status: "Accepted", ValidUntil: "2099-12-31T23:59:59"},
		{IdTag: "TAG001", Status: "Expired", ValidUntil: "2022-01-01T00:00:00"},
		{IdTag: "USER999", Status: "Blocked", ValidUntil: "2099-12-31T23:59:59"},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&demoTags).Error; err != nil {
		return err
	}

	demoCards := []domain.CardAccount{
		{CardID: "ABC123", Balance: 200},
		{CardID: "TAG001", Balance: 50},
		{CardID: "USER999", Balance: 500},
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&demoCards).Error; err != nil {
		return err
	}

	log.Info("Seeded pricing rules, base rate and demo accounts",
		zap.Int("pricing_rules", len(rules)),
	)
	return nil
}
