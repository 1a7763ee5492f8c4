package domain

import (
	"time"
)

// Transaction is one charging session, from StartTransaction acceptance to
// StopTransaction. An open transaction has MeterStop == nil; both stop
// fields are written exactly once, at stop.
type Transaction struct {
	ID            int64      `json:"transaction_id" gorm:"primaryKey;column:transaction_id"`
	ChargePointID string     `json:"charge_point_id" gorm:"index"`
	ConnectorID   int        `json:"connector_id"`
	IdTag         string     `json:"id_tag" gorm:"index"`
	MeterStart    int        `json:"meter_start"` // Wh register at start
	StartTime     time.Time  `json:"start_time" gorm:"index"`
	MeterStop     *int       `json:"meter_stop,omitempty"`
	StopTime      *time.Time `json:"stop_time,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Open reports whether the transaction is still running.
func (t *Transaction) Open() bool { return t.MeterStop == nil }

// TotalEnergyKWh is the register delta in kWh, clamped at zero. Only valid
// for closed transactions.
func (t *Transaction) TotalEnergyKWh() float64 {
	if t.MeterStop == nil {
		return 0
	}
	kwh := float64(*t.MeterStop-t.MeterStart) / 1000.0
	if kwh < 0 {
		return 0
	}
	return kwh
}

// MeterSample is one telemetry reading reported during a transaction.
// Samples are immutable once written.
type MeterSample struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	TransactionID int64     `json:"transaction_id" gorm:"index"`
	ChargePointID string    `json:"charge_point_id" gorm:"index"`
	ConnectorID   int       `json:"connector_id"`
	Timestamp     time.Time `json:"timestamp" gorm:"index"`
	Measurand     string    `json:"measurand"`
	Value         float64   `json:"value"`
	Unit          string    `json:"unit"`
}
