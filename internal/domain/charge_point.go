package domain

import "time"

// ConnectorStatus mirrors the OCPP 1.6 StatusNotification status values we
// care about. Unrecognized values are stored as-is.
type ConnectorStatus string

const (
	ConnectorStatusAvailable     ConnectorStatus = "Available"
	ConnectorStatusPreparing     ConnectorStatus = "Preparing"
	ConnectorStatusCharging      ConnectorStatus = "Charging"
	ConnectorStatusSuspendedEV   ConnectorStatus = "SuspendedEV"
	ConnectorStatusSuspendedEVSE ConnectorStatus = "SuspendedEVSE"
	ConnectorStatusFinishing     ConnectorStatus = "Finishing"
	ConnectorStatusReserved      ConnectorStatus = "Reserved"
	ConnectorStatusFaulted       ConnectorStatus = "Faulted"
	ConnectorStatusUnavailable   ConnectorStatus = "Unavailable"
)

// StatusLog is one persisted StatusNotification. The live per-connector view
// lives in the session registry; this table is the durable audit trail and a
// best-effort write (failures never fail the protocol ack).
type StatusLog struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ChargePointID string    `json:"charge_point_id" gorm:"index"`
	ConnectorID   int       `json:"connector_id"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp" gorm:"index"`
}
