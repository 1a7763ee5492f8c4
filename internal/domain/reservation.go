package domain

import "time"

// ReservationStatus tracks the lifecycle of a reservation.
type ReservationStatus string

const (
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// Reservation is a time-boxed claim on a charge point for an id tag. A
// successful StartTransaction whose window contains "now" consumes exactly
// one active reservation, transitioning it to completed.
type Reservation struct {
	ID            string            `json:"id" gorm:"primaryKey"`
	ChargePointID string            `json:"charge_point_id" gorm:"index"`
	IdTag         string            `json:"id_tag" gorm:"index"`
	StartTime     time.Time         `json:"start_time"`
	EndTime       time.Time         `json:"end_time"`
	Status        ReservationStatus `json:"status" gorm:"index"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// WindowContains reports whether the reservation window covers the instant.
func (r *Reservation) WindowContains(t time.Time) bool {
	return !r.StartTime.After(t) && !r.EndTime.Before(t)
}

// Consume transitions an active reservation whose window covers the instant
// to completed. Anything else fails with ErrNotFound, the same answer an
// absent reservation gives, so a second consumption attempt cannot succeed.
func (r *Reservation) Consume(at time.Time) error {
	if r.Status != ReservationStatusActive || !r.WindowContains(at) {
		return ErrNotFound
	}
	r.Status = ReservationStatusCompleted
	return nil
}
