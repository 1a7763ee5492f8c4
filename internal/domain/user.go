package domain

import "time"

// User is an operator-facing record linking an id tag to a person and an
// optional push-notification recipient id. Managed entirely through the
// administrative surface; the protocol engine never reads it.
type User struct {
	IdTag      string    `json:"id_tag" gorm:"primaryKey;column:id_tag"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	CardNumber string    `json:"card_number"` // push recipient id, set via binding
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
