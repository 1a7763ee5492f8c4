package domain

import "time"

// AuthorizationStatus is the idTagInfo.status value returned to charge
// points. Admission failures are encoded here, never as protocol faults.
type AuthorizationStatus string

const (
	AuthorizationAccepted AuthorizationStatus = "Accepted"
	AuthorizationExpired  AuthorizationStatus = "Expired"
	AuthorizationInvalid  AuthorizationStatus = "Invalid"
	AuthorizationBlocked  AuthorizationStatus = "Blocked"
)

// IdTag is an authorization credential (RFID card or token) presented by a
// driver to start a charging session.
type IdTag struct {
	IdTag      string    `json:"id_tag" gorm:"primaryKey;column:id_tag"`
	Status     string    `json:"status"`
	ValidUntil string    `json:"valid_until"` // ISO 8601; malformed values are treated as long expired
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (IdTag) TableName() string { return "id_tags" }

// ValidUntilTime parses the stored expiry. A malformed timestamp degrades to
// the zero time, which always compares as expired.
func (t *IdTag) ValidUntilTime() time.Time {
	ts, err := time.Parse(time.RFC3339, t.ValidUntil)
	if err != nil {
		// Stored values may lack a zone suffix; retry as bare local form.
		ts, err = time.Parse("2006-01-02T15:04:05", t.ValidUntil)
		if err != nil {
			return time.Time{}
		}
	}
	return ts
}
