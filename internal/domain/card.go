package domain

import "time"

// MinStartBalance is the minimum prepaid balance required to admit a
// StartTransaction.
const MinStartBalance = 10.0

// LowBalanceThreshold triggers a notification after settlement.
const LowBalanceThreshold = 100.0

// CardAccount is a prepaid balance keyed by the same identifier as the id
// tag. The balance is floored at zero on every write.
type CardAccount struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CardID    string    `json:"card_id" gorm:"uniqueIndex"`
	Balance   float64   `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Debit subtracts the amount from the balance, flooring at zero, and returns
// the new balance. The shortfall is not carried; the payment record keeps the
// full amount.
func (c *CardAccount) Debit(amount float64) float64 {
	c.Balance -= amount
	if c.Balance < 0 {
		c.Balance = 0
	}
	return c.Balance
}

// Payment is one settlement record, append-only.
type Payment struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	TransactionID int64     `json:"transaction_id" gorm:"index"`
	IdTag         string    `json:"id_tag" gorm:"index"`
	Amount        float64   `json:"amount"`
	Timestamp     time.Time `json:"timestamp"`
	CreatedAt     time.Time `json:"created_at"`
}
