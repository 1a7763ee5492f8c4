package domain

import "testing"

func TestDebit_FloorsAtZero(t *testing.T) {
	// Arrange
	card := CardAccount{CardID: "TAG001", Balance: 100}

	// Act: the debit exceeds the balance
	newBalance := card.Debit(150)

	// Assert: balance floors at zero, the shortfall is not carried
	if newBalance != 0 {
		t.Errorf("expected balance 0, got %v", newBalance)
	}
	if card.Balance != 0 {
		t.Errorf("expected stored balance 0, got %v", card.Balance)
	}
}

func TestDebit_WithinBalance(t *testing.T) {
	// Arrange
	card := CardAccount{CardID: "ABC123", Balance: 200}

	// Act
	newBalance := card.Debit(10.02)

	// Assert
	if newBalance != 189.98 {
		t.Errorf("expected balance 189.98, got %v", newBalance)
	}
}

func TestDebit_ExactBalance(t *testing.T) {
	// Arrange
	card := CardAccount{CardID: "ABC123", Balance: 100}

	// Act
	newBalance := card.Debit(100)

	// Assert
	if newBalance != 0 {
		t.Errorf("expected balance 0, got %v", newBalance)
	}
}
