package handlers

import (
	"math"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// CardHandler serves prepaid account endpoints: balances, top-ups and the
// payment history.
type CardHandler struct {
	cards ports.CardRepository
	log   *zap.Logger
}

func NewCardHandler(cards ports.CardRepository, log *zap.Logger) *CardHandler {
	return &CardHandler{cards: cards, log: log}
}

func (h *CardHandler) List(c *fiber.Ctx) error {
	cards, err := h.cards.FindAll(c.Context())
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(cards))
	for _, card := range cards {
		out = append(out, fiber.Map{
			"id":      card.CardID,
			"card_id": card.CardID,
			"balance": card.Balance,
		})
	}
	return c.JSON(out)
}

func (h *CardHandler) Get(c *fiber.Ctx) error {
	card, err := h.cards.FindByCardID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if card == nil {
		return domain.ErrNotFound
	}
	return c.JSON(fiber.Map{
		"cardId":  card.CardID,
		"balance": math.Round(card.Balance*100) / 100,
	})
}

type topUpRequest struct {
	Amount float64 `json:"amount"`
}

// TopUp credits a card, creating the account when it does not exist yet.
func (h *CardHandler) TopUp(c *fiber.Ctx) error {
	var req topUpRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Amount <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "amount must be positive"})
	}

	balance, created, err := h.cards.TopUp(c.Context(), c.Params("id"), req.Amount)
	if err != nil {
		return err
	}

	status := "success"
	if created {
		status = "created"
	}
	h.log.Info("Card top-up",
		zap.String("card_id", c.Params("id")),
		zap.Float64("amount", req.Amount),
		zap.Float64("new_balance", balance),
		zap.Bool("created", created),
	)
	return c.JSON(fiber.Map{
		"status":      status,
		"card_id":     c.Params("id"),
		"new_balance": math.Round(balance*100) / 100,
	})
}

func (h *CardHandler) ListPayments(c *fiber.Ctx) error {
	payments, err := h.cards.FindPayments(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(payments)
}
