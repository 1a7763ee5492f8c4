package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// PricingHandler manages the time-of-use rule table and the monthly base
// rate consumed by the tariff resolver.
type PricingHandler struct {
	tariffs ports.TariffRepository
	log     *zap.Logger
}

func NewPricingHandler(tariffs ports.TariffRepository, log *zap.Logger) *PricingHandler {
	return &PricingHandler{tariffs: tariffs, log: log}
}

func (h *PricingHandler) ListRules(c *fiber.Ctx) error {
	rules, err := h.tariffs.FindAllRules(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(rules)
}

type pricingRuleRequest struct {
	Season  string  `json:"season"`
	DayType string  `json:"day_type"`
	Start   string  `json:"start_time"`
	End     string  `json:"end_time"`
	Price   float64 `json:"price"`
}

func (h *PricingHandler) CreateRule(c *fiber.Ctx) error {
	var req pricingRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Season == "" || req.DayType == "" || req.Start == "" || req.End == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "season, day_type, start_time and end_time are required"})
	}
	rule := &domain.PricingRule{
		Season:  domain.Season(req.Season),
		DayType: domain.DayType(req.DayType),
		Start:   req.Start,
		End:     req.End,
		Price:   req.Price,
	}
	if err := h.tariffs.SaveRule(c.Context(), rule); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (h *PricingHandler) UpdateRule(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid rule id"})
	}
	var req pricingRuleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	rule := &domain.PricingRule{
		ID:      uint(id),
		Season:  domain.Season(req.Season),
		DayType: domain.DayType(req.DayType),
		Start:   req.Start,
		End:     req.End,
		Price:   req.Price,
	}
	if err := h.tariffs.SaveRule(c.Context(), rule); err != nil {
		return err
	}
	return c.JSON(rule)
}

func (h *PricingHandler) DeleteRule(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid rule id"})
	}
	if err := h.tariffs.DeleteRule(c.Context(), uint(id)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}

func (h *PricingHandler) GetBaseRate(c *fiber.Ctx) error {
	rate, err := h.tariffs.BaseRate(c.Context())
	if err != nil {
		return err
	}
	if rate == nil {
		return domain.ErrNotFound
	}
	return c.JSON(rate)
}

// PricingMatrix is the full rule table grouped season → day type, the shape
// the admin UI renders directly.
func (h *PricingHandler) PricingMatrix(c *fiber.Ctx) error {
	rules, err := h.tariffs.FindAllRules(c.Context())
	if err != nil {
		return err
	}
	matrix := make(map[string]map[string][]domain.PricingRule)
	for _, rule := range rules {
		season := string(rule.Season)
		if matrix[season] == nil {
			matrix[season] = make(map[string][]domain.PricingRule)
		}
		matrix[season][string(rule.DayType)] = append(matrix[season][string(rule.DayType)], rule)
	}
	return c.JSON(matrix)
}
