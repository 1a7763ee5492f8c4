package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// StatusHandler exposes the live connector snapshot, the status history and
// the latest meter reading per charge point.
type StatusHandler struct {
	statuses     ports.StatusStore
	statusLogs   ports.StatusLogRepository
	transactions ports.TransactionRepository
	log          *zap.Logger
}

func NewStatusHandler(
	statuses ports.StatusStore,
	statusLogs ports.StatusLogRepository,
	transactions ports.TransactionRepository,
	log *zap.Logger,
) *StatusHandler {
	return &StatusHandler{
		statuses:     statuses,
		statusLogs:   statusLogs,
		transactions: transactions,
		log:          log,
	}
}

func (h *StatusHandler) Snapshot(c *fiber.Ctx) error {
	return c.JSON(h.statuses.Snapshot())
}

func (h *StatusHandler) History(c *fiber.Ctx) error {
	var start, end *time.Time
	if s := c.Query("start"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid start"})
		}
		start = &ts
	}
	if s := c.Query("end"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid end"})
		}
		end = &ts
	}
	limit, _ := strconv.Atoi(c.Query("limit", "100"))

	logs, err := h.statusLogs.Find(c.Context(), c.Query("chargePointId"), start, end, limit)
	if err != nil {
		return err
	}
	return c.JSON(logs)
}

// LatestMeter returns the most recent sample a charge point reported.
func (h *StatusHandler) LatestMeter(c *fiber.Ctx) error {
	sample, err := h.transactions.LatestSample(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	if sample == nil {
		return domain.ErrNotFound
	}
	return c.JSON(sample)
}
