package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
	"github.com/seu-repo/ocpp-csms/internal/service/holiday"
	"github.com/seu-repo/ocpp-csms/internal/service/report"
)

// ReportHandler serves aggregation queries, the dashboard widgets, the
// holiday calendar and the manual push endpoint.
type ReportHandler struct {
	reports  *report.Service
	holidays *holiday.Service
	users    ports.UserRepository
	notifier ports.Notifier
	log      *zap.Logger
}

func NewReportHandler(
	reports *report.Service,
	holidays *holiday.Service,
	users ports.UserRepository,
	notifier ports.Notifier,
	log *zap.Logger,
) *ReportHandler {
	return &ReportHandler{
		reports:  reports,
		holidays: holidays,
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	rows, err := h.reports.Summary(c.Context(), c.Query("group_by", "day"))
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		out = append(out, fiber.Map{
			"period":           row.Period,
			"transactionCount": row.TransactionCount,
			"totalEnergy":      row.TotalEnergyWh,
		})
	}
	return c.JSON(out)
}

func (h *ReportHandler) TopConsumers(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	rows, err := h.reports.TopConsumers(c.Context(), c.Query("group_by", "idTag"), limit)
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(rows))
	for _, row := range rows {
		out = append(out, fiber.Map{
			"group":            row.Key,
			"transactionCount": row.TransactionCount,
			"totalEnergy":      row.TotalEnergyWh,
		})
	}
	return c.JSON(out)
}

func (h *ReportHandler) DailyByChargePoint(c *fiber.Ctx) error {
	var start, end *time.Time
	if s := c.Query("start"); s != "" {
		ts, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid start"})
		}
		start = &ts
	}
	if s := c.Query("end"); s != "" {
		ts, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid end"})
		}
		// Inclusive end of day.
		ts = ts.Add(24*time.Hour - time.Nanosecond)
		end = &ts
	}

	rows, err := h.reports.DailyByChargePoint(c.Context(), start, end)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *ReportHandler) Dashboard(c *fiber.Ctx) error {
	return c.JSON(h.reports.Dashboard(c.Context(), time.Now()))
}

func (h *ReportHandler) Holiday(c *fiber.Ctx) error {
	info, err := h.holidays.Lookup(c.Params("date"))
	if err != nil {
		return err
	}
	return c.JSON(info)
}

type notifyRequest struct {
	Message string   `json:"message"`
	Targets []string `json:"targets"`
}

// Notify pushes a free-text message, either to the users bound to the given
// tags or to every bound recipient when no targets are named.
func (h *ReportHandler) Notify(c *fiber.Ctx) error {
	var req notifyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid body"})
	}
	if req.Message == "" {
		req.Message = "✅ 測試推播：預設訊息"
	}

	recipients, err := h.users.RecipientsFor(c.Context(), req.Targets)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		return domain.ErrNotFound
	}
	if err := h.notifier.Push(c.Context(), req.Message, recipients); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Sent to " + strconv.Itoa(len(recipients)) + " users"})
}
