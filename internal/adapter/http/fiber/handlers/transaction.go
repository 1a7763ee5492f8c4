package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// TransactionHandler serves the transaction reporting surface: listings,
// per-transaction detail with meter samples, cost breakdowns and CSV export.
type TransactionHandler struct {
	transactions ports.TransactionService
	billing      ports.BillingService
	log          *zap.Logger
}

func NewTransactionHandler(transactions ports.TransactionService, billing ports.BillingService, log *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		transactions: transactions,
		billing:      billing,
		log:          log,
	}
}

func parseFilter(c *fiber.Ctx) (ports.TransactionFilter, error) {
	filter := ports.TransactionFilter{
		IdTag:         c.Query("idTag"),
		ChargePointID: c.Query("chargePointId"),
	}
	if s := c.Query("start"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid start %q", domain.ErrValidation, s)
		}
		filter.Start = &ts
	}
	if s := c.Query("end"); s != "" {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return filter, fmt.Errorf("%w: invalid end %q", domain.ErrValidation, s)
		}
		filter.End = &ts
	}
	return filter, nil
}

func (h *TransactionHandler) List(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	txs, err := h.transactions.Find(c.Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(txs)
}

func (h *TransactionHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid transaction id"})
	}
	tx, err := h.transactions.Get(c.Context(), id)
	if err != nil {
		return err
	}
	samples, err := h.transactions.Samples(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"transaction": tx,
		"meterValues": samples,
	})
}

// Cost returns the detailed billing breakdown. Open transactions are a 404:
// there is nothing final to price yet.
func (h *TransactionHandler) Cost(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid transaction id"})
	}
	breakdown, err := h.billing.ComputeCost(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(breakdown)
}

// CostSummary returns the detailed breakdown of every closed transaction in
// the window. A transaction whose cost cannot be computed is skipped, not
// fatal to the whole listing.
func (h *TransactionHandler) CostSummary(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	filter.ClosedOnly = true
	txs, err := h.transactions.Find(c.Context(), filter)
	if err != nil {
		return err
	}

	result := make([]*ports.CostBreakdown, 0, len(txs))
	for _, tx := range txs {
		breakdown, err := h.billing.ComputeCost(c.Context(), tx.ID)
		if err != nil {
			h.log.Warn("cost summary: skipping transaction",
				zap.Int64("transaction_id", tx.ID),
				zap.Error(err))
			continue
		}
		result = append(result, breakdown)
	}
	return c.JSON(result)
}

// ExportCSV streams the filtered, closed transactions as a CSV attachment.
func (h *TransactionHandler) ExportCSV(c *fiber.Ctx) error {
	filter, err := parseFilter(c)
	if err != nil {
		return err
	}
	filter.ClosedOnly = true
	txs, err := h.transactions.Find(c.Context(), filter)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write([]string{"transaction_id", "charge_point_id", "connector_id", "id_tag", "meter_start", "meter_stop", "start_time", "stop_time", "energy_kwh"})
	for _, tx := range txs {
		stopTime := ""
		if tx.StopTime != nil {
			stopTime = tx.StopTime.Format(time.RFC3339)
		}
		meterStop := ""
		if tx.MeterStop != nil {
			meterStop = strconv.Itoa(*tx.MeterStop)
		}
		w.Write([]string{
			strconv.FormatInt(tx.ID, 10),
			tx.ChargePointID,
			strconv.Itoa(tx.ConnectorID),
			tx.IdTag,
			strconv.Itoa(tx.MeterStart),
			meterStop,
			tx.StartTime.Format(time.RFC3339),
			stopTime,
			strconv.FormatFloat(tx.TotalEnergyKWh(), 'f', 3, 64),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=transactions.csv")
	return c.Send(buf.Bytes())
}
