package v16

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/observability/telemetry"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

const heartbeatInterval = 300

// CallError is a protocol-level rejection of a Call.
type CallError struct {
	Code        string
	Description string
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

type handlerFunc func(ctx context.Context, chargePointID string, payload json.RawMessage) (interface{}, error)

// Handlers routes OCPP 1.6 actions to their handlers through an explicit
// dispatch table.
type Handlers struct {
	auth       ports.AuthorizationService
	tx         ports.TransactionService
	statusLogs ports.StatusLogRepository
	statuses   ports.StatusStore
	actions    map[string]handlerFunc
	log        *zap.Logger
}

func NewHandlers(
	auth ports.AuthorizationService,
	tx ports.TransactionService,
	statusLogs ports.StatusLogRepository,
	statuses ports.StatusStore,
	log *zap.Logger,
) *Handlers {
	h := &Handlers{
		auth:       auth,
		tx:         tx,
		statusLogs: statusLogs,
		statuses:   statuses,
		log:        log,
	}
	h.actions = map[string]handlerFunc{
		"BootNotification":   h.handleBootNotification,
		"Heartbeat":          h.handleHeartbeat,
		"Authorize":          h.handleAuthorize,
		"StartTransaction":   h.handleStartTransaction,
		"StopTransaction":    h.handleStopTransaction,
		"MeterValues":        h.handleMeterValues,
		"StatusNotification": h.handleStatusNotification,
	}
	return h
}

// HandleMessage dispatches one Call payload. Unknown actions come back as a
// NotImplemented CallError rather than a silent empty result.
func (h *Handlers) HandleMessage(ctx context.Context, chargePointID, action string, payload json.RawMessage) (interface{}, error) {
	fn, ok := h.actions[action]
	if !ok {
		h.log.Warn("Unknown OCPP 1.6 action",
			zap.String("charge_point_id", chargePointID),
			zap.String("action", action),
		)
		return nil, &CallError{Code: ErrorCodeNotImplemented, Description: "action not supported: " + action}
	}
	return fn(ctx, chargePointID, payload)
}

func (h *Handlers) handleBootNotification(ctx context.Context, chargePointID string, payload json.RawMessage) (interface{}, error) {
	var req bootNotificationReq
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, &CallError{Code: ErrorCodeFormationViolation, Description: "invalid BootNotification payload"}
	}

	h.log.Info("BootNotification",
		zap.String("charge_point_id", chargePointID),
		zap.String("vendor", req.ChargePointVendor),
		zap.String("model", req.ChargePointModel),
	)

	return bootNotificationResp{
		Status:      "Accepted",
		CurrentTime: time.Now().UTC().Format(time.RFC3339),
		Interval:    heartbeatInterval,
	}, nil
}

func (h *Handlers) handleHeartbeat(ctx context.Context, chargePointID string, payload json.RawMessage) (interface{}, error) {
	h.log.Debug("Heartbeat", zap.String("charge_point_id", chargePointID))
	return heartbeatResp{CurrentTime: time.Now().UTC().Format(time.RFC3339)}, nil
}

func (h *Handlers) handleAuthorize(ctx context.Context, chargePointID string, payload json.RawMessage) (interface{}, error) {
	var req authorizeReq
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, &CallError{Code: ErrorCodeFormationViolation, Description: "invalid Authorize payload"}
	}

	status, err := h.auth.Authorize(ctx, req.IdTag, time.Now())
	if err != nil {
		// Storage trouble degrades to an Invalid result; the ack the
		// charge point is waiting for still arrives.
		h.log.Error("Authorize lookup failed",
			zap.String("charge_point_id", chargePointID),
			zap.String("id_tag", req.IdTag),
			zap.Error(err),
		)
		return authorizeResp{IdTagInfo: idTagInfo{Status: string(domain.AuthorizationInvalid)}}, nil
	}

	h.log.Info("Authorize",
		zap.String("charge_point_id", chargePointID),
		zap.String("id_tag", req.IdTag),
		zap.String("status", string(status)),
	)
	telemetry.AuthorizationsTotal.WithLabelValues(string(status)).Inc()

	return authorizeResp{IdTagInfo: idTagInfo{Status: string(status)}}, nil
}

func (h *Handlers) handleStartTransaction(ctx context.Context, chargePointID string, payload json.RawMessage) (interface{}, error) {
	var req startTransactionReq
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, &CallError{Code: ErrorCodeFormationViolation, Description: "invalid StartTransaction payload"}
	}

	h.log.Info("StartTransaction",
		zap.String("charge_point_id", chargePointID),
		zap.Int("connector_id", req.ConnectorId),
		zap.String("id_tag", req.IdTag),
		zap.Int("meter_start", req.MeterStart),
	)

	result, err := h.tx.Start(ctx, chargePointID, req.ConnectorId, req.IdTag, req.MeterStart, parseTimestamp(req.Timestamp))
	if err != nil {
		// No transaction was opened. Answer with id 0 and Invalid so the
		// charge point does not begin an unbilled session.
		h.log.Error("StartTransaction failed",
			zap.String("charge_point_id", chargePointID),
			zap.String("id_tag", req.IdTag),
			zap.Error(err),
		)
		return startTransactionResp{
			TransactionId: 0,
			IdTagInfo:     idTagInfo{Status: string(domain.AuthorizationInvalid)},
		}, nil
	}

	telemetry.AuthorizationsTotal.WithLabelValues(string(result.Status)).Inc()
	if result.Status == domain.AuthorizationAccepted {
		telemetry.ActiveChargingSessions.Inc()
	}

	return startTransactionResp{
		TransactionId: result.TransactionID,
		IdTagInfo:     idTagInfo{Status: string(result.Status)},
	}, nil
}

func (h *Handlers) handleStopTransaction(ctx context.Context, chargePointID string, payload json.RawMessage) (interface{}, error) {
	var req stopTransactionReq
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, &CallError{Code: ErrorCodeFormationViolation, Description: "invalid StopTransaction payload"}
	}

	h.log.Info("StopTransaction",
		zap.String("charge_point_id", chargePointID),
		zap.Int64("transaction_id", req.TransactionId),
		zap.Int("meter_stop", req.MeterStop),
		zap.String("reason", req.Reason),
	)

	status, err := h.tx.Stop(ctx, req.TransactionId, req.MeterStop, parseTimestamp(req.Timestamp), req.IdTag, req.Reason)
	if err != nil {
		h.log.Error("StopTransaction failed",
			zap.String("charge_point_id", chargePointID),
			zap.Int64("transaction_id", req.TransactionId),
			zap.Error(err),
		)
		return stopTransactionResp{IdTagInfo: idTagInfo{Status: string(domain.AuthorizationInvalid)}}, nil
	}

	if status == domain.AuthorizationAccepted {
		telemetry.ActiveChargingSessions.Dec()
	}

	return stopTransactionResp{IdTagInfo: idTagInfo{Status: string(status)}}, nil
}

func (h *Handlers) handleMeterValues(ctx context.Context, chargePointID string, payload json.RawMessage) (interface{}, error) {
	var req meterValuesReq
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, &CallError{Code: ErrorCodeFormationViolation, Description: "invalid MeterValues payload"}
	}

	var transactionID int64
	if req.TransactionId != nil {
		transactionID = *req.TransactionId
	}

	var samples []domain.MeterSample
	for _, mv := range req.MeterValue {
		ts := parseTimestamp(mv.Timestamp)
		for _, sv := range mv.SampledValue {
			value, err := strconv.ParseFloat(sv.Value, 64)
			if err != nil {
				h.log.Warn("Skipping unparseable sampled value",
					zap.String("charge_point_id", chargePointID),
					zap.String("value", sv.Value),
				)
				continue
			}
			measurand := sv.Measurand
			if measurand == "" {
				measurand = "Energy.Active.Import.Register"
			}
			samples = append(samples, domain.MeterSample{
				TransactionID: transactionID,
				ChargePointID: chargePointID,
				ConnectorID:   req.ConnectorId,
				Timestamp:     ts,
				Measurand:     measurand,
				Value:         value,
				Unit:          sv.Unit,
			})
		}
	}

	if err := h.tx.RecordSamples(ctx, chargePointID, req.ConnectorId, samples); err != nil {
		// The contract is an empty ack. Dropped samples cost reporting
		// detail, not settlement correctness.
		h.log.Error("Failed to persist meter samples",
			zap.String("charge_point_id", chargePointID),
			zap.Int64("transaction_id", transactionID),
			zap.Error(err),
		)
	}

	h.log.Debug("MeterValues",
		zap.String("charge_point_id", chargePointID),
		zap.Int64("transaction_id", transactionID),
		zap.Int("samples", len(samples)),
	)

	return map[string]interface{}{}, nil
}

func (h *Handlers) handleStatusNotification(ctx context.Context, chargePointID string, payload json.RawMessage) (interface{}, error) {
	var req statusNotificationReq
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, &CallError{Code: ErrorCodeFormationViolation, Description: "invalid StatusNotification payload"}
	}

	ts := parseTimestamp(req.Timestamp)

	h.log.Info("StatusNotification",
		zap.String("charge_point_id", chargePointID),
		zap.Int("connector_id", req.ConnectorId),
		zap.String("status", req.Status),
		zap.String("error_code", req.ErrorCode),
	)

	h.statuses.SetStatus(chargePointID, req.ConnectorId, ports.ConnectorState{
		Status:    req.Status,
		ErrorCode: req.ErrorCode,
		Timestamp: ts,
	})

	entry := &domain.StatusLog{
		ChargePointID: chargePointID,
		ConnectorID:   req.ConnectorId,
		Status:        req.Status,
		Timestamp:     ts,
	}
	if err := h.statusLogs.Save(ctx, entry); err != nil {
		h.log.Warn("Failed to persist status log", zap.Error(err))
	}

	return map[string]interface{}{}, nil
}

// parseTimestamp accepts RFC3339 timestamps and falls back to the server
// clock when the charge point sends something else.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Now().UTC()
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts
	}
	if ts, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return ts
	}
	return time.Now().UTC()
}
