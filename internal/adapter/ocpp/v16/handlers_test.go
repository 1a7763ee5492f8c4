package v16

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/domain"
	"github.com/seu-repo/ocpp-csms/internal/mocks"
	"github.com/seu-repo/ocpp-csms/internal/ports"
)

func newTestLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func newTestHandlers(auth ports.AuthorizationService, tx ports.TransactionService, statusLogs ports.StatusLogRepository, statuses ports.StatusStore) *Handlers {
	if auth == nil {
		auth = &mocks.MockAuthorizationService{}
	}
	if tx == nil {
		tx = &mocks.MockTransactionService{}
	}
	if statusLogs == nil {
		statusLogs = &mocks.MockStatusLogRepository{}
	}
	if statuses == nil {
		statuses = &mocks.MockStatusStore{}
	}
	return NewHandlers(auth, tx, statusLogs, statuses, newTestLogger())
}

func TestHandleMessage_UnknownAction(t *testing.T) {
	// Arrange
	h := newTestHandlers(nil, nil, nil, nil)

	// Act
	_, err := h.HandleMessage(context.Background(), "CP001", "DataTransfer", json.RawMessage(`{}`))

	// Assert
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected CallError, got %v", err)
	}
	if callErr.Code != ErrorCodeNotImplemented {
		t.Errorf("expected NotImplemented, got %s", callErr.Code)
	}
}

func TestHandleMessage_MalformedPayload(t *testing.T) {
	// Arrange
	h := newTestHandlers(nil, nil, nil, nil)

	// Act
	_, err := h.HandleMessage(context.Background(), "CP001", "Authorize", json.RawMessage(`[not json`))

	// Assert
	var callErr *CallError
	if !errors.As(err, &callErr) {
		t.Fatalf("expected CallError, got %v", err)
	}
	if callErr.Code != ErrorCodeFormationViolation {
		t.Errorf("expected FormationViolation, got %s", callErr.Code)
	}
}

func TestBootNotification_AcceptedWithInterval(t *testing.T) {
	// Arrange
	h := newTestHandlers(nil, nil, nil, nil)
	payload := json.RawMessage(`{"chargePointVendor":"SIGEC","chargePointModel":"X1"}`)

	// Act
	out, err := h.HandleMessage(context.Background(), "CP001", "BootNotification", payload)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp, ok := out.(bootNotificationResp)
	if !ok {
		t.Fatalf("unexpected response type %T", out)
	}
	if resp.Status != "Accepted" {
		t.Errorf("expected Accepted, got %s", resp.Status)
	}
	if resp.Interval != heartbeatInterval {
		t.Errorf("expected interval %d, got %d", heartbeatInterval, resp.Interval)
	}
}

func TestAuthorize_RejectionIsDataNotFault(t *testing.T) {
	// Arrange: a blocked tag still gets a CallResult, never a CallError
	auth := &mocks.MockAuthorizationService{
		AuthorizeFunc: func(ctx context.Context, idTag string, now time.Time) (domain.AuthorizationStatus, error) {
			return domain.AuthorizationExpired, nil
		},
	}
	h := newTestHandlers(auth, nil, nil, nil)

	// Act
	out, err := h.HandleMessage(context.Background(), "CP001", "Authorize", json.RawMessage(`{"idTag":"TAG001"}`))

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp := out.(authorizeResp)
	if resp.IdTagInfo.Status != "Expired" {
		t.Errorf("expected Expired in idTagInfo, got %s", resp.IdTagInfo.Status)
	}
}

func TestStartTransaction_Accepted(t *testing.T) {
	// Arrange
	tx := &mocks.MockTransactionService{
		StartFunc: func(ctx context.Context, chargePointID string, connectorID int, idTag string, meterStart int, timestamp time.Time) (ports.StartResult, error) {
			if chargePointID != "CP001" || connectorID != 1 || idTag != "ABC123" || meterStart != 1000 {
				t.Errorf("unexpected start args: %s %d %s %d", chargePointID, connectorID, idTag, meterStart)
			}
			return ports.StartResult{TransactionID: 1720346400000, Status: domain.AuthorizationAccepted}, nil
		},
	}
	h := newTestHandlers(nil, tx, nil, nil)
	payload := json.RawMessage(`{"connectorId":1,"idTag":"ABC123","meterStart":1000,"timestamp":"2025-07-07T10:00:00Z"}`)

	// Act
	out, err := h.HandleMessage(context.Background(), "CP001", "StartTransaction", payload)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp := out.(startTransactionResp)
	if resp.TransactionId != 1720346400000 {
		t.Errorf("expected transaction id 1720346400000, got %d", resp.TransactionId)
	}
	if resp.IdTagInfo.Status != "Accepted" {
		t.Errorf("expected Accepted, got %s", resp.IdTagInfo.Status)
	}
}

func TestStartTransaction_RejectedKeepsZeroID(t *testing.T) {
	// Arrange
	tx := &mocks.MockTransactionService{
		StartFunc: func(ctx context.Context, chargePointID string, connectorID int, idTag string, meterStart int, timestamp time.Time) (ports.StartResult, error) {
			return ports.StartResult{TransactionID: 0, Status: domain.AuthorizationBlocked}, nil
		},
	}
	h := newTestHandlers(nil, tx, nil, nil)
	payload := json.RawMessage(`{"connectorId":1,"idTag":"USER999","meterStart":0,"timestamp":"2025-07-07T10:00:00Z"}`)

	// Act
	out, err := h.HandleMessage(context.Background(), "CP001", "StartTransaction", payload)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp := out.(startTransactionResp)
	if resp.TransactionId != 0 {
		t.Errorf("expected transaction id 0, got %d", resp.TransactionId)
	}
	if resp.IdTagInfo.Status != "Blocked" {
		t.Errorf("expected Blocked, got %s", resp.IdTagInfo.Status)
	}
}

func TestStopTransaction_PassesThroughStatus(t *testing.T) {
	// Arrange
	tx := &mocks.MockTransactionService{
		StopFunc: func(ctx context.Context, transactionID int64, meterStop int, timestamp time.Time, idTag, reason string) (domain.AuthorizationStatus, error) {
			if transactionID != 42 || meterStop != 3000 || reason != "Local" {
				t.Errorf("unexpected stop args: %d %d %s", transactionID, meterStop, reason)
			}
			return domain.AuthorizationExpired, nil
		},
	}
	h := newTestHandlers(nil, tx, nil, nil)
	payload := json.RawMessage(`{"transactionId":42,"meterStop":3000,"timestamp":"2025-07-07T11:00:00Z","reason":"Local"}`)

	// Act
	out, err := h.HandleMessage(context.Background(), "CP001", "StopTransaction", payload)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	resp := out.(stopTransactionResp)
	if resp.IdTagInfo.Status != "Expired" {
		t.Errorf("expected Expired, got %s", resp.IdTagInfo.Status)
	}
}

func TestMeterValues_ParsesNestedSamples(t *testing.T) {
	// Arrange
	var got []domain.MeterSample
	tx := &mocks.MockTransactionService{
		RecordSamplesFunc: func(ctx context.Context, chargePointID string, connectorID int, samples []domain.MeterSample) error {
			got = samples
			return nil
		},
	}
	h := newTestHandlers(nil, tx, nil, nil)
	payload := json.RawMessage(`{
		"connectorId": 1,
		"transactionId": 42,
		"meterValue": [
			{"timestamp": "2025-07-07T10:30:00Z", "sampledValue": [
				{"value": "1500", "unit": "Wh"},
				{"value": "garbage", "unit": "Wh"}
			]}
		]
	}`)

	// Act
	_, err := h.HandleMessage(context.Background(), "CP001", "MeterValues", payload)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected the unparseable value skipped, got %d samples", len(got))
	}
	if got[0].Value != 1500 {
		t.Errorf("expected value 1500, got %v", got[0].Value)
	}
	if got[0].TransactionID != 42 {
		t.Errorf("expected transaction 42, got %d", got[0].TransactionID)
	}
	if got[0].Measurand != "Energy.Active.Import.Register" {
		t.Errorf("expected default measurand, got %s", got[0].Measurand)
	}
}

func TestStatusNotification_UpdatesSnapshotAndLog(t *testing.T) {
	// Arrange
	statuses := &mocks.MockStatusStore{}
	var saved *domain.StatusLog
	statusLogs := &mocks.MockStatusLogRepository{
		SaveFunc: func(ctx context.Context, log *domain.StatusLog) error {
			saved = log
			return nil
		},
	}
	h := newTestHandlers(nil, nil, statusLogs, statuses)
	payload := json.RawMessage(`{"connectorId":2,"status":"Charging","errorCode":"NoError","timestamp":"2025-07-07T10:00:00Z"}`)

	// Act
	_, err := h.HandleMessage(context.Background(), "CP001", "StatusNotification", payload)

	// Assert
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	state := statuses.States["CP001"][2]
	if state.Status != "Charging" {
		t.Errorf("expected Charging in snapshot, got %s", state.Status)
	}
	if saved == nil || saved.Status != "Charging" || saved.ConnectorID != 2 {
		t.Errorf("unexpected status log: %+v", saved)
	}
}

func TestStatusNotification_LogFailureStillAcks(t *testing.T) {
	// Arrange: persistence trouble must not fail the protocol ack
	statusLogs := &mocks.MockStatusLogRepository{
		SaveFunc: func(ctx context.Context, log *domain.StatusLog) error {
			return errors.New("db down")
		},
	}
	h := newTestHandlers(nil, nil, statusLogs, nil)
	payload := json.RawMessage(`{"connectorId":1,"status":"Available","errorCode":"NoError"}`)

	// Act
	_, err := h.HandleMessage(context.Background(), "CP001", "StatusNotification", payload)

	// Assert
	if err != nil {
		t.Fatalf("expected an ack despite log failure, got %v", err)
	}
}

func TestAuthorize_StorageFailureDegradesToInvalid(t *testing.T) {
	// Arrange: the tag lookup blows up but the ack must still arrive
	auth := &mocks.MockAuthorizationService{
		AuthorizeFunc: func(ctx context.Context, idTag string, now time.Time) (domain.AuthorizationStatus, error) {
			return "", errors.New("db down")
		},
	}
	h := newTestHandlers(auth, nil, nil, nil)

	// Act
	out, err := h.HandleMessage(context.Background(), "CP001", "Authorize", json.RawMessage(`{"idTag":"TAG001"}`))

	// Assert
	if err != nil {
		t.Fatalf("expected a degraded result, got %v", err)
	}
	resp := out.(authorizeResp)
	if resp.IdTagInfo.Status != "Invalid" {
		t.Errorf("expected Invalid, got %s", resp.IdTagInfo.Status)
	}
}

func TestStartTransaction_StorageFailureDegradesToInvalid(t *testing.T) {
	// Arrange
	tx := &mocks.MockTransactionService{
		StartFunc: func(ctx context.Context, chargePointID string, connectorID int, idTag string, meterStart int, timestamp time.Time) (ports.StartResult, error) {
			return ports.StartResult{}, errors.New("db down")
		},
	}
	h := newTestHandlers(nil, tx, nil, nil)
	payload := json.RawMessage(`{"connectorId":1,"idTag":"ABC123","meterStart":1000,"timestamp":"2025-07-07T10:00:00Z"}`)

	// Act
	out, err := h.HandleMessage(context.Background(), "CP001", "StartTransaction", payload)

	// Assert: no transaction was opened, so id 0 and Invalid
	if err != nil {
		t.Fatalf("expected a degraded result, got %v", err)
	}
	resp := out.(startTransactionResp)
	if resp.TransactionId != 0 {
		t.Errorf("expected transaction id 0, got %d", resp.TransactionId)
	}
	if resp.IdTagInfo.Status != "Invalid" {
		t.Errorf("expected Invalid, got %s", resp.IdTagInfo.Status)
	}
}

func TestStopTransaction_StorageFailureDegradesToInvalid(t *testing.T) {
	// Arrange
	tx := &mocks.MockTransactionService{
		StopFunc: func(ctx context.Context, transactionID int64, meterStop int, timestamp time.Time, idTag, reason string) (domain.AuthorizationStatus, error) {
			return "", errors.New("db down")
		},
	}
	h := newTestHandlers(nil, tx, nil, nil)
	payload := json.RawMessage(`{"transactionId":42,"meterStop":3000,"timestamp":"2025-07-07T11:00:00Z"}`)

	// Act
	out, err := h.HandleMessage(context.Background(), "CP001", "StopTransaction", payload)

	// Assert
	if err != nil {
		t.Fatalf("expected a degraded result, got %v", err)
	}
	resp := out.(stopTransactionResp)
	if resp.IdTagInfo.Status != "Invalid" {
		t.Errorf("expected Invalid, got %s", resp.IdTagInfo.Status)
	}
}

func TestMeterValues_StorageFailureStillAcks(t *testing.T) {
	// Arrange
	tx := &mocks.MockTransactionService{
		RecordSamplesFunc: func(ctx context.Context, chargePointID string, connectorID int, samples []domain.MeterSample) error {
			return errors.New("db down")
		},
	}
	h := newTestHandlers(nil, tx, nil, nil)
	payload := json.RawMessage(`{
		"connectorId": 1,
		"meterValue": [
			{"timestamp": "2025-07-07T10:30:00Z", "sampledValue": [{"value": "1500"}]}
		]
	}`)

	// Act
	_, err := h.HandleMessage(context.Background(), "CP001", "MeterValues", payload)

	// Assert
	if err != nil {
		t.Fatalf("expected an empty ack despite the storage failure, got %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	// RFC3339 parses exactly
	got := parseTimestamp("2025-07-07T10:00:00Z")
	want := time.Date(2025, time.July, 7, 10, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected %s, got %s", want, got)
	}

	// Bare local form parses too
	got = parseTimestamp("2025-07-07T10:00:00")
	if got.Year() != 2025 || got.Hour() != 10 {
		t.Errorf("unexpected bare-form parse: %s", got)
	}

	// Garbage falls back to the server clock
	before := time.Now().UTC().Add(-time.Second)
	got = parseTimestamp("whenever")
	if got.Before(before) {
		t.Errorf("expected a fresh fallback timestamp, got %s", got)
	}
}
