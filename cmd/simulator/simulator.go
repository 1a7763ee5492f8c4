package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SimulatorConfig holds the simulator configuration
type SimulatorConfig struct {
	ServerURL       string
	ChargePointID   string
	Vendor          string
	Model           string
	SerialNumber    string
	FirmwareVersion string
	IdTag           string
	ConnectorCount  int
	MeterStepWh     int
}

// ConnectorState represents a connector's state
type ConnectorState struct {
	ID         int
	Status     string // Available, Preparing, Charging, Finishing, Faulted
	MeterWh    int
	IsCharging bool
}

// Simulator simulates an OCPP 1.6 charge point
type Simulator struct {
	config     *SimulatorConfig
	conn       *websocket.Conn
	log        *zap.Logger
	connectors []ConnectorState

	// State
	currentTxID       int64
	chargingConnector int
	isCharging        bool
	heartbeatInterval int

	// Message handling
	messageID   int
	pendingMsgs map[string]chan []byte
	mu          sync.RWMutex

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewSimulator creates a new charge point simulator
func NewSimulator(config *SimulatorConfig, log *zap.Logger) *Simulator {
	connectors := make([]ConnectorState, config.ConnectorCount)
	for i := 0; i < config.ConnectorCount; i++ {
		connectors[i] = ConnectorState{
			ID:     i + 1,
			Status: "Available",
		}
	}

	return &Simulator{
		config:            config,
		log:               log,
		connectors:        connectors,
		pendingMsgs:       make(map[string]chan []byte),
		stopChan:          make(chan struct{}),
		heartbeatInterval: 300,
	}
}

// Connect connects to the central system and sends BootNotification
func (s *Simulator) Connect() error {
	url := fmt.Sprintf("%s/%s", s.config.ServerURL, s.config.ChargePointID)

	dialer := websocket.Dialer{
		Subprotocols: []string{"ocpp1.6"},
	}

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	s.conn = conn
	s.log.Info("Connected to central system",
		zap.String("url", url),
		zap.String("chargePointID", s.config.ChargePointID),
	)

	// Start message reader
	s.wg.Add(1)
	go s.readMessages()

	// Send BootNotification
	resp, err := s.sendBootNotification()
	if err != nil {
		s.log.Error("BootNotification failed", zap.Error(err))
	} else {
		s.log.Info("BootNotification response", zap.Any("response", resp))
		if interval, ok := resp["interval"].(float64); ok {
			s.heartbeatInterval = int(interval)
		}
	}

	// Announce connectors
	for _, c := range s.connectors {
		s.sendStatusNotification(c.ID, c.Status, "NoError")
	}

	// Start heartbeat goroutine
	s.wg.Add(1)
	go s.heartbeatLoop()

	return nil
}

// Stop stops the simulator
func (s *Simulator) Stop() {
	close(s.stopChan)
	if s.conn != nil {
		s.conn.Close()
	}
	s.wg.Wait()
}

// readMessages reads and processes incoming messages
func (s *Simulator) readMessages() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopChan:
			return
		default:
			_, message, err := s.conn.ReadMessage()
			if err != nil {
				s.log.Error("Read error", zap.Error(err))
				return
			}
			s.handleMessage(message)
		}
	}
}

// handleMessage processes an incoming OCPP frame
func (s *Simulator) handleMessage(data []byte) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.log.Error("Invalid message", zap.Error(err))
		return
	}

	if len(raw) < 3 {
		return
	}

	var msgType int
	json.Unmarshal(raw[0], &msgType)

	var msgID string
	json.Unmarshal(raw[1], &msgID)

	switch msgType {
	case 3: // CallResult - response to our request
		s.mu.Lock()
		if ch, ok := s.pendingMsgs[msgID]; ok {
			ch <- raw[2]
			delete(s.pendingMsgs, msgID)
		}
		s.mu.Unlock()

	case 4: // CallError
		var code, desc string
		if len(raw) >= 4 {
			json.Unmarshal(raw[2], &code)
			json.Unmarshal(raw[3], &desc)
		}
		s.log.Warn("CallError from server",
			zap.String("uniqueID", msgID),
			zap.String("code", code),
			zap.String("description", desc),
		)
		s.mu.Lock()
		if ch, ok := s.pendingMsgs[msgID]; ok {
			close(ch)
			delete(s.pendingMsgs, msgID)
		}
		s.mu.Unlock()
	}
}

// --- Charging Scenario ---

// StartCharging authorizes the configured tag and opens a transaction.
func (s *Simulator) StartCharging(connectorID int) error {
	if s.isCharging {
		return fmt.Errorf("already charging (transaction %d)", s.currentTxID)
	}
	if connectorID < 1 || connectorID > len(s.connectors) {
		return fmt.Errorf("no such connector: %d", connectorID)
	}

	auth, err := s.sendAuthorize()
	if err != nil {
		return err
	}
	if status := idTagStatus(auth); status != "Accepted" {
		return fmt.Errorf("authorization rejected: %s", status)
	}

	meterStart := s.connectors[connectorID-1].MeterWh
	resp, err := s.sendStartTransaction(connectorID, meterStart)
	if err != nil {
		return err
	}
	if status := idTagStatus(resp); status != "Accepted" {
		return fmt.Errorf("start rejected: %s", status)
	}

	txID, _ := resp["transactionId"].(float64)
	s.currentTxID = int64(txID)
	s.chargingConnector = connectorID
	s.isCharging = true
	s.connectors[connectorID-1].Status = "Charging"
	s.connectors[connectorID-1].IsCharging = true
	s.sendStatusNotification(connectorID, "Charging", "NoError")

	s.log.Info("Charging started",
		zap.Int64("transactionID", s.currentTxID),
		zap.Int("connectorID", connectorID),
	)
	return nil
}

// AdvanceMeter bumps the register and reports it against the open transaction.
func (s *Simulator) AdvanceMeter(deltaWh int) error {
	if !s.isCharging {
		return fmt.Errorf("not charging")
	}
	idx := s.chargingConnector - 1
	s.connectors[idx].MeterWh += deltaWh
	return s.sendMeterValues(s.chargingConnector, s.currentTxID, s.connectors[idx].MeterWh)
}

// StopCharging closes the open transaction at the current register value.
func (s *Simulator) StopCharging(reason string) error {
	if !s.isCharging {
		return fmt.Errorf("not charging")
	}
	idx := s.chargingConnector - 1
	resp, err := s.sendStopTransaction(s.currentTxID, s.connectors[idx].MeterWh, reason)
	if err != nil {
		return err
	}

	s.log.Info("Charging stopped",
		zap.Int64("transactionID", s.currentTxID),
		zap.String("idTagStatus", idTagStatus(resp)),
	)

	s.isCharging = false
	s.connectors[idx].Status = "Available"
	s.connectors[idx].IsCharging = false
	s.sendStatusNotification(s.chargingConnector, "Available", "NoError")
	s.currentTxID = 0
	s.chargingConnector = 0
	return nil
}

// RunScenario plays a full boot-to-settlement session unattended.
func (s *Simulator) RunScenario(steps int, stepInterval time.Duration) error {
	if err := s.StartCharging(1); err != nil {
		return err
	}
	for i := 0; i < steps; i++ {
		select {
		case <-s.stopChan:
			return nil
		case <-time.After(stepInterval):
		}
		if err := s.AdvanceMeter(s.config.MeterStepWh); err != nil {
			return err
		}
	}
	return s.StopCharging("Local")
}

func idTagStatus(resp map[string]interface{}) string {
	info, ok := resp["idTagInfo"].(map[string]interface{})
	if !ok {
		return ""
	}
	status, _ := info["status"].(string)
	return status
}

// --- Outgoing Messages ---

func (s *Simulator) sendCall(action string, payload interface{}) (map[string]interface{}, error) {
	s.mu.Lock()
	s.messageID++
	msgID := fmt.Sprintf("%d", s.messageID)
	responseChan := make(chan []byte, 1)
	s.pendingMsgs[msgID] = responseChan
	s.mu.Unlock()

	msg := []interface{}{2, msgID, action, payload}
	data, _ := json.Marshal(msg)

	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return nil, err
	}

	select {
	case respData, ok := <-responseChan:
		if !ok {
			return nil, fmt.Errorf("%s rejected by server", action)
		}
		var result map[string]interface{}
		json.Unmarshal(respData, &result)
		return result, nil
	case <-time.After(30 * time.Second):
		return nil, fmt.Errorf("timeout waiting for response")
	}
}

func (s *Simulator) sendBootNotification() (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"chargePointVendor":       s.config.Vendor,
		"chargePointModel":        s.config.Model,
		"chargePointSerialNumber": s.config.SerialNumber,
		"firmwareVersion":         s.config.FirmwareVersion,
	}
	return s.sendCall("BootNotification", payload)
}

func (s *Simulator) sendHeartbeat() {
	s.sendCall("Heartbeat", map[string]interface{}{})
}

func (s *Simulator) sendAuthorize() (map[string]interface{}, error) {
	return s.sendCall("Authorize", map[string]interface{}{
		"idTag": s.config.IdTag,
	})
}

func (s *Simulator) sendStartTransaction(connectorID, meterStart int) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"connectorId": connectorID,
		"idTag":       s.config.IdTag,
		"meterStart":  meterStart,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}
	return s.sendCall("StartTransaction", payload)
}

func (s *Simulator) sendStopTransaction(txID int64, meterStop int, reason string) (map[string]interface{}, error) {
	payload := map[string]interface{}{
		"transactionId": txID,
		"idTag":         s.config.IdTag,
		"meterStop":     meterStop,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"reason":        reason,
	}
	return s.sendCall("StopTransaction", payload)
}

func (s *Simulator) sendStatusNotification(connectorID int, status, errorCode string) {
	payload := map[string]interface{}{
		"connectorId": connectorID,
		"status":      status,
		"errorCode":   errorCode,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	}
	s.sendCall("StatusNotification", payload)
}

func (s *Simulator) sendMeterValues(connectorID int, txID int64, valueWh int) error {
	payload := map[string]interface{}{
		"connectorId":   connectorID,
		"transactionId": txID,
		"meterValue": []map[string]interface{}{
			{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
				"sampledValue": []map[string]interface{}{
					{
						"value":     fmt.Sprintf("%d", valueWh),
						"measurand": "Energy.Active.Import.Register",
						"unit":      "Wh",
					},
				},
			},
		},
	}
	_, err := s.sendCall("MeterValues", payload)
	return err
}

func (s *Simulator) heartbeatLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(time.Duration(s.heartbeatInterval) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.sendHeartbeat()
		}
	}
}

// RunInteractive runs the simulator in interactive mode
func (s *Simulator) RunInteractive() {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		parts := strings.Fields(line)

		if len(parts) == 0 {
			fmt.Print("> ")
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "start":
			connID := 1
			if len(args) > 0 {
				connID, _ = strconv.Atoi(args[0])
			}
			if err := s.StartCharging(connID); err != nil {
				fmt.Printf("Start failed: %v\n", err)
			} else {
				fmt.Printf("Started charging on connector %d, TX: %d\n", connID, s.currentTxID)
			}

		case "stop":
			if err := s.StopCharging("Local"); err != nil {
				fmt.Printf("Stop failed: %v\n", err)
			} else {
				fmt.Println("Stopped charging")
			}

		case "meter":
			if len(args) < 1 {
				fmt.Println("Usage: meter <deltaWh>")
			} else {
				delta, _ := strconv.Atoi(args[0])
				if err := s.AdvanceMeter(delta); err != nil {
					fmt.Printf("Meter failed: %v\n", err)
				} else {
					fmt.Printf("Advanced meter by %d Wh\n", delta)
				}
			}

		case "status":
			if len(args) < 1 {
				fmt.Println("Usage: status <connector> [status]")
			} else {
				connID, _ := strconv.Atoi(args[0])
				status := "Available"
				if len(args) > 1 {
					status = args[1]
				}
				s.sendStatusNotification(connID, status, "NoError")
				fmt.Printf("Sent status %s for connector %d\n", status, connID)
			}

		case "auth":
			resp, err := s.sendAuthorize()
			if err != nil {
				fmt.Printf("Authorize failed: %v\n", err)
			} else {
				fmt.Printf("Authorize: %s\n", idTagStatus(resp))
			}

		case "heartbeat":
			s.sendHeartbeat()
			fmt.Println("Sent heartbeat")

		case "fault":
			connID := 1
			if len(args) > 0 {
				connID, _ = strconv.Atoi(args[0])
			}
			s.sendStatusNotification(connID, "Faulted", "OtherError")
			fmt.Printf("Sent fault status for connector %d\n", connID)

		case "quit", "exit":
			fmt.Println("Goodbye!")
			return

		default:
			fmt.Printf("Unknown command: %s\n", cmd)
		}

		fmt.Print("> ")
	}
}
