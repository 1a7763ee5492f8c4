package v16

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/observability/telemetry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Server accepts OCPP 1.6 JSON WebSocket connections at /ocpp/1.6/{id}.
// Each connection is served by a single read loop, so calls from one charge
// point are processed strictly in arrival order.
type Server struct {
	handlers *Handlers
	clients  map[string]*websocket.Conn
	mu       sync.RWMutex
	httpSrv  *http.Server
	log      *zap.Logger
}

func NewServer(handlers *Handlers, log *zap.Logger) *Server {
	return &Server{
		handlers: handlers,
		clients:  make(map[string]*websocket.Conn),
		log:      log,
	}
}

// Start blocks serving OCPP traffic until Stop is called.
func (s *Server) Start(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ocpp/1.6/", s.handleWebSocket)

	addr := fmt.Sprintf(":%d", port)
	s.httpSrv = &http.Server{Addr: addr, Handler: mux}

	s.log.Info("Starting OCPP 1.6 WebSocket server", zap.String("addr", addr))
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the listener down and closes every client connection.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	for id, conn := range s.clients {
		conn.Close()
		delete(s.clients, id)
	}
	s.mu.Unlock()

	if s.httpSrv == nil {
		return nil
	}
	err := s.httpSrv.Shutdown(ctx)
	s.log.Info("OCPP 1.6 server stopped")
	return err
}

// ConnectedChargePoints lists the ids with a live session.
func (s *Server) ConnectedChargePoints() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	return ids
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	chargePointID := r.URL.Path[len("/ocpp/1.6/"):]
	if chargePointID == "" {
		http.Error(w, "missing charge point ID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("WebSocket upgrade failed", zap.Error(err))
		return
	}

	// A reconnect replaces the old session: the stale connection is closed
	// and the new one becomes the charge point's session.
	s.mu.Lock()
	if old, ok := s.clients[chargePointID]; ok {
		old.Close()
	}
	s.clients[chargePointID] = conn
	s.mu.Unlock()
	telemetry.ConnectedChargePoints.Inc()

	s.log.Info("Charge point connected", zap.String("charge_point_id", chargePointID))

	defer func() {
		conn.Close()
		s.mu.Lock()
		// Only deregister if we are still the current session.
		if s.clients[chargePointID] == conn {
			delete(s.clients, chargePointID)
		}
		s.mu.Unlock()
		telemetry.ConnectedChargePoints.Dec()
		s.log.Info("Charge point disconnected", zap.String("charge_point_id", chargePointID))
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Error("WebSocket read error", zap.Error(err))
			}
			break
		}

		response, err := s.processMessage(chargePointID, message)
		if err != nil {
			s.log.Error("Failed to process OCPP message",
				zap.String("charge_point_id", chargePointID),
				zap.Error(err),
			)
			continue
		}

		if response != nil {
			if err := conn.WriteMessage(websocket.TextMessage, response); err != nil {
				s.log.Error("Failed to send response", zap.Error(err))
				break
			}
		}
	}
}

// processMessage parses one frame and produces the reply frame, if any.
// Call:       [2, uniqueId, action, payload]
// CallResult: [3, uniqueId, payload]
// CallError:  [4, uniqueId, code, description, details]
func (s *Server) processMessage(chargePointID string, raw []byte) ([]byte, error) {
	var msg []json.RawMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("invalid OCPP frame: %w", err)
	}

	if len(msg) < 3 {
		return nil, fmt.Errorf("OCPP frame too short")
	}

	var msgType int
	if err := json.Unmarshal(msg[0], &msgType); err != nil {
		return nil, fmt.Errorf("invalid message type: %w", err)
	}

	var uniqueID string
	if err := json.Unmarshal(msg[1], &uniqueID); err != nil {
		return nil, fmt.Errorf("invalid unique id: %w", err)
	}

	// Only Call frames from charge points are handled here.
	if msgType != CallMessage || len(msg) < 4 {
		return nil, nil
	}

	var action string
	if err := json.Unmarshal(msg[2], &action); err != nil {
		return nil, fmt.Errorf("invalid action: %w", err)
	}

	s.log.Debug("Received call",
		zap.String("charge_point_id", chargePointID),
		zap.String("action", action),
		zap.String("unique_id", uniqueID),
	)
	telemetry.OCPPMessagesTotal.WithLabelValues(action, "received").Inc()

	opCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	responsePayload, err := s.handlers.HandleMessage(opCtx, chargePointID, action, msg[3])
	if err != nil {
		code, desc := ErrorCodeInternalError, err.Error()
		var callErr *CallError
		if errors.As(err, &callErr) {
			code, desc = callErr.Code, callErr.Description
		}
		telemetry.OCPPCallErrorsTotal.WithLabelValues(action, code).Inc()
		errorResp := []interface{}{CallErrorMessage, uniqueID, code, desc, map[string]string{}}
		return json.Marshal(errorResp)
	}

	telemetry.OCPPMessagesTotal.WithLabelValues(action, "sent").Inc()
	result := []interface{}{CallResultMessage, uniqueID, responsePayload}
	return json.Marshal(result)
}
