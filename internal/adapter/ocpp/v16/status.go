package v16

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/ports"
)

// StatusStore keeps the in-memory connector snapshot and mirrors each update
// into the cache so other processes can read it.
type StatusStore struct {
	mu     sync.RWMutex
	points map[string]map[int]ports.ConnectorState
	cache  ports.Cache
	log    *zap.Logger
}

func NewStatusStore(cache ports.Cache, log *zap.Logger) *StatusStore {
	return &StatusStore{
		points: make(map[string]map[int]ports.ConnectorState),
		cache:  cache,
		log:    log,
	}
}

func (s *StatusStore) SetStatus(chargePointID string, connectorID int, state ports.ConnectorState) {
	s.mu.Lock()
	if s.points[chargePointID] == nil {
		s.points[chargePointID] = make(map[int]ports.ConnectorState)
	}
	s.points[chargePointID][connectorID] = state
	snapshot := make(map[int]ports.ConnectorState, len(s.points[chargePointID]))
	for k, v := range s.points[chargePointID] {
		snapshot[k] = v
	}
	s.mu.Unlock()

	if s.cache == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.cache.Set(ctx, "status:"+chargePointID, string(data), 0); err != nil {
		s.log.Debug("Status cache write failed", zap.Error(err))
	}
}

func (s *StatusStore) Snapshot() map[string]map[int]ports.ConnectorState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]map[int]ports.ConnectorState, len(s.points))
	for cp, connectors := range s.points {
		out[cp] = make(map[int]ports.ConnectorState, len(connectors))
		for id, state := range connectors {
			out[cp][id] = state
		}
	}
	return out
}
