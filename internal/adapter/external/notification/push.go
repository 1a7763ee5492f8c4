package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/ocpp-csms/internal/ports"
)

const defaultPushEndpoint = "https://api.line.me/v2/bot/message/push"

// PushAdapter delivers text messages through the LINE Messaging API push
// endpoint. Delivery is best-effort: a missing token turns every send into a
// logged no-op, and the breaker sheds calls while the API is failing.
type PushAdapter struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker
	log         *zap.Logger
}

func NewPushAdapter(endpoint, accessToken string, log *zap.Logger) ports.Notifier {
	if endpoint == "" {
		endpoint = defaultPushEndpoint
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "push-notifier",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info("Push notifier breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &PushAdapter{
		endpoint:    endpoint,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		breaker:     breaker,
		log:         log,
	}
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []pushMessage `json:"messages"`
}

type pushMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Push sends the message to each recipient individually. The first hard
// failure aborts the remaining sends; recipients already notified stay
// notified.
func (a *PushAdapter) Push(ctx context.Context, message string, recipients []string) error {
	if a.accessToken == "" {
		a.log.Warn("Push adapter not configured, skipping send",
			zap.Int("recipients", len(recipients)),
		)
		return nil
	}

	for _, to := range recipients {
		if _, err := a.breaker.Execute(func() (interface{}, error) {
			return nil, a.send(ctx, to, message)
		}); err != nil {
			return fmt.Errorf("push to %s: %w", to, err)
		}
	}
	return nil
}

func (a *PushAdapter) send(ctx context.Context, to, message string) error {
	payload, err := json.Marshal(pushRequest{
		To:       to,
		Messages: []pushMessage{{Type: "text", Text: message}},
	})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create push request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send push request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		a.log.Error("Push API error",
			zap.Int("status", resp.StatusCode),
			zap.String("to", to),
		)
		return fmt.Errorf("push API status %d", resp.StatusCode)
	}

	a.log.Info("Push notification sent", zap.String("to", to))
	return nil
}
