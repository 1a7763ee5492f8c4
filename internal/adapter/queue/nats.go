package queue

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// NATSQueue is the MessageQueue implementation backed by a single NATS
// connection. Reconnects are unbounded; events published while disconnected
// are buffered by the client.
type NATSQueue struct {
	conn *nats.Conn
	subs []*nats.Subscription
	log  *zap.Logger
}

func NewNATSQueue(url string, log *zap.Logger) (MessageQueue, error) {
	conn, err := nats.Connect(url,
		nats.Name("ocpp-csms"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("Successfully connected to NATS", zap.String("url", url))
	return &NATSQueue{conn: conn, log: log}, nil
}

func (q *NATSQueue) Publish(subject string, data []byte) error {
	return q.conn.Publish(subject, data)
}

func (q *NATSQueue) Subscribe(subject string, handler func(data []byte) error) error {
	sub, err := q.conn.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			q.log.Error("Event handler failed",
				zap.String("subject", subject),
				zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	q.subs = append(q.subs, sub)
	return nil
}

// Close drains subscriptions so in-flight handlers finish before the
// connection drops.
func (q *NATSQueue) Close() error {
	for _, sub := range q.subs {
		if err := sub.Drain(); err != nil {
			q.log.Warn("Failed to drain subscription", zap.Error(err))
		}
	}
	q.conn.Close()
	return nil
}
