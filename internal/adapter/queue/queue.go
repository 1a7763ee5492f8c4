package queue

// MessageQueue carries billing events (low balance, settlements) between the
// server and out-of-process consumers. Delivery is at-most-once; nothing in
// the charging path blocks on it.
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}
