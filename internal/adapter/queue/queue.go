package queue

// MessageQueue is the broker behind chat eventing. The server publishes
// typed events through EventPublisher and subscribes to the message-saved
// subject for cross-instance transcript fan-out. Backed by NATS or
// RabbitMQ depending on configuration.
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}
