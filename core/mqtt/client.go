package mqtt

import "context"

// Publisher sends raw payloads to an MQTT broker.
type Publisher interface {
	// Publish sends payload to topic and blocks until the broker accepted
	// it, the retries are exhausted or ctx is done.
	Publish(ctx context.Context, topic string, payload []byte, qos byte, retained bool) error
}
