package pubsub

import (
	"context"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

func New(projectID string) PubSubClient {
	ctx := context.Background()
	pubSubC, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	teardown := func() {
		pubSubC.Close()
	}

	return &client{
		client:   pubSubC,
		teardown: teardown,
	}
}

func (c *client) SendMessage(ctx context.Context, topic EventType, data any) error {
	msgpackData, err := Encode(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	message := &pubsub.Message{
		Data:       msgpackData,
		Attributes: map[string]string{"event_type": string(topic)},
	}
	result := c.client.Topic(string(topic)).Publish(ctx, message)
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return err
	}
	log.Info("SendMessage", "serverID", serverID, "topic", topic)
	return nil
}

func (c *client) Close() error {
	c.teardown()
	return nil
}

// Encode serializes an event payload the way it is put on the wire.
func Encode(data any) ([]byte, error) {
	return msgpack.Marshal(data)
}

// Decode is the inverse of Encode for subscribers.
func Decode(data []byte, returnValue any) error {
	if err := msgpack.Unmarshal(data, returnValue); err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return err
	}
	return nil
}

// disabled drops every event. It is used when no GCP project is configured.
type disabled struct{}

// NewDisabled returns a client that only logs what it would have published.
func NewDisabled() PubSubClient {
	return disabled{}
}

func (disabled) SendMessage(ctx context.Context, topic EventType, data any) error {
	log.Debug("Event publishing disabled, dropping event", "topic", topic)
	return nil
}

func (disabled) Close() error {
	return nil
}
