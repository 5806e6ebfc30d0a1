package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Forwarder receives a copy of every event published on the bus (e.g. NATS).
type Forwarder interface {
	Publish(ctx context.Context, e Event) error
}

// Bus fans state events out to in-process subscribers over a watermill
// gochannel and mirrors them to optional forwarders.
type Bus struct {
	pubSub     *gochannel.GoChannel
	topic      string
	forwarders []Forwarder
}

func NewBus(topic string, forwarders ...Forwarder) *Bus {
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NopLogger{},
	)
	return &Bus{pubSub: pubSub, topic: topic, forwarders: forwarders}
}

func (b *Bus) Emit(ctx context.Context, e Event) error {
	payload, err := json.Marshal(ToEnvelope(e))
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", e.EventType(), err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", e.EventType())
	if err := b.pubSub.Publish(b.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event %s: %w", e.EventType(), err)
	}

	for _, f := range b.forwarders {
		if err := f.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe streams decoded envelopes until ctx is done or the bus closes.
func (b *Bus) Subscribe(ctx context.Context) (<-chan Envelope, error) {
	messages, err := b.pubSub.Subscribe(ctx, b.topic)
	if err != nil {
		return nil, err
	}

	out := make(chan Envelope, 64)
	go func() {
		defer close(out)
		for msg := range messages {
			var env Envelope
			if err := json.Unmarshal(msg.Payload, &env); err != nil {
				msg.Ack() // undecodable, drop it
				continue
			}
			msg.Ack()
			select {
			case out <- env:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error {
	return b.pubSub.Close()
}
