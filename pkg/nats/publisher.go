package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"whisper-client/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	streamName    = "WHISPER_STATE"
	subjectPrefix = "whisper.state."
)

// Publisher mirrors state events to a NATS JetStream stream so other
// processes (a second UI, an audit tail) can follow the client state.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// Logger is the subset of the application logger the publisher reports to.
type Logger interface {
	Warn(module, message string, details map[string]interface{})
}

const logModule = "NatsPublisher"

type streamCreator interface {
	CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

func NewPublisher(url string, log Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ensureStream(ctx, js, log)

	return &Publisher{nc: nc, js: js}, nil
}

// ensureStream creates the state stream. A failure is only reported: the
// stream may already exist with another config and publishing still works.
func ensureStream(ctx context.Context, js streamCreator, log Logger) {
	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + ">"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil && log != nil {
		log.Warn(logModule, "Failed to ensure stream", map[string]interface{}{
			"stream": streamName,
			"error":  err.Error(),
		})
	}
}

func Subject(eventType string) string {
	return subjectPrefix + strings.ReplaceAll(eventType, " ", "_")
}

// Publish sends an event to NATS.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(events.ToEnvelope(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	subject := Subject(event.EventType())
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
