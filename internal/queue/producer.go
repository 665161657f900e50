package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/your-org/identity-vault/internal/models"
	"github.com/your-org/identity-vault/pkg/dto"
)

const (
	RecordsStreamName  = "VAULT"
	RecordsSubjectBase = "vault"

	TopicLabels = "labels"
	TopicAccess = "access"
)

// LabelsSubject is where image label records are published.
func LabelsSubject() string {
	return RecordsSubjectBase + "." + TopicLabels
}

// AccessSubject is where access log records are published, split by verdict.
func AccessSubject(status models.AccessStatus) string {
	return RecordsSubjectBase + "." + TopicAccess + "." + strings.ToLower(string(status))
}

// Publisher fans persisted records out to JetStream.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewPublisher(natsURL string) (*Publisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}

	return &Publisher{nc: nc, js: js}, nil
}

// EnsureStream creates the records stream if it doesn't exist.
// Retries up to maxAttempts times (1s apart) to handle NATS startup delay.
func (p *Publisher) EnsureStream(ctx context.Context, maxAttempts int) error {
	cfg := jetstream.StreamConfig{
		Name:        RecordsStreamName,
		Subjects:    []string{RecordsSubjectBase + ".>"},
		Retention:   jetstream.InterestPolicy,
		MaxAge:      24 * time.Hour,
		MaxMsgs:     1000000,
		Storage:     jetstream.FileStorage,
		Description: "Image label and access log records",
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		_, err = p.js.CreateOrUpdateStream(opCtx, cfg)
		cancel()
		if err == nil {
			slog.Info("ensured NATS stream", "name", cfg.Name)
			return nil
		}
		slog.Warn("ensure NATS stream (retrying...)", "name", cfg.Name, "attempt", attempt, "error", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
		}
	}
	return fmt.Errorf("create stream %s: %w (after %d attempts)", cfg.Name, err, maxAttempts)
}

// PublishLabels publishes an image label record.
func (p *Publisher) PublishLabels(ctx context.Context, rec models.ImageLabelRecord) error {
	return p.publish(ctx, LabelsSubject(), TopicLabels, rec)
}

// PublishAccess publishes an access log record.
func (p *Publisher) PublishAccess(ctx context.Context, rec models.AccessLogRecord) error {
	return p.publish(ctx, AccessSubject(rec.Status), TopicAccess, rec)
}

func (p *Publisher) publish(ctx context.Context, subject, topic string, data any) error {
	payload, err := json.Marshal(dto.RecordEvent{
		Topic:     topic,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal %s record: %w", topic, err)
	}

	if _, err := p.js.Publish(ctx, subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) Ping() error {
	if !p.nc.IsConnected() {
		return fmt.Errorf("nats not connected")
	}
	return nil
}

func (p *Publisher) Close() {
	p.nc.Close()
}
