// Package biometric implements the upload-triggered access logger. Every
// upload produces one audit record whose verdict depends only on whether a
// face was detected.
package biometric

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/your-org/identity-vault/internal/invoke"
	"github.com/your-org/identity-vault/internal/models"
	"github.com/your-org/identity-vault/internal/observability"
	"github.com/your-org/identity-vault/internal/recognition"
	"github.com/your-org/identity-vault/pkg/dto"
)

const handlerName = "biometric_logger"

type Detector interface {
	DetectFaces(ctx context.Context, ref recognition.ImageRef) (int, error)
}

type Writer interface {
	PutAccessLog(ctx context.Context, rec models.AccessLogRecord) error
}

type Publisher interface {
	PublishAccess(ctx context.Context, rec models.AccessLogRecord) error
}

type Handler struct {
	detector  Detector
	store     Writer
	publisher Publisher
	now       func() time.Time
	newID     func() string
}

type Option func(*Handler)

func WithPublisher(p Publisher) Option {
	return func(h *Handler) {
		h.publisher = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(h *Handler) {
		h.newID = newID
	}
}

func NewHandler(detector Detector, store Writer, opts ...Option) *Handler {
	h := &Handler{
		detector: detector,
		store:    store,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle logs an access attempt for the first uploaded object. The object key
// is used as delivered, without decoding.
func (h *Handler) Handle(ctx context.Context, event events.S3Event) (dto.AccessResult, error) {
	ref, err := invoke.FirstObject(event)
	if err != nil {
		return h.fail(ctx, "", err)
	}

	faces, err := h.detector.DetectFaces(ctx, ref)
	if err != nil {
		return h.fail(ctx, ref.Key, err)
	}
	status := models.VerdictFor(faces)

	rec := models.AccessLogRecord{
		AccessID:      h.newID(),
		Timestamp:     strconv.FormatInt(h.now().Unix(), 10),
		Status:        status,
		FileName:      ref.Key,
		SecurityLevel: models.DefaultSecurityLevel,
	}
	if err := h.store.PutAccessLog(ctx, rec); err != nil {
		return h.fail(ctx, ref.Key, err)
	}

	if h.publisher != nil {
		if err := h.publisher.PublishAccess(ctx, rec); err != nil {
			slog.Warn("publish access log", "access_id", rec.AccessID, "error", err)
		}
	}

	slog.Info("verification complete",
		"status", status,
		"faces", faces,
		"access_id", rec.AccessID,
		"key", ref.Key,
	)
	observability.AccessVerdicts.WithLabelValues(string(status)).Inc()
	observability.Invocations.WithLabelValues(handlerName, observability.OutcomeSuccess).Inc()

	return dto.AccessResult{Message: fmt.Sprintf("Verification Complete: %s", status)}, nil
}

func (h *Handler) fail(ctx context.Context, key string, err error) (dto.AccessResult, error) {
	attrs := append([]any{"key", key, "error", err}, invoke.LogAttrs(ctx)...)
	slog.Error("verification failed", attrs...)
	observability.Invocations.WithLabelValues(handlerName, observability.OutcomeFailure).Inc()
	return dto.AccessResult{}, fmt.Errorf("log access for %q: %w", key, err)
}
