// Package labels implements the upload-triggered label analyzer.
package labels

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/your-org/identity-vault/internal/invoke"
	"github.com/your-org/identity-vault/internal/models"
	"github.com/your-org/identity-vault/internal/observability"
	"github.com/your-org/identity-vault/internal/recognition"
	"github.com/your-org/identity-vault/pkg/dto"
)

const (
	MaxLabels     = 5
	MinConfidence = 50

	ReasonUnsupportedFormat = "unsupported format"

	handlerName = "label_analyzer"
)

var supportedFormats = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

type Detector interface {
	DetectLabels(ctx context.Context, ref recognition.ImageRef, maxLabels int32, minConfidence float32) ([]recognition.Label, error)
}

type Writer interface {
	PutImageLabels(ctx context.Context, rec models.ImageLabelRecord) error
}

type Publisher interface {
	PublishLabels(ctx context.Context, rec models.ImageLabelRecord) error
}

type Handler struct {
	detector  Detector
	store     Writer
	publisher Publisher
}

type Option func(*Handler)

// WithPublisher fans every stored record out to p after the write succeeds.
func WithPublisher(p Publisher) Option {
	return func(h *Handler) {
		h.publisher = p
	}
}

func NewHandler(detector Detector, store Writer, opts ...Option) *Handler {
	h := &Handler{detector: detector, store: store}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Extension returns the lower-cased text after the last dot of key, or the
// whole key when it has no dot.
func Extension(key string) string {
	return strings.ToLower(key[strings.LastIndex(key, ".")+1:])
}

// Handle analyzes the first uploaded object of the event. Errors are returned
// to the runtime so the invocation is reported as failed.
func (h *Handler) Handle(ctx context.Context, event events.S3Event) (dto.LabelResult, error) {
	ref, err := invoke.FirstObject(event)
	if err != nil {
		return h.fail(ctx, "", err)
	}

	key := DecodeKey(ref.Key)
	ref.Key = key

	if ext := Extension(key); !supportedFormats[ext] {
		slog.Info("skipping unsupported format", "key", key, "extension", ext)
		observability.Invocations.WithLabelValues(handlerName, observability.OutcomeSkipped).Inc()
		return dto.LabelResult{
			Status: dto.LabelStatusSkipped,
			Reason: ReasonUnsupportedFormat,
			Key:    key,
		}, nil
	}

	labels, err := h.detector.DetectLabels(ctx, ref, MaxLabels, MinConfidence)
	if err != nil {
		return h.fail(ctx, key, err)
	}

	names := make([]string, 0, len(labels))
	for _, l := range labels {
		names = append(names, l.Name)
	}

	confidence := "0"
	if len(labels) > 0 {
		confidence = strconv.FormatFloat(float64(labels[0].Confidence), 'f', -1, 64)
	}

	rec := models.ImageLabelRecord{
		ImageID:    key,
		Bucket:     ref.Bucket,
		Labels:     names,
		Confidence: confidence,
	}
	if err := h.store.PutImageLabels(ctx, rec); err != nil {
		return h.fail(ctx, key, err)
	}

	if h.publisher != nil {
		if err := h.publisher.PublishLabels(ctx, rec); err != nil {
			slog.Warn("publish image labels", "key", key, "error", err)
		}
	}

	slog.Info("image analyzed", "key", key, "labels", names, "confidence", confidence)
	observability.Invocations.WithLabelValues(handlerName, observability.OutcomeSuccess).Inc()

	return dto.LabelResult{
		Status:     dto.LabelStatusSuccess,
		Labels:     names,
		Key:        key,
		Confidence: confidence,
	}, nil
}

func (h *Handler) fail(ctx context.Context, key string, err error) (dto.LabelResult, error) {
	attrs := append([]any{"key", key, "error", err}, invoke.LogAttrs(ctx)...)
	slog.Error("error processing image", attrs...)
	observability.Invocations.WithLabelValues(handlerName, observability.OutcomeFailure).Inc()
	if key == "" {
		return dto.LabelResult{}, fmt.Errorf("analyze labels: %w", err)
	}
	return dto.LabelResult{}, fmt.Errorf("analyze labels for %s: %w", key, err)
}
