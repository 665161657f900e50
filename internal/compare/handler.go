// Package compare implements the directly invoked one-to-one face comparator.
// It never persists anything and never returns an error to the runtime.
package compare

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/your-org/identity-vault/internal/config"
	"github.com/your-org/identity-vault/internal/invoke"
	"github.com/your-org/identity-vault/internal/observability"
	"github.com/your-org/identity-vault/internal/recognition"
	"github.com/your-org/identity-vault/pkg/dto"
)

const (
	SimilarityThreshold = 80

	// MinRemaining is the smallest time budget worth starting a comparison with.
	MinRemaining = time.Second

	ReasonNotEnoughTime = "Not enough time to run AI comparison!"

	handlerName = "face_comparator"
)

type Comparer interface {
	CompareFaces(ctx context.Context, source, target recognition.ImageRef, threshold float32) ([]recognition.FaceMatch, error)
}

type Handler struct {
	comparer Comparer
	source   recognition.ImageRef
	target   recognition.ImageRef
}

func NewHandler(comparer Comparer, cfg config.ComparatorConfig) *Handler {
	return &Handler{
		comparer: comparer,
		source:   recognition.ImageRef{Bucket: cfg.Bucket, Key: cfg.Source},
		target:   recognition.ImageRef{Bucket: cfg.Bucket, Key: cfg.Target},
	}
}

func (h *Handler) Handle(ctx context.Context, _ dto.CompareRequest) (dto.CompareResult, error) {
	slog.Info("executing face comparison", invoke.LogAttrs(ctx)...)

	if remaining, ok := invoke.Remaining(ctx); ok && remaining < MinRemaining {
		slog.Warn("insufficient time for comparison", "remaining", remaining.String())
		return h.result(dto.CompareResult{Status: dto.CompareStatusError, Reason: ReasonNotEnoughTime}), nil
	}

	matches, err := h.comparer.CompareFaces(ctx, h.source, h.target, SimilarityThreshold)
	if err != nil {
		slog.Error("compare faces", "source", h.source.Key, "target", h.target.Key, "error", err)
		return h.result(dto.CompareResult{Status: dto.CompareStatusError, Reason: err.Error()}), nil
	}

	if len(matches) == 0 {
		slog.Info("no match detected", "source", h.source.Key, "target", h.target.Key)
		return h.result(dto.CompareResult{Status: dto.CompareStatusNoMatch}), nil
	}

	similarity := matches[0].Similarity
	slog.Info("match found", "similarity", fmt.Sprintf("%.2f%%", similarity))
	return h.result(dto.CompareResult{Status: dto.CompareStatusMatch, Similarity: &similarity}), nil
}

func (h *Handler) result(res dto.CompareResult) dto.CompareResult {
	outcome := observability.OutcomeSuccess
	if res.Status == dto.CompareStatusError {
		outcome = observability.OutcomeFailure
	}
	observability.Invocations.WithLabelValues(handlerName, outcome).Inc()
	return res
}
