// Package collection implements the directly invoked face collection manager:
// create the collection, register a face into it, or search it by photo.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/your-org/identity-vault/internal/invoke"
	"github.com/your-org/identity-vault/internal/observability"
	"github.com/your-org/identity-vault/internal/recognition"
	"github.com/your-org/identity-vault/pkg/dto"
)

const (
	// Search accepts weaker matches than the one-to-one comparator.
	SearchThreshold = 70
	SearchMaxFaces  = 1

	ReasonNoFace        = "No face detected in the image."
	ReasonNoMatch       = "The face in this photo does not match any authorized users."
	ReasonInvalidAction = "Invalid action. Use 'create', 'index', or 'search'."

	unknownIdentity = "Unknown"
	handlerName     = "collection_manager"
)

type Recognizer interface {
	CreateCollection(ctx context.Context, collectionID string) error
	IndexFaces(ctx context.Context, collectionID string, ref recognition.ImageRef, externalID string) ([]recognition.IndexedFace, error)
	SearchFacesByImage(ctx context.Context, collectionID string, ref recognition.ImageRef, maxFaces int32, threshold float32) ([]recognition.FaceMatch, error)
}

type Handler struct {
	recognizer   Recognizer
	collectionID string
}

func NewHandler(recognizer Recognizer, collectionID string) *Handler {
	return &Handler{recognizer: recognizer, collectionID: collectionID}
}

// ExternalID turns a display name into the identifier stored with a face.
func ExternalID(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// Handle dispatches on req.Action. Every failure is reported in the result;
// the returned error is always nil.
func (h *Handler) Handle(ctx context.Context, req dto.CollectionRequest) (dto.CollectionResult, error) {
	if req.Name == "" {
		req.Name = dto.DefaultCollectionUserName
	}

	attrs := append([]any{"action", req.Action, "collection", h.collectionID, "photo", req.Photo}, invoke.LogAttrs(ctx)...)
	slog.Info("collection request", attrs...)

	var (
		res dto.CollectionResult
		err error
	)
	switch req.Action {
	case dto.ActionCreate:
		res, err = h.create(ctx)
	case dto.ActionIndex:
		res, err = h.index(ctx, req)
	case dto.ActionSearch:
		res, err = h.search(ctx, req)
	default:
		res = dto.CollectionResult{Status: dto.CollectionStatusError, Reason: ReasonInvalidAction}
	}
	if err != nil {
		slog.Error("collection request failed", "action", req.Action, "error", err)
		res = dto.CollectionResult{Status: dto.CollectionStatusError, Reason: err.Error()}
	}

	outcome := observability.OutcomeSuccess
	if res.Status == dto.CollectionStatusError {
		outcome = observability.OutcomeFailure
	}
	observability.Invocations.WithLabelValues(handlerName, outcome).Inc()
	return res, nil
}

func (h *Handler) create(ctx context.Context) (dto.CollectionResult, error) {
	err := h.recognizer.CreateCollection(ctx, h.collectionID)
	switch {
	case errors.Is(err, recognition.ErrCollectionExists):
		return dto.CollectionResult{Status: dto.CollectionStatusSuccess, Msg: "Collection already exists."}, nil
	case err != nil:
		return dto.CollectionResult{}, err
	}
	return dto.CollectionResult{
		Status: dto.CollectionStatusSuccess,
		Msg:    fmt.Sprintf("Collection '%s' created.", h.collectionID),
	}, nil
}

func (h *Handler) index(ctx context.Context, req dto.CollectionRequest) (dto.CollectionResult, error) {
	ref := recognition.ImageRef{Bucket: req.Bucket, Key: req.Photo}
	faces, err := h.recognizer.IndexFaces(ctx, h.collectionID, ref, ExternalID(req.Name))
	if err != nil {
		return dto.CollectionResult{}, err
	}
	if len(faces) == 0 {
		return dto.CollectionResult{Status: dto.CollectionStatusError, Reason: ReasonNoFace}, nil
	}

	slog.Info("face indexed", "face_id", faces[0].FaceID, "name", req.Name)
	return dto.CollectionResult{
		Status: dto.CollectionStatusIndexed,
		FaceID: faces[0].FaceID,
		Name:   req.Name,
	}, nil
}

func (h *Handler) search(ctx context.Context, req dto.CollectionRequest) (dto.CollectionResult, error) {
	ref := recognition.ImageRef{Bucket: req.Bucket, Key: req.Photo}
	matches, err := h.recognizer.SearchFacesByImage(ctx, h.collectionID, ref, SearchMaxFaces, SearchThreshold)
	if err != nil {
		return dto.CollectionResult{}, err
	}
	if len(matches) == 0 {
		return dto.CollectionResult{Status: dto.CollectionStatusNoMatch, Reason: ReasonNoMatch}, nil
	}

	match := matches[0]
	identity := match.ExternalImageID
	if identity == "" {
		identity = unknownIdentity
	}
	return dto.CollectionResult{
		Status:     dto.CollectionStatusMatch,
		Identity:   identity,
		Similarity: fmt.Sprintf("%.2f%%", match.Similarity),
	}, nil
}
