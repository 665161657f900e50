package compare

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/identity-vault/internal/config"
	"github.com/your-org/identity-vault/internal/recognition"
	"github.com/your-org/identity-vault/pkg/dto"
)

type fakeComparer struct {
	matches   []recognition.FaceMatch
	err       error
	calls     int
	threshold float32
	source    recognition.ImageRef
	target    recognition.ImageRef
}

func (f *fakeComparer) CompareFaces(_ context.Context, source, target recognition.ImageRef, threshold float32) ([]recognition.FaceMatch, error) {
	f.calls++
	f.source, f.target, f.threshold = source, target, threshold
	return f.matches, f.err
}

var testConfig = config.ComparatorConfig{
	Bucket: "identity-verification-lab-123",
	Source: "Sirius_Black.jpeg",
	Target: "Jim Gordon.jpg",
}

func TestHandle_Match(t *testing.T) {
	comparer := &fakeComparer{matches: []recognition.FaceMatch{{Similarity: 99.5}, {Similarity: 85}}}
	h := NewHandler(comparer, testConfig)

	res, err := h.Handle(context.Background(), dto.CompareRequest{})
	require.NoError(t, err)

	assert.Equal(t, dto.CompareStatusMatch, res.Status)
	require.NotNil(t, res.Similarity)
	assert.InDelta(t, 99.5, *res.Similarity, 0.0001, "first match wins")

	assert.Equal(t, float32(80), comparer.threshold)
	assert.Equal(t, recognition.ImageRef{Bucket: "identity-verification-lab-123", Key: "Sirius_Black.jpeg"}, comparer.source)
	assert.Equal(t, recognition.ImageRef{Bucket: "identity-verification-lab-123", Key: "Jim Gordon.jpg"}, comparer.target)
}

func TestHandle_NoMatch(t *testing.T) {
	h := NewHandler(&fakeComparer{}, testConfig)

	res, err := h.Handle(context.Background(), dto.CompareRequest{})
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"No Match"}`, string(data))
}

func TestHandle_ErrorIsCaptured(t *testing.T) {
	h := NewHandler(&fakeComparer{err: errors.New("InvalidParameterException: no face in source")}, testConfig)

	res, err := h.Handle(context.Background(), dto.CompareRequest{})
	require.NoError(t, err, "comparison failures never fail the invocation")

	assert.Equal(t, dto.CompareStatusError, res.Status)
	assert.Contains(t, res.Reason, "no face in source")
	assert.Nil(t, res.Similarity)
}

func TestHandle_InsufficientTime(t *testing.T) {
	comparer := &fakeComparer{matches: []recognition.FaceMatch{{Similarity: 99}}}
	h := NewHandler(comparer, testConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	res, err := h.Handle(ctx, dto.CompareRequest{})
	require.NoError(t, err)

	assert.Equal(t, dto.CompareResult{Status: dto.CompareStatusError, Reason: ReasonNotEnoughTime}, res)
	assert.Zero(t, comparer.calls, "no remote call when the budget is too small")
}

func TestHandle_EnoughTime(t *testing.T) {
	comparer := &fakeComparer{}
	h := NewHandler(comparer, testConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := h.Handle(ctx, dto.CompareRequest{})
	require.NoError(t, err)
	assert.Equal(t, dto.CompareStatusNoMatch, res.Status)
	assert.Equal(t, 1, comparer.calls)
}
