package labels

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/identity-vault/internal/invoke"
	"github.com/your-org/identity-vault/internal/models"
	"github.com/your-org/identity-vault/internal/recognition"
	"github.com/your-org/identity-vault/pkg/dto"
)

type fakeDetector struct {
	labels []recognition.Label
	err    error
	calls  []recognition.ImageRef
	max    int32
	minC   float32
}

func (f *fakeDetector) DetectLabels(_ context.Context, ref recognition.ImageRef, maxLabels int32, minConfidence float32) ([]recognition.Label, error) {
	f.calls = append(f.calls, ref)
	f.max = maxLabels
	f.minC = minConfidence
	return f.labels, f.err
}

type fakeWriter struct {
	recs []models.ImageLabelRecord
	err  error
}

func (f *fakeWriter) PutImageLabels(_ context.Context, rec models.ImageLabelRecord) error {
	if f.err != nil {
		return f.err
	}
	f.recs = append(f.recs, rec)
	return nil
}

type fakePublisher struct {
	recs []models.ImageLabelRecord
	err  error
}

func (f *fakePublisher) PublishLabels(_ context.Context, rec models.ImageLabelRecord) error {
	f.recs = append(f.recs, rec)
	return f.err
}

func uploadEvent(bucket, key string) events.S3Event {
	return events.S3Event{Records: []events.S3EventRecord{{
		S3: events.S3Entity{
			Bucket: events.S3Bucket{Name: bucket},
			Object: events.S3Object{Key: key},
		},
	}}}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"photo.JPG":          "jpg",
		"a.b.c.PNG":          "png",
		"archive.tar.gz":     "gz",
		"no-extension":       "no-extension",
		"trailing.":          "",
		"dir.v2/image.jpeg":  "jpeg",
		"dir.v2/no_ext_file": "v2/no_ext_file",
	}
	for key, want := range tests {
		assert.Equal(t, want, Extension(key), key)
	}
}

func TestHandle_Success(t *testing.T) {
	detector := &fakeDetector{labels: []recognition.Label{
		{Name: "Dog", Confidence: 98.25},
		{Name: "Pet", Confidence: 97.5},
		{Name: "Animal", Confidence: 60},
	}}
	store := &fakeWriter{}
	h := NewHandler(detector, store)

	res, err := h.Handle(context.Background(), uploadEvent("photos", "dogs/rex.jpg"))
	require.NoError(t, err)

	assert.Equal(t, dto.LabelResult{
		Status:     "success",
		Labels:     []string{"Dog", "Pet", "Animal"},
		Key:        "dogs/rex.jpg",
		Confidence: "98.25",
	}, res)

	assert.Equal(t, int32(MaxLabels), detector.max)
	assert.Equal(t, float32(MinConfidence), detector.minC)
	require.Len(t, store.recs, 1)
	assert.Equal(t, models.ImageLabelRecord{
		ImageID:    "dogs/rex.jpg",
		Bucket:     "photos",
		Labels:     []string{"Dog", "Pet", "Animal"},
		Confidence: "98.25",
	}, store.recs[0])
}

func TestHandle_DecodesKey(t *testing.T) {
	detector := &fakeDetector{}
	store := &fakeWriter{}
	h := NewHandler(detector, store)

	res, err := h.Handle(context.Background(), uploadEvent("photos", "summer+trip/beach%281%29.PNG"))
	require.NoError(t, err)

	assert.Equal(t, "summer trip/beach(1).PNG", res.Key)
	require.Len(t, detector.calls, 1)
	assert.Equal(t, "summer trip/beach(1).PNG", detector.calls[0].Key)
	assert.Equal(t, "summer trip/beach(1).PNG", store.recs[0].ImageID)
}

func TestHandle_NoLabelsStoresZeroConfidence(t *testing.T) {
	store := &fakeWriter{}
	h := NewHandler(&fakeDetector{}, store)

	res, err := h.Handle(context.Background(), uploadEvent("photos", "blank.png"))
	require.NoError(t, err)

	assert.Equal(t, "0", res.Confidence)
	assert.Empty(t, res.Labels)
	require.Len(t, store.recs, 1)
	assert.Equal(t, "0", store.recs[0].Confidence)
	assert.Empty(t, store.recs[0].Labels)
}

func TestHandle_UnsupportedFormatSkips(t *testing.T) {
	for _, key := range []string{"photo.gif", "clip.mp4", "README", "image.jpg.bak"} {
		t.Run(key, func(t *testing.T) {
			detector := &fakeDetector{}
			store := &fakeWriter{}
			h := NewHandler(detector, store)

			res, err := h.Handle(context.Background(), uploadEvent("photos", key))
			require.NoError(t, err)

			assert.Equal(t, dto.LabelResult{Status: "skipped", Reason: "unsupported format", Key: key}, res)
			assert.Empty(t, detector.calls, "no remote call for unsupported formats")
			assert.Empty(t, store.recs, "no write for unsupported formats")
		})
	}
}

func TestHandle_SkippedWireShape(t *testing.T) {
	h := NewHandler(&fakeDetector{}, &fakeWriter{})

	res, err := h.Handle(context.Background(), uploadEvent("photos", "photo.gif"))
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"skipped","reason":"unsupported format","key":"photo.gif"}`, string(data))
}

func TestHandle_DetectErrorPropagates(t *testing.T) {
	store := &fakeWriter{}
	h := NewHandler(&fakeDetector{err: errors.New("AccessDeniedException")}, store)

	_, err := h.Handle(context.Background(), uploadEvent("photos", "a.jpg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AccessDeniedException")
	assert.Empty(t, store.recs, "nothing is written when detection fails")
}

func TestHandle_WriteErrorPropagates(t *testing.T) {
	h := NewHandler(&fakeDetector{}, &fakeWriter{err: errors.New("table missing")})

	_, err := h.Handle(context.Background(), uploadEvent("photos", "a.jpeg"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table missing")
}

func TestHandle_EmptyEvent(t *testing.T) {
	detector := &fakeDetector{}
	h := NewHandler(detector, &fakeWriter{})

	_, err := h.Handle(context.Background(), events.S3Event{})
	assert.ErrorIs(t, err, invoke.ErrEmptyEvent)
	assert.Empty(t, detector.calls)
}

func TestHandle_MalformedEscapeKeptInKey(t *testing.T) {
	detector := &fakeDetector{labels: []recognition.Label{{Name: "Poster", Confidence: 88}}}
	store := &fakeWriter{}
	h := NewHandler(detector, store)

	res, err := h.Handle(context.Background(), uploadEvent("photos", "sale-50%off.jpg"))
	require.NoError(t, err)

	assert.Equal(t, dto.LabelStatusSuccess, res.Status)
	assert.Equal(t, "sale-50%off.jpg", res.Key)
	require.Len(t, detector.calls, 1)
	assert.Equal(t, "sale-50%off.jpg", detector.calls[0].Key)
	require.Len(t, store.recs, 1)
	assert.Equal(t, "sale-50%off.jpg", store.recs[0].ImageID)
}

func TestHandle_ConfidenceKeepsServicePrecision(t *testing.T) {
	store := &fakeWriter{}
	h := NewHandler(&fakeDetector{labels: []recognition.Label{
		{Name: "Person", Confidence: 99.99861907958984},
		{Name: "Face", Confidence: 97.1},
	}}, store)

	res, err := h.Handle(context.Background(), uploadEvent("photos", "crowd.jpg"))
	require.NoError(t, err)

	assert.Equal(t, "99.99861907958984", res.Confidence)
	require.Len(t, store.recs, 1)
	assert.Equal(t, "99.99861907958984", store.recs[0].Confidence)
}

func TestHandle_Publishes(t *testing.T) {
	pub := &fakePublisher{}
	h := NewHandler(&fakeDetector{labels: []recognition.Label{{Name: "Cat", Confidence: 90}}}, &fakeWriter{}, WithPublisher(pub))

	_, err := h.Handle(context.Background(), uploadEvent("photos", "cat.jpg"))
	require.NoError(t, err)
	require.Len(t, pub.recs, 1)
	assert.Equal(t, "cat.jpg", pub.recs[0].ImageID)
}

func TestHandle_PublishFailureDoesNotFail(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats down")}
	store := &fakeWriter{}
	h := NewHandler(&fakeDetector{}, store, WithPublisher(pub))

	res, err := h.Handle(context.Background(), uploadEvent("photos", "cat.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Len(t, store.recs, 1)
}
