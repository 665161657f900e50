// Package recognition wraps the Rekognition API calls the handlers need and
// converts responses into small domain types.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/your-org/identity-vault/internal/observability"
)

// ErrCollectionExists is returned by CreateCollection when the collection is
// already present.
var ErrCollectionExists = errors.New("collection already exists")

// API is the subset of *rekognition.Client used here.
type API interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
	CompareFaces(ctx context.Context, params *rekognition.CompareFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.CompareFacesOutput, error)
	CreateCollection(ctx context.Context, params *rekognition.CreateCollectionInput, optFns ...func(*rekognition.Options)) (*rekognition.CreateCollectionOutput, error)
	IndexFaces(ctx context.Context, params *rekognition.IndexFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.IndexFacesOutput, error)
	SearchFacesByImage(ctx context.Context, params *rekognition.SearchFacesByImageInput, optFns ...func(*rekognition.Options)) (*rekognition.SearchFacesByImageOutput, error)
}

// ObjectFetcher loads image bytes from object storage.
type ObjectFetcher interface {
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// ImageRef points at an uploaded image.
type ImageRef struct {
	Bucket string
	Key    string
}

type Label struct {
	Name       string
	Confidence float32
}

// FaceMatch is one candidate returned by a comparison or a collection search.
// FaceID and ExternalImageID are only set for collection searches.
type FaceMatch struct {
	Similarity      float32
	FaceID          string
	ExternalImageID string
}

type IndexedFace struct {
	FaceID          string
	ExternalImageID string
}

type Client struct {
	api     API
	fetcher ObjectFetcher
}

type Option func(*Client)

// WithInlineImages makes the client send image bytes loaded through f instead
// of an S3 object reference.
func WithInlineImages(f ObjectFetcher) Option {
	return func(c *Client) {
		c.fetcher = f
	}
}

func NewClient(api API, opts ...Option) *Client {
	c := &Client{api: api}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) image(ctx context.Context, ref ImageRef) (*types.Image, error) {
	if c.fetcher == nil {
		return &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(ref.Bucket),
				Name:   aws.String(ref.Key),
			},
		}, nil
	}
	data, err := c.fetcher.GetObject(ctx, ref.Bucket, ref.Key)
	if err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}
	return &types.Image{Bytes: data}, nil
}

func observe(operation string, start time.Time) {
	observability.RecognitionDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// DetectLabels returns labels in the order the service ranks them.
func (c *Client) DetectLabels(ctx context.Context, ref ImageRef, maxLabels int32, minConfidence float32) ([]Label, error) {
	img, err := c.image(ctx, ref)
	if err != nil {
		return nil, err
	}

	defer observe("detect_labels", time.Now())
	out, err := c.api.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         img,
		MaxLabels:     aws.Int32(maxLabels),
		MinConfidence: aws.Float32(minConfidence),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels: %w", err)
	}

	labels := make([]Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		labels = append(labels, Label{
			Name:       aws.ToString(l.Name),
			Confidence: aws.ToFloat32(l.Confidence),
		})
	}
	return labels, nil
}

// DetectFaces runs full-attribute face detection and returns the number of
// faces found.
func (c *Client) DetectFaces(ctx context.Context, ref ImageRef) (int, error) {
	img, err := c.image(ctx, ref)
	if err != nil {
		return 0, err
	}

	defer observe("detect_faces", time.Now())
	out, err := c.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      img,
		Attributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return 0, fmt.Errorf("detect faces: %w", err)
	}
	return len(out.FaceDetails), nil
}

// CompareFaces matches faces in target against the largest face in source.
// Filtering by threshold is done by the service.
func (c *Client) CompareFaces(ctx context.Context, source, target ImageRef, threshold float32) ([]FaceMatch, error) {
	src, err := c.image(ctx, source)
	if err != nil {
		return nil, err
	}
	tgt, err := c.image(ctx, target)
	if err != nil {
		return nil, err
	}

	defer observe("compare_faces", time.Now())
	out, err := c.api.CompareFaces(ctx, &rekognition.CompareFacesInput{
		SourceImage:         src,
		TargetImage:         tgt,
		SimilarityThreshold: aws.Float32(threshold),
	})
	if err != nil {
		return nil, fmt.Errorf("compare faces: %w", err)
	}

	matches := make([]FaceMatch, 0, len(out.FaceMatches))
	for _, m := range out.FaceMatches {
		matches = append(matches, FaceMatch{Similarity: aws.ToFloat32(m.Similarity)})
	}
	return matches, nil
}

// CreateCollection creates a face collection. It returns ErrCollectionExists
// if the id is taken.
func (c *Client) CreateCollection(ctx context.Context, collectionID string) error {
	defer observe("create_collection", time.Now())
	_, err := c.api.CreateCollection(ctx, &rekognition.CreateCollectionInput{
		CollectionId: aws.String(collectionID),
	})
	if err != nil {
		var exists *types.ResourceAlreadyExistsException
		if errors.As(err, &exists) {
			return fmt.Errorf("create collection %s: %w", collectionID, ErrCollectionExists)
		}
		return fmt.Errorf("create collection %s: %w", collectionID, err)
	}
	return nil
}

// IndexFaces adds the faces found in ref to the collection, tagged with
// externalID. An empty result means no face was detected.
func (c *Client) IndexFaces(ctx context.Context, collectionID string, ref ImageRef, externalID string) ([]IndexedFace, error) {
	img, err := c.image(ctx, ref)
	if err != nil {
		return nil, err
	}

	defer observe("index_faces", time.Now())
	out, err := c.api.IndexFaces(ctx, &rekognition.IndexFacesInput{
		CollectionId:        aws.String(collectionID),
		Image:               img,
		ExternalImageId:     aws.String(externalID),
		DetectionAttributes: []types.Attribute{types.AttributeAll},
	})
	if err != nil {
		return nil, fmt.Errorf("index faces: %w", err)
	}

	faces := make([]IndexedFace, 0, len(out.FaceRecords))
	for _, r := range out.FaceRecords {
		if r.Face == nil {
			continue
		}
		faces = append(faces, IndexedFace{
			FaceID:          aws.ToString(r.Face.FaceId),
			ExternalImageID: aws.ToString(r.Face.ExternalImageId),
		})
	}
	return faces, nil
}

// SearchFacesByImage looks up the largest face in ref within the collection.
func (c *Client) SearchFacesByImage(ctx context.Context, collectionID string, ref ImageRef, maxFaces int32, threshold float32) ([]FaceMatch, error) {
	img, err := c.image(ctx, ref)
	if err != nil {
		return nil, err
	}

	defer observe("search_faces_by_image", time.Now())
	out, err := c.api.SearchFacesByImage(ctx, &rekognition.SearchFacesByImageInput{
		CollectionId:       aws.String(collectionID),
		Image:              img,
		MaxFaces:           aws.Int32(maxFaces),
		FaceMatchThreshold: aws.Float32(threshold),
	})
	if err != nil {
		return nil, fmt.Errorf("search faces: %w", err)
	}

	matches := make([]FaceMatch, 0, len(out.FaceMatches))
	for _, m := range out.FaceMatches {
		match := FaceMatch{Similarity: aws.ToFloat32(m.Similarity)}
		if m.Face != nil {
			match.FaceID = aws.ToString(m.Face.FaceId)
			match.ExternalImageID = aws.ToString(m.Face.ExternalImageId)
		}
		matches = append(matches, match)
	}
	return matches, nil
}
