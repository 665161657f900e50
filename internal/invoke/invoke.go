// Package invoke holds the small pieces every handler needs from its
// invocation: the uploaded object, the remaining time budget and the runtime
// identifiers to log.
package invoke

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/your-org/identity-vault/internal/recognition"
)

var ErrEmptyEvent = errors.New("event has no records")

// FirstObject returns the bucket and raw (still encoded) key of the first
// record in an upload notification.
func FirstObject(event events.S3Event) (recognition.ImageRef, error) {
	if len(event.Records) == 0 {
		return recognition.ImageRef{}, ErrEmptyEvent
	}
	s3 := event.Records[0].S3
	return recognition.ImageRef{
		Bucket: s3.Bucket.Name,
		Key:    s3.Object.Key,
	}, nil
}

// Remaining reports how much time is left before the invocation deadline.
// ok is false when the context carries no deadline.
func Remaining(ctx context.Context) (remaining time.Duration, ok bool) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return 0, false
	}
	return time.Until(deadline), true
}

// LogAttrs returns slog key/value pairs identifying the Lambda invocation, or
// nothing when running outside the Lambda runtime.
func LogAttrs(ctx context.Context) []any {
	lc, ok := lambdacontext.FromContext(ctx)
	if !ok {
		return nil
	}
	return []any{
		"function", lambdacontext.FunctionName,
		"request_id", lc.AwsRequestID,
	}
}
