package storage

import (
	"context"

	"github.com/your-org/identity-vault/internal/models"
)

// RecordStore is the write-only sink for handler results. There is no read
// path: records are consumed by whatever sits behind the table.
type RecordStore interface {
	PutImageLabels(ctx context.Context, rec models.ImageLabelRecord) error
	PutAccessLog(ctx context.Context, rec models.AccessLogRecord) error
	Ping(ctx context.Context) error
	Close()
}
