// Package bootstrap builds the clients and handlers shared by the Lambda
// binaries, the HTTP gateway and vaultctl.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"

	"github.com/your-org/identity-vault/internal/biometric"
	"github.com/your-org/identity-vault/internal/collection"
	"github.com/your-org/identity-vault/internal/compare"
	"github.com/your-org/identity-vault/internal/config"
	"github.com/your-org/identity-vault/internal/labels"
	"github.com/your-org/identity-vault/internal/queue"
	"github.com/your-org/identity-vault/internal/recognition"
	"github.com/your-org/identity-vault/internal/storage"
)

// App holds everything built for one process. Store, Publisher and MinIO are
// nil when the process does not need them.
type App struct {
	Config     *config.Config
	Recognizer *recognition.Client
	Store      storage.RecordStore
	Publisher  *queue.Publisher
	MinIO      *storage.MinIOStore
}

type Options struct {
	// WithStore connects the record store; only upload handlers write records.
	WithStore bool
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg}

	var recOpts []recognition.Option
	if cfg.Images.Source == config.ImageSourceMinIO {
		app.MinIO, err = storage.NewMinIOStore(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		recOpts = append(recOpts, recognition.WithInlineImages(app.MinIO))
	}
	app.Recognizer = recognition.NewClient(
		rekognition.NewFromConfig(awsCfg, rekognitionEndpoint(cfg.AWS.Endpoint)),
		recOpts...,
	)

	if opts.WithStore {
		app.Store, err = NewStore(ctx, cfg, awsCfg)
		if err != nil {
			return nil, err
		}

		app.Publisher, err = NewPublisher(ctx, cfg.NATS)
		if err != nil {
			app.Store.Close()
			return nil, err
		}
	}

	return app, nil
}

func (a *App) Close() {
	if a.Publisher != nil {
		a.Publisher.Close()
	}
	if a.Store != nil {
		a.Store.Close()
	}
}

func (a *App) LabelsHandler() *labels.Handler {
	var opts []labels.Option
	if a.Publisher != nil {
		opts = append(opts, labels.WithPublisher(a.Publisher))
	}
	return labels.NewHandler(a.Recognizer, a.Store, opts...)
}

func (a *App) BiometricHandler() *biometric.Handler {
	var opts []biometric.Option
	if a.Publisher != nil {
		opts = append(opts, biometric.WithPublisher(a.Publisher))
	}
	return biometric.NewHandler(a.Recognizer, a.Store, opts...)
}

func (a *App) CompareHandler() *compare.Handler {
	return compare.NewHandler(a.Recognizer, a.Config.Comparator)
}

func (a *App) CollectionHandler() *collection.Handler {
	return collection.NewHandler(a.Recognizer, a.Config.Collection.ID)
}

// LoadAWSConfig resolves credentials the usual SDK way, pinned to the
// configured region.
func LoadAWSConfig(ctx context.Context, cfg config.AWSConfig) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// NewStore connects the configured record store. Postgres gets its schema
// ensured before the store is returned.
func NewStore(ctx context.Context, cfg *config.Config, awsCfg aws.Config) (storage.RecordStore, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pg, err := storage.NewPostgresStore(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		slog.Info("record store ready", "driver", cfg.Storage.Driver, "host", cfg.Database.Host)
		return pg, nil
	case config.StorageDynamoDB:
		client := dynamodb.NewFromConfig(awsCfg, dynamoDBEndpoint(cfg.AWS.Endpoint))
		slog.Info("record store ready", "driver", cfg.Storage.Driver,
			"labels_table", cfg.Tables.Labels, "access_table", cfg.Tables.AccessLogs)
		return storage.NewDynamoDBStore(client, cfg.Tables), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// NewPublisher returns nil without error when NATS is disabled.
func NewPublisher(ctx context.Context, cfg config.NATSConfig) (*queue.Publisher, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	pub, err := queue.NewPublisher(cfg.URL)
	if err != nil {
		return nil, err
	}
	if err := pub.EnsureStream(ctx, 5); err != nil {
		slog.Warn("ensure records stream", "error", err)
	}
	return pub, nil
}

func rekognitionEndpoint(endpoint string) func(*rekognition.Options) {
	return func(o *rekognition.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}
}

func dynamoDBEndpoint(endpoint string) func(*dynamodb.Options) {
	return func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}
}
