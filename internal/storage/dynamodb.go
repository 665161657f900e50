package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/your-org/identity-vault/internal/config"
	"github.com/your-org/identity-vault/internal/models"
	"github.com/your-org/identity-vault/internal/observability"
)

// DynamoDBAPI is the subset of *dynamodb.Client used by DynamoDBStore.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

type DynamoDBStore struct {
	api    DynamoDBAPI
	tables config.TablesConfig
}

func NewDynamoDBStore(api DynamoDBAPI, tables config.TablesConfig) *DynamoDBStore {
	return &DynamoDBStore{api: api, tables: tables}
}

// PutImageLabels writes the record keyed by ImageID. A re-upload of the same
// key replaces the previous labels.
func (s *DynamoDBStore) PutImageLabels(ctx context.Context, rec models.ImageLabelRecord) error {
	if rec.Labels == nil {
		rec.Labels = []string{}
	}
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal image labels: %w", err)
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tables.Labels),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put image labels %s: %w", rec.ImageID, err)
	}
	observability.RecordsWritten.WithLabelValues(s.tables.Labels).Inc()
	return nil
}

// PutAccessLog appends an access log entry. The write is conditional on the
// AccessID being new, so an id collision fails instead of overwriting history.
func (s *DynamoDBStore) PutAccessLog(ctx context.Context, rec models.AccessLogRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal access log: %w", err)
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tables.AccessLogs),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(AccessID)"),
	})
	if err != nil {
		return fmt.Errorf("put access log %s: %w", rec.AccessID, err)
	}
	observability.RecordsWritten.WithLabelValues(s.tables.AccessLogs).Inc()
	return nil
}

func (s *DynamoDBStore) Ping(ctx context.Context) error {
	for _, table := range []string{s.tables.Labels, s.tables.AccessLogs} {
		if _, err := s.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(table),
		}); err != nil {
			return fmt.Errorf("describe table %s: %w", table, err)
		}
	}
	return nil
}

func (s *DynamoDBStore) Close() {}
