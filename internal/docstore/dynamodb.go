package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoAPI is the subset of *dynamodb.Client the store uses
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoConfig holds DynamoDB connection settings
type DynamoConfig struct {
	Region string
	// Endpoint is optional, e.g. http://localhost:8000 for DynamoDB local
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// NewDynamoClient builds a client. Static credentials are used when both keys are set.
func NewDynamoClient(ctx context.Context, cfg DynamoConfig) (*dynamodb.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamodb config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// documentItem is the table row.
//
// Table requirements:
//   - PK: collection (string)
//   - SK: id (string)
type documentItem struct {
	Collection string `dynamodbav:"collection"`
	ID         string `dynamodbav:"id"`
	Body       string `dynamodbav:"body"`
	UpdatedAt  string `dynamodbav:"updated_at"`
}

// DynamoStore keeps documents in one DynamoDB table
type DynamoStore struct {
	ddb       DynamoAPI
	tableName string
	logger    *slog.Logger
	now       func() time.Time
}

// NewDynamoStore creates a new DynamoStore instance
func NewDynamoStore(ddb DynamoAPI, tableName string, logger *slog.Logger) *DynamoStore {
	return &DynamoStore{
		ddb:       ddb,
		tableName: tableName,
		logger:    logger,
		now:       time.Now,
	}
}

func key(collection, id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"collection": &types.AttributeValueMemberS{Value: collection},
		"id":         &types.AttributeValueMemberS{Value: id},
	}
}

func (s *DynamoStore) Load(ctx context.Context) (*Snapshot, error) {
	var docs []document
	var startKey map[string]types.AttributeValue

	for {
		out, err := s.ddb.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load documents: %w", err)
		}

		page, err := decodeItems(out.Items)
		if err != nil {
			return nil, err
		}
		docs = append(docs, page...)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return buildSnapshot(docs), nil
}

func (s *DynamoStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	var out []json.RawMessage
	var startKey map[string]types.AttributeValue

	for {
		page, err := s.ddb.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.tableName),
			KeyConditionExpression: aws.String("#collection = :collection"),
			ExpressionAttributeNames: map[string]string{
				"#collection": "collection",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":collection": &types.AttributeValueMemberS{Value: collection},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collection, err)
		}

		docs, err := decodeItems(page.Items)
		if err != nil {
			return nil, err
		}
		for _, d := range docs {
			out = append(out, json.RawMessage(d.Body))
		}

		if len(page.LastEvaluatedKey) == 0 {
			break
		}
		startKey = page.LastEvaluatedKey
	}

	if out == nil {
		out = []json.RawMessage{}
	}
	return out, nil
}

func (s *DynamoStore) Get(ctx context.Context, collection, id string, dest any) error {
	out, err := s.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            key(collection, id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	if len(out.Item) == 0 {
		return ErrNotFound
	}

	var it documentItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal([]byte(it.Body), dest); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DynamoStore) Upsert(ctx context.Context, collection, id string, doc any) error {
	body, err := encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	av, err := attributevalue.MarshalMap(documentItem{
		Collection: collection,
		ID:         id,
		Body:       body,
		UpdatedAt:  s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		s.logger.Error("Failed to put document",
			slog.String("collection", collection),
			slog.String("id", id),
			slog.Any("error", err),
		)
		return fmt.Errorf("failed to upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DynamoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.ddb.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       key(collection, id),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *DynamoStore) Close() error {
	return nil
}

func decodeItems(items []map[string]types.AttributeValue) ([]document, error) {
	var page []documentItem
	if err := attributevalue.UnmarshalListOfMaps(items, &page); err != nil {
		return nil, fmt.Errorf("failed to decode documents: %w", err)
	}

	docs := make([]document, len(page))
	for i, it := range page {
		docs[i] = document{Collection: it.Collection, ID: it.ID, Body: it.Body}
	}
	return docs, nil
}
