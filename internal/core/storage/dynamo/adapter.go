// Package dynamo implements storage.EventStore against DynamoDB, the store
// the deployed system runs on. Local development targets DynamoDB Local with
// fixed credentials; deployed environments use ambient AWS configuration.
package dynamo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	v1 "github.com/fichron-lab/fichron/internal/api/v1"
)

const (
	tablePrefix = "FichronEvent-"

	// Secondary index names match the keyed attribute plus "-index",
	// mirroring the deployed table definition.
	propertyIndex  = "propertyImdbId-index"
	characterIndex = "characterName-index"

	attrPropertyImdbID = "propertyImdbId"
	attrCharacterName  = "characterName"
)

// Options carries the environment-dependent connection parameters.
type Options struct {
	// Stage suffixes the table name, e.g. "dev" -> "FichronEvent-dev".
	Stage string

	// Local switches to a fixed endpoint with static credentials
	// (DynamoDB Local). When false, ambient AWS config is used and
	// Endpoint/AccessKey/SecretKey are ignored.
	Local     bool
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Adapter implements storage.EventStore for DynamoDB.
type Adapter struct {
	client    *dynamodb.Client
	tableName string
}

// TableName returns the stage-suffixed table name.
func TableName(stage string) string {
	return tablePrefix + stage
}

// NewAdapter builds the DynamoDB client per Options. It does not verify the
// table exists; Ping does that on demand.
func NewAdapter(ctx context.Context, opts Options) (*Adapter, error) {
	var (
		cfg aws.Config
		err error
	)

	if opts.Local {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(opts.Region),
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
			),
		)
	} else {
		cfg, err = awsconfig.LoadDefaultConfig(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Local && opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	slog.Info("[Dynamo] Adapter initialized",
		"table", TableName(opts.Stage),
		"local", opts.Local)

	return &Adapter{
		client:    client,
		tableName: TableName(opts.Stage),
	}, nil
}

// PutEvent writes one event item. The event id is the partition key; the
// secondary index attributes ride along on the same item.
func (a *Adapter) PutEvent(ctx context.Context, event *v1.Event) error {
	item, err := attributevalue.MarshalMap(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %q: %w", event.ID, err)
	}

	_, err = a.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(a.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put event %q: %w", event.ID, err)
	}

	slog.Debug("[Dynamo] Saved event", "event_id", event.ID, "property_imdb_id", event.PropertyImdbID)
	return nil
}

// QueryByPropertyID fetches all events on the propertyImdbId index.
func (a *Adapter) QueryByPropertyID(ctx context.Context, imdbID string) ([]*v1.Event, error) {
	return a.queryByIndex(ctx, propertyIndex, attrPropertyImdbID, imdbID)
}

// QueryByCharacterName fetches all events on the characterName index.
func (a *Adapter) QueryByCharacterName(ctx context.Context, characterName string) ([]*v1.Event, error) {
	return a.queryByIndex(ctx, characterIndex, attrCharacterName, characterName)
}

func (a *Adapter) queryByIndex(ctx context.Context, indexName, key, value string) ([]*v1.Event, error) {
	out, err := a.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(a.tableName),
		IndexName:                aws.String(indexName),
		KeyConditionExpression:   aws.String("#k = :v"),
		ExpressionAttributeNames: map[string]string{"#k": key},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query index %q: %w", indexName, err)
	}

	var events []*v1.Event
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal events from index %q: %w", indexName, err)
	}

	return events, nil
}

// Ping verifies the table is reachable and provisioned.
func (a *Adapter) Ping(ctx context.Context) error {
	_, err := a.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(a.tableName),
	})
	if err != nil {
		return fmt.Errorf("table %q unreachable: %w", a.tableName, err)
	}
	return nil
}

// Close is a no-op; the SDK client holds no long-lived connections of its own.
func (a *Adapter) Close() error {
	return nil
}
