package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/dennisdiepolder/fleetpulse/internal/types"
	"github.com/rs/zerolog"
)

// DynamoDBStore implements Store using AWS DynamoDB
type DynamoDBStore struct {
	client *dynamodb.Client
	config DynamoConfig
	logger zerolog.Logger
}

// NewDynamoDBStore creates a new DynamoDB store
func NewDynamoDBStore(ctx context.Context, cfg DynamoConfig, logger zerolog.Logger) (*DynamoDBStore, error) {
	var client *dynamodb.Client

	if cfg.Local {
		// For local mode, build the client directly without LoadDefaultConfig.
		// LoadDefaultConfig probes the EC2 IMDS endpoint which hangs on EC2
		// instances when static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	store := &DynamoDBStore{
		client: client,
		config: cfg,
		logger: logger,
	}

	// Create tables in local mode
	if cfg.Local {
		if err := CreateTablesIfNotExist(ctx, client, cfg, logger); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Bool("local", cfg.Local).
		Str("region", cfg.Region).
		Str("table", cfg.RevenueTable).
		Msg("DynamoDB ledger initialized")

	return store, nil
}

// SaveDailyRevenue puts one driver-day item
func (s *DynamoDBStore) SaveDailyRevenue(ctx context.Context, entry types.RevenueEntry) error {
	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal revenue entry: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.config.RevenueTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save revenue entry: %w", err)
	}
	return nil
}

// GetDailyRevenue issues one key-condition query per driver
func (s *DynamoDBStore) GetDailyRevenue(ctx context.Context, driverIDs []string, from, to time.Time) ([]types.RevenueEntry, error) {
	var entries []types.RevenueEntry

	for _, driverID := range driverIDs {
		records, err := s.queryDriver(ctx, driverID, from.Format(types.DateLayout), to.Format(types.DateLayout))
		if err != nil {
			return nil, err
		}
		entries = append(entries, records...)
	}

	return entries, nil
}

func (s *DynamoDBStore) queryDriver(ctx context.Context, driverID, from, to string) ([]types.RevenueEntry, error) {
	keyCond := expression.Key("DriverID").Equal(expression.Value(driverID)).
		And(expression.Key("Date").Between(expression.Value(from), expression.Value(to)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.RevenueTable),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var entries []types.RevenueEntry
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to query revenue for %s: %w", driverID, err)
		}

		var batch []types.RevenueEntry
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal revenue entries: %w", err)
		}
		entries = append(entries, batch...)
	}

	return entries, nil
}
