package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/spacesedan/sentiserve/internal/models"
)

const (
	TRAINING_RUNS_TABLE_NAME = "TrainingRuns"
	TRAINING_RUN_TTL         = 30 * 24 * time.Hour
	MAX_WRITE_RETRIES        = 3
)

// DynamoDBAPI is the subset of the DynamoDB client the run store uses.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// TrainingRunStore keeps one item per training run. It satisfies sentiment.RunStore.
type TrainingRunStore struct {
	client  DynamoDBAPI
	table   string
	backoff time.Duration
}

func NewTrainingRunStore(client DynamoDBAPI, table string) *TrainingRunStore {
	if table == "" {
		table = TRAINING_RUNS_TABLE_NAME
	}
	return &TrainingRunStore{client: client, table: table, backoff: 500 * time.Millisecond}
}

func (s *TrainingRunStore) SaveTrainingRun(ctx context.Context, run models.TrainingRun) error {
	item, err := TrainingRunToItem(run, time.Now())
	if err != nil {
		return err
	}

	backoff := s.backoff
	for attempt := 0; ; attempt++ {
		_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.table),
			Item:      item,
		})
		if err == nil {
			break
		}
		if attempt+1 >= MAX_WRITE_RETRIES {
			return fmt.Errorf("[DynamoDB] Failed to store training run: %w", err)
		}

		slog.Warn("[DynamoDB] Retrying training run write...",
			slog.Int("retry_attempt", attempt+1),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	slog.Info("[DynamoDB] Successfully stored training run",
		slog.String("run_id", run.RunID))
	return nil
}

// ListTrainingRuns scans the table and returns every stored run.
func (s *TrainingRunStore) ListTrainingRuns(ctx context.Context) ([]models.TrainingRun, error) {
	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})

	var runs []models.TrainingRun
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("[DynamoDB] Scan for training runs failed: %w", err)
		}

		var page []models.TrainingRun
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			slog.Error("[DynamoDB] Unable to unmarshal training run page",
				slog.String("error", err.Error()))
			return nil, err
		}
		runs = append(runs, page...)
	}

	slog.Info("[DynamoDB] Successfully retrieved training runs", slog.Int("count", len(runs)))
	return runs, nil
}

// TrainingRunToItem marshals run and adds the bookkeeping attributes.
func TrainingRunToItem(run models.TrainingRun, now time.Time) (map[string]types.AttributeValue, error) {
	item, err := attributevalue.MarshalMap(run)
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] Failed to marshal training run: %w", err)
	}

	item["created_at"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Unix())}
	item["ttl"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Add(TRAINING_RUN_TTL).Unix())}
	return item, nil
}
