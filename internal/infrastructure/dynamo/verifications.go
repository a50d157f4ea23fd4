package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/pkg/metrics"
)

// VerificationRepo stores issued verification tokens.
// PK: token. Items are never updated or expired by TTL.
type VerificationRepo struct {
	client    API
	tableName string
}

func NewVerificationRepo(client API, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

func (r *VerificationRepo) Create(ctx context.Context, rec *domain.VerificationRecord) (err error) {
	defer func(start time.Time) { metrics.ObserveDB("email_tracking.create", start, err) }(time.Now())

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("%w: put verification record: %w", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (r *VerificationRepo) FindByToken(ctx context.Context, token string) (_ *domain.VerificationRecord, err error) {
	defer func(start time.Time) { metrics.ObserveDB("email_tracking.find_by_token", start, err) }(time.Now())

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldToken, token),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("verification record: %w", domain.ErrNotFound)
	}
	var rec domain.VerificationRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
