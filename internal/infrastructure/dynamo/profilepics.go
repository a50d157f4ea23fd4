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

// ProfilePicRepo stores picture metadata keyed by owner, so a put replaces
// the previous picture. PK: user_id.
type ProfilePicRepo struct {
	client    API
	tableName string
}

func NewProfilePicRepo(client API, tableName string) *ProfilePicRepo {
	return &ProfilePicRepo{client: client, tableName: tableName}
}

func (r *ProfilePicRepo) GetByUser(ctx context.Context, userID string) (_ *domain.ProfilePic, err error) {
	defer func(start time.Time) { metrics.ObserveDB("images.get_by_user", start, err) }(time.Now())

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldUserID, userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("profile picture: %w", domain.ErrNotFound)
	}
	var p domain.ProfilePic
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfilePicRepo) Put(ctx context.Context, p *domain.ProfilePic) (err error) {
	defer func(start time.Time) { metrics.ObserveDB("images.put", start, err) }(time.Now())

	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal profile picture: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ProfilePicRepo) DeleteByUser(ctx context.Context, userID string) (err error) {
	defer func(start time.Time) { metrics.ObserveDB("images.delete_by_user", start, err) }(time.Now())

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(fieldUserID, userID),
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": fieldUserID},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("profile picture: %w", domain.ErrNotFound)
	}
	return err
}
