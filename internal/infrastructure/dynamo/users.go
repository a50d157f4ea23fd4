package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-api-accounts/internal/domain"
	"github.com/go-api-accounts/internal/pkg/metrics"
)

// UserRepo provides typed DynamoDB operations for the users table.
// PK: user_id. GSI email-index on email.
type UserRepo struct {
	client    API
	tableName string
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Create(ctx context.Context, u *domain.User) (err error) {
	defer func(start time.Time) { metrics.ObserveDB("users.create", start, err) }(time.Now())

	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("user id already exists: %w", domain.ErrConflict)
	}
	return err
}

func (r *UserRepo) Get(ctx context.Context, userID string) (_ *domain.User, err error) {
	defer func(start time.Time) { metrics.ObserveDB("users.get", start, err) }(time.Now())

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldUserID, userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, domain.ErrUserNotFound
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (_ *domain.User, err error) {
	defer func(start time.Time) { metrics.ObserveDB("users.get_by_email", start, err) }(time.Now())

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(emailIndex),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": fieldEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, domain.ErrUserNotFound
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update applies the non-nil fields of upd.
func (r *UserRepo) Update(ctx context.Context, userID string, upd domain.UserUpdate) (err error) {
	defer func(start time.Time) { metrics.ObserveDB("users.update", start, err) }(time.Now())

	if upd.Empty() {
		return fmt.Errorf("no fields to update: %w", domain.ErrBadRequest)
	}
	updates := map[string]interface{}{fieldAccountUpdated: upd.UpdatedAt}
	if upd.FirstName != nil {
		updates[fieldFirstName] = *upd.FirstName
	}
	if upd.LastName != nil {
		updates[fieldLastName] = *upd.LastName
	}
	if upd.PasswordHash != nil {
		updates[fieldPasswordHash] = *upd.PasswordHash
	}
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	ue.Names["#pk"] = fieldUserID
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return domain.ErrUserNotFound
	}
	return err
}

// MarkEmailVerified sets is_verified for email. The update is conditional on
// the flag still being false, so a repeated confirmation writes nothing.
func (r *UserRepo) MarkEmailVerified(ctx context.Context, email string) (alreadyVerified bool, err error) {
	u, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if u.Verified {
		return true, nil
	}

	defer func(start time.Time) { metrics.ObserveDB("users.mark_verified", start, err) }(time.Now())
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldUserID, u.ID),
		UpdateExpression:    aws.String("SET #v = :t, #u = :now"),
		ConditionExpression: aws.String("attribute_not_exists(#v) OR #v = :f"),
		ExpressionAttributeNames: map[string]string{
			"#v": fieldVerified,
			"#u": fieldAccountUpdated,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":   &types.AttributeValueMemberBOOL{Value: true},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":now": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if isConditionFailed(err) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// Ping checks that the users table is reachable.
func (r *UserRepo) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.tableName)})
	return err
}
