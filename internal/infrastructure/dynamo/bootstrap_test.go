package dynamo

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-api-accounts/internal/config"
	"github.com/stretchr/testify/mock"
)

func TestBootstrap_CreatesEachTable_ToleratesExisting(t *testing.T) {
	api := &mockAPI{}
	tables := config.DynamoTables{Users: "users", EmailTracking: "email_tracking", ProfilePics: "images"}

	named := func(name string) interface{} {
		return mock.MatchedBy(func(in *dynamodb.CreateTableInput) bool { return aws.ToString(in.TableName) == name })
	}
	api.On("CreateTable", mock.Anything, named("users")).Return(nil, &types.ResourceInUseException{})
	api.On("CreateTable", mock.Anything, named("email_tracking")).Return(&dynamodb.CreateTableOutput{}, nil)
	api.On("CreateTable", mock.Anything, named("images")).Return(&dynamodb.CreateTableOutput{}, nil)

	Bootstrap(context.Background(), api, tables)

	api.AssertExpectations(t)
}
