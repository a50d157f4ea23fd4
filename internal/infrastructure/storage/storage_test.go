package storage

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/go-api-accounts/internal/config"
	"github.com/go-api-accounts/internal/infrastructure/dynamo"
	"github.com/go-api-accounts/internal/infrastructure/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time checks that both backends satisfy the store contracts.
var (
	_ UserStore         = (*postgres.UserRepo)(nil)
	_ UserStore         = (*dynamo.UserRepo)(nil)
	_ VerificationStore = (*postgres.VerificationRepo)(nil)
	_ VerificationStore = (*dynamo.VerificationRepo)(nil)
	_ ProfilePicStore   = (*postgres.ProfilePicRepo)(nil)
	_ ProfilePicStore   = (*dynamo.ProfilePicRepo)(nil)
)

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{StorageDriver: "sqlite"}, aws.Config{}, nil, false)
	assert.ErrorContains(t, err, `unknown storage driver "sqlite"`)
}

func TestOpen_DynamoWithoutPrepare(t *testing.T) {
	cfg := &config.Config{
		StorageDriver: config.StorageDynamo,
		DynamoTables:  config.DynamoTables{Users: "users", EmailTracking: "email_tracking", ProfilePics: "images"},
	}
	st, err := Open(context.Background(), cfg, aws.Config{Region: "us-east-1"}, nil, false)
	require.NoError(t, err)
	assert.NotNil(t, st.Users)
	assert.NoError(t, st.Close())
}
