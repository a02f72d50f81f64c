package r2client

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresConfig(t *testing.T) {
	t.Parallel()

	tests := []Config{
		{},
		{Endpoint: "https://acct.r2.cloudflarestorage.com"},
		{Endpoint: "https://acct.r2.cloudflarestorage.com", AccessKeyID: "a", SecretKey: "s"},
	}
	for _, cfg := range tests {
		_, err := New(t.Context(), cfg)
		assert.Error(t, err)
	}

	c, err := New(t.Context(), Config{
		Endpoint:    "https://acct.r2.cloudflarestorage.com",
		AccessKeyID: "a",
		SecretKey:   "s",
		BucketName:  "models",
	})
	require.NoError(t, err)
	assert.Equal(t, "models", c.Bucket())
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	notFound := []error{
		&types.NoSuchKey{},
		fmt.Errorf("operation error S3: HeadObject: %w", &types.NotFound{}),
		&smithy.GenericAPIError{Code: "NoSuchKey"},
		&smithyhttp.ResponseError{Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusNotFound}}},
	}
	for _, err := range notFound {
		assert.True(t, isNotFound(err), "%v", err)
	}

	other := []error{
		errors.New("connection reset"),
		&smithy.GenericAPIError{Code: "AccessDenied"},
		&smithyhttp.ResponseError{Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusForbidden}}},
	}
	for _, err := range other {
		assert.False(t, isNotFound(err), "%v", err)
	}
}

func TestOpError(t *testing.T) {
	t.Parallel()

	err := opError("head", "models/v1/model.json", &types.NotFound{})
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "models/v1/model.json")

	err = opError("upload", "k", errors.New("denied"))
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `r2client: upload "k": denied`, err.Error())
}

func TestEtagOf(t *testing.T) {
	t.Parallel()

	quoted := `"9b2cf535f27731c974343645a3985328"`
	assert.Equal(t, "9b2cf535f27731c974343645a3985328", etagOf(&quoted))
	assert.Empty(t, etagOf(nil))
}
