package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockClient is a test implementation of the Client interface.
type MockClient struct {
	name    string
	healthy bool
}

func (m *MockClient) Name() string {
	return m.name
}

func (m *MockClient) Ping(ctx context.Context) error {
	if !m.healthy {
		return context.DeadlineExceeded
	}
	return nil
}

func (m *MockClient) Close() error {
	return nil
}

func (m *MockClient) Health() HealthChecker {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		return m.Ping(ctx)
	}
}

var _ Client = (*MockClient)(nil)

// MockFactory is a test implementation of the Factory interface.
type MockFactory struct{}

func (m *MockFactory) Create(ctx context.Context) (Client, error) {
	return &MockClient{name: "mock", healthy: true}, nil
}

var _ Factory = (*MockFactory)(nil)

func TestHealthChecker(t *testing.T) {
	assert.NoError(t, (&MockClient{name: "test", healthy: true}).Health()())
	assert.Error(t, (&MockClient{name: "test", healthy: false}).Health()())
}

func TestStorageError_IsMatchesByCode(t *testing.T) {
	cause := errors.New("dial tcp: lookup nowhere: no such host")
	err := ErrInvalidConfig.WithMessage("mongodb client 'test' cannot be built").WithCause(cause)

	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrClientNotFound))
	assert.Contains(t, err.Error(), "[INVALID_CONFIG]")
	assert.Contains(t, err.Error(), "no such host")
}

func TestStorageError_WrappedByFmt(t *testing.T) {
	err := fmt.Errorf("resolve collection: %w", ErrUnresolvedQualifier.WithMessage("collection is required"))

	assert.True(t, errors.Is(err, ErrUnresolvedQualifier))

	se, ok := GetStorageError(err)
	require.True(t, ok)
	assert.Equal(t, "UNRESOLVED_QUALIFIER", se.Code)
	assert.True(t, IsStorageError(err))
	assert.False(t, IsStorageError(errors.New("plain")))
}

func TestStorageError_WithContextDoesNotMutateBase(t *testing.T) {
	err := ErrClientNotFound.WithContext(map[string]interface{}{"key": "mongodb:client"})

	val, ok := err.GetContext("key")
	require.True(t, ok)
	assert.Equal(t, "mongodb:client", val)

	_, ok = ErrClientNotFound.GetContext("key")
	assert.False(t, ok)
}
