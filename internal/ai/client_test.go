package ai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medreport-assistant-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestNewClient_NoKeyIsUnavailable(t *testing.T) {
	client := NewClient(&domain.AIConfig{Model: "gpt-4o-mini"}, testLogger())

	assert.False(t, client.Available())

	_, err := client.Complete(context.Background(), "prompt")
	assert.True(t, domain.IsUnavailable(err))
}

func TestNewClient_WithKeyIsAvailable(t *testing.T) {
	client := NewClient(&domain.AIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"}, testLogger())

	assert.True(t, client.Available())
}

func TestRequestContext_AppliesConfiguredTimeout(t *testing.T) {
	client := NewClient(&domain.AIConfig{APIKey: "sk-test", Timeout: time.Minute}, testLogger())

	ctx, cancel := client.requestContext(context.Background())
	defer cancel()

	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}

func TestRequestContext_NoTimeoutConfigured(t *testing.T) {
	client := NewClient(&domain.AIConfig{APIKey: "sk-test"}, testLogger())

	ctx, cancel := client.requestContext(context.Background())
	defer cancel()

	_, ok := ctx.Deadline()
	assert.False(t, ok)
}

func TestClassifyError(t *testing.T) {
	quota := classifyError(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests})
	assert.True(t, domain.IsQuotaExceeded(quota))

	transient := classifyError(&openai.APIError{HTTPStatusCode: http.StatusInternalServerError})
	assert.False(t, domain.IsQuotaExceeded(transient))

	plain := classifyError(errors.New("connection refused"))
	assert.False(t, domain.IsQuotaExceeded(plain))

	var remoteErr *domain.RemoteError
	assert.True(t, errors.As(plain, &remoteErr))
	assert.Equal(t, domain.ErrKindTransient, remoteErr.Kind)
}
