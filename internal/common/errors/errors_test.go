package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{
			name:        "retryable oracle error keeps retry budget",
			err:         NewOracleUnavailableError("credit", fmt.Errorf("connection refused")),
			wantCode:    "ORACLE_UNAVAILABLE",
			wantRetries: 3,
		},
		{
			name:        "timeout gets partial retries",
			err:         NewOracleTimeoutError("credit", context.DeadlineExceeded),
			wantCode:    "ORACLE_TIMEOUT",
			wantRetries: 2,
		},
		{
			name:        "business error is never retried",
			err:         NewApplicationIncompleteError("Is the property new or resale?"),
			wantCode:    "APPLICATION_INCOMPLETE",
			wantRetries: 0,
		},
		{
			name:        "unmapped code falls back to itself",
			err:         NewResourceNotFoundError("offers", "missing"),
			wantCode:    "RESOURCE_NOT_FOUND",
			wantRetries: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.wantRetries, bpmnErr.Retries)
			assert.Equal(t, string(tt.err.Code), bpmnErr.ErrorVariables["originalErrorCode"])

			vars := bpmnErr.ToErrorVariables()
			assert.Equal(t, tt.wantCode, vars["errorCode"])
			assert.Equal(t, tt.err.Message, vars["errorMessage"])
		})
	}
}

func TestStandardError_Unwrap(t *testing.T) {
	err := fmt.Errorf("turn: %w", NewOracleTimeoutError("salaried", context.DeadlineExceeded))

	assert.True(t, stderrors.Is(err, context.DeadlineExceeded))
	assert.True(t, HasCode(err, ErrCodeOracleTimeout))
	assert.False(t, HasCode(err, ErrCodeOracleUnavailable))

	stdErr, ok := AsStandardError(err)
	require.True(t, ok)
	assert.True(t, stdErr.Retryable)
}

func TestStandardError_WithMetadata(t *testing.T) {
	err := NewDuplicateOfferError("app-1").WithMetadata("offerId", "o-1")
	assert.Equal(t, "o-1", err.Metadata["offerId"])
	assert.Contains(t, err.Error(), "DUPLICATE_OFFER")
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "AI", GetErrorCategory(ErrCodeOracleTimeout))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDatabaseInsertFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDuplicateOffer))
	assert.Equal(t, "NOTIFICATION", GetErrorCategory(ErrCodeNotificationSendFailed))
	assert.Equal(t, "MESSAGING", GetErrorCategory(ErrCodeEventPublishFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidTurnInput))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeApplicationIncomplete))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeNotificationSendFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeDuplicateOffer))
}
