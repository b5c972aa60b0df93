package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kevin07696/monext-gateway/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainErrorWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := domain.WrapError(domain.ErrorCodeGatewayError, "capture call failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "GATEWAY_ERROR")
	assert.Contains(t, err.Error(), "capture call failed")
	assert.Equal(t, domain.ErrorCodeGatewayError, domain.GetErrorCode(err))

	wrapped := fmt.Errorf("orchestration: %w", err)
	assert.True(t, domain.IsDomainError(wrapped, domain.ErrorCodeGatewayError))
	assert.False(t, domain.IsDomainError(wrapped, domain.ErrorCodeStateMismatch))
}

func TestIsExpected(t *testing.T) {
	tests := []struct {
		code domain.ErrorCode
		want bool
	}{
		{domain.ErrorCodeStateMismatch, true},
		{domain.ErrorCodeIllegalTransition, true},
		{domain.ErrorCodeAlreadyProcessed, true},
		{domain.ErrorCodeMalformedResponse, false},
		{domain.ErrorCodeConfigMissing, false},
		{domain.ErrorCodeGatewayError, false},
		{domain.ErrorCodeReferenceNotFound, false},
		{domain.ErrorCodePaymentNotFound, false},
		{domain.ErrorCodeTransactionMissing, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := domain.NewDomainError(tt.code, "test")
			assert.Equal(t, tt.want, domain.IsExpected(err))
		})
	}

	assert.False(t, domain.IsExpected(errors.New("plain error")))
	assert.False(t, domain.IsExpected(nil))
}

func TestWithDetail(t *testing.T) {
	err := domain.NewDomainError(domain.ErrorCodeGatewayError, "rejected").
		WithDetail("status", 409).
		WithDetail("operation", "capture")

	require.NotNil(t, err.Details)
	assert.Equal(t, 409, err.Details["status"])
	assert.Equal(t, "capture", err.Details["operation"])
}

func TestGetErrorCodeNonDomain(t *testing.T) {
	assert.Equal(t, domain.ErrorCode(""), domain.GetErrorCode(errors.New("plain")))
}
