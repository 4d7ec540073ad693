package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusAndReason(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
		wantMsg    string
	}{
		{
			name:       "server",
			err:        NewServer(errors.New("boom")),
			wantStatus: http.StatusInternalServerError,
			wantReason: "server_error",
			wantMsg:    "Internal server error",
		},
		{
			name:       "business unauthorized with reason",
			err:        WithReason(NewBusiness("Invalid user credentials", CodeUnauthorized), "invalid_grant"),
			wantStatus: http.StatusUnauthorized,
			wantReason: "invalid_grant",
			wantMsg:    "Invalid user credentials",
		},
		{
			name:       "invalid format",
			err:        NewInvalidFormat(),
			wantStatus: http.StatusBadRequest,
			wantReason: "invalid_request",
			wantMsg:    "Invalid request body",
		},
		{
			name:       "unavailable",
			err:        NewBusiness("down", CodeUnavailable),
			wantStatus: http.StatusServiceUnavailable,
			wantReason: "temporarily_unavailable",
			wantMsg:    "down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			require.ErrorAs(t, tt.err, &gerr)

			assert.Equal(t, tt.wantStatus, gerr.StatusCode())
			assert.Equal(t, tt.wantReason, gerr.Reason())
			assert.Equal(t, tt.wantMsg, gerr.Msg())
		})
	}
}

func TestNewInvalidInput(t *testing.T) {
	t.Run("Pairs", func(t *testing.T) {
		var gerr *Error
		require.ErrorAs(t, NewInvalidInput(nil, "username", "is required"), &gerr)

		assert.Equal(t, map[string]string{"username": "is required"}, gerr.Fields())
		assert.Equal(t, TypeValidation, gerr.Type())
	})

	t.Run("OddPairs", func(t *testing.T) {
		var gerr *Error
		require.ErrorAs(t, NewInvalidInput(nil, "username"), &gerr)

		assert.Equal(t, CodeInvalidFormat, gerr.Code())
	})

	t.Run("Wrapped", func(t *testing.T) {
		cause := errors.New("cause")
		err := NewInvalidInput(cause)

		assert.ErrorIs(t, err, cause)
	})
}

func TestWithReason_NonGoerror(t *testing.T) {
	plain := errors.New("plain")

	assert.Same(t, plain, WithReason(plain, "x"))
}

func TestWrapBusiness(t *testing.T) {
	errSentinel := errors.New("sentinel")

	err := WithReason(WrapBusiness(errSentinel, "Not configured", CodeInvalidFormat), "invalid_request")

	var gerr *Error
	require.ErrorAs(t, err, &gerr)
	assert.ErrorIs(t, err, errSentinel)
	assert.Equal(t, TypeBusiness, gerr.Type())
	assert.Equal(t, "Not configured", gerr.Msg())
	assert.Equal(t, 400, gerr.StatusCode())
}
