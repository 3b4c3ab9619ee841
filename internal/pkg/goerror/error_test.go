package goerror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "server", err: NewServer(errors.New("boom")), want: http.StatusInternalServerError},
		{name: "not found", err: NewBusiness("Course not found", CodeNotFound), want: http.StatusNotFound},
		{name: "conflict", err: NewBusiness("Already enrolled", CodeConflict), want: http.StatusConflict},
		{name: "rate limited", err: NewBusiness("Slow down", CodeTooManyRequest), want: http.StatusTooManyRequests},
		{name: "bad request", err: NewBusiness("Invalid or expired code", CodeBadRequest), want: http.StatusBadRequest},
		{name: "bad gateway", err: NewBusiness("SMS gateway failed", CodeBadGateway), want: http.StatusBadGateway},
		{name: "unauthorized", err: NewBusiness("Unauthorized", CodeUnauthorized), want: http.StatusUnauthorized},
		{name: "forbidden", err: NewBusiness("Forbidden", CodeForbidden), want: http.StatusForbidden},
		{name: "timeout", err: NewBusiness("Timeout", CodeTimeout), want: http.StatusRequestTimeout},
		{name: "invalid input", err: NewInvalidInput(errors.New("phone")), want: http.StatusUnprocessableEntity},
		{name: "invalid request", err: NewInvalidRequest(errors.New("phone")), want: http.StatusBadRequest},
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ge *Error
			require.ErrorAs(t, tt.err, &ge)
			assert.Equal(t, tt.want, ge.StatusCode())
		})
	}
}

func TestError_Message(t *testing.T) {
	cause := errors.New("pool closed")

	err := NewServer(cause)
	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "pool closed", ge.Error())
	assert.Equal(t, "Internal server error", ge.Msg())
	assert.Equal(t, TypeServer, ge.Type())
	assert.ErrorIs(t, err, cause)

	err = NewBusiness("Course not found", CodeNotFound)
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "Course not found", ge.Error())
	assert.Equal(t, TypeBusiness, ge.Type())
	assert.Contains(t, ge.String(), "ERROR_CODE_NOT_FOUND")
}

func TestWrap(t *testing.T) {
	err := Wrap(ErrConflict, "Phone number already registered", CodeConflict)

	assert.ErrorIs(t, err, ErrConflict)
	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "Phone number already registered", ge.Msg())
	assert.Equal(t, http.StatusConflict, ge.StatusCode())
}

func TestNewInvalidInput_Fields(t *testing.T) {
	err := NewInvalidInput(nil, "phone_number", "is invalid", "code", "is required")

	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, CodeInvalidInput, ge.Code())
	assert.Equal(t, map[string]string{"phone_number": "is invalid", "code": "is required"}, ge.Fields())

	err = NewInvalidInput(nil, "dangling")
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, CodeInvalidFormat, ge.Code())
	assert.Empty(t, ge.Fields())
}

func TestNewInvalidFormat(t *testing.T) {
	var ge *Error
	require.ErrorAs(t, NewInvalidFormat("Invalid multipart form"), &ge)
	assert.Equal(t, "Invalid multipart form", ge.Msg())
	assert.Equal(t, TypeValidation, ge.Type())
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "ERROR_TYPE_VALIDATION", TypeValidation.String())
	assert.Equal(t, "ERROR_TYPE_UNKNOWN", Type(99).String())
	assert.Equal(t, "ERROR_CODE_INTERNAL", Code(99).String())
}
