package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "not found",
			err:  NotFound(12, "no strategy matched"),
			want: "not_found error on page 12: no strategy matched",
		},
		{
			name: "http status",
			err:  HTTPStatus(404, "https://example.test/p/1.png"),
			want: "http_status error (code 404): https://example.test/p/1.png",
		},
		{
			name: "wrapped cause",
			err:  &Error{Type: ErrorTypeStorage, Page: 3, Err: errors.New("disk full")},
			want: "storage error on page 3: disk full",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	assert.NoError(t, Wrap(ErrorTypeNetwork, 1, nil))

	cause := errors.New("connection reset")
	err := Wrap(ErrorTypeNetwork, 5, cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrorTypeNetwork, TypeOf(err))
}

func TestIsTypeWalksChain(t *testing.T) {
	err := Wrap(ErrorTypeUnknown, 7, HTTPStatus(503, "u"))

	assert.True(t, IsType(err, ErrorTypeHTTPStatus))
	assert.True(t, IsType(err, ErrorTypeUnknown))
	assert.False(t, IsType(err, ErrorTypeNotFound))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeUnknown))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 404, StatusCode(HTTPStatus(404, "u")))
	assert.Equal(t, 403, StatusCode(fmt.Errorf("page 2: %w", Wrap(ErrorTypeNetwork, 2, HTTPStatus(403, "u")))))
	assert.Equal(t, 0, StatusCode(errors.New("plain")))
	assert.Equal(t, 0, StatusCode(nil))
}

func TestTypeOfPlainError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, TypeOf(errors.New("plain")))
}
