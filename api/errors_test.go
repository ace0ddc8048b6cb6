package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrValidation},
		{http.StatusUnprocessableEntity, ErrValidation},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusTooManyRequests, ErrTooManyRequests},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
	}
	all := []error{ErrValidation, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrConflict, ErrTooManyRequests, ErrServer}

	for _, tc := range cases {
		err := fmt.Errorf("wrapped: %w", newError(http.MethodGet, "/x", tc.status, nil))
		for _, sentinel := range all {
			assert.Equalf(t, sentinel == tc.want, errors.Is(err, sentinel), "status %d vs %v", tc.status, sentinel)
		}
		assert.Equal(t, tc.status, StatusOf(err))
	}
}

func TestErrorMessageExtraction(t *testing.T) {
	e := newError(http.MethodPatch, "/api/users/me/nickname", http.StatusConflict, []byte(`{"message":"nickname taken","code":"USER-409"}`))
	assert.Equal(t, "nickname taken", e.Message)
	assert.Equal(t, "USER-409", e.Code)
	assert.Contains(t, e.Error(), "nickname taken")

	e = newError(http.MethodGet, "/x", http.StatusBadRequest, []byte(`{"error":"bad page","code":400}`))
	assert.Equal(t, "bad page", e.Message)
	assert.Equal(t, "400", e.Code)

	e = newError(http.MethodGet, "/x", http.StatusNotFound, []byte("<html>nope</html>"))
	assert.Equal(t, http.StatusText(http.StatusNotFound), e.Message)
	assert.Equal(t, "", e.Code)
}
