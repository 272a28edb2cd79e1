package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindUnauthorized:         http.StatusUnauthorized,
		KindForbidden:            http.StatusForbidden,
		KindNotFound:             http.StatusNotFound,
		KindDuplicateApplication: http.StatusConflict,
		KindCapacityReached:      http.StatusConflict,
		KindInvalidTransition:    http.StatusConflict,
		KindWindowClosed:         http.StatusUnprocessableEntity,
		KindValidation:           http.StatusBadRequest,
		KindInternal:             http.StatusInternalServerError,
	}
	for kind, status := range cases {
		require.Equal(t, status, HTTPStatus(New(kind, "x")), kind)
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("submit: %w", New(KindWindowClosed, "Applications are closed"))
	require.True(t, Is(err, KindWindowClosed))
	require.Equal(t, "Applications are closed", Message(err))
}

func TestInternalHidesDetail(t *testing.T) {
	err := Internal(errors.New("connection reset by peer"))

	require.Equal(t, KindInternal, KindOf(err))
	require.Equal(t, "Internal Server Error", Message(err))
	require.Contains(t, err.Error(), "connection reset by peer")
	require.NotEmpty(t, Stack(err))
}

func TestUntypedErrorIsInternal(t *testing.T) {
	err := errors.New("boom")
	require.Equal(t, KindInternal, KindOf(err))
	require.Equal(t, http.StatusInternalServerError, HTTPStatus(err))
	require.False(t, Is(nil, KindInternal))
}
