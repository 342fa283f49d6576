package apperrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"tokoadmin/internal/apperrors"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperrors.Validation("bad"), http.StatusBadRequest},
		{apperrors.Conflict("dup"), http.StatusBadRequest},
		{apperrors.InvalidCredentials(), http.StatusBadRequest},
		{apperrors.NotFound("gone"), http.StatusNotFound},
		{apperrors.Upstream(http.StatusNotFound, "gone upstream", nil), http.StatusNotFound},
		{apperrors.Upstream(0, "unreachable", errors.New("dial tcp")), http.StatusInternalServerError},
		{apperrors.Internal("db", errors.New("boom")), http.StatusInternalServerError},
		{errors.New("foreign"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, apperrors.HTTPStatus(tc.err), tc.err.Error())
	}
}

func TestIsMatchesKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("lookup user 7: %w", apperrors.NotFound("User not found"))

	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.False(t, errors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, "User not found", apperrors.Message(err))
}

func TestMessageForForeignError(t *testing.T) {
	assert.Equal(t, "Internal server error", apperrors.Message(errors.New("driver: bad connection")))
}
