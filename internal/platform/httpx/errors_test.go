package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/uleam/vehicle-gate/internal/shared"
)

func TestRespondErrorStatus(t *testing.T) {
	cases := map[error]int{
		shared.ErrNotFound:                               http.StatusNotFound,
		fmt.Errorf("lookup: %w", shared.ErrNotFound):     http.StatusNotFound,
		ErrValidation:                                    http.StatusBadRequest,
		shared.ErrCSRFTokenMismatch:                      http.StatusForbidden,
		ErrUnauthorized:                                  http.StatusUnauthorized,
		shared.ErrProfileMissing:                         http.StatusUnauthorized,
		errors.New("redis: connection refused"):          http.StatusInternalServerError,
	}
	for err, want := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, err)
		assert.Equal(t, want, rr.Code, err.Error())
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	}
}

func TestInternalErrorsHideDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("pg: password authentication failed"))
	assert.NotContains(t, rr.Body.String(), "password")
}
