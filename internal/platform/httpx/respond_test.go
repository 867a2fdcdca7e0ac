package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarselKurniawan/erp-system/internal/shared"
)

func TestRespondErrorMapsTaxonomy(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail bool
	}{
		{fmt.Errorf("%w: bad line", shared.ErrValidation), http.StatusBadRequest, true},
		{fmt.Errorf("wrap: %w", shared.ErrNotFound), http.StatusNotFound, true},
		{shared.ErrConflict, http.StatusConflict, true},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, false},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err)
		require.Equal(t, tc.status, rec.Code)

		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, tc.status, body.Status)
		if tc.detail {
			require.Equal(t, tc.err.Error(), body.Detail)
		} else {
			require.Empty(t, body.Detail)
		}
	}
}
