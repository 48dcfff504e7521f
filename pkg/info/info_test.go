package info

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServeHTTP(t *testing.T) {

	rec := httptest.NewRecorder()
	New("gcm-queue").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/info", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	got := &Info{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), got))
	require.Equal(t, New("gcm-queue"), got)
}
