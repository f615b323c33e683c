package httputil_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/limbo/habitstreak/pkg/httputil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorResponse(t *testing.T) {
	rr := httptest.NewRecorder()
	httputil.WriteErrorResponse(rr, http.StatusConflict, "habit already exists", errors.New("duplicate"))
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var resp httputil.ErrorResponse
	require.NoError(t, sonic.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, httputil.ErrorResponse{
		Code:    http.StatusConflict,
		Message: "habit already exists",
		Details: "duplicate",
	}, resp)
}

func TestParseDateRange(t *testing.T) {
	today := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	testCases := []struct {
		Desc  string
		Query string
		From  time.Time
		To    time.Time
		Error bool
	}{
		{
			Desc: "defaults",
			From: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
			To:   today,
		},
		{
			Desc:  "both set",
			Query: "?from=2025-01-01&to=2025-01-31",
			From:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			To:    time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			Desc:  "only to",
			Query: "?to=2025-01-30",
			From:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			To:    time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			Desc:  "invalid from",
			Query: "?from=yesterday",
			Error: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/habits"+tc.Query, nil)
			from, to, err := httputil.ParseDateRange(req, today)
			if tc.Error {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.From, from)
			assert.Equal(t, tc.To, to)
		})
	}
}
