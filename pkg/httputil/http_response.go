package httputil

import (
	"net/http"
	"time"

	"github.com/bytedance/sonic"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func WriteErrorResponse(w http.ResponseWriter, statusCode int, message string, details error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := ErrorResponse{
		Code:    statusCode,
		Message: message,
	}

	if details != nil {
		resp.Details = details.Error()
	}

	sonic.ConfigFastest.NewEncoder(w).Encode(resp)
}

func WriteJSONResponse(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if body != nil {
		sonic.ConfigDefault.NewEncoder(w).Encode(body)
	}
}

// ParseDate reads a calendar date in YYYY-MM-DD form.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(time.DateOnly, value)
}

// ParseDateRange reads the from/to query parameters. Missing values default
// to the last 30 days ending at today.
func ParseDateRange(r *http.Request, today time.Time) (time.Time, time.Time, error) {
	to := today
	from := today.AddDate(0, 0, -29)
	var err error
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = ParseDate(v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = ParseDate(v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else if r.URL.Query().Get("to") != "" {
		from = to.AddDate(0, 0, -29)
	}
	return from, to, nil
}
