package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	testCases := map[string]struct {
		requestID     string
		handlerStatus int
		expectedLevel string
	}{
		"should generate request id and log at info": {
			handlerStatus: http.StatusOK,
			expectedLevel: "INFO",
		},
		"should reuse caller request id": {
			requestID:     "caller-id",
			handlerStatus: http.StatusNotFound,
			expectedLevel: "INFO",
		},
		"should log server errors at error level": {
			handlerStatus: http.StatusServiceUnavailable,
			expectedLevel: "ERROR",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := slog.New(slog.NewJSONHandler(buf, nil))
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.handlerStatus)
			})

			req := httptest.NewRequest(http.MethodGet, "/orders/new", http.NoBody)
			if tc.requestID != "" {
				req.Header.Set(RequestIDHeader, tc.requestID)
			}
			w := httptest.NewRecorder()

			RequestLogger(logger)(next).ServeHTTP(w, req)

			echoed := w.Header().Get(RequestIDHeader)
			if tc.requestID != "" {
				assert.Equal(t, tc.requestID, echoed)
			} else {
				_, err := uuid.Parse(echoed)
				assert.NoError(t, err)
			}

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, "http_request", entry["msg"])
			assert.Equal(t, tc.expectedLevel, entry["level"])
			assert.Equal(t, echoed, entry["request_id"])
			assert.Equal(t, float64(tc.handlerStatus), entry["status"])
			assert.Equal(t, "/orders/new", entry["path"])
		})
	}
}
