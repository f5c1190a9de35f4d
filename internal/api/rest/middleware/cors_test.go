package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	testCases := map[string]struct {
		origins        []string
		method         string
		origin         string
		preflight      bool
		expectedStatus int
		expectedOrigin string
	}{
		"should allow listed origin": {
			origins:        []string{"https://kitchen.example.com"},
			method:         http.MethodGet,
			origin:         "https://kitchen.example.com",
			expectedStatus: http.StatusOK,
			expectedOrigin: "https://kitchen.example.com",
		},
		"should not set headers for unlisted origin": {
			origins:        []string{"https://kitchen.example.com"},
			method:         http.MethodGet,
			origin:         "https://evil.example.com",
			expectedStatus: http.StatusOK,
		},
		"should allow any origin with wildcard": {
			origins:        []string{"*"},
			method:         http.MethodGet,
			origin:         "https://anywhere.example.com",
			expectedStatus: http.StatusOK,
			expectedOrigin: "https://anywhere.example.com",
		},
		"should answer preflight without calling handler": {
			origins:        []string{"*"},
			method:         http.MethodOptions,
			origin:         "https://kitchen.example.com",
			preflight:      true,
			expectedStatus: http.StatusNoContent,
			expectedOrigin: "https://kitchen.example.com",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(tc.method, "/menu/items", http.NoBody)
			req.Header.Set("Origin", tc.origin)
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
				req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")
			}
			w := httptest.NewRecorder()

			CORS(tc.origins)(next).ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			assert.Equal(t, tc.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, !tc.preflight, called)
			if tc.preflight {
				assert.Equal(t, corsAllowMethods, w.Header().Get("Access-Control-Allow-Methods"))
				assert.Equal(t, "Authorization, Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
			}
		})
	}
}
