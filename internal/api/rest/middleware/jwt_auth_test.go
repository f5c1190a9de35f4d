package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CameronXie/pos-order-relay/internal/auth"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func issueTestToken(t *testing.T, issuedAt time.Time) string {
	t.Helper()
	issuer := auth.NewTokenIssuer(testSecret, auth.WithTTL(time.Hour), auth.WithClock(func() time.Time { return issuedAt }))
	claims := auth.Claims{UserID: 7, RestaurantID: 42}
	claims.Subject = "chef@example.com"

	token, err := issuer.Issue(claims)
	require.NoError(t, err)
	return token
}

func TestJWTAuthMiddleware_Handler(t *testing.T) {
	now := time.Now()

	testCases := map[string]struct {
		authHeader      string
		expectedStatus  int
		expectedMessage string
	}{
		"should authenticate successfully with valid token": {
			authHeader:     "Bearer " + issueTestToken(t, now),
			expectedStatus: http.StatusOK,
		},
		"should accept lower case scheme": {
			authHeader:     "bearer " + issueTestToken(t, now),
			expectedStatus: http.StatusOK,
		},
		"should return unauthorized when authorization header is missing": {
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Missing or malformed authorization header",
		},
		"should return unauthorized when scheme is not bearer": {
			authHeader:      "Basic abc",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Missing or malformed authorization header",
		},
		"should return unauthorized when token is expired": {
			authHeader:      "Bearer " + issueTestToken(t, now.Add(-2*time.Hour)),
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Token expired",
		},
		"should return unauthorized when token is garbage": {
			authHeader:      "Bearer not-a-token",
			expectedStatus:  http.StatusUnauthorized,
			expectedMessage: "Invalid token",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			m := NewJWTAuthMiddleware(auth.NewTokenIssuer(testSecret))

			var gotClaims *auth.Claims
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotClaims, _ = GetClaimsFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/auth/session", http.NoBody)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()

			m.Handler(next).ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code)
			if tc.expectedStatus == http.StatusOK {
				require.NotNil(t, gotClaims)
				assert.Equal(t, int64(42), gotClaims.RestaurantID)
				assert.Equal(t, "chef@example.com", gotClaims.Subject)
				return
			}

			assert.Nil(t, gotClaims)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "authentication_failed", body["error"])
			assert.Equal(t, tc.expectedMessage, body["message"])
		})
	}
}

func TestExtractBearerToken(t *testing.T) {
	testCases := map[string]struct {
		header   string
		expected string
		wantErr  bool
	}{
		"should extract token":             {header: "Bearer abc", expected: "abc"},
		"should keep spaces inside token":  {header: "Bearer a b", expected: "a b"},
		"should reject empty header":       {header: "", wantErr: true},
		"should reject missing token":      {header: "Bearer ", wantErr: true},
		"should reject header without gap": {header: "Bearerabc", wantErr: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			token, err := extractBearerToken(req)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, token)
		})
	}
}
