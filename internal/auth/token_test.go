package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte(strings.Repeat("k", 32))

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestTokenIssuer_IssueAndValidate(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	testCases := map[string]struct {
		elapsed     time.Duration
		expectedErr error
	}{
		"should accept token before expiry": {
			elapsed: 59 * time.Minute,
		},
		"should reject token after expiry": {
			elapsed:     61 * time.Minute,
			expectedErr: ErrTokenExpired,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			clock := &fakeClock{now: issuedAt}
			issuer := NewTokenIssuer(testSecret, WithTTL(time.Hour), WithClock(clock.Now))

			claims := Claims{UserID: 3, RestaurantID: 7, AppRestaurantUID: "app-7"}
			claims.Subject = "owner@bistro.test"

			token, err := issuer.Issue(claims)
			require.NoError(t, err)

			clock.now = issuedAt.Add(tc.elapsed)
			got, err := issuer.Validate(token)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "owner@bistro.test", got.Subject)
			assert.Equal(t, int64(7), got.RestaurantID)
			assert.Equal(t, int64(3), got.UserID)
			assert.Equal(t, "app-7", got.AppRestaurantUID)
			assert.Equal(t, issuedAt.Add(time.Hour), got.ExpiresAt.Time.UTC())
		})
	}
}

func TestTokenIssuer_Validate_Invalid(t *testing.T) {
	issuer := NewTokenIssuer(testSecret)

	otherIssuer := NewTokenIssuer([]byte(strings.Repeat("x", 32)))
	foreign, err := otherIssuer.Issue(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "a"}})
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "a",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSubject, err := issuer.Issue(Claims{RestaurantID: 7})
	require.NoError(t, err)

	testCases := map[string]struct {
		token string
	}{
		"should reject malformed token":         {token: "not.a.token"},
		"should reject token with other secret": {token: foreign},
		"should reject unsigned token":          {token: noneToken},
		"should reject token without subject":   {token: noSubject},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Validate(tc.token)
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}
