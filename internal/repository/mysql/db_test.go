package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptions_DSN(t *testing.T) {
	opts := Options{
		User:     "pos",
		Password: "secret",
		Host:     "db",
		Port:     "3306",
		Database: "restaurant",
	}

	dsn := opts.DSN()

	assert.Contains(t, dsn, "pos:secret@tcp(db:3306)/restaurant?")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "clientFoundRows=true")
}

func TestPlaceholders(t *testing.T) {
	testCases := map[string]struct {
		n        int
		expected string
	}{
		"should return empty string for zero": {n: 0, expected: ""},
		"should return single marker":         {n: 1, expected: "?"},
		"should join markers with commas":     {n: 3, expected: "?, ?, ?"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, placeholders(tc.n))
		})
	}
}
