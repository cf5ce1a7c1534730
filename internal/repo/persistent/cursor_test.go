package persistent

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/andreyxaxa/Print-Detection/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_RoundTrip(t *testing.T) {
	updatedAt := time.Date(2026, 8, 28, 12, 30, 45, 123456789, time.UTC)

	cursor := encodeCursor(updatedAt, "a1b2c3d4")

	gotTime, gotID, err := decodeCursor(cursor)
	require.NoError(t, err)
	assert.True(t, gotTime.Equal(updatedAt))
	assert.Equal(t, "a1b2c3d4", gotID)
}

func TestDecodeCursor_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		cursor string
	}{
		{"not base64", "%%%not-base64%%%"},
		{"no separator", base64.RawURLEncoding.EncodeToString([]byte("garbage"))},
		{"empty card id", base64.RawURLEncoding.EncodeToString([]byte("2026-08-28T12:00:00Z|"))},
		{"bad timestamp", base64.RawURLEncoding.EncodeToString([]byte("yesterday|a1b2c3d4"))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := decodeCursor(tc.cursor)
			assert.ErrorIs(t, err, errs.ErrInvalidCursor)
		})
	}
}
