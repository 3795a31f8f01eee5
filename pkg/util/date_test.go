package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-06-30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), got)

	for _, s := range []string{"", "2025-6-30", "30/06/2025", "2025-02-30"} {
		_, err := ParseDate(s)
		assert.Error(t, err, s)
	}
}

func TestTodayAndFormat(t *testing.T) {
	now := time.Date(2025, 3, 1, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	today := Today(now)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), today)
	assert.Equal(t, "2025-03-02", FormatDate(today))
}
