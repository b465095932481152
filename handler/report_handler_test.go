package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportTime(t *testing.T) {
	got, err := parseReportTime("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = parseReportTime("2026-03-01T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 15, 4, 5, 0, time.UTC), got)

	for _, bad := range []string{"", "yesterday", "03/01/2026"} {
		_, err := parseReportTime(bad)
		assert.Error(t, err, bad)
	}
}
