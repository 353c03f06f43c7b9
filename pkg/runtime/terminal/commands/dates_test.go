package commands

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
)

var fakeNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestResolveDateRange_Explicit(t *testing.T) {
	dr, err := resolveDateRange("2025-03-01", "2025-04-01", false, false, fakeNow)
	require.NoError(t, err)
	assert.Equal(t, domain.DateRange{Start: "2025-03-01", End: "2025-04-01"}, dr)
}

func TestResolveDateRange_Validation(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{"end before start", "2025-03-01", "2025-02-01"},
		{"end equals start", "2025-03-01", "2025-03-01"},
		{"missing start", "", "2025-03-01"},
		{"missing end", "2025-03-01", ""},
		{"bad start format", "01/03/2025", "2025-04-01"},
		{"bad end format", "2025-03-01", "April 1st"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolveDateRange(tt.start, tt.end, false, false, fakeNow)
			assert.Error(t, err)
		})
	}
}

func TestResolveDateRange_FutureEndClamped(t *testing.T) {
	dr, err := resolveDateRange("2025-03-01", "2026-01-01", false, false, fakeNow)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-15", dr.End)
	assert.Equal(t, "2025-03-01", dr.Start)
}

func TestResolveDateRange_LastMonth(t *testing.T) {
	dr, err := resolveDateRange("", "", true, false, fakeNow)
	require.NoError(t, err)
	assert.Equal(t, domain.DateRange{Start: "2025-05-01", End: "2025-06-01"}, dr)
}

func TestResolveDateRange_Last3Months(t *testing.T) {
	dr, err := resolveDateRange("", "", false, true, fakeNow)
	require.NoError(t, err)
	assert.Equal(t, domain.DateRange{Start: "2025-03-01", End: "2025-06-01"}, dr)
}

func TestFirstOfMonthRange_YearBoundary(t *testing.T) {
	january := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)

	dr := firstOfMonthRange(january, 3)
	assert.Equal(t, "2024-10-01", dr.Start)
	assert.Equal(t, "2025-01-01", dr.End)
}
