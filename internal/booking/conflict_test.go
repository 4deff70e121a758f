package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindConflictNamesTheWinner(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	existing := []Reservation{
		{Reference: "BK1", Status: StatusConfirmed, Window: TimeWindow{Date: "2026-09-01", Start: "08:00", End: "09:00"}},
		{Reference: "BK2", Status: StatusConfirmed, Window: TimeWindow{Date: "2026-09-01", Start: "10:00", End: "12:00"}},
	}

	winner := FindConflict(TimeWindow{Date: "2026-09-01", Start: "11:00", End: "13:00"}, existing, now)
	require.NotNil(t, winner)
	assert.Equal(t, "BK2", winner.Reference)
}

func TestFindConflictIgnoresInactive(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	window := TimeWindow{Date: "2026-09-01", Start: "10:00", End: "12:00"}

	tests := []struct {
		name     string
		existing Reservation
	}{
		{"cancelled", Reservation{Reference: "BK1", Status: StatusCancelled, Window: window}},
		{"completed", Reservation{Reference: "BK2", Status: StatusCompleted, Window: window}},
		{"elapsed confirmed", Reservation{
			Reference: "BK3",
			Status:    StatusConfirmed,
			Window:    TimeWindow{Date: "2026-08-30", Start: "10:00", End: "12:00"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, FindConflict(tt.existing.Window, []Reservation{tt.existing}, now))
		})
	}
}

func TestFindConflictBackToBack(t *testing.T) {
	now := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	existing := []Reservation{
		{Reference: "BK1", Status: StatusConfirmed, Window: TimeWindow{Date: "2026-09-01", Start: "10:00", End: "12:00"}},
	}

	assert.Nil(t, FindConflict(TimeWindow{Date: "2026-09-01", Start: "12:00", End: "14:00"}, existing, now))
	assert.Nil(t, FindConflict(TimeWindow{Date: "2026-09-01", Start: "08:00", End: "10:00"}, existing, now))
}
