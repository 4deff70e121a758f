package booking

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCost(t *testing.T) {
	tests := []struct {
		name      string
		rateCents int64
		window    TimeWindow
		want      int64
	}{
		{"two whole hours at $12", 1200, TimeWindow{Date: "2026-09-01", Start: "10:00", End: "12:00"}, 2400},
		{"ninety minutes at $10", 1000, TimeWindow{Date: "2026-09-01", Start: "10:00", End: "11:30"}, 1500},
		{"one minute at $6", 600, TimeWindow{Date: "2026-09-01", Start: "10:00", End: "10:01"}, 10},
		{"fractional cent rounds nearest", 999, TimeWindow{Date: "2026-09-01", Start: "10:00", End: "10:01"}, 17},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Cost(tt.rateCents, tt.window))
		})
	}
}

func TestNewReferenceFormat(t *testing.T) {
	now := time.Date(2026, 9, 1, 14, 30, 5, 0, time.UTC)
	ref := NewReference(now)

	assert.Len(t, ref, 22)
	assert.True(t, strings.HasPrefix(ref, "BK20260901143005"))
	assert.Equal(t, strings.ToUpper(ref), ref)
}

func TestNewReferenceEntropy(t *testing.T) {
	now := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref := NewReference(now)
		assert.False(t, seen[ref], "duplicate reference %s", ref)
		seen[ref] = true
	}
}

func TestDeriveAccessCode(t *testing.T) {
	code := DeriveAccessCode("SCOOT-7", "BK20260901143005ABCDEF")

	assert.Len(t, code, 6)
	// Deterministic for the same inputs.
	assert.Equal(t, code, DeriveAccessCode("SCOOT-7", "BK20260901143005ABCDEF"))
	// Distinct bookings on the same vehicle get distinct codes.
	assert.NotEqual(t, code, DeriveAccessCode("SCOOT-7", "BK20260901143005FEDCBA"))
}
