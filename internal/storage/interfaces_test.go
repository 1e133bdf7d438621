package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"wednesday",
			time.Date(2024, 4, 17, 15, 30, 0, 0, time.UTC),
			time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			"monday maps to itself",
			time.Date(2024, 4, 15, 0, 0, 1, 0, time.UTC),
			time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			"sunday belongs to the preceding monday",
			time.Date(2024, 4, 21, 23, 59, 59, 0, time.UTC),
			time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeekStart(tt.in)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
		})
	}
}
