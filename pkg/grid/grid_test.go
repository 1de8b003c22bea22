package grid

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthSundayStart(t *testing.T) {
	g := Month(2025, time.May, time.Sunday, time.UTC)

	require.Len(t, g.Cells, MonthCells)
	assert.Equal(t, DaysPerWeek, g.WrapWidth)
	assert.Equal(t, 6, g.Weeks())
	assert.Equal(t, time.Date(2025, 4, 27, 0, 0, 0, 0, time.UTC), g.Cells[0])
	assert.Equal(t, time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC), g.Cells[6])
	assert.Equal(t, time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC), g.Cells[41])

	for i, c := range g.Cells {
		assert.Equal(t, time.Weekday((i)%7), c.Weekday(), "cell %d", i)
	}
	assert.False(t, g.InMonth(0))
	assert.True(t, g.InMonth(4))
	assert.False(t, g.InMonth(35))
}

func TestMonthMondayStart(t *testing.T) {
	g := Month(2025, time.June, time.Monday, time.UTC)

	// June 1st 2025 is a Sunday, so a Monday-start grid begins six days earlier.
	assert.Equal(t, time.Date(2025, 5, 26, 0, 0, 0, 0, time.UTC), g.Cells[0])
	assert.Equal(t, time.Monday, g.Cells[0].Weekday())
	assert.True(t, g.InMonth(6))
}

func TestStrip(t *testing.T) {
	g := Strip(2024, time.February, time.UTC)

	assert.Len(t, g.Cells, 29)
	assert.Equal(t, 29, g.WrapWidth)
	assert.Equal(t, 1, g.Weeks())
	assert.Equal(t, 1, g.Cells[0].Day())
	assert.Equal(t, 29, g.Cells[28].Day())
}

func TestIndex(t *testing.T) {
	g := Month(2025, time.May, time.Sunday, time.UTC)

	i, ok := g.Index(time.Date(2025, 5, 6, 23, 59, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 9, i)

	_, ok = g.Index(time.Date(2025, 4, 26, 12, 0, 0, 0, time.UTC))
	assert.False(t, ok)

	_, ok = g.Index(time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestIndexAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	g := Month(2025, time.March, time.Sunday, loc)

	// DST starts 2025-03-09 in New York.
	i, ok := g.Index(time.Date(2025, 3, 10, 8, 0, 0, 0, loc))
	require.True(t, ok)
	assert.Equal(t, 10, g.Cells[i].Day())
}

func TestEnd(t *testing.T) {
	g := Strip(2025, time.May, time.UTC)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), g.End())
	assert.Equal(t, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), g.First())
}

func TestParseMonth(t *testing.T) {
	y, m, err := ParseMonth("2025-05")
	require.NoError(t, err)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.May, m)

	_, _, err = ParseMonth("May 2025")
	assert.Error(t, err)
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("Monday")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d)

	d, err = ParseWeekday("sun")
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, d)

	_, err = ParseWeekday("funday")
	assert.Error(t, err)
}
