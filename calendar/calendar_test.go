package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func eastern(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimeZone)
	assert.NoError(t, err)
	return loc
}

func TestSevenAMReminder_MorningOf(t *testing.T) {
	loc := eastern(t)
	// Event at 14:30; the morning-of reminder fires at 07:00, 450 minutes
	// before.
	start := time.Date(2025, time.March, 12, 14, 30, 0, 0, loc)
	r := SevenAMReminder(start, 0)
	assert.Equal(t, "popup", r.Method)
	assert.Equal(t, 450, r.Minutes)
}

func TestSevenAMReminder_DayBefore(t *testing.T) {
	loc := eastern(t)
	start := time.Date(2025, time.March, 12, 14, 30, 0, 0, loc)
	r := SevenAMReminder(start, 1)
	assert.Equal(t, 450+24*60, r.Minutes)
}

func TestSevenAMReminder_EventBeforeSeven(t *testing.T) {
	loc := eastern(t)
	// 06:00 event: the morning-of 07:00 reminder lands after the start,
	// which the minutes offset expresses as a negative value.
	start := time.Date(2025, time.March, 12, 6, 0, 0, 0, loc)
	r := SevenAMReminder(start, 0)
	assert.Equal(t, -60, r.Minutes)
}

func TestPrepReminders_DayBeforeThenMorningOf(t *testing.T) {
	loc := eastern(t)
	start := time.Date(2025, time.June, 6, 8, 30, 0, 0, loc)
	rs := PrepReminders(start)
	assert.Len(t, rs, 2)
	assert.Equal(t, 90+24*60, rs[0].Minutes)
	assert.Equal(t, 90, rs[1].Minutes)
}

func TestFixedOffsetReminder(t *testing.T) {
	r := FixedOffsetReminder(15)
	assert.Equal(t, Reminder{Method: "popup", Minutes: 15}, r)
}
