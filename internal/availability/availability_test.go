package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 2026-08-31 is a Monday.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2026, 8, 31, hour, minute, 0, 0, time.Local)
}

func TestIsOpen_NilSchedule(t *testing.T) {
	assert.True(t, IsOpen(nil, mondayAt(12, 0)))
}

func TestIsOpen_NoSlotsForToday(t *testing.T) {
	w := &Weekly{
		Tuesday: []TimeSlot{{StartTime: "09:00", EndTime: "17:00"}},
	}

	assert.True(t, IsOpen(w, mondayAt(3, 0)))
}

func TestIsOpen_WithinSlot(t *testing.T) {
	w := &Weekly{
		Monday: []TimeSlot{{StartTime: "09:00", EndTime: "17:00"}},
	}

	assert.True(t, IsOpen(w, mondayAt(12, 0)))
}

func TestIsOpen_OutsideSlot(t *testing.T) {
	w := &Weekly{
		Monday: []TimeSlot{{StartTime: "09:00", EndTime: "17:00"}},
	}

	assert.False(t, IsOpen(w, mondayAt(8, 0)))
}

func TestIsOpen_BoundariesInclusive(t *testing.T) {
	w := &Weekly{
		Monday: []TimeSlot{{StartTime: "09:00", EndTime: "17:00"}},
	}

	assert.True(t, IsOpen(w, mondayAt(9, 0)))
	assert.True(t, IsOpen(w, mondayAt(17, 0)))
}

func TestIsOpen_AnySlotMatches(t *testing.T) {
	w := &Weekly{
		Monday: []TimeSlot{
			{StartTime: "07:00", EndTime: "08:00"},
			{StartTime: "11:30", EndTime: "14:00"},
		},
	}

	assert.True(t, IsOpen(w, mondayAt(12, 0)))
	assert.False(t, IsOpen(w, mondayAt(9, 30)))
}

func TestIsOpen_MalformedSlotSkipped(t *testing.T) {
	w := &Weekly{
		Monday: []TimeSlot{
			{StartTime: "garbage", EndTime: "17:00"},
			{StartTime: "11:00", EndTime: "13:00"},
		},
	}

	assert.True(t, IsOpen(w, mondayAt(12, 0)))
	assert.False(t, IsOpen(w, mondayAt(10, 0)))
}
