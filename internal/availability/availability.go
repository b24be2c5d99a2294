package availability

import "time"

// TimeSlot is a wall-clock window within a single day. Times are "HH:MM",
// interpreted on the calendar date of the instant being checked. No timezone
// conversion happens anywhere; everything runs in local device time.
type TimeSlot struct {
	StartTime string `json:"startTime" bson:"startTime"`
	EndTime   string `json:"endTime" bson:"endTime"`
}

// Weekly is a per-weekday schedule. A nil schedule means "always available";
// so does a day with no slots.
type Weekly struct {
	Monday    []TimeSlot `json:"monday" bson:"monday"`
	Tuesday   []TimeSlot `json:"tuesday" bson:"tuesday"`
	Wednesday []TimeSlot `json:"wednesday" bson:"wednesday"`
	Thursday  []TimeSlot `json:"thursday" bson:"thursday"`
	Friday    []TimeSlot `json:"friday" bson:"friday"`
	Saturday  []TimeSlot `json:"saturday" bson:"saturday"`
	Sunday    []TimeSlot `json:"sunday" bson:"sunday"`
}

func (w *Weekly) daySlots(day time.Weekday) []TimeSlot {
	switch day {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	}
	return nil
}

// IsOpen reports whether now falls within any of the schedule's slots for
// now's weekday. Both slot boundaries are inclusive.
func IsOpen(w *Weekly, now time.Time) bool {
	if w == nil {
		return true
	}

	slots := w.daySlots(now.Weekday())
	if len(slots) == 0 {
		return true
	}

	for _, slot := range slots {
		start, okStart := atClock(now, slot.StartTime)
		end, okEnd := atClock(now, slot.EndTime)
		if !okStart || !okEnd {
			continue
		}

		if !now.Before(start) && !now.After(end) {
			return true
		}
	}

	return false
}

// atClock puts an "HH:MM" wall-clock time onto now's calendar date.
func atClock(now time.Time, hhmm string) (time.Time, bool) {
	clock, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, false
	}

	return time.Date(now.Year(), now.Month(), now.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location()), true
}
