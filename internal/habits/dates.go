package habits

import "time"

// DateOf truncates an instant to its UTC calendar date (midnight UTC).
// Every date comparison in this package goes through it.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Today is the server-clock calendar date. There is no per-user timezone;
// the whole system runs on a single UTC "today".
func Today() time.Time {
	return DateOf(time.Now())
}

func sameDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
