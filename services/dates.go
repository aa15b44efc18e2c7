package services

import "time"

const dayKeyLayout = "2006-01-02"

// DayOf truncates t to its calendar date, keeping the location. Calendar
// dates, not timestamps, are the unit of streak and award bookkeeping.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// isNextDay reports whether next falls on the calendar day after prev.
func isNextDay(prev, next time.Time) bool {
	return sameDay(prev.AddDate(0, 0, 1), next)
}
