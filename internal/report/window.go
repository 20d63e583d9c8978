// Package report computes the date windows and summary figures behind the
// shop's sales reports. Windows are a business-day concept, so all boundary
// math happens in the shop's configured time zone — callers pass the location
// explicitly rather than relying on the process locale.
package report

import "time"

// Window is a closed interval [Start, End] used to filter orders.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// TodayWindow spans the calendar day containing now: local midnight through
// the last instant before the next midnight.
func TodayWindow(now time.Time, loc *time.Location) Window {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return Window{Start: start, End: endOfDay(start)}
}

// WeekWindow spans Monday through Sunday of the week containing now. A
// Sunday belongs to the week ending that day, so the window reaches six days
// back to the preceding Monday.
func WeekWindow(now time.Time, loc *time.Location) Window {
	local := now.In(loc)

	daysSinceMonday := int(local.Weekday()) - int(time.Monday)
	if daysSinceMonday < 0 {
		daysSinceMonday += 7 // Sunday
	}

	monday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).
		AddDate(0, 0, -daysSinceMonday)
	sunday := monday.AddDate(0, 0, 6)

	return Window{Start: monday, End: endOfDay(sunday)}
}

// MonthWindow spans the calendar month containing now.
func MonthWindow(now time.Time, loc *time.Location) Window {
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	lastDay := start.AddDate(0, 1, -1)
	return Window{Start: start, End: endOfDay(lastDay)}
}

// endOfDay returns the last representable instant of dayStart's day.
// AddDate handles DST days that are not 24 hours long.
func endOfDay(dayStart time.Time) time.Time {
	return dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
