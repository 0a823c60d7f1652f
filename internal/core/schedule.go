package core

import "time"

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDay builds the date for day in year/month, falling back to the last
// day of the month when the month is shorter than day.
func ClampDay(year, month, day int) Date {
	last := DaysIn(year, month)
	if day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(year, month, day)
}

// MonthBounds returns the first and last calendar day of ref's month.
func MonthBounds(ref Date) (Date, Date) {
	return NewDate(ref.Year(), ref.Month(), 1), ClampDay(ref.Year(), ref.Month(), 31)
}

// NextDueDate returns the earliest day that falls on sipDay of some month
// (clamped to short months) and is on or after both start and ref.
//
// The candidate is built in the month of the later bound. If it falls before
// that bound, the following month's candidate is always past it, so a single
// advance suffices no matter how far start lies ahead of ref.
func NextDueDate(sipDay int, start, ref Date) Date {
	floor := ref
	if start.After(ref) {
		floor = start
	}

	year, month := floor.Year(), floor.Month()
	candidate := ClampDay(year, month, sipDay)
	if candidate.Before(floor) {
		month++
		if month > 12 {
			month = 1
			year++
		}
		candidate = ClampDay(year, month, sipDay)
	}
	return candidate
}

// NextDue returns the plan's next due date relative to ref.
func (p RecurringPlan) NextDue(ref Date) Date {
	return NextDueDate(p.SIPDay, p.StartDate, ref)
}

// Schedule annotates the plan with its next due date relative to ref.
func (p RecurringPlan) Schedule(ref Date) ScheduledPlan {
	return ScheduledPlan{RecurringPlan: p, NextDueDate: p.NextDue(ref)}
}

// DueWithin reports whether due lies in the inclusive window [ref, ref+days].
func DueWithin(due, ref Date, days int) bool {
	return !due.Before(ref) && !due.After(ref.AddDays(days))
}
