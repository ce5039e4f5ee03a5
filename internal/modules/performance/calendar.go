// Package performance reconstructs the daily multi-currency valuation
// history of a portfolio and calibrates its time-weighted return series.
package performance

import (
	"time"

	"github.com/wealthscope/wealthscope/internal/domain"
)

// Calendar is the shared ordered sequence of trading dates for one query:
// strictly increasing, de-duplicated ISO date keys.
type Calendar []string

// BuildCalendar constructs the calendar from the FX series' date keys.
// If today is a business day and its key is absent, it is appended and the
// last known FX value is carried forward to it; the returned FxSeries is a
// copy augmented with that entry. The input series is never mutated.
func BuildCalendar(fx domain.FxSeries, today time.Time) (Calendar, domain.FxSeries) {
	dates := domain.SortedDates(fx)

	augmented := make(domain.FxSeries, len(fx)+1)
	for d, rate := range fx {
		augmented[d] = rate
	}

	todayKey := today.Format(domain.DateKeyLayout)
	if domain.IsBusinessDay(today) {
		if _, present := augmented[todayKey]; !present && len(dates) > 0 && todayKey > dates[len(dates)-1] {
			augmented[todayKey] = augmented[dates[len(dates)-1]]
			dates = append(dates, todayKey)
		}
	}

	return Calendar(dates), augmented
}

// TrimStart drops leading calendar dates before minStart, so the first
// element equals the minimum effective-start across all positions. When
// minStart precedes the earliest available date, the calendar is clamped
// to that first date instead of being extended backward.
func (c Calendar) TrimStart(minStart string) Calendar {
	if minStart == "" {
		return c
	}
	for i, d := range c {
		if d >= minStart {
			return c[i:]
		}
	}
	return Calendar{}
}

// Index returns the position of date in the calendar, or -1.
func (c Calendar) Index(date string) int {
	for i, d := range c {
		if d == date {
			return i
		}
	}
	return -1
}

// First returns the earliest calendar date, or "" for an empty calendar.
func (c Calendar) First() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Last returns the latest calendar date, or "" for an empty calendar.
func (c Calendar) Last() string {
	if len(c) == 0 {
		return ""
	}
	return c[len(c)-1]
}
