package domain

import "time"

type Period struct {
	Month int `json:"month" form:"month"`
	Year  int `json:"year" form:"year"`
}

func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return ErrInvalidMonth
	}
	if p.Year < 1 || p.Year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// PeriodOf returns the calendar period containing t in loc.
func PeriodOf(t time.Time, loc *time.Location) Period {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return Period{Month: int(local.Month()), Year: local.Year()}
}

// FirstDayOf is midnight of the first day of the period in loc.
func FirstDayOf(p Period, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, loc)
}

// LastDayOf is midnight of the last day of the period in loc.
func LastDayOf(p Period, loc *time.Location) time.Time {
	return FirstDayOf(p, loc).AddDate(0, 1, -1)
}

// NextPeriodStart is the first instant after the period ends.
func NextPeriodStart(p Period, loc *time.Location) time.Time {
	return FirstDayOf(p, loc).AddDate(0, 1, 0)
}

func DaysIn(p Period) int {
	return LastDayOf(p, time.UTC).Day()
}
