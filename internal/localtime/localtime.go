// Package localtime maps between UTC storage timestamps and the fixed
// local calendar used for attendance bucketing. The deployment runs on
// UTC+5:30; the offset is configurable but never derived from the host
// timezone database.
package localtime

import "time"

// Calendar is a fixed-offset local calendar. The zero value is UTC.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(utcOffsetMinutes int) Calendar {
	return Calendar{loc: time.FixedZone("local", utcOffsetMinutes*60)}
}

func (c Calendar) location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// DateOf returns the local calendar date (truncated to midnight local,
// kept in the local zone) of a UTC instant.
func (c Calendar) DateOf(t time.Time) time.Time {
	lt := t.In(c.location())
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, c.location())
}

// DayStart returns 00:00:00 local on the given date as a UTC instant.
func (c Calendar) DayStart(date time.Time) time.Time {
	d := date.In(c.location())
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.location()).UTC()
}

// DayEnd returns 23:59:59.999999 local on the given date as a UTC
// instant. The window is closed: DayStart(d) <= t <= DayEnd(d) covers the
// whole local day to microsecond precision, matching the precision of the
// stored timestamps.
func (c Calendar) DayEnd(date time.Time) time.Time {
	d := date.In(c.location())
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, 999999000, c.location()).UTC()
}

// Today returns the current local calendar date.
func (c Calendar) Today() time.Time {
	return c.DateOf(time.Now().UTC())
}

// Now returns the current instant in the local zone.
func (c Calendar) Now() time.Time {
	return time.Now().In(c.location())
}

// DateValue returns the calendar date as midnight UTC. SQL DATE columns
// truncate timestamps in the session timezone; a local-midnight instant
// lands on the previous date there, midnight UTC does not.
func (c Calendar) DateValue(date time.Time) time.Time {
	d := date.In(c.location())
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey formats a date for map keys and JSON output.
func (c Calendar) DateKey(date time.Time) string {
	return date.In(c.location()).Format("2006-01-02")
}

// FormatClock renders an instant as local wall-clock time.
func (c Calendar) FormatClock(t time.Time) string {
	return t.In(c.location()).Format("03:04 PM")
}

// FormatHour renders the local hour bucket an instant falls into.
func (c Calendar) FormatHour(t time.Time) string {
	return t.In(c.location()).Format("03 PM")
}

// ParseDate parses a YYYY-MM-DD string as a local calendar date.
func (c Calendar) ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, c.location())
}
