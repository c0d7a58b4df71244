package utils

import (
	"time"
)

// ET is the US Eastern time location used for exchange hours.
var ET *time.Location

func init() {
	var err error
	ET, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback when the tz database is unavailable; ignores DST.
		ET = time.FixedZone("ET", -5*60*60)
	}
}

// NowET returns the current time in US Eastern time.
func NowET() time.Time {
	return time.Now().In(ET)
}

// MarketOpenTime returns the regular session open (9:30 AM ET) for a date.
func MarketOpenTime(date time.Time) time.Time {
	d := date.In(ET)
	return time.Date(d.Year(), d.Month(), d.Day(), 9, 30, 0, 0, ET)
}

// MarketCloseTime returns the regular session close (4:00 PM ET) for a date.
func MarketCloseTime(date time.Time) time.Time {
	d := date.In(ET)
	return time.Date(d.Year(), d.Month(), d.Day(), 16, 0, 0, 0, ET)
}

// IsMarketOpenAt checks if the US regular session would be open at t.
// Exchange holidays are not modelled.
func IsMarketOpenAt(t time.Time) bool {
	t = t.In(ET)
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !t.Before(MarketOpenTime(t)) && t.Before(MarketCloseTime(t))
}

// MarketStatus returns a short human-readable session status.
func MarketStatus() string {
	return MarketStatusAt(NowET())
}

// MarketStatusAt returns the session status at t.
func MarketStatusAt(t time.Time) string {
	t = t.In(ET)
	switch {
	case t.Weekday() == time.Saturday || t.Weekday() == time.Sunday:
		return "Closed (Weekend)"
	case IsMarketOpenAt(t):
		return "Open"
	case t.Before(MarketOpenTime(t)):
		return "Pre-Market"
	default:
		return "After Hours"
	}
}

// FileTimestamp formats t for use in output file names (20060102_150405).
func FileTimestamp(t time.Time) string {
	return t.Format("20060102_150405")
}

// FormatDateTime formats t as "2006-01-02 15:04:05".
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// DaysAgo returns midnight (local) n days before now.
func DaysAgo(now time.Time, n int) time.Time {
	d := now.AddDate(0, 0, -n)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}
