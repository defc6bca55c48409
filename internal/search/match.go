package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/stayfinder/backend/internal/models"
)

// Stay-interval matching. All stay and offer windows are half-open calendar
// date intervals [start, end): the start night is included, the end date is
// check-out and excluded.

// NormalizeDate strips the time-of-day component, pinning the date to
// midnight UTC so wall-clock times can never affect matching.
func NormalizeDate(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date string into a normalized UTC date.
func ParseDate(value string) (time.Time, error) {
	t, err := time.Parse(models.DateFormat, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return NormalizeDate(t), nil
}

// Covers reports whether the offer window fully contains the requested stay.
// Overlap is not enough: an offer that covers only part of the stay cannot
// be booked for it. Empty or inverted intervals never match.
func Covers(offerStart, offerEnd, stayStart, stayEnd time.Time) bool {
	offerStart = NormalizeDate(offerStart)
	offerEnd = NormalizeDate(offerEnd)
	stayStart = NormalizeDate(stayStart)
	stayEnd = NormalizeDate(stayEnd)

	if !offerEnd.After(offerStart) || !stayEnd.After(stayStart) {
		return false
	}

	return !offerStart.After(stayStart) && !stayEnd.After(offerEnd)
}
