package model

import (
	"errors"
	"time"
)

// ErrInvalidDateRange is returned when a stay's check-out date is not
// strictly after its check-in date, or when a supplied date cannot be
// parsed.  Handlers should translate this into an HTTP 400 response.
var ErrInvalidDateRange = errors.New("invalid date range: check-out must be after check-in")

// DateLayout is the wire and storage format for calendar dates.  The
// engine ignores time-of-day entirely; every date is normalized to
// midnight UTC before any comparison.
const DateLayout = "2006-01-02"

// StayRange is a half-open interval [CheckIn, CheckOut) of calendar
// dates.  The half-open convention means a check-out on day X and a
// fresh check-in on the same day X do not conflict, which is how
// hotel nights work: the night of the check-out date is not occupied.
//
// Fields:
//  CheckIn  – first occupied night, midnight UTC.
//  CheckOut – day of departure (excluded), midnight UTC.
type StayRange struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewStayRange builds a StayRange from two timestamps, truncating each
// to its calendar date in UTC.  It returns ErrInvalidDateRange unless
// checkIn < checkOut after truncation.
func NewStayRange(checkIn, checkOut time.Time) (StayRange, error) {
	s := StayRange{CheckIn: dateOnly(checkIn), CheckOut: dateOnly(checkOut)}
	if err := s.Validate(); err != nil {
		return StayRange{}, err
	}
	return s, nil
}

// ParseStayRange parses two YYYY-MM-DD strings into a validated StayRange.
func ParseStayRange(checkIn, checkOut string) (StayRange, error) {
	in, err := time.Parse(DateLayout, checkIn)
	if err != nil {
		return StayRange{}, ErrInvalidDateRange
	}
	out, err := time.Parse(DateLayout, checkOut)
	if err != nil {
		return StayRange{}, ErrInvalidDateRange
	}
	return NewStayRange(in, out)
}

// Validate checks the check-in < check-out invariant.
func (s StayRange) Validate() error {
	if s.CheckIn.IsZero() || s.CheckOut.IsZero() || !s.CheckOut.After(s.CheckIn) {
		return ErrInvalidDateRange
	}
	return nil
}

// Overlaps reports whether two stays contend for the same nights under
// the half-open rule: a.in < b.out AND b.in < a.out.  Adjacent stays
// (one checking out the day the other checks in) do not overlap.
func (s StayRange) Overlaps(other StayRange) bool {
	return s.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(s.CheckOut)
}

// Nights returns the number of nights in the stay.
func (s StayRange) Nights() int {
	return int(s.CheckOut.Sub(s.CheckIn).Hours() / 24)
}

// ContainsDate reports whether the given calendar date falls inside the
// stay.  The check-out date itself is excluded.
func (s StayRange) ContainsDate(t time.Time) bool {
	d := dateOnly(t)
	return !d.Before(s.CheckIn) && d.Before(s.CheckOut)
}

// CheckInString and CheckOutString render the bounds in storage format.
func (s StayRange) CheckInString() string  { return s.CheckIn.Format(DateLayout) }
func (s StayRange) CheckOutString() string { return s.CheckOut.Format(DateLayout) }

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
