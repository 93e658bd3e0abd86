// Package calendar resolves the canonical date key used by every date-scoped entity.
//
// All "what day is it" questions go through a Resolver bound to a single
// reference timezone. Call sites never slice ISO strings to get a date.
package calendar

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // reference zone must resolve on hosts without zoneinfo
)

// DefaultTimeZone is the reference timezone of this deployment.
const DefaultTimeZone = "America/New_York"

// DateLayout is the layout of a date key (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// ErrInvalidDate is returned when a string is not a valid date key.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// Clock returns the current instant.
type Clock func() time.Time

// Resolver derives date keys in a fixed reference timezone.
type Resolver struct {
	loc *time.Location
	now Clock
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock overrides the source of the current instant.
func WithClock(now Clock) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver creates a Resolver for the named IANA timezone.
func NewResolver(timeZone string, opts ...Option) (*Resolver, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", timeZone, err)
	}
	r := &Resolver{loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Location returns the reference timezone.
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// Now returns the current instant in the reference timezone.
func (r *Resolver) Now() time.Time {
	return r.now().In(r.loc)
}

// Today returns the date key for the current instant.
// It must be called fresh for every read or write; the result changes at
// local midnight in the reference timezone.
func (r *Resolver) Today() string {
	return r.DateOf(r.now())
}

// DateOf returns the date key of t in the reference timezone.
func (r *Resolver) DateOf(t time.Time) string {
	return t.In(r.loc).Format(DateLayout)
}

// Bounds returns the half-open instant range [start, end) covering the date
// key in the reference timezone. Days with DST transitions are 23 or 25 hours.
func (r *Resolver) Bounds(date string) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, date, r.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, r.loc)
	end := time.Date(d.Year(), d.Month(), d.Day()+1, 0, 0, 0, 0, r.loc)
	return start, end, nil
}

// Contains reports whether t falls on date in the reference timezone.
func (r *Resolver) Contains(date string, t time.Time) bool {
	return r.DateOf(t) == date
}

// PreviousDay returns the date key of the day before date.
func PreviousDay(date string) (string, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return d.AddDate(0, 0, -1).Format(DateLayout), nil
}

// ValidDate reports whether s is a well-formed date key.
func ValidDate(s string) bool {
	if len(s) != len(DateLayout) {
		return false
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
