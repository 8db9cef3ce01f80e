package model

import (
	"bytes"
	"fmt"
	"time"
)

// anchorHour is the time of day every Date is pinned to, so that day
// arithmetic never drifts across timezone offsets.
const anchorHour = 12

type Date struct {
	time.Time
}

// DayOf takes the calendar day of t in its own location.
func DayOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, anchorHour, 0, 0, 0, time.UTC)}
}

func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return DayOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return DayOf(t), nil
}

func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// DaysUntil is the whole number of days from d to o, negative if o is earlier.
func (d Date) DaysUntil(o Date) int {
	return int(o.Sub(d.Time).Round(time.Hour).Hours()) / 24
}

func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }
func (d Date) After(o Date) bool  { return d.Time.After(o.Time) }
func (d Date) Equal(o Date) bool  { return d.Time.Equal(o.Time) }

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(bytes.Trim(b, `"`)))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
