package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// DateLayout is the wire format of a CalendarDate
const DateLayout = "2006-01-02"

// CalendarDate is a date column without a time-of-day component.
// Values are always held as midnight UTC so that day arithmetic is exact.
type CalendarDate struct {
	datatypes.Date
}

// NewCalendarDate truncates t to its calendar date in t's own location
func NewCalendarDate(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))}
}

// ParseCalendarDate parses a YYYY-MM-DD string
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return NewCalendarDate(t), nil
}

// Time returns the date as midnight UTC
func (d CalendarDate) Time() time.Time {
	return time.Time(d.Date)
}

func (d CalendarDate) String() string {
	return d.Time().Format(DateLayout)
}

// AddDays returns the date n days later (or earlier when n is negative)
func (d CalendarDate) AddDays(n int) CalendarDate {
	return NewCalendarDate(d.Time().AddDate(0, 0, n))
}

// Equal compares two dates by calendar day
func (d CalendarDate) Equal(other CalendarDate) bool {
	return d.String() == other.String()
}

// textDateLayouts are the forms drivers that return dates as text use
var textDateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
}

// Scan normalizes whatever location the driver returns back to midnight UTC
func (d *CalendarDate) Scan(value interface{}) error {
	var text string
	switch v := value.(type) {
	case string:
		text = v
	case []byte:
		text = string(v)
	default:
		if err := d.Date.Scan(value); err != nil {
			return err
		}
		*d = NewCalendarDate(d.Time())
		return nil
	}

	for _, layout := range textDateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			*d = NewCalendarDate(t)
			return nil
		}
	}
	return fmt.Errorf("cannot scan %q into a date", text)
}

// MarshalJSON renders the date as "YYYY-MM-DD"
func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts "YYYY-MM-DD" or a full RFC3339 timestamp
func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		*d = NewCalendarDate(t)
		return nil
	}
	parsed, err := ParseCalendarDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
