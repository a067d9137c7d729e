package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar-day identifier. It is stored as a DATE column and
// serialized as YYYY-MM-DD everywhere: query parameters, request bodies and
// event payloads all share the one format. The wrapped time is normalized to
// local midnight.
type Date struct {
	time.Time
}

// ParseDate parses a YYYY-MM-DD string into a Date at local midnight.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Time: t}, nil
}

// NewDate truncates t to its calendar day at local midnight.
func NewDate(t time.Time) Date {
	y, m, d := t.Local().Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.Local)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date literal %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		// The driver hands DATE columns back at midnight UTC. Take the
		// calendar day in the value's own zone; converting to local first
		// would shift it a day in any zone behind UTC.
		y, m, day := v.Date()
		*d = Date{Time: time.Date(y, m, day, 0, 0, 0, 0, time.Local)}
		return nil
	case []byte:
		parsed, err := ParseDate(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case string:
		parsed, err := ParseDate(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", src)
	}
}

// Equal reports whether both dates name the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.String() == other.String()
}
