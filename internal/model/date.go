package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shelfdesk/shelfdesk/internal/util"
)

// Date is a calendar day stored as YYYY-MM-DD text.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{util.TruncateDay(t)}
}

// DatePtr is a shorthand for optional date fields.
func DatePtr(t time.Time) *Date {
	d := NewDate(t)
	return &d
}

func (d Date) String() string {
	return util.FormatISODate(d.Time)
}

func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case time.Time:
		d.Time = util.TruncateDay(v.In(time.Local))
		return nil
	case nil:
		d.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot scan %T into model.Date", src)
	}
}

func (d *Date) parse(s string) error {
	t, err := util.ParseISODate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return util.ErrInvalidDateFormat
	}
	return d.parse(s[1 : len(s)-1])
}

// DateString renders an optional date, empty when unset.
func DateString(d *Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
