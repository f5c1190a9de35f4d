package dashboard

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"

	frequentCustomersWindow = 30
)

var ErrInvalidRange = errors.New("start date is after end date")

// Period is an inclusive reporting window.
type Period struct {
	Start time.Time
	End   time.Time
}

// ParsePeriod resolves optional start and end inputs into a window in loc. Dates may
// be YYYY-MM-DD or YYYY-MM-DD HH:MM:SS; a bare end date covers that whole day. A
// missing start defaults to midnight defaultDays before today, a missing end to the
// end of today.
func ParsePeriod(start, end string, now time.Time, loc *time.Location, defaultDays int) (Period, error) {
	today := startOfDay(now.In(loc))

	p := Period{
		Start: today.AddDate(0, 0, -defaultDays),
		End:   endOfDay(today),
	}

	if start != "" {
		t, bare, err := parseDate(start, loc)
		if err != nil {
			return Period{}, fmt.Errorf("invalid start_date: %w", err)
		}
		if bare {
			t = startOfDay(t)
		}
		p.Start = t
	}

	if end != "" {
		t, bare, err := parseDate(end, loc)
		if err != nil {
			return Period{}, fmt.Errorf("invalid end_date: %w", err)
		}
		if bare {
			t = endOfDay(t)
		}
		p.End = t
	}

	if p.Start.After(p.End) {
		return Period{}, ErrInvalidRange
	}

	return p, nil
}

func parseDate(value string, loc *time.Location) (t time.Time, bare bool, err error) {
	if t, err := time.ParseInLocation(DateTimeLayout, value, loc); err == nil {
		return t, false, nil
	}

	t, err = time.ParseInLocation(DateLayout, value, loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%q is not YYYY-MM-DD or YYYY-MM-DD HH:MM:SS", value)
	}

	return t, true, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}
