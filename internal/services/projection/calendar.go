package projection

import (
	"fmt"
	"time"

	"RevenueCast/internal/domain/errs"

	"github.com/rickar/cal/v2"
)

// DefaultMarketDays are the livestock market weekdays with their local labels.
var DefaultMarketDays = map[time.Weekday]string{
	time.Tuesday:  "Selasa",
	time.Thursday: "Kamis",
}

const DefaultSearchDays = 28

// MarketDay is a forecast date with its weekday label.
type MarketDay struct {
	Date  time.Time
	Label string
}

// CalendarOption configures MarketCalendar.
type CalendarOption func(*MarketCalendar)

// MarketCalendar selects upcoming market dates.
type MarketCalendar struct {
	days       map[time.Weekday]string
	searchDays int
	holidays   *cal.BusinessCalendar
}

// NewMarketCalendar creates a calendar over the default Tuesday/Thursday markets.
func NewMarketCalendar(opts ...CalendarOption) *MarketCalendar {
	c := &MarketCalendar{
		days:       DefaultMarketDays,
		searchDays: DefaultSearchDays,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithMarketDays replaces the market weekdays and labels.
func WithMarketDays(days map[time.Weekday]string) CalendarOption {
	return func(c *MarketCalendar) {
		if len(days) > 0 {
			c.days = days
		}
	}
}

// WithSearchDays bounds how many days ahead the scan may look.
func WithSearchDays(n int) CalendarOption {
	return func(c *MarketCalendar) {
		if n > 0 {
			c.searchDays = n
		}
	}
}

// WithHolidays skips market dates that fall on any of the given holidays.
func WithHolidays(hols ...*cal.Holiday) CalendarOption {
	return func(c *MarketCalendar) {
		if len(hols) == 0 {
			return
		}
		bc := cal.NewBusinessCalendar()
		bc.AddHoliday(hols...)
		c.holidays = bc
	}
}

// FixedHoliday builds a holiday recurring on the same month and day every year.
func FixedHoliday(name string, month time.Month, day int) *cal.Holiday {
	return &cal.Holiday{
		Name:  name,
		Type:  cal.ObservancePublic,
		Month: month,
		Day:   day,
		Func:  cal.CalcDayOfMonth,
	}
}

// Next scans forward from the start day inclusive and returns the first n market days
// in chronological order.
func (c *MarketCalendar) Next(from time.Time, n int) ([]MarketDay, error) {
	out := make([]MarketDay, 0, n)
	for i := 0; i < c.searchDays && len(out) < n; i++ {
		d := from.AddDate(0, 0, i)
		label, ok := c.days[d.Weekday()]
		if !ok || c.isHoliday(d) {
			continue
		}
		out = append(out, MarketDay{Date: d, Label: label})
	}
	if len(out) < n {
		return nil, errs.Shapef("found %d market days within %d days, need %d", len(out), c.searchDays, n)
	}
	return out, nil
}

func (c *MarketCalendar) isHoliday(d time.Time) bool {
	if c.holidays == nil {
		return false
	}
	actual, observed, _ := c.holidays.IsHoliday(d)
	return actual || observed
}

// String describes the calendar for logs.
func (c *MarketCalendar) String() string {
	return fmt.Sprintf("market days=%v search_days=%d holidays=%t", c.days, c.searchDays, c.holidays != nil)
}
