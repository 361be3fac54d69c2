package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tradejournal/src/model"
	"tradejournal/src/utils"
)

var ErrUnknownTimeRange = errors.New("unknown time range")

// TimeRange selects a calendar window relative to "now".
type TimeRange string

const (
	RangeToday     TimeRange = "today"
	RangeYesterday TimeRange = "yesterday"
	RangeThisWeek  TimeRange = "this-week"
	RangeLastWeek  TimeRange = "last-week"
	RangeThisMonth TimeRange = "this-month"
	RangeLastMonth TimeRange = "last-month"
	Range3Months   TimeRange = "3-months"
	RangeThisYear  TimeRange = "this-year"
	RangeLastYear  TimeRange = "last-year"
	RangeAll       TimeRange = "all"
)

var timeRanges = []TimeRange{
	RangeToday, RangeYesterday,
	RangeThisWeek, RangeLastWeek,
	RangeThisMonth, RangeLastMonth, Range3Months,
	RangeThisYear, RangeLastYear,
	RangeAll,
}

// ParseTimeRange accepts one of the known tokens, case-insensitively.
// An empty token means RangeAll.
func ParseTimeRange(token string) (TimeRange, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return RangeAll, nil
	}
	for _, r := range timeRanges {
		if TimeRange(token) == r {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTimeRange, token)
}

// Window returns the half-open interval [start, end) covered by the range,
// computed in now's location. Weeks start on Sunday. bounded is false for RangeAll.
func (r TimeRange) Window(now time.Time) (start, end time.Time, bounded bool) {
	day := utils.StartOfDay(now)
	week := utils.StartOfWeek(now)
	month := utils.StartOfMonth(now)
	year := utils.StartOfYear(now)

	switch r {
	case RangeToday:
		return day, day.AddDate(0, 0, 1), true
	case RangeYesterday:
		return day.AddDate(0, 0, -1), day, true
	case RangeThisWeek:
		return week, week.AddDate(0, 0, 7), true
	case RangeLastWeek:
		return week.AddDate(0, 0, -7), week, true
	case RangeThisMonth:
		return month, month.AddDate(0, 1, 0), true
	case RangeLastMonth:
		return month.AddDate(0, -1, 0), month, true
	case Range3Months:
		// rolling window that includes now itself
		return now.AddDate(0, -3, 0), now.Add(time.Nanosecond), true
	case RangeThisYear:
		return year, year.AddDate(1, 0, 0), true
	case RangeLastYear:
		return year.AddDate(-1, 0, 0), year, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// Contains reports whether t falls in the range evaluated at now.
func (r TimeRange) Contains(t, now time.Time) bool {
	start, end, bounded := r.Window(now)
	if !bounded {
		return true
	}
	return !t.Before(start) && t.Before(end)
}

// FilterByRange keeps the trades whose Date is inside the range, preserving order.
func FilterByRange(trades []model.Trade, r TimeRange, now time.Time) []model.Trade {
	if _, _, bounded := r.Window(now); !bounded {
		return trades
	}

	out := make([]model.Trade, 0, len(trades))
	for _, t := range trades {
		if r.Contains(t.Date, now) {
			out = append(out, t)
		}
	}
	return out
}
