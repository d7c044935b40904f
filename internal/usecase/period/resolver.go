// Package period maps report requests onto half-open calendar intervals.
package period

import (
	"time"

	"github.com/simaogato/budgetflow/internal/domain"
)

// Resolve maps a named period, or an explicit inclusive date range, to a
// half-open interval [Start, End) relative to now.
// Logic:
//   - If both start and end are given, the period is custom and End = end + 1 day.
//     An inverted range (start > end) is returned as given.
//   - "daily":  today .. tomorrow
//   - "weekly": the Monday at or before today .. +7 days
//   - "yearly": Jan 1 of this year .. Jan 1 of next year
//   - anything else is monthly: first of this month .. first of next month
//
// Resolve never fails; malformed dates are rejected by the caller before this point.
func Resolve(now time.Time, name string, start, end *time.Time) domain.ReportPeriod {
	if start != nil && end != nil {
		return domain.ReportPeriod{
			Kind:  domain.PeriodCustom,
			Start: domain.DateOf(*start),
			End:   domain.DateOf(*end).AddDate(0, 0, 1),
		}
	}

	today := domain.DateOf(now)

	switch domain.PeriodKind(name) {
	case domain.PeriodDaily:
		return domain.ReportPeriod{
			Kind:  domain.PeriodDaily,
			Start: today,
			End:   today.AddDate(0, 0, 1),
		}
	case domain.PeriodWeekly:
		// time.Weekday counts from Sunday; shift so Monday is day 0
		sinceMonday := (int(today.Weekday()) + 6) % 7
		monday := today.AddDate(0, 0, -sinceMonday)
		return domain.ReportPeriod{
			Kind:  domain.PeriodWeekly,
			Start: monday,
			End:   monday.AddDate(0, 0, 7),
		}
	case domain.PeriodYearly:
		return domain.ReportPeriod{
			Kind:  domain.PeriodYearly,
			Start: time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(today.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC),
		}
	default:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return domain.ReportPeriod{
			Kind:  domain.PeriodMonthly,
			Start: first,
			End:   firstOfNextMonth(first),
		}
	}
}

// firstOfNextMonth jumps from day 28 (present in every month) four days
// forward, which always lands in the next month, then truncates to day 1
func firstOfNextMonth(first time.Time) time.Time {
	next := time.Date(first.Year(), first.Month(), 28, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 4)
	return time.Date(next.Year(), next.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// DisplayEnd converts the exclusive End into the inclusive last calendar date
func DisplayEnd(p domain.ReportPeriod) time.Time {
	return p.End.AddDate(0, 0, -1)
}
