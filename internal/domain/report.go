package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodKind names the span a report covers
type PeriodKind string

const (
	PeriodDaily   PeriodKind = "daily"
	PeriodWeekly  PeriodKind = "weekly"
	PeriodMonthly PeriodKind = "monthly"
	PeriodYearly  PeriodKind = "yearly"
	PeriodCustom  PeriodKind = "custom"
)

// ReportPeriod is a half-open interval [Start, End) of calendar dates
type ReportPeriod struct {
	Kind  PeriodKind
	Start time.Time
	End   time.Time // Exclusive
}

// Contains reports whether date falls inside [Start, End)
func (p ReportPeriod) Contains(date time.Time) bool {
	return !date.Before(p.Start) && date.Before(p.End)
}

// ItemTotal is the summed income for one item label
type ItemTotal struct {
	Item  string
	Total decimal.Decimal
}

// MonthlySummary rolls up one calendar month (Month is YYYY-MM)
type MonthlySummary struct {
	Month        string
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
}

// Summary is the aggregation of a set of transactions over a period
type Summary struct {
	TotalIncome         decimal.Decimal
	TotalExpense        decimal.Decimal
	TotalGoalSavings    decimal.Decimal
	TotalGeneralSavings decimal.Decimal
	TotalSavings        decimal.Decimal // GoalSavings + GeneralSavings
	Balance             decimal.Decimal // Income - Expense

	Transactions          []*Transaction   // Newest first
	IncomeBreakdownByItem []ItemTotal      // Descending total
	MonthlySummaries      []MonthlySummary // Yearly periods only, ascending month
}

// Report is a Summary packaged with its period, dates rendered inclusively
type Report struct {
	Period    PeriodKind
	StartDate string // Inclusive, YYYY-MM-DD
	EndDate   string // Inclusive, YYYY-MM-DD
	Summary
}
