package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/simaogato/budgetflow/internal/domain"
)

const monthKeyLayout = "2006-01"

// Summarize computes the report summary of the transactions falling inside p.
// Logic:
//  1. Keep rows with p.Start <= date < p.End, ordered newest first
//  2. Sum income and expense by type, goal and general savings by category
//  3. Sum income per item, ordered by descending total (ties by item name)
//  4. For yearly periods, sum income and expense per calendar month
//
// No rounding is applied. An empty or inverted period yields zero totals.
func Summarize(transactions []*domain.Transaction, p domain.ReportPeriod) domain.Summary {
	summary := domain.Summary{
		Transactions:          make([]*domain.Transaction, 0),
		IncomeBreakdownByItem: make([]domain.ItemTotal, 0),
	}

	incomeByItem := make(map[string]decimal.Decimal)
	months := make(map[string]*domain.MonthlySummary)

	for _, tx := range transactions {
		if !p.Contains(tx.Date) {
			continue
		}
		summary.Transactions = append(summary.Transactions, tx)

		switch tx.Type {
		case domain.TransactionTypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
			incomeByItem[tx.Item] = incomeByItem[tx.Item].Add(tx.Amount)
		case domain.TransactionTypeExpense:
			summary.TotalExpense = summary.TotalExpense.Add(tx.Amount)
		}

		switch tx.Category {
		case domain.CategoryGoalSavings:
			summary.TotalGoalSavings = summary.TotalGoalSavings.Add(tx.Amount)
		case domain.CategoryGeneralSavings:
			summary.TotalGeneralSavings = summary.TotalGeneralSavings.Add(tx.Amount)
		}

		if p.Kind == domain.PeriodYearly {
			key := tx.Date.Format(monthKeyLayout)
			month, ok := months[key]
			if !ok {
				month = &domain.MonthlySummary{Month: key}
				months[key] = month
			}
			if tx.Type == domain.TransactionTypeIncome {
				month.TotalIncome = month.TotalIncome.Add(tx.Amount)
			} else {
				month.TotalExpense = month.TotalExpense.Add(tx.Amount)
			}
		}
	}

	summary.TotalSavings = summary.TotalGoalSavings.Add(summary.TotalGeneralSavings)
	summary.Balance = summary.TotalIncome.Sub(summary.TotalExpense)

	sort.SliceStable(summary.Transactions, func(i, j int) bool {
		return summary.Transactions[i].NewerThan(summary.Transactions[j])
	})

	summary.IncomeBreakdownByItem = breakdown(incomeByItem)

	if p.Kind == domain.PeriodYearly {
		summary.MonthlySummaries = monthlySummaries(months)
	}

	return summary
}

// breakdown orders item totals by descending total, then item name
func breakdown(totals map[string]decimal.Decimal) []domain.ItemTotal {
	items := make([]domain.ItemTotal, 0, len(totals))
	for item, total := range totals {
		items = append(items, domain.ItemTotal{Item: item, Total: total})
	}

	sort.Slice(items, func(i, j int) bool {
		if c := items[i].Total.Cmp(items[j].Total); c != 0 {
			return c > 0
		}
		return items[i].Item < items[j].Item
	})

	return items
}

// monthlySummaries orders months ascending and fills in each balance
func monthlySummaries(months map[string]*domain.MonthlySummary) []domain.MonthlySummary {
	result := make([]domain.MonthlySummary, 0, len(months))
	for _, month := range months {
		month.Balance = month.TotalIncome.Sub(month.TotalExpense)
		result = append(result, *month)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Month < result[j].Month
	})

	return result
}
