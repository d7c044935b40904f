// Package report composes period resolution and aggregation into reports.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/simaogato/budgetflow/internal/domain"
	"github.com/simaogato/budgetflow/internal/usecase/period"
)

// Request describes a report: a named period, or an inclusive custom date
// range in YYYY-MM-DD form. The range is used only when both dates are set.
type Request struct {
	Period    string
	StartDate string
	EndDate   string
}

// Aggregator summarizes the ledger over a period
type Aggregator interface {
	Aggregate(ctx context.Context, p domain.ReportPeriod) (*domain.Summary, error)
}

// Assembler builds reports
type Assembler struct {
	Aggregator Aggregator
	Now        func() time.Time
}

// NewAssembler creates a new Assembler instance using the wall clock
func NewAssembler(aggregator Aggregator) *Assembler {
	return &Assembler{
		Aggregator: aggregator,
		Now:        time.Now,
	}
}

// BuildReport resolves the requested period, aggregates it and packages the
// result with inclusive display dates.
// Logic:
//  1. Parse the custom range; a malformed date fails with ErrInvalidInterval
//     before any aggregation is attempted
//  2. Resolve the period relative to Now
//  3. Aggregate and attach StartDate and EndDate (exclusive end minus one day)
func (a *Assembler) BuildReport(ctx context.Context, req Request) (*domain.Report, error) {
	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	p := period.Resolve(a.Now(), strings.ToLower(strings.TrimSpace(req.Period)), start, end)

	summary, err := a.Aggregator.Aggregate(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate %s report: %w", p.Kind, err)
	}

	return &domain.Report{
		Period:    p.Kind,
		StartDate: domain.FormatDate(p.Start),
		EndDate:   domain.FormatDate(period.DisplayEnd(p)),
		Summary:   *summary,
	}, nil
}

// parseRange returns both dates only when both are supplied
func parseRange(startStr, endStr string) (*time.Time, *time.Time, error) {
	startStr = strings.TrimSpace(startStr)
	endStr = strings.TrimSpace(endStr)
	if startStr == "" || endStr == "" {
		return nil, nil, nil
	}

	start, err := domain.ParseDate(startStr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: malformed start date %q", domain.ErrInvalidInterval, startStr)
	}

	end, err := domain.ParseDate(endStr)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: malformed end date %q", domain.ErrInvalidInterval, endStr)
	}

	return &start, &end, nil
}
