package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format for period dates.
const DateLayout = "2006-01-02"

// Column identifies a metric column of the source table.
type Column string

const (
	ColumnRevenue         Column = "revenue_total"
	ColumnOperatingCosts  Column = "operating_costs"
	ColumnNewCustomers    Column = "new_customers"
	ColumnCreditPortfolio Column = "active_credit_portfolio"
	ColumnDelinquent      Column = "delinquent_amount"

	// Derived columns
	ColumnGrossProfit     Column = "gross_operating_profit"
	ColumnGrossMarginPct  Column = "gross_operating_margin_pct"
	ColumnDelinquencyRate Column = "delinquency_rate_pct"
)

// ColumnSet records which columns a dataset carries.
type ColumnSet map[Column]bool

// Has reports whether every given column is present.
func (s ColumnSet) Has(cols ...Column) bool {
	for _, c := range cols {
		if !s[c] {
			return false
		}
	}
	return true
}

// Period is one monthly snapshot of business metrics.
// Metric fields are nil when the source did not provide them.
type Period struct {
	Date            time.Time        `json:"period_date"`
	Revenue         *decimal.Decimal `json:"revenue_total,omitempty"`
	OperatingCosts  *decimal.Decimal `json:"operating_costs,omitempty"`
	NewCustomers    *int64           `json:"new_customers,omitempty"`
	CreditPortfolio *decimal.Decimal `json:"active_credit_portfolio,omitempty"`
	Delinquent      *decimal.Decimal `json:"delinquent_amount,omitempty"`

	GrossProfit        *decimal.Decimal `json:"gross_operating_profit,omitempty"`
	GrossMarginPct     *decimal.Decimal `json:"gross_operating_margin_pct,omitempty"`
	DelinquencyRatePct *decimal.Decimal `json:"delinquency_rate_pct,omitempty"`
}

// Dataset is a chronologically ordered set of periods with unique dates.
type Dataset struct {
	Periods []Period  `json:"periods"`
	Columns ColumnSet `json:"columns"`
}

// Len returns the number of periods.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Periods)
}

// Bounds returns the first and last period dates. ok is false for an empty dataset.
func (d *Dataset) Bounds() (DateRange, bool) {
	if d.Len() == 0 {
		return DateRange{}, false
	}
	return DateRange{Start: d.Periods[0].Date, End: d.Periods[len(d.Periods)-1].Date}, true
}

// Last returns the most recent period, or nil.
func (d *Dataset) Last() *Period {
	if d.Len() == 0 {
		return nil
	}
	return &d.Periods[len(d.Periods)-1]
}

// Clone returns a copy whose period slice and column set can be modified independently.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Periods: make([]Period, len(d.Periods)),
		Columns: make(ColumnSet, len(d.Columns)),
	}
	copy(out.Periods, d.Periods)
	for k, v := range d.Columns {
		out.Columns[k] = v
	}
	return out
}

// DateRange is an inclusive interval of calendar dates.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls within the range, comparing dates only.
func (r DateRange) Contains(t time.Time) bool {
	d := TruncateDate(t)
	return !d.Before(TruncateDate(r.Start)) && !d.After(TruncateDate(r.End))
}

// TruncateDate drops the time-of-day component, normalizing to UTC midnight.
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
