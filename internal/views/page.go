package views

import (
	"github.com/shopspring/decimal"

	"github.com/mauv0809/finance-dashboard/internal/charts"
	"github.com/mauv0809/finance-dashboard/internal/config"
	"github.com/mauv0809/finance-dashboard/internal/dashboard"
	"github.com/mauv0809/finance-dashboard/internal/models"
)

const displayDate = "02/01/2006"

// Page is everything the dashboard page renders.
type Page struct {
	Branding config.Branding
	Result   *dashboard.Result
	// Start and End echo the range form fields.
	Start string
	End   string
	// Query is the encoded range, appended to chart links.
	Query string
	// Upload names the file held for this session, if any.
	Upload string
	Error  *PageError
}

// PageError is a fatal problem with the current run.
type PageError struct {
	Message string
	Detail  string
}

func (p Page) hasBounds() bool {
	return p.Result != nil && !p.Result.Selection.Bounds.Start.IsZero()
}

func (p Page) boundStart() string {
	return p.Result.Selection.Bounds.Start.Format(models.DateLayout)
}

func (p Page) boundEnd() string {
	return p.Result.Selection.Bounds.End.Format(models.DateLayout)
}

// endMin keeps the end picker from going before the chosen start.
func (p Page) endMin() string {
	if p.Start != "" {
		return p.Start
	}
	return p.boundStart()
}

func periodHeading(r models.DateRange) string {
	return "Analysis period: " + r.Start.Format(displayDate) + " to " + r.End.Format(displayDate)
}

func availableCharts(ds *models.Dataset) []charts.Kind {
	var out []charts.Kind
	for _, k := range charts.Kinds {
		if charts.Available(k, ds) {
			out = append(out, k)
		}
	}
	return out
}

func chartURL(k charts.Kind, query string) string {
	u := "/charts/" + string(k) + ".svg"
	if query != "" {
		u += "?" + query
	}
	return u
}

type tableColumn struct {
	key    models.Column
	header string
	cell   func(models.Period) string
}

var tableColumns = []tableColumn{
	{models.ColumnRevenue, "Total Revenue", func(p models.Period) string { return numberCell(p.Revenue) }},
	{models.ColumnOperatingCosts, "Operating Costs", func(p models.Period) string { return numberCell(p.OperatingCosts) }},
	{models.ColumnNewCustomers, "New Customers", func(p models.Period) string {
		if p.NewCustomers == nil {
			return "-"
		}
		return dashboard.FormatNumber(decimal.NewFromInt(*p.NewCustomers))
	}},
	{models.ColumnCreditPortfolio, "Credit Portfolio", func(p models.Period) string { return numberCell(p.CreditPortfolio) }},
	{models.ColumnDelinquent, "Delinquent Amount", func(p models.Period) string { return numberCell(p.Delinquent) }},
	{models.ColumnGrossProfit, "Operating Profit", func(p models.Period) string { return numberCell(p.GrossProfit) }},
	{models.ColumnGrossMarginPct, "Operating Margin %", func(p models.Period) string { return numberCell(p.GrossMarginPct) }},
	{models.ColumnDelinquencyRate, "Delinquency Rate %", func(p models.Period) string { return numberCell(p.DelinquencyRatePct) }},
}

func numberCell(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return dashboard.FormatNumber(*d)
}

// presentColumns returns the table columns ds carries, in display order.
func presentColumns(ds *models.Dataset) []tableColumn {
	cols := make([]tableColumn, 0, len(tableColumns))
	for _, c := range tableColumns {
		if ds.Columns[c.key] {
			cols = append(cols, c)
		}
	}
	return cols
}
