package dashboard

import (
	"github.com/shopspring/decimal"

	"github.com/mauv0809/finance-dashboard/internal/models"
)

// PercentPlaces is the rounding applied to derived percentages.
const PercentPlaces = 2

var hundred = decimal.NewFromInt(100)

// Derive computes the ratio columns in place and returns ds. A derived column is
// only produced when the dataset carries both of its inputs. Every value is
// recomputed from the raw fields, so calling Derive again changes nothing.
func Derive(ds *models.Dataset) *models.Dataset {
	if ds.Columns == nil {
		ds.Columns = make(models.ColumnSet)
	}

	if ds.Columns.Has(models.ColumnRevenue, models.ColumnOperatingCosts) {
		for i := range ds.Periods {
			p := &ds.Periods[i]
			p.GrossProfit, p.GrossMarginPct = nil, nil
			if p.Revenue == nil || p.OperatingCosts == nil {
				continue
			}
			profit := p.Revenue.Sub(*p.OperatingCosts)
			margin := Percent(profit, *p.Revenue)
			p.GrossProfit = &profit
			p.GrossMarginPct = &margin
		}
		ds.Columns[models.ColumnGrossProfit] = true
		ds.Columns[models.ColumnGrossMarginPct] = true
	}

	if ds.Columns.Has(models.ColumnDelinquent, models.ColumnCreditPortfolio) {
		for i := range ds.Periods {
			p := &ds.Periods[i]
			p.DelinquencyRatePct = nil
			if p.Delinquent == nil || p.CreditPortfolio == nil {
				continue
			}
			rate := Percent(*p.Delinquent, *p.CreditPortfolio)
			p.DelinquencyRatePct = &rate
		}
		ds.Columns[models.ColumnDelinquencyRate] = true
	}

	return ds
}

// Percent returns part/whole*100 rounded half away from zero to two places.
// A non-positive whole yields exactly zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole).Round(PercentPlaces)
}
