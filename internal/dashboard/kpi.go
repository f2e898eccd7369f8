package dashboard

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mauv0809/finance-dashboard/internal/models"
)

// KPI is one headline figure for the most recent selected period.
type KPI struct {
	Key   models.Column `json:"key"`
	Label string        `json:"label"`
	Value string        `json:"value"`
}

// Summarize builds the KPI cards from the last period of ds. Metrics missing on
// that period are left out rather than shown as zero.
func Summarize(ds *models.Dataset) []KPI {
	p := ds.Last()
	if p == nil {
		return nil
	}

	var kpis []KPI
	if p.Revenue != nil {
		kpis = append(kpis, KPI{models.ColumnRevenue, "Total Revenue", FormatMoney(*p.Revenue)})
	}
	if p.NewCustomers != nil {
		kpis = append(kpis, KPI{models.ColumnNewCustomers, "New Customers", FormatCount(*p.NewCustomers)})
	}
	if p.GrossProfit != nil {
		kpis = append(kpis, KPI{models.ColumnGrossProfit, "Operating Profit", FormatMoney(*p.GrossProfit)})
	}
	if p.CreditPortfolio != nil {
		kpis = append(kpis, KPI{models.ColumnCreditPortfolio, "Credit Portfolio", FormatMoney(*p.CreditPortfolio)})
	}
	if p.GrossMarginPct != nil {
		kpis = append(kpis, KPI{models.ColumnGrossMarginPct, "Operating Margin", FormatPercent(*p.GrossMarginPct)})
	}
	if p.DelinquencyRatePct != nil {
		kpis = append(kpis, KPI{models.ColumnDelinquencyRate, "Delinquency Rate", FormatPercent(*p.DelinquencyRatePct)})
	}
	return kpis
}

// FormatMoney renders d as "R$ 1,234.56".
func FormatMoney(d decimal.Decimal) string {
	return "R$ " + groupThousands(d.StringFixed(2))
}

// FormatPercent renders d as "12.34%".
func FormatPercent(d decimal.Decimal) string {
	return d.StringFixed(PercentPlaces) + "%"
}

// FormatCount renders n with thousands separators.
func FormatCount(n int64) string {
	return groupThousands(strconv.FormatInt(n, 10))
}

// FormatNumber renders d with two decimals and thousands separators, the way
// the data table shows every numeric cell.
func FormatNumber(d decimal.Decimal) string {
	return groupThousands(d.StringFixed(2))
}

func groupThousands(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}
