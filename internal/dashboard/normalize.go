package dashboard

import (
	"sort"

	"github.com/mauv0809/finance-dashboard/internal/ingest"
	"github.com/mauv0809/finance-dashboard/internal/models"
)

// dateAliases are the accepted headers for the period date, in lookup order.
var dateAliases = []string{DateColumn, "period_date"}

// metricAliases maps each metric to its accepted headers.
var metricAliases = map[models.Column][]string{
	models.ColumnRevenue:         {"Receita_Total", "revenue_total"},
	models.ColumnOperatingCosts:  {"Custos_Operacionais", "operating_costs"},
	models.ColumnNewCustomers:    {"Novos_Clientes", "new_customers"},
	models.ColumnCreditPortfolio: {"Carteira_Credito_Ativa", "active_credit_portfolio"},
	models.ColumnDelinquent:      {"Valor_Inadimplente", "delinquent_amount"},
}

// NormalizeStats counts rows removed during normalization.
type NormalizeStats struct {
	InvalidDates int
	Duplicates   int
}

// Normalize turns the raw table into a Dataset: rows with unparseable dates are
// dropped, the rest sorted ascending. When a date repeats, the row appearing
// last in the file wins.
func Normalize(t *ingest.Table) (*models.Dataset, NormalizeStats, error) {
	var stats NormalizeStats

	dateCol, ok := t.Lookup(dateAliases...)
	if !ok {
		return nil, stats, ErrMissingDateColumn
	}

	cols := make(map[models.Column]string, len(metricAliases))
	ds := &models.Dataset{Columns: make(models.ColumnSet, len(metricAliases))}
	for metric, aliases := range metricAliases {
		if name, ok := t.Lookup(aliases...); ok {
			cols[metric] = name
			ds.Columns[metric] = true
		}
	}

	periods := make([]models.Period, 0, t.Len())
	for row := 0; row < t.Len(); row++ {
		date := t.Date(row, dateCol)
		if date == nil {
			stats.InvalidDates++
			continue
		}

		p := models.Period{Date: *date}
		if name, ok := cols[models.ColumnRevenue]; ok {
			p.Revenue = t.Decimal(row, name)
		}
		if name, ok := cols[models.ColumnOperatingCosts]; ok {
			p.OperatingCosts = t.Decimal(row, name)
		}
		if name, ok := cols[models.ColumnNewCustomers]; ok {
			p.NewCustomers = t.Int64(row, name)
		}
		if name, ok := cols[models.ColumnCreditPortfolio]; ok {
			p.CreditPortfolio = t.Decimal(row, name)
		}
		if name, ok := cols[models.ColumnDelinquent]; ok {
			p.Delinquent = t.Decimal(row, name)
		}
		periods = append(periods, p)
	}

	if len(periods) == 0 {
		return nil, stats, ErrNoValidDates
	}

	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].Date.Before(periods[j].Date)
	})

	unique := periods[:1]
	for _, p := range periods[1:] {
		last := &unique[len(unique)-1]
		if p.Date.Equal(last.Date) {
			*last = p
			stats.Duplicates++
			continue
		}
		unique = append(unique, p)
	}
	ds.Periods = unique

	return ds, stats, nil
}
