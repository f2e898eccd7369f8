package charts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauv0809/finance-dashboard/internal/dashboard"
	"github.com/mauv0809/finance-dashboard/internal/ingest"
	"github.com/mauv0809/finance-dashboard/internal/models"
)

func derived(t *testing.T, csv string) *models.Dataset {
	t.Helper()
	table, err := ingest.ParseCSV([]byte(csv), ',')
	require.NoError(t, err)
	ds, _, err := dashboard.Normalize(table)
	require.NoError(t, err)
	return dashboard.Derive(ds)
}

func TestRenderSVG_AllKinds(t *testing.T) {
	ds := derived(t, string(ingest.DefaultCSV()))

	for _, k := range Kinds {
		t.Run(string(k), func(t *testing.T) {
			require.True(t, Available(k, ds))

			var buf bytes.Buffer
			require.NoError(t, RenderSVG(&buf, k, ds))
			assert.Contains(t, buf.String(), "<svg")
		})
	}
}

func TestRenderSVG_SinglePeriod(t *testing.T) {
	ds := derived(t, "Data,Receita_Total,Custos_Operacionais,Novos_Clientes\n2024-01-31,100,100,0\n")

	for _, k := range []Kind{Revenue, Margin, Customers} {
		t.Run(string(k), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderSVG(&buf, k, ds))
			assert.Contains(t, buf.String(), "<svg")
		})
	}
}

func TestRenderSVG_MissingColumns(t *testing.T) {
	ds := derived(t, "Data,Receita_Total\n2024-01-31,100\n2024-02-29,120\n")

	assert.True(t, Available(Revenue, ds))
	assert.False(t, Available(Margin, ds))
	assert.False(t, Available(Customers, ds))
	assert.False(t, Available(Portfolio, ds))
	assert.False(t, Available(Delinquency, ds))

	var buf bytes.Buffer
	assert.ErrorIs(t, RenderSVG(&buf, Portfolio, ds), ErrNoData)
	assert.ErrorIs(t, RenderSVG(&buf, Customers, ds), ErrNoData)
}

func TestAvailable_EmptyDataset(t *testing.T) {
	ds := &models.Dataset{Columns: models.ColumnSet{models.ColumnRevenue: true}}
	assert.False(t, Available(Revenue, ds))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("delinquency")
	require.NoError(t, err)
	assert.Equal(t, Delinquency, k)
	assert.Equal(t, "Delinquency Rate (%)", k.Title())

	_, err = ParseKind("pie")
	assert.ErrorIs(t, err, ErrUnknownChart)
}

func TestNumberFormatter(t *testing.T) {
	assert.Equal(t, "62,000", numberFormatter(62000.4))
	assert.Equal(t, "2.70", numberFormatter(2.7))
	assert.Equal(t, "x", numberFormatter("x"))
}
