package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mauv0809/finance-dashboard/internal/ingest"
	"github.com/mauv0809/finance-dashboard/internal/models"
)

func mustTable(t *testing.T, csv string) *ingest.Table {
	t.Helper()
	table, err := ingest.ParseCSV([]byte(csv), ',')
	require.NoError(t, err)
	return table
}

func mustNormalize(t *testing.T, csv string) *models.Dataset {
	t.Helper()
	ds, _, err := Normalize(mustTable(t, csv))
	require.NoError(t, err)
	return ds
}

func embeddedDataset(t *testing.T) *models.Dataset {
	t.Helper()
	return mustNormalize(t, string(ingest.DefaultCSV()))
}

func date(s string) time.Time {
	d, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *time.Time {
	d := date(s)
	return &d
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newTestPipeline() *Pipeline {
	return NewPipeline(ingest.NewLoader(zap.NewNop().Sugar()), zap.NewNop().Sugar(), nil)
}

func findPeriod(t *testing.T, ds *models.Dataset, day string) models.Period {
	t.Helper()
	for _, p := range ds.Periods {
		if p.Date.Equal(date(day)) {
			return p
		}
	}
	t.Fatalf("period %s not found", day)
	return models.Period{}
}
