package dashboard

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mauv0809/finance-dashboard/internal/ingest"
	"github.com/mauv0809/finance-dashboard/internal/models"
)

type recordingObserver struct {
	mu        sync.Mutex
	runs      []ingest.Source
	fallbacks int
	empties   int
	failures  []string
}

func (o *recordingObserver) ObserveRun(source ingest.Source, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs = append(o.runs, source)
}

func (o *recordingObserver) ObserveFallback() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.fallbacks++
}

func (o *recordingObserver) ObserveEmpty() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.empties++
}

func (o *recordingObserver) ObserveFailure(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = append(o.failures, kind)
}

func TestPipeline_EmbeddedFullRange(t *testing.T) {
	obs := &recordingObserver{}
	p := NewPipeline(ingest.NewLoader(zap.NewNop().Sugar()), zap.NewNop().Sugar(), obs)

	res, err := p.Run(Input{})
	require.NoError(t, err)

	assert.Equal(t, ingest.SourceEmbedded, res.Source)
	assert.Equal(t, ingest.SourceEmbedded.Label(), res.SourceLabel)
	assert.Empty(t, res.Warnings)
	assert.False(t, res.Empty)
	assert.Equal(t, 24, res.Dataset.Len())
	assert.Len(t, res.KPIs, 6)

	last := res.Dataset.Last()
	assert.Equal(t, "34500", last.GrossProfit.String())
	assert.Equal(t, "55.65", last.GrossMarginPct.StringFixed(2))
	assert.Equal(t, "2.70", last.DelinquencyRatePct.StringFixed(2))

	assert.Equal(t, []ingest.Source{ingest.SourceEmbedded}, obs.runs)
	assert.Zero(t, obs.fallbacks)
}

func TestPipeline_SingleMonthRange(t *testing.T) {
	res, err := newTestPipeline().Run(Input{Start: datePtr("2022-06-01"), End: datePtr("2022-06-30")})
	require.NoError(t, err)

	require.Equal(t, 1, res.Dataset.Len())
	assert.Equal(t, date("2022-06-30"), res.Dataset.Periods[0].Date)
	assert.Equal(t, "R$ 36,000.00", res.KPIs[0].Value)
}

func TestPipeline_EmptySelection(t *testing.T) {
	obs := &recordingObserver{}
	p := NewPipeline(ingest.NewLoader(zap.NewNop().Sugar()), zap.NewNop().Sugar(), obs)

	res, err := p.Run(Input{Start: datePtr("2030-01-01"), End: datePtr("2030-12-31")})
	require.NoError(t, err)

	assert.True(t, res.Empty)
	assert.Equal(t, 0, res.Dataset.Len())
	assert.Contains(t, res.Notices, NoticeNoData)
	assert.Nil(t, res.KPIs)
	assert.Equal(t, 1, obs.empties)
}

func TestPipeline_UploadWithInvalidDates(t *testing.T) {
	csv := "Data;Receita_Total;Custos_Operacionais\n" +
		"2024-03-31;300;100\n" +
		"garbage;1;1\n" +
		"2024-01-31;100;40\n" +
		";2;2\n" +
		"2024-02-29;200;50\n"

	res, err := newTestPipeline().Run(Input{Upload: &ingest.Upload{Name: "mixed.csv", Data: []byte(csv)}})
	require.NoError(t, err)

	assert.Equal(t, ingest.SourceUpload, res.Source)
	require.Equal(t, 3, res.Dataset.Len())
	assert.Equal(t, date("2024-01-31"), res.Dataset.Periods[0].Date)
	assert.Equal(t, date("2024-02-29"), res.Dataset.Periods[1].Date)
	assert.Equal(t, date("2024-03-31"), res.Dataset.Periods[2].Date)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "2 row(s)")
	assert.False(t, res.Dataset.Columns[models.ColumnDelinquencyRate])
}

func TestPipeline_UploadWithByteOrderMark(t *testing.T) {
	csv := "\xef\xbb\xbfData,Receita_Total,Custos_Operacionais\n2024-01-31,100,40\n"

	res, err := newTestPipeline().Run(Input{Upload: &ingest.Upload{Name: "excel.csv", Data: []byte(csv)}})
	require.NoError(t, err)

	assert.Equal(t, ingest.SourceUpload, res.Source)
	require.Equal(t, 1, res.Dataset.Len())
	assert.Equal(t, date("2024-01-31"), res.Dataset.Periods[0].Date)
	require.NotNil(t, res.Dataset.Periods[0].GrossMarginPct)
	assert.Equal(t, "60", res.Dataset.Periods[0].GrossMarginPct.String())
}

func TestPipeline_MalformedUploadFallsBack(t *testing.T) {
	obs := &recordingObserver{}
	p := NewPipeline(ingest.NewLoader(zap.NewNop().Sugar()), zap.NewNop().Sugar(), obs)

	res, err := p.Run(Input{Upload: &ingest.Upload{Name: "tabs.csv", Data: []byte("Data\tReceita_Total\n2024-01-31\t1\n")}})
	require.NoError(t, err)

	assert.Equal(t, ingest.SourceEmbedded, res.Source)
	assert.Equal(t, 24, res.Dataset.Len())
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "tabs.csv")
	assert.Equal(t, 1, obs.fallbacks)
}

func TestPipeline_SinglePeriodNotice(t *testing.T) {
	up := &ingest.Upload{Name: "one.csv", Data: []byte("Data,Receita_Total\n2024-05-31,10\n")}

	res, err := newTestPipeline().Run(Input{Upload: up, Start: datePtr("2020-01-01")})
	require.NoError(t, err)

	assert.True(t, res.Selection.SinglePeriod)
	assert.Contains(t, res.Notices, "Only one period of data available: 31/05/2024")
	assert.Equal(t, 1, res.Dataset.Len())
}

func TestPipeline_FatalDataErrors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want error
		kind string
	}{
		{"missing date column", "Mes,Receita_Total\n2024-01-31,1\n", ErrMissingDateColumn, FailureMissingDateColumn},
		{"no valid dates", "Data,Receita_Total\nx,1\ny,2\n", ErrNoValidDates, FailureNoValidDates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs := &recordingObserver{}
			p := NewPipeline(ingest.NewLoader(zap.NewNop().Sugar()), zap.NewNop().Sugar(), obs)

			res, err := p.Run(Input{Upload: &ingest.Upload{Name: "x.csv", Data: []byte(tt.csv)}})

			assert.Nil(t, res)
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, []string{tt.kind}, obs.failures)
			assert.Empty(t, obs.runs)
		})
	}
}

func TestPipeline_RecoversUnexpectedErrors(t *testing.T) {
	obs := &recordingObserver{}
	p := NewPipeline(ingest.NewLoader(zap.NewNop().Sugar()), zap.NewNop().Sugar(), obs)
	p.derive = func(*models.Dataset) *models.Dataset {
		panic("boom")
	}

	res, err := p.Run(Input{})
	assert.Nil(t, res)

	var uerr *UnexpectedProcessingError
	require.True(t, errors.As(err, &uerr))
	assert.Equal(t, "derive", uerr.Stage)
	assert.Contains(t, uerr.Error(), "boom")
	assert.NotEmpty(t, uerr.Stack)
	assert.Equal(t, []string{FailureUnexpected}, obs.failures)

	res, err = p.Run(Input{Start: datePtr("2030-01-01")})
	require.NoError(t, err, "a failed run does not affect later runs")
	assert.True(t, res.Empty)
}

func TestPipeline_NoDataSource(t *testing.T) {
	loader := ingest.NewLoader(zap.NewNop().Sugar()).WithEmbedded([]byte("a,b\n1,2,3\n"))
	p := NewPipeline(loader, zap.NewNop().Sugar(), nil)

	_, err := p.Run(Input{})
	assert.ErrorIs(t, err, ingest.ErrNoDataSource)
}
