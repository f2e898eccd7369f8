package dashboard

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/mauv0809/finance-dashboard/internal/ingest"
	"github.com/mauv0809/finance-dashboard/internal/models"
)

// Notices shown alongside a successful run.
const (
	NoticeNoData       = "No data found for the selected period."
	noticeSinglePeriod = "Only one period of data available: %s"
)

// Failure kinds passed to Observer.ObserveFailure.
const (
	FailureNoDataSource      = "no_data_source"
	FailureMissingDateColumn = "missing_date_column"
	FailureNoValidDates      = "no_valid_dates"
	FailureUnexpected        = "unexpected"
)

// Observer receives pipeline outcomes, e.g. for metrics.
type Observer interface {
	ObserveRun(source ingest.Source, elapsed time.Duration)
	ObserveFallback()
	ObserveEmpty()
	ObserveFailure(kind string)
}

type nopObserver struct{}

func (nopObserver) ObserveRun(ingest.Source, time.Duration) {}
func (nopObserver) ObserveFallback()                        {}
func (nopObserver) ObserveEmpty()                           {}
func (nopObserver) ObserveFailure(string)                   {}

// Input is everything one run needs; nothing else carries over between runs.
type Input struct {
	Upload *ingest.Upload
	Start  *time.Time
	End    *time.Time
}

// Result is what the presentation layer renders.
type Result struct {
	Source      ingest.Source   `json:"source"`
	SourceLabel string          `json:"source_label"`
	Warnings    []string        `json:"warnings,omitempty"`
	Notices     []string        `json:"notices,omitempty"`
	Selection   Selection       `json:"selection"`
	Dataset     *models.Dataset `json:"dataset"`
	Empty       bool            `json:"empty"`
	KPIs        []KPI           `json:"kpis,omitempty"`
}

// Pipeline runs load, normalize, filter and derive for a single request.
type Pipeline struct {
	loader *ingest.Loader
	log    *zap.SugaredLogger
	obs    Observer
	derive func(*models.Dataset) *models.Dataset
}

// NewPipeline creates a pipeline. obs may be nil.
func NewPipeline(loader *ingest.Loader, log *zap.SugaredLogger, obs Observer) *Pipeline {
	if obs == nil {
		obs = nopObserver{}
	}
	return &Pipeline{loader: loader, log: log, obs: obs, derive: Derive}
}

// Run executes one full pass. Loader failures degrade to the embedded dataset;
// validation failures are returned and end the run. An empty selection is a
// normal result with Empty set.
func (p *Pipeline) Run(in Input) (*Result, error) {
	start := time.Now()

	loaded, err := p.loader.Load(in.Upload)
	if err != nil {
		p.obs.ObserveFailure(FailureNoDataSource)
		return nil, err
	}

	res := &Result{
		Source:      loaded.Source,
		SourceLabel: loaded.Label,
	}
	for _, w := range loaded.Warnings {
		res.Warnings = append(res.Warnings, w.Error())
	}
	if len(loaded.Warnings) > 0 {
		p.obs.ObserveFallback()
	}

	if err := p.process(loaded.Table, in, res); err != nil {
		p.obs.ObserveFailure(failureKind(err))
		var uerr *UnexpectedProcessingError
		if errors.As(err, &uerr) {
			p.log.Errorw("Unexpected processing error", "stage", uerr.Stage, "error", uerr.Cause, "stack", string(uerr.Stack))
		} else {
			p.log.Warnw("Data rejected", "source", loaded.Source, "error", err)
		}
		return nil, err
	}

	if res.Empty {
		p.obs.ObserveEmpty()
	}
	elapsed := time.Since(start)
	p.obs.ObserveRun(res.Source, elapsed)
	p.log.Debugw("Pipeline complete",
		"source", res.Source,
		"periods", res.Dataset.Len(),
		"start", res.Selection.Range.Start.Format(models.DateLayout),
		"end", res.Selection.Range.End.Format(models.DateLayout),
		"elapsed", elapsed,
	)
	return res, nil
}

func (p *Pipeline) process(table *ingest.Table, in Input, res *Result) (err error) {
	stage := "validate"
	defer func() {
		if r := recover(); r != nil {
			err = &UnexpectedProcessingError{Stage: stage, Cause: fmt.Errorf("panic: %v", r), Stack: debug.Stack()}
		}
	}()

	// Normalize only fails with the fatal data errors; panics are caught above.
	ds, stats, err := Normalize(table)
	if err != nil {
		return err
	}
	if stats.InvalidDates > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d row(s) with an invalid date in column '%s' were ignored.", stats.InvalidDates, DateColumn))
	}
	if stats.Duplicates > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%d row(s) repeated an earlier date; the last occurrence was kept.", stats.Duplicates))
	}

	stage = "filter"
	res.Selection = SelectRange(ds, in.Start, in.End)
	if res.Selection.SinglePeriod {
		res.Notices = append(res.Notices, fmt.Sprintf(noticeSinglePeriod, res.Selection.Range.Start.Format("02/01/2006")))
	}
	filtered := Filter(ds, res.Selection.Range)
	res.Dataset = filtered
	if filtered.Len() == 0 {
		res.Empty = true
		res.Notices = append(res.Notices, NoticeNoData)
		return nil
	}

	stage = "derive"
	res.Dataset = p.derive(filtered)
	res.KPIs = Summarize(res.Dataset)
	return nil
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrMissingDateColumn):
		return FailureMissingDateColumn
	case errors.Is(err, ErrNoValidDates):
		return FailureNoValidDates
	default:
		return FailureUnexpected
	}
}
