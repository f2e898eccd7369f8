package dashboard

import (
	"time"

	"github.com/mauv0809/finance-dashboard/internal/models"
)

// Selection is the effective date range of a run.
type Selection struct {
	Range        models.DateRange `json:"range"`
	Bounds       models.DateRange `json:"bounds"`
	SinglePeriod bool             `json:"single_period"`
}

// SelectRange resolves the requested bounds against the dataset. Missing bounds
// default to the dataset's own. The end is bounded below by the start, so the
// result is never inverted. A dataset with a single date collapses to that date
// whatever was requested.
func SelectRange(ds *models.Dataset, start, end *time.Time) Selection {
	bounds, ok := ds.Bounds()
	if !ok {
		return Selection{}
	}

	sel := Selection{Bounds: bounds}
	if bounds.Start.Equal(bounds.End) {
		sel.Range = bounds
		sel.SinglePeriod = true
		return sel
	}

	from := bounds.Start
	if start != nil {
		from = models.TruncateDate(*start)
	}
	to := bounds.End
	if end != nil {
		to = models.TruncateDate(*end)
	}
	if to.Before(from) {
		to = from
	}

	sel.Range = models.DateRange{Start: from, End: to}
	return sel
}

// Filter returns the periods whose date falls within r, inclusive.
// An empty result is valid and means there is no data for the period.
func Filter(ds *models.Dataset, r models.DateRange) *models.Dataset {
	out := &models.Dataset{
		Periods: make([]models.Period, 0, ds.Len()),
		Columns: make(models.ColumnSet, len(ds.Columns)),
	}
	for k, v := range ds.Columns {
		out.Columns[k] = v
	}
	for _, p := range ds.Periods {
		if r.Contains(p.Date) {
			out.Periods = append(out.Periods, p)
		}
	}
	return out
}
