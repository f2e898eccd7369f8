package charts

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mauv0809/finance-dashboard/internal/dashboard"
	"github.com/mauv0809/finance-dashboard/internal/models"
)

// Kind names one of the dashboard charts.
type Kind string

const (
	Revenue     Kind = "revenue"
	Margin      Kind = "margin"
	Customers   Kind = "customers"
	Portfolio   Kind = "portfolio"
	Delinquency Kind = "delinquency"
)

// Kinds lists the charts in display order.
var Kinds = []Kind{Revenue, Margin, Customers, Portfolio, Delinquency}

var (
	ErrUnknownChart = errors.New("unknown chart")
	// ErrNoData means the dataset has nothing to plot for this chart.
	ErrNoData = errors.New("no data to plot")
)

const (
	width  = 960
	height = 360
)

// Title returns the heading used for a chart.
func (k Kind) Title() string {
	switch k {
	case Revenue:
		return "Revenue and Operating Profit"
	case Margin:
		return "Operating Margin (%)"
	case Customers:
		return "New Customers"
	case Portfolio:
		return "Active Credit Portfolio"
	case Delinquency:
		return "Delinquency Rate (%)"
	}
	return string(k)
}

// ParseKind validates a chart name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChart, s)
}

// Available reports whether ds carries the columns a chart needs.
func Available(k Kind, ds *models.Dataset) bool {
	if ds.Len() == 0 {
		return false
	}
	switch k {
	case Revenue:
		return ds.Columns.Has(models.ColumnRevenue) || ds.Columns.Has(models.ColumnGrossProfit)
	case Margin:
		return ds.Columns.Has(models.ColumnGrossMarginPct)
	case Customers:
		return ds.Columns.Has(models.ColumnNewCustomers)
	case Portfolio:
		return ds.Columns.Has(models.ColumnCreditPortfolio)
	case Delinquency:
		return ds.Columns.Has(models.ColumnDelinquencyRate)
	}
	return false
}

// RenderSVG writes chart k for ds as SVG.
func RenderSVG(w io.Writer, k Kind, ds *models.Dataset) error {
	if k == Customers {
		return renderCustomers(w, ds)
	}

	var series []line
	switch k {
	case Revenue:
		series = []line{
			decimalLine("Total Revenue", chart.ColorBlue, ds, func(p models.Period) *decimal.Decimal { return p.Revenue }),
			decimalLine("Operating Profit", chart.ColorGreen, ds, func(p models.Period) *decimal.Decimal { return p.GrossProfit }),
		}
	case Margin:
		series = []line{decimalLine("Margin (%)", chart.ColorOrange, ds, func(p models.Period) *decimal.Decimal { return p.GrossMarginPct })}
	case Portfolio:
		series = []line{decimalLine("Portfolio", chart.ColorBlue, ds, func(p models.Period) *decimal.Decimal { return p.CreditPortfolio })}
	case Delinquency:
		series = []line{decimalLine("Rate (%)", chart.ColorRed, ds, func(p models.Period) *decimal.Decimal { return p.DelinquencyRatePct })}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, k)
	}
	return renderLines(w, k.Title(), series)
}

type line struct {
	name  string
	color drawing.Color
	xs    []time.Time
	ys    []float64
}

func decimalLine(name string, color drawing.Color, ds *models.Dataset, get func(models.Period) *decimal.Decimal) line {
	l := line{name: name, color: color}
	for _, p := range ds.Periods {
		if v := get(p); v != nil {
			l.xs = append(l.xs, p.Date)
			l.ys = append(l.ys, v.InexactFloat64())
		}
	}
	return l
}

func renderLines(w io.Writer, title string, lines []line) error {
	var (
		series     []chart.Series
		minT, maxT time.Time
		ys         []float64
	)
	for _, l := range lines {
		if len(l.xs) == 0 {
			continue
		}
		series = append(series, chart.TimeSeries{
			Name:    l.name,
			XValues: l.xs,
			YValues: l.ys,
			Style: chart.Style{
				StrokeColor: l.color,
				StrokeWidth: 2,
				DotColor:    l.color,
				DotWidth:    3,
			},
		})
		if minT.IsZero() || l.xs[0].Before(minT) {
			minT = l.xs[0]
		}
		if last := l.xs[len(l.xs)-1]; last.After(maxT) {
			maxT = last
		}
		ys = append(ys, l.ys...)
	}
	if len(series) == 0 {
		return ErrNoData
	}

	// A single date has no x extent; widen it so the point sits mid-axis.
	if minT.Equal(maxT) {
		minT, maxT = minT.AddDate(0, 0, -15), maxT.AddDate(0, 0, 15)
	}
	lo, hi := paddedRange(ys)

	ch := chart.Chart{
		Title:  title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 2006"),
			Range:          &chart.ContinuousRange{Min: chart.TimeToFloat64(minT), Max: chart.TimeToFloat64(maxT)},
		},
		YAxis: chart.YAxis{
			ValueFormatter: numberFormatter,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	if err := ch.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("rendering %s chart: %w", title, err)
	}
	return nil
}

func renderCustomers(w io.Writer, ds *models.Dataset) error {
	var (
		bars []chart.Value
		ys   []float64
	)
	for _, p := range ds.Periods {
		if p.NewCustomers == nil {
			continue
		}
		v := float64(*p.NewCustomers)
		bars = append(bars, chart.Value{Value: v, Label: p.Date.Format("Jan/06")})
		ys = append(ys, v)
	}
	if len(bars) == 0 {
		return ErrNoData
	}

	lo, hi := paddedRange(append(ys, 0))
	if lo > 0 {
		lo = 0
	}

	const barWidth, barSpacing = 24, 12
	bc := chart.BarChart{
		Title:  Customers.Title(),
		Width:  max(width, len(bars)*(barWidth+barSpacing)+120),
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis: chart.YAxis{
			ValueFormatter: numberFormatter,
			Range:          &chart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
	if err := bc.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("rendering %s chart: %w", Customers.Title(), err)
	}
	return nil
}

// paddedRange returns an axis range around ys that is never zero-width.
func paddedRange(ys []float64) (float64, float64) {
	lo, hi := ys[0], ys[0]
	for _, y := range ys[1:] {
		lo, hi = min(lo, y), max(hi, y)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = max(1, abs(hi)*0.1)
	}
	return lo - pad, hi + pad
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func numberFormatter(v interface{}) string {
	f, ok := v.(float64)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	if abs(f) >= 100 {
		return dashboard.FormatCount(int64(math.Round(f)))
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
