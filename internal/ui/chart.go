package ui

import (
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/brewdash/brewdash/internal/domain"
)

const (
	chartStrokeWidth float32 = 1.5
	chartGridLines           = 4
)

// chartAxis is a y scale that grows past its suggested bounds to fit data.
type chartAxis struct {
	SuggestedMin float64
	SuggestedMax float64
}

func (a chartAxis) bounds(values ...[]float64) (float64, float64) {
	lo, hi := a.SuggestedMin, a.SuggestedMax
	for _, column := range values {
		for _, v := range column {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if hi <= lo {
		hi = lo + 1
	}

	return lo, hi
}

var (
	tempAxis     = chartAxis{SuggestedMin: 80, SuggestedMax: 100}
	pressureAxis = chartAxis{SuggestedMin: 0, SuggestedMax: 10}
	// Shot weight shares the pump duty axis.
	dutyAxis = chartAxis{SuggestedMin: 0, SuggestedMax: 200}
)

type chartTrace struct {
	Name     string
	Color    color.Color
	Axis     chartAxis
	Advanced bool
	Values   func(domain.Series) []float64
}

var chartTraces = []chartTrace{
	{
		Name:   "Temperature",
		Color:  color.NRGBA{R: 0x4f, G: 0xc3, B: 0xf7, A: 0xff},
		Axis:   tempAxis,
		Values: func(s domain.Series) []float64 { return s.BrewTemp },
	},
	{
		Name:   "Pressure",
		Color:  color.NRGBA{R: 0xe0, G: 0x6c, B: 0x4f, A: 0xff},
		Axis:   pressureAxis,
		Values: func(s domain.Series) []float64 { return s.Pressure },
	},
	{
		Name:   "Target Pressure",
		Color:  color.NRGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff},
		Axis:   pressureAxis,
		Values: func(s domain.Series) []float64 { return s.TargetPressure },
	},
	{
		Name:     "Pump Duty",
		Color:    color.NRGBA{R: 0xff, G: 0xb7, B: 0x4d, A: 0xff},
		Axis:     dutyAxis,
		Advanced: true,
		Values:   func(s domain.Series) []float64 { return s.PumpDuty },
	},
	{
		Name:     "Shot Weight",
		Color:    color.NRGBA{R: 0x81, G: 0xc7, B: 0x84, A: 0xff},
		Axis:     dutyAxis,
		Advanced: true,
		Values:   shotWeightGrams,
	},
}

func shotWeightGrams(s domain.Series) []float64 {
	out := make([]float64, len(s.ShotGrams))
	for i, v := range s.ShotGrams {
		out[i] = v / 1000
	}

	return out
}

func visibleTraces(advanced bool) []chartTrace {
	out := make([]chartTrace, 0, len(chartTraces))
	for _, trace := range chartTraces {
		if trace.Advanced && !advanced {
			continue
		}
		out = append(out, trace)
	}

	return out
}

// sampleIndices picks at most limit indices out of n, always keeping the
// first and the last point.
func sampleIndices(n, limit int) []int {
	if n <= 0 {
		return nil
	}
	if limit < 2 || n <= limit {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}

		return out
	}

	out := make([]int, 0, limit)
	step := float64(n-1) / float64(limit-1)
	last := -1
	for i := 0; i < limit; i++ {
		idx := int(math.Round(float64(i) * step))
		if idx != last {
			out = append(out, idx)
			last = idx
		}
	}

	return out
}

// chartPoints maps one series onto a canvas of the given size. x follows the
// shared timestamp column so gaps in the stream stay visible.
func chartPoints(timestamps []int64, values []float64, lo, hi float64, size fyne.Size, limit int) []fyne.Position {
	n := min(len(timestamps), len(values))
	if n == 0 || size.Width <= 0 || size.Height <= 0 {
		return nil
	}

	first, last := timestamps[0], timestamps[n-1]
	span := float64(last - first)
	indices := sampleIndices(n, limit)
	points := make([]fyne.Position, 0, len(indices))
	for _, i := range indices {
		x := float32(0)
		if span > 0 {
			x = float32(float64(timestamps[i]-first) / span * float64(size.Width))
		}
		ratio := (values[i] - lo) / (hi - lo)
		ratio = math.Min(math.Max(ratio, 0), 1)
		y := size.Height - float32(ratio)*size.Height
		points = append(points, fyne.NewPos(x, y))
	}

	return points
}

// telemetryChart draws the buffered series as line segments.
type telemetryChart struct {
	widget.BaseWidget

	series   domain.Series
	advanced bool
}

func newTelemetryChart() *telemetryChart {
	c := &telemetryChart{}
	c.ExtendBaseWidget(c)

	return c
}

func (c *telemetryChart) SetSeries(series domain.Series) {
	c.series = series
	c.Refresh()
}

func (c *telemetryChart) SetAdvanced(advanced bool) {
	if c.advanced == advanced {
		return
	}
	c.advanced = advanced
	c.Refresh()
}

func (c *telemetryChart) MinSize() fyne.Size {
	return fyne.NewSize(320, 220)
}

func (c *telemetryChart) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.Transparent)
	r := &telemetryChartRenderer{chart: c, background: bg}
	r.rebuild(c.Size())

	return r
}

type telemetryChartRenderer struct {
	chart      *telemetryChart
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *telemetryChartRenderer) rebuild(size fyne.Size) {
	th := r.chart.Theme()
	variant := fyne.CurrentApp().Settings().ThemeVariant()
	r.background.FillColor = th.Color(theme.ColorNameInputBackground, variant)
	r.background.Resize(size)

	objects := []fyne.CanvasObject{r.background}
	gridColor := th.Color(theme.ColorNameSeparator, variant)
	for i := 1; i < chartGridLines; i++ {
		y := size.Height * float32(i) / chartGridLines
		line := canvas.NewLine(gridColor)
		line.StrokeWidth = 1
		line.Position1 = fyne.NewPos(0, y)
		line.Position2 = fyne.NewPos(size.Width, y)
		objects = append(objects, line)
	}

	series := r.chart.series
	if series.Aligned() && series.Len() > 0 {
		limit := int(size.Width)
		for _, trace := range visibleTraces(r.chart.advanced) {
			values := trace.Values(series)
			lo, hi := trace.Axis.bounds(values)
			points := chartPoints(series.Timestamps, values, lo, hi, size, limit)
			for i := 1; i < len(points); i++ {
				segment := canvas.NewLine(trace.Color)
				segment.StrokeWidth = chartStrokeWidth
				segment.Position1 = points[i-1]
				segment.Position2 = points[i]
				objects = append(objects, segment)
			}
		}
	}
	r.objects = objects
}

func (r *telemetryChartRenderer) Layout(size fyne.Size) {
	r.rebuild(size)
	canvas.Refresh(r.chart)
}

func (r *telemetryChartRenderer) MinSize() fyne.Size {
	return r.chart.MinSize()
}

func (r *telemetryChartRenderer) Refresh() {
	r.rebuild(r.chart.Size())
	canvas.Refresh(r.chart)
}

func (r *telemetryChartRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *telemetryChartRenderer) Destroy() {}

func newChartLegend(advanced bool) *fyne.Container {
	legend := container.NewHBox()
	for _, trace := range visibleTraces(advanced) {
		swatch := canvas.NewRectangle(trace.Color)
		swatch.SetMinSize(fyne.NewSize(12, 12))
		legend.Add(container.NewCenter(swatch))
		legend.Add(widget.NewLabel(trace.Name))
	}

	return legend
}
