package views

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Chart geometry in SVG user units.
const (
	ChartWidth  = 640
	ChartHeight = 280
	chartMargin = 40
)

var seriesColors = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b"}

// Chart is a multi-series line chart ready for the SVG template.
type Chart struct {
	Title  string
	Width  int
	Height int
	Series []ChartSeries
	YMin   string
	YMax   string
	XStart string
	XEnd   string
	// PlotLeft, PlotRight, PlotTop and PlotBottom bound the plot area.
	PlotLeft, PlotRight, PlotTop, PlotBottom int
}

type ChartSeries struct {
	Name   string
	Color  string
	Points string
	Dots   []ChartDot
}

type ChartDot struct {
	X, Y  float64
	Label string
}

// BuildChart groups rows by sensor name and projects them onto the plot
// area. Returns nil when rows is empty.
func BuildChart(title string, rows []ReadingRow) *Chart {
	if len(rows) == 0 {
		return nil
	}

	start, end := rows[0].Timestamp, rows[0].Timestamp
	minV, maxV := rows[0].Value, rows[0].Value
	bySensor := map[string][]ReadingRow{}
	for _, r := range rows {
		if r.Timestamp.Before(start) {
			start = r.Timestamp
		}
		if r.Timestamp.After(end) {
			end = r.Timestamp
		}
		minV = math.Min(minV, r.Value)
		maxV = math.Max(maxV, r.Value)
		bySensor[r.SensorName] = append(bySensor[r.SensorName], r)
	}
	if minV == maxV {
		minV--
		maxV++
	}

	c := &Chart{
		Title:      title,
		Width:      ChartWidth,
		Height:     ChartHeight,
		YMin:       fmt.Sprintf("%.2f", minV),
		YMax:       fmt.Sprintf("%.2f", maxV),
		XStart:     start.Format("15:04:05"),
		XEnd:       end.Format("15:04:05"),
		PlotLeft:   chartMargin,
		PlotRight:  ChartWidth - chartMargin/2,
		PlotTop:    chartMargin / 2,
		PlotBottom: ChartHeight - chartMargin,
	}

	names := make([]string, 0, len(bySensor))
	for name := range bySensor {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		pts := bySensor[name]
		sort.Slice(pts, func(a, b int) bool { return pts[a].Timestamp.Before(pts[b].Timestamp) })
		s := ChartSeries{Name: name, Color: seriesColors[i%len(seriesColors)]}
		coords := make([]string, 0, len(pts))
		for _, p := range pts {
			x := c.timeToX(p.Timestamp, start, end)
			y := c.valueToY(p.Value, minV, maxV)
			coords = append(coords, fmt.Sprintf("%.1f,%.1f", x, y))
			s.Dots = append(s.Dots, ChartDot{
				X: x, Y: y,
				Label: fmt.Sprintf("%s %s: %.2f", name, p.Timestamp.Format("15:04:05"), p.Value),
			})
		}
		s.Points = strings.Join(coords, " ")
		c.Series = append(c.Series, s)
	}
	return c
}

// timeToX maps t linearly onto the plot width; a single instant sits at
// the left edge.
func (c *Chart) timeToX(t, start, end time.Time) float64 {
	span := end.Sub(start)
	if span <= 0 {
		return float64(c.PlotLeft)
	}
	frac := float64(t.Sub(start)) / float64(span)
	return round1(float64(c.PlotLeft) + frac*float64(c.PlotRight-c.PlotLeft))
}

// valueToY maps v onto the plot height, higher values nearer the top.
func (c *Chart) valueToY(v, minV, maxV float64) float64 {
	frac := (v - minV) / (maxV - minV)
	return round1(float64(c.PlotBottom) - frac*float64(c.PlotBottom-c.PlotTop))
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
