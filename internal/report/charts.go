package report

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/maeshaii/backend-wny/internal/models"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	LabelEmployed     = "Employed"
	LabelUnemployed   = "Unemployed"
	LabelAbsorb       = "Absorb"
	LabelHighPosition = "High Position"
	LabelFurtherStudy = "Further Study"
	LabelPostGraduate = "Post Graduate"
	LabelOthers       = "Others"
	LabelNoData       = "No data"
)

var labelColors = map[string]string{
	LabelEmployed:     "#7C97A4",
	LabelUnemployed:   "#1F4B7A",
	LabelAbsorb:       "#A3D9DF",
	LabelHighPosition: "#0797D8",
	LabelFurtherStudy: "#4F46E5",
	LabelPostGraduate: "#17406A",
	LabelOthers:       "#CBD5E1",
	LabelNoData:       "#E5E7EB",
}

// Colors for statuses outside the fixed mapping, used in order.
var fallbackPalette = []string{"#6A74F0", "#174F84", "#E3E9F7", "#163B66", "#9CA3AF"}

// Lower-cased user_status values and their chart labels.
var statusLabels = map[string]string{
	"employed":      LabelEmployed,
	"unemployed":    LabelUnemployed,
	"absorb":        LabelAbsorb,
	"high position": LabelHighPosition,
}

// Datum is one bar or pie slice.
type Datum struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

type Chart struct {
	Title string  `json:"title"`
	Data  []Datum `json:"data"`
	PNG   []byte  `json:"-"`
}

// ChartSet is the bar and pie pair rendered for one statistics type.
type ChartSet struct {
	Type models.StatsType `json:"type"`
	Bar  Chart            `json:"bar"`
	Pie  Chart            `json:"pie"`
}

// ChartData maps a snapshot to labelled, colored values for its type.
func ChartData(statsType models.StatsType, snap *models.StatsSnapshot) []Datum {
	if snap == nil {
		return nil
	}
	var data []Datum
	add := func(label string, v *int) {
		data = append(data, Datum{Label: label, Value: float64(deref(v)), Color: labelColors[label]})
	}

	switch statsType {
	case models.StatsQPRO:
		add(LabelEmployed, snap.EmployedCount)
		add(LabelUnemployed, snap.UnemployedCount)
	case models.StatsCHED:
		add(LabelFurtherStudy, snap.PursuingFurtherStudy)
		add(LabelPostGraduate, snap.PostGraduateDegree)
	case models.StatsSUC:
		high := deref(snap.HighPositionCount)
		others := snap.TotalAlumni - high
		if others < 0 {
			others = 0
		}
		add(LabelHighPosition, &high)
		add(LabelOthers, &others)
	case models.StatsAACUP:
		add(LabelEmployed, snap.EmployedCount)
		add(LabelAbsorb, snap.AbsorbedCount)
		add(LabelHighPosition, snap.HighPositionCount)
	default:
		data = statusData(snap.StatusCounts)
	}
	return data
}

func statusData(counts map[string]int) []Datum {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := make([]Datum, 0, len(keys))
	extra := 0
	for _, k := range keys {
		label, ok := statusLabels[strings.ToLower(strings.TrimSpace(k))]
		if !ok {
			label = k
			if strings.TrimSpace(label) == "" {
				label = "Unspecified"
			}
		}
		color, ok := labelColors[label]
		if !ok {
			color = fallbackPalette[extra%len(fallbackPalette)]
			extra++
		}
		data = append(data, Datum{Label: label, Value: float64(counts[k]), Color: color})
	}
	return data
}

// RenderCharts renders the bar and pie chart for a snapshot. The charts are
// complete when it returns.
func RenderCharts(statsType models.StatsType, snap *models.StatsSnapshot) (*ChartSet, error) {
	data := ChartData(statsType, snap)
	title := fmt.Sprintf("%s Statistics", statsType)

	bar, err := renderBar(title, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s bar chart: %w", statsType, err)
	}
	pie, err := renderPie(title, data)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s pie chart: %w", statsType, err)
	}

	return &ChartSet{
		Type: statsType,
		Bar:  Chart{Title: title, Data: data, PNG: bar},
		Pie:  Chart{Title: title, Data: data, PNG: pie},
	}, nil
}

func renderBar(title string, data []Datum) ([]byte, error) {
	if len(data) == 0 {
		data = []Datum{{Label: LabelNoData, Color: labelColors[LabelNoData]}}
	}

	maxValue := 0.0
	bars := make([]chart.Value, 0, len(data))
	for _, d := range data {
		maxValue = math.Max(maxValue, d.Value)
		bars = append(bars, chart.Value{Label: d.Label, Value: d.Value, Style: fill(d.Color)})
	}
	// Ticks every 10, matching the dashboard chart
	maxTick := math.Max(10, math.Ceil(maxValue/10)*10)

	graph := chart.BarChart{
		Title:      title,
		Width:      640,
		Height:     400,
		BarWidth:   60,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		YAxis:      chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: maxTick}},
		Bars:       bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPie(title string, data []Datum) ([]byte, error) {
	values := make([]chart.Value, 0, len(data))
	for _, d := range data {
		if d.Value > 0 {
			values = append(values, chart.Value{Label: d.Label, Value: d.Value, Style: fill(d.Color)})
		}
	}
	if len(values) == 0 {
		values = append(values, chart.Value{Label: LabelNoData, Value: 1, Style: fill(labelColors[LabelNoData])})
	}

	graph := chart.PieChart{
		Title:  title,
		Width:  512,
		Height: 512,
		Values: values,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func fill(hex string) chart.Style {
	c := drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
	return chart.Style{FillColor: c, StrokeColor: c, StrokeWidth: 1}
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
