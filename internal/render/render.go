// Package render turns visualization records into terminal output: colored
// highlighted text for token-level explanations, horizontal bar charts for
// tabular ones. The record's data is never modified; everything here is
// presentation.
package render

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/explain"
	"github.com/kartik-binzade/amazon-sagemaker-examples/internal/ui"
)

// Intensity buckets for the text heatmap. Brighter means a larger share of
// the instance's maximum absolute attribution.
var (
	positiveShades = []color.Color{lipgloss.Color("#14532D"), lipgloss.Color("#166534"), lipgloss.Color("#16A34A"), ui.ColorPositive}
	negativeShades = []color.Color{lipgloss.Color("#7F1D1D"), lipgloss.Color("#991B1B"), lipgloss.Color("#DC2626"), ui.ColorNegative}

	zeroStyle = lipgloss.NewStyle().Foreground(ui.ColorMuted)
)

// Text renders a token-level record as highlighted text: units carrying
// positive attribution are shaded green, negative red, filtered-out units
// dim. Shade intensity is relative to the instance's own maximum.
func Text(rec explain.Record) string {
	maxAbs := 0.0
	for _, a := range rec.Attributions {
		if abs := math.Abs(a); abs > maxAbs {
			maxAbs = abs
		}
	}

	parts := make([]string, 0, len(rec.Units))
	for i, unit := range rec.Units {
		a := rec.Attributions[i]
		if a == 0 || maxAbs == 0 {
			parts = append(parts, zeroStyle.Render(unit))
			continue
		}
		shades := positiveShades
		if a < 0 {
			shades = negativeShades
		}
		bucket := int(math.Abs(a) / maxAbs * float64(len(shades)))
		if bucket >= len(shades) {
			bucket = len(shades) - 1
		}
		style := lipgloss.NewStyle().Foreground(shades[bucket])
		parts = append(parts, style.Render(unit))
	}
	return strings.Join(parts, " ")
}

// BarChart renders a tabular record as a horizontal signed bar chart, units
// sorted by absolute attribution, largest first. width is the maximum bar
// width in cells.
func BarChart(rec explain.Record, width int) string {
	if width <= 0 {
		width = 40
	}

	type row struct {
		unit string
		attr float64
	}
	rows := make([]row, 0, len(rec.Units))
	maxAbs := 0.0
	unitWidth := 0
	for i, unit := range rec.Units {
		rows = append(rows, row{unit: unit, attr: rec.Attributions[i]})
		if abs := math.Abs(rec.Attributions[i]); abs > maxAbs {
			maxAbs = abs
		}
		if len(unit) > unitWidth {
			unitWidth = len(unit)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return math.Abs(rows[i].attr) > math.Abs(rows[j].attr)
	})

	var b strings.Builder
	for _, r := range rows {
		cells := 0
		if maxAbs > 0 {
			cells = int(math.Round(math.Abs(r.attr) / maxAbs * float64(width)))
		}
		bar := strings.Repeat("█", cells)
		style := ui.Success
		if r.attr < 0 {
			style = ui.Error
		}
		if cells == 0 {
			bar = "·"
			style = ui.Muted
		}
		fmt.Fprintf(&b, "%-*s %s %s\n", unitWidth, r.unit, style.Render(bar), ui.Dim.Render(fmt.Sprintf("%+.4f", r.attr)))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Summary renders the one-line verdict for a record: predicted class,
// prediction score, attribution total and, when known, whether the
// prediction matches the ground truth.
func Summary(rec explain.Record) string {
	mark := ui.GetBullet()
	truth := ""
	if rec.Label != nil {
		if *rec.Label == rec.PredictedClass {
			mark = ui.GetCheckMark()
		} else {
			mark = ui.GetCrossMark()
		}
		truth = ui.Dim.Render(fmt.Sprintf(" label=%d", *rec.Label))
	}

	direction := "−"
	if rec.Positive {
		direction = "+"
	}
	return fmt.Sprintf("%s class=%d score=%.3f%s %s",
		mark, rec.PredictedClass, rec.Prediction, truth,
		ui.Dim.Render(fmt.Sprintf("attribution %s%.4f", direction, math.Abs(rec.Total))))
}
