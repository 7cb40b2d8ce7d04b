//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package plot

import (
	"log"

	"github.com/gvallee/cholla_scaling/tools/internal/pkg/series"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/timings"
)

const (
	// MsPerGPUFilename is the name of the plot of the time per step
	MsPerGPUFilename = "ms_per_gpu.png"

	// CellsPerSecondFilename is the name of the plot of the throughput
	CellsPerSecondFilename = "cells_per_second.png"

	// LogScalingFilename is the name of the plot of an aggregated log
	LogScalingFilename = "scaling_frontier_adiabatic_2023_dark.png"

	// LogScalingLogNFilename is the name of the plot of an aggregated log when gravity is divided by log(N)
	LogScalingLogNFilename = "scaling_frontier_adiabatic_2023_log_new_logN.png"

	scalingTitle = "MHD Weak Scaling on Frontier"
	gpusLabel    = "Number of GPUs"
	msLabel      = "Milliseconds / 256^3 Cells / GPU"
)

type seriesFn func(t *timings.Table, metric string, label string) (series.Series, error)

// metricCurve is a metric of the timing files, how it is named and displayed
type metricCurve struct {
	metric string
	label  string
	color  string
}

var datasetCurves = []metricCurve{
	{"Total", "Total", "w"},
	{"MHD", "MHD", "C0"},
	{"Boundaries", "MPI Comm", "C4"},
}

func scalingFigure(table *timings.Table, yLabel string, output string, fn seriesFn, reference series.Series, refLabel [2]float64, yRange Range, skipped map[string]bool) *Figure {
	fig := &Figure{
		Title:  scalingTitle,
		XLabel: gpusLabel,
		YLabel: yLabel,
		Output: output,
		XRange: Range{0.7, 1e5},
		YRange: yRange,
		LogX:   true,
		LogY:   true,
	}

	for _, c := range datasetCurves {
		if skipped[c.label] {
			continue
		}
		s, err := fn(table, c.metric, c.label)
		if err != nil {
			log.Printf("-> %s not plotted: %s\n", c.label, err)
			continue
		}
		fig.Curves = append(fig.Curves, Curve{Series: s, Color: c.color})
	}

	refLabelText := reference.Label
	reference.Label = ""
	fig.Curves = append(fig.Curves, Curve{Series: reference, Color: "grey"})
	fig.Labels = append(fig.Labels, Label{Text: refLabelText, X: refLabel[0], Y: refLabel[1], Color: "grey"})

	return fig
}

// MsPerGPU returns the figure of the average time per step of a dataset, compared to a reference
func MsPerGPU(table *timings.Table, reference series.Series) *Figure {
	return scalingFigure(table, msLabel, MsPerGPUFilename, series.MsPerStep, reference, [2]float64{0.03, 0.96}, Range{7e-3, 1e3}, nil)
}

// CellsPerSecond returns the figure of the throughput per GPU of a dataset, compared to a reference
func CellsPerSecond(table *timings.Table, reference series.Series) *Figure {
	skipped := map[string]bool{
		"Total":    true,
		"MPI Comm": true,
	}
	return scalingFigure(table, "Cells / Second / GPU", CellsPerSecondFilename, series.CellsPerSecondPerGPU, reference, [2]float64{0.65, 0.20}, Range{1e7, 1e9}, skipped)
}

// LogScaling returns the figure of an aggregated log of runs. Curves are identified by labels
// placed next to them rather than by a legend. When gravOverLogN is true, the values of the
// Poisson curve are divided by the natural logarithm of the number of ranks (runs on a single
// rank are dropped), its label becomes "Poisson / log(N)" and the figure is saved as
// LogScalingLogNFilename.
func LogScaling(table *timings.Table, gravOverLogN bool) *Figure {
	fig := &Figure{
		XLabel: gpusLabel,
		YLabel: msLabel,
		Output: LogScalingFilename,
		XRange: Range{6, 100000},
		YRange: Range{0.1, 1000},
		LogX:   true,
		LogY:   true,
	}
	if gravOverLogN {
		fig.Output = LogScalingLogNFilename
	}

	combos := []struct {
		item  string
		color string
		label Label
	}{
		{"Hydro", "C0", Label{Text: "Hydro", X: 0.85, Y: 0.47}},
		{"MPI comm", "C4", Label{Text: "MPI comm", X: 0.05, Y: 0.4}},
		{"Poisson", "C3", Label{Text: "Poisson", X: 0.3, Y: 0.62}},
		{"Particles", "C2", Label{Text: "Particles", X: 0.05, Y: 0.16}},
		{"Total", "w", Label{Text: "Total 2023", X: 0.05, Y: 0.75}},
	}
	for _, c := range combos {
		s, err := series.Access(table, c.item)
		if err != nil {
			continue
		}
		label := c.label
		label.Color = c.color
		if gravOverLogN {
			switch c.item {
			case "Poisson":
				s = series.DivideByLogN(s)
				label.Text = "Poisson / log(N)"
				label.X, label.Y = 0.05, 0.37
			case "Total":
				label.Y = 0.72
			}
		}
		s.Label = ""
		fig.Curves = append(fig.Curves, Curve{Series: s, Color: c.color})
		fig.Labels = append(fig.Labels, label)
	}

	reference := series.Reference2019(false)
	reference.Label = ""
	fig.Curves = append(fig.Curves, Curve{Series: reference, Color: "grey"})
	fig.Labels = append(fig.Labels, Label{Text: "Total 2019", X: 0.05, Y: 0.95, Color: "grey"})

	return fig
}
