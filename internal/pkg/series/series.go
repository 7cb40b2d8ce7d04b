//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package series

import (
	"fmt"
	"math"

	"github.com/gvallee/cholla_scaling/tools/internal/pkg/timings"
	"github.com/gvallee/cholla_scaling/tools/pkg/errors"
)

// Series is a set of points ready to be plotted
type Series struct {
	// Name identifies the series, e.g., the metric it is based on
	Name string

	// Label is the text displayed in the legend; no legend entry when empty
	Label string

	X []float64
	Y []float64
}

// Combos are the groups of metrics that are summed up and displayed as a single series
var Combos = map[string][]string{
	"Hydro":     {"Hydro", "Calc_dt"},
	"MPI comm":  {"Boundaries", "Pot_Boundaries", "Part_Boundaries", "Part_Dens_Transf"},
	"Poisson":   {"Grav_Potential"},
	"Particles": {"Part_Density", "Advance_Part_1", "Advance_Part_2"},
}

// Reference 2019 data: total time per step (ms) of the hydro solver, 128^3 cells per GPU
var (
	ranks2019 = []float64{8, 64, 512, 1024, 2048, 4096, 8192, 16384}
	total2019 = []float64{347.068, 386.369, 423.309, 439.147, 447.226, 458.162, 464.66, 481.458}
)

const cellsPerGPU = 256 * 256 * 256

func missingKey(item string) error {
	fmt.Printf("Error: missing key: %s\n", item)
	return errors.New(errors.ErrMissingKey, fmt.Errorf("%s", item))
}

func row(t *timings.Table, metric string) ([]float64, error) {
	values, err := t.Row(metric)
	if err != nil {
		return nil, missingKey(metric)
	}
	return values, nil
}

func ranks(t *timings.Table) []float64 {
	var x []float64
	for _, r := range t.Ranks() {
		x = append(x, float64(r))
	}
	return x
}

func stepsMinus(t *timings.Table, offset float64) ([]float64, error) {
	steps, err := row(t, timings.StepsKey)
	if err != nil {
		return nil, err
	}
	for i := range steps {
		steps[i] -= offset
		if steps[i] <= 0 {
			return nil, fmt.Errorf("invalid number of steps for run #%d", i)
		}
	}
	return steps, nil
}

// sum returns the metric itself or, for a combo, the sum of all its metrics
func sum(t *timings.Table, item string) ([]float64, error) {
	metrics, isCombo := Combos[item]
	if !isCombo {
		return row(t, item)
	}

	total := make([]float64, t.NumRuns())
	for _, m := range metrics {
		values, err := row(t, m)
		if err != nil {
			return nil, err
		}
		for i := range values {
			total[i] += values[i]
		}
	}
	return total, nil
}

// Access returns the average time per step of a metric or a combo, ordered by number of ranks.
// A missing metric is reported and ErrMissingKey returned.
func Access(t *timings.Table, item string) (Series, error) {
	s := Series{Name: item, Label: item}
	total, err := sum(t, item)
	if err != nil {
		return s, err
	}
	steps, err := stepsMinus(t, 0)
	if err != nil {
		return s, err
	}

	s.X = ranks(t)
	for i := range total {
		s.Y = append(s.Y, total[i]/steps[i])
	}
	return s, nil
}

// MsPerStep returns the average time per step in milliseconds, the first step is not accounted for
func MsPerStep(t *timings.Table, metric string, label string) (Series, error) {
	s := Series{Name: metric, Label: label}
	values, err := row(t, metric)
	if err != nil {
		return s, err
	}
	steps, err := stepsMinus(t, 1)
	if err != nil {
		return s, err
	}

	s.X = ranks(t)
	for i := range values {
		s.Y = append(s.Y, values[i]/steps[i])
	}
	return s, nil
}

// CellsPerSecondPerGPU returns the throughput of each GPU in cells updated per second
func CellsPerSecondPerGPU(t *timings.Table, metric string, label string) (Series, error) {
	s := Series{Name: metric, Label: label}
	perStep, err := MsPerStep(t, metric, label)
	if err != nil {
		return s, err
	}

	var dims [3][]float64
	for i, key := range []string{"nx", "ny", "nz"} {
		dims[i], err = row(t, key)
		if err != nil {
			return s, err
		}
	}

	s.X = perStep.X
	for i := range perStep.X {
		cells := dims[0][i] * dims[1][i] * dims[2][i] / perStep.X[i]
		// ms to seconds
		avgTimeStep := perStep.Y[i] / 1000
		s.Y = append(s.Y, cells/avgTimeStep)
	}
	return s, nil
}

// Reference2019 returns the total time per step measured in 2019.
// When rescale is true, it is converted to cells per second per GPU.
func Reference2019(rescale bool) Series {
	s := Series{Name: "Total 2019", Label: "Total Hydro 2019"}
	s.X = append(s.X, ranks2019...)
	for _, v := range total2019 {
		if rescale {
			v = cellsPerGPU / v * 1000
		}
		s.Y = append(s.Y, v)
	}
	return s
}

// DivideByLogN scales a series by the logarithm of the number of ranks. Points with a
// single rank are dropped.
func DivideByLogN(s Series) Series {
	res := Series{Name: s.Name, Label: s.Label}
	for i := range s.X {
		if s.X[i] <= 1 {
			continue
		}
		res.X = append(res.X, s.X[i])
		res.Y = append(res.Y, s.Y[i]/math.Log(s.X[i]))
	}
	return res
}
