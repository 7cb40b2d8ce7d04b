//
// Copyright (c) 2020-2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package scale

import (
	"fmt"
	"sort"

	"github.com/gvallee/cholla_scaling/tools/internal/pkg/unit"
)

const (
	DOWN = -1
	UP   = 1
)

func allZeros(sortedValues []float64) bool {
	return sortedValues[0] == 0 && sortedValues[len(sortedValues)-1] == 0
}

func compute(op int, values []float64) []float64 {
	var newValues []float64
	for _, val := range values {
		switch op {
		case DOWN:
			newValues = append(newValues, val*1000)
		case UP:
			newValues = append(newValues, val/1000)
		}
	}
	return newValues
}

// Float64s scales a set of values so they are easy to read, e.g., 0.002 seconds become
// 2 milliseconds. All the values share the returned unit.
func Float64s(unitID string, values []float64) (string, []float64, error) {
	if len(values) == 0 {
		return "", nil, fmt.Errorf("no value to scale")
	}

	unitType, unitScale := unit.FromString(unitID)
	if unitScale == -1 {
		return unitID, values, fmt.Errorf("unknown unit: %s", unitID)
	}

	// Copy and sort the values to figure out what can be done
	sortedValues := append([]float64{}, values...)
	sort.Float64s(sortedValues)

	if allZeros(sortedValues) {
		return unitID, values, nil
	}

	if sortedValues[0] >= 0 && sortedValues[len(sortedValues)-1] < 1 && !unit.IsMin(unitType, unitScale) {
		return Float64s(unit.ToString(unitType, unitScale-1), compute(DOWN, values))
	}

	if sortedValues[0] >= 1000 && !unit.IsMax(unitType, unitScale) {
		return Float64s(unit.ToString(unitType, unitScale+1), compute(UP, values))
	}

	// Nothing to do, just return the same
	return unitID, values, nil
}
