//
// Copyright (c) 2020-2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package unit

const (
	// TIME represents the unit used for time mesurements (e.g., seconds)
	TIME = iota

	// THROUGHPUT represents the unit used for the number of cells updated per second
	THROUGHPUT
)

var units = map[int]map[int]string{
	TIME: {
		0: "nanoseconds",
		1: "microseconds",
		2: "milliseconds",
		3: "seconds",
	},
	THROUGHPUT: {
		0: "cells/s",
		1: "Kcells/s",
		2: "Mcells/s",
		3: "Gcells/s",
		4: "Tcells/s",
	},
}

// FromString translates a human readable unit into its type and scale; -1, -1 when unknown
func FromString(unitID string) (int, int) {
	for unitType, scales := range units {
		for lvl, val := range scales {
			if val == unitID {
				return unitType, lvl
			}
		}
	}
	return -1, -1
}

// ToString converts data about a dataset's unit to a string that is readable
func ToString(unitType int, unitScale int) string {
	return units[unitType][unitScale]
}

// IsValidScale checks whether a scale exists for a type of unit
func IsValidScale(unitType int, unitScale int) bool {
	_, ok := units[unitType][unitScale]
	return ok
}

// IsMax checks if a unit cannot be scaled up further
func IsMax(unitType int, unitScale int) bool {
	return !IsValidScale(unitType, unitScale+1)
}

// IsMin checks if a unit cannot be scaled down further
func IsMin(unitType int, unitScale int) bool {
	return !IsValidScale(unitType, unitScale-1)
}
