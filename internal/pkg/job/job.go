//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package job

import (
	"fmt"
	"math"

	"github.com/gvallee/cholla_scaling/tools/pkg/errors"
)

// Topology describes how much work a single GPU gets and how many GPUs a node hosts.
// In a weak scaling experiment, the amount of work per GPU stays constant.
type Topology struct {
	// RanksPerNode is the number of MPI ranks, i.e., GPUs, per node
	RanksPerNode int

	// ResolutionPerGPU is the number of cells per side handled by a single rank.
	// The actual number of cells per rank is ResolutionPerGPU^3
	ResolutionPerGPU int

	// LengthPerGPU is the length per side of the domain handled by a single rank
	LengthPerGPU float64
}

// Frontier is the topology of Frontier: 8 GCDs per node, 256^3 cells per GCD
var Frontier = Topology{
	RanksPerNode:     8,
	ResolutionPerGPU: 256,
	LengthPerGPU:     1.0,
}

// Parameters gathers everything we derive from a rank count
type Parameters struct {
	NumRanks int

	// CubeRoot is the number of ranks along each axis
	CubeRoot int

	NumNodes int

	// Resolution is the per side resolution of the whole simulation
	Resolution int

	// DomainLength is the per side size of the domain
	DomainLength float64
}

// Run describes a run where the domain and the resolution are specified by hand
// rather than derived from the number of ranks.
type Run struct {
	// DomainLength is the per side size of the domain, in kpc
	DomainLength float64

	// Resolution is the number of cells per side
	Resolution int

	NumRanks int
}

// CeilDiv is an integer division that gives the ceiling result, without going through floating point.
// b must be strictly positive.
func CeilDiv(a int, b int) int {
	return -floorDiv(-a, b)
}

func floorDiv(a int, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// CubeRoot returns k such that k^3 == n. The second value is false when n is not a perfect cube.
func CubeRoot(n int) (int, bool) {
	if n < 0 {
		return 0, false
	}
	guess := int(math.Round(math.Cbrt(float64(n))))
	// The float estimate can be off by one near large cubes so we check the neighbors
	for k := guess - 1; k <= guess+1; k++ {
		if k >= 0 && k*k*k == n {
			return k, true
		}
	}
	return guess, false
}

// Compute derives the parameters of a job running on numRanks ranks on Frontier
func Compute(numRanks int) (*Parameters, error) {
	return Frontier.Compute(numRanks)
}

// Compute derives the number of nodes, the resolution and the domain length for a job
func (t Topology) Compute(numRanks int) (*Parameters, error) {
	if t.RanksPerNode <= 0 || t.ResolutionPerGPU <= 0 || t.LengthPerGPU <= 0 {
		return nil, errors.New(errors.ErrConfig, fmt.Errorf("invalid topology: %+v", t))
	}
	if numRanks <= 0 {
		return nil, errors.New(errors.ErrConfig, fmt.Errorf("the number of ranks must be positive (%d)", numRanks))
	}

	k, ok := CubeRoot(numRanks)
	if !ok {
		return nil, errors.New(errors.ErrConfig, fmt.Errorf("the number of ranks is not a perfect cube (%d)", numRanks))
	}

	p := new(Parameters)
	p.NumRanks = numRanks
	p.CubeRoot = k
	p.NumNodes = CeilDiv(numRanks, t.RanksPerNode)
	p.Resolution = t.ResolutionPerGPU * k
	p.DomainLength = t.LengthPerGPU * float64(k)
	return p, nil
}

// Nodes returns the number of nodes required by the run
func (r Run) Nodes(t Topology) (int, error) {
	if t.RanksPerNode <= 0 {
		return 0, errors.New(errors.ErrConfig, fmt.Errorf("invalid topology: %+v", t))
	}
	return CeilDiv(r.NumRanks, t.RanksPerNode), nil
}

// SanityCheck returns the size of a cell, the number of ranks that the resolution implies with
// 256^3 cells per rank and whether it matches the number of ranks of the run.
// A run with a null resolution or a topology without cells never matches.
func (r Run) SanityCheck(t Topology) (float64, float64, bool) {
	if r.Resolution <= 0 || t.ResolutionPerGPU <= 0 {
		return 0, 0, false
	}
	cellSize := r.DomainLength / float64(r.Resolution)
	perAxis := float64(r.Resolution) / float64(t.ResolutionPerGPU)
	expectedRanks := perAxis * perAxis * perAxis
	return cellSize, expectedRanks, expectedRanks == float64(r.NumRanks)
}

// Validate checks that a run can be submitted
func (r Run) Validate() error {
	if r.NumRanks <= 0 {
		return errors.New(errors.ErrConfig, fmt.Errorf("the number of ranks must be positive (%d)", r.NumRanks))
	}
	if r.Resolution <= 0 {
		return errors.New(errors.ErrConfig, fmt.Errorf("the resolution must be positive (%d)", r.Resolution))
	}
	if r.DomainLength <= 0 {
		return errors.New(errors.ErrConfig, fmt.Errorf("the domain length must be positive (%g)", r.DomainLength))
	}
	return nil
}
