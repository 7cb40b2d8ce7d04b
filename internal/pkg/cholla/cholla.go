//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package cholla

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gvallee/cholla_scaling/tools/internal/pkg/job"
	"github.com/gvallee/go_util/pkg/util"
	"github.com/pkg/errors"
)

// BoundsStyle specifies how the domain is described on Cholla's command line
type BoundsStyle int

const (
	// BoundsLength only gives the length of the domain along each axis
	BoundsLength BoundsStyle = iota

	// BoundsCentered also sets the lower bounds so the domain is centered around zero
	BoundsCentered
)

const (
	// OutputDirPrefix is the prefix of all the output directories of a scaling test
	OutputDirPrefix = "ranks"

	legacyOutputBaseDir = "out"
)

// CommandConfig gathers everything required to generate the command running Cholla
type CommandConfig struct {
	// Executable is the path to the Cholla executable
	Executable string

	// InputFile is the path to the input file
	InputFile string

	// ScalingDir is the directory where the output directory of the run is created
	ScalingDir string

	Params *job.Parameters

	Bounds BoundsStyle
}

// ParseBoundsStyle converts the name of a bounds style, e.g., from a configuration file
func ParseBoundsStyle(name string) (BoundsStyle, error) {
	switch strings.ToLower(name) {
	case "", "length":
		return BoundsLength, nil
	case "centered":
		return BoundsCentered, nil
	}
	return BoundsLength, fmt.Errorf("unknown bounds style: %s", name)
}

// FormatFloat gives the textual representation of a length as Cholla receives it.
// Integral values keep one decimal, e.g., 8.0.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// OutputDirName returns the name of the output directory of a run
func OutputDirName(numRanks int, resolution int) string {
	return fmt.Sprintf("%s_%d_resolution_%d", OutputDirPrefix, numRanks, resolution)
}

// LegacyOutputDir returns the output directory used by our first scaling tests, relative to where the job is submitted
func LegacyOutputDir(run job.Run) string {
	return legacyOutputBaseDir + "/" + fmt.Sprintf("%s_%d_domain_%s_%d", OutputDirPrefix, run.NumRanks, FormatFloat(run.DomainLength), run.Resolution) + "/"
}

// EnsureDir creates a directory if it does not exist yet
func EnsureDir(dir string) error {
	if util.PathExists(dir) {
		return nil
	}
	log.Printf("-> Creating %s\n", dir)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", dir)
	}
	return nil
}

func domainArgs(length float64, style BoundsStyle) []string {
	l := FormatFloat(length)
	args := []string{"xlen=" + l, "ylen=" + l, "zlen=" + l}
	if style == BoundsCentered {
		half := FormatFloat(length / 2)
		args = append(args, "xmin=-"+half, "ymin=-"+half, "zmin=-"+half)
	}
	return args
}

func resolutionArgs(resolution int) []string {
	r := strconv.Itoa(resolution)
	return []string{"nx=" + r, "ny=" + r, "nz=" + r}
}

// CommandLine returns the command to run Cholla and the output directory it writes to.
// Nothing is created on the filesystem.
func CommandLine(cfg CommandConfig) (string, string, error) {
	if cfg.Params == nil {
		return "", "", fmt.Errorf("undefined job parameters")
	}
	if cfg.Executable == "" {
		return "", "", fmt.Errorf("undefined executable")
	}

	outputDir := filepath.Join(cfg.ScalingDir, OutputDirName(cfg.Params.NumRanks, cfg.Params.Resolution))

	args := []string{cfg.Executable}
	if cfg.InputFile != "" {
		args = append(args, cfg.InputFile)
	}
	args = append(args, resolutionArgs(cfg.Params.Resolution)...)
	args = append(args, domainArgs(cfg.Params.DomainLength, cfg.Bounds)...)
	args = append(args, "outdir="+outputDir)

	return strings.Join(args, " "), outputDir, nil
}

// Command creates the output directory of the run and returns the command to run Cholla
func Command(cfg CommandConfig) (string, error) {
	cmd, outputDir, err := CommandLine(cfg)
	if err != nil {
		return "", err
	}
	err = EnsureDir(outputDir)
	if err != nil {
		return "", err
	}
	return cmd, nil
}

// LegacyCommandLine returns the command to run Cholla for a run which domain and resolution are
// given by hand, and the path of its output directory relative to baseDir. Nothing is created.
func LegacyCommandLine(executable string, inputFile string, run job.Run, srunPrefix string, baseDir string) (string, string, error) {
	err := run.Validate()
	if err != nil {
		return "", "", err
	}

	outputDir := LegacyOutputDir(run)

	var args []string
	if srunPrefix != "" {
		args = append(args, srunPrefix)
	}
	args = append(args, executable)
	if inputFile != "" {
		args = append(args, inputFile)
	}
	args = append(args, resolutionArgs(run.Resolution)...)
	args = append(args, domainArgs(run.DomainLength, BoundsCentered)...)
	args = append(args, "outdir="+outputDir)

	return strings.Join(args, " "), filepath.Join(baseDir, outputDir), nil
}

// LegacyCommand returns the command to run Cholla for a run which domain and resolution are given by hand.
// The output directory is created relative to baseDir.
func LegacyCommand(executable string, inputFile string, run job.Run, srunPrefix string, baseDir string) (string, error) {
	cmd, outputDir, err := LegacyCommandLine(executable, inputFile, run, srunPrefix, baseDir)
	if err != nil {
		return "", err
	}
	err = EnsureDir(outputDir)
	if err != nil {
		return "", err
	}
	return cmd, nil
}
