//
// Copyright (c) 2020-2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package timings

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	scalingerrors "github.com/gvallee/cholla_scaling/tools/pkg/errors"
	"github.com/gvallee/go_util/pkg/util"
	"github.com/pkg/errors"
)

const (
	// RunTimingFilename is the name of the timing log Cholla creates in the output directory of a run
	RunTimingFilename = "run_timing.log"

	// RanksKey is the name of the column giving the number of ranks of a run
	RanksKey = "n_proc"

	// StepsKey is the name of the column giving the number of time steps of a run
	StepsKey = "n_steps"

	// RunDirGlob is the pattern matching the output directories of a scaling test
	RunDirGlob = "ranks*"

	commentPrefix = "#"

	// Timing logs start with a few lines of comments, the header is on the fourth line
	// and the data on the fifth one.
	headerLineIdx = 3
	dataLineIdx   = 4
)

// Table gathers the timings of a set of runs. Runs are identified by their number of ranks.
type Table struct {
	metrics []string
	runs    map[int]map[string]float64

	// Sources gives the timing file each run was loaded from, when known
	Sources map[int]string
}

// NewTable creates an empty table with the given metrics
func NewTable(metrics []string) *Table {
	t := new(Table)
	t.metrics = metrics
	t.runs = make(map[int]map[string]float64)
	t.Sources = make(map[int]string)
	return t
}

// Add adds the data of a run. The first value must be the number of ranks; an existing run
// with the same number of ranks is replaced.
func (t *Table) Add(values []float64) (int, error) {
	if len(values) != len(t.metrics) {
		return 0, scalingerrors.New(scalingerrors.ErrInvalidHeader, fmt.Errorf("%d values for %d metrics", len(values), len(t.metrics)))
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("empty run")
	}
	nproc := int(values[0])
	run := make(map[string]float64)
	for i, m := range t.metrics {
		run[m] = values[i]
	}
	t.runs[nproc] = run
	return nproc, nil
}

// Metrics returns the name of all the metrics of the table, in the order of the header
func (t *Table) Metrics() []string {
	return t.metrics
}

// Has checks whether a metric is available
func (t *Table) Has(metric string) bool {
	for _, m := range t.metrics {
		if m == metric {
			return true
		}
	}
	return false
}

// Ranks returns the rank counts of all the runs, in ascending order
func (t *Table) Ranks() []int {
	var ranks []int
	for r := range t.runs {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)
	return ranks
}

// NumRuns returns the number of runs in the table
func (t *Table) NumRuns() int {
	return len(t.runs)
}

// Value returns the value of a metric for the run with nproc ranks
func (t *Table) Value(nproc int, metric string) (float64, bool) {
	run, ok := t.runs[nproc]
	if !ok {
		return 0, false
	}
	v, ok := run[metric]
	return v, ok
}

// Row returns the values of a metric for all the runs, ordered by number of ranks
func (t *Table) Row(metric string) ([]float64, error) {
	if !t.Has(metric) {
		return nil, scalingerrors.New(scalingerrors.ErrMissingKey, fmt.Errorf("%s", metric))
	}
	var row []float64
	for _, r := range t.Ranks() {
		row = append(row, t.runs[r][metric])
	}
	return row, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	reader := bufio.NewReader(f)
	for {
		line, readerErr := reader.ReadString('\n')
		if readerErr != nil && readerErr != io.EOF {
			return nil, readerErr
		}
		if line == "" && readerErr == io.EOF {
			break
		}
		lines = append(lines, strings.TrimRight(line, "\r\n"))
		if readerErr == io.EOF {
			break
		}
	}
	return lines, nil
}

// parseHeader gets the name of the metrics from a header line; the leading '#' is dropped
func parseHeader(line string) ([]string, error) {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, commentPrefix)
	header := strings.Fields(line)
	if len(header) == 0 {
		return nil, scalingerrors.New(scalingerrors.ErrInvalidHeader, fmt.Errorf("empty header"))
	}
	return header, nil
}

func parseValues(line string) ([]float64, error) {
	var values []float64
	for _, t := range strings.Fields(line) {
		v, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid value %s", t)
		}
		values = append(values, v)
	}
	return values, nil
}

// ParseRunTimingFile reads the header and the data of the timing log of a single run
func ParseRunTimingFile(path string) ([]string, []float64, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, nil, err
	}
	if len(lines) <= dataLineIdx {
		return nil, nil, scalingerrors.New(scalingerrors.ErrInvalidHeader, fmt.Errorf("%s has only %d lines", path, len(lines)))
	}

	header, err := parseHeader(lines[headerLineIdx])
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to parse the header of %s", path)
	}
	values, err := parseValues(lines[dataLineIdx])
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to parse the data of %s", path)
	}
	if len(values) != len(header) {
		return nil, nil, scalingerrors.New(scalingerrors.ErrInvalidHeader, fmt.Errorf("%s: %d values for %d metrics", path, len(values), len(header)))
	}
	return header, values, nil
}

// RunDirs returns the output directories of all the runs of a scaling test, in sorted order
func RunDirs(dir string) ([]string, error) {
	dirs, err := filepath.Glob(filepath.Join(dir, RunDirGlob))
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

// LoadDataset loads the timing logs of all the runs of a scaling test.
// Runs without a timing log are reported and skipped.
func LoadDataset(dir string) (*Table, error) {
	dirs, err := RunDirs(dir)
	if err != nil {
		return nil, err
	}
	if len(dirs) == 0 {
		return nil, scalingerrors.New(scalingerrors.ErrNotFound, fmt.Errorf("no run directory in %s", dir))
	}

	var t *Table
	for _, path := range dirs {
		fileName := filepath.Join(path, RunTimingFilename)
		if !util.FileExists(fileName) {
			fmt.Printf("File: %s not found.\n", fileName)
			continue
		}

		header, values, err := ParseRunTimingFile(fileName)
		if err != nil {
			return nil, err
		}
		if t == nil {
			t = NewTable(header)
		}
		nproc, err := t.Add(values)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to add data from %s", fileName)
		}
		t.Sources[nproc] = fileName
		log.Printf("-> Loaded %s (%d ranks)\n", fileName, nproc)
	}

	if t == nil {
		return nil, scalingerrors.New(scalingerrors.ErrNotFound, fmt.Errorf("no %s in %s", RunTimingFilename, dir))
	}
	return t, nil
}

// ParseMultiRunFile reads a timing log aggregating many runs: the header is on the fourth
// line and every following line that is not a comment is a run.
func ParseMultiRunFile(path string) (*Table, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) <= headerLineIdx {
		return nil, scalingerrors.New(scalingerrors.ErrInvalidHeader, fmt.Errorf("%s has only %d lines", path, len(lines)))
	}

	header, err := parseHeader(lines[headerLineIdx])
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse the header of %s", path)
	}

	t := NewTable(header)
	for i := headerLineIdx + 1; i < len(lines); i++ {
		line := lines[i]
		if idx := strings.Index(line, commentPrefix); idx >= 0 {
			line = line[:idx]
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		values, err := parseValues(line)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, i+1)
		}
		_, err = t.Add(values)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, i+1)
		}
	}
	t.Sources = map[int]string{}
	for _, r := range t.Ranks() {
		t.Sources[r] = path
	}
	return t, nil
}
