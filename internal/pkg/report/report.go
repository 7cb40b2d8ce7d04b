//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package report

import (
	"fmt"
	"io/ioutil"
	"log"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/hash"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/scale"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/series"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/timings"
	scalingerrors "github.com/gvallee/cholla_scaling/tools/pkg/errors"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	// SummaryJSONFilename is the name of the machine-readable summary of a dataset
	SummaryJSONFilename = "summary.json"

	// SummaryHTMLFilename is the name of the human-readable summary of a dataset
	SummaryHTMLFilename = "summary.html"

	msPerStepKey = "ms_per_step"
)

// Columns of a timing file that describe the run rather than timing it
var parameters = map[string]bool{
	timings.RanksKey: true,
	"nx":             true,
	"ny":             true,
	"nz":             true,
	"n_omp":          true,
	timings.StepsKey: true,
}

// escape makes a metric name usable as a single element of a gjson/sjson path
func escape(key string) string {
	r := strings.NewReplacer(".", "\\.", "*", "\\*", "?", "\\?", "|", "\\|", "#", "\\#")
	return r.Replace(key)
}

func timingMetrics(table *timings.Table) []string {
	var metrics []string
	for _, m := range table.Metrics() {
		if !parameters[m] {
			metrics = append(metrics, m)
		}
	}
	return metrics
}

func summaryJSON(dir string, table *timings.Table) (string, error) {
	var err error
	doc := "{}"
	doc, err = sjson.Set(doc, "dataset", dir)
	if err != nil {
		return "", err
	}
	doc, err = sjson.Set(doc, "metrics", table.Metrics())
	if err != nil {
		return "", err
	}

	checksums := make(map[int]string)
	if len(table.Sources) > 0 {
		checksums, err = hash.Files(table.Sources)
		if err != nil {
			return "", errors.Wrap(err, "unable to compute checksums")
		}
	}

	perStep := make(map[string][]float64)
	for _, m := range timingMetrics(table) {
		s, err := series.MsPerStep(table, m, m)
		if err != nil {
			return "", err
		}
		perStep[m] = s.Y
	}

	doc, err = sjson.SetRaw(doc, "runs", "[]")
	if err != nil {
		return "", err
	}
	for i, r := range table.Ranks() {
		run := "{}"
		run, err = sjson.Set(run, timings.RanksKey, r)
		if err != nil {
			return "", err
		}
		if source, ok := table.Sources[r]; ok {
			run, err = sjson.Set(run, "source", source)
			if err != nil {
				return "", err
			}
			run, err = sjson.Set(run, "sha256", checksums[r])
			if err != nil {
				return "", err
			}
		}
		for _, m := range table.Metrics() {
			v, _ := table.Value(r, m)
			run, err = sjson.Set(run, "metrics."+escape(m), v)
			if err != nil {
				return "", err
			}
		}
		for _, m := range timingMetrics(table) {
			run, err = sjson.Set(run, msPerStepKey+"."+escape(m), perStep[m][i])
			if err != nil {
				return "", err
			}
		}
		doc, err = sjson.SetRaw(doc, "runs.-1", run)
		if err != nil {
			return "", err
		}
	}

	return doc, nil
}

func summaryMarkdown(dir string, table *timings.Table) (string, error) {
	var md strings.Builder
	md.WriteString(fmt.Sprintf("# Scaling summary of %s\n\n", dir))
	md.WriteString(fmt.Sprintf("%d runs. Average time per step, the first step is not accounted for.\n\n", table.NumRuns()))

	header := "| Ranks |"
	separator := "|---|"
	var columns [][]float64
	for _, m := range timingMetrics(table) {
		s, err := series.MsPerStep(table, m, m)
		if err != nil {
			return "", err
		}
		unitID, values, err := scale.Float64s("milliseconds", s.Y)
		if err != nil {
			return "", err
		}
		header += fmt.Sprintf(" %s (%s) |", m, unitID)
		separator += "---|"
		columns = append(columns, values)
	}
	if table.Has("Total") {
		s, err := series.CellsPerSecondPerGPU(table, "Total", "Total")
		if err == nil {
			unitID, values, err := scale.Float64s("cells/s", s.Y)
			if err != nil {
				return "", err
			}
			header += fmt.Sprintf(" Throughput per GPU (%s) |", unitID)
			separator += "---|"
			columns = append(columns, values)
		}
	}
	md.WriteString(header + "\n" + separator + "\n")

	for i, r := range table.Ranks() {
		md.WriteString(fmt.Sprintf("| %d |", r))
		for _, c := range columns {
			md.WriteString(fmt.Sprintf(" %.3f |", c[i]))
		}
		md.WriteString("\n")
	}
	return md.String(), nil
}

// WriteSummary creates the JSON and HTML summaries of a dataset in dir and returns their paths
func WriteSummary(dir string, datasetName string, table *timings.Table) (string, string, error) {
	if table == nil || table.NumRuns() == 0 {
		return "", "", scalingerrors.New(scalingerrors.ErrNotFound, fmt.Errorf("no run to summarize"))
	}

	doc, err := summaryJSON(datasetName, table)
	if err != nil {
		return "", "", errors.Wrap(err, "unable to create the JSON summary")
	}
	jsonPath := filepath.Join(dir, SummaryJSONFilename)
	err = ioutil.WriteFile(jsonPath, []byte(doc), 0644)
	if err != nil {
		return "", "", err
	}

	mdContent, err := summaryMarkdown(datasetName, table)
	if err != nil {
		return "", "", errors.Wrap(err, "unable to create the summary table")
	}
	htmlContent := markdown.ToHTML([]byte(mdContent), nil, nil)
	htmlPath := filepath.Join(dir, SummaryHTMLFilename)
	err = ioutil.WriteFile(htmlPath, htmlContent, 0644)
	if err != nil {
		return "", "", err
	}

	log.Printf("Summary of %s written to %s and %s\n", datasetName, jsonPath, htmlPath)
	return jsonPath, htmlPath, nil
}

func floats(results []gjson.Result) []float64 {
	var values []float64
	for _, r := range results {
		values = append(values, r.Float())
	}
	return values
}

// LoadReference reads the time per step of a metric from a summary created by WriteSummary.
// When rescale is true, the values are converted to cells per second per GPU.
func LoadReference(path string, metric string, rescale bool) (series.Series, error) {
	s := series.Series{}
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return s, scalingerrors.New(scalingerrors.ErrNotFound, err)
	}
	if !gjson.ValidBytes(content) {
		return s, fmt.Errorf("%s is not a valid summary", path)
	}

	dataset := gjson.GetBytes(content, "dataset").String()
	s.Name = fmt.Sprintf("%s %s", metric, filepath.Base(dataset))
	s.Label = s.Name

	s.X = floats(gjson.GetBytes(content, "runs.#."+timings.RanksKey).Array())
	s.Y = floats(gjson.GetBytes(content, "runs.#."+msPerStepKey+"."+escape(metric)).Array())
	if len(s.X) == 0 || len(s.X) != len(s.Y) {
		return s, scalingerrors.New(scalingerrors.ErrMissingKey, fmt.Errorf("%s is not available for all the runs of %s", metric, path))
	}

	if rescale {
		var dims [3][]float64
		for i, key := range []string{"nx", "ny", "nz"} {
			dims[i] = floats(gjson.GetBytes(content, "runs.#.metrics."+key).Array())
			if len(dims[i]) != len(s.X) {
				return s, scalingerrors.New(scalingerrors.ErrMissingKey, fmt.Errorf("%s is not available for all the runs of %s", key, path))
			}
		}
		for i := range s.Y {
			cells := dims[0][i] * dims[1][i] * dims[2][i] / s.X[i]
			s.Y[i] = cells / (s.Y[i] / 1000)
		}
	}

	return s, nil
}
