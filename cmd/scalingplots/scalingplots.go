//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gvallee/cholla_scaling/tools/internal/pkg/plot"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/report"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/series"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/timer"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/timings"
	"github.com/gvallee/go_util/pkg/util"
)

const defaultDataset = "2023-05-02-plmc"

func promptDataset() string {
	fmt.Print("Input directory name: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return defaultDataset
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultDataset
	}
	return line
}

func reference(path string, rescale bool) series.Series {
	if path == "" {
		return series.Reference2019(rescale)
	}
	ref, err := report.LoadReference(path, "Total", rescale)
	if err != nil {
		fmt.Printf("WARNING: unable to load reference from %s, using 2019 data: %s\n", path, err)
		return series.Reference2019(rescale)
	}
	return ref
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose mode")
	help := flag.Bool("h", false, "Help message")
	dataset := flag.String("dir", "", "Name of the dataset directory; prompted for when not specified")
	dataDir := flag.String("data-dir", "data", "Directory where all the datasets are")
	outputDir := flag.String("output-dir", ".", "Where the plots are created")
	referenceFile := flag.String("reference", "", "Summary of a previous dataset to compare with instead of the 2019 data")

	flag.Parse()

	cmdName := filepath.Base(os.Args[0])
	if *help {
		fmt.Printf("%s plots the results of a weak scaling campaign", cmdName)
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	logFile := util.OpenLogFile("cholla_scaling", cmdName)
	defer logFile.Close()
	if *verbose {
		multiWriters := io.MultiWriter(os.Stdout, logFile)
		log.SetOutput(multiWriters)
	} else {
		log.SetOutput(ioutil.Discard)
	}

	if *dataset == "" {
		*dataset = promptDataset()
	}
	datasetDir := filepath.Join(*dataDir, *dataset)
	if !util.PathExists(datasetDir) {
		fmt.Printf("ERROR: %s does not exist\n", datasetDir)
		os.Exit(1)
	}
	err := os.MkdirAll(*outputDir, 0755)
	if err != nil {
		fmt.Printf("ERROR: unable to create %s: %s\n", *outputDir, err)
		os.Exit(1)
	}

	totalNumSteps := 3
	currentStep := 1
	fmt.Printf("* Step %d/%d: loading %s...\n", currentStep, totalNumSteps, datasetDir)
	t := timer.Start()
	table, err := timings.LoadDataset(datasetDir)
	duration := t.Stop()
	if err != nil {
		fmt.Printf("ERROR: unable to load dataset: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("Step completed in %s\n", duration)
	currentStep++

	fmt.Printf("\n* Step %d/%d: creating plots...\n", currentStep, totalNumSteps)
	t = timer.Start()
	figures := []*plot.Figure{
		plot.MsPerGPU(table, reference(*referenceFile, false)),
		plot.CellsPerSecond(table, reference(*referenceFile, true)),
	}
	for _, fig := range figures {
		script, err := plot.Create(*outputDir, fig)
		if err != nil {
			fmt.Printf("ERROR: unable to create %s: %s\n", fig.Output, err)
			if script == "" {
				os.Exit(1)
			}
			continue
		}
		fmt.Printf("%s created\n", filepath.Join(*outputDir, fig.Output))
	}
	fmt.Printf("Step completed in %s\n", t.Stop())
	currentStep++

	fmt.Printf("\n* Step %d/%d: creating summary...\n", currentStep, totalNumSteps)
	t = timer.Start()
	jsonPath, htmlPath, err := report.WriteSummary(*outputDir, *dataset, table)
	duration = t.Stop()
	if err != nil {
		fmt.Printf("ERROR: unable to create summary: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("Summary available in %s and %s\n", jsonPath, htmlPath)
	fmt.Printf("Step completed in %s\n", duration)
}
