//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/gvallee/cholla_scaling/tools/internal/pkg/plot"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/timer"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/timings"
	"github.com/gvallee/go_util/pkg/util"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose mode")
	help := flag.Bool("h", false, "Help message")
	file := flag.String("file", "disk_scaling.log", "Log aggregating the timings of all the runs")
	gravOverLogN := flag.Bool("grav-over-logn", false, "Divide the Poisson solver time by log(N)")
	outputDir := flag.String("output-dir", ".", "Where the plot is created")

	flag.Parse()

	cmdName := filepath.Base(os.Args[0])
	if *help {
		fmt.Printf("%s plots the timings of an aggregated scaling log", cmdName)
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

	t := timer.Start()
	table, err := timings.ParseMultiRunFile(*file)
	if err != nil {
		fmt.Printf("ERROR: unable to parse %s: %s\n", *file, err)
		os.Exit(1)
	}
	for _, r := range table.Ranks() {
		log.Printf("-> %d ranks loaded\n", r)
	}

	err = os.MkdirAll(*outputDir, 0755)
	if err != nil {
		fmt.Printf("ERROR: unable to create %s: %s\n", *outputDir, err)
		os.Exit(1)
	}
	fig := plot.LogScaling(table, *gravOverLogN)
	_, err = plot.Create(*outputDir, fig)
	if err != nil {
		fmt.Printf("ERROR: unable to create %s: %s\n", fig.Output, err)
		os.Exit(1)
	}
	fmt.Printf("%s created in %s\n", filepath.Join(*outputDir, fig.Output), t.Stop())
}
