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

	"github.com/gvallee/cholla_scaling/tools/internal/pkg/config"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/slurm"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/submit"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/timer"
	"github.com/gvallee/go_util/pkg/util"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose mode")
	help := flag.Bool("h", false, "Help message")
	configFile := flag.String("config", "campaign.toml", "TOML file describing the scaling campaign")
	ranks := flag.String("ranks", "", "Comma-separated list of rank counts overriding the ones of the campaign, e.g., 1,8,64")
	doSubmit := flag.Bool("submit", false, "Submit the jobs instead of only displaying the commands")

	flag.Parse()

	cmdName := filepath.Base(os.Args[0])
	if *help {
		fmt.Printf("%s generates and submits the Slurm jobs of a Cholla weak scaling campaign", cmdName)
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

	listRanks, err := config.ParseRanks(*ranks)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	campaign, err := config.LoadWithRanks(*configFile, listRanks)
	if err != nil {
		fmt.Printf("ERROR: unable to load campaign: %s\n", err)
		os.Exit(1)
	}
	if *doSubmit {
		campaign.Submit = true
	}
	if campaign.Submit {
		_, err = slurm.Detect()
		if err != nil {
			fmt.Printf("ERROR: jobs cannot be submitted: %s\n", err)
			os.Exit(1)
		}
	}

	t := timer.Start()
	submitter := submit.NewSubmitter()
	failures := 0
	for _, j := range campaign.Jobs() {
		_, err := submitter.Submit(j)
		if err != nil {
			fmt.Printf("ERROR: job with %d ranks: %s\n\n", j.NumRanks, err)
			failures++
		}
	}
	for _, j := range campaign.LegacyJobs() {
		_, err := submitter.SubmitLegacy(j)
		if err != nil {
			fmt.Printf("ERROR: job with %d ranks: %s\n\n", j.Run.NumRanks, err)
			failures++
		}
	}
	log.Printf("Campaign handled in %s\n", t.Stop())

	if failures > 0 {
		fmt.Printf("%d job(s) failed\n", failures)
		os.Exit(1)
	}
}
