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

	"github.com/gvallee/cholla_scaling/tools/internal/pkg/cholla"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/config"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/job"
	"github.com/gvallee/go_util/pkg/util"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose mode")
	help := flag.Bool("h", false, "Help message")
	ranks := flag.String("ranks", "", "Comma-separated list of rank counts, e.g., 1,8,64")

	flag.Parse()

	cmdName := filepath.Base(os.Args[0])
	if *help || *ranks == "" {
		fmt.Printf("%s displays the parameters of the weak scaling runs for a set of rank counts", cmdName)
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		if *help {
			os.Exit(0)
		}
		os.Exit(1)
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

	failed := false
	for _, r := range listRanks {
		params, err := job.Compute(r)
		if err != nil {
			fmt.Printf("ERROR: %s\n", err)
			failed = true
			continue
		}
		fmt.Printf("%d ranks: %d nodes, resolution %d, domain length %s, output directory %s\n",
			params.NumRanks,
			params.NumNodes,
			params.Resolution,
			cholla.FormatFloat(params.DomainLength),
			cholla.OutputDirName(params.NumRanks, params.Resolution))
	}
	if failed {
		os.Exit(1)
	}
}
