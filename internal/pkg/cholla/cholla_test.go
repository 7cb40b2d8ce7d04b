//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package cholla

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/gvallee/cholla_scaling/tools/internal/pkg/job"
	"github.com/gvallee/go_util/pkg/util"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		input          float64
		expectedOutput string
	}{
		{8.0, "8.0"},
		{1, "1.0"},
		{4.096, "4.096"},
		{2.048, "2.048"},
		{0.5, "0.5"},
		{20.48, "20.48"},
	}

	for _, tt := range tests {
		if FormatFloat(tt.input) != tt.expectedOutput {
			t.Fatalf("FormatFloat(%v) returned %s instead of %s", tt.input, FormatFloat(tt.input), tt.expectedOutput)
		}
	}
}

func TestOutputDirName(t *testing.T) {
	if OutputDirName(512, 2048) != "ranks_512_resolution_2048" {
		t.Fatalf("OutputDirName() returned %s", OutputDirName(512, 2048))
	}

	seen := make(map[string]bool)
	for _, ranks := range []int{1, 8, 64, 512} {
		for _, res := range []int{256, 512, 1024, 2048} {
			name := OutputDirName(ranks, res)
			if seen[name] {
				t.Fatalf("%s is used by more than one configuration", name)
			}
			seen[name] = true
		}
	}

	legacyTests := []struct {
		run      job.Run
		expected string
	}{
		{job.Run{DomainLength: 4.096, Resolution: 1024, NumRanks: 64}, "out/ranks_64_domain_4.096_1024/"},
		{job.Run{DomainLength: 8.0, Resolution: 2048, NumRanks: 512}, "out/ranks_512_domain_8.0_2048/"},
	}
	for _, tt := range legacyTests {
		legacy := LegacyOutputDir(tt.run)
		if legacy != tt.expected {
			t.Fatalf("LegacyOutputDir() returned %s instead of %s", legacy, tt.expected)
		}
	}
}

func TestCommandLine(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "cholla-")
	if err != nil {
		t.Fatalf("unable to create temporary directory: %s", err)
	}
	defer os.RemoveAll(tempDir)

	params, err := job.Compute(8)
	if err != nil {
		t.Fatalf("job.Compute() failed: %s", err)
	}
	cmd, outputDir, err := CommandLine(CommandConfig{Executable: "cholla", ScalingDir: tempDir, Params: params})
	if err != nil {
		t.Fatalf("CommandLine() failed: %s", err)
	}
	if outputDir != filepath.Join(tempDir, "ranks_8_resolution_512") {
		t.Fatalf("CommandLine() returned output directory %s", outputDir)
	}
	if cmd != "cholla nx=512 ny=512 nz=512 xlen=2.0 ylen=2.0 zlen=2.0 outdir="+outputDir {
		t.Fatalf("CommandLine() returned %s", cmd)
	}

	run := job.Run{DomainLength: 8.0, Resolution: 2048, NumRanks: 512}
	cmd, legacyDir, err := LegacyCommandLine("cholla", "", run, "", tempDir)
	if err != nil {
		t.Fatalf("LegacyCommandLine() failed: %s", err)
	}
	if legacyDir != filepath.Join(tempDir, "out", "ranks_512_domain_8.0_2048") {
		t.Fatalf("LegacyCommandLine() returned output directory %s", legacyDir)
	}
	if cmd != "cholla nx=2048 ny=2048 nz=2048 xlen=8.0 ylen=8.0 zlen=8.0 xmin=-4.0 ymin=-4.0 zmin=-4.0 outdir=out/ranks_512_domain_8.0_2048/" {
		t.Fatalf("LegacyCommandLine() returned %s", cmd)
	}

	entries, err := ioutil.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("unable to read %s: %s", tempDir, err)
	}
	if len(entries) != 0 {
		t.Fatalf("%d entries created in %s", len(entries), tempDir)
	}
}

func TestCommand(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "cholla-")
	if err != nil {
		t.Fatalf("unable to create temporary directory: %s", err)
	}
	defer os.RemoveAll(tempDir)

	params, err := job.Compute(512)
	if err != nil {
		t.Fatalf("job.Compute() failed: %s", err)
	}

	outputDir := filepath.Join(tempDir, "ranks_512_resolution_2048")
	tests := []struct {
		bounds         BoundsStyle
		expectedOutput string
	}{
		{
			bounds:         BoundsLength,
			expectedOutput: "/opt/cholla/bin/cholla.mhd.frontier input.txt nx=2048 ny=2048 nz=2048 xlen=8.0 ylen=8.0 zlen=8.0 outdir=" + outputDir,
		},
		{
			bounds:         BoundsCentered,
			expectedOutput: "/opt/cholla/bin/cholla.mhd.frontier input.txt nx=2048 ny=2048 nz=2048 xlen=8.0 ylen=8.0 zlen=8.0 xmin=-4.0 ymin=-4.0 zmin=-4.0 outdir=" + outputDir,
		},
	}

	for _, tt := range tests {
		cfg := CommandConfig{
			Executable: "/opt/cholla/bin/cholla.mhd.frontier",
			InputFile:  "input.txt",
			ScalingDir: tempDir,
			Params:     params,
			Bounds:     tt.bounds,
		}
		cmd, err := Command(cfg)
		if err != nil {
			t.Fatalf("Command() failed: %s", err)
		}
		if cmd != tt.expectedOutput {
			t.Fatalf("Command() returned\n%s\ninstead of\n%s", cmd, tt.expectedOutput)
		}
		if !util.PathExists(outputDir) {
			t.Fatalf("%s was not created", outputDir)
		}

		// A second call must produce the same command even if the directory now exists
		cmd2, err := Command(cfg)
		if err != nil {
			t.Fatalf("second call to Command() failed: %s", err)
		}
		if cmd2 != cmd {
			t.Fatalf("Command() is not deterministic:\n%s\n%s", cmd, cmd2)
		}
	}

	_, err = Command(CommandConfig{Executable: "cholla", ScalingDir: tempDir})
	if err == nil {
		t.Fatalf("Command() succeeded without job parameters")
	}
}

func TestLegacyCommand(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "cholla-")
	if err != nil {
		t.Fatalf("unable to create temporary directory: %s", err)
	}
	defer os.RemoveAll(tempDir)

	run := job.Run{DomainLength: 4.096, Resolution: 512, NumRanks: 8}
	cmd, err := LegacyCommand("cholla", "disk.txt", run, "srun -N1 -n8 -c7 --gpus-per-task=1 --gpu-bind=closest", tempDir)
	if err != nil {
		t.Fatalf("LegacyCommand() failed: %s", err)
	}
	expected := "srun -N1 -n8 -c7 --gpus-per-task=1 --gpu-bind=closest cholla disk.txt nx=512 ny=512 nz=512 xlen=4.096 ylen=4.096 zlen=4.096 xmin=-2.048 ymin=-2.048 zmin=-2.048 outdir=out/ranks_8_domain_4.096_512/"
	if cmd != expected {
		t.Fatalf("LegacyCommand() returned\n%s\ninstead of\n%s", cmd, expected)
	}
	if !util.PathExists(filepath.Join(tempDir, "out", "ranks_8_domain_4.096_512")) {
		t.Fatalf("output directory was not created")
	}
}

func TestParseBoundsStyle(t *testing.T) {
	tests := []struct {
		input    string
		expected BoundsStyle
		valid    bool
	}{
		{"", BoundsLength, true},
		{"length", BoundsLength, true},
		{"Centered", BoundsCentered, true},
		{"symmetric", BoundsLength, false},
	}
	for _, tt := range tests {
		style, err := ParseBoundsStyle(tt.input)
		if (err == nil) != tt.valid {
			t.Fatalf("ParseBoundsStyle(%q) returned %v", tt.input, err)
		}
		if style != tt.expected {
			t.Fatalf("ParseBoundsStyle(%q) returned %d instead of %d", tt.input, style, tt.expected)
		}
	}
}
