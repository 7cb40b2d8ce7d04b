//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package slurm

import (
	"testing"
)

func TestValidateTime(t *testing.T) {
	tests := []struct {
		time  string
		valid bool
	}{
		{"10", true},
		{"10:30", true},
		{"2:10:30", true},
		{"1-12", true},
		{"1-12:30", true},
		{"1-12:30:15", true},
		{"", false},
		{"ten", false},
		{"1:2:3:4", false},
		{"1-2-3", false},
		{"-10", false},
	}

	for _, tt := range tests {
		err := ValidateTime(tt.time)
		if (err == nil) != tt.valid {
			t.Fatalf("ValidateTime(%q) returned %v", tt.time, err)
		}
	}
}

func TestSbatchCommand(t *testing.T) {
	tests := []struct {
		opts           SbatchOptions
		expectedOutput string
	}{
		{
			opts: SbatchOptions{
				Account: "csc380",
				Time:    "10",
				Nodes:   64,
				Wrap:    "srun hostname",
			},
			expectedOutput: "sbatch --account=csc380 --nodes=64 --time=10 --wrap='srun hostname'",
		},
		{
			opts: SbatchOptions{
				Account:  "csc380",
				Time:     "0:30:00",
				Nodes:    1,
				Wrap:     "srun hostname",
				MailUser: "user@example.org",
				JobName:  "cholla_mhd_scaling_test_1",
			},
			expectedOutput: "sbatch --account=csc380 --nodes=1 --time=0:30:00 --mail-user=user@example.org --mail-type=ALL --job-name=cholla_mhd_scaling_test_1 --wrap='srun hostname'",
		},
	}

	for _, tt := range tests {
		cmd, err := SbatchCommand(tt.opts)
		if err != nil {
			t.Fatalf("SbatchCommand() failed: %s", err)
		}
		if cmd != tt.expectedOutput {
			t.Fatalf("SbatchCommand() returned\n%s\ninstead of\n%s", cmd, tt.expectedOutput)
		}
	}
}

func TestSbatchCommandInvalid(t *testing.T) {
	valid := SbatchOptions{Account: "csc380", Time: "10", Nodes: 1, Wrap: "srun hostname"}

	noAccount := valid
	noAccount.Account = ""
	noNodes := valid
	noNodes.Nodes = 0
	badTime := valid
	badTime.Time = "soon"
	quote := valid
	quote.Wrap = "echo 'hi'"
	empty := valid
	empty.Wrap = ""

	for _, opts := range []SbatchOptions{noAccount, noNodes, badTime, quote, empty} {
		_, err := SbatchCommand(opts)
		if err == nil {
			t.Fatalf("SbatchCommand(%+v) succeeded", opts)
		}
		_, err = LegacySbatchCommand(opts)
		if err == nil {
			t.Fatalf("LegacySbatchCommand(%+v) succeeded", opts)
		}
	}
}

func TestLegacySbatchCommand(t *testing.T) {
	cmd, err := LegacySbatchCommand(SbatchOptions{Account: "ast181", Time: "60", Nodes: 8, Wrap: "cholla", MailUser: "user@example.org"})
	if err != nil {
		t.Fatalf("LegacySbatchCommand() failed: %s", err)
	}
	expected := "sbatch -A ast181 -N 8 -t 60 --mail-user=user@example.org --mail-type=BEGIN,END --wrap='cholla'"
	if cmd != expected {
		t.Fatalf("LegacySbatchCommand() returned\n%s\ninstead of\n%s", cmd, expected)
	}
}

func TestSrunCommand(t *testing.T) {
	if SrunCommand(64, 512) != "srun --nodes=64 --ntasks=512 --cpus-per-task=7 --gpus-per-task=1 --gpu-bind=closest" {
		t.Fatalf("SrunCommand() returned %s", SrunCommand(64, 512))
	}
	if LegacySrunPrefix(8, 64) != "srun -N8 -n64 -c7 --gpus-per-task=1 --gpu-bind=closest" {
		t.Fatalf("LegacySrunPrefix() returned %s", LegacySrunPrefix(8, 64))
	}
}
