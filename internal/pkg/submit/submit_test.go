//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package submit

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gvallee/cholla_scaling/tools/internal/pkg/job"
	"github.com/gvallee/cholla_scaling/tools/pkg/errors"
	"github.com/gvallee/go_util/pkg/util"
)

type recordingRunner struct {
	commands []string
	err      error
}

func (r *recordingRunner) Run(command string) error {
	r.commands = append(r.commands, command)
	return r.err
}

func newTestSubmitter(r Runner) (*Submitter, *bytes.Buffer) {
	var out bytes.Buffer
	s := NewSubmitter()
	s.Runner = r
	s.Output = &out
	return s, &out
}

func TestSubmit(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "submit-")
	if err != nil {
		t.Fatalf("unable to create temporary directory: %s", err)
	}
	defer os.RemoveAll(tempDir)

	tests := []struct {
		ranks          int
		submit         bool
		expectedDir    string
		expectedOutput string
	}{
		{
			ranks:          512,
			submit:         false,
			expectedDir:    "ranks_512_resolution_2048",
			expectedOutput: "sbatch --account=csc380 --nodes=64 --time=10 --mail-user=user@example.org --mail-type=ALL --job-name=cholla_mhd_scaling_test_512 --wrap='srun --nodes=64 --ntasks=512 --cpus-per-task=7 --gpus-per-task=1 --gpu-bind=closest cholla input.txt nx=2048 ny=2048 nz=2048 xlen=8.0 ylen=8.0 zlen=8.0 outdir=%s'",
		},
		{
			ranks:          1,
			submit:         true,
			expectedDir:    "ranks_1_resolution_256",
			expectedOutput: "sbatch --account=csc380 --nodes=1 --time=10 --mail-user=user@example.org --mail-type=ALL --job-name=cholla_mhd_scaling_test_1 --wrap='srun --nodes=1 --ntasks=1 --cpus-per-task=7 --gpus-per-task=1 --gpu-bind=closest cholla input.txt nx=256 ny=256 nz=256 xlen=1.0 ylen=1.0 zlen=1.0 outdir=%s'",
		},
	}

	for _, tt := range tests {
		runner := new(recordingRunner)
		s, out := newTestSubmitter(runner)
		j := Job{
			Account:    "csc380",
			Time:       "10",
			NumRanks:   tt.ranks,
			Executable: "cholla",
			InputFile:  "input.txt",
			ScalingDir: tempDir,
			JobName:    fmt.Sprintf("cholla_mhd_scaling_test_%d", tt.ranks),
			MailUser:   "user@example.org",
			Submit:     tt.submit,
		}
		cmd, err := s.Submit(j)
		if err != nil {
			t.Fatalf("Submit() failed: %s", err)
		}
		outputDir := filepath.Join(tempDir, tt.expectedDir)
		expected := fmt.Sprintf(tt.expectedOutput, outputDir)
		if cmd != expected {
			t.Fatalf("Submit() returned\n%s\ninstead of\n%s", cmd, expected)
		}
		if !util.PathExists(outputDir) {
			t.Fatalf("%s was not created", outputDir)
		}
		if !strings.Contains(out.String(), "The sbatch command is:\n "+expected) {
			t.Fatalf("command was not displayed: %s", out.String())
		}
		if tt.submit {
			if len(runner.commands) != 1 || runner.commands[0] != expected {
				t.Fatalf("the runner received %v", runner.commands)
			}
			if !strings.Contains(out.String(), "Submitting Job") {
				t.Fatalf("missing submission message: %s", out.String())
			}
		} else {
			if len(runner.commands) != 0 {
				t.Fatalf("job was submitted during a dry run: %v", runner.commands)
			}
			if !strings.Contains(out.String(), "Job not submitted") {
				t.Fatalf("missing dry run message: %s", out.String())
			}
		}

		// Same inputs give the same command
		again, err := s.Command(j)
		if err != nil {
			t.Fatalf("Command() failed: %s", err)
		}
		if again != cmd {
			t.Fatalf("commands differ for identical inputs:\n%s\n%s", cmd, again)
		}
	}
}

func TestSubmitNotACube(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "submit-")
	if err != nil {
		t.Fatalf("unable to create temporary directory: %s", err)
	}
	defer os.RemoveAll(tempDir)

	runner := new(recordingRunner)
	s, _ := newTestSubmitter(runner)
	cmd, err := s.Submit(Job{Account: "csc380", Time: "10", NumRanks: 10, Executable: "cholla", ScalingDir: tempDir, Submit: true})
	if err == nil {
		t.Fatalf("Submit() succeeded for 10 ranks")
	}
	if !errors.IsCategory(err, errors.ErrConfig) {
		t.Fatalf("Submit() returned %q instead of a configuration error", err)
	}
	if cmd != "" {
		t.Fatalf("Submit() returned a command: %s", cmd)
	}
	if len(runner.commands) != 0 {
		t.Fatalf("a job was submitted: %v", runner.commands)
	}
	entries, err := ioutil.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("unable to read %s: %s", tempDir, err)
	}
	if len(entries) != 0 {
		t.Fatalf("%d entries created in %s", len(entries), tempDir)
	}
}

func TestSubmitInvalidOptions(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "submit-")
	if err != nil {
		t.Fatalf("unable to create temporary directory: %s", err)
	}
	defer os.RemoveAll(tempDir)

	tests := []struct {
		name string
		job  Job
	}{
		{"no account", Job{Time: "10", NumRanks: 8, Executable: "cholla", ScalingDir: tempDir, Submit: true}},
		{"invalid time", Job{Account: "csc380", Time: "ten", NumRanks: 8, Executable: "cholla", ScalingDir: tempDir, Submit: true}},
		{"quote in input file", Job{Account: "csc380", Time: "10", NumRanks: 8, Executable: "cholla", InputFile: "it's.txt", ScalingDir: tempDir, Submit: true}},
	}

	for _, tt := range tests {
		runner := new(recordingRunner)
		s, _ := newTestSubmitter(runner)
		cmd, err := s.Submit(tt.job)
		if err == nil {
			t.Fatalf("%s: Submit() succeeded", tt.name)
		}
		if cmd != "" {
			t.Fatalf("%s: Submit() returned a command: %s", tt.name, cmd)
		}
		if len(runner.commands) != 0 {
			t.Fatalf("%s: a job was submitted: %v", tt.name, runner.commands)
		}
		entries, err := ioutil.ReadDir(tempDir)
		if err != nil {
			t.Fatalf("unable to read %s: %s", tempDir, err)
		}
		if len(entries) != 0 {
			t.Fatalf("%s: %d entries created in %s", tt.name, len(entries), tempDir)
		}
	}

	legacy := LegacyJob{
		Time:       "60",
		Executable: "cholla",
		BaseDir:    tempDir,
		Run:        job.Run{DomainLength: 4.096, Resolution: 512, NumRanks: 8},
		Submit:     true,
	}
	runner := new(recordingRunner)
	s, _ := newTestSubmitter(runner)
	_, err = s.SubmitLegacy(legacy)
	if err == nil {
		t.Fatalf("SubmitLegacy() succeeded without account")
	}
	entries, err := ioutil.ReadDir(tempDir)
	if err != nil {
		t.Fatalf("unable to read %s: %s", tempDir, err)
	}
	if len(entries) != 0 {
		t.Fatalf("%d entries created in %s by a legacy job", len(entries), tempDir)
	}
}

func TestSubmitRunnerFailure(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "submit-")
	if err != nil {
		t.Fatalf("unable to create temporary directory: %s", err)
	}
	defer os.RemoveAll(tempDir)

	runner := &recordingRunner{err: fmt.Errorf("sbatch: error: invalid account")}
	s, _ := newTestSubmitter(runner)
	cmd, err := s.Submit(Job{Account: "csc380", Time: "10", NumRanks: 8, Executable: "cholla", ScalingDir: tempDir, Submit: true})
	if err == nil {
		t.Fatalf("Submit() did not report the failure of the runner")
	}
	if cmd == "" {
		t.Fatalf("the command is not returned when the submission fails")
	}
	if len(runner.commands) != 1 {
		t.Fatalf("the runner was called %d times", len(runner.commands))
	}
}

func TestSubmitLegacy(t *testing.T) {
	tempDir, err := ioutil.TempDir("", "submit-")
	if err != nil {
		t.Fatalf("unable to create temporary directory: %s", err)
	}
	defer os.RemoveAll(tempDir)

	runner := new(recordingRunner)
	s, _ := newTestSubmitter(runner)
	j := LegacyJob{
		Account:    "ast181",
		Time:       "60",
		Executable: "cholla",
		InputFile:  "disk.txt",
		BaseDir:    tempDir,
		Run:        job.Run{DomainLength: 8.192, Resolution: 4096, NumRanks: 4096},
		Srun:       true,
	}
	cmd, err := s.SubmitLegacy(j)
	if err != nil {
		t.Fatalf("SubmitLegacy() failed: %s", err)
	}
	expected := "sbatch -A ast181 -N 512 -t 60 --wrap='srun -N512 -n4096 -c7 --gpus-per-task=1 --gpu-bind=closest cholla disk.txt nx=4096 ny=4096 nz=4096 xlen=8.192 ylen=8.192 zlen=8.192 xmin=-4.096 ymin=-4.096 zmin=-4.096 outdir=out/ranks_4096_domain_8.192_4096/'"
	if cmd != expected {
		t.Fatalf("SubmitLegacy() returned\n%s\ninstead of\n%s", cmd, expected)
	}
	if len(runner.commands) != 0 {
		t.Fatalf("job was submitted during a dry run")
	}
}
