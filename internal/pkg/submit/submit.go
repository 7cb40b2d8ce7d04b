//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package submit

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gvallee/cholla_scaling/tools/internal/pkg/cholla"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/job"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/slurm"
	"github.com/gvallee/go_exec/pkg/advexec"
	"github.com/pkg/errors"
)

const shellBin = "/bin/sh"

// Job gathers everything about the submission of a single weak scaling run
type Job struct {
	// Account is the account to charge the job time to
	Account string

	// Time is the maximum wall time of the job
	Time string

	NumRanks int

	// Executable is the path to the Cholla executable
	Executable string

	// InputFile is the path to Cholla's input file
	InputFile string

	// ScalingDir is where the output directories of the runs are created
	ScalingDir string

	JobName  string
	MailUser string

	// Submit specifies whether the job is actually submitted or only displayed
	Submit bool

	Bounds cholla.BoundsStyle
}

// LegacyJob is a run from our first scaling tests, where domain and resolution are given by hand
type LegacyJob struct {
	Account    string
	Time       string
	Executable string
	InputFile  string
	BaseDir    string
	MailUser   string
	Run        job.Run

	// Srun specifies whether the command is prefixed with srun
	Srun   bool
	Submit bool
}

// Runner executes a submission command
type Runner interface {
	Run(command string) error
}

// ShellRunner hands commands to the shell, the way a user would type them
type ShellRunner struct{}

// Run executes a command through the shell
func (r ShellRunner) Run(command string) error {
	var cmd advexec.Advcmd
	cmd.BinPath = shellBin
	cmd.CmdArgs = []string{"-c", command}
	res := cmd.Run()
	if res.Stdout != "" {
		fmt.Print(res.Stdout)
	}
	if res.Err != nil {
		return fmt.Errorf("%s failed: %s - stderr: %s", command, res.Err, res.Stderr)
	}
	return nil
}

// Submitter generates submission commands and submits them if requested
type Submitter struct {
	Runner   Runner
	Topology job.Topology
	Output   io.Writer
}

// NewSubmitter returns a submitter for Frontier that uses the shell to submit jobs
func NewSubmitter() *Submitter {
	s := new(Submitter)
	s.Runner = ShellRunner{}
	s.Topology = job.Frontier
	s.Output = os.Stdout
	return s
}

func (s *Submitter) runOrSkip(command string, submit bool) error {
	fmt.Fprintf(s.Output, "The sbatch command is:\n %s\n", command)
	defer fmt.Fprintln(s.Output)

	if !submit {
		fmt.Fprintln(s.Output, "Job not submitted")
		return nil
	}

	fmt.Fprintln(s.Output, "Submitting Job")
	if s.Runner == nil {
		return fmt.Errorf("undefined runner")
	}
	log.Printf("-> Submitting: %s\n", command)
	return s.Runner.Run(command)
}

// Command derives the parameters of the job and generates its submission command.
// The output directory of the run is created once the command is known to be valid,
// but nothing is submitted.
func (s *Submitter) Command(j Job) (string, error) {
	params, err := s.Topology.Compute(j.NumRanks)
	if err != nil {
		return "", err
	}
	log.Printf("-> %d ranks: %d nodes, resolution %d, domain length %f\n", params.NumRanks, params.NumNodes, params.Resolution, params.DomainLength)

	srunCmd := slurm.SrunCommand(params.NumNodes, params.NumRanks)

	cfg := cholla.CommandConfig{
		Executable: j.Executable,
		InputFile:  j.InputFile,
		ScalingDir: j.ScalingDir,
		Params:     params,
		Bounds:     j.Bounds,
	}
	chollaCmd, outputDir, err := cholla.CommandLine(cfg)
	if err != nil {
		return "", errors.Wrap(err, "unable to generate Cholla command")
	}

	opts := slurm.SbatchOptions{
		Account:  j.Account,
		Time:     j.Time,
		Nodes:    params.NumNodes,
		Wrap:     srunCmd + " " + chollaCmd,
		MailUser: j.MailUser,
		JobName:  j.JobName,
	}
	command, err := slurm.SbatchCommand(opts)
	if err != nil {
		return "", err
	}

	err = cholla.EnsureDir(outputDir)
	if err != nil {
		return "", err
	}
	return command, nil
}

// Submit generates the submission command of a job, displays it and submits it if requested.
// The command is returned even when the submission fails.
func (s *Submitter) Submit(j Job) (string, error) {
	command, err := s.Command(j)
	if err != nil {
		return "", err
	}

	err = s.runOrSkip(command, j.Submit)
	if err != nil {
		return command, errors.Wrapf(err, "unable to submit job for %d ranks", j.NumRanks)
	}
	return command, nil
}

// LegacyCommand generates the submission command of a run from our first scaling tests
func (s *Submitter) LegacyCommand(j LegacyJob) (string, error) {
	nodes, err := j.Run.Nodes(s.Topology)
	if err != nil {
		return "", err
	}

	srunPrefix := ""
	if j.Srun {
		srunPrefix = slurm.LegacySrunPrefix(nodes, j.Run.NumRanks)
	}

	chollaCmd, outputDir, err := cholla.LegacyCommandLine(j.Executable, j.InputFile, j.Run, srunPrefix, j.BaseDir)
	if err != nil {
		return "", errors.Wrap(err, "unable to generate Cholla command")
	}

	opts := slurm.SbatchOptions{
		Account:  j.Account,
		Time:     j.Time,
		Nodes:    nodes,
		Wrap:     chollaCmd,
		MailUser: j.MailUser,
	}
	command, err := slurm.LegacySbatchCommand(opts)
	if err != nil {
		return "", err
	}

	err = cholla.EnsureDir(outputDir)
	if err != nil {
		return "", err
	}
	return command, nil
}

// SubmitLegacy displays the submission command of a run from our first scaling tests and submits it if requested
func (s *Submitter) SubmitLegacy(j LegacyJob) (string, error) {
	cellSize, expectedRanks, ok := j.Run.SanityCheck(s.Topology)
	log.Printf("-> resolution: %f kpc; ranks: %d (expected %f)\n", cellSize, j.Run.NumRanks, expectedRanks)
	if !ok {
		fmt.Fprintf(s.Output, "WARNING: %d ranks do not match a resolution of %d with %d cells per rank\n", j.Run.NumRanks, j.Run.Resolution, s.Topology.ResolutionPerGPU)
	}

	command, err := s.LegacyCommand(j)
	if err != nil {
		return "", err
	}

	err = s.runOrSkip(command, j.Submit)
	if err != nil {
		return command, errors.Wrapf(err, "unable to submit job for %d ranks", j.Run.NumRanks)
	}
	return command, nil
}
