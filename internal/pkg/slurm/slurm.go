//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package slurm

import (
	"fmt"
	"log"
	"os/exec"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	// SbatchBin is the name of the command used to submit a job
	SbatchBin = "sbatch"

	// CPUsPerTask is the number of cores associated to each GCD on a Frontier node
	CPUsPerTask = 7

	// GPUsPerTask is the number of GCDs used by a rank
	GPUsPerTask = 1
)

// Accepted wall time formats: "minutes", "minutes:seconds", "hours:minutes:seconds",
// "days-hours", "days-hours:minutes" and "days-hours:minutes:seconds"
var timeFormat = regexp.MustCompile(`^(\d+-\d+(:\d+){0,2}|\d+(:\d+){0,2})$`)

// SbatchOptions gathers the resources requested for a job
type SbatchOptions struct {
	// Account is the account to charge the job time to
	Account string

	// Time is the maximum wall time of the job
	Time string

	// Nodes is the number of nodes to request
	Nodes int

	// Wrap is the command to run within the job, typically an srun command
	Wrap string

	// MailUser is the address to send alerts to (optional)
	MailUser string

	// JobName is the name of the job (optional)
	JobName string
}

// ValidateTime checks that a wall time follows one of the formats accepted by Slurm
func ValidateTime(t string) error {
	if !timeFormat.MatchString(t) {
		return fmt.Errorf("invalid wall time %q", t)
	}
	return nil
}

func (o *SbatchOptions) validate() error {
	if o.Account == "" {
		return fmt.Errorf("undefined account")
	}
	if o.Nodes <= 0 {
		return fmt.Errorf("invalid number of nodes: %d", o.Nodes)
	}
	err := ValidateTime(o.Time)
	if err != nil {
		return err
	}
	if o.Wrap == "" {
		return fmt.Errorf("nothing to run")
	}
	if strings.Contains(o.Wrap, "'") {
		return fmt.Errorf("the wrapped command cannot contain single quotes: %s", o.Wrap)
	}
	return nil
}

// SbatchCommand generates the sbatch command to submit a job to the queue on Frontier
func SbatchCommand(opts SbatchOptions) (string, error) {
	err := opts.validate()
	if err != nil {
		return "", errors.Wrap(err, "invalid sbatch options")
	}

	args := []string{
		SbatchBin,
		"--account=" + opts.Account,
		fmt.Sprintf("--nodes=%d", opts.Nodes),
		"--time=" + opts.Time,
	}
	if opts.MailUser != "" {
		args = append(args, "--mail-user="+opts.MailUser, "--mail-type=ALL")
	}
	if opts.JobName != "" {
		args = append(args, "--job-name="+opts.JobName)
	}
	args = append(args, "--wrap='"+opts.Wrap+"'")

	return strings.Join(args, " "), nil
}

// LegacySbatchCommand generates the sbatch command with the short options used by our first scaling tests
func LegacySbatchCommand(opts SbatchOptions) (string, error) {
	err := opts.validate()
	if err != nil {
		return "", errors.Wrap(err, "invalid sbatch options")
	}

	args := []string{
		SbatchBin,
		"-A", opts.Account,
		"-N", fmt.Sprintf("%d", opts.Nodes),
		"-t", opts.Time,
	}
	if opts.MailUser != "" {
		args = append(args, "--mail-user="+opts.MailUser, "--mail-type=BEGIN,END")
	}
	if opts.JobName != "" {
		args = append(args, "--job-name="+opts.JobName)
	}
	args = append(args, "--wrap='"+opts.Wrap+"'")

	return strings.Join(args, " "), nil
}

// SrunCommand generates the srun command used to launch Cholla
func SrunCommand(numNodes int, numRanks int) string {
	return fmt.Sprintf("srun --nodes=%d --ntasks=%d --cpus-per-task=%d --gpus-per-task=%d --gpu-bind=closest", numNodes, numRanks, CPUsPerTask, GPUsPerTask)
}

// LegacySrunPrefix generates the srun prefix with short options
func LegacySrunPrefix(numNodes int, numRanks int) string {
	return fmt.Sprintf("srun -N%d -n%d -c%d --gpus-per-task=%d --gpu-bind=closest", numNodes, numRanks, CPUsPerTask, GPUsPerTask)
}

// Detect looks for sbatch and returns its path
func Detect() (string, error) {
	path, err := exec.LookPath(SbatchBin)
	if err != nil {
		log.Println("* Slurm not detected")
		return "", err
	}
	log.Printf("* Slurm detected: %s\n", path)
	return path, nil
}
