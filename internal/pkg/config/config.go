//
// Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package config

import (
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/cholla"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/job"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/slurm"
	"github.com/gvallee/cholla_scaling/tools/internal/pkg/submit"
	scalingerrors "github.com/gvallee/cholla_scaling/tools/pkg/errors"
	"github.com/gvallee/go_util/pkg/util"
	"github.com/pkg/errors"
)

// RunConfig is a run which domain and resolution are given by hand
type RunConfig struct {
	DomainLength float64 `toml:"domain_length"`
	Resolution   int     `toml:"resolution"`
	Ranks        int     `toml:"ranks"`
	Srun         bool    `toml:"srun"`
}

// Campaign describes a set of weak scaling runs and how to submit them
type Campaign struct {
	Account string `toml:"account"`
	Time    string `toml:"time"`

	// JobName is the prefix of the name of the jobs; the number of ranks is appended
	JobName  string `toml:"job_name"`
	MailUser string `toml:"mail_user"`

	// Executable is a glob pattern; the first match in sorted order is used
	Executable string `toml:"executable"`
	InputFile  string `toml:"input_file"`
	ScalingDir string `toml:"scaling_dir"`

	Ranks  []int  `toml:"ranks"`
	Bounds string `toml:"bounds"`
	Submit bool   `toml:"submit"`

	Runs []RunConfig `toml:"runs"`

	// dir is the directory of the configuration file, relative paths are based on it
	dir        string
	executable string
	bounds     cholla.BoundsStyle
}

func (c *Campaign) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.dir, path)
}

// FindExecutable returns the first file, in sorted order, matching the pattern
func FindExecutable(pattern string) (string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", errors.Wrapf(err, "invalid executable pattern %s", pattern)
	}
	if len(matches) == 0 {
		return "", scalingerrors.New(scalingerrors.ErrNotFound, fmt.Errorf("no executable matching %s", pattern))
	}
	sort.Strings(matches)
	return matches[0], nil
}

func configError(format string, a ...interface{}) error {
	return scalingerrors.New(scalingerrors.ErrConfig, fmt.Errorf(format, a...))
}

// Validate checks that the campaign can be used to generate jobs
func (c *Campaign) Validate() error {
	if c.Account == "" {
		return configError("undefined account")
	}
	err := slurm.ValidateTime(c.Time)
	if err != nil {
		return scalingerrors.New(scalingerrors.ErrConfig, err)
	}
	if len(c.Ranks) == 0 && len(c.Runs) == 0 {
		return configError("no ranks and no runs defined")
	}
	for i, r := range c.Runs {
		run := job.Run{DomainLength: r.DomainLength, Resolution: r.Resolution, NumRanks: r.Ranks}
		err := run.Validate()
		if err != nil {
			return errors.Wrapf(err, "run #%d", i)
		}
	}
	c.bounds, err = cholla.ParseBoundsStyle(c.Bounds)
	if err != nil {
		return scalingerrors.New(scalingerrors.ErrConfig, err)
	}
	if c.Executable == "" {
		return configError("undefined executable")
	}
	return nil
}

// Load reads a campaign from a TOML file
func Load(path string) (*Campaign, error) {
	return LoadWithRanks(path, nil)
}

// LoadWithRanks reads a campaign from a TOML file and, when ranks is not empty, replaces
// the rank counts of the campaign before validating it
func LoadWithRanks(path string, ranks []int) (*Campaign, error) {
	if !util.FileExists(path) {
		return nil, scalingerrors.New(scalingerrors.ErrNotFound, fmt.Errorf("%s does not exist", path))
	}

	c := new(Campaign)
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to decode %s", path)
	}
	for _, key := range md.Undecoded() {
		log.Printf("WARNING: unknown key in %s: %s\n", path, key.String())
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	c.dir = filepath.Dir(absPath)
	if len(ranks) > 0 {
		c.Ranks = ranks
	}
	if c.ScalingDir == "" {
		c.ScalingDir = "."
	}

	err = c.Validate()
	if err != nil {
		return nil, errors.Wrapf(err, "invalid campaign %s", path)
	}

	c.executable, err = FindExecutable(c.resolve(c.Executable))
	if err != nil {
		return nil, err
	}
	log.Printf("-> Using executable %s\n", c.executable)

	return c, nil
}

// jobName returns the name of the job for a given number of ranks
func (c *Campaign) jobName(numRanks int) string {
	if c.JobName == "" {
		return ""
	}
	return c.JobName + strconv.Itoa(numRanks)
}

// Jobs expands the campaign into one job per rank count
func (c *Campaign) Jobs() []submit.Job {
	var jobs []submit.Job
	for _, r := range c.Ranks {
		j := submit.Job{
			Account:    c.Account,
			Time:       c.Time,
			NumRanks:   r,
			Executable: c.executable,
			InputFile:  c.resolve(c.InputFile),
			ScalingDir: c.resolve(c.ScalingDir),
			JobName:    c.jobName(r),
			MailUser:   c.MailUser,
			Submit:     c.Submit,
			Bounds:     c.bounds,
		}
		jobs = append(jobs, j)
	}
	return jobs
}

// LegacyJobs expands the hand-specified runs of the campaign
func (c *Campaign) LegacyJobs() []submit.LegacyJob {
	var jobs []submit.LegacyJob
	for _, r := range c.Runs {
		j := submit.LegacyJob{
			Account:    c.Account,
			Time:       c.Time,
			Executable: c.executable,
			InputFile:  c.resolve(c.InputFile),
			BaseDir:    c.resolve(c.ScalingDir),
			MailUser:   c.MailUser,
			Run:        job.Run{DomainLength: r.DomainLength, Resolution: r.Resolution, NumRanks: r.Ranks},
			Srun:       r.Srun,
			Submit:     c.Submit,
		}
		jobs = append(jobs, j)
	}
	return jobs
}

// ParseRanks converts a comma-separated list of rank counts, e.g., "1,8,64"
func ParseRanks(str string) ([]int, error) {
	var ranks []int
	for _, t := range strings.Split(str, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		r, err := strconv.Atoi(t)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid rank count %s", t)
		}
		ranks = append(ranks, r)
	}
	return ranks, nil
}
