//
// Copyright (c) 2020-2023, NVIDIA CORPORATION. All rights reserved.
//
// See LICENSE.txt for license information
//

package plot

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gvallee/cholla_scaling/tools/internal/pkg/series"
	"github.com/gvallee/go_exec/pkg/advexec"
	"github.com/pkg/errors"
)

const (
	// 4x3 inches at 300 DPI, dark background
	plotScriptPrelude = "set terminal pngcairo enhanced size 1200,900 font \"Helvetica,10\" background rgb 'black'\n"
	plotScriptStyle   = "set border lc rgb 'white'\nset tics textcolor rgb 'white' in mirror\nset mxtics 10\nset mytics 10\nset key top left nobox textcolor rgb 'white' font \",7.5\"\n"

	gnuplotBin = "gnuplot"

	markerSize = 4

	// Alpha of all the lines, gnuplot expects the opposite (transparency) in the alpha channel
	alpha = 0.9
)

// Colors of the matplotlib default cycle that we use, plus white and grey
var Colors = map[string]string{
	"C0":   "#1f77b4",
	"C2":   "#2ca02c",
	"C3":   "#d62728",
	"C4":   "#9467bd",
	"w":    "#ffffff",
	"grey": "#808080",
}

// Range is the range of an axis
type Range struct {
	Min float64
	Max float64
}

// Curve is a series and how to display it
type Curve struct {
	series.Series

	// Color is either a key of Colors or a "#rrggbb" value
	Color string
}

// Label is a text displayed at a given position, in graph coordinates (0 to 1)
type Label struct {
	Text  string
	X     float64
	Y     float64
	Color string
}

// Figure describes a complete plot
type Figure struct {
	Title  string
	XLabel string
	YLabel string

	// Output is the name of the PNG file to create
	Output string

	XRange Range
	YRange Range
	LogX   bool
	LogY   bool

	Curves []Curve
	Labels []Label
}

func (r Range) isSet() bool {
	return r.Min != 0 || r.Max != 0
}

func (r Range) String() string {
	return fmt.Sprintf("[%s:%s]", formatNumber(r.Min), formatNumber(r.Max))
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func colorValue(c string) string {
	if v, ok := Colors[c]; ok {
		c = v
	}
	if c == "" {
		c = Colors["w"]
	}
	// gnuplot's #AARRGGBB where AA is the transparency
	a := float64(alpha)
	transparency := int((1 - a) * 255)
	return fmt.Sprintf("#%02x%s", transparency, strings.TrimPrefix(c, "#"))
}

func quote(str string) string {
	return "\"" + strings.ReplaceAll(str, "\"", "\\\"") + "\""
}

// dataFilename returns the name of the file where the data of a curve is stored
func dataFilename(output string, name string) string {
	base := strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))
	clean := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, name)
	return base + "_" + clean + ".dat"
}

func writeDataFile(path string, s series.Series) error {
	if len(s.X) != len(s.Y) {
		return fmt.Errorf("series %s has %d x values and %d y values", s.Name, len(s.X), len(s.Y))
	}
	fd, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer fd.Close()

	_, err = fd.WriteString(fmt.Sprintf("# %s\n", s.Name))
	if err != nil {
		return err
	}
	for i := range s.X {
		_, err = fd.WriteString(fmt.Sprintf("%s %s\n", formatNumber(s.X[i]), formatNumber(s.Y[i])))
		if err != nil {
			return err
		}
	}
	return nil
}

func plotCommand(dir string, fig *Figure) (string, error) {
	var entries []string
	for _, c := range fig.Curves {
		if len(c.X) == 0 {
			continue
		}
		dataFile := filepath.Join(dir, dataFilename(fig.Output, c.Name))
		err := writeDataFile(dataFile, c.Series)
		if err != nil {
			return "", errors.Wrapf(err, "unable to write data for %s", c.Name)
		}

		title := "notitle"
		if c.Label != "" {
			title = "title " + quote(c.Label)
		}
		entries = append(entries, fmt.Sprintf("%s using 1:2 with linespoints dt 2 pt 7 ps %s lw 1.5 lc rgb '%s' %s", quote(dataFile), formatNumber(markerSize/4.0), colorValue(c.Color), title))
	}
	if len(entries) == 0 {
		return "", fmt.Errorf("nothing to plot in %s", fig.Output)
	}
	return "plot " + strings.Join(entries, ", \\\n     ") + "\n", nil
}

// GenerateScript writes the data files and the gnuplot script of a figure in dir and returns the path to the script
func GenerateScript(dir string, fig *Figure) (string, error) {
	if fig == nil || fig.Output == "" {
		return "", fmt.Errorf("undefined figure")
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	plotCmd, err := plotCommand(dir, fig)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(fig.Output, filepath.Ext(fig.Output))
	plotScriptFile := filepath.Join(dir, base+".gnuplot")
	fd, err := os.OpenFile(plotScriptFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", err
	}
	defer fd.Close()

	var script strings.Builder
	script.WriteString(plotScriptPrelude)
	script.WriteString(fmt.Sprintf("set output %s\n\n", quote(filepath.Join(dir, fig.Output))))
	script.WriteString(plotScriptStyle)
	if fig.Title != "" {
		script.WriteString(fmt.Sprintf("set title %s textcolor rgb 'white'\n", quote(fig.Title)))
	}
	script.WriteString(fmt.Sprintf("set xlabel %s textcolor rgb 'white'\n", quote(fig.XLabel)))
	script.WriteString(fmt.Sprintf("set ylabel %s textcolor rgb 'white'\n", quote(fig.YLabel)))
	if fig.LogX {
		script.WriteString("set logscale x\nset format x \"10^{%L}\"\n")
	}
	if fig.LogY {
		script.WriteString("set logscale y\nset format y \"10^{%L}\"\n")
	}
	if fig.XRange.isSet() {
		script.WriteString(fmt.Sprintf("set xrange %s\n", fig.XRange))
	}
	if fig.YRange.isSet() {
		script.WriteString(fmt.Sprintf("set yrange %s\n", fig.YRange))
	}
	for i, l := range fig.Labels {
		script.WriteString(fmt.Sprintf("set label %d %s at graph %s,%s left textcolor rgb '%s'\n", i+1, quote(l.Text), formatNumber(l.X), formatNumber(l.Y), colorValue(l.Color)))
	}
	script.WriteString("\n")
	script.WriteString(plotCmd)

	_, err = fd.WriteString(script.String())
	if err != nil {
		return "", err
	}

	return plotScriptFile, nil
}

// Create generates the script of a figure and runs gnuplot to get the PNG file.
// The script is kept when gnuplot is not available so it can be run later.
func Create(dir string, fig *Figure) (string, error) {
	gnuplotScript, err := GenerateScript(dir, fig)
	if err != nil {
		return "", err
	}

	var cmd advexec.Advcmd
	cmd.BinPath, err = exec.LookPath(gnuplotBin)
	if err != nil {
		return gnuplotScript, errors.Wrapf(err, "unable to find %s, the script is available at %s", gnuplotBin, gnuplotScript)
	}
	cmd.CmdArgs = []string{gnuplotScript}
	log.Printf("-> Running %s %s\n", cmd.BinPath, gnuplotScript)
	res := cmd.Run()
	if res.Err != nil {
		return gnuplotScript, fmt.Errorf("%s failed: %s - stderr: %s", gnuplotBin, res.Err, res.Stderr)
	}

	return gnuplotScript, nil
}
