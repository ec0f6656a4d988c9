// Package config reads the INI-style configuration files of the altbc
// program and turns them into analysis options.
package config

import (
	"fmt"
	"strings"

	chem "github.com/rmera/goaltbc"
	"github.com/rmera/goaltbc/altbc"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/gcfg.v1"
)

// ExampleConfig is a documented configuration file with the default values.
const ExampleConfig = `[Input]
# Structure or trajectory to analyze.
File = path/to/trajectory.xyz

# One of [ xyz | poscar | xdatcar | stf | dcd ]. If not set, the format is guessed
# from the file name.
# Format = xyz

# Topology for formats that don't carry the atomic symbols (an xyz or POSCAR
# file with the same atoms in the same order).
# Topology = path/to/topology.xyz

[Analysis]
# Bond cutoff, in A. Atoms closer than this are neighbors.
Cutoff = 4.0

# Angle window, in degrees.
ThetaMin = 155
ThetaMax = 180

# Only atoms of this species are used as triplet centers. All atoms if not set.
# Center = Te

# Minimum image convention for distances and angles. The cutoff must then be
# smaller than half the thickness of the cell along every periodic axis.
MIC = false

# Add each neighbor pair only to the list of its lower-index atom.
Half = false

# Periodicity along a, b and c. If not set, it is taken from the input, or
# assumed periodic along the three axes.
# PBC = T T T

# Analyze one frame every Stride frames.
Stride = 1

# Frames analyzed concurrently and goroutines used for the neighbor search in
# each frame. 0 means one per CPU for Cpus.
Cpus = 0
Workers = 1

# Log and skip frames that can't be analyzed instead of stopping.
SkipBadFrames = false

[Grid]
# Occupancy grid over the (AB, BC) plane, from XMin to XMax in bins of Size A.
Enabled = true
XMin = 2.5
XMax = 3.8
Size = 0.001

[Output]
# Any output left empty is not written. Plot formats are taken from the
# extensions (png, svg, pdf, eps, jpg, tif).
CSV = triplets.csv
# JSON = triplets.json
# Grid = grid.txt
# Plot = altbc.png
# GridPlot = grid.png
# Summary statistics and angle and bond length distributions, as JSON.
# Summary = summary.json

[Log]
# One of [ debug | info | warn | error ].
Level = info`

// Config is the contents of a configuration file.
type Config struct {
	Input    InputConfig
	Analysis AnalysisConfig
	Grid     GridConfig
	Output   OutputConfig
	Log      LogConfig
}

// InputConfig is the [Input] section.
type InputConfig struct {
	File, Format, Topology string
}

type AnalysisConfig struct {
	Cutoff, ThetaMin, ThetaMax float64
	Center                     string
	MIC, Half                  bool
	PBC                        string
	Stride, Cpus, Workers      int
	SkipBadFrames              bool
}

type GridConfig struct {
	Enabled          bool
	XMin, XMax, Size float64
}

type OutputConfig struct {
	CSV, JSON, Grid, Plot, GridPlot, Summary string
}

type LogConfig struct {
	Level string
}

// Formats are the input formats supported.
var Formats = []string{"xyz", "poscar", "xdatcar", "stf", "dcd"}

// DefaultConfig returns a configuration with the default analysis options.
func DefaultConfig() *Config {
	o := altbc.DefaultOptions()
	c := &Config{}
	c.Analysis.Cutoff = o.Cutoff()
	c.Analysis.ThetaMin = o.ThetaMin()
	c.Analysis.ThetaMax = o.ThetaMax()
	c.Analysis.Stride = o.Skip()
	c.Analysis.Workers = o.Workers()
	c.Grid.Enabled = o.Occupancy()
	c.Grid.XMin = o.XMin()
	c.Grid.XMax = o.XMax()
	c.Grid.Size = o.GridSize()
	c.Log.Level = "info"
	return c
}

// ReadFile reads the configuration file name. Values not in the file keep
// their defaults.
func ReadFile(name string) (*Config, error) {
	c := DefaultConfig()
	if err := gcfg.ReadFileInto(c, name); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", name, err)
	}
	return c, nil
}

// ReadString reads a configuration from the contents of a file.
func ReadString(s string) (*Config, error) {
	c := DefaultConfig()
	if err := gcfg.ReadStringInto(c, s); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// ValidFormat returns true if the input format is empty (guessed from the
// file name) or supported.
func (c *Config) ValidFormat() bool {
	if c.Input.Format == "" {
		return true
	}
	for _, v := range Formats {
		if strings.EqualFold(c.Input.Format, v) {
			return true
		}
	}
	return false
}

// LogLevel returns the logging level set in the configuration.
func (c *Config) LogLevel() (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(strings.ToLower(c.Log.Level))); err != nil {
		return l, fmt.Errorf("config: bad log level %q", c.Log.Level)
	}
	return l, nil
}

// Validate returns an error if the configuration can't be used for an analysis.
func (c *Config) Validate() error {
	if !c.ValidFormat() {
		return fmt.Errorf("config: unsupported format %q, must be one of %s", c.Input.Format, strings.Join(Formats, ", "))
	}
	if c.Analysis.Stride < 1 {
		return fmt.Errorf("config: Stride must be at least 1, got %d", c.Analysis.Stride)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	_, err := c.Options(nil)
	return err
}

// Options returns the analysis options for the configuration, logging to
// logger, which can be nil. The PBC are only set if given in the
// configuration.
func (c *Config) Options(logger *zap.Logger) (*altbc.Options, error) {
	o := altbc.DefaultOptions()
	a := c.Analysis
	o.Cutoff(a.Cutoff)
	o.ThetaMin(a.ThetaMin)
	o.ThetaMax(a.ThetaMax)
	o.Center(a.Center)
	o.MIC(a.MIC)
	o.Half(a.Half)
	if a.PBC != "" {
		pbc, err := chem.ParsePBC(a.PBC)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		o.PBC(pbc)
	}
	o.Skip(a.Stride)
	o.Cpus(a.Cpus)
	o.Workers(a.Workers)
	o.SkipBadFrames(a.SkipBadFrames)
	o.Occupancy(c.Grid.Enabled)
	o.XMin(c.Grid.XMin)
	o.XMax(c.Grid.XMax)
	o.GridSize(c.Grid.Size)
	o.Logger(logger)
	if err := o.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return o, nil
}
