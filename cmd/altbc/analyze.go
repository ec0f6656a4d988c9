package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rmera/goaltbc/altbc"
	"github.com/rmera/goaltbc/chemplot"
	"github.com/rmera/goaltbc/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// maxTrajAtoms is the size above which analyzing a trajectory is expected to be slow.
const maxTrajAtoms = 1000

type analyzeOptions struct {
	configFile string
	format     string
	topology   string
	cutoff     float64
	thetaMin   float64
	thetaMax   float64
	center     string
	mic        bool
	half       bool
	pbc        string
	stride     int
	cpus       int
	workers    int
	skipBad    bool
	csv        string
	json       string
	grid       string
	plot       string
	gridPlot   string
	summary    string
}

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}
	def := config.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "analyze [FILE]",
		Short: "Find the triplets in a structure or trajectory",
		Long: "analyze reads a structure (xyz, POSCAR) or trajectory (multi-frame xyz, XDATCAR, stf, dcd)\n" +
			"and writes the triplets found in each frame, the occupancy grid and plots.\n" +
			"Flags override the values in the configuration file.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(cmd, opts, args)
			if err != nil {
				return err
			}
			level, err := c.LogLevel()
			if err != nil {
				return err
			}
			if root.verbose {
				level = zapcore.DebugLevel
			}
			logger, err := newLogger(level)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return analyze(c, logger, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configFile, "config", "c", "", "configuration file (see example-config)")
	f.StringVarP(&opts.format, "format", "f", "", "input format: xyz, poscar, xdatcar, stf or dcd (default: from the file name)")
	f.StringVar(&opts.topology, "top", "", "xyz or POSCAR file with the atoms of the system")
	f.Float64Var(&opts.cutoff, "cutoff", def.Analysis.Cutoff, "bond cutoff, in A")
	f.Float64Var(&opts.thetaMin, "theta-min", def.Analysis.ThetaMin, "smallest angle of the triplets, in degrees")
	f.Float64Var(&opts.thetaMax, "theta-max", def.Analysis.ThetaMax, "largest angle of the triplets, in degrees")
	f.StringVar(&opts.center, "center", "", "species of the center atoms (default: all atoms)")
	f.BoolVar(&opts.mic, "mic", false, "use the minimum image convention")
	f.BoolVar(&opts.half, "half", false, "add each neighbor pair only to the list of its lower-index atom")
	f.StringVar(&opts.pbc, "pbc", "", "periodicity along a, b and c, e.g. T,T,F (default: from the input)")
	f.IntVar(&opts.stride, "stride", def.Analysis.Stride, "analyze one every stride frames")
	f.IntVar(&opts.cpus, "cpus", 0, "frames analyzed concurrently (default: one per CPU)")
	f.IntVar(&opts.workers, "workers", def.Analysis.Workers, "goroutines for the neighbor search in each frame")
	f.BoolVar(&opts.skipBad, "skip-bad-frames", false, "log and skip frames that can't be analyzed")
	f.StringVar(&opts.csv, "csv", "", "write the triplets to this CSV file")
	f.StringVar(&opts.json, "json", "", "write the triplets to this JSON file")
	f.StringVar(&opts.grid, "grid", "", "write the occupancy grid to this text file")
	f.StringVar(&opts.plot, "plot", "", "write a scatter plot of the bond lengths to this file (png, svg, pdf...)")
	f.StringVar(&opts.gridPlot, "grid-plot", "", "write a heat map of the occupancy grid to this file")
	f.StringVar(&opts.summary, "summary", "", "write the summary and distributions to this JSON file")
	return cmd
}

// loadConfig reads the configuration file, if any, and overrides its values
// with the flags set in the command line.
func loadConfig(cmd *cobra.Command, opts *analyzeOptions, args []string) (*config.Config, error) {
	c := config.DefaultConfig()
	var err error
	if opts.configFile != "" {
		if c, err = config.ReadFile(opts.configFile); err != nil {
			return nil, err
		}
	}
	if len(args) > 0 {
		c.Input.File = args[0]
	}
	f := cmd.Flags()
	set := func(name string, apply func()) {
		if f.Changed(name) {
			apply()
		}
	}
	set("format", func() { c.Input.Format = opts.format })
	set("top", func() { c.Input.Topology = opts.topology })
	set("cutoff", func() { c.Analysis.Cutoff = opts.cutoff })
	set("theta-min", func() { c.Analysis.ThetaMin = opts.thetaMin })
	set("theta-max", func() { c.Analysis.ThetaMax = opts.thetaMax })
	set("center", func() { c.Analysis.Center = opts.center })
	set("mic", func() { c.Analysis.MIC = opts.mic })
	set("half", func() { c.Analysis.Half = opts.half })
	set("pbc", func() { c.Analysis.PBC = opts.pbc })
	set("stride", func() { c.Analysis.Stride = opts.stride })
	set("cpus", func() { c.Analysis.Cpus = opts.cpus })
	set("workers", func() { c.Analysis.Workers = opts.workers })
	set("skip-bad-frames", func() { c.Analysis.SkipBadFrames = opts.skipBad })
	set("csv", func() { c.Output.CSV = opts.csv })
	set("json", func() { c.Output.JSON = opts.json })
	set("grid", func() { c.Output.Grid = opts.grid })
	set("plot", func() { c.Output.Plot = opts.plot })
	set("grid-plot", func() { c.Output.GridPlot = opts.gridPlot })
	set("summary", func() { c.Output.Summary = opts.summary })
	if c.Input.File == "" {
		return nil, fmt.Errorf("no input file given")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if (c.Output.Grid != "" || c.Output.GridPlot != "") && !c.Grid.Enabled {
		return nil, fmt.Errorf("grid output requested, but the occupancy grid is disabled")
	}
	return c, nil
}

func analyze(c *config.Config, logger *zap.Logger, out io.Writer) error {
	o, err := c.Options(logger)
	if err != nil {
		return err
	}
	in, err := openInput(c.Input.File, c.Input.Format, c.Input.Topology)
	if err != nil {
		return err
	}
	defer in.close()
	if c.Analysis.PBC == "" {
		o.PBC(in.pbc)
	}
	if in.traj.Len() > maxTrajAtoms && in.frames != 1 {
		logger.Warn("large system, analyzing several frames may take a long time", zap.Int("atoms", in.traj.Len()))
	}
	logger.Info("analysis started", zap.String("file", c.Input.File), zap.Int("atoms", in.traj.Len()),
		zap.Float64("cutoff", o.Cutoff()), zap.Float64("theta_min", o.ThetaMin()), zap.Float64("theta_max", o.ThetaMax()))
	A, err := altbc.Run(in.traj, in.top, o)
	if err != nil {
		return err
	}
	S := altbc.Summarize(A)
	fmt.Fprintln(out, S)
	if err := writeOutputs(c, o, A, S); err != nil {
		return err
	}
	return nil
}

func writeOutputs(c *config.Config, o *altbc.Options, A *altbc.Accumulator, S altbc.Summary) error {
	T := A.Table()
	if c.Output.CSV != "" {
		if err := toFile(c.Output.CSV, T.WriteCSV); err != nil {
			return err
		}
	}
	if c.Output.JSON != "" {
		if err := toFile(c.Output.JSON, T.WriteJSON); err != nil {
			return err
		}
	}
	if c.Output.Grid != "" {
		if err := A.Grid().WriteFile(c.Output.Grid); err != nil {
			return err
		}
	}
	po := chemplot.DefaultOptions()
	po.XMin, po.XMax = o.XMin(), o.XMax()
	if c.Output.Plot != "" {
		if err := chemplot.ScatterPlot(T, c.Output.Plot, po); err != nil {
			return err
		}
	}
	if c.Output.GridPlot != "" {
		po.Title = "ALTBC occupancy"
		if err := chemplot.GridPlot(A.Grid(), c.Output.GridPlot, po); err != nil {
			return err
		}
	}
	if c.Output.Summary != "" {
		report := struct {
			Summary altbc.Summary `json:"summary"`
			Angles  interface{}   `json:"angles"`
			Bonds   interface{}   `json:"bonds"`
		}{S, altbc.AngleDistribution(T, o, 1), altbc.BondDistribution(T, o.XMin(), o.XMax(), 0.01)}
		err := toFile(c.Output.Summary, func(w io.Writer) error {
			enc := json.NewEncoder(w)
			enc.SetIndent("", " ")
			return enc.Encode(report)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// toFile creates the file name and writes to it with write.
func toFile(name string, write func(io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
