// Command proptable generates thermodynamic property tables over meshed
// density-temperature domains and writes them as legacy VTK files.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/notargets/proptable/config"
	"github.com/notargets/proptable/eos"
	"github.com/notargets/proptable/fluids"
	"github.com/notargets/proptable/mesh"
	"github.com/notargets/proptable/table"
	"github.com/notargets/proptable/thermo"
)

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run builds the command tree and executes args, writing reports to outW
func run(outW io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	root := newRootCmd(outW)
	root.SetArgs(args)
	root.SetOut(outW)
	root.SetErr(outW)
	return root.ExecuteContext(ctx)
}

type options struct {
	configPath string
	output     string
	binary     bool
	workers    int
	verbose    bool
}

func newRootCmd(outW io.Writer) *cobra.Command {
	opts := &options{}
	log := logrus.New()
	log.SetOutput(os.Stderr)

	root := &cobra.Command{
		Use:   "proptable",
		Short: "Generate thermodynamic property tables",
		Long: `proptable evaluates fluid properties (H T P D U V A Q) at the nodes of a mesh
over the density-temperature plane and writes them as a legacy VTK file.

Without --config every command reproduces the Toluene reference table:
400-650 K, D_min 0.001 kg/m^3, a 100x10 grid, written in text mode to table.vtk.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			log.SetLevel(logrus.InfoLevel)
			if opts.verbose {
				log.SetLevel(logrus.DebugLevel)
			}
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "HCL settings file")
	pf.StringVarP(&opts.output, "output", "o", "", "output VTK file (overrides the config)")
	pf.BoolVar(&opts.binary, "binary", false, "write binary VTK")
	pf.IntVar(&opts.workers, "workers", 1, "concurrent evaluation partitions")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "structured",
			Short: "Table on a rectangular (log10 D, T) grid up to the critical density",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				c, err := load(cmd, opts)
				if err != nil {
					return err
				}
				if err := c.Structured.Validate(); err != nil {
					return err
				}
				svc := eos.NewPengRobinson(0)
				s := c.Structured
				d, err := table.NewStructured(svc, c.Fluid, s.TMin, s.TMax, s.DMin, s.ND, s.NT)
				if err != nil {
					return err
				}
				log.WithFields(logrus.Fields{"fluid": c.Fluid, "DMin": d.DMin, "DMax": d.DMax,
					"TMin": d.TMin, "TMax": d.TMax}).Info("structured domain")
				return build(cmd, outW, log, c, svc, d)
			},
		},
		&cobra.Command{
			Use:   "graded",
			Short: "Table above the saturated vapor curve, graded towards the critical point",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				c, err := load(cmd, opts)
				if err != nil {
					return err
				}
				if err := c.Graded.Validate(); err != nil {
					return err
				}
				svc := eos.NewPengRobinson(0)
				g := c.Graded
				d, err := table.NewGraded(svc, c.Fluid, g.TMin, g.TMax, g.Sizes, g.Samples)
				if err != nil {
					return err
				}
				log.WithFields(logrus.Fields{"fluid": c.Fluid, "DMin": d.DMin, "DMax": d.DMax,
					"TMin": d.TMin, "TMax": d.TMax}).Info("graded domain")
				return build(cmd, outW, log, c, svc, d)
			},
		},
		&cobra.Command{
			Use:   "mesh FILE",
			Short: "Evaluate properties on an external mesh with x = log10 D and y = T",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := load(cmd, opts)
				if err != nil {
					return err
				}
				m, err := mesh.ReadExternal(args[0])
				if err != nil {
					return err
				}
				tb := newTable(c, eos.NewPengRobinson(0), log, nil)
				coords := table.LogDensity{}
				if err := tb.Evaluate(cmd.Context(), m, coords, c.Properties); err != nil {
					return err
				}
				coords.Finalize(m)
				tb.Mesh = m
				return write(outW, tb, c)
			},
		},
		&cobra.Command{
			Use:   "fluids",
			Short: "List the known fluids",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				tw := tabwriter.NewWriter(outW, 0, 8, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tM [kg/mol]\tTcrit [K]\tPcrit [Pa]\tOMEGA")
				for _, name := range fluids.Names() {
					f, err := fluids.Lookup(name)
					if err != nil {
						return err
					}
					fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%g\n", f.Name, f.M, f.Tcrit, f.Pcrit, f.Omega)
				}
				return tw.Flush()
			},
		},
	)
	return root
}

// load reads the settings file, if any, and applies flags set on the
// command line.
func load(cmd *cobra.Command, opts *options) (*config.Config, error) {
	c := config.Default()
	if opts.configPath != "" {
		var err error
		if c, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		c.Output = opts.output
	}
	if flags.Changed("binary") {
		c.Binary = opts.binary
	}
	if flags.Changed("workers") {
		c.Workers = opts.workers
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func newTable(c *config.Config, svc eos.Service, log logrus.FieldLogger, d table.Domain) *table.Table {
	strategy, _ := table.ParseStrategy(c.Strategy)
	tb := table.New(d, thermo.Evaluator{Service: svc, Fluid: c.Fluid})
	tb.Workers = c.Workers
	tb.Strategy = strategy
	tb.Log = log
	return tb
}

func build(cmd *cobra.Command, outW io.Writer, log logrus.FieldLogger, c *config.Config,
	svc eos.Service, d table.Domain) error {
	tb := newTable(c, svc, log, d)
	if err := tb.Create(cmd.Context(), c.Properties); err != nil {
		return err
	}
	return write(outW, tb, c)
}

func write(outW io.Writer, tb *table.Table, c *config.Config) error {
	if err := tb.Write(c.Output, c.Binary); err != nil {
		return err
	}
	_, err := fmt.Fprintf(outW, "wrote %s: %d nodes, %d properties\n",
		c.Output, tb.Mesh.NumPoints(), len(tb.Mesh.DataNames()))
	return err
}
