// Command ciplot draws means and confidence intervals of the columns of a
// CSV file.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vdobler/ciplot"
	"github.com/vdobler/ciplot/internal/config"
	"go.uber.org/zap"
	"gonum.org/v1/plot/vg"
)

var (
	// Global flags
	verbose    bool
	configFile string

	// Input and statistic flags shared by render and summary
	csvFile      string
	xField       string
	yField       string
	colorField   string
	groupField   string
	geoms        []string
	level        float64
	distribution string
	position     string

	// Output flags
	outputFile string
	width      float64
	height     float64
	yScale     string

	cfg    config.Config
	logger *zap.Logger
)

// newRootCmd builds the command tree. Every call binds the flags afresh,
// resetting the flag variables to their defaults.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ciplot",
		Short: "Plot means and confidence intervals of grouped data",
		Long: `ciplot reads a CSV file, computes the mean and a confidence interval of
the y column at every x value (and every level of the color and group
columns) and draws them with points, lines, error bars, ribbons or
point ranges.

Settings come from a yaml file (--config); flags override it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg = config.Default()
			if configFile != "" {
				if cfg, err = config.Load(configFile); err != nil {
					return err
				}
			}
			applyFlags(cmd)

			logger, err = cfg.Logging.Logger(verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Draw the plot to an image file",
		Long: `Draws the plot. The image format follows the extension of the
output file: png, jpg, svg, pdf, eps or tif.

Example:
  ciplot render --csv teeth.csv --x dose --y len --color supp \
      --geom ribbon --geom line --output teeth.png`,
		Args: cobra.NoArgs,
		RunE: runRender,
	}

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the table of means and confidence intervals",
		Args:  cobra.NoArgs,
		RunE:  runSummary,
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [file]",
		Short: "Write the current settings as a yaml config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Write(cfg, args[0]); err != nil {
				return err
			}
			logger.Info("wrote config", zap.String("file", args[0]))
			return nil
		},
	}

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVarP(&configFile, "config", "c", "", "yaml config file")

	pf.StringVar(&csvFile, "csv", "", "CSV input file, - reads stdin")
	pf.StringVar(&xField, "x", "", "column mapped to x")
	pf.StringVar(&yField, "y", "", "column mapped to y")
	pf.StringVar(&colorField, "color", "", "discrete column mapped to color")
	pf.StringVar(&groupField, "group", "", "discrete column used for grouping only")
	pf.StringSliceVar(&geoms, "geom", nil, "geoms to draw: point, line, errorbar, ribbon, pointrange")
	pf.Float64Var(&level, "level", 0.95, "confidence level in (0,1)")
	pf.StringVar(&distribution, "dist", "normal", "distribution of y: normal, lognormal or binomial")
	pf.StringVar(&position, "position", "", "position adjustment: identity or dodge")

	// Render flags
	renderCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output image file")
	renderCmd.Flags().Float64Var(&width, "width", 0, "image width in cm")
	renderCmd.Flags().Float64Var(&height, "height", 0, "image height in cm")
	renderCmd.Flags().StringVar(&yScale, "yscale", "", "y axis: identity or log10")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(initConfigCmd)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlags overrides the config with the flags given on the command line.
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("csv", func() { cfg.Input.CSV = csvFile })
	set("x", func() { cfg.Input.X = xField })
	set("y", func() { cfg.Input.Y = yField })
	set("color", func() { cfg.Input.Color = colorField })
	set("group", func() { cfg.Input.Group = groupField })
	set("geom", func() { cfg.MeanCI.Geoms = geoms })
	set("level", func() { cfg.MeanCI.Level = level })
	set("dist", func() { cfg.MeanCI.Distribution = distribution })
	set("position", func() { cfg.MeanCI.Position = position })
	set("output", func() { cfg.Output.File = outputFile })
	set("width", func() { cfg.Output.Width = width })
	set("height", func() { cfg.Output.Height = height })
	set("yscale", func() { cfg.Output.YScale = yScale })
}

func readData(in io.Reader) (*ciplot.DataFrame, error) {
	name := cfg.Input.CSV
	if name == "" {
		return nil, fmt.Errorf("no input file, use --csv")
	}
	if name != "-" {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		in = f
	}
	df, err := ciplot.ReadCSV(in, name)
	if err != nil {
		return nil, err
	}
	logger.Debug("read data", zap.String("file", name), zap.Int("rows", df.N),
		zap.Strings("columns", df.FieldNames()))
	return df, nil
}

// newPlot sets up the plot described by cfg.
func newPlot(in io.Reader) (*ciplot.Plot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	df, err := readData(in)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	ys, err := ciplot.ParseScaleTransform(cfg.Output.YScale)
	if err != nil {
		return nil, err
	}

	p := &ciplot.Plot{
		Data:   df,
		Aes:    cfg.Aes(),
		Title:  cfg.Output.Title,
		XLabel: cfg.Output.XLabel,
		YLabel: cfg.Output.YLabel,
		YScale: ys,
		Logger: logger,
	}
	if err := p.AddMeanCI(opts); err != nil {
		return nil, err
	}
	return p, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	p, err := newPlot(cmd.InOrStdin())
	if err != nil {
		return err
	}
	w := vg.Length(cfg.Output.Width) * vg.Centimeter
	h := vg.Length(cfg.Output.Height) * vg.Centimeter
	if err := p.Save(w, h, cfg.Output.File); err != nil {
		return err
	}
	logger.Info("wrote plot", zap.String("file", cfg.Output.File),
		zap.Int("layers", len(p.Layers)))
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	p, err := newPlot(cmd.InOrStdin())
	if err != nil {
		return err
	}
	table, err := p.Summary()
	if err != nil {
		return err
	}
	return table.Print(cmd.OutOrStdout())
}
