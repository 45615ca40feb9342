// Package config reads the yaml file driving the ciplot command.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vdobler/ciplot"
	"github.com/vdobler/ciplot/stat"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the complete configuration of one plot.
type Config struct {
	Input   InputConfig   `yaml:"input"`
	MeanCI  MeanCIConfig  `yaml:"meanci"`
	Output  OutputConfig  `yaml:"output"`
	Logging LoggingConfig `yaml:"logging"`
}

// InputConfig names the data file and the columns mapped to aesthetics.
type InputConfig struct {
	CSV   string `yaml:"csv"`
	X     string `yaml:"x"`
	Y     string `yaml:"y"`
	Color string `yaml:"color,omitempty"`
	Fill  string `yaml:"fill,omitempty"`
	Shape string `yaml:"shape,omitempty"`
	Group string `yaml:"group,omitempty"`
}

// MeanCIConfig mirrors ciplot.MeanCIOptions.
type MeanCIConfig struct {
	Geoms        []string                     `yaml:"geoms"`
	Level        float64                      `yaml:"level"`
	Distribution string                       `yaml:"distribution"`
	Position     string                       `yaml:"position,omitempty"`
	DodgeWidth   float64                      `yaml:"dodge_width,omitempty"`
	Style        map[string]string            `yaml:"style,omitempty"`
	GeomStyles   map[string]map[string]string `yaml:"geom_styles,omitempty"`
}

// OutputConfig describes the image. Width and Height are in centimeters.
type OutputConfig struct {
	File   string  `yaml:"file"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Title  string  `yaml:"title,omitempty"`
	XLabel string  `yaml:"xlabel,omitempty"`
	YLabel string  `yaml:"ylabel,omitempty"`
	YScale string  `yaml:"yscale,omitempty"`
}

// LoggingConfig selects the zap logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns the configuration used for everything not set in a file.
func Default() Config {
	return Config{
		MeanCI: MeanCIConfig{
			Geoms:        append([]string(nil), ciplot.DefaultMeanCIGeoms...),
			Level:        0.95,
			Distribution: stat.Normal.String(),
		},
		Output: OutputConfig{
			File:   "meanci.png",
			Width:  16,
			Height: 10,
			YScale: "identity",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the yaml file at path over the defaults. Missing keys keep
// their default value.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Write stores cfg as yaml at path, creating missing directories.
func Write(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks everything that can be checked without reading data.
// All problems are reported together.
func (c Config) Validate() error {
	var errs []error
	if c.Input.X == "" {
		errs = append(errs, errors.New("input.x: no column mapped to x"))
	}
	if c.Input.Y == "" {
		errs = append(errs, errors.New("input.y: no column mapped to y"))
	}
	if _, err := c.Options(); err != nil {
		errs = append(errs, err)
	}
	if _, err := ciplot.ParseScaleTransform(c.Output.YScale); err != nil {
		errs = append(errs, fmt.Errorf("output.yscale: %w", err))
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		errs = append(errs, fmt.Errorf("output: bad size %gx%g cm", c.Output.Width, c.Output.Height))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}

// Aes returns the aesthetic mapping of the input columns.
func (c Config) Aes() ciplot.AesMapping {
	return ciplot.MergeAes(ciplot.AesMapping{
		"x":     c.Input.X,
		"y":     c.Input.Y,
		"color": c.Input.Color,
		"fill":  c.Input.Fill,
		"shape": c.Input.Shape,
		"group": c.Input.Group,
	})
}

// Options converts the meanci section. Level and distribution are checked
// here; geoms and styles once MeanCI builds the layers.
func (c Config) Options() (ciplot.MeanCIOptions, error) {
	m := c.MeanCI
	opts := ciplot.MeanCIOptions{
		Geoms:        m.Geoms,
		Level:        m.Level,
		Distribution: m.Distribution,
		Style:        ciplot.AesMapping(m.Style),
		DodgeWidth:   m.DodgeWidth,
	}
	if len(m.GeomStyles) > 0 {
		opts.GeomStyles = make(map[string]ciplot.AesMapping, len(m.GeomStyles))
		for g, s := range m.GeomStyles {
			opts.GeomStyles[g] = ciplot.AesMapping(s)
		}
	}
	pos, err := ciplot.ParsePosition(m.Position)
	if err != nil {
		return opts, fmt.Errorf("meanci.position: %w", err)
	}
	opts.Position = pos

	if _, err := ciplot.MeanCI(opts); err != nil {
		return opts, fmt.Errorf("meanci: %w", err)
	}
	return opts, nil
}

// Logger builds the zap logger. Verbose forces debug level.
func (l LoggingConfig) Logger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
