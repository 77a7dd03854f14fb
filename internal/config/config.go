// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/rovshanmuradov/montecarlo/internal/estimate"
	"github.com/rovshanmuradov/montecarlo/internal/fit"
	"github.com/rovshanmuradov/montecarlo/internal/gambling"
	"github.com/rovshanmuradov/montecarlo/internal/sampler"
)

type Config struct {
	Seed         uint64         `mapstructure:"seed"`
	Workers      int            `mapstructure:"workers"`
	DebugLogging bool           `mapstructure:"debug_logging"`
	LogFile      string         `mapstructure:"log_file"`
	Pi           PiConfig       `mapstructure:"pi"`
	Integral     IntegralConfig `mapstructure:"integral"`
	Gambling     GamblingConfig `mapstructure:"gambling"`
	Sweep        SweepConfig    `mapstructure:"sweep"`
	Export       ExportConfig   `mapstructure:"export"`
}

type PiConfig struct {
	Points int `mapstructure:"points"`
	Tests  int `mapstructure:"tests"`
}

type IntegralConfig struct {
	Function   string  `mapstructure:"function"`
	X1         float64 `mapstructure:"x1"`
	X2         float64 `mapstructure:"x2"`
	BoundSteps int     `mapstructure:"bound_steps"`
	Points     int     `mapstructure:"points"`
	Tests      int     `mapstructure:"tests"`
}

type GamblingConfig struct {
	Actors         int     `mapstructure:"actors"`
	StartingFunds  float64 `mapstructure:"starting_funds"`
	Stake          float64 `mapstructure:"stake"`
	WinProbability float64 `mapstructure:"win_probability"`
	Periods        int     `mapstructure:"periods"`
	Doubling       bool    `mapstructure:"doubling"`
	Absorbing      bool    `mapstructure:"absorbing"`
}

// Params converts the gambling section into simulation parameters.
func (g GamblingConfig) Params() gambling.Params {
	policy := gambling.Policy{Stake: gambling.Flat, Absorbing: g.Absorbing}
	if g.Doubling {
		policy.Stake = gambling.Doubling
	}
	return gambling.Params{
		StartingFunds:  g.StartingFunds,
		Stake:          g.Stake,
		WinProbability: g.WinProbability,
		Periods:        g.Periods,
		Policy:         policy,
	}
}

type SweepConfig struct {
	Iterations      int    `mapstructure:"iterations"`
	Tests           int    `mapstructure:"tests"`
	TestsIncrement  int    `mapstructure:"tests_increment"`
	PointsFirst     int    `mapstructure:"points_first"`
	PointsIncrement int    `mapstructure:"points_increment"`
	FitModel        string `mapstructure:"fit_model"`
}

// Estimate converts the sweep section into the aggregator's sweep settings.
func (s SweepConfig) Estimate() estimate.SweepConfig {
	return estimate.SweepConfig{
		Iterations:      s.Iterations,
		Tests:           s.Tests,
		TestsIncrement:  s.TestsIncrement,
		PointsFirst:     s.PointsFirst,
		PointsIncrement: s.PointsIncrement,
	}
}

// NewSampler returns a sampler seeded from Seed. A zero seed draws a random one.
func (c *Config) NewSampler() *sampler.Uniform {
	if c.Seed == 0 {
		return sampler.NewRandom()
	}
	return sampler.NewUniform(c.Seed)
}

type ExportConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

const (
	DefaultWorkers = 1

	DefaultPiPoints = 100000
	DefaultPiTests  = 100

	DefaultIntegralFunction   = "x^3"
	DefaultIntegralBoundSteps = 100000
	DefaultIntegralPoints     = 100000
	DefaultIntegralTests      = 10

	DefaultActors         = 1000
	DefaultStartingFunds  = 1000.0
	DefaultStake          = 100.0
	DefaultWinProbability = 0.5
	DefaultPeriods        = 100

	DefaultSweepIterations      = 50
	DefaultSweepTests           = 10
	DefaultSweepPointsFirst     = 1000
	DefaultSweepPointsIncrement = 100
	DefaultFitModel             = "linear"

	DefaultExportFormat = "csv"
)

const envPrefix = "MONTECARLO"

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"seed":          0,
		"workers":       DefaultWorkers,
		"debug_logging": false,
		"log_file":      "",

		"pi.points": DefaultPiPoints,
		"pi.tests":  DefaultPiTests,

		"integral.function":    DefaultIntegralFunction,
		"integral.x1":          0.0,
		"integral.x2":          1.0,
		"integral.bound_steps": DefaultIntegralBoundSteps,
		"integral.points":      DefaultIntegralPoints,
		"integral.tests":       DefaultIntegralTests,

		"gambling.actors":          DefaultActors,
		"gambling.starting_funds":  DefaultStartingFunds,
		"gambling.stake":           DefaultStake,
		"gambling.win_probability": DefaultWinProbability,
		"gambling.periods":         DefaultPeriods,
		"gambling.doubling":        false,
		"gambling.absorbing":       false,

		"sweep.iterations":       DefaultSweepIterations,
		"sweep.tests":            DefaultSweepTests,
		"sweep.tests_increment":  0,
		"sweep.points_first":     DefaultSweepPointsFirst,
		"sweep.points_increment": DefaultSweepPointsIncrement,
		"sweep.fit_model":        DefaultFitModel,

		"export.dir":    "",
		"export.format": DefaultExportFormat,
	}
}

// Default returns the built-in configuration, with MONTECARLO_* environment
// overrides applied.
func Default() (*Config, error) {
	return LoadConfig("")
}

// LoadConfig reads the configuration file at path (JSON, YAML or TOML).
// An empty path loads only defaults and environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Workers < 1 {
		return errors.New("invalid workers count")
	}
	if err := validatePi(cfg.Pi); err != nil {
		return err
	}
	if err := validateIntegral(cfg.Integral); err != nil {
		return err
	}
	if err := validateGambling(cfg.Gambling); err != nil {
		return err
	}
	if err := cfg.Sweep.Estimate().Validate(); err != nil {
		return fmt.Errorf("invalid sweep section: %w", err)
	}
	if _, err := fit.Model(cfg.Sweep.FitModel).Degree(); err != nil {
		return fmt.Errorf("invalid sweep section: %w", err)
	}
	switch cfg.Export.Format {
	case "csv", "json":
	default:
		return fmt.Errorf("unsupported export format %q", cfg.Export.Format)
	}
	return nil
}

func validatePi(pi PiConfig) error {
	if pi.Points <= 0 {
		return errors.New("invalid pi.points")
	}
	if pi.Tests <= 0 {
		return errors.New("invalid pi.tests")
	}
	return nil
}

func validateIntegral(in IntegralConfig) error {
	if in.Function == "" {
		return errors.New("missing integral.function")
	}
	if in.X1 >= in.X2 {
		return errors.New("integral.x1 must be less than integral.x2")
	}
	if in.BoundSteps <= 0 {
		return errors.New("invalid integral.bound_steps")
	}
	if in.Points <= 0 {
		return errors.New("invalid integral.points")
	}
	if in.Tests <= 0 {
		return errors.New("invalid integral.tests")
	}
	return nil
}

func validateGambling(g GamblingConfig) error {
	if g.Actors <= 0 {
		return errors.New("invalid gambling.actors")
	}
	if g.StartingFunds <= 0 {
		return errors.New("invalid gambling.starting_funds")
	}
	if g.Stake <= 0 {
		return errors.New("invalid gambling.stake")
	}
	if g.WinProbability < 0 || g.WinProbability > 1 {
		return errors.New("gambling.win_probability must be within [0, 1]")
	}
	if g.Periods < 0 {
		return errors.New("invalid gambling.periods")
	}
	return nil
}
