package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/joshuapare/poolkit/internal/logger"
	"github.com/joshuapare/poolkit/pool"
)

const envVarPrefix = "POOLCTL"

// envConfig holds settings read from POOLCTL_* environment variables. Flags
// given on the command line take precedence.
type envConfig struct {
	Layout   string `envconfig:"LAYOUT"`
	Config   string `envconfig:"CONFIG"`
	Mmap     bool   `envconfig:"MMAP"`
	Log      bool   `envconfig:"LOG"`
	LogDir   string `envconfig:"LOG_DIR"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

func loadEnvConfig() (envConfig, error) {
	var c envConfig
	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return envConfig{}, fmt.Errorf("parsing environment variables: %w", err)
	}
	return c, nil
}

// layoutChosen records whether --layout, --config or their environment
// variables selected a layout. Commands with their own default layout check it.
var layoutChosen bool

// applyEnv fills every global flag the user did not set from the environment
// and initializes logging.
func applyEnv(cmd *cobra.Command) error {
	c, err := loadEnvConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("layout") && c.Layout != "" {
		layoutName = c.Layout
	}
	if !flags.Changed("config") {
		configPath = c.Config
	}
	if !flags.Changed("mmap") {
		useMmap = c.Mmap
	}
	layoutChosen = flags.Changed("layout") || flags.Changed("config") || c.Layout != "" || c.Config != ""

	return logger.Init(logger.Options{
		Enabled: c.Log,
		LogDir:  c.LogDir,
		Level:   logger.ParseLevel(c.LogLevel),
	})
}

// resolveLayout returns the layout selected by --config or --layout.
func resolveLayout() (pool.Layout, error) {
	var (
		l   pool.Layout
		err error
	)
	if configPath != "" {
		l, err = pool.LoadLayout(configPath)
		if err != nil {
			return pool.Layout{}, err
		}
	} else {
		var ok bool
		l, ok = pool.LookupLayout(layoutName)
		if !ok {
			return pool.Layout{}, fmt.Errorf("unknown layout %q (see 'poolctl layouts')", layoutName)
		}
	}
	if useMmap {
		l.Mmap = true
	}
	return l, nil
}
