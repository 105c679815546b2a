package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/randalmurphal/appforge/config"
	apperrors "github.com/randalmurphal/appforge/errors"
)

// cli holds state shared by all subcommands of one invocation.
type cli struct {
	stdout, stderr io.Writer

	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger

	// flags maps config keys to the flags bound to them.
	flags map[string]*pflag.Flag
}

// sourceKeys are the settings whose origin is logged at debug level.
var sourceKeys = []string{"registry_path", "pr_backend", "applications_dir", "template_app", "render_command"}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *cli) {
	c := &cli{
		stdout: stdout,
		stderr: stderr,
		v:      config.NewViper(),
		logger: zap.NewNop(),
		flags:  make(map[string]*pflag.Flag),
	}

	root := &cobra.Command{
		Use:               "appforge",
		Short:             "Propagate newly declared applications to dependent repositories",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.init,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", apperrors.ErrUsage, err)
	})

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "",
		"config file (default: .appforge.yaml if present)")
	root.PersistentFlags().String("log-format", "", "log encoding: console or json")
	root.PersistentFlags().String("log-level", "", "minimum log level")
	c.bind(root.PersistentFlags(), map[string]string{
		"log-format": "log_format",
		"log-level":  "log_level",
	})

	root.AddCommand(c.propagateCmd(), c.renderCmd())
	return root, c
}

// init resolves configuration and builds the logger before any subcommand.
func (c *cli) init(*cobra.Command, []string) error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUsage, err)
	}
	logger, err := newLogger(cfg.LogFormat, cfg.LogLevel, c.stderr)
	if err != nil {
		return err
	}
	c.cfg, c.logger = cfg, logger

	for _, key := range sourceKeys {
		changed := false
		if f := c.flags[key]; f != nil {
			changed = f.Changed
		}
		logger.Debug("config source",
			zap.String("key", key),
			zap.String("source", string(config.SourceOf(c.v, key, changed))),
		)
	}
	return nil
}

// sync flushes the current logger. The logger is replaced during init, so
// callers defer this rather than the logger's own Sync.
func (c *cli) sync() {
	_ = c.logger.Sync()
}

// bind maps flag names to config keys so flags take precedence.
func (c *cli) bind(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		f := flags.Lookup(name)
		c.flags[key] = f
		_ = c.v.BindPFlag(key, f)
	}
}

// newLogger builds a console (default) or JSON logger writing to w.
func newLogger(format, level string, w io.Writer) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("%w: log_level: %v", apperrors.ErrUsage, err)
		}
		lvl = parsed
	}

	var enc zapcore.Encoder
	switch format {
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case "console", "":
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	default:
		return nil, fmt.Errorf("%w: log_format must be console or json, got %q", apperrors.ErrUsage, format)
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), lvl)), nil
}
