package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/praetorian-inc/carve"
	"github.com/praetorian-inc/carve/pkg/config"
	"github.com/praetorian-inc/carve/pkg/observability"
	"github.com/praetorian-inc/carve/pkg/record"
	"github.com/praetorian-inc/carve/pkg/runner"
)

var (
	verbose    bool
	quiet      bool
	configPath string

	bytesList  string
	charsList  string
	fieldsList string
	delimiter  string
	jobs       int
	colorMode  string
)

// Set by PersistentPreRunE before any command runs.
var (
	appConfig *config.Config
	logger    *zap.Logger
	useColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "carve [flags] [FILE...]",
	Short: "carve - select bytes, characters or fields from each line",
	Long: `carve prints selected parts of each line of each FILE to standard output.
With no FILE, or when FILE is -, read standard input.

A LIST is made of one range, or many ranges separated by commas:
  N     the N'th byte, character or field, counted from 1
  N-M   from the N'th to the M'th (included), M must be greater than N

Ranges are applied in the order given and are never merged or sorted.`,
	Example: `  carve -c 1-3 names.txt
  carve -f 3,1 -d , books.csv
  carve -b 1,7,3-5 -`,
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runCut,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: .carve.yaml in the working or home directory)")

	rootCmd.Flags().StringVarP(&bytesList, "bytes", "b", "", "Selected bytes")
	rootCmd.Flags().StringVarP(&charsList, "chars", "c", "", "Selected characters")
	rootCmd.Flags().StringVarP(&fieldsList, "fields", "f", "", "Selected fields")
	rootCmd.Flags().StringVarP(&delimiter, "delim", "d", "\t", "Field delimiter")
	rootCmd.Flags().IntVarP(&jobs, "jobs", "j", 1, "Number of files processed concurrently")
	rootCmd.Flags().StringVar(&colorMode, "color", config.ColorAuto, "Color stderr output: auto, always, never")

	rootCmd.MarkFlagsMutuallyExclusive("bytes", "chars", "fields")
	rootCmd.MarkFlagsOneRequired("bytes", "chars", "fields")

	// Add subcommands
	rootCmd.AddCommand(rangesCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// setup loads configuration and builds the logger shared by all commands.
func setup(cmd *cobra.Command, args []string) error {
	if f := cmd.Flags().Lookup("delim"); f != nil && f.Changed {
		if _, err := record.ValidateDelimiter(delimiter); err != nil {
			return err
		}
	}

	v, err := config.NewViper(configPath)
	if err != nil {
		return err
	}
	bindFlags(v, cmd)

	cfg, err := config.NewConfigFromViper(v)
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logger.Level = "debug"
	}
	if quiet {
		cfg.Logger.Level = "error"
	}

	color := colorEnabled(cfg.Color, os.Stderr)
	l, err := observability.NewStderrLogger(cfg.Logger, color)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	appConfig = cfg
	logger = l
	useColor = color
	logger.Debug("configuration loaded", zap.String("config", v.ConfigFileUsed()))
	return nil
}

// bindFlags lets explicitly set flags override config file and environment values.
func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	for key, name := range map[string]string{
		"delimiter": "delim",
		"jobs":      "jobs",
		"color":     "color",
	} {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			v.Set(key, f.Value.String())
		}
	}
}

func runCut(cmd *cobra.Command, args []string) error {
	mode, list := selectedList(cmd)

	sel, err := carve.NewSelector(mode, list, carve.WithDelimiter(appConfig.DelimiterByte()))
	if err != nil {
		return err
	}
	logger.Debug("parsed position list",
		zap.Stringer("mode", mode),
		zap.Stringer("ranges", sel.Ranges()),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	r := runner.New(sel, runner.Config{
		Jobs:  appConfig.Jobs,
		Color: useColor,
	}, logger)

	stats, err := r.Run(ctx, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger.Info("done", zap.Int("files", stats.Files), zap.Int("failed", stats.Failed), zap.Int("lines", stats.Lines))
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

// selectedList returns the mode and list of whichever selection flag was given.
func selectedList(cmd *cobra.Command) (carve.Mode, string) {
	flags := cmd.Flags()
	switch {
	case flags.Changed("bytes"):
		return carve.ModeBytes, bytesList
	case flags.Changed("chars"):
		return carve.ModeChars, charsList
	default:
		return carve.ModeFields, fieldsList
	}
}

// colorEnabled resolves a color mode against the stream it will be written to.
func colorEnabled(mode string, f *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default:
		return term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == ""
	}
}
