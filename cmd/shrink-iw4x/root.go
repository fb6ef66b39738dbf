package main

import (
	"fmt"
	"log/slog"
	"os"

	units "github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	shrink "github.com/iw4x/shrink-iw4x"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "shrink-iw4x [dir]",
	Short: "Strip textures, sound, and video from an IW4x install",
	Long: `shrink-iw4x shrinks an IW4x installation by deleting the video directory
and filtering .iwd archives in the main and iw4x subdirectories. Entries
under images/, sound/, and video/ and entries with .iwi or .mp3 extensions
are removed; everything else is copied byte-for-byte into a rebuilt
archive. Each archive is fully rewritten and verified before the original
is replaced, so an interrupted run never leaves a half-filtered archive.

The removal policy and the processed subdirectories can be overridden in a
shrink-iw4x.yaml config file or via SHRINK_IW4X_* environment variables.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runClean,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default shrink-iw4x.yaml in . or $HOME/.shrink-iw4x)")
	flags.Int("workers", 1, "archives to process in parallel")
	flags.Bool("strict", false, "abort an archive when a kept entry cannot be copied")
	flags.Bool("verbose", false, "enable debug logging")
	flags.StringSlice("dirs", shrink.DefaultDirs, "game subdirectories to process")
	_ = viper.BindPFlags(flags)
}

// initConfig reads in the config file and matching environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.shrink-iw4x")
		viper.SetConfigName("shrink-iw4x")
	}
	viper.SetEnvPrefix("shrink_iw4x")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadPolicy starts from the stock policy and applies config overrides.
func loadPolicy() shrink.Policy {
	policy := shrink.DefaultPolicy()
	if viper.IsSet("policy") {
		if err := viper.UnmarshalKey("policy", &policy); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: ignoring invalid policy config:", err)
			return shrink.DefaultPolicy()
		}
	}
	return policy
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func baseDirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

func runClean(cmd *cobra.Command, args []string) error {
	cleaner := shrink.NewCleaner(loadPolicy(),
		shrink.WithLogger(newLogger()),
		shrink.WithWorkers(viper.GetInt("workers")),
		shrink.WithStrict(viper.GetBool("strict")),
		shrink.WithDirs(viper.GetStringSlice("dirs")...),
		shrink.WithProgress(printProgress),
	)

	stats, err := cleaner.Run(cmd.Context(), baseDirArg(args))
	if err != nil {
		return err
	}

	fmt.Printf("\nTotal files removed: %d\n", stats.FilesRemoved)
	fmt.Printf("Total size removed: %s\n", units.HumanSize(float64(stats.BytesRemoved)))
	if stats.Failed > 0 {
		fmt.Printf("Skipped due to errors: %d\n", stats.Failed)
	}
	return nil
}

func printProgress(ev shrink.ProgressEvent) {
	switch ev.Stage {
	case shrink.StageScanningDir:
		fmt.Printf("\nProcessing directory: %s\n", ev.Path)
	case shrink.StageDirMissing:
		fmt.Printf("Directory %s not found, skipping...\n", ev.Path)
	case shrink.StageBulkRemoved:
		fmt.Printf("Removed directory %s (%s)\n", ev.Path, units.HumanSize(float64(ev.Bytes)))
	case shrink.StageArchiveStart:
		fmt.Printf("Processing: %s\n", ev.Path)
	case shrink.StageArchiveDone:
		if ev.Files > 0 {
			fmt.Printf("Removed %d files (%s) from %s\n", ev.Files, units.HumanSize(float64(ev.Bytes)), ev.Path)
		}
	case shrink.StageArchiveFailed:
		fmt.Printf("Error processing %s: %v\n", ev.Path, ev.Err)
	}
}
