package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kettlebent/tagforge/internal/config"
)

type runtimeOptions struct {
	BinDir          string
	Mode            string
	Compiler        string
	ConfigureArgs   string
	MakeTarget      *string
	UnsetGrantsAll  bool
	Strict          bool
	Debug           bool
	DangerousInline bool
}

type rootFlags struct {
	ConfigPath      string
	BinDir          string
	Mode            string
	Strict          bool
	Debug           bool
	DangerousInline bool
}

var rootOpts rootFlags

func NewRootCmd(buildVersion, buildDate string) *cobra.Command {
	showVersion := false

	cmd := &cobra.Command{
		Use:           "tagforge",
		Short:         "Build, run and manage tagged versions of a project",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintln(cmd.OutOrStdout(), formatVersion(buildVersion, buildDate))
				return nil
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&rootOpts.ConfigPath, "config", "f", "", "Path to YAML config file")
	cmd.Flags().BoolVar(&showVersion, "version", false, "Print CLI version")
	cmd.PersistentFlags().StringVarP(&rootOpts.BinDir, "dir", "D", "", "Directory holding forge.lock and version builds")
	cmd.PersistentFlags().BoolVarP(&rootOpts.Strict, "strict", "X", false, "Disable convenience fallbacks")
	cmd.PersistentFlags().StringVar(&rootOpts.Mode, "mode", "", "Build mode: git or base")
	cmd.PersistentFlags().BoolVarP(&rootOpts.Debug, "debug", "V", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&rootOpts.DangerousInline, "dangerous-inline", false, "Skip write confirmation prompts and perform writes inline")

	cmd.AddCommand(newVersionCmd(buildVersion, buildDate))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newQueryCmd())
	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newPurgeCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newTestCmd())
	cmd.AddCommand(newLintCmd())

	return cmd
}

func mergedOptions(cmd *cobra.Command) (runtimeOptions, error) {
	merged := runtimeOptions{
		BinDir:   "./bin",
		Mode:     "git",
		Compiler: "",
	}

	if rootOpts.ConfigPath != "" {
		fileCfg, err := config.Load(rootOpts.ConfigPath)
		if err != nil {
			return runtimeOptions{}, err
		}

		if fileCfg.BinDir != "" {
			merged.BinDir = fileCfg.BinDir
		}
		if fileCfg.Mode != "" {
			merged.Mode = fileCfg.Mode
		}
		if fileCfg.Compiler != "" {
			merged.Compiler = fileCfg.Compiler
		}
		if fileCfg.ConfigureArgs != "" {
			merged.ConfigureArgs = fileCfg.ConfigureArgs
		}
		if fileCfg.MakeTarget != nil {
			merged.MakeTarget = fileCfg.MakeTarget
		}
		if fileCfg.UnsetGrantsAll != nil {
			merged.UnsetGrantsAll = *fileCfg.UnsetGrantsAll
		}
		if fileCfg.Strict != nil {
			merged.Strict = *fileCfg.Strict
		}
		if fileCfg.Debug != nil {
			merged.Debug = *fileCfg.Debug
		}
	}

	if err := applyEnvOverrides(&merged); err != nil {
		return runtimeOptions{}, err
	}

	if cmd.Flags().Changed("dir") {
		merged.BinDir = rootOpts.BinDir
	}
	if cmd.Flags().Changed("mode") {
		merged.Mode = rootOpts.Mode
	}
	if cmd.Flags().Changed("strict") {
		merged.Strict = rootOpts.Strict
	}
	if cmd.Flags().Changed("debug") {
		merged.Debug = rootOpts.Debug
	}
	if cmd.Flags().Changed("dangerous-inline") {
		merged.DangerousInline = rootOpts.DangerousInline
	}

	merged.BinDir = strings.TrimSpace(merged.BinDir)
	merged.Mode = strings.TrimSpace(merged.Mode)
	merged.Compiler = strings.TrimSpace(merged.Compiler)

	if merged.BinDir == "" {
		merged.BinDir = "./bin"
	}

	configureLogging(merged.Debug)
	return merged, nil
}

func configureLogging(debug bool) {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func applyEnvOverrides(opts *runtimeOptions) error {
	if value, ok := getenvTrim("TAGFORGE_DIR"); ok {
		opts.BinDir = value
	}
	if value, ok := getenvTrim("TAGFORGE_MODE"); ok {
		opts.Mode = value
	}
	if value, ok := getenvTrim("TAGFORGE_COMPILER"); ok {
		opts.Compiler = value
	}
	if value, ok := getenvTrim("TAGFORGE_CONFIGURE_ARGS"); ok {
		opts.ConfigureArgs = value
	}
	if value, ok := getenvTrim("TAGFORGE_MAKE_TARGET"); ok {
		opts.MakeTarget = &value
	}

	if value, ok := getenvTrim("TAGFORGE_UNSET_GRANTS_ALL"); ok {
		parsed, err := parseBoolEnv("TAGFORGE_UNSET_GRANTS_ALL", value)
		if err != nil {
			return err
		}
		opts.UnsetGrantsAll = parsed
	}
	if value, ok := getenvTrim("TAGFORGE_STRICT"); ok {
		parsed, err := parseBoolEnv("TAGFORGE_STRICT", value)
		if err != nil {
			return err
		}
		opts.Strict = parsed
	}
	if value, ok := getenvTrim("TAGFORGE_DEBUG"); ok {
		parsed, err := parseBoolEnv("TAGFORGE_DEBUG", value)
		if err != nil {
			return err
		}
		opts.Debug = parsed
	}
	if value, ok := getenvTrim("TAGFORGE_DANGEROUS_INLINE"); ok {
		parsed, err := parseBoolEnv("TAGFORGE_DANGEROUS_INLINE", value)
		if err != nil {
			return err
		}
		opts.DangerousInline = parsed
	}
	return nil
}

func getenvTrim(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func parseBoolEnv(name, raw string) (bool, error) {
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("parse %s as bool: %w", name, err)
	}
	return parsed, nil
}
