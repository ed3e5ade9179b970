package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"kncleanup/internal/config"
	"kncleanup/internal/lookup/backend"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or check the kncleanup configuration",
	}
	cmd.AddCommand(newConfigInitCommand(), newConfigValidateCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var target string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write the sample configuration and show the settings it selects",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := sampleTarget(target)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !overwrite {
				return fmt.Errorf("%s already exists (use --overwrite to replace it)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("check config path: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("create config directory: %w", err)
			}
			if err := config.CreateSample(path); err != nil {
				return fmt.Errorf("write sample config: %w", err)
			}

			cfg, _, _, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("sample config does not load: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", path)
			printSettings(out, cfg)
			if cfg.Lookup.Backend == config.LookupSQLite {
				fmt.Fprintf(out, "Load identifier mappings with `kncleanup lookup import` before running submissions.\n")
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&target, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing file")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Load the configuration, create its directories and show the settings in effect",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if ctx.configFlag != nil {
				path = strings.TrimSpace(*ctx.configFlag)
			}
			cfg, resolved, exists, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("ensure directories: %w", err)
			}
			out := cmd.OutOrStdout()
			if exists {
				fmt.Fprintf(out, "Config path: %s\n", resolved)
			} else {
				fmt.Fprintf(out, "Config path: %s (not found, defaults in effect)\n", resolved)
			}
			printSettings(out, cfg)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func sampleTarget(flag string) (string, error) {
	if flag = strings.TrimSpace(flag); flag != "" {
		path, err := config.ExpandPath(flag)
		if err != nil {
			return "", fmt.Errorf("resolve config path: %w", err)
		}
		return path, nil
	}
	path, err := config.DefaultConfigPath()
	if err != nil {
		return "", fmt.Errorf("determine default config path: %w", err)
	}
	return path, nil
}

// printSettings shows the settings a submission run depends on.
func printSettings(w io.Writer, cfg *config.Config) {
	rep := newReport(column{title: "Setting"}, column{title: "Value"})
	rep.add("lookup", backend.Describe(cfg))
	rep.add("lookup timeout", cfg.LookupTimeout().String())
	rep.add("artifacts", artifactsTarget(cfg))
	rep.add("default taxon", cfg.Pipeline.DefaultTaxon)
	rep.add("default hint", cfg.Pipeline.DefaultHint)
	rep.add("workers", strconv.Itoa(cfg.Pipeline.Workers))
	if cfg.Metrics.TextfilePath != "" {
		rep.add("metrics textfile", cfg.Metrics.TextfilePath)
	}
	fmt.Fprintln(w, rep.render())
}

func artifactsTarget(cfg *config.Config) string {
	if cfg.Artifacts.Backend == config.ArtifactsS3 {
		return "s3://" + strings.TrimSuffix(cfg.Artifacts.S3Bucket+"/"+cfg.Artifacts.S3Prefix, "/")
	}
	return cfg.Paths.ResultsDir
}
