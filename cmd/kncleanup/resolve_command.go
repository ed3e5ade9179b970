package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"kncleanup/internal/lookup/backend"
	"kncleanup/internal/resolver"
)

type resolvedKey struct {
	Key         string `json:"key"`
	ID          string `json:"id"`
	Outcome     string `json:"outcome"`
	Type        string `json:"type"`
	Alias       string `json:"alias"`
	Description string `json:"description"`
}

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var hint string
	var taxon string
	var nodeType string
	var fromFile string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resolve [KEY...]",
		Short: "Resolve identifiers against the lookup backend",
		Long: "Resolve user-supplied identifiers to canonical IDs. Keys come from the arguments or, " +
			"with --file, one per line from a file (- for stdin).",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.flushMetrics(cmd)

			keys := append([]string(nil), args...)
			if fromFile != "" {
				fileKeys, err := readKeys(cmd, fromFile)
				if err != nil {
					return err
				}
				keys = append(keys, fileKeys...)
			}
			if len(keys) == 0 {
				return fmt.Errorf("no keys to resolve; pass keys as arguments or use --file")
			}
			kind, err := resolver.ParseNodeType(nodeType)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store, err := backend.Open(cmd.Context(), cfg, backend.Override{}, logger)
			if err != nil {
				return err
			}
			defer store.Close()

			if !cmd.Flags().Changed("taxon") {
				taxon = cfg.Pipeline.DefaultTaxon
			}
			if !cmd.Flags().Changed("hint") {
				hint = cfg.Pipeline.DefaultHint
			}

			res := resolver.New(store, resolver.WithLogger(logger), resolver.WithMetrics(ctx.metrics))
			records, err := res.Resolve(cmd.Context(), keys, kind, hint, taxon)
			if err != nil {
				return err
			}

			out := make([]resolvedKey, 0, len(records))
			for _, rec := range records {
				out = append(out, resolvedKey{
					Key:         rec.Key,
					ID:          rec.ID.String(),
					Outcome:     rec.ID.Outcome().String(),
					Type:        string(rec.Type),
					Alias:       rec.Alias,
					Description: rec.Description,
				})
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), out)
			}
			rep := newReport(column{title: "Key"}, column{title: "Canonical ID"}, column{title: "Type"},
				column{title: "Alias"}, column{title: "Description"})
			for _, r := range out {
				rep.add(r.Key, r.ID, r.Type, r.Alias, truncate(r.Description, 60))
			}
			fmt.Fprintln(cmd.OutOrStdout(), rep.render())
			return nil
		},
	}

	cmd.Flags().StringVar(&hint, "hint", "", "Source hint (default pipeline.default_hint)")
	cmd.Flags().StringVar(&taxon, "taxon", "", "Taxon ID (default pipeline.default_taxon)")
	cmd.Flags().StringVar(&nodeType, "type", "", "Node type: Gene or Property (default: probe)")
	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "Read keys from a file, one per line")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit results as JSON")
	return cmd
}

func readKeys(cmd *cobra.Command, path string) ([]string, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open key file: %w", err)
		}
		defer f.Close()
		r = f
	}
	var keys []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			keys = append(keys, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	return keys, nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
