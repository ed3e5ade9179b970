package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kncleanup/internal/lookup"
	"kncleanup/internal/lookup/backend"
	"kncleanup/internal/lookup/sqlstore"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	lookupCmd := &cobra.Command{
		Use:   "lookup",
		Short: "Lookup table maintenance",
	}
	lookupCmd.AddCommand(newLookupImportCommand(ctx))
	return lookupCmd
}

func newLookupImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import key<TAB>value pairs into the lookup backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()
			pairs, err := lookup.ReadPairs(f)
			if err != nil {
				return err
			}

			store, err := backend.Open(cmd.Context(), cfg, backend.Override{}, logger)
			if err != nil {
				return err
			}
			defer store.Close()
			loader, ok := store.(lookup.Loader)
			if !ok {
				return fmt.Errorf("lookup backend %s does not support imports", cfg.Lookup.Backend)
			}

			n, err := loader.Load(cmd.Context(), pairs)
			if errors.Is(err, sqlstore.ErrImportLocked) {
				return fmt.Errorf("another import is running against %s: %w", backend.Describe(cfg), err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries into %s\n", n, backend.Describe(cfg))
			return nil
		},
	}
}
