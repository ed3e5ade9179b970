package main

import (
	"context"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"kncleanup/internal/artifacts"
	"kncleanup/internal/config"
	"kncleanup/internal/lookup/backend"
	"kncleanup/internal/stage"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the lookup backend and artifact storage are reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			lookupName := "lookup (" + backend.Describe(cfg) + ")"
			checkers := []stage.Checker{lookupChecker(cfg, lookupName)}
			sink, err := artifacts.Open(cmd.Context(), cfg, "", logger)
			if err != nil {
				checkers = append(checkers, stage.CheckerFunc(func(context.Context) stage.Health {
					return stage.Unhealthy("artifacts", err.Error())
				}))
			} else {
				checkers = append(checkers, sink)
			}

			results, ready := stage.CheckAll(cmd.Context(), checkers...)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, healthReport(results, shouldColorize(out)))
			if !ready {
				return &exitError{code: exitFailure, msg: "one or more backends are unhealthy"}
			}
			fmt.Fprintln(out, "All backends healthy")
			return nil
		},
	}
}

func lookupChecker(cfg *config.Config, name string) stage.Checker {
	return stage.CheckerFunc(func(ctx context.Context) stage.Health {
		store, err := backend.Open(ctx, cfg, backend.Override{}, nil)
		if err != nil {
			return stage.Unhealthy(name, err.Error())
		}
		defer store.Close()
		return stage.PingCheck(name, store.Ping).HealthCheck(ctx)
	})
}

// healthReport tabulates backend checks in the order they were run.
func healthReport(results []stage.Health, colorize bool) string {
	rep := newReport(column{title: "Backend"}, column{title: "State"}, column{title: "Detail"})
	for _, h := range results {
		if h.Ready {
			rep.add(h.Name, paint("Healthy", text.FgGreen, colorize), h.Detail)
			continue
		}
		rep.add(h.Name, paint("Unhealthy", text.FgRed, colorize), h.Detail)
	}
	return rep.render()
}
