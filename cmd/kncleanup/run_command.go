package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"kncleanup/internal/pipeline"
	"kncleanup/internal/submission"
)

type runSummary struct {
	RunFile      string   `json:"run_file"`
	SubmissionID string   `json:"submission_id,omitempty"`
	Pipeline     string   `json:"pipeline,omitempty"`
	Status       string   `json:"status"`
	Mapped       int      `json:"mapped"`
	Unmapped     int      `json:"unmapped"`
	Duplicates   int      `json:"duplicates"`
	Reason       string   `json:"reason,omitempty"`
	Artifacts    []string `json:"artifacts,omitempty"`
	Error        string   `json:"error,omitempty"`
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var workers int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run RUN_FILE...",
		Short: "Clean one or more submissions described by YAML run files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.flushMetrics(cmd)

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			runner, err := submission.New(submission.Options{
				Config:  cfg,
				Logger:  logger,
				Metrics: ctx.metrics,
			})
			if err != nil {
				return err
			}

			results, err := runner.RunAll(cmd.Context(), args, workers)
			if err != nil {
				return err
			}

			summaries := make([]runSummary, 0, len(results))
			for _, res := range results {
				summaries = append(summaries, summarize(res))
			}
			if jsonOutput {
				if err := printJSON(cmd.OutOrStdout(), summaries); err != nil {
					return err
				}
			} else {
				printRunSummaries(cmd, summaries)
			}
			return runExitError(summaries)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Concurrent submissions (default pipeline.workers)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit results as JSON")
	return cmd
}

func summarize(res submission.Result) runSummary {
	s := runSummary{RunFile: res.RunFile, SubmissionID: res.SubmissionID, Artifacts: res.Artifacts}
	if res.Err != nil {
		s.Error = res.Err.Error()
	}
	out := res.Outcome
	if out == nil {
		s.Status = string(pipeline.StatusAborted)
		return s
	}
	s.Pipeline = out.Pipeline
	s.Status = string(out.Status)
	s.Reason = out.Reason
	if out.Report != nil {
		s.Mapped = out.Report.Mapped()
		s.Unmapped = out.Report.Unmapped()
		s.Duplicates = out.Report.Duplicates()
	}
	return s
}

func printRunSummaries(cmd *cobra.Command, summaries []runSummary) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	rep := newReport(
		column{title: "Run file"},
		column{title: "Pipeline"},
		column{title: "Status"},
		column{title: "Mapped", numeric: true},
		column{title: "Unmapped", numeric: true},
		column{title: "Duplicates", numeric: true},
		column{title: "Detail"},
	)
	for _, s := range summaries {
		rep.add(
			filepath.Base(s.RunFile),
			strings.TrimSuffix(s.Pipeline, "_pipeline"),
			paint(s.Status, statusColor(s), colorize),
			strconv.Itoa(s.Mapped),
			strconv.Itoa(s.Unmapped),
			strconv.Itoa(s.Duplicates),
			truncate(summaryDetail(s), 60),
		)
	}
	fmt.Fprintln(out, rep.render())
}

func statusColor(s runSummary) text.Color {
	switch {
	case s.Error != "":
		return text.FgRed
	case s.Status == string(pipeline.StatusRejected):
		return text.FgYellow
	default:
		return text.FgGreen
	}
}

// summaryDetail is the error, the rejection reason, or where the artifacts
// of a successful submission went.
func summaryDetail(s runSummary) string {
	switch {
	case s.Error != "":
		return s.Error
	case s.Status == string(pipeline.StatusRejected):
		return s.Reason
	case len(s.Artifacts) > 0:
		first := s.Artifacts[0]
		if i := strings.LastIndex(first, "/"); i > 0 {
			return first[:i]
		}
		return first
	default:
		return ""
	}
}

// runExitError maps the batch outcome onto the process exit code: any hard
// error wins over a rejection.
func runExitError(summaries []runSummary) error {
	rejected, failed := 0, 0
	for _, s := range summaries {
		switch {
		case s.Error != "":
			failed++
		case s.Status == string(pipeline.StatusRejected):
			rejected++
		}
	}
	switch {
	case failed > 0:
		return &exitError{code: exitFailure, msg: fmt.Sprintf("%d of %d submission(s) failed", failed, len(summaries))}
	case rejected > 0:
		return &exitError{code: exitRejected, msg: fmt.Sprintf("%d of %d submission(s) rejected", rejected, len(summaries))}
	default:
		return nil
	}
}
