package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/arcosphere/internal/config"
	"github.com/roach88/arcosphere/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database      string
	Limit         int
	Verifications bool
}

// RunEntry is one archived solve run in command output.
type RunEntry struct {
	ID         string   `json:"id"`
	Seq        int64    `json:"seq"`
	Family     string   `json:"family"`
	Source     string   `json:"source"`
	Target     string   `json:"target"`
	Status     string   `json:"status"`
	ErrorCode  string   `json:"error_code,omitempty"`
	DurationMS int64    `json:"duration_ms"`
	Paths      []string `json:"paths,omitempty"`
}

// VerificationEntry is one archived verification in command output.
type VerificationEntry struct {
	Seq       int64  `json:"seq"`
	Family    string `json:"family"`
	Path      string `json:"path"`
	Valid     bool   `json:"valid"`
	ErrorCode string `json:"error_code,omitempty"`
}

// HistoryResult is the output of the history command.
type HistoryResult struct {
	Runs          []RunEntry          `json:"runs,omitempty"`
	Verifications []VerificationEntry `json:"verifications,omitempty"`
}

// String renders one line per entry, newest first.
func (r HistoryResult) String() string {
	var b strings.Builder
	for _, run := range r.Runs {
		outcome := run.Status
		if run.ErrorCode != "" {
			outcome += " " + run.ErrorCode
		}
		fmt.Fprintf(&b, "#%d %s %s -> %s %s (%dms)\n",
			run.Seq, run.Family, run.Source, run.Target, outcome, run.DurationMS)
		for _, p := range run.Paths {
			fmt.Fprintf(&b, "  %s\n", p)
		}
	}
	for _, v := range r.Verifications {
		outcome := "valid"
		if !v.Valid {
			outcome = "invalid " + v.ErrorCode
		}
		fmt.Fprintf(&b, "#%d %s %s: %s\n", v.Seq, v.Family, v.Path, outcome)
	}
	if b.Len() == 0 {
		return "No history."
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs",
		Long: `List the solve runs, or the verifications, recorded in an archive.

Entries are printed newest first.

Examples:
  arcosphere history --db ./arcosphere.db
  arcosphere history --db ./arcosphere.db --limit 5 --format json
  arcosphere history --db ./arcosphere.db --verifications`,
		Args:          commandArgs(cobra.NoArgs),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite archive (defaults to the config's db)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of entries (0 for all)")
	cmd.Flags().BoolVar(&opts.Verifications, "verifications", false, "list verifications instead of solve runs")

	return cmd
}

func runHistory(ctx context.Context, opts *HistoryOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	// The family is irrelevant here; only the db setting is read.
	dbPath := opts.Database
	if dbPath == "" && opts.Config != "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
		}
		dbPath = cfg.DB
	}
	if dbPath == "" {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "no archive: pass --db or set db in the config", nil)
	}

	archive, err := store.Open(dbPath)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer archive.Close()

	var result HistoryResult
	if opts.Verifications {
		verifications, err := archive.ListVerifications(ctx, opts.Limit)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}
		for _, v := range verifications {
			result.Verifications = append(result.Verifications, VerificationEntry{
				Seq:       v.Seq,
				Family:    v.Family,
				Path:      v.Path,
				Valid:     v.Valid,
				ErrorCode: v.ErrorCode,
			})
		}
		return f.Success(result)
	}

	runs, err := archive.ListRuns(ctx, opts.Limit)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	for _, run := range runs {
		entry := RunEntry{
			ID:         run.ID,
			Seq:        run.Seq,
			Family:     run.Family,
			Source:     run.Source,
			Target:     run.Target,
			Status:     string(run.Status),
			ErrorCode:  run.ErrorCode,
			DurationMS: run.Duration.Milliseconds(),
		}
		for _, r := range run.Results {
			entry.Paths = append(entry.Paths, r.Path)
		}
		result.Runs = append(result.Runs, entry)
	}
	return f.Success(result)
}
