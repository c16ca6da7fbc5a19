package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/arcosphere/internal/harness"
	"github.com/roach88/arcosphere/internal/store"
	"github.com/roach88/arcosphere/internal/verifier"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Database string
}

// VerifyResult is the output of a successful verify command.
type VerifyResult struct {
	Path    string `json:"path"`
	Valid   bool   `json:"valid"`
	Stages  int    `json:"stages"`
	Recipes int    `json:"recipes"`
	Seq     int64  `json:"seq,omitempty"`
}

func (r VerifyResult) String() string {
	return harness.ValidOutput
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <path>",
		Short: "Check that a staged path replays",
		Long: `Check that a staged path is valid.

Every recipe must belong to the family. Each stage is applied to what the
previous stages produced, with every recipe of a stage consuming from the
state the stage started with. The result must be the target, and the
catalysts must come back unchanged.

Exit codes:
  0 - Path is valid
  1 - Path is well-formed but does not replay
  2 - Command error (path does not parse, unreadable family)

Examples:
  arcosphere verify "EP -> LX + G => PG -> XO | EO -> LG"
  arcosphere verify "EO -> LG => PG -> XO" --format json
  arcosphere verify "EO -> LG => EO -> LG" --db ./arcosphere.db`,
		Args:          commandArgs(cobra.ExactArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite archive to record the outcome in")

	return cmd
}

func runVerify(ctx context.Context, opts *VerifyOptions, text string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	env, err := opts.loadEnvironment()
	if err != nil {
		return reportLoadError(f, err)
	}
	family := env.family

	sp, err := family.ParseStagedPath(text)
	if err != nil {
		return f.Fail(ExitCommandError, harness.ErrorCode(err), err.Error(), nil)
	}

	verifyErr := verifier.New(family).VerifyStaged(sp)

	result := VerifyResult{
		Path:    family.FormatStagedPath(sp),
		Valid:   verifyErr == nil,
		Stages:  sp.StageCount(),
		Recipes: sp.RecipeCount(),
	}

	dbPath := env.config.DB
	if opts.Database != "" {
		dbPath = opts.Database
	}
	if dbPath != "" {
		seq, err := archiveVerification(ctx, dbPath, family.Name(), result.Path, verifyErr)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}
		result.Seq = seq
	}

	if verifyErr != nil {
		env.logger.Debug("verification failed", "path", result.Path, "error", verifyErr)
		return f.Fail(ExitFailure, harness.ErrorCode(verifyErr), verifyErr.Error(), verificationDetails(verifyErr))
	}
	return f.Success(result)
}

// verificationDetails exposes where a path stopped replaying.
func verificationDetails(err error) any {
	var ve *verifier.VerificationError
	if !errors.As(err, &ve) {
		return nil
	}
	return map[string]int{"index": ve.Index}
}

func archiveVerification(ctx context.Context, dbPath, family, path string, verifyErr error) (int64, error) {
	archive, err := store.Open(dbPath)
	if err != nil {
		return 0, err
	}
	defer archive.Close()

	v := store.Verification{
		Family: family,
		Path:   path,
		Valid:  verifyErr == nil,
	}
	if verifyErr != nil {
		v.ErrorCode = harness.ErrorCode(verifyErr)
		v.Message = verifyErr.Error()
	}
	return archive.WriteVerification(ctx, v)
}
