package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/revet/app"
	"github.com/ludo-technologies/revet/domain"
	"github.com/ludo-technologies/revet/internal/catalog"
	"github.com/ludo-technologies/revet/internal/config"
	"github.com/ludo-technologies/revet/internal/constants"
	"github.com/ludo-technologies/revet/internal/diffsource"
	"github.com/ludo-technologies/revet/internal/logging"
	"github.com/ludo-technologies/revet/service"
)

// ReviewExitError carries an explicit process exit code out of the review
// command
type ReviewExitError struct {
	Code    int
	Message string
}

func (e *ReviewExitError) Error() string {
	return e.Message
}

var (
	reviewStaged      bool
	reviewDiffBase    string
	reviewFormat      string
	reviewOutputPath  string
	reviewConfigPath  string
	reviewMinSeverity string
	reviewFailOn      string
	reviewExcludes    []string
	reviewNoProgress  bool
	reviewDebug       bool
)

func reviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review [path...]",
		Short: "Review changed files against the guideline catalog",
		Long: `Review a changeset against the guideline catalog and report findings
ordered by severity (security > correctness > style).

Exit codes:
  0 - No finding at or above the fail-on tier
  1 - At least one finding at or above the fail-on tier
  2 - Infrastructure error (bad catalog, unreadable input, bad config)

Examples:
  # Review explicit files
  revet review src/server.js src/db.js

  # Review everything staged in the git index
  revet review --staged

  # Review files changed since a base revision
  revet review --diff origin/main

  # Machine-readable output for CI
  revet review --staged --format sarif --output findings.sarif

  # Fail the pipeline on correctness findings too
  revet review --staged --fail-on correctness`,
		RunE:          runReview,
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	cmd.Flags().BoolVar(&reviewStaged, "staged", false,
		"Review the files staged in the git index")
	cmd.Flags().StringVar(&reviewDiffBase, "diff", "",
		"Review the files changed between the given revision and HEAD")
	cmd.Flags().StringVarP(&reviewFormat, "format", "f", "",
		"Output format: text, json, yaml, sarif")
	cmd.Flags().StringVarP(&reviewOutputPath, "output", "o", "",
		"Output file path (default: stdout)")
	cmd.Flags().StringVarP(&reviewConfigPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVar(&reviewMinSeverity, "min-severity", "",
		"Minimum severity tier to report: security, correctness, style")
	cmd.Flags().StringVar(&reviewFailOn, "fail-on", "",
		"Severity tier at or above which the run exits non-zero: security, correctness")
	cmd.Flags().StringSliceVarP(&reviewExcludes, "exclude", "e", nil,
		"Exclusion patterns (replaces configured patterns)")
	cmd.Flags().BoolVar(&reviewNoProgress, "no-progress", false,
		"Disable progress output")
	cmd.Flags().BoolVar(&reviewDebug, "debug", false,
		"Enable debug logging")

	return cmd
}

func runReview(cmd *cobra.Command, args []string) error {
	if err := logging.Init(reviewDebug); err != nil {
		return &ReviewExitError{Code: constants.ExitError, Message: fmt.Sprintf("failed to initialize logging: %v", err)}
	}

	provider, err := selectProvider(args)
	if err != nil {
		return &ReviewExitError{Code: constants.ExitError, Message: err.Error()}
	}

	// Load configuration
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	cfg, err := config.LoadConfigWithTarget(reviewConfigPath, target)
	if err != nil {
		return &ReviewExitError{Code: constants.ExitError, Message: fmt.Sprintf("failed to load configuration: %v", err)}
	}

	loader := service.NewConfigurationLoader()
	base := loader.FromConfig(cfg)

	override, err := requestFromFlags()
	if err != nil {
		return &ReviewExitError{Code: constants.ExitError, Message: err.Error()}
	}
	req := loader.MergeConfig(base, override)

	// Output destination
	writer := os.Stdout
	if reviewOutputPath != "" {
		file, err := os.Create(reviewOutputPath)
		if err != nil {
			return &ReviewExitError{Code: constants.ExitError, Message: fmt.Sprintf("failed to create output file: %v", err)}
		}
		defer func() { _ = file.Close() }()
		writer = file
	}
	req.OutputWriter = writer

	// A malformed catalog is the only fatal error in the taxonomy
	cat, err := catalog.Default()
	if err != nil {
		return &ReviewExitError{Code: constants.ExitError, Message: err.Error()}
	}

	// Progress is suppressed for machine-readable stdout output
	showProgress := !reviewNoProgress &&
		(req.OutputFormat == domain.OutputFormatText || reviewOutputPath != "")
	pm := service.NewProgressManager(showProgress)
	defer pm.Close()

	svc := service.NewReviewServiceWithProgress(cat, &cfg.Performance, pm)

	uc, err := app.NewReviewUseCaseBuilder().
		WithService(svc).
		WithFormatter(service.NewOutputFormatter()).
		Build()
	if err != nil {
		return &ReviewExitError{Code: constants.ExitError, Message: err.Error()}
	}

	ctx := context.Background()
	if cfg.Performance.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.Performance.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	response, err := uc.ExecuteWithProvider(ctx, provider, *req)
	if err != nil {
		return &ReviewExitError{Code: constants.ExitError, Message: err.Error()}
	}

	if response.ShouldFail(req.FailOn) {
		// Findings are already printed; only the exit code signals failure
		return &ReviewExitError{Code: constants.ExitFail, Message: ""}
	}
	return nil
}

// selectProvider picks the changeset source from the flags and arguments
func selectProvider(args []string) (domain.ChangesetProvider, error) {
	switch {
	case reviewStaged && reviewDiffBase != "":
		return nil, fmt.Errorf("--staged and --diff are mutually exclusive")
	case reviewStaged && len(args) > 0, reviewDiffBase != "" && len(args) > 0:
		return nil, fmt.Errorf("explicit paths cannot be combined with --staged or --diff")
	case reviewStaged:
		return &diffsource.StagedProvider{Root: "."}, nil
	case reviewDiffBase != "":
		return &diffsource.DiffProvider{Root: ".", Base: reviewDiffBase}, nil
	case len(args) > 0:
		return &diffsource.PathProvider{Paths: args}, nil
	default:
		return nil, fmt.Errorf("no input: pass file paths or use --staged / --diff")
	}
}

// requestFromFlags builds the flag-level override request
func requestFromFlags() (*domain.ReviewRequest, error) {
	override := &domain.ReviewRequest{
		ConfigPath: reviewConfigPath,
	}

	if reviewFormat != "" {
		switch domain.OutputFormat(reviewFormat) {
		case domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML, domain.OutputFormatSARIF:
			override.OutputFormat = domain.OutputFormat(reviewFormat)
		default:
			return nil, fmt.Errorf("invalid output format %q, must be one of: text, json, yaml, sarif", reviewFormat)
		}
	}

	if reviewMinSeverity != "" {
		severity, ok := domain.ParseSeverity(reviewMinSeverity)
		if !ok {
			return nil, fmt.Errorf("invalid --min-severity %q, must be one of: security, correctness, style", reviewMinSeverity)
		}
		override.MinSeverity = severity
	}

	if reviewFailOn != "" {
		severity, ok := domain.ParseSeverity(reviewFailOn)
		if !ok || severity == domain.SeverityStyle {
			return nil, fmt.Errorf("invalid --fail-on %q, must be security or correctness", reviewFailOn)
		}
		override.FailOn = severity
	}

	if len(reviewExcludes) > 0 {
		override.ExcludeGlobs = reviewExcludes
	}

	return override, nil
}
