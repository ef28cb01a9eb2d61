package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ludo-technologies/revet/domain"
	"github.com/ludo-technologies/revet/internal/catalog"
	"github.com/ludo-technologies/revet/internal/config"
	"github.com/ludo-technologies/revet/internal/detector"
	"github.com/ludo-technologies/revet/internal/filter"
	"github.com/ludo-technologies/revet/internal/logging"
	"github.com/ludo-technologies/revet/internal/version"
)

// toolingRuleID is the catalog rule used to surface skipped exclusion
// patterns as findings
const toolingRuleID = "invalid-exclude-pattern"

// ReviewServiceImpl implements domain.ReviewService: filter the changeset,
// run every applicable detector per included file on a bounded worker
// pool, then resolve raw matches into ordered findings.
type ReviewServiceImpl struct {
	catalog  *catalog.Catalog
	registry *detector.Registry
	resolver *Resolver
	executor *ParallelExecutorImpl

	detectorTimeout time.Duration
}

// NewReviewService creates a review service with default performance
// settings and the built-in detector registry
func NewReviewService(cat *catalog.Catalog) *ReviewServiceImpl {
	return &ReviewServiceImpl{
		catalog:         cat,
		registry:        detector.NewRegistry(),
		resolver:        NewResolver(cat),
		executor:        NewParallelExecutor(),
		detectorTimeout: time.Duration(config.DefaultDetectorTimeoutMs) * time.Millisecond,
	}
}

// NewReviewServiceFromConfig creates a review service from configuration
func NewReviewServiceFromConfig(cat *catalog.Catalog, perf *config.PerformanceConfig) *ReviewServiceImpl {
	svc := NewReviewService(cat)
	svc.executor = NewParallelExecutorFromConfig(perf)
	if perf.DetectorTimeoutMs > 0 {
		svc.detectorTimeout = time.Duration(perf.DetectorTimeoutMs) * time.Millisecond
	}
	return svc
}

// NewReviewServiceWithProgress creates a review service with progress tracking
func NewReviewServiceWithProgress(cat *catalog.Catalog, perf *config.PerformanceConfig, pm domain.ProgressManager) *ReviewServiceImpl {
	svc := NewReviewServiceFromConfig(cat, perf)
	svc.executor = NewParallelExecutorWithProgress(perf, pm)
	return svc
}

// reviewState accumulates results across file workers. Matches and
// failures arrive in completion order; the resolver's sort restores
// determinism before anything is emitted.
type reviewState struct {
	mu        sync.Mutex
	matches   []domain.RawMatch
	failures  []domain.DetectorFailure
	completed int
}

func (s *reviewState) addMatches(ms []domain.RawMatch) {
	if len(ms) == 0 {
		return
	}
	s.mu.Lock()
	s.matches = append(s.matches, ms...)
	s.mu.Unlock()
}

func (s *reviewState) addFailure(f domain.DetectorFailure) {
	s.mu.Lock()
	s.failures = append(s.failures, f)
	s.mu.Unlock()
}

func (s *reviewState) fileDone() {
	s.mu.Lock()
	s.completed++
	s.mu.Unlock()
}

// Review analyzes the changeset and returns ordered, deduplicated findings
func (s *ReviewServiceImpl) Review(ctx context.Context, req domain.ReviewRequest) (*domain.ReviewResponse, error) {
	units, toolingMatches, warnings, partial := s.prepareUnits(req)

	summary := domain.ReviewSummary{FilesChanged: len(req.Changeset)}

	state := &reviewState{matches: toolingMatches}

	var tasks []domain.ExecutableTask
	for i := range units {
		unit := &units[i]
		if unit.Excluded {
			summary.FilesExcluded++
			continue
		}
		tasks = append(tasks, &fileReviewTask{
			service: s,
			unit:    unit,
			state:   state,
		})
	}

	if err := s.executor.Execute(ctx, tasks); err != nil {
		// detector failures are recorded in state; the executor returns
		// task-level errors aggregated and its own deadline as truncation
		var agg *AggregatedError
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			partial = true
		case errors.As(err, &agg):
		default:
			return nil, err
		}
	}

	if ctx.Err() != nil {
		// cancelled mid-run: report what was resolved, marked partial
		partial = true
	}

	// only files whose analysis actually ran to completion count as analyzed
	summary.FilesAnalyzed = state.completed

	findings := s.resolver.Resolve(state.matches, req.MinSeverity)

	failures := state.failures
	sort.Slice(failures, func(i, j int) bool {
		if failures[i].Path != failures[j].Path {
			return failures[i].Path < failures[j].Path
		}
		return failures[i].RuleID < failures[j].RuleID
	})

	for _, f := range findings {
		switch f.Severity {
		case domain.SeveritySecurity:
			summary.SecurityFindings++
		case domain.SeverityCorrectness:
			summary.CorrectnessFindings++
		case domain.SeverityStyle:
			summary.StyleFindings++
		}
	}
	summary.TotalFindings = len(findings)
	summary.DetectorFailures = len(failures)
	summary.Partial = partial

	return &domain.ReviewResponse{
		Findings:    findings,
		Failures:    failures,
		Summary:     summary,
		Warnings:    warnings,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Version:     version.Version,
	}, nil
}

// prepareUnits builds source units from the changeset: compile the
// exclusion filter, mark excluded files and infer languages. Malformed
// patterns degrade to tooling findings, never abort.
func (s *ReviewServiceImpl) prepareUnits(req domain.ReviewRequest) ([]domain.SourceUnit, []domain.RawMatch, []string, bool) {
	fileFilter := filter.New(req.ExcludeGlobs)

	var toolingMatches []domain.RawMatch
	var warnings []string
	partial := false

	for _, ferr := range fileFilter.Errors {
		warnings = append(warnings, ferr.Error())
		partial = true
		location := req.ConfigPath
		if location == "" {
			location = "<config>"
		}
		toolingMatches = append(toolingMatches, domain.RawMatch{
			RuleID:  toolingRuleID,
			Path:    location,
			Lines:   domain.LineRange{Start: 1, End: 1},
			Excerpt: ferr.Pattern,
		})
	}

	units := make([]domain.SourceUnit, 0, len(req.Changeset))
	for _, file := range req.Changeset {
		units = append(units, domain.SourceUnit{
			Path:     file.Path,
			Language: InferLanguage(file.Path, req.LanguageOverrides),
			Content:  file.Content,
			Excluded: !fileFilter.Include(file.Path),
		})
	}

	return units, toolingMatches, warnings, partial
}

// fileReviewTask runs all applicable detectors against one source unit
type fileReviewTask struct {
	service *ReviewServiceImpl
	unit    *domain.SourceUnit
	state   *reviewState
}

// Name identifies the task in error reports
func (t *fileReviewTask) Name() string { return t.unit.Path }

// IsEnabled reports whether the task should run
func (t *fileReviewTask) IsEnabled() bool { return !t.unit.Excluded }

// Execute runs every rule applicable to the unit's language. Each detector
// invocation is isolated: a failure or panic in one detector is recorded
// and the rest keep running.
func (t *fileReviewTask) Execute(ctx context.Context) (any, error) {
	for _, rule := range t.service.catalog.RulesFor(t.unit.Language) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		det, ok := t.service.registry.Lookup(rule.ID)
		if !ok {
			// catalog-only rules (e.g. tooling) have no detector
			continue
		}

		matches, err := t.service.runDetector(ctx, det, t.unit)
		if err != nil {
			// a dead run context means the whole run is being torn down;
			// that is truncation, not a failure of this rule
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			t.state.addFailure(domain.DetectorFailure{
				RuleID: rule.ID,
				Path:   t.unit.Path,
				Cause:  err.Error(),
			})
			logging.L().Warnw("detector failed",
				"rule", rule.ID,
				"path", t.unit.Path,
				"cause", err.Error(),
			)
			continue
		}
		t.state.addMatches(matches)
	}
	t.state.fileDone()
	return nil, nil
}

// runDetector invokes one detector with panic isolation and a
// per-invocation deadline. A timeout is a DetectorFailure, never fatal.
func (s *ReviewServiceImpl) runDetector(ctx context.Context, det detector.Detector, unit *domain.SourceUnit) (matches []domain.RawMatch, err error) {
	callCtx, cancel := context.WithTimeout(ctx, s.detectorTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			matches = nil
			err = fmt.Errorf("detector panicked: %v", r)
		}
	}()

	matches, err = det.Detect(callCtx, unit)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("detector timed out after %s", s.detectorTimeout)
	}
	return matches, err
}
