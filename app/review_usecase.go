package app

import (
	"context"
	"fmt"
	"os"

	"github.com/ludo-technologies/revet/domain"
)

// ReviewUseCase orchestrates the review workflow: acquire the changeset,
// run the engine and render the report.
type ReviewUseCase struct {
	service   domain.ReviewService
	formatter domain.OutputFormatter
}

// NewReviewUseCase creates a new review use case
func NewReviewUseCase(service domain.ReviewService, formatter domain.OutputFormatter) *ReviewUseCase {
	return &ReviewUseCase{
		service:   service,
		formatter: formatter,
	}
}

// Execute performs the complete review workflow
func (uc *ReviewUseCase) Execute(ctx context.Context, req domain.ReviewRequest) (*domain.ReviewResponse, error) {
	if err := uc.validateRequest(req); err != nil {
		return nil, err
	}

	response, err := uc.service.Review(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("review failed: %w", err)
	}

	writer := req.OutputWriter
	if writer == nil {
		writer = os.Stdout
	}
	if err := uc.formatter.Write(response, req.OutputFormat, writer); err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	return response, nil
}

// ExecuteWithProvider acquires the changeset from the provider before
// running the workflow
func (uc *ReviewUseCase) ExecuteWithProvider(ctx context.Context, provider domain.ChangesetProvider, req domain.ReviewRequest) (*domain.ReviewResponse, error) {
	changeset, err := provider.Changeset(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect changeset: %w", err)
	}
	req.Changeset = changeset
	return uc.Execute(ctx, req)
}

// validateRequest validates the review request
func (uc *ReviewUseCase) validateRequest(req domain.ReviewRequest) error {
	if req.OutputFormat == "" {
		return fmt.Errorf("no output format specified")
	}

	if req.MinSeverity != "" {
		if _, ok := domain.ParseSeverity(string(req.MinSeverity)); !ok {
			return fmt.Errorf("invalid minimum severity: %s", req.MinSeverity)
		}
	}

	if req.FailOn != "" {
		failOn, ok := domain.ParseSeverity(string(req.FailOn))
		if !ok {
			return fmt.Errorf("invalid fail-on severity: %s", req.FailOn)
		}
		if failOn == domain.SeverityStyle {
			return fmt.Errorf("fail-on severity cannot be 'style'")
		}
	}

	return nil
}

// ReviewUseCaseBuilder provides a builder pattern for creating ReviewUseCase
type ReviewUseCaseBuilder struct {
	service   domain.ReviewService
	formatter domain.OutputFormatter
}

// NewReviewUseCaseBuilder creates a new builder
func NewReviewUseCaseBuilder() *ReviewUseCaseBuilder {
	return &ReviewUseCaseBuilder{}
}

// WithService sets the review service
func (b *ReviewUseCaseBuilder) WithService(service domain.ReviewService) *ReviewUseCaseBuilder {
	b.service = service
	return b
}

// WithFormatter sets the output formatter
func (b *ReviewUseCaseBuilder) WithFormatter(formatter domain.OutputFormatter) *ReviewUseCaseBuilder {
	b.formatter = formatter
	return b
}

// Build creates the ReviewUseCase with the configured dependencies
func (b *ReviewUseCaseBuilder) Build() (*ReviewUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("review service is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	return &ReviewUseCase{
		service:   b.service,
		formatter: b.formatter,
	}, nil
}
