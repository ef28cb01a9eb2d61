package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/ludo-technologies/revet/domain"
)

// stubService returns a canned response
type stubService struct {
	response *domain.ReviewResponse
	err      error
	lastReq  domain.ReviewRequest
}

func (s *stubService) Review(_ context.Context, req domain.ReviewRequest) (*domain.ReviewResponse, error) {
	s.lastReq = req
	return s.response, s.err
}

// stubFormatter records what it was asked to write
type stubFormatter struct {
	written *domain.ReviewResponse
	format  domain.OutputFormat
	err     error
}

func (f *stubFormatter) Write(response *domain.ReviewResponse, format domain.OutputFormat, _ io.Writer) error {
	f.written = response
	f.format = format
	return f.err
}

// stubProvider supplies a fixed changeset
type stubProvider struct {
	files []domain.ChangedFile
	err   error
}

func (p *stubProvider) Changeset(_ context.Context) ([]domain.ChangedFile, error) {
	return p.files, p.err
}

func validRequest() domain.ReviewRequest {
	return domain.ReviewRequest{
		OutputFormat: domain.OutputFormatText,
		OutputWriter: &bytes.Buffer{},
		MinSeverity:  domain.SeverityStyle,
		FailOn:       domain.SeveritySecurity,
	}
}

func TestExecuteRunsServiceAndFormatter(t *testing.T) {
	svc := &stubService{response: &domain.ReviewResponse{Version: "dev"}}
	formatter := &stubFormatter{}
	uc := NewReviewUseCase(svc, formatter)

	resp, err := uc.Execute(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if resp != svc.response {
		t.Error("Execute should return the service response")
	}
	if formatter.written != svc.response {
		t.Error("Execute should hand the response to the formatter")
	}
	if formatter.format != domain.OutputFormatText {
		t.Errorf("formatter format = %s, want text", formatter.format)
	}
}

func TestExecuteRejectsMissingFormat(t *testing.T) {
	uc := NewReviewUseCase(&stubService{response: &domain.ReviewResponse{}}, &stubFormatter{})

	req := validRequest()
	req.OutputFormat = ""
	if _, err := uc.Execute(context.Background(), req); err == nil {
		t.Fatal("expected error for missing output format")
	}
}

func TestExecuteRejectsStyleFailOn(t *testing.T) {
	uc := NewReviewUseCase(&stubService{response: &domain.ReviewResponse{}}, &stubFormatter{})

	req := validRequest()
	req.FailOn = domain.SeverityStyle
	if _, err := uc.Execute(context.Background(), req); err == nil {
		t.Fatal("expected error for fail-on style")
	}
}

func TestExecutePropagatesServiceError(t *testing.T) {
	uc := NewReviewUseCase(&stubService{err: errors.New("catalog broken")}, &stubFormatter{})

	if _, err := uc.Execute(context.Background(), validRequest()); err == nil {
		t.Fatal("expected service error to propagate")
	}
}

func TestExecutePropagatesFormatterError(t *testing.T) {
	svc := &stubService{response: &domain.ReviewResponse{}}
	uc := NewReviewUseCase(svc, &stubFormatter{err: errors.New("disk full")})

	if _, err := uc.Execute(context.Background(), validRequest()); err == nil {
		t.Fatal("expected formatter error to propagate")
	}
}

func TestExecuteWithProvider(t *testing.T) {
	svc := &stubService{response: &domain.ReviewResponse{}}
	uc := NewReviewUseCase(svc, &stubFormatter{})

	provider := &stubProvider{files: []domain.ChangedFile{
		{Path: "a.js", Content: []byte("let a = 1;\n")},
	}}

	if _, err := uc.ExecuteWithProvider(context.Background(), provider, validRequest()); err != nil {
		t.Fatalf("ExecuteWithProvider returned error: %v", err)
	}
	if len(svc.lastReq.Changeset) != 1 || svc.lastReq.Changeset[0].Path != "a.js" {
		t.Errorf("provider changeset not passed to service: %+v", svc.lastReq.Changeset)
	}
}

func TestExecuteWithProviderError(t *testing.T) {
	uc := NewReviewUseCase(&stubService{response: &domain.ReviewResponse{}}, &stubFormatter{})

	provider := &stubProvider{err: errors.New("not a git repository")}
	if _, err := uc.ExecuteWithProvider(context.Background(), provider, validRequest()); err == nil {
		t.Fatal("expected provider error to propagate")
	}
}

func TestBuilderRequiresDependencies(t *testing.T) {
	if _, err := NewReviewUseCaseBuilder().Build(); err == nil {
		t.Fatal("builder should reject missing service")
	}
	if _, err := NewReviewUseCaseBuilder().WithService(&stubService{}).Build(); err == nil {
		t.Fatal("builder should reject missing formatter")
	}

	uc, err := NewReviewUseCaseBuilder().
		WithService(&stubService{}).
		WithFormatter(&stubFormatter{}).
		Build()
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if uc == nil {
		t.Fatal("Build returned nil use case")
	}
}
