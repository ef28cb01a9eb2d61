package service

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/revet/domain"
	"github.com/ludo-technologies/revet/internal/constants"
	"github.com/ludo-technologies/revet/internal/version"
)

// OutputFormatterImpl implements the OutputFormatter interface. It is a
// pure projection of the response: it never reorders or filters findings.
type OutputFormatterImpl struct{}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{}
}

// WriteJSON writes data as indented JSON to the writer
func WriteJSON(writer io.Writer, data interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Write renders the review response in the specified format
func (f *OutputFormatterImpl) Write(response *domain.ReviewResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return f.writeYAML(response, writer)
	case domain.OutputFormatSARIF:
		return f.writeSARIF(response, writer)
	case domain.OutputFormatText:
		return f.writeText(response, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// writeYAML writes the review response as YAML
func (f *OutputFormatterImpl) writeYAML(response *domain.ReviewResponse, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(response)
}

// writeText writes the review response as plain text
func (f *OutputFormatterImpl) writeText(response *domain.ReviewResponse, writer io.Writer) error {
	fmt.Fprintf(writer, "\n=== Review Report ===\n\n")
	fmt.Fprintf(writer, "Generated: %s\n", response.GeneratedAt)
	fmt.Fprintf(writer, "Version: %s\n\n", response.Version)

	// Summary
	fmt.Fprintf(writer, "Summary:\n")
	fmt.Fprintf(writer, "  Files changed: %d\n", response.Summary.FilesChanged)
	fmt.Fprintf(writer, "  Files analyzed: %d\n", response.Summary.FilesAnalyzed)
	fmt.Fprintf(writer, "  Files excluded: %d\n", response.Summary.FilesExcluded)
	fmt.Fprintf(writer, "  Total findings: %d\n", response.Summary.TotalFindings)
	fmt.Fprintf(writer, "\n")

	// Severity distribution
	fmt.Fprintf(writer, "Severity Distribution:\n")
	fmt.Fprintf(writer, "  Security: %d\n", response.Summary.SecurityFindings)
	fmt.Fprintf(writer, "  Correctness: %d\n", response.Summary.CorrectnessFindings)
	fmt.Fprintf(writer, "  Style: %d\n", response.Summary.StyleFindings)
	fmt.Fprintf(writer, "\n")

	if response.Summary.Partial {
		fmt.Fprintf(writer, "NOTE: results are partial; see warnings below.\n\n")
	}

	// Findings, already ordered by the resolver
	if len(response.Findings) > 0 {
		fmt.Fprintf(writer, "Findings:\n")
		for _, finding := range response.Findings {
			fmt.Fprintf(writer, "  [%s] %s (%s)\n", strings.ToUpper(string(finding.Severity)), finding.RuleID, finding.Category)
			fmt.Fprintf(writer, "    File: %s:%d-%d\n", finding.Path, finding.Lines.Start, finding.Lines.End)
			if finding.Excerpt != "" {
				fmt.Fprintf(writer, "    Code: %s\n", finding.Excerpt)
			}
			fmt.Fprintf(writer, "    %s\n", collapseWhitespace(finding.Message))
			if finding.SuggestedFix != "" {
				fmt.Fprintf(writer, "    Fix: %s\n", collapseWhitespace(finding.SuggestedFix))
			}
		}
		fmt.Fprintf(writer, "\n")
	}

	// Detector failures
	if len(response.Failures) > 0 {
		fmt.Fprintf(writer, "Detector Failures:\n")
		for _, failure := range response.Failures {
			fmt.Fprintf(writer, "  - %s on %s: %s\n", failure.RuleID, failure.Path, failure.Cause)
		}
		fmt.Fprintf(writer, "\n")
	}

	// Warnings
	if len(response.Warnings) > 0 {
		fmt.Fprintf(writer, "Warnings:\n")
		for _, w := range response.Warnings {
			fmt.Fprintf(writer, "  - %s\n", w)
		}
	}

	return nil
}

// SARIF 2.1.0 output structures

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine,omitempty"`
}

// writeSARIF writes the review response as a SARIF 2.1.0 log
func (f *OutputFormatterImpl) writeSARIF(response *domain.ReviewResponse, writer io.Writer) error {
	results := make([]sarifResult, 0, len(response.Findings))
	seenRules := make(map[string]bool)
	var rules []sarifRule

	for _, finding := range response.Findings {
		if !seenRules[finding.RuleID] {
			seenRules[finding.RuleID] = true
			rules = append(rules, sarifRule{
				ID:               finding.RuleID,
				ShortDescription: sarifMessage{Text: collapseWhitespace(finding.Message)},
			})
		}

		results = append(results, sarifResult{
			RuleID: finding.RuleID,
			Level:  severityToSARIFLevel(finding.Severity),
			Message: sarifMessage{
				Text: collapseWhitespace(finding.Message),
			},
			Locations: []sarifLocation{
				{
					PhysicalLocation: sarifPhysicalLocation{
						ArtifactLocation: sarifArtifactLocation{
							URI: toSARIFURI(finding.Path),
						},
						Region: sarifRegion{
							StartLine: finding.Lines.Start,
							EndLine:   finding.Lines.End,
						},
					},
				},
			},
		})
	}
	if rules == nil {
		rules = []sarifRule{}
	}

	log := sarifLog{
		Version: "2.1.0",
		Schema:  "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json",
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:           constants.ToolName,
						Version:        version.Version,
						InformationURI: constants.InformationURI,
						Rules:          rules,
					},
				},
				Results: results,
			},
		},
	}

	return WriteJSON(writer, log)
}

// severityToSARIFLevel maps the severity tiers onto SARIF result levels
func severityToSARIFLevel(s domain.Severity) string {
	switch s {
	case domain.SeveritySecurity:
		return "error"
	case domain.SeverityCorrectness:
		return "warning"
	default:
		return "note"
	}
}

// toSARIFURI normalizes a changeset path for the artifactLocation field
func toSARIFURI(path string) string {
	path = filepath.ToSlash(strings.TrimSpace(path))
	path = strings.TrimPrefix(path, "./")
	if path == "" {
		return "UNKNOWN"
	}
	return path
}

// collapseWhitespace flattens multi-line catalog text into a single line
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
