package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/revet/domain"
	"github.com/ludo-technologies/revet/internal/catalog"
	"github.com/ludo-technologies/revet/service"
)

var (
	rulesJSON     bool
	rulesSeverity string
	rulesLanguage string
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the guideline catalog",
		Long: `List every rule in the built-in guideline catalog with its severity,
category and the languages it applies to.

Examples:
  # List all rules
  revet rules

  # Only security rules
  revet rules --severity security

  # Rules applicable to TypeScript files
  revet rules --language typescript

  # Machine-readable listing
  revet rules --json`,
		RunE: runRules,
	}

	cmd.Flags().BoolVar(&rulesJSON, "json", false,
		"Output the catalog as JSON")
	cmd.Flags().StringVar(&rulesSeverity, "severity", "",
		"Only list rules of this severity: security, correctness, style")
	cmd.Flags().StringVar(&rulesLanguage, "language", "",
		"Only list rules applicable to this language")

	return cmd
}

func runRules(cmd *cobra.Command, args []string) error {
	cat, err := catalog.Default()
	if err != nil {
		return err
	}

	var severity domain.Severity
	if rulesSeverity != "" {
		s, ok := domain.ParseSeverity(rulesSeverity)
		if !ok {
			return fmt.Errorf("invalid --severity %q, must be one of: security, correctness, style", rulesSeverity)
		}
		severity = s
	}

	rules := cat.AllRules()
	if rulesLanguage != "" {
		rules = cat.RulesFor(rulesLanguage)
	}

	filtered := make([]domain.RuleDefinition, 0, len(rules))
	for _, rule := range rules {
		if severity != "" && rule.Severity != severity {
			continue
		}
		filtered = append(filtered, rule)
	}

	if rulesJSON {
		return service.WriteJSON(os.Stdout, filtered)
	}

	fmt.Printf("Guideline catalog v%d (%d rules)\n\n", cat.Version(), len(filtered))
	for _, rule := range filtered {
		fmt.Printf("  %-28s %-12s %-18s %s\n",
			rule.ID,
			rule.Severity,
			rule.Category,
			strings.Join(rule.AppliesTo, ","))
	}
	return nil
}
