package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/revet/internal/config"
	"github.com/ludo-technologies/revet/internal/constants"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a revet configuration file",
		Long: `Generate a documented revet configuration file with sensible defaults.

Examples:
  # Create revet.yaml in the current directory
  revet init

  # Custom output path
  revet init --config custom.yaml

  # Overwrite an existing file
  revet init --force

  # Essential options only
  revet init --minimal

  # Guided setup
  revet init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", constants.ConfigFileName,
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")

	strictness := config.StrictnessStandard
	if interactive {
		var err error
		if strictness, configPath, err = runInteractiveSetup(configPath); err != nil {
			return err
		}
	}

	content := config.GetFullConfigTemplate(strictness)
	if minimal {
		content = config.GetMinimalConfigTemplate()
	}

	if err := checkWritable(configPath, force); err != nil {
		return err
	}
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if abs, err := filepath.Abs(configPath); err == nil {
		configPath = abs
	}
	fmt.Printf("Created %s\n", configPath)
	fmt.Println("\nRun 'revet review --staged' to review your staged changes.")
	return nil
}

// checkWritable rejects accidental overwrites and paths in directories that
// do not exist yet
func checkWritable(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", path)
		}
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}
	return nil
}

func runInteractiveSetup(defaultConfigPath string) (config.Strictness, string, error) {
	fmt.Println()
	fmt.Println("revet Configuration Setup")
	fmt.Println("=========================")
	fmt.Println()

	levels := []struct {
		Label       string
		Description string
		Value       config.Strictness
	}{
		{"Standard (recommended)", "Report everything, fail on security findings", config.StrictnessStandard},
		{"Lenient", "Skip style findings, fail on security findings", config.StrictnessLenient},
		{"Strict", "Report everything, fail on correctness findings too", config.StrictnessStrict},
	}

	strictnessPrompt := promptui.Select{
		Label: "How strict should the review be?",
		Items: levels,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
			Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
			Selected: "\U00002705 {{ .Label | green }}",
		},
	}
	idx, _, err := strictnessPrompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("strictness selection cancelled: %w", err)
	}

	fmt.Println()
	pathPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}
	outputPath, err := pathPrompt.Run()
	if err != nil {
		return "", "", fmt.Errorf("output path input cancelled: %w", err)
	}
	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	return levels[idx].Value, outputPath, nil
}
