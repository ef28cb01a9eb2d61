package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "revet"

	// ConfigFileName is the default config file name
	ConfigFileName = "revet.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "REVET"

	// InformationURI points at the project documentation (used in SARIF)
	InformationURI = "https://github.com/ludo-technologies/revet"
)

// Exit codes, CI-facing contract of the review command
const (
	ExitOK    = 0
	ExitFail  = 1
	ExitError = 2
)
