package service

import (
	"path/filepath"
	"strings"
)

// languageByExtension is the default extension-to-language mapping.
// Request-level overrides take precedence.
var languageByExtension = map[string]string{
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".mts":  "typescript",
	".cts":  "typescript",
	".go":   "go",
	".py":   "python",
	".java": "java",
	".rb":   "ruby",
	".php":  "php",
	".cs":   "csharp",
	".rs":   "rust",
	".c":    "c",
	".h":    "c",
	".cpp":  "cpp",
	".hpp":  "cpp",
	".sh":   "shell",
	".bash": "shell",
	".sql":  "sql",
	".yaml": "yaml",
	".yml":  "yaml",
	".json": "json",
}

// InferLanguage resolves a file's language tag from its extension,
// consulting overrides first. Unknown extensions yield an empty tag, so
// only "any"-scoped rules apply.
func InferLanguage(path string, overrides map[string]string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := overrides[ext]; ok {
		return lang
	}
	return languageByExtension[ext]
}
