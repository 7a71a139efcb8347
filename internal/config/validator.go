package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	// Category is the validation category (e.g., "YAML Syntax", "Site Root").
	Category string

	// Passed indicates if the check passed.
	Passed bool

	// Message provides details about the validation result.
	Message string

	// Warning indicates if this is a warning rather than an error.
	Warning bool
}

// StatFunc is the stat operation the validator checks paths with.
type StatFunc func(name string) (os.FileInfo, error)

// Validator validates configuration files and settings.
type Validator struct {
	stat        StatFunc
	cfg         *Config
	configPath  string
	rootDir     string
	validations []ValidationResult
}

// Valid log settings.
var (
	LogLevels  = []string{"debug", "info", "warn", "error", "off"}
	LogFormats = []string{"text", "json"}
)

// NewValidator creates a new configuration validator.
// The rootDir parameter is the directory relative paths are resolved from.
// A nil stat uses os.Stat.
func NewValidator(stat StatFunc, cfg *Config, configPath string, rootDir string) *Validator {
	if stat == nil {
		stat = os.Stat
	}
	return &Validator{
		stat:        stat,
		cfg:         cfg,
		configPath:  configPath,
		rootDir:     rootDir,
		validations: make([]ValidationResult, 0),
	}
}

// Validate runs all validation checks and returns the results.
func (v *Validator) Validate(ctx context.Context) ([]ValidationResult, error) {
	v.validations = make([]ValidationResult, 0)

	v.validateYAMLSyntax()
	if v.cfg == nil {
		return v.validations, nil
	}

	v.validateRoots(ctx)
	v.validateDatabase()
	v.validateHookTimeout()
	v.validateLog()

	return v.validations, nil
}

func (v *Validator) validateYAMLSyntax() {
	if v.configPath == "" {
		v.addValidation("YAML Syntax", true, "No configuration file, using defaults", true)
		return
	}
	if _, err := ReadFile(v.configPath); err != nil {
		if os.IsNotExist(err) {
			v.addValidation("YAML Syntax", true,
				fmt.Sprintf("%s not found, using defaults", filepath.Base(v.configPath)), true)
			return
		}
		v.addValidation("YAML Syntax", false, err.Error(), false)
		return
	}
	v.addValidation("YAML Syntax", true, "Configuration file is valid YAML", false)
}

// validateRoots requires the site root to exist. A missing admin or media
// root is only a warning: installs create extension roots below them.
func (v *Validator) validateRoots(ctx context.Context) {
	roots := []struct {
		category string
		path     string
		required bool
	}{
		{"Site Root", v.cfg.SiteRoot, true},
		{"Admin Root", v.cfg.AdminPath(), false},
		{"Media Root", v.cfg.MediaRoot, false},
	}

	for _, r := range roots {
		if ctx.Err() != nil {
			return
		}
		if r.path == "" {
			v.addValidation(r.category, true, "Not configured; media sections will be skipped", true)
			continue
		}
		info, err := v.stat(v.resolve(r.path))
		switch {
		case err == nil && info.IsDir():
			v.addValidation(r.category, true, fmt.Sprintf("%s exists", r.path), false)
		case err == nil:
			v.addValidation(r.category, false, fmt.Sprintf("%s is not a directory", r.path), false)
		case os.IsNotExist(err) && !r.required:
			v.addValidation(r.category, true, fmt.Sprintf("%s does not exist yet; it will be created", r.path), true)
		case os.IsNotExist(err):
			v.addValidation(r.category, false, fmt.Sprintf("%s does not exist", r.path), false)
		default:
			v.addValidation(r.category, false, fmt.Sprintf("cannot access %s: %v", r.path, err), false)
		}
	}
}

func (v *Validator) validateDatabase() {
	db := v.cfg.DatabasePath()
	if _, err := v.stat(v.resolve(db)); err != nil {
		if os.IsNotExist(err) {
			v.addValidation("Database", true, fmt.Sprintf("%s will be created on first install", db), true)
			return
		}
		v.addValidation("Database", false, fmt.Sprintf("cannot access %s: %v", db, err), false)
		return
	}
	v.addValidation("Database", true, fmt.Sprintf("Using %s", db), false)
}

func (v *Validator) validateHookTimeout() {
	d, err := v.cfg.HookTimeoutDuration()
	if err != nil {
		v.addValidation("Hook Timeout", false, err.Error(), false)
		return
	}
	if d == 0 {
		v.addValidation("Hook Timeout", true, "Script hooks run without a timeout", false)
		return
	}
	v.addValidation("Hook Timeout", true, fmt.Sprintf("Script hooks time out after %s", d), false)
}

func (v *Validator) validateLog() {
	level := strings.ToLower(v.cfg.LogLevel())
	if !slices.Contains(LogLevels, level) {
		v.addValidation("Logging", false,
			fmt.Sprintf("unknown log level %q (valid: %s)", level, strings.Join(LogLevels, ", ")), false)
	}
	format := strings.ToLower(v.cfg.LogFormat())
	if !slices.Contains(LogFormats, format) {
		v.addValidation("Logging", false,
			fmt.Sprintf("unknown log format %q (valid: %s)", format, strings.Join(LogFormats, ", ")), false)
	}
	if slices.Contains(LogLevels, level) && slices.Contains(LogFormats, format) {
		v.addValidation("Logging", true, fmt.Sprintf("level %s, format %s", level, format), false)
	}
}

func (v *Validator) resolve(path string) string {
	if filepath.IsAbs(path) || v.rootDir == "" {
		return path
	}
	return filepath.Join(v.rootDir, path)
}

// addValidation adds a validation result to the list.
func (v *Validator) addValidation(category string, passed bool, message string, warning bool) {
	v.validations = append(v.validations, ValidationResult{
		Category: category,
		Passed:   passed,
		Message:  message,
		Warning:  warning,
	})
}

// HasErrors returns true if any validation failed.
func HasErrors(results []ValidationResult) bool {
	for _, r := range results {
		if !r.Passed && !r.Warning {
			return true
		}
	}
	return false
}

// ErrorCount returns the number of failed validations.
func ErrorCount(results []ValidationResult) int {
	count := 0
	for _, r := range results {
		if !r.Passed && !r.Warning {
			count++
		}
	}
	return count
}

// WarningCount returns the number of warnings.
func WarningCount(results []ValidationResult) int {
	count := 0
	for _, r := range results {
		if r.Warning {
			count++
		}
	}
	return count
}
