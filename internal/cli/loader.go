package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/arcosphere/internal/compiler"
	"github.com/roach88/arcosphere/internal/config"
	"github.com/roach88/arcosphere/internal/model"
	"github.com/roach88/arcosphere/internal/space"
)

// LoadError represents an error that occurred while loading the family or
// the configuration.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// environment is what every command runs against.
type environment struct {
	config config.Config
	family *model.Family
	logger *slog.Logger
}

// loadEnvironment resolves the configuration and the family.
//
// The family comes from --family, then the config file's family, then the
// built-in Space Exploration family. Errors are LoadErrors.
func (o *RootOptions) loadEnvironment() (*environment, error) {
	cfg := config.Default()
	if o.Config != "" {
		var err error
		if cfg, err = config.Load(o.Config); err != nil {
			code := ErrCodeConfig
			if errors.Is(err, fs.ErrNotExist) {
				code = ErrCodeNotFound
			}
			return nil, &LoadError{Code: code, Message: err.Error()}
		}
	}

	familyPath := cfg.Family
	if o.Family != "" {
		familyPath = o.Family
	}

	family, err := loadFamily(familyPath)
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("environment loaded",
		"family", family.Name(),
		"arcospheres", family.Dimension(),
		"recipes", family.RecipeCount(),
		"workers", cfg.Workers)

	return &environment{config: cfg, family: family, logger: logger}, nil
}

// loadFamily compiles the family at path, or returns Space Exploration when
// path is empty.
func loadFamily(path string) (*model.Family, error) {
	if path == "" {
		return space.Exploration(), nil
	}
	family, err := compiler.LoadFamily(path)
	if err != nil {
		return nil, convertCompileError(err, path)
	}
	return family, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, path string) *LoadError {
	if errors.Is(err, fs.ErrNotExist) {
		return &LoadError{
			Code:    ErrCodeNotFound,
			Message: fmt.Sprintf("family not found: %s", path),
		}
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeLoadFailed,
		Message: fmt.Sprintf("%s: %v", path, err),
	}
}

// reportLoadError outputs a loading failure as a command error.
func reportLoadError(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		var details any
		if loadErr.Pos.IsValid() {
			details = map[string]any{
				"file":   loadErr.Pos.Filename(),
				"line":   loadErr.Pos.Line(),
				"column": loadErr.Pos.Column(),
			}
		}
		return f.Fail(ExitCommandError, loadErr.Code, loadErr.Message, details)
	}
	return f.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
}

// Error code constants - unified across all CLI commands. Domain failures
// (solver, verifier, planner, parser) are reported with their own codes.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeConfig      = "E008" // Invalid configuration
	ErrCodeDatabase    = "E009" // Archive error

	// Family validation errors
	ErrCodeArcospheres = "E101" // Invalid arcosphere declaration
	ErrCodePolarity    = "E102" // Invalid polarity
	ErrCodeRecipes     = "E103" // Invalid recipe declaration
	ErrCodeFamily      = "E104" // Inconsistent family
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "cue":
		return ErrCodeBuildFailed
	case field == "arcospheres.polarity":
		return ErrCodePolarity
	case strings.HasPrefix(field, "arcospheres"):
		return ErrCodeArcospheres
	case strings.HasPrefix(field, "recipes"):
		return ErrCodeRecipes
	case field == "family":
		return ErrCodeFamily
	default:
		return ErrCodeGeneric
	}
}
