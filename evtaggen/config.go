package evtaggen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/broady/evtag/evtaggen/sink"
)

// DefaultOutput is the name of the file generated in each package.
const DefaultOutput = "events_gen.go"

var validate = validator.New()

// Config holds the configuration for code generation.
type Config struct {
	// Dir is the directory patterns are resolved in and generated paths are
	// relative to. Default: the current directory.
	Dir string

	// Patterns select the packages to process, with go command semantics.
	// Default: ".".
	Patterns []string `validate:"dive,required"`

	// Output is the base name of the file generated in every package that
	// declares at least one union. Default: DefaultOutput.
	Output string `validate:"required,endswith=.go,excludesall=/\\"`

	// RuntimePackage is the import path of the package providing Sink and
	// Holder. Default: github.com/broady/evtag.
	RuntimePackage string

	// RuntimeName overrides the package name of RuntimePackage.
	RuntimeName string `validate:"omitempty,excludesall=. /"`

	// Strict turns duplicate event names into an error.
	Strict bool

	// Logger receives progress at Debug and warnings at Warn.
	// Default: slog.Default().
	Logger *slog.Logger
}

func applyConfigDefaults(cfg *Config) *Config {
	out := *cfg
	if len(out.Patterns) == 0 {
		out.Patterns = []string{"."}
	}
	if out.Output == "" {
		out.Output = DefaultOutput
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	return &out
}

// validateConfig reports every invalid field in one error.
func validateConfig(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, ve.Field()+": "+formatValidationError(ve))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "endswith":
		return fmt.Sprintf("must end with %s", ve.Param())
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}

// Generator provides a fluent API for code generation.
//
// Example:
//
//	res, err := evtaggen.FromDir(".").
//	    Patterns("./...").
//	    Strict().
//	    ToDir(ctx)
type Generator struct {
	cfg Config
}

// FromDir returns a Generator resolving patterns in dir.
func FromDir(dir string) *Generator {
	return &Generator{cfg: Config{Dir: dir}}
}

// Patterns adds package patterns to process.
func (g *Generator) Patterns(patterns ...string) *Generator {
	g.cfg.Patterns = append(g.cfg.Patterns, patterns...)
	return g
}

// Output sets the base name of generated files.
func (g *Generator) Output(name string) *Generator {
	g.cfg.Output = name
	return g
}

// Runtime sets the import path of the runtime package generated code uses.
func (g *Generator) Runtime(path string) *Generator {
	g.cfg.RuntimePackage = path
	return g
}

// RuntimeName sets the package name of the runtime package when it differs
// from the last element of its import path.
func (g *Generator) RuntimeName(name string) *Generator {
	g.cfg.RuntimeName = name
	return g
}

// Strict makes duplicate event names fail generation.
func (g *Generator) Strict() *Generator {
	g.cfg.Strict = true
	return g
}

// WithLogger sets the logger.
func (g *Generator) WithLogger(logger *slog.Logger) *Generator {
	g.cfg.Logger = logger
	return g
}

// Config returns a copy of the accumulated configuration.
func (g *Generator) Config() Config {
	cfg := g.cfg
	cfg.Patterns = append([]string(nil), g.cfg.Patterns...)
	return cfg
}

// Generate returns the generated files without writing them.
func (g *Generator) Generate(ctx context.Context) (*GenerateResult, error) {
	return Generate(ctx, &g.cfg)
}

// ToDir generates and writes every file below the configured directory.
// Nothing is written unless generation succeeds for every package, and
// every file is staged before any is replaced (see
// sink.FilesystemSink.WriteFiles).
func (g *Generator) ToDir(ctx context.Context) (*GenerateResult, error) {
	res, err := Generate(ctx, &g.cfg)
	if err != nil {
		return nil, err
	}
	if err := res.WriteTo(ctx, sink.NewFilesystemSink(dirOrDot(g.cfg.Dir))); err != nil {
		return nil, err
	}
	return res, nil
}

// Check generates in memory and returns the paths of generated files that
// are missing or out of date below the configured directory.
func (g *Generator) Check(ctx context.Context) (*GenerateResult, []string, error) {
	res, err := Generate(ctx, &g.cfg)
	if err != nil {
		return nil, nil, err
	}
	check := &sink.CheckSink{Root: dirOrDot(g.cfg.Dir)}
	if err := res.WriteTo(ctx, check); err != nil {
		return nil, nil, err
	}
	return res, check.Stale(), nil
}

func dirOrDot(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}
