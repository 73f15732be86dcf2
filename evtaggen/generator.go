// Package evtaggen generates event naming, publishing and downcasting code
// for tagged unions declared with //evtag:union.
package evtaggen

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/broady/evtag/evtaggen/golang"
	"github.com/broady/evtag/evtaggen/model"
	"github.com/broady/evtag/evtaggen/provider"
	"github.com/broady/evtag/evtaggen/sink"
)

// File is one generated file.
type File struct {
	// Path is slash-separated and relative to Config.Dir.
	Path string

	// Package is the import path of the package the file belongs to.
	Package string

	Content []byte
}

// Union summarizes one processed union.
type Union struct {
	Package string
	Name    string
	Source  model.Source
	Arms    []model.Arm
}

type batchSink interface {
	WriteFiles(ctx context.Context, files map[string][]byte) error
}

// GenerateResult is the outcome of a successful generation.
type GenerateResult struct {
	Files    []File
	Unions   []Union
	Warnings []model.Warning
}

// WriteTo writes every file to s. When s can write several files at once
// (as *sink.FilesystemSink can) they are handed over together; otherwise
// writing stops at the first error, leaving earlier files written.
func (r *GenerateResult) WriteTo(ctx context.Context, s sink.Sink) error {
	if b, ok := s.(batchSink); ok {
		files := make(map[string][]byte, len(r.Files))
		for _, f := range r.Files {
			files[f.Path] = f.Content
		}
		return b.WriteFiles(ctx, files)
	}
	for _, f := range r.Files {
		if err := s.WriteFile(ctx, f.Path, f.Content); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
	}
	return nil
}

// Generate loads the configured packages and renders one file for each
// package declaring a union. It writes nothing.
//
// Malformed declarations are reported as *model.ShapeError or
// *model.AttributeError. With cfg.Strict, duplicate event names are
// reported as *model.AmbiguityError; otherwise they are returned as
// warnings.
func Generate(ctx context.Context, cfg *Config) (*GenerateResult, error) {
	cfg = applyConfigDefaults(cfg)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	logger := cfg.Logger

	root, err := filepath.Abs(dirOrDot(cfg.Dir))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve directory: %w", err)
	}

	p := &provider.SourceProvider{Logger: logger}
	pkgs, err := p.Load(ctx, provider.SourceOptions{
		Dir:      cfg.Dir,
		Patterns: cfg.Patterns,
		Exclude:  cfg.Output,
	})
	if err != nil {
		return nil, err
	}

	emitter := &golang.Emitter{Config: golang.Config{
		RuntimePackage: cfg.RuntimePackage,
		RuntimeName:    cfg.RuntimeName,
	}}

	res := &GenerateResult{}
	for _, pkg := range pkgs {
		if len(pkg.Unions) == 0 {
			logger.Debug("no unions", slog.String("package", pkg.Path))
			continue
		}

		for i := range pkg.Unions {
			decl := &pkg.Unions[i]
			arms := model.Arms(decl)
			res.Unions = append(res.Unions, Union{
				Package: pkg.Path,
				Name:    decl.Name,
				Source:  decl.Source,
				Arms:    arms,
			})
			res.Warnings = append(res.Warnings, model.Duplicates(decl, arms)...)
		}

		content, err := emitter.Emit(pkg)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg.Path, err)
		}

		path, err := outputPath(root, pkg.Dir, cfg.Output)
		if err != nil {
			return nil, fmt.Errorf("package %s: %w", pkg.Path, err)
		}
		res.Files = append(res.Files, File{Path: path, Package: pkg.Path, Content: content})

		logger.Debug("generated file",
			slog.String("package", pkg.Path),
			slog.String("path", path),
			slog.Int("unions", len(pkg.Unions)),
		)
	}

	for _, w := range res.Warnings {
		logger.Warn(w.Message,
			slog.String("code", w.Code),
			slog.String("source", w.Source.String()),
		)
	}
	if cfg.Strict && len(res.Warnings) > 0 {
		return nil, &model.AmbiguityError{Warnings: res.Warnings}
	}
	return res, nil
}

// outputPath returns the slash-separated path of the generated file for a
// package in dir, relative to root.
func outputPath(root, dir, output string) (string, error) {
	if r, err := filepath.EvalSymlinks(root); err == nil {
		root = r
	}
	if d, err := filepath.EvalSymlinks(dir); err == nil {
		dir = d
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return "", fmt.Errorf("failed to relate %s to %s: %w", dir, root, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("package directory %s is outside %s", dir, root)
	}
	if rel == "." {
		return output, nil
	}
	return rel + "/" + output, nil
}
