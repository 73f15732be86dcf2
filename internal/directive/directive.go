// Package directive parses evtag directives from Go source files.
//
// Directives are line comments in the doc comment of a type declaration:
//
//	//evtag:union [prefix=<string>]
//	//evtag:variant [rename=<string>]
//
// The union directive marks a sealed interface whose implementations are
// the variants of a tagged union. The optional prefix is prepended to every
// variant's event name.
//
// The variant directive configures one variant. The optional rename replaces
// the variant's event name entirely, ignoring any prefix.
//
// Arguments are split like shell words, so values may be quoted:
//
//	//evtag:union prefix="billing."
package directive

import (
	"errors"
	"fmt"
	"go/ast"
	"go/token"
	"sort"
	"strings"

	"github.com/gorilla/schema"
	"github.com/kballard/go-shellquote"

	"github.com/broady/evtag/evtaggen/model"
)

const marker = "//evtag:"

// Kind represents the type of directive.
type Kind string

const (
	KindUnion   Kind = "union"
	KindVariant Kind = "variant"
)

// UnionOptions are the options accepted by //evtag:union.
type UnionOptions struct {
	Prefix string `schema:"prefix"`
}

// VariantOptions are the options accepted by //evtag:variant.
type VariantOptions struct {
	Rename *string `schema:"rename"`
}

// Directive represents a parsed evtag directive.
type Directive struct {
	Kind     Kind
	TypeName string         // name of the declared type
	Spec     *ast.TypeSpec  // the declaration the directive is attached to
	Pos      token.Position // source location of the directive comment

	Union   UnionOptions   // set for KindUnion
	Variant VariantOptions // set for KindVariant
}

// Source returns the directive location in model form.
func (d Directive) Source() model.Source {
	return SourceOf(d.Pos)
}

// SourceOf converts a token.Position to a model.Source.
func SourceOf(p token.Position) model.Source {
	return model.Source{File: p.Filename, Line: p.Line, Column: p.Column}
}

// Result contains all directives found in a set of files.
type Result struct {
	// Unions contains all //evtag:union directives, in file order.
	Unions []Directive

	// Variants contains all //evtag:variant directives keyed by type name.
	Variants map[string]Directive
}

// ParseFiles extracts directives from every file of one package.
func ParseFiles(fset *token.FileSet, files []*ast.File) (*Result, error) {
	result := &Result{Variants: make(map[string]Directive)}
	for _, f := range files {
		directives, err := ParseFile(fset, f)
		if err != nil {
			return nil, err
		}
		for _, d := range directives {
			switch d.Kind {
			case KindUnion:
				result.Unions = append(result.Unions, d)
			case KindVariant:
				result.Variants[d.TypeName] = d
			}
		}
	}
	return result, nil
}

// pending is a directive whose declaration has not been found yet.
type pending struct {
	kind Kind
	args []string
	pos  token.Position
}

// ParseFile extracts directives from a single file.
//
// Returns an *model.AttributeError for unknown directives or options, and
// an *model.ShapeError when a union directive is not attached to a type
// declaration.
func ParseFile(fset *token.FileSet, f *ast.File) ([]Directive, error) {
	// Directives keyed by the end of their comment group so they can be
	// matched to the declaration that follows.
	byGroup := make(map[token.Pos][]pending)
	var groups []token.Pos

	for _, cg := range f.Comments {
		for _, c := range cg.List {
			if !strings.HasPrefix(c.Text, marker) {
				continue
			}
			pos := fset.Position(c.Pos())
			text := strings.TrimPrefix(c.Text, marker)
			name, rest, _ := strings.Cut(text, " ")

			kind := Kind(name)
			if kind != KindUnion && kind != KindVariant {
				return nil, model.Attributef(SourceOf(pos), "", "unknown directive %s%s", marker, name)
			}

			args, err := shellquote.Split(rest)
			if err != nil {
				return nil, model.Attributef(SourceOf(pos), "", "%s%s: %v", marker, kind, err)
			}

			if _, ok := byGroup[cg.End()]; !ok {
				groups = append(groups, cg.End())
			}
			byGroup[cg.End()] = append(byGroup[cg.End()], pending{kind: kind, args: args, pos: pos})
		}
	}

	var directives []Directive
	attach := func(doc *ast.CommentGroup, spec *ast.TypeSpec) error {
		if doc == nil {
			return nil
		}
		ps, ok := byGroup[doc.End()]
		if !ok {
			return nil
		}
		delete(byGroup, doc.End())

		seen := make(map[Kind]bool)
		for _, p := range ps {
			if seen[p.kind] {
				return model.Attributef(SourceOf(p.pos), "", "duplicate %s%s directive on %s", marker, p.kind, spec.Name.Name)
			}
			seen[p.kind] = true

			d, err := decode(p, spec)
			if err != nil {
				return err
			}
			directives = append(directives, d)
		}
		return nil
	}

	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		// An ungrouped declaration carries its doc on the GenDecl.
		if len(gd.Specs) == 1 && !gd.Lparen.IsValid() {
			if err := attach(gd.Doc, gd.Specs[0].(*ast.TypeSpec)); err != nil {
				return nil, err
			}
			continue
		}
		for _, spec := range gd.Specs {
			ts := spec.(*ast.TypeSpec)
			if err := attach(ts.Doc, ts); err != nil {
				return nil, err
			}
		}
	}

	// Report unmatched directives in source order.
	for _, end := range groups {
		ps, ok := byGroup[end]
		if !ok {
			continue
		}
		p := ps[0]
		if p.kind == KindUnion {
			return nil, model.Shapef(SourceOf(p.pos), "", "%s%s directive must be followed by a type declaration", marker, p.kind)
		}
		return nil, model.Attributef(SourceOf(p.pos), "", "%s%s directive must be followed by a type declaration", marker, p.kind)
	}

	return directives, nil
}

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(false)
	return d
}()

// decode turns the raw key=value arguments of p into typed options.
func decode(p pending, spec *ast.TypeSpec) (Directive, error) {
	src := SourceOf(p.pos)
	d := Directive{
		Kind:     p.kind,
		TypeName: spec.Name.Name,
		Spec:     spec,
		Pos:      p.pos,
	}

	values := make(map[string][]string, len(p.args))
	for _, arg := range p.args {
		key, value, ok := strings.Cut(arg, "=")
		if key == "" {
			return d, model.Attributef(src, "", "malformed argument %q, want key=value", arg)
		}
		if !ok {
			return d, model.Attributef(src, key, "expects a string value (%s=...)", key)
		}
		if _, dup := values[key]; dup {
			return d, model.Attributef(src, key, "given more than once")
		}
		values[key] = []string{value}
	}

	var dst any
	switch p.kind {
	case KindUnion:
		dst = &d.Union
	case KindVariant:
		if v, ok := values["rename"]; ok && v[0] == "" {
			return d, model.Attributef(src, "rename", "must not be empty")
		}
		dst = &d.Variant
	}

	if err := decoder.Decode(dst, values); err != nil {
		return d, optionError(src, p.kind, err)
	}
	return d, nil
}

// optionError converts a schema decoding failure into an AttributeError
// naming the first offending option.
func optionError(src model.Source, kind Kind, err error) error {
	var multi schema.MultiError
	if !errors.As(err, &multi) || len(multi) == 0 {
		return model.Attributef(src, "", "%s%s: %v", marker, kind, err)
	}

	keys := make([]string, 0, len(multi))
	for k := range multi {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	key := keys[0]

	var unknown schema.UnknownKeyError
	if errors.As(multi[key], &unknown) {
		return model.Attributef(src, key, "unknown option for %s%s", marker, kind)
	}
	return model.Attributef(src, key, "%v", fmt.Errorf("invalid value: %w", multi[key]))
}
