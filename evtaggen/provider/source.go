// Package provider translates Go source into the evtag structural model.
//
// A tagged union in Go is a sealed interface: an interface with at least one
// unexported method, so only its own package can implement it. The variants
// are the named, non-interface types of that package that implement it.
package provider

import (
	"bytes"
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"log/slog"
	"path/filepath"
	"sort"

	"golang.org/x/tools/go/packages"

	"github.com/broady/evtag/evtaggen/model"
	"github.com/broady/evtag/internal/directive"
)

// SourceProvider extracts tagged unions by analyzing Go source code.
type SourceProvider struct {
	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger
}

// SourceOptions configures source-based extraction.
type SourceOptions struct {
	// Dir is the directory patterns are resolved in. Empty means the
	// current directory.
	Dir string

	// Patterns follow go command semantics (".", "./...", import paths).
	Patterns []string

	// Exclude is the base name of a previously generated file. When such a
	// file starts with model.GeneratedHeader it is read as an empty file, so
	// a stale output never prevents regeneration.
	Exclude string
}

// Load analyzes the packages matching opts.Patterns.
//
// Type errors are tolerated unless they fall inside a union or variant
// declaration: code that calls the generated functions does not type-check
// until they have been generated. List and parse errors always fail.
//
// Returns a *model.ShapeError or *model.AttributeError for malformed
// declarations; other failures are returned as plain errors.
func (p *SourceProvider) Load(ctx context.Context, opts SourceOptions) ([]*model.Package, error) {
	if len(opts.Patterns) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}

	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// NeedDeps type-checks dependencies from source instead of export
	// data, which go list would have to compile from the stale output.
	cfg := &packages.Config{
		Context: ctx,
		Dir:     opts.Dir,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedDeps |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
		ParseFile: func(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
			mode := parser.AllErrors | parser.ParseComments
			if opts.Exclude != "" && filepath.Base(filename) == opts.Exclude &&
				bytes.HasPrefix(src, []byte(model.GeneratedHeader)) {
				mode = parser.PackageClauseOnly
			}
			return parser.ParseFile(fset, filename, src, mode)
		},
	}

	pkgs, err := packages.Load(cfg, opts.Patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found matching %v", opts.Patterns)
	}

	var out []*model.Package
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			if e.Kind != packages.TypeError {
				return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, e)
			}
		}

		result, err := directive.ParseFiles(pkg.Fset, pkg.Syntax)
		if err != nil {
			return nil, err
		}

		b := &builder{pkg: pkg, logger: logger, imports: make(map[string]model.Import)}
		res, err := b.build(result)
		if err != nil {
			return nil, err
		}
		if err := b.checkTypeErrors(res); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// builder extracts the unions of a single package.
type builder struct {
	pkg     *packages.Package
	logger  *slog.Logger
	imports map[string]model.Import // keyed by path
}

func (b *builder) build(result *directive.Result) (*model.Package, error) {
	info := model.PackageInfo{Path: b.pkg.PkgPath, Name: b.pkg.Name}
	if len(b.pkg.GoFiles) > 0 {
		info.Dir = filepath.Dir(b.pkg.GoFiles[0])
	}
	res := &model.Package{PackageInfo: info, Declared: make(map[string]bool)}
	for _, name := range b.pkg.Types.Scope().Names() {
		res.Declared[name] = true
	}

	claimed := make(map[string]bool)
	for _, d := range result.Unions {
		decl, err := b.union(d, result.Variants)
		if err != nil {
			return nil, err
		}
		for _, v := range decl.Variants {
			claimed[v.Name] = true
		}
		b.logger.Debug("found union",
			slog.String("package", info.Path),
			slog.String("union", decl.Name),
			slog.Int("variants", len(decl.Variants)),
		)
		res.Unions = append(res.Unions, decl)
	}

	// A variant directive on anything that is not a variant is a
	// configuration mistake; report the first in source order.
	var orphans []directive.Directive
	for name, d := range result.Variants {
		if !claimed[name] {
			orphans = append(orphans, d)
		}
	}
	if len(orphans) > 0 {
		sort.Slice(orphans, func(i, j int) bool { return before(orphans[i].Pos, orphans[j].Pos) })
		d := orphans[0]
		return nil, model.Attributef(d.Source(), "", "//evtag:variant on %s, which is not a variant of any union", d.TypeName)
	}

	for _, imp := range b.imports {
		res.Imports = append(res.Imports, imp)
	}
	sort.Slice(res.Imports, func(i, j int) bool { return res.Imports[i].Path < res.Imports[j].Path })
	return res, nil
}

// union builds the declaration for one //evtag:union directive.
func (b *builder) union(d directive.Directive, variantDirectives map[string]directive.Directive) (model.TypeDeclaration, error) {
	src := d.Source()
	decl := model.TypeDeclaration{
		Name:   d.TypeName,
		Prefix: d.Union.Prefix,
		Source: src,
	}

	obj, ok := b.pkg.Types.Scope().Lookup(d.TypeName).(*types.TypeName)
	if !ok {
		return decl, model.Shapef(src, d.TypeName, "not a package-level type")
	}
	if obj.IsAlias() {
		return decl, model.Shapef(src, d.TypeName, "type aliases cannot be tagged unions; mark the aliased interface instead")
	}
	named, ok := obj.Type().(*types.Named)
	if !ok {
		return decl, model.Shapef(src, d.TypeName, "not a named type")
	}
	iface, ok := named.Underlying().(*types.Interface)
	if !ok {
		return decl, model.Shapef(src, d.TypeName, "not a tagged union: %s is not an interface", named.Underlying())
	}
	if !iface.IsMethodSet() {
		return decl, model.Shapef(src, d.TypeName, "not a tagged union: constraint interfaces cannot hold values")
	}

	var markers []string
	var methods []string
	for i := 0; i < iface.NumMethods(); i++ {
		m := iface.Method(i)
		methods = append(methods, m.Name())
		if !m.Exported() {
			markers = append(markers, m.Name())
		}
	}
	if len(markers) == 0 {
		return decl, model.Shapef(src, d.TypeName, "not a tagged union: interface has no unexported marker method, so its variants are not closed")
	}

	decl.Params = b.typeParams(d.Spec)

	variants, err := b.variants(named, iface, methods, decl.Params)
	if err != nil {
		return decl, err
	}
	for i := range variants {
		if vd, ok := variantDirectives[variants[i].Name]; ok {
			variants[i].Rename = vd.Variant.Rename
		}
		b.logger.Debug("found variant",
			slog.String("union", decl.Name),
			slog.String("variant", variants[i].Name),
			slog.Bool("pointer", variants[i].Pointer),
		)
	}
	decl.Variants = variants
	return decl, nil
}

// typeParams converts the declared type parameters, keeping each
// constraint's source text and recording the packages it refers to.
func (b *builder) typeParams(spec *ast.TypeSpec) model.ParamList {
	if spec.TypeParams == nil {
		return nil
	}
	var params model.ParamList
	for _, field := range spec.TypeParams.List {
		constraint := types.ExprString(field.Type)
		b.collectImports(field.Type)
		for _, name := range field.Names {
			params = append(params, model.Param{
				Kind:       model.KindType,
				Name:       name.Name,
				Constraint: constraint,
			})
		}
	}
	return params
}

func (b *builder) collectImports(expr ast.Expr) {
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		id, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		if pn, ok := b.pkg.TypesInfo.Uses[id].(*types.PkgName); ok {
			path := pn.Imported().Path()
			b.imports[path] = model.Import{Path: path, Name: pn.Name()}
		}
		return true
	})
}

// variants finds every type in the package that implements the union.
func (b *builder) variants(union *types.Named, iface *types.Interface, methods []string, params model.ParamList) ([]model.Variant, error) {
	scope := b.pkg.Types.Scope()

	type found struct {
		v   model.Variant
		pos token.Position
	}
	var all []found

	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() || tn == union.Obj() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok {
			continue
		}
		if _, ok := named.Underlying().(*types.Interface); ok {
			continue
		}

		pointer, ok := b.implements(named, union, iface, methods)
		if !ok {
			continue
		}

		pos := b.pkg.Fset.Position(tn.Pos())
		v := model.Variant{
			Name:    tn.Name(),
			Pointer: pointer,
			Source:  directive.SourceOf(pos),
		}

		if tparams := named.TypeParams(); tparams != nil {
			for i := 0; i < tparams.Len(); i++ {
				tp := tparams.At(i).Obj().Name()
				if !params.Has(tp) {
					return nil, model.Shapef(v.Source, tn.Name(),
						"variant of %s has type parameter %s, which %s does not declare", union.Obj().Name(), tp, union.Obj().Name())
				}
				v.TypeArgs = append(v.TypeArgs, tp)
			}
		}

		all = append(all, found{v: v, pos: pos})
	}

	sort.SliceStable(all, func(i, j int) bool { return before(all[i].pos, all[j].pos) })

	variants := make([]model.Variant, len(all))
	for i, f := range all {
		variants[i] = f.v
	}
	return variants, nil
}

// implements reports whether T or *T implements the union. The first
// result is true when only *T does.
func (b *builder) implements(named, union *types.Named, iface *types.Interface, methods []string) (pointer bool, ok bool) {
	ptr := types.NewPointer(named)

	// Without type parameters the type checker can answer directly.
	if named.TypeParams() == nil && union.TypeParams() == nil {
		if types.Implements(named, iface) {
			return false, true
		}
		if types.Implements(ptr, iface) {
			return true, true
		}
		return false, false
	}

	// Generic declarations: compare method names. Marker methods are
	// unexported, so only this package can supply them.
	if hasMethods(types.NewMethodSet(named), b.pkg.Types, methods) {
		return false, true
	}
	if hasMethods(types.NewMethodSet(ptr), b.pkg.Types, methods) {
		return true, true
	}
	return false, false
}

func hasMethods(ms *types.MethodSet, pkg *types.Package, names []string) bool {
	for _, name := range names {
		if ms.Lookup(pkg, name) == nil {
			return false
		}
	}
	return true
}

// checkTypeErrors fails on the first type error inside the declaration or
// methods of a union or variant of res. Other type errors are logged.
func (b *builder) checkTypeErrors(res *model.Package) error {
	if len(b.pkg.TypeErrors) == 0 {
		return nil
	}
	names := make(map[string]bool)
	for _, u := range res.Unions {
		names[u.Name] = true
		for _, v := range u.Variants {
			names[v.Name] = true
		}
	}
	spans := declSpans(b.pkg.Syntax, names)

	for _, te := range b.pkg.TypeErrors {
		for _, sp := range spans {
			if te.Pos >= sp.Pos() && te.Pos < sp.End() {
				return fmt.Errorf("package %s has errors: %s: %s", b.pkg.PkgPath, te.Fset.Position(te.Pos), te.Msg)
			}
		}
		b.logger.Debug("ignoring type error outside union declarations",
			slog.String("package", b.pkg.PkgPath),
			slog.String("error", te.Error()),
		)
	}
	return nil
}

// declSpans returns the type specs declaring names and the methods
// declared on them.
func declSpans(files []*ast.File, names map[string]bool) []ast.Node {
	var spans []ast.Node
	for _, f := range files {
		for _, decl := range f.Decls {
			switch decl := decl.(type) {
			case *ast.GenDecl:
				for _, spec := range decl.Specs {
					if ts, ok := spec.(*ast.TypeSpec); ok && names[ts.Name.Name] {
						spans = append(spans, ts)
					}
				}
			case *ast.FuncDecl:
				if decl.Recv != nil && len(decl.Recv.List) == 1 && names[receiverName(decl.Recv.List[0].Type)] {
					spans = append(spans, decl)
				}
			}
		}
	}
	return spans
}

// receiverName returns the base type name of a method receiver.
func receiverName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}

// before orders positions by file, then offset.
func before(a, b token.Position) bool {
	if a.Filename != b.Filename {
		return a.Filename < b.Filename
	}
	return a.Offset < b.Offset
}
