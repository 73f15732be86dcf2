// Package golang renders the evtag structural model as Go source.
//
// Each union produces three fragments: a naming function, a publish
// function and a downcast function. Every fragment derives its own generic
// parameter list from the union's (see model.Fragments); lifetimes in those
// lists have no Go spelling and are elided here.
package golang

import (
	"bytes"
	"fmt"
	"go/format"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/broady/evtag/evtaggen/model"
)

// DefaultRuntime is the import path of the runtime package generated code
// depends on unless configured otherwise.
const DefaultRuntime = "github.com/broady/evtag"

// Config controls code emission.
type Config struct {
	// RuntimePackage is the import path of a package declaring
	//
	//	type Sink interface{ Publish(name string, payload any) }
	//	type Holder interface{ Name() string; Payload() any }
	//
	// Default: DefaultRuntime.
	RuntimePackage string

	// RuntimeName is the package name of RuntimePackage. Default: the last
	// path element, skipping a major version suffix.
	RuntimeName string
}

// Emitter renders one Go file per package.
type Emitter struct {
	Config Config
}

// Funcs holds the names of the functions generated for one union.
type Funcs struct {
	Naming   string
	Publish  string
	Downcast string
}

// FuncNames returns the names generated for a union called name. Exported
// unions get exported functions.
func FuncNames(name string) Funcs {
	publish := "Publish" + name
	if r, _ := utf8.DecodeRuneInString(name); !unicode.IsUpper(r) {
		publish = "publish" + upperFirst(name)
	}
	return Funcs{
		Naming:   name + "EventName",
		Publish:  publish,
		Downcast: name + "From",
	}
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// runtime returns the import path and package name of the runtime package.
func (e *Emitter) runtime() (string, string) {
	p := e.Config.RuntimePackage
	if p == "" {
		p = DefaultRuntime
	}
	name := e.Config.RuntimeName
	if name == "" {
		name = path.Base(p)
		if majorVersion.MatchString(name) && path.Dir(p) != "." {
			name = path.Base(path.Dir(p))
		}
		name = strings.ReplaceAll(name, "-", "_")
	}
	return p, name
}

// Emit renders the generated file for pkg. The output is gofmt-formatted
// and depends only on pkg and the configuration.
func (e *Emitter) Emit(pkg *model.Package) ([]byte, error) {
	runtimePath, runtimeName := e.runtime()

	// Every identifier the generated code introduces must avoid the type
	// parameters of every union in the file.
	var all model.ParamList
	for _, u := range pkg.Unions {
		all = append(all, u.Params...)
	}

	imports := make(map[string]string) // path -> local name
	usedNames := make(map[string]string)
	for _, imp := range pkg.Imports {
		imports[imp.Path] = imp.Name
		usedNames[imp.Name] = imp.Path
	}
	alias, ok := imports[runtimePath]
	if !ok {
		var reserved []string
		for name := range usedNames {
			reserved = append(reserved, name)
		}
		for name := range pkg.Declared {
			reserved = append(reserved, name)
		}
		alias = all.Fresh(runtimeName, reserved...)
		imports[runtimePath] = alias
	}

	var buf bytes.Buffer
	buf.WriteString(model.GeneratedHeader)
	buf.WriteString("\n\npackage ")
	buf.WriteString(pkg.Name)
	buf.WriteString("\n\n")
	emitImports(&buf, imports)

	for i := range pkg.Unions {
		u := &pkg.Unions[i]
		if err := e.checkCollisions(pkg, u); err != nil {
			return nil, err
		}
		if err := e.emitUnion(&buf, u, alias); err != nil {
			return nil, err
		}
	}

	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated code: %w\n%s", err, buf.Bytes())
	}
	return out, nil
}

// emitImports writes one import declaration. A local name is spelled out
// whenever it differs from the last element of the path.
func emitImports(buf *bytes.Buffer, imports map[string]string) {
	paths := make([]string, 0, len(imports))
	for p := range imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	spec := func(p string) string {
		if name := imports[p]; name != path.Base(p) {
			return name + " " + strconv.Quote(p)
		}
		return strconv.Quote(p)
	}

	if len(paths) == 1 {
		fmt.Fprintf(buf, "import %s\n", spec(paths[0]))
		return
	}
	buf.WriteString("import (\n")
	for _, p := range paths {
		fmt.Fprintf(buf, "\t%s\n", spec(p))
	}
	buf.WriteString(")\n")
}

func (e *Emitter) checkCollisions(pkg *model.Package, u *model.TypeDeclaration) error {
	f := FuncNames(u.Name)
	for _, name := range []string{f.Naming, f.Publish, f.Downcast} {
		if pkg.Declared[name] {
			return model.Shapef(u.Source, u.Name, "generated function %s collides with an existing declaration", name)
		}
	}
	return nil
}

// emitUnion writes the three fragments for u.
func (e *Emitter) emitUnion(buf *bytes.Buffer, u *model.TypeDeclaration, runtimeAlias string) error {
	funcs := FuncNames(u.Name)

	// Synthetic names must not shadow anything the signatures or bodies
	// refer to.
	reserved := append(u.Identifiers(), runtimeAlias, funcs.Naming)
	frags := model.Fragments(u, runtimeAlias+".Sink", reserved...)
	sinkType := frags[1].Params.OfKind(model.KindType)
	sinkParam := sinkType[len(sinkType)-1].Name

	reserved = append(reserved, sinkParam)
	value := u.Params.Fresh("v", reserved...)
	sink := u.Params.Fresh("sink", append(reserved, value)...)
	holder := u.Params.Fresh("h", append(reserved, value)...)
	ok := u.Params.Fresh("ok", append(reserved, value, holder)...)

	unionType := u.Name + typeArgs(u.Params.OfKind(model.KindType).Names())

	naming, err := typeParams(frags[0].Params)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", u.Source, frags[0].Kind, err)
	}
	publish, err := typeParams(frags[1].Params)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", u.Source, frags[1].Kind, err)
	}
	downcast, err := typeParams(frags[2].Params)
	if err != nil {
		return fmt.Errorf("%s: %s: %w", u.Source, frags[2].Kind, err)
	}
	// NamingImpl
	fmt.Fprintf(buf, "\n// %s returns the event name of %s's variant.\n", funcs.Naming, value)
	fmt.Fprintf(buf, "func %s%s(%s %s) string {\n", funcs.Naming, naming, value, unionType)
	arms := model.Arms(u)
	if len(arms) > 0 {
		fmt.Fprintf(buf, "\tswitch %s.(type) {\n", value)
		for _, a := range arms {
			fmt.Fprintf(buf, "\tcase %s:\n", caseType(a.Variant))
			fmt.Fprintf(buf, "\t\treturn %s\n", strconv.Quote(a.Identifier))
		}
		buf.WriteString("\t}\n")
	}
	buf.WriteString("\treturn \"\"\n}\n")

	// PublishImpl
	fmt.Fprintf(buf, "\n// %s publishes %s on %s under its event name.\n", funcs.Publish, value, sink)
	fmt.Fprintf(buf, "func %s%s(%s %s, %s %s) {\n", funcs.Publish, publish, sink, sinkParam, value, unionType)
	fmt.Fprintf(buf, "\t%s.Publish(%s(%s), %s)\n}\n", sink, funcs.Naming, value, value)

	// DowncastImpl
	fmt.Fprintf(buf, "\n// %s returns the %s carried by %s. It reports false unless the payload\n", funcs.Downcast, u.Name, holder)
	fmt.Fprintf(buf, "// is a %s whose event name is the name %s was published under.\n", u.Name, holder)
	fmt.Fprintf(buf, "func %s%s(%s %s.Holder) (%s, bool) {\n", funcs.Downcast, downcast, holder, runtimeAlias, unionType)
	fmt.Fprintf(buf, "\t%s, %s := %s.Payload().(%s)\n", value, ok, holder, unionType)
	fmt.Fprintf(buf, "\tif !%s || %s(%s) != %s.Name() {\n", ok, funcs.Naming, value, holder)
	buf.WriteString("\t\treturn nil, false\n\t}\n")
	fmt.Fprintf(buf, "\treturn %s, true\n}\n", value)

	return nil
}

// typeParams renders a Go type parameter list, or "" when empty.
func typeParams(params model.ParamList) (string, error) {
	var parts []string
	for _, p := range params {
		switch p.Kind {
		case model.KindLifetime:
			continue
		case model.KindConst:
			return "", fmt.Errorf("const parameter %s cannot be expressed in Go", p.Name)
		}
		constraint := p.Constraint
		if constraint == "" {
			constraint = "any"
		}
		parts = append(parts, p.Name+" "+constraint)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "[" + strings.Join(parts, ", ") + "]", nil
}

func typeArgs(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// caseType lists the types a variant's values can have. A variant whose
// markers have value receivers is also implemented by its pointer.
func caseType(v model.Variant) string {
	t := v.Name + typeArgs(v.TypeArgs)
	if v.Pointer {
		return "*" + t
	}
	return t + ", *" + t
}
