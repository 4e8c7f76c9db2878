// Package generator emits typed accessor structs for the model layers of a
// compiled app.
//
// Each layer becomes one <Name>Bind struct wrapping a model.Model, with a
// getter per attribute and a setter per simple attribute:
//
//	b := cart.NewCartBind(m)
//	n, err := b.Items()
//	err = b.SetItems(n + 1)
package generator

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/pthm/talui/lib/config"
	"github.com/pthm/talui/lib/model"
)

// Options configures the generator.
type Options struct {
	// Package is the package clause of the generated file.
	Package string
	// DryRun reports what would be written without writing.
	DryRun bool
	// Out receives progress lines. Nil discards them.
	Out io.Writer
}

// Generator generates bind structs.
type Generator struct {
	opts Options
}

// New creates a new generator.
func New(opts Options) *Generator {
	if opts.Package == "" {
		opts.Package = "binds"
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Generator{opts: opts}
}

// Generate returns formatted source for app in package pkg.
func Generate(app *config.AppConfig, pkg string) ([]byte, error) {
	return New(Options{Package: pkg}).Generate(app)
}

// Generate returns formatted source for app.
func (g *Generator) Generate(app *config.AppConfig) ([]byte, error) {
	layers, err := g.collect(app)
	if err != nil {
		return nil, err
	}
	code, err := g.renderTemplate(app.Name(), layers)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}
	return formatSource(code)
}

// WriteFile generates source for app and writes it to path. When the output
// fails to format, the raw code is written next to path for debugging.
func (g *Generator) WriteFile(app *config.AppConfig, path string) error {
	fmt.Fprintf(g.opts.Out, "generating %s\n", path)
	if g.opts.DryRun {
		return nil
	}

	layers, err := g.collect(app)
	if err != nil {
		return err
	}
	code, err := g.renderTemplate(app.Name(), layers)
	if err != nil {
		return fmt.Errorf("render template: %w", err)
	}
	formatted, err := formatSource(code)
	if err != nil {
		if writeErr := os.WriteFile(path+".unformatted", code, 0o644); writeErr == nil {
			fmt.Fprintf(g.opts.Out, "  wrote unformatted code to %s.unformatted for debugging\n", path)
		}
		return err
	}
	return os.WriteFile(path, formatted, 0o644)
}

// LayerInfo describes one generated bind struct.
type LayerInfo struct {
	TypeName string // e.g. "CartBind"
	Layer    string // configuration name
	Owner    string // e.g. "page cart"
	Fields   []FieldInfo
}

// FieldInfo describes the accessors of one attribute.
type FieldInfo struct {
	Method    string // e.g. "Items"
	Key       string // attribute name
	GoType    string
	Zero      string
	Kind      string
	Lifecycle string
	Aliases   []string
	Settable  bool
}

// collect walks the app graph in app, page, window order. Types are named
// after the owning app, page or window, qualified by the enclosing one on a
// collision. Layers without attributes are skipped.
func (g *Generator) collect(app *config.AppConfig) ([]LayerInfo, error) {
	var layers []LayerInfo
	used := make(map[string]string)

	add := func(cfg *model.Configuration, base, owner string, qualifiers ...string) error {
		if cfg == nil || cfg.Len() == 0 {
			return nil
		}
		name := exportName(base)
		for _, q := range qualifiers {
			if _, taken := used[name+"Bind"]; !taken {
				break
			}
			name = exportName(q) + name
		}
		typeName := name + "Bind"
		if prev, taken := used[typeName]; taken {
			return fmt.Errorf("generator: %s and %s both map to %s", prev, owner, typeName)
		}
		used[typeName] = owner

		info := LayerInfo{TypeName: typeName, Layer: cfg.Name(), Owner: owner}
		methods := make(map[string]string)
		for _, attr := range cfg.Attributes() {
			f := fieldInfo(cfg, attr)
			if prev, taken := methods[f.Method]; taken {
				return fmt.Errorf("generator: %s: attributes %q and %q both map to %s", owner, prev, f.Key, f.Method)
			}
			methods[f.Method] = f.Key
			info.Fields = append(info.Fields, f)
		}
		layers = append(layers, info)
		return nil
	}

	if err := add(app.Model(), app.Name(), "app "+app.Name()); err != nil {
		return nil, err
	}
	for _, p := range app.Pages() {
		if err := add(p.Model(), p.Name(), "page "+p.Name(), app.Name()); err != nil {
			return nil, err
		}
	}
	for _, p := range app.Pages() {
		for _, w := range p.Windows() {
			if err := add(w.Model(), w.Name(), "window "+p.Name()+"."+w.Name(), p.Name()); err != nil {
				return nil, err
			}
		}
	}
	return layers, nil
}

// fieldInfo describes attr as declared in cfg. Aliases lists the other keys
// cfg registers attr under.
func fieldInfo(cfg *model.Configuration, attr *model.Attribute) FieldInfo {
	goType, zero := goType(attr.Type())
	var aliases []string
	for _, k := range cfg.KeysFor(attr) {
		if k != attr.Name() {
			aliases = append(aliases, k)
		}
	}
	return FieldInfo{
		Method:    exportName(attr.Name()),
		Key:       attr.Name(),
		GoType:    goType,
		Zero:      zero,
		Kind:      attr.Kind().String(),
		Lifecycle: attr.Lifecycle().String(),
		Aliases:   aliases,
		Settable:  attr.Kind() == model.KindSimple,
	}
}

// goType maps an attribute type to the Go type its coerced values have.
func goType(t *model.Type) (name, zero string) {
	for ; t != nil; t = t.Super() {
		switch t {
		case model.String:
			return "string", `""`
		case model.Bool:
			return "bool", "false"
		case model.Int:
			return "int", "0"
		case model.Float, model.Number:
			return "float64", "0"
		}
	}
	return "any", "nil"
}

// exportName converts "search_results" or "cart.summary" to "SearchResults"
// and "CartSummary".
func exportName(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if b.Len() == 0 && unicode.IsDigit(r) {
			b.WriteByte('X')
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}

func quoteList(items []string) string {
	var buf bytes.Buffer
	for i, s := range items {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%q", s)
	}
	return buf.String()
}
