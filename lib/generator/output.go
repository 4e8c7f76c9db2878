package generator

import (
	"bytes"
	"fmt"
	"go/format"
	"text/template"
)

// renderTemplate renders the generated code template.
func (g *Generator) renderTemplate(appName string, layers []LayerInfo) ([]byte, error) {
	tmpl, err := template.New("bind").Funcs(template.FuncMap{
		"quoteList": quoteList,
	}).Parse(bindTemplate)
	if err != nil {
		return nil, err
	}

	data := struct {
		Package  string
		App      string
		Layers   []LayerInfo
		NeedsFmt bool
	}{
		Package: g.opts.Package,
		App:     appName,
		Layers:  layers,
	}
	for _, l := range layers {
		for _, f := range l.Fields {
			if f.GoType != "any" {
				data.NeedsFmt = true
			}
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatSource(code []byte) ([]byte, error) {
	formatted, err := format.Source(code)
	if err != nil {
		return nil, fmt.Errorf("format source: %w", err)
	}
	return formatted, nil
}

const bindTemplate = `// Code generated by talui generate. DO NOT EDIT.
// App: {{.App}}

package {{.Package}}
{{if .Layers}}
import (
{{- if .NeedsFmt}}
	"fmt"
{{end}}
	"github.com/pthm/talui/lib/model"
)
{{end}}{{range .Layers}}{{$layer := .}}
// {{.TypeName}} reads and writes the attributes of layer {{printf "%q" .Layer}} ({{.Owner}}).
type {{.TypeName}} struct {
	m model.Model
}

// New{{.TypeName}} wraps m.
func New{{.TypeName}}(m model.Model) {{.TypeName}} {
	return {{.TypeName}}{m: m}
}

// Model returns the wrapped model.
func (b {{.TypeName}}) Model() model.Model {
	return b.m
}
{{range .Fields}}
// {{.Method}} returns attribute {{printf "%q" .Key}} ({{.Kind}}, {{.Lifecycle}}{{if .Aliases}}, aliases {{quoteList .Aliases}}{{end}}).
func (b {{$layer.TypeName}}) {{.Method}}() ({{.GoType}}, error) {
	v, err := b.m.Attribute({{printf "%q" .Key}})
	if err != nil || v == nil {
		return {{.Zero}}, err
	}
{{- if eq .GoType "any"}}
	return v, nil
{{- else}}
	out, ok := v.({{.GoType}})
	if !ok {
		return {{.Zero}}, fmt.Errorf("%s.%s: unexpected %T", {{printf "%q" $layer.Layer}}, {{printf "%q" .Key}}, v)
	}
	return out, nil
{{- end}}
}
{{if .Settable}}
// Set{{.Method}} sets attribute {{printf "%q" .Key}}.
func (b {{$layer.TypeName}}) Set{{.Method}}(v {{.GoType}}) error {
	return b.m.SetAttribute({{printf "%q" .Key}}, v)
}

// Remove{{.Method}} removes the value of attribute {{printf "%q" .Key}}.
func (b {{$layer.TypeName}}) Remove{{.Method}}() error {
	return b.m.RemoveAttribute({{printf "%q" .Key}})
}
{{end}}{{end}}{{end}}`
