// Package fragment provides the HTML molds used by talui apps out of the box.
//
// Molds installs them into a template.BasicMold:
//
//	molds := fragment.Molds()
//	c := template.NewCompiler(molds, template.WithTemplates(ts...))
//
// Apps override any of them by registering more specific molds, for example a
// named mold for one element or a typed mold that requires a style.
package fragment

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"

	"github.com/pthm/talui/lib/template"
)

// ReadOnly is the style under which fields render as plain text.
const ReadOnly = "readonly"

// Molds returns a BasicMold with the standard fragments registered.
func Molds() *template.BasicMold {
	return Register(template.NewBasicMold())
}

// Register adds the standard fragments to b.
func Register(b *template.BasicMold) *template.BasicMold {
	return b.
		AddTyped("text", Text{}).
		AddBehaviour(template.BehaviourOf[template.Container](), Group{}).
		AddBehaviour(template.BehaviourOf[template.Reference](), Include{}).
		AddBehaviour(template.BehaviourOf[template.Commander](), Command{}).
		MustAddTypedPattern(`field\..+`, Field{}).
		MustAddTypedPattern(`field\..+`, Output{}, ReadOnly).
		AddBehaviour(template.BehaviourOf[template.Binder](), Output{})
}

// html is a render element writing a fixed opening tag, its children and the
// closing tag.
type html struct {
	start    string
	children template.RenderElement
	body     func(ctx context.Context, m template.RenderModel, w io.Writer) error
	end      string
}

func (h *html) Render(ctx context.Context, m template.RenderModel, w io.Writer) error {
	if _, err := io.WriteString(w, h.start); err != nil {
		return err
	}
	if h.children != nil {
		if err := h.children.Render(ctx, m, w); err != nil {
			return err
		}
	}
	if h.body != nil {
		if err := h.body(ctx, m, w); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, h.end)
	return err
}

// tag builds an opening tag with attributes in name order.
func tag(name string, attrs templ.Attributes) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<" + name)
	for _, k := range keys {
		switch v := attrs[k].(type) {
		case bool:
			if v {
				b.WriteString(" " + k)
			}
		default:
			fmt.Fprintf(&b, ` %s="%s"`, k, templ.EscapeString(fmt.Sprint(v)))
		}
	}
	b.WriteString(">")
	return b.String()
}

// Text renders the escaped content of a text element.
type Text struct{}

// Compile implements template.Mold.
func (Text) Compile(_ *template.Compiler, _ *template.Template, e template.Element) (template.RenderElement, error) {
	t, ok := e.(*template.Text)
	if !ok {
		return nil, fmt.Errorf("%w: text mold cannot compile %T", template.ErrInvalidArgument, e)
	}
	return &html{start: templ.EscapeString(t.Content)}, nil
}

// Group renders a container as a div holding its children.
type Group struct{}

// Compile implements template.Mold.
func (Group) Compile(c *template.Compiler, t *template.Template, e template.Element) (template.RenderElement, error) {
	children, err := c.CompileChildren(t, e.(template.Container))
	if err != nil {
		return nil, err
	}
	return &html{
		start:    tag("div", templ.Attributes{"id": e.Name(), "class": "group"}),
		children: children,
		end:      "</div>",
	}, nil
}

// Include compiles the referenced template in place.
type Include struct{}

// Compile implements template.Mold.
func (Include) Compile(c *template.Compiler, _ *template.Template, e template.Element) (template.RenderElement, error) {
	ref := e.(template.Reference)
	re, err := c.CompileTemplate(ref.Template(), ref.Styles(), nil)
	if err != nil {
		return nil, fmt.Errorf("include %q: %w", e.Name(), err)
	}
	return re, nil
}

// Command renders a button posting its action with htmx.
type Command struct{}

// Compile implements template.Mold.
func (Command) Compile(_ *template.Compiler, _ *template.Template, e template.Element) (template.RenderElement, error) {
	cmd := e.(template.Commander)
	label := e.Name()
	if c, ok := e.(*template.Command); ok && c.Label != "" {
		label = c.Label
	}
	return template.RenderFunc(func(_ context.Context, m template.RenderModel, w io.Writer) error {
		attrs := WireAttrs(string(templ.URL(m.URL(cmd.Action()))), "")
		attrs["type"] = "button"
		attrs["name"] = e.Name()
		_, err := io.WriteString(w, tag("button", attrs)+templ.EscapeString(label)+"</button>")
		return err
	}), nil
}

// WireAttrs returns the htmx attributes posting to path. vals, when set, is
// sent as hx-vals.
func WireAttrs(path, vals string) templ.Attributes {
	attrs := templ.Attributes{"hx-post": path}
	if vals != "" {
		attrs["hx-vals"] = vals
	}
	return attrs
}

var inputKinds = map[string]string{
	"text":     "text",
	"number":   "number",
	"checkbox": "checkbox",
	"hidden":   "hidden",
	"password": "password",
}

// Field renders an input bound to a model attribute. It only handles field
// kinds it knows an input type for.
type Field struct{}

// IsInterested implements template.FragmentMold.
func (Field) IsInterested(_ *template.Compiler, _ *template.Template, e template.Element) bool {
	f, ok := e.(*template.Field)
	if !ok {
		return false
	}
	_, known := inputKinds[f.Kind()]
	return known
}

// Compile implements template.Mold.
func (Field) Compile(_ *template.Compiler, _ *template.Template, e template.Element) (template.RenderElement, error) {
	f := e.(*template.Field)
	inputType := inputKinds[f.Kind()]
	return &html{
		start: "<label>" + templ.EscapeString(f.Label),
		body: func(_ context.Context, m template.RenderModel, w io.Writer) error {
			v, err := m.Attribute(f.Attribute())
			if err != nil {
				return err
			}
			attrs := templ.Attributes{"type": inputType, "name": f.Attribute()}
			if inputType == "checkbox" {
				checked, _ := v.(bool)
				attrs["checked"] = checked
			} else if v != nil {
				attrs["value"] = v
			}
			_, err = io.WriteString(w, tag("input", attrs))
			return err
		},
		end: "</label>",
	}, nil
}

// Output renders a field as its escaped value.
type Output struct{}

// Compile implements template.Mold.
func (Output) Compile(_ *template.Compiler, _ *template.Template, e template.Element) (template.RenderElement, error) {
	b, ok := e.(template.Binder)
	if !ok {
		return nil, fmt.Errorf("%w: output mold cannot compile %T", template.ErrInvalidArgument, e)
	}
	return &html{
		start: tag("span", templ.Attributes{"class": "output", "data-attribute": b.Attribute()}),
		body: func(_ context.Context, m template.RenderModel, w io.Writer) error {
			v, err := m.Attribute(b.Attribute())
			if err != nil {
				return err
			}
			if v == nil {
				return nil
			}
			_, err = io.WriteString(w, templ.EscapeString(fmt.Sprint(v)))
			return err
		},
		end: "</span>",
	}, nil
}
