package template

import "slices"

// Element is one node of a declarative template.
type Element interface {
	// Name identifies the element within its template.
	Name() string
	// Type is a dotted type string such as "field.text", matched by typed
	// molds.
	Type() string
}

// Container is implemented by elements with children.
type Container interface {
	Element
	Children() []Element
	// Styles are active while the children compile.
	Styles() []string
}

// Commander is implemented by elements that trigger a controller action.
type Commander interface {
	Element
	Action() string
}

// Reference is implemented by elements that include another template.
type Reference interface {
	Element
	Template() string
	// Styles are added to the active styles for the included template.
	Styles() []string
}

// Binder is implemented by elements bound to a model attribute.
type Binder interface {
	Element
	Attribute() string
}

// Template is a named element tree.
type Template struct {
	Name string
	Root Element
	// Styles are the template styles used when CompileTemplate is given none.
	Styles []string
}

// Text is a static piece of text.
type Text struct {
	name    string
	Content string
}

// NewText creates a text element.
func NewText(name, content string) *Text {
	return &Text{name: name, Content: content}
}

func (e *Text) Name() string { return e.name }
func (e *Text) Type() string { return "text" }

// Group holds child elements.
type Group struct {
	name   string
	items  []Element
	styles []string
}

// NewGroup creates a group of items.
func NewGroup(name string, items ...Element) *Group {
	return &Group{name: name, items: items}
}

// WithStyles sets the styles active while the items compile.
func (e *Group) WithStyles(styles ...string) *Group {
	e.styles = append(e.styles, styles...)
	return e
}

func (e *Group) Name() string        { return e.name }
func (e *Group) Type() string        { return "group" }
func (e *Group) Children() []Element { return slices.Clone(e.items) }
func (e *Group) Styles() []string    { return slices.Clone(e.styles) }

// Command is a control performing an action.
type Command struct {
	name   string
	Label  string
	action string
}

// NewCommand creates a command for action.
func NewCommand(name, label, action string) *Command {
	return &Command{name: name, Label: label, action: action}
}

func (e *Command) Name() string   { return e.name }
func (e *Command) Type() string   { return "command" }
func (e *Command) Action() string { return e.action }

// Field displays or edits a model attribute.
type Field struct {
	name      string
	kind      string
	Label     string
	attribute string
}

// NewField creates a field of the given kind bound to attribute. The element
// type is "field.<kind>".
func NewField(name, kind, label, attribute string) *Field {
	return &Field{name: name, kind: kind, Label: label, attribute: attribute}
}

func (e *Field) Name() string      { return e.name }
func (e *Field) Type() string      { return "field." + e.kind }
func (e *Field) Kind() string      { return e.kind }
func (e *Field) Attribute() string { return e.attribute }

// Include compiles another template in place.
type Include struct {
	name   string
	target string
	styles []string
}

// NewInclude creates a reference to the template named target.
func NewInclude(name, target string, styles ...string) *Include {
	return &Include{name: name, target: target, styles: styles}
}

func (e *Include) Name() string     { return e.name }
func (e *Include) Type() string     { return "include" }
func (e *Include) Template() string { return e.target }
func (e *Include) Styles() []string { return slices.Clone(e.styles) }
