package config

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/pthm/talui/lib/model"
)

// Tag identifies the kind of a Definition.
type Tag string

// Definition tags understood by the default dispatch table.
const (
	TagApp        Tag = "app"
	TagPage       Tag = "page"
	TagWindow     Tag = "window"
	TagModel      Tag = "model"
	TagAttribute  Tag = "attribute"
	TagController Tag = "controller"
	TagView       Tag = "view"
	TagEvent      Tag = "event"
)

// Definition is one node of a declarative app description.
type Definition struct {
	Tag      Tag
	Name     string
	Attrs    map[string]any
	Children []*Definition
	// Pos is the source position used in error messages, if known.
	Pos string
}

func (d *Definition) String() string {
	if d.Pos != "" {
		return fmt.Sprintf("%s %q (%s)", d.Tag, d.Name, d.Pos)
	}
	return fmt.Sprintf("%s %q", d.Tag, d.Name)
}

// ElementCompiler compiles def into the object it describes and attaches it
// to parent, the object compiled for the enclosing definition.
type ElementCompiler func(c *Compiler, def *Definition, parent any) (any, error)

// Compiler turns Definition trees into initialised AppConfig graphs.
type Compiler struct {
	table       map[Tag]ElementCompiler
	controllers map[string]Controller
	resolvers   map[string]model.ResolveFunc
	types       map[string]*model.Type
	logger      *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithControllers makes the named controllers available to controller
// definitions.
func WithControllers(controllers map[string]Controller) Option {
	return func(c *Compiler) {
		maps.Copy(c.controllers, controllers)
	}
}

// WithController makes one named controller available.
func WithController(name string, ctrl Controller) Option {
	return func(c *Compiler) {
		c.controllers[name] = ctrl
	}
}

// WithResolver makes a named resolve function available to resolved
// attributes.
func WithResolver(name string, fn model.ResolveFunc) Option {
	return func(c *Compiler) {
		c.resolvers[name] = fn
	}
}

// WithType registers a custom attribute type under its name.
func WithType(t *model.Type) Option {
	return func(c *Compiler) {
		c.types[strings.ToLower(t.Name())] = t
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// NewCompiler creates a compiler with the default dispatch table.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{
		table: map[Tag]ElementCompiler{
			TagApp:        compileApp,
			TagPage:       compilePage,
			TagWindow:     compileWindow,
			TagModel:      compileModel,
			TagAttribute:  compileAttribute,
			TagController: compileController,
			TagView:       compileView,
			TagEvent:      compileEvent,
		},
		controllers: make(map[string]Controller),
		resolvers:   make(map[string]model.ResolveFunc),
		types:       make(map[string]*model.Type),
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register installs fn for tag, replacing any previous element compiler.
func (c *Compiler) Register(tag Tag, fn ElementCompiler) {
	c.table[tag] = fn
}

// Compile compiles an app definition and initialises the resulting graph.
func (c *Compiler) Compile(def *Definition) (*AppConfig, error) {
	if def == nil || def.Tag != TagApp {
		return nil, fmt.Errorf("%w: root definition must be an app", ErrConfiguration)
	}
	v, err := c.CompileElement(def, nil)
	if err != nil {
		return nil, err
	}
	app, ok := v.(*AppConfig)
	if !ok {
		return nil, fmt.Errorf("%w: app compiler returned %T", ErrConfiguration, v)
	}
	initialised, err := app.Init()
	if err != nil {
		return nil, fmt.Errorf("init app %q: %w", app.Name(), err)
	}
	c.logger.Debug("app compiled", "app", app.Name(), "pages", len(initialised.Pages()))
	return initialised, nil
}

// CompileElement dispatches def to the element compiler registered for its
// tag.
func (c *Compiler) CompileElement(def *Definition, parent any) (any, error) {
	fn, ok := c.table[def.Tag]
	if !ok {
		return nil, fmt.Errorf("%w: no compiler for %s", ErrConfiguration, def)
	}
	v, err := fn(c, def, parent)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("element compiled", "tag", def.Tag, "name", def.Name)
	return v, nil
}

// CompileChildren compiles every child of def with parent as their parent.
func (c *Compiler) CompileChildren(def *Definition, parent any) error {
	for _, child := range def.Children {
		if _, err := c.CompileElement(child, parent); err != nil {
			return err
		}
	}
	return nil
}

// Type returns the attribute type registered under name, falling back to the
// built-in types.
func (c *Compiler) Type(name string) (*model.Type, error) {
	if name == "" {
		return model.Any, nil
	}
	if t, ok := c.types[strings.ToLower(name)]; ok {
		return t, nil
	}
	if t, ok := model.TypeByName(name); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrConfiguration, name)
}

func compileApp(c *Compiler, def *Definition, parent any) (any, error) {
	if parent != nil {
		return nil, wrongParent(def, parent)
	}
	app := NewApp(def.Name)
	if err := c.CompileChildren(def, app); err != nil {
		return nil, err
	}
	return app, nil
}

func compilePage(c *Compiler, def *Definition, parent any) (any, error) {
	app, ok := parent.(*AppConfig)
	if !ok {
		return nil, wrongParent(def, parent)
	}
	page := NewPage(def.Name)
	if err := c.CompileChildren(def, page); err != nil {
		return nil, err
	}
	if err := app.AddPage(page); err != nil {
		return nil, err
	}
	return page, nil
}

func compileWindow(c *Compiler, def *Definition, parent any) (any, error) {
	page, ok := parent.(*PageConfig)
	if !ok {
		return nil, wrongParent(def, parent)
	}
	win := NewWindow(def.Name)
	win.layerName = page.name + "." + def.Name
	if err := c.CompileChildren(def, win); err != nil {
		return nil, err
	}
	if err := win.Validate(); err != nil {
		return nil, err
	}
	if err := page.AddWindow(win); err != nil {
		return nil, err
	}
	return win, nil
}

type modelOwner interface {
	Name() string
	LayerName() string
	Model() *model.Configuration
	SetModel(*model.Configuration)
}

// attributeList collects the attributes of a model definition.
type attributeList struct {
	attrs []*model.Attribute
}

func compileModel(c *Compiler, def *Definition, parent any) (any, error) {
	owner, ok := parent.(modelOwner)
	if !ok {
		return nil, wrongParent(def, parent)
	}
	if owner.Model() != nil {
		return nil, fmt.Errorf("%w: %q declares more than one model", ErrConfiguration, owner.Name())
	}
	list := &attributeList{}
	if err := c.CompileChildren(def, list); err != nil {
		return nil, err
	}
	name := def.Name
	if name == "" {
		name = owner.LayerName()
	}
	cfg, err := model.NewConfiguration(name, list.attrs...)
	if err != nil {
		return nil, err
	}
	owner.SetModel(cfg)
	return cfg, nil
}

func compileAttribute(c *Compiler, def *Definition, parent any) (any, error) {
	list, ok := parent.(*attributeList)
	if !ok {
		return nil, wrongParent(def, parent)
	}
	typeName, err := stringAttr(def, "type", "")
	if err != nil {
		return nil, err
	}
	t, err := c.Type(typeName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def, err)
	}
	kind, err := stringAttr(def, "kind", "simple")
	if err != nil {
		return nil, err
	}

	var attr *model.Attribute
	switch strings.ToLower(kind) {
	case "simple":
		attr = model.Simple(def.Name, t)
	case "resolved":
		resolver, err := stringAttr(def, "resolver", def.Name)
		if err != nil {
			return nil, err
		}
		fn, ok := c.resolvers[resolver]
		if !ok {
			return nil, fmt.Errorf("%w: %s: unknown resolver %q", ErrConfiguration, def, resolver)
		}
		attr = model.Resolved(def.Name, t, fn)
	case "config":
		v, err := coerced(def, t, "value")
		if err != nil {
			return nil, err
		}
		attr = model.Config(def.Name, t, v)
	default:
		return nil, fmt.Errorf("%w: %s: unknown attribute kind %q", ErrConfiguration, def, kind)
	}

	aliases, err := stringsAttr(def, "aliases")
	if err != nil {
		return nil, err
	}
	attr.WithAliases(aliases...)

	if _, ok := def.Attrs["default"]; ok {
		v, err := coerced(def, t, "default")
		if err != nil {
			return nil, err
		}
		attr.WithDefault(v)
	}

	flags := []struct {
		key string
		set func() *model.Attribute
	}{
		{"eventable", attr.Eventable},
		{"aliasable", attr.Aliasable},
		{"alias_expected", attr.AliasExpected},
	}
	for _, f := range flags {
		on, err := boolAttr(def, f.key)
		if err != nil {
			return nil, err
		}
		if on {
			f.set()
		}
	}

	if lc, err := stringAttr(def, "lifecycle", ""); err != nil {
		return nil, err
	} else if lc != "" {
		parsed, err := model.ParseLifecycle(lc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", def, err)
		}
		if err := attr.SetLifecycle(parsed); err != nil {
			return nil, fmt.Errorf("%s: %w", def, err)
		}
	}

	list.attrs = append(list.attrs, attr)
	return attr, nil
}

type controllerOwner interface {
	Name() string
	AddController(action string, c Controller) error
}

func compileController(c *Compiler, def *Definition, parent any) (any, error) {
	owner, ok := parent.(controllerOwner)
	if !ok {
		return nil, wrongParent(def, parent)
	}
	handler, err := stringAttr(def, "handler", def.Name)
	if err != nil {
		return nil, err
	}
	ctrl, ok := c.controllers[handler]
	if !ok {
		return nil, fmt.Errorf("%w: %s: unknown handler %q", ErrConfiguration, def, handler)
	}
	if err := owner.AddController(def.Name, ctrl); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func compileView(_ *Compiler, def *Definition, parent any) (any, error) {
	win, ok := parent.(*WindowConfig)
	if !ok {
		return nil, wrongParent(def, parent)
	}
	tmpl, err := stringAttr(def, "template", def.Name)
	if err != nil {
		return nil, err
	}
	styles, err := stringsAttr(def, "styles")
	if err != nil {
		return nil, err
	}
	isDefault, err := boolAttr(def, "default")
	if err != nil {
		return nil, err
	}
	v := &View{Result: def.Name, Template: tmpl, Styles: styles, Default: isDefault}
	if err := win.AddView(v); err != nil {
		return nil, err
	}
	return v, nil
}

type eventOwner interface {
	AddEvent(e *Event) error
}

func compileEvent(_ *Compiler, def *Definition, parent any) (any, error) {
	owner, ok := parent.(eventOwner)
	if !ok {
		return nil, wrongParent(def, parent)
	}
	attribute, err := stringAttr(def, "attribute", def.Name)
	if err != nil {
		return nil, err
	}
	action, err := stringAttr(def, "action", "")
	if err != nil {
		return nil, err
	}
	kindName, err := stringAttr(def, "kind", "")
	if err != nil {
		return nil, err
	}
	kind, err := ParseEventKind(kindName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def, err)
	}
	e := &Event{Name: def.Name, Attribute: attribute, Action: action, Kind: kind}
	passThrough, err := boolAttr(def, "pass_through")
	if err != nil {
		return nil, err
	}
	if err := e.SetPassThrough(passThrough); err != nil {
		return nil, fmt.Errorf("%s: %w", def, err)
	}
	if err := owner.AddEvent(e); err != nil {
		return nil, err
	}
	return e, nil
}

func wrongParent(def *Definition, parent any) error {
	if parent == nil {
		return fmt.Errorf("%w: %s must be nested", ErrConfiguration, def)
	}
	return fmt.Errorf("%w: %s cannot appear inside %T", ErrConfiguration, def, parent)
}

func stringAttr(def *Definition, key, fallback string) (string, error) {
	v, ok := def.Attrs[key]
	if !ok || v == nil {
		return fallback, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s: %s must be a string, got %T", ErrConfiguration, def, key, v)
	}
	return s, nil
}

func boolAttr(def *Definition, key string) (bool, error) {
	v, ok := def.Attrs[key]
	if !ok || v == nil {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s: %s must be a bool, got %T", ErrConfiguration, def, key, v)
	}
	return b, nil
}

func stringsAttr(def *Definition, key string) ([]string, error) {
	switch v := def.Attrs[key].(type) {
	case nil:
		return nil, nil
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s: %s must hold strings, got %T", ErrConfiguration, def, key, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s: %s must be a list of strings, got %T", ErrConfiguration, def, key, v)
	}
}

func coerced(def *Definition, t *model.Type, key string) (any, error) {
	v, err := t.Coerce(def.Attrs[key])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s: %w", ErrConfiguration, def, key, err)
	}
	return v, nil
}
