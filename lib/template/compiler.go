package template

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// StyleDelimiter terminates each style in a cache key.
const StyleDelimiter = "|"

// Compiler compiles templates into render trees and caches the results by
// style signature.
type Compiler struct {
	templates      map[string]*Template
	molds          Selector
	root           TemplateMold
	styles         []string
	templateStyles []string
	cache          map[string]RenderElement
	compiling      map[string]bool
	selections     map[Element]Mold
	logger         *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithTemplates registers templates by name. Later templates replace earlier
// ones of the same name.
func WithTemplates(ts ...*Template) Option {
	return func(c *Compiler) {
		for _, t := range ts {
			c.templates[t.Name] = t
		}
	}
}

// WithRootMold replaces the mold compiling template roots.
func WithRootMold(m TemplateMold) Option {
	return func(c *Compiler) {
		c.root = m
	}
}

// WithStyles activates styles for every compilation.
func WithStyles(styles ...string) Option {
	return func(c *Compiler) {
		c.styles = append(c.styles, styles...)
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// NewCompiler creates a compiler selecting molds with molds.
func NewCompiler(molds *BasicMold, opts ...Option) *Compiler {
	c := &Compiler{
		templates: make(map[string]*Template),
		molds:     molds,
		root:      molds,
		cache:     make(map[string]RenderElement),
		compiling: make(map[string]bool),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AddTemplate registers t. A second template with the same name is an error.
func (c *Compiler) AddTemplate(t *Template) error {
	if t == nil || t.Name == "" {
		return fmt.Errorf("%w: template without a name", ErrInvalidArgument)
	}
	if _, exists := c.templates[t.Name]; exists {
		return fmt.Errorf("%w: duplicate template %q", ErrInvalidArgument, t.Name)
	}
	c.templates[t.Name] = t
	return nil
}

// Template returns the template registered under name.
func (c *Compiler) Template(name string) (*Template, bool) {
	t, ok := c.templates[name]
	return t, ok
}

// CompileTemplate compiles the named template.
//
// styles not yet active are activated for the duration of the call and are
// inherited by templates compiled from inside it. templateStyles replace the
// template styles for the duration of the call; nil means the template's own
// styles. The result is cached under the active style signature and the
// name, and a cached result is returned as is.
func (c *Compiler) CompileTemplate(name string, styles, templateStyles []string) (RenderElement, error) {
	t, ok := c.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown template %q", ErrInvalidArgument, name)
	}

	depth := len(c.styles)
	for _, s := range styles {
		if !slices.Contains(c.styles, s) {
			c.styles = append(c.styles, s)
		}
	}
	defer func() { c.styles = c.styles[:depth] }()

	key := c.CacheKey(name)
	if re, ok := c.cache[key]; ok {
		c.logger.Debug("template cache hit", "key", key)
		return re, nil
	}
	if c.compiling[key] {
		return nil, fmt.Errorf("%w: template %q includes itself", ErrInvalidArgument, name)
	}
	c.compiling[key] = true
	defer delete(c.compiling, key)

	prevTemplateStyles, prevSelections := c.templateStyles, c.selections
	if templateStyles == nil {
		templateStyles = t.Styles
	}
	c.templateStyles = slices.Clone(templateStyles)
	c.selections = make(map[Element]Mold)
	defer func() {
		c.templateStyles, c.selections = prevTemplateStyles, prevSelections
	}()

	re, err := c.root.CompileRoot(c, t)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", name, err)
	}
	c.cache[key] = re
	c.logger.Debug("template compiled", "key", key)
	return re, nil
}

// CompileElement compiles e, an element of t, with the mold selected for it.
// The selection is made once per element for each template compilation.
func (c *Compiler) CompileElement(t *Template, e Element) (RenderElement, error) {
	if c.selections == nil {
		c.selections = make(map[Element]Mold)
	}
	m, ok := c.selections[e]
	if !ok {
		var err error
		m, err = c.molds.Select(c, t, e)
		if err != nil {
			return nil, err
		}
		c.selections[e] = m
	}
	return m.Compile(c, t, e)
}

// CompileChildren compiles the children of e with its styles active.
func (c *Compiler) CompileChildren(t *Template, e Container) (RenderList, error) {
	n := c.PushStyles(e.Styles()...)
	defer c.PopStyles(n)

	children := e.Children()
	out := make(RenderList, 0, len(children))
	for _, child := range children {
		re, err := c.CompileElement(t, child)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

// PushStyles activates template styles that are not already active and
// returns how many were pushed.
func (c *Compiler) PushStyles(styles ...string) int {
	n := 0
	for _, s := range styles {
		if !c.IsActive(s) {
			c.templateStyles = append(c.templateStyles, s)
			n++
		}
	}
	return n
}

// PopStyles removes the n most recently pushed template styles.
func (c *Compiler) PopStyles(n int) {
	c.templateStyles = c.templateStyles[:len(c.templateStyles)-n]
}

// IsActive reports whether style is active, either as a style or as a
// template style.
func (c *Compiler) IsActive(style string) bool {
	return slices.Contains(c.styles, style) || slices.Contains(c.templateStyles, style)
}

// ActiveAll reports whether every style in styles is active.
func (c *Compiler) ActiveAll(styles []string) bool {
	for _, s := range styles {
		if !c.IsActive(s) {
			return false
		}
	}
	return true
}

// Styles returns the active styles in activation order.
func (c *Compiler) Styles() []string {
	return slices.Clone(c.styles)
}

// TemplateStyles returns the active template styles.
func (c *Compiler) TemplateStyles() []string {
	return slices.Clone(c.templateStyles)
}

// CacheKey returns the cache key of name under the active styles.
func (c *Compiler) CacheKey(name string) string {
	var b strings.Builder
	for _, s := range c.styles {
		b.WriteString(s)
		b.WriteString(StyleDelimiter)
	}
	b.WriteString(name)
	return b.String()
}

// Reset drops every cached render tree.
func (c *Compiler) Reset() {
	c.cache = make(map[string]RenderElement)
}
