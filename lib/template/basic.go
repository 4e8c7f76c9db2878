package template

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Behaviour is a capability an element may implement.
type Behaviour struct {
	name  string
	match func(Element) bool
}

// BehaviourOf returns the behaviour of implementing T, usually one of the
// capability interfaces:
//
//	molds.AddBehaviour(template.BehaviourOf[template.Container](), groupMold)
func BehaviourOf[T any]() Behaviour {
	return Behaviour{
		name: strings.TrimPrefix(fmt.Sprintf("%T", (*T)(nil)), "*"),
		match: func(e Element) bool {
			_, ok := e.(T)
			return ok
		},
	}
}

func (b Behaviour) String() string {
	return b.name
}

type candidate struct {
	mold    Mold
	styles  []string
	label   string
	typ     string
	pattern *regexp.Regexp
	source  string
	has     func(Element) bool
}

// match reports whether the candidate applies to e, and whether exactly.
func (cd *candidate) match(e Element) (matched, exact bool) {
	switch {
	case cd.pattern != nil:
		return cd.pattern.MatchString(e.Type()), false
	case cd.has != nil:
		return cd.has(e), true
	default:
		return cd.typ == e.Type(), true
	}
}

type selection struct {
	cand  *candidate
	exact bool
}

// better reports whether s should replace best.
func (s selection) better(best *selection) bool {
	if best == nil {
		return true
	}
	if s.exact != best.exact {
		return s.exact
	}
	if len(s.cand.styles) != len(best.cand.styles) {
		return len(s.cand.styles) > len(best.cand.styles)
	}
	if !s.exact {
		return len(s.cand.source) > len(best.cand.source)
	}
	return false
}

// BasicMold is a registry of molds with best-match selection. It is both the
// Selector and the TemplateMold of a Compiler built with NewCompiler.
type BasicMold struct {
	named      map[string][]*candidate
	typed      []*candidate
	behaviours []*candidate
	fallback   Mold
	logger     *slog.Logger
}

// NewBasicMold creates an empty registry.
func NewBasicMold() *BasicMold {
	return &BasicMold{
		named:  make(map[string][]*candidate),
		logger: slog.New(slog.DiscardHandler),
	}
}

// SetLogger sets the logger used to trace selections.
func (b *BasicMold) SetLogger(l *slog.Logger) *BasicMold {
	b.logger = l
	return b
}

// AddNamed registers m for elements called name. m only applies while every
// style in styles is active.
func (b *BasicMold) AddNamed(name string, m Mold, styles ...string) *BasicMold {
	b.named[name] = append(b.named[name], &candidate{mold: m, styles: styles, label: "named " + name})
	return b
}

// AddTyped registers m for elements whose type is typ.
func (b *BasicMold) AddTyped(typ string, m Mold, styles ...string) *BasicMold {
	b.typed = append(b.typed, &candidate{mold: m, styles: styles, typ: typ, label: "type " + typ})
	return b
}

// AddTypedPattern registers m for elements whose whole type matches the
// regular expression pattern.
func (b *BasicMold) AddTypedPattern(pattern string, m Mold, styles ...string) error {
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return fmt.Errorf("template: type pattern %q: %w", pattern, err)
	}
	b.typed = append(b.typed, &candidate{
		mold:    m,
		styles:  styles,
		pattern: re,
		source:  pattern,
		label:   "type pattern " + pattern,
	})
	return nil
}

// MustAddTypedPattern is like AddTypedPattern but panics on a bad pattern.
func (b *BasicMold) MustAddTypedPattern(pattern string, m Mold, styles ...string) *BasicMold {
	if err := b.AddTypedPattern(pattern, m, styles...); err != nil {
		panic(err)
	}
	return b
}

// AddBehaviour registers m for elements implementing bh.
func (b *BasicMold) AddBehaviour(bh Behaviour, m Mold, styles ...string) *BasicMold {
	b.behaviours = append(b.behaviours, &candidate{mold: m, styles: styles, has: bh.match, label: "behaviour " + bh.name})
	return b
}

// SetDefault sets the mold used when no registration applies.
func (b *BasicMold) SetDefault(m Mold) *BasicMold {
	b.fallback = m
	return b
}

// Select returns the best mold for e. The named pool is consulted first, then
// the typed pool, then the behaviour pool, then the default mold.
func (b *BasicMold) Select(c *Compiler, t *Template, e Element) (Mold, error) {
	pools := [][]*candidate{b.named[e.Name()], b.typed, b.behaviours}
	for _, pool := range pools {
		if best := b.best(c, t, e, pool); best != nil {
			b.logger.Debug("mold selected", "element", e.Name(), "type", e.Type(), "mold", best.cand.label)
			return best.cand.mold, nil
		}
	}
	if b.fallback != nil {
		b.logger.Debug("default mold selected", "element", e.Name(), "type", e.Type())
		return b.fallback, nil
	}
	return nil, fmt.Errorf("%w: %q of type %q", ErrNoMold, e.Name(), e.Type())
}

func (b *BasicMold) best(c *Compiler, t *Template, e Element, pool []*candidate) *selection {
	var best *selection
	for _, cd := range pool {
		matched, exact := cd.match(e)
		if !matched || !c.ActiveAll(cd.styles) {
			continue
		}
		if fm, ok := cd.mold.(FragmentMold); ok && !fm.IsInterested(c, t, e) {
			continue
		}
		s := selection{cand: cd, exact: exact}
		if s.better(best) {
			best = &s
		}
	}
	return best
}

// Compile selects the mold for e and compiles e with it.
func (b *BasicMold) Compile(c *Compiler, t *Template, e Element) (RenderElement, error) {
	m, err := b.Select(c, t, e)
	if err != nil {
		return nil, err
	}
	return m.Compile(c, t, e)
}

// CompileRoot compiles the root element of t through c, so the selection is
// memoized for the pass.
func (b *BasicMold) CompileRoot(c *Compiler, t *Template) (RenderElement, error) {
	if t.Root == nil {
		return RenderList(nil), nil
	}
	return c.CompileElement(t, t.Root)
}
