package template

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pthm/talui/lib/model"
)

var groupMold = MoldFunc(func(c *Compiler, t *Template, e Element) (RenderElement, error) {
	return c.CompileChildren(t, e.(Container))
})

var includeMold = MoldFunc(func(c *Compiler, _ *Template, e Element) (RenderElement, error) {
	ref := e.(Reference)
	return c.CompileTemplate(ref.Template(), ref.Styles(), nil)
})

// stamp renders fixed text. Being a pointer, it can be compared for identity.
type stamp struct{ text string }

func (s *stamp) Render(_ context.Context, _ RenderModel, w io.Writer) error {
	_, err := io.WriteString(w, s.text)
	return err
}

// styleMold renders the styles active when it compiled.
var styleMold = MoldFunc(func(c *Compiler, _ *Template, e Element) (RenderElement, error) {
	active := strings.Join(append(c.Styles(), c.TemplateStyles()...), ",")
	return &stamp{text: "[" + e.Name() + ":" + active + "]"}, nil
})

func newTestMolds() *BasicMold {
	return NewBasicMold().
		AddBehaviour(BehaviourOf[Container](), groupMold).
		AddBehaviour(BehaviourOf[Reference](), includeMold).
		SetDefault(styleMold)
}

func render(t *testing.T, re RenderElement) string {
	t.Helper()
	var buf bytes.Buffer
	if err := re.Render(context.Background(), NewRenderModel(model.NewSimpleModel(nil), nil), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestCompileTemplateCache(t *testing.T) {
	c := NewCompiler(newTestMolds(), WithTemplates(&Template{Name: "T", Root: NewText("t", "")}))

	first, err := c.CompileTemplate("T", nil, nil)
	if err != nil {
		t.Fatalf("CompileTemplate() error = %v", err)
	}
	second, err := c.CompileTemplate("T", nil, nil)
	if err != nil {
		t.Fatalf("CompileTemplate() error = %v", err)
	}
	if first != second {
		t.Error("same styles: got distinct render elements, want the cached one")
	}

	styled, err := c.CompileTemplate("T", []string{"print"}, nil)
	if err != nil {
		t.Fatalf("CompileTemplate() error = %v", err)
	}
	if styled == first {
		t.Error("different styles: got the cached render element, want a new one")
	}
	again, _ := c.CompileTemplate("T", []string{"print"}, nil)
	if again != styled {
		t.Error("repeated styled compile did not hit the cache")
	}
	if got := render(t, styled); got != "[t:print]" {
		t.Errorf("styled render = %q, want [t:print]", got)
	}
	if len(c.Styles()) != 0 {
		t.Errorf("Styles() after compile = %v, want none", c.Styles())
	}

	c.Reset()
	if fresh, _ := c.CompileTemplate("T", nil, nil); fresh == first {
		t.Error("Reset() kept the cached render element")
	}
}

func TestCacheKey(t *testing.T) {
	c := NewCompiler(NewBasicMold(), WithStyles("a", "b"))
	if got := c.CacheKey("T"); got != "a|b|T" {
		t.Errorf("CacheKey() = %q, want a|b|T", got)
	}
}

func TestCompileTemplateUnknown(t *testing.T) {
	c := NewCompiler(newTestMolds(), WithStyles("base"))
	_, err := c.CompileTemplate("missing", []string{"extra"}, []string{"local"})
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("CompileTemplate() error = %v, want ErrInvalidArgument", err)
	}
	if diff := cmp.Diff([]string{"base"}, c.Styles()); diff != "" {
		t.Errorf("Styles() mismatch (-want +got):\n%s", diff)
	}
	if len(c.TemplateStyles()) != 0 {
		t.Errorf("TemplateStyles() = %v, want none", c.TemplateStyles())
	}
}

func TestCompileTemplateRestoresStylesOnError(t *testing.T) {
	root := NewGroup("root", NewText("ok", ""), NewCommand("broken", "", "x")).WithStyles("inner")
	molds := NewBasicMold().
		AddBehaviour(BehaviourOf[Container](), groupMold).
		AddTyped("text", styleMold)
	c := NewCompiler(molds, WithTemplates(&Template{Name: "T", Root: root}))

	_, err := c.CompileTemplate("T", []string{"outer"}, []string{"local"})
	if !errors.Is(err, ErrNoMold) {
		t.Fatalf("CompileTemplate() error = %v, want ErrNoMold", err)
	}
	if len(c.Styles()) != 0 || len(c.TemplateStyles()) != 0 {
		t.Errorf("styles after failure = %v / %v, want none", c.Styles(), c.TemplateStyles())
	}
	if _, ok := c.cache[c.CacheKey("T")]; ok {
		t.Error("failed compile was cached")
	}
}

func TestStylesInheritance(t *testing.T) {
	page := &Template{
		Name: "page",
		Root: NewGroup("body",
			NewText("head", ""),
			NewGroup("box", NewText("inside", "")).WithStyles("boxed"),
			NewInclude("inc", "part", "wide"),
			NewText("tail", ""),
		),
	}
	part := &Template{Name: "part", Root: NewText("part", ""), Styles: []string{"own"}}
	c := NewCompiler(newTestMolds(), WithTemplates(page, part))

	re, err := c.CompileTemplate("page", []string{"print"}, []string{"local"})
	if err != nil {
		t.Fatalf("CompileTemplate() error = %v", err)
	}
	want := "[head:print,local]" +
		"[inside:print,local,boxed]" +
		"[part:print,wide,own]" +
		"[tail:print,local]"
	if got := render(t, re); got != want {
		t.Errorf("render mismatch\n got: %s\nwant: %s", got, want)
	}

	// The included template was cached under its own style signature.
	if _, ok := c.cache["print|wide|part"]; !ok {
		t.Errorf("cache keys = %v, want print|wide|part", cacheKeys(c))
	}
}

func cacheKeys(c *Compiler) []string {
	var keys []string
	for k := range c.cache {
		keys = append(keys, k)
	}
	return keys
}

func TestCompileTemplateRecursion(t *testing.T) {
	c := NewCompiler(newTestMolds(), WithTemplates(
		&Template{Name: "a", Root: NewInclude("to-b", "b")},
		&Template{Name: "b", Root: NewInclude("to-a", "a")},
	))
	_, err := c.CompileTemplate("a", nil, nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("CompileTemplate() error = %v, want ErrInvalidArgument", err)
	}
}

func TestSelectionMemoizedPerPass(t *testing.T) {
	shared := NewText("shared", "")
	calls := 0
	counting := MoldFunc(func(*Compiler, *Template, Element) (RenderElement, error) {
		calls++
		return RenderList(nil), nil
	})
	selects := 0
	molds := NewBasicMold().
		AddBehaviour(BehaviourOf[Container](), groupMold).
		AddNamed("shared", pickyCounter{MoldFunc: counting, selects: &selects})
	c := NewCompiler(molds, WithTemplates(&Template{Name: "T", Root: NewGroup("root", shared, shared, shared)}))

	if _, err := c.CompileTemplate("T", nil, nil); err != nil {
		t.Fatalf("CompileTemplate() error = %v", err)
	}
	if selects != 1 {
		t.Errorf("mold consulted %d times, want 1", selects)
	}
	if calls != 3 {
		t.Errorf("Compile() called %d times, want 3", calls)
	}
}

// pickyCounter counts how often selection asks for interest.
type pickyCounter struct {
	MoldFunc
	selects *int
}

func (p pickyCounter) IsInterested(*Compiler, *Template, Element) bool {
	*p.selects++
	return true
}

func TestAddTemplate(t *testing.T) {
	c := NewCompiler(NewBasicMold())
	if err := c.AddTemplate(&Template{Name: "T"}); err != nil {
		t.Fatalf("AddTemplate() error = %v", err)
	}
	if err := c.AddTemplate(&Template{Name: "T"}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AddTemplate() duplicate = %v, want ErrInvalidArgument", err)
	}
	if err := c.AddTemplate(&Template{}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("AddTemplate() unnamed = %v, want ErrInvalidArgument", err)
	}
	if _, ok := c.Template("T"); !ok {
		t.Error("Template(T) not found")
	}
}

func TestComponent(t *testing.T) {
	re := RenderFunc(func(_ context.Context, m RenderModel, w io.Writer) error {
		v, err := m.Attribute("greeting")
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, v.(string)+" "+m.URL("go"))
		return err
	})
	m := NewRenderModel(model.NewSimpleModel(map[string]any{"greeting": "hi"}), func(a string) string { return "/x/" + a })

	var buf bytes.Buffer
	if err := Component(re, m).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if got := buf.String(); got != "hi /x/go" {
		t.Errorf("Render() = %q, want %q", got, "hi /x/go")
	}
}
