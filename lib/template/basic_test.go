package template

import (
	"context"
	"errors"
	"io"
	"testing"
)

// tagMold renders a fixed tag, so tests can see which mold was chosen.
type tagMold string

func (m tagMold) Compile(*Compiler, *Template, Element) (RenderElement, error) {
	return RenderFunc(func(_ context.Context, _ RenderModel, w io.Writer) error {
		_, err := io.WriteString(w, string(m))
		return err
	}), nil
}

// pickyMold declines elements whose name is not wanted.
type pickyMold struct {
	tagMold
	wanted string
}

func (m pickyMold) IsInterested(_ *Compiler, _ *Template, e Element) bool {
	return e.Name() == m.wanted
}

func selectFor(t *testing.T, b *BasicMold, e Element, styles ...string) (Mold, error) {
	t.Helper()
	c := NewCompiler(b, WithStyles(styles...))
	return b.Select(c, &Template{Name: "t", Root: e}, e)
}

func TestSelectNamedDisqualifiedByStyle(t *testing.T) {
	b := NewBasicMold().
		AddNamed("foo", tagMold("named"), "A").
		AddTyped("text", tagMold("typed")).
		SetDefault(tagMold("default"))

	got, err := selectFor(t, b, NewText("foo", ""))
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got != tagMold("typed") {
		t.Errorf("Select() = %v, want typed", got)
	}

	got, err = selectFor(t, b, NewText("foo", ""), "A")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if got != tagMold("named") {
		t.Errorf("Select() with A = %v, want named", got)
	}
}

func TestSelectPoolOrder(t *testing.T) {
	b := NewBasicMold().
		AddBehaviour(BehaviourOf[Commander](), tagMold("behaviour")).
		AddTyped("command", tagMold("typed")).
		AddNamed("save", tagMold("named"))

	tests := []struct {
		elem Element
		want Mold
	}{
		{NewCommand("save", "Save", "save"), tagMold("named")},
		{NewCommand("load", "Load", "load"), tagMold("typed")},
		{NewField("f", "text", "F", "f"), nil},
	}
	for _, tt := range tests {
		t.Run(tt.elem.Name(), func(t *testing.T) {
			got, err := selectFor(t, b, tt.elem)
			if tt.want == nil {
				if !errors.Is(err, ErrNoMold) {
					t.Fatalf("Select() error = %v, want ErrNoMold", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Select() = %v, want %v", got, tt.want)
			}
		})
	}

	b2 := NewBasicMold().AddBehaviour(BehaviourOf[Commander](), tagMold("behaviour"))
	if got, _ := selectFor(t, b2, NewCommand("x", "", "x")); got != tagMold("behaviour") {
		t.Errorf("Select() = %v, want behaviour", got)
	}
}

func TestSelectTieBreaks(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(b *BasicMold)
		styles []string
		want   tagMold
	}{
		{
			name: "exact beats pattern with more styles",
			setup: func(b *BasicMold) {
				b.MustAddTypedPattern(`field\..*`, tagMold("pattern"), "A", "B")
				b.AddTyped("field.text", tagMold("exact"))
			},
			styles: []string{"A", "B"},
			want:   "exact",
		},
		{
			name: "exact registered after pattern still wins",
			setup: func(b *BasicMold) {
				b.AddTyped("field.text", tagMold("exact"))
				b.MustAddTypedPattern(`field\.text`, tagMold("pattern"))
			},
			want: "exact",
		},
		{
			name: "more styles wins among exact",
			setup: func(b *BasicMold) {
				b.AddTyped("field.text", tagMold("plain"))
				b.AddTyped("field.text", tagMold("styled"), "A")
			},
			styles: []string{"A"},
			want:   "styled",
		},
		{
			name: "first registered wins among equal exact",
			setup: func(b *BasicMold) {
				b.AddTyped("field.text", tagMold("first"), "A")
				b.AddTyped("field.text", tagMold("second"), "B")
			},
			styles: []string{"A", "B"},
			want:   "first",
		},
		{
			name: "more styles wins among patterns",
			setup: func(b *BasicMold) {
				b.MustAddTypedPattern(`field\.text`, tagMold("long"))
				b.MustAddTypedPattern(`field\..*`, tagMold("styled"), "A")
			},
			styles: []string{"A"},
			want:   "styled",
		},
		{
			name: "longer pattern wins among equal patterns",
			setup: func(b *BasicMold) {
				b.MustAddTypedPattern(`field\..*`, tagMold("short"))
				b.MustAddTypedPattern(`field\.te.t`, tagMold("long"))
			},
			want: "long",
		},
		{
			name: "first wins among patterns of equal length",
			setup: func(b *BasicMold) {
				b.MustAddTypedPattern(`f.*`, tagMold("first"))
				b.MustAddTypedPattern(`.*t`, tagMold("second"))
			},
			want: "first",
		},
		{
			name: "pattern must match the whole type",
			setup: func(b *BasicMold) {
				b.MustAddTypedPattern(`field`, tagMold("prefix"))
				b.SetDefault(tagMold("default"))
			},
			want: "default",
		},
		{
			name: "uninterested fragment mold is skipped",
			setup: func(b *BasicMold) {
				b.AddTyped("field.text", pickyMold{tagMold: "picky", wanted: "other"}, "A")
				b.AddTyped("field.text", tagMold("fallback"))
			},
			styles: []string{"A"},
			want:   "fallback",
		},
		{
			name: "interested fragment mold is kept",
			setup: func(b *BasicMold) {
				b.AddTyped("field.text", pickyMold{tagMold: "picky", wanted: "name"}, "A")
				b.AddTyped("field.text", tagMold("fallback"))
			},
			styles: []string{"A"},
			want:   "picky",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBasicMold()
			tt.setup(b)
			got, err := selectFor(t, b, NewField("name", "text", "Name", "name"), tt.styles...)
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			var tag tagMold
			switch m := got.(type) {
			case tagMold:
				tag = m
			case pickyMold:
				tag = m.tagMold
			}
			if tag != tt.want {
				t.Errorf("Select() = %v, want %v", tag, tt.want)
			}
		})
	}
}

func TestNoMold(t *testing.T) {
	_, err := selectFor(t, NewBasicMold(), NewText("x", ""))
	if !errors.Is(err, ErrNoMold) {
		t.Fatalf("Select() error = %v, want ErrNoMold", err)
	}
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("ErrNoMold does not match ErrInvalidArgument")
	}
	if !IsNoMold(err) {
		t.Errorf("IsNoMold(%v) = false", err)
	}
}

func TestAddTypedPatternInvalid(t *testing.T) {
	b := NewBasicMold()
	if err := b.AddTypedPattern("field(", tagMold("x")); err == nil {
		t.Error("AddTypedPattern() with bad pattern returned nil error")
	}
	defer func() {
		if recover() == nil {
			t.Error("MustAddTypedPattern() did not panic")
		}
	}()
	b.MustAddTypedPattern("[", tagMold("x"))
}

func TestBehaviourOfName(t *testing.T) {
	if got := BehaviourOf[Container]().String(); got != "template.Container" {
		t.Errorf("String() = %q, want template.Container", got)
	}
}
