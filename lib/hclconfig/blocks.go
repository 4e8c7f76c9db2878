package hclconfig

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/pthm/talui/lib/config"
)

type fileRoot struct {
	Apps   []*appBlock `hcl:"app,block"`
	Remain hcl.Body    `hcl:",remain"`
}

type appBlock struct {
	Name        string             `hcl:"name,label"`
	Model       *modelBlock        `hcl:"model,block"`
	Controllers []*controllerBlock `hcl:"controller,block"`
	Events      []*eventBlock      `hcl:"event,block"`
	Pages       []*pageBlock       `hcl:"page,block"`
	DeclRange   hcl.Range          `hcl:",def_range"`
}

type pageBlock struct {
	Name        string             `hcl:"name,label"`
	Model       *modelBlock        `hcl:"model,block"`
	Controllers []*controllerBlock `hcl:"controller,block"`
	Events      []*eventBlock      `hcl:"event,block"`
	Windows     []*windowBlock     `hcl:"window,block"`
	DeclRange   hcl.Range          `hcl:",def_range"`
}

type windowBlock struct {
	Name        string             `hcl:"name,label"`
	Model       *modelBlock        `hcl:"model,block"`
	Controllers []*controllerBlock `hcl:"controller,block"`
	Events      []*eventBlock      `hcl:"event,block"`
	Views       []*viewBlock       `hcl:"view,block"`
	DeclRange   hcl.Range          `hcl:",def_range"`
}

type modelBlock struct {
	Name       *string           `hcl:"name,optional"`
	Attributes []*attributeBlock `hcl:"attribute,block"`
	DeclRange  hcl.Range         `hcl:",def_range"`
}

type attributeBlock struct {
	Name          string    `hcl:"name,label"`
	Type          *string   `hcl:"type,optional"`
	Kind          *string   `hcl:"kind,optional"`
	Resolver      *string   `hcl:"resolver,optional"`
	Aliases       []string  `hcl:"aliases,optional"`
	Default       cty.Value `hcl:"default,optional"`
	Value         cty.Value `hcl:"value,optional"`
	Lifecycle     *string   `hcl:"lifecycle,optional"`
	Eventable     *bool     `hcl:"eventable,optional"`
	Aliasable     *bool     `hcl:"aliasable,optional"`
	AliasExpected *bool     `hcl:"alias_expected,optional"`
	DeclRange     hcl.Range `hcl:",def_range"`
}

type controllerBlock struct {
	Action    string    `hcl:"action,label"`
	Handler   *string   `hcl:"handler,optional"`
	DeclRange hcl.Range `hcl:",def_range"`
}

type viewBlock struct {
	Result    string    `hcl:"result,label"`
	Template  *string   `hcl:"template,optional"`
	Styles    []string  `hcl:"styles,optional"`
	Default   *bool     `hcl:"default,optional"`
	DeclRange hcl.Range `hcl:",def_range"`
}

type eventBlock struct {
	Name        string    `hcl:"name,label"`
	Attribute   *string   `hcl:"attribute,optional"`
	Action      *string   `hcl:"action,optional"`
	Kind        *string   `hcl:"kind,optional"`
	PassThrough *bool     `hcl:"pass_through,optional"`
	DeclRange   hcl.Range `hcl:",def_range"`
}

// attrs collects the optional settings that were present.
type attrs map[string]any

func (a attrs) str(key string, v *string) attrs {
	if v != nil {
		a[key] = *v
	}
	return a
}

func (a attrs) flag(key string, v *bool) attrs {
	if v != nil {
		a[key] = *v
	}
	return a
}

func (a attrs) list(key string, v []string) attrs {
	if v != nil {
		a[key] = v
	}
	return a
}

func translateApp(b *appBlock) (*config.Definition, error) {
	def := &config.Definition{Tag: config.TagApp, Name: b.Name, Pos: b.DeclRange.String()}
	if err := addModel(def, b.Model); err != nil {
		return nil, err
	}
	addControllers(def, b.Controllers)
	addEvents(def, b.Events)
	for _, p := range b.Pages {
		page, err := translatePage(p)
		if err != nil {
			return nil, err
		}
		def.Children = append(def.Children, page)
	}
	return def, nil
}

func translatePage(b *pageBlock) (*config.Definition, error) {
	def := &config.Definition{Tag: config.TagPage, Name: b.Name, Pos: b.DeclRange.String()}
	if err := addModel(def, b.Model); err != nil {
		return nil, err
	}
	addControllers(def, b.Controllers)
	addEvents(def, b.Events)
	for _, w := range b.Windows {
		win, err := translateWindow(w)
		if err != nil {
			return nil, err
		}
		def.Children = append(def.Children, win)
	}
	return def, nil
}

func translateWindow(b *windowBlock) (*config.Definition, error) {
	def := &config.Definition{Tag: config.TagWindow, Name: b.Name, Pos: b.DeclRange.String()}
	if err := addModel(def, b.Model); err != nil {
		return nil, err
	}
	for _, v := range b.Views {
		def.Children = append(def.Children, &config.Definition{
			Tag:   config.TagView,
			Name:  v.Result,
			Attrs: attrs{}.str("template", v.Template).list("styles", v.Styles).flag("default", v.Default),
			Pos:   v.DeclRange.String(),
		})
	}
	addControllers(def, b.Controllers)
	addEvents(def, b.Events)
	return def, nil
}

func addModel(parent *config.Definition, b *modelBlock) error {
	if b == nil {
		return nil
	}
	def := &config.Definition{Tag: config.TagModel, Pos: b.DeclRange.String()}
	if b.Name != nil {
		def.Name = *b.Name
	}
	for _, a := range b.Attributes {
		attr, err := translateAttribute(a)
		if err != nil {
			return err
		}
		def.Children = append(def.Children, attr)
	}
	parent.Children = append(parent.Children, def)
	return nil
}

func translateAttribute(b *attributeBlock) (*config.Definition, error) {
	a := attrs{}.
		str("type", b.Type).
		str("kind", b.Kind).
		str("resolver", b.Resolver).
		list("aliases", b.Aliases).
		str("lifecycle", b.Lifecycle).
		flag("eventable", b.Eventable).
		flag("aliasable", b.Aliasable).
		flag("alias_expected", b.AliasExpected)

	for key, v := range map[string]cty.Value{"default": b.Default, "value": b.Value} {
		native, err := toNative(v)
		if err != nil {
			return nil, fmt.Errorf("hclconfig: %s: attribute %q %s: %w", b.DeclRange, b.Name, key, err)
		}
		if native != nil {
			a[key] = native
		}
	}
	return &config.Definition{Tag: config.TagAttribute, Name: b.Name, Attrs: a, Pos: b.DeclRange.String()}, nil
}

func addControllers(parent *config.Definition, blocks []*controllerBlock) {
	for _, c := range blocks {
		parent.Children = append(parent.Children, &config.Definition{
			Tag:   config.TagController,
			Name:  c.Action,
			Attrs: attrs{}.str("handler", c.Handler),
			Pos:   c.DeclRange.String(),
		})
	}
}

func addEvents(parent *config.Definition, blocks []*eventBlock) {
	for _, e := range blocks {
		parent.Children = append(parent.Children, &config.Definition{
			Tag:  config.TagEvent,
			Name: e.Name,
			Attrs: attrs{}.
				str("attribute", e.Attribute).
				str("action", e.Action).
				str("kind", e.Kind).
				flag("pass_through", e.PassThrough),
			Pos: e.DeclRange.String(),
		})
	}
}

// toNative converts a cty value to plain Go values. Whole numbers become
// int64, other numbers float64.
func toNative(v cty.Value) (any, error) {
	if v == cty.NilVal || v.IsNull() || !v.IsKnown() {
		return nil, nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return v.AsString(), nil
	case ty == cty.Bool:
		return v.True(), nil
	case ty == cty.Number:
		var i int64
		if err := gocty.FromCtyValue(v, &i); err == nil {
			return i, nil
		}
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			n, err := toNative(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	case ty.IsMapType() || ty.IsObjectType():
		out := make(map[string]any)
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			n, err := toNative(elem)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key.AsString(), err)
			}
			out[key.AsString()] = n
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value of type %s", ty.FriendlyName())
	}
}
