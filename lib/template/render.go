package template

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/talui/lib/model"
)

// RenderModel is what a render tree reads while producing output.
type RenderModel interface {
	Attribute(name string) (any, error)
	// URL returns the address that performs action in the current window.
	URL(action string) string
}

// RenderElement is a compiled template node.
type RenderElement interface {
	Render(ctx context.Context, m RenderModel, w io.Writer) error
}

// RenderFunc adapts a function to the RenderElement interface.
type RenderFunc func(ctx context.Context, m RenderModel, w io.Writer) error

// Render calls f(ctx, m, w).
func (f RenderFunc) Render(ctx context.Context, m RenderModel, w io.Writer) error {
	return f(ctx, m, w)
}

// RenderList renders its elements in order.
type RenderList []RenderElement

// Render renders every element, stopping at the first error.
func (l RenderList) Render(ctx context.Context, m RenderModel, w io.Writer) error {
	for _, e := range l {
		if err := e.Render(ctx, m, w); err != nil {
			return err
		}
	}
	return nil
}

// Component binds a render tree to a model as a templ component, so it can
// be embedded in templ templates or written with templ's HTTP helpers.
func Component(e RenderElement, m RenderModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return e.Render(ctx, m, w)
	})
}

// modelView adapts a model.Model to RenderModel.
type modelView struct {
	model.Model
	url func(action string) string
}

func (v modelView) URL(action string) string {
	if v.url == nil {
		return action
	}
	return v.url(action)
}

// NewRenderModel exposes m to render trees. url builds action addresses; when
// nil the action name is used as is.
func NewRenderModel(m model.Model, url func(action string) string) RenderModel {
	return modelView{Model: m, url: url}
}
