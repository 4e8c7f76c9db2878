package template

// Mold compiles one template element into a render element.
type Mold interface {
	Compile(c *Compiler, t *Template, e Element) (RenderElement, error)
}

// MoldFunc adapts a function to the Mold interface.
type MoldFunc func(c *Compiler, t *Template, e Element) (RenderElement, error)

// Compile calls f(c, t, e).
func (f MoldFunc) Compile(c *Compiler, t *Template, e Element) (RenderElement, error) {
	return f(c, t, e)
}

// FragmentMold is a mold that can decline an element it was matched to.
type FragmentMold interface {
	Mold
	IsInterested(c *Compiler, t *Template, e Element) bool
}

// TemplateMold compiles the root of a template.
type TemplateMold interface {
	CompileRoot(c *Compiler, t *Template) (RenderElement, error)
}

// Selector picks the mold for an element.
type Selector interface {
	Select(c *Compiler, t *Template, e Element) (Mold, error)
}
