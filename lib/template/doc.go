// Package template compiles declarative element trees into render trees.
//
// A Template is a named tree of Elements. Compiling it walks the tree and,
// for every element, picks the Mold that turns the element into a
// RenderElement. Molds are registered with a BasicMold in three pools that
// are consulted in order:
//
//   - named molds match the element name exactly
//   - typed molds match the element type exactly or by regular expression
//   - behaviour molds match elements implementing a capability interface
//     such as Container or Commander
//
// Each registration may require styles. A candidate whose styles are not all
// active is ignored. Within a pool an exact match beats a pattern match and
// a candidate requiring more styles beats one requiring fewer.
//
// The Compiler keeps two style stacks. Styles passed to CompileTemplate are
// inherited by every template compiled from inside it; template styles only
// apply to the template being compiled. Compiled templates are cached by the
// active style signature and name, so the same template compiles once per
// distinct style set:
//
//	molds := template.NewBasicMold().
//		AddTyped("text", textMold).
//		AddNamed("title", headingMold, "print")
//	c := template.NewCompiler(molds, template.WithTemplates(page))
//	root, err := c.CompileTemplate("page", []string{"print"}, nil)
//
// Compilers hold mutable state and are not safe for concurrent use.
package template
