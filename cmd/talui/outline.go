package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pthm/talui/lib/config"
	"github.com/pthm/talui/lib/model"
)

// outline writes an indented description of an app graph.
type outline struct {
	w     io.Writer
	depth int
}

func (o *outline) line(format string, args ...any) {
	fmt.Fprintf(o.w, "%s%s\n", strings.Repeat("  ", o.depth), fmt.Sprintf(format, args...))
}

func (o *outline) nest(fn func()) {
	o.depth++
	fn()
	o.depth--
}

func writeOutline(w io.Writer, app *config.AppConfig) {
	o := &outline{w: w}
	o.line("app %s", app.Name())
	o.nest(func() {
		o.layer(app.Model())
		o.controllers(app.Actions())
		o.events(app.EventKeys(), app.Events())
		for _, p := range app.Pages() {
			o.line("page %s", p.Name())
			o.nest(func() {
				o.layer(p.Model())
				o.controllers(p.Actions())
				o.events(p.EventKeys(), p.Events())
				for _, win := range p.Windows() {
					o.window(win)
				}
			})
		}
	})
}

func (o *outline) window(win *config.WindowConfig) {
	o.line("window %s", win.Name())
	o.nest(func() {
		o.layer(win.Model())
		for _, result := range win.Results() {
			v := win.View(result)
			var extra []string
			if v.Default {
				extra = append(extra, "default")
			}
			if len(v.Styles) > 0 {
				extra = append(extra, "styles "+strings.Join(v.Styles, ","))
			}
			o.line("view %s -> %s%s", v.Result, v.Template, parens(extra))
		}
		o.controllers(win.Actions())
		o.events(win.EventKeys(), win.Events())
	})
}

func (o *outline) layer(cfg *model.Configuration) {
	if cfg == nil || cfg.Len() == 0 {
		return
	}
	o.line("layer %s", cfg.Name())
	o.nest(func() {
		for _, a := range cfg.Attributes() {
			extra := []string{a.Kind().String(), a.Lifecycle().String()}
			if a.IsEventable() {
				extra = append(extra, "eventable")
			}
			if a.IsAliasable() {
				extra = append(extra, "aliasable")
			}
			var keys []string
			for _, k := range cfg.KeysFor(a) {
				if k != a.Name() {
					keys = append(keys, k)
				}
			}
			if len(keys) > 0 {
				extra = append(extra, "also "+strings.Join(keys, ","))
			}
			o.line("attribute %s %s%s", a.Name(), a.Type(), parens(extra))
		}
	})
}

func (o *outline) controllers(actions []string) {
	for _, a := range actions {
		o.line("controller %s", a)
	}
}

func (o *outline) events(keys []string, events map[string]*config.Event) {
	for _, k := range keys {
		e := events[k]
		extra := []string{e.Kind.String()}
		if e.PassThrough() {
			extra = append(extra, "pass-through")
		}
		action := ""
		if e.Action != "" {
			action = " -> " + e.Action
		}
		o.line("event %s on %s%s%s", e.Name, k, action, parens(extra))
	}
}

func parens(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return " (" + strings.Join(items, ", ") + ")"
}
