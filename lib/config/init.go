package config

import (
	"fmt"
	"maps"
	"sort"

	"github.com/pthm/talui/lib/model"
)

// reconciled is the outcome of folding one model layer into the layers above.
type reconciled struct {
	local  *model.Configuration
	shared []*model.Configuration
	events map[string]*Event
}

// reconcile folds the attributes of local into shared, which is ordered from
// the least specific layer (the app) to the most specific. Every attribute is
// merged into the first shared layer accepting it and removed from local.
//
// events are keyed by attribute name on input. An event on a merged attribute
// is re-keyed "<layer>.<name>" for the layer that now owns the attribute.
// Events on attributes that are not local are looked up in the shared layers,
// most specific first.
func reconcile(owner string, local *model.Configuration, events map[string]*Event, shared []*model.Configuration) (*reconciled, error) {
	out := &reconciled{
		local:  local,
		shared: append([]*model.Configuration(nil), shared...),
		events: make(map[string]*Event, len(events)),
	}
	pending := maps.Clone(events)

	for _, attr := range local.Attributes() {
		targeted := targetingEvents(local, attr, pending)

		merged := false
		for i, layer := range out.shared {
			if layer == nil {
				continue
			}
			next, name, ok := layer.Merge(attr)
			if !ok {
				continue
			}
			out.shared[i] = next
			out.local = out.local.Without(attr.Name())
			for _, key := range targeted {
				out.events[layer.Name()+"."+name] = pending[key]
				delete(pending, key)
			}
			merged = true
			break
		}
		if merged {
			continue
		}

		if len(targeted) > 0 {
			return nil, fmt.Errorf("%w: %q: event %q targets attribute %q which cannot be merged",
				ErrConfiguration, owner, pending[targeted[0]].Name, attr.Name())
		}
		if attr.IsAliasExpected() {
			return nil, fmt.Errorf("%w: %q: attribute %q expects an alias in a shared layer but none matched",
				ErrConfiguration, owner, attr.Name())
		}
	}

	keys := make([]string, 0, len(pending))
	for k := range pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		layer := findLayer(out.shared, key)
		if layer == nil {
			return nil, fmt.Errorf("%w: %q: event %q targets unknown attribute %q",
				ErrConfiguration, owner, pending[key].Name, key)
		}
		out.events[layer.Name()+"."+key] = pending[key]
	}
	return out, nil
}

// targetingEvents returns the sorted event keys that name attr in local,
// either by its own name or by an alias key.
func targetingEvents(local *model.Configuration, attr *model.Attribute, events map[string]*Event) []string {
	var keys []string
	for _, k := range local.KeysFor(attr) {
		if _, ok := events[k]; ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func findLayer(layers []*model.Configuration, name string) *model.Configuration {
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i] != nil && layers[i].Declares(name) {
			return layers[i]
		}
	}
	return nil
}

// Init reconciles the window model with the app and page models. It returns a
// new window whose model lacks every attribute merged upwards and whose
// events are keyed by owning layer, together with the possibly extended app
// and page configurations. The receiver is not modified.
func (w *WindowConfig) Init(app, page *model.Configuration) (*WindowConfig, *model.Configuration, *model.Configuration, error) {
	if err := w.Validate(); err != nil {
		return nil, nil, nil, err
	}
	r, err := reconcile(w.name, w.layer(), w.events, []*model.Configuration{app, page})
	if err != nil {
		return nil, nil, nil, err
	}
	next := &WindowConfig{
		node:        w.clone(),
		page:        w.page,
		views:       maps.Clone(w.views),
		defaultView: w.defaultView,
	}
	next.model = r.local
	next.events = r.events
	return next, r.shared[0], r.shared[1], nil
}

// Init reconciles the page model with the app model and then initialises
// every window. It returns the new page, wired to its new windows, and the
// possibly extended app configuration.
//
// The page model is reconciled like a window model: an event on a page
// attribute is accepted only when that attribute merges into the app model.
// Values a page keeps to itself are watched through window events instead.
func (p *PageConfig) Init(app *model.Configuration) (*PageConfig, *model.Configuration, error) {
	r, err := reconcile(p.name, p.layer(), p.events, []*model.Configuration{app})
	if err != nil {
		return nil, nil, err
	}
	app = r.shared[0]
	pageModel := r.local

	next := &PageConfig{node: p.clone(), app: p.app}
	next.events = r.events
	for _, w := range p.windows {
		var nw *WindowConfig
		nw, app, pageModel, err = w.Init(app, pageModel)
		if err != nil {
			return nil, nil, fmt.Errorf("page %q: %w", p.name, err)
		}
		nw.page = next
		next.windows = append(next.windows, nw)
	}
	next.model = pageModel
	return next, app, nil
}

// Init initialises every page and returns a new app graph with parent
// pointers rewired. App events are keyed by the app model's name. Two layers
// with the same name are an error, since resolvers keep values by layer name.
// The receiver is not modified.
func (a *AppConfig) Init() (*AppConfig, error) {
	appModel := a.layer()
	for key, e := range a.events {
		if !appModel.Declares(key) {
			return nil, fmt.Errorf("%w: %q: event %q targets unknown attribute %q",
				ErrConfiguration, a.name, e.Name, key)
		}
	}

	next := &AppConfig{node: a.clone()}
	next.events = make(map[string]*Event, len(a.events))
	for key, e := range a.events {
		next.events[appModel.Name()+"."+key] = e
	}
	for _, p := range a.pages {
		np, extended, err := p.Init(appModel)
		if err != nil {
			return nil, err
		}
		appModel = extended
		np.app = next
		next.pages = append(next.pages, np)
	}
	next.model = appModel
	if err := checkLayerNames(next); err != nil {
		return nil, err
	}

	for _, p := range next.pages {
		for _, w := range p.windows {
			if err := checkActions(w); err != nil {
				return nil, err
			}
		}
	}
	return next, nil
}

// checkLayerNames verifies that no two layers of app share a name.
func checkLayerNames(app *AppConfig) error {
	owners := map[string]string{app.model.Name(): "app " + app.name}
	claim := func(cfg *model.Configuration, owner string) error {
		if prev, taken := owners[cfg.Name()]; taken {
			return fmt.Errorf("%w: %s and %s both use layer name %q", ErrConfiguration, prev, owner, cfg.Name())
		}
		owners[cfg.Name()] = owner
		return nil
	}
	for _, p := range app.pages {
		if err := claim(p.layer(), "page "+p.name); err != nil {
			return err
		}
		for _, w := range p.windows {
			if err := claim(w.layer(), "window "+p.name+"."+w.name); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkActions verifies that every event action of w and its page resolves
// to a controller.
func checkActions(w *WindowConfig) error {
	events := w.Events()
	maps.Copy(events, w.page.Events())
	for _, key := range sortedKeys(events) {
		e := events[key]
		if e.Action == "" {
			continue
		}
		if _, ok := w.Controller(e.Action); !ok {
			return fmt.Errorf("%w: window %q: event %q performs unknown action %q",
				ErrConfiguration, w.name, e.Name, e.Action)
		}
	}
	return nil
}
