package talui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"sync"

	"github.com/a-h/templ"

	"github.com/pthm/talui/lib/config"
	"github.com/pthm/talui/lib/model"
	"github.com/pthm/talui/lib/template"
)

// App dispatches requests against an initialised app configuration.
//
// App is safe for concurrent use as long as its resolver is; store.Memory,
// store.Bolt and MockResolver are. Every dispatch gets its own model and
// template compilation is serialized because the compiler keeps style state.
type App struct {
	config   *config.AppConfig
	resolver model.Resolver
	styles   []string
	logger   *slog.Logger

	mu       sync.Mutex
	compiler *template.Compiler
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger used for dispatch output.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.logger = l
	}
}

// WithStyles sets styles active for every view in addition to its own.
func WithStyles(styles ...string) Option {
	return func(a *App) {
		a.styles = append(a.styles, styles...)
	}
}

// New creates a runtime for app. r supplies layer values; a nil resolver gives
// every dispatch fresh values.
func New(app *config.AppConfig, c *template.Compiler, r model.Resolver, opts ...Option) *App {
	a := &App{
		config:   app,
		resolver: r,
		compiler: c,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Config returns the app configuration.
func (a *App) Config() *config.AppConfig {
	return a.config
}

// Request addresses a window and optionally an action to perform in it.
type Request struct {
	Page   string
	Window string
	Action string
	// Params are stored into the simple attributes they name before the
	// action runs. Params naming nothing are ignored.
	Params map[string]any
}

// Response is the outcome of a dispatch.
type Response struct {
	Request Request
	View    *config.View
	// Result is the controller result that selected View.
	Result  string
	Element template.RenderElement
	Model   *model.StandardModel

	// Events are the attribute changes recorded during the dispatch.
	Events []model.Event
	// Fired are the configured events matched by Events.
	Fired []*config.Event
	// Triggers are the names of fired pass-through events.
	Triggers []string
}

// Dispatch performs req.Action, if any, in the addressed window and compiles
// the view selected by its result.
func (a *App) Dispatch(ctx context.Context, req Request) (*Response, error) {
	win, err := a.config.Window(req.Page, req.Window)
	if err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrUnknownWindow, req.Page, req.Window, err)
	}
	log := a.logger.With("page", req.Page, "window", req.Window)

	m := model.NewStandardModel(a.resolver,
		model.WithLogger(a.logger),
		model.WithSource(req.Page+"/"+req.Window),
	)
	for _, layer := range win.Layers() {
		m.Push(layer)
	}

	if err := bindParams(m, req.Params); err != nil {
		return nil, err
	}

	resp := &Response{Request: req, Model: m}
	if req.Action != "" {
		ctrl, ok := win.Controller(req.Action)
		if !ok {
			return nil, fmt.Errorf("%w: %q in %s/%s", ErrUnknownAction, req.Action, req.Page, req.Window)
		}
		resp.Result, err = ctrl.Perform(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("talui: action %q: %w", req.Action, err)
		}
		log.Debug("action performed", "action", req.Action, "result", resp.Result)
	}

	if err := a.fire(ctx, win, resp); err != nil {
		return nil, err
	}
	if err := m.EndLifecycle(model.LifecycleAction); err != nil {
		return nil, fmt.Errorf("talui: end action lifecycle: %w", err)
	}

	resp.View = win.View(resp.Result)
	resp.Element, err = a.compile(resp.View)
	if err != nil {
		return nil, err
	}
	log.Debug("view selected", "result", resp.Result, "template", resp.View.Template)
	return resp, nil
}

// bindParams stores params into the simple attributes they name.
func bindParams(m *model.StandardModel, params map[string]any) error {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		_, attr, err := m.Lookup(k)
		if err != nil || attr.Kind() != model.KindSimple {
			continue
		}
		if err := m.SetAttribute(k, params[k]); err != nil {
			return fmt.Errorf("talui: param %q: %w", k, err)
		}
	}
	return nil
}

// fire matches the recorded changes against the events of win, its page and
// the app. Each matched event with an action performs it once; changes made
// by those actions are recorded but fire nothing further.
func (a *App) fire(ctx context.Context, win *config.WindowConfig, resp *Response) error {
	events := make(map[string]*config.Event)
	for _, src := range []map[string]*config.Event{
		a.config.Events(), win.Page().Events(), win.Events(),
	} {
		for k, e := range src {
			events[k] = e
		}
	}

	seen := make(map[*config.Event]bool)
	var perform []*config.Event
	for _, change := range resp.Model.Events() {
		for _, key := range change.Layer.KeysFor(change.Attribute) {
			e, ok := events[change.Layer.Name()+"."+key]
			if !ok || seen[e] || e.Kind != config.EventNormal {
				continue
			}
			seen[e] = true
			resp.Fired = append(resp.Fired, e)
			if e.PassThrough() {
				resp.Triggers = append(resp.Triggers, e.Name)
			} else if e.Action != "" {
				perform = append(perform, e)
			}
		}
	}

	for _, e := range perform {
		ctrl, ok := win.Controller(e.Action)
		if !ok {
			continue
		}
		if _, err := ctrl.Perform(ctx, resp.Model); err != nil {
			return fmt.Errorf("talui: event %q action %q: %w", e.Name, e.Action, err)
		}
		a.logger.Debug("event action performed", "event", e.Name, "action", e.Action)
	}
	resp.Events = resp.Model.Events()
	return nil
}

func (a *App) compile(view *config.View) (template.RenderElement, error) {
	styles := slices.Concat(a.styles, view.Styles)

	a.mu.Lock()
	defer a.mu.Unlock()
	e, err := a.compiler.CompileTemplate(view.Template, styles, nil)
	if err != nil {
		return nil, fmt.Errorf("talui: view %q: %w", view.Result, err)
	}
	return e, nil
}

// URL returns the address performing action in the dispatched window.
func (r *Response) URL(action string) string {
	return "/" + url.PathEscape(r.Request.Page) +
		"/" + url.PathEscape(r.Request.Window) +
		"/" + url.PathEscape(action)
}

// Component returns the compiled view bound to the dispatch model.
func (r *Response) Component() templ.Component {
	return template.Component(r.Element, template.NewRenderModel(r.Model, r.URL))
}

// Render writes the view to w and then finishes the dispatch.
func (r *Response) Render(ctx context.Context, w io.Writer) error {
	if err := r.Component().Render(ctx, w); err != nil {
		return fmt.Errorf("talui: render: %w", err)
	}
	return r.Finish()
}

// Finish ends the render and flash lifecycles and flushes the model to its
// resolver.
func (r *Response) Finish() error {
	for _, lc := range []model.Lifecycle{model.LifecycleRender, model.LifecycleFlash} {
		if err := r.Model.EndLifecycle(lc); err != nil {
			return fmt.Errorf("talui: end %s lifecycle: %w", lc, err)
		}
	}
	if err := r.Model.Flush(); err != nil {
		return fmt.Errorf("talui: flush: %w", err)
	}
	return nil
}
