package talui

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/pthm/talui/lib/model"
)

// TestResult holds the outcome of a dispatch rendered for testing.
//
// Provides convenience methods for asserting on HTML content, the selected
// view and fired events.
type TestResult struct {
	HTML     string
	Result   string
	Template string
	Events   []model.Event
	Triggers []string
	Response *Response
}

// TestDispatch dispatches req against app and renders the selected view.
//
// The whole request lifecycle runs: params are bound, the action and fired
// event actions are performed, the view is compiled and rendered, and the
// model is flushed.
//
//	result, err := talui.TestDispatch(app, talui.Request{
//	    Page: "cart", Window: "summary", Action: "checkout",
//	})
//	if !result.HTMLContains("Thank you") {
//	    t.Fatal("missing confirmation")
//	}
func TestDispatch(app *App, req Request) (*TestResult, error) {
	return TestDispatchWithContext(context.Background(), app, req)
}

// TestDispatchWithContext is TestDispatch with a custom context, for
// controllers that read request-scoped values.
func TestDispatchWithContext(ctx context.Context, app *App, req Request) (*TestResult, error) {
	resp, err := app.Dispatch(ctx, req)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := resp.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return &TestResult{
		HTML:     buf.String(),
		Result:   resp.Result,
		Template: resp.View.Template,
		Events:   resp.Events,
		Triggers: resp.Triggers,
		Response: resp,
	}, nil
}

// HTMLContains checks if the HTML contains a substring.
func (r *TestResult) HTMLContains(substr string) bool {
	return strings.Contains(r.HTML, substr)
}

// HTMLContainsAll checks if the HTML contains all the given substrings.
func (r *TestResult) HTMLContainsAll(substrs ...string) bool {
	for _, s := range substrs {
		if !strings.Contains(r.HTML, s) {
			return false
		}
	}
	return true
}

// HTMLContainsAny checks if the HTML contains any of the given substrings.
func (r *TestResult) HTMLContainsAny(substrs ...string) bool {
	for _, s := range substrs {
		if strings.Contains(r.HTML, s) {
			return true
		}
	}
	return false
}

// HasTrigger checks if a pass-through event fired.
func (r *TestResult) HasTrigger(name string) bool {
	return slices.Contains(r.Triggers, name)
}

// HasChange checks if a change of the named attribute was recorded.
func (r *TestResult) HasChange(attribute string) bool {
	for _, e := range r.Events {
		if e.Attribute.Name() == attribute {
			return true
		}
	}
	return false
}

// RenderedView checks if the view rendered the named template.
func (r *TestResult) RenderedView(template string) bool {
	return r.Template == template
}

// TestRequestBuilder provides a fluent interface for building test requests.
//
//	result, err := talui.NewTestRequest("cart", "summary").
//	    WithAction("save").
//	    WithParam("items", "3").
//	    Execute(app)
type TestRequestBuilder struct {
	req Request
	ctx context.Context
}

// NewTestRequest creates a new test request builder.
func NewTestRequest(page, window string) *TestRequestBuilder {
	return &TestRequestBuilder{
		req: Request{Page: page, Window: window, Params: make(map[string]any)},
		ctx: context.Background(),
	}
}

// WithAction sets the action to perform.
func (b *TestRequestBuilder) WithAction(action string) *TestRequestBuilder {
	b.req.Action = action
	return b
}

// WithParam adds a param to the request.
func (b *TestRequestBuilder) WithParam(key string, value any) *TestRequestBuilder {
	b.req.Params[key] = value
	return b
}

// WithParams adds multiple params to the request.
func (b *TestRequestBuilder) WithParams(params map[string]any) *TestRequestBuilder {
	maps.Copy(b.req.Params, params)
	return b
}

// WithContext sets the context for the request.
func (b *TestRequestBuilder) WithContext(ctx context.Context) *TestRequestBuilder {
	b.ctx = ctx
	return b
}

// Execute dispatches and renders the request against app.
func (b *TestRequestBuilder) Execute(app *App) (*TestResult, error) {
	return TestDispatchWithContext(b.ctx, app, b.req)
}

// MockResolver supplies fixed layer values and records which layers were
// requested.
//
// Values are keyed by layer name. Every model gets a copy of a layer's values
// and flushing a model writes its copy back, so values set in one dispatch
// are visible in the next:
//
//	r := talui.NewMockResolver(map[string]map[string]any{
//	    "cart": {"items": 2},
//	})
type MockResolver struct {
	mu        sync.Mutex
	layers    map[string]map[string]any
	requested []string
}

// NewMockResolver creates a MockResolver seeded with values.
func NewMockResolver(values map[string]map[string]any) *MockResolver {
	r := &MockResolver{layers: make(map[string]map[string]any)}
	for name, v := range values {
		r.layers[name] = maps.Clone(v)
	}
	return r
}

// ModelAttributes returns a copy of the values of cfg's layer.
func (r *MockResolver) ModelAttributes(cfg *model.Configuration) (map[string]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requested = append(r.requested, cfg.Name())
	values := maps.Clone(r.layers[cfg.Name()])
	if values == nil {
		values = make(map[string]any)
	}
	return values, nil
}

// SaveModelAttributes replaces the values of cfg's layer.
func (r *MockResolver) SaveModelAttributes(cfg *model.Configuration, values map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layers[cfg.Name()] = maps.Clone(values)
	return nil
}

// Values returns a copy of the values stored for the named layer.
func (r *MockResolver) Values(layer string) map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.layers[layer])
}

// Requested returns the layer names requested so far, in order.
func (r *MockResolver) Requested() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.requested)
}
