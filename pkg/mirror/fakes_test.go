package mirror

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/require"
)

// testLogger captures log lines as "LEVEL: message".
type testLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *testLogger) add(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+": "+fmt.Sprintf(format, v...))
}

func (l *testLogger) Debugf(format string, v ...interface{})   { l.add("DEBUG", format, v...) }
func (l *testLogger) Verbosef(format string, v ...interface{}) { l.add("VERBOSE", format, v...) }
func (l *testLogger) Infof(format string, v ...interface{})    { l.add("INFO", format, v...) }
func (l *testLogger) Warnf(format string, v ...interface{})    { l.add("WARN", format, v...) }
func (l *testLogger) Errorf(format string, v ...interface{})   { l.add("ERROR", format, v...) }

// lines returns entries at level containing every substring.
func (l *testLogger) lines(level string, substrs ...string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var matched []string
	for _, entry := range l.entries {
		if !strings.HasPrefix(entry, level+": ") {
			continue
		}
		ok := true
		for _, s := range substrs {
			if !strings.Contains(entry, s) {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, entry)
		}
	}
	return matched
}

// call is one follower operation as "window op args".
type call string

// callLog records follower operations across all followers, in order.
type callLog struct {
	mu    sync.Mutex
	calls []call
}

func (c *callLog) add(format string, v ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call(fmt.Sprintf(format, v...)))
}

func (c *callLog) all() []call {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]call, len(c.calls))
	copy(out, c.calls)
	return out
}

// forWindow returns the calls made on one follower, in order.
func (c *callLog) forWindow(name string) []call {
	var out []call
	for _, cl := range c.all() {
		if strings.HasPrefix(string(cl), name+" ") {
			out = append(out, cl)
		}
	}
	return out
}

var errNoElement = errors.New("no element matches selector")

// fakeFollower records operations and fails on configured selectors or URLs.
type fakeFollower struct {
	name         string
	log          *callLog
	missing      map[string]bool // selectors with no matching element
	failNavigate bool
}

func (f *fakeFollower) WindowName() string { return f.name }

func (f *fakeFollower) Click(selector string) error {
	if f.missing[selector] {
		return errNoElement
	}
	f.log.add("%s click %s", f.name, selector)
	return nil
}

func (f *fakeFollower) Fill(selector, value string) error {
	if f.missing[selector] {
		return errNoElement
	}
	f.log.add("%s fill %s=%s", f.name, selector, value)
	return nil
}

func (f *fakeFollower) ScrollTo(x, y int) error {
	f.log.add("%s scroll %d,%d", f.name, x, y)
	return nil
}

func (f *fakeFollower) Navigate(url string) error {
	if f.failNavigate {
		return errors.New("net::ERR_CONNECTION_REFUSED")
	}
	f.log.add("%s goto %s", f.name, url)
	return nil
}

// newFollowers creates n followers named follower-1..n sharing one call log.
func newFollowers(n int) ([]*fakeFollower, []Follower, *callLog) {
	log := &callLog{}
	fakes := make([]*fakeFollower, n)
	followers := make([]Follower, n)
	for i := range fakes {
		fakes[i] = &fakeFollower{name: fmt.Sprintf("follower-%d", i+1), log: log}
		followers[i] = fakes[i]
	}
	return fakes, followers, log
}

// fakeController is a controller whose queue is a plain slice of records.
type fakeController struct {
	mu          sync.Mutex
	queue       []interface{}
	installed   bool
	injections  int
	initScripts []string
	url         string
	closed      bool
	evalErr     error
	drains      int
}

func newFakeController(url string) *fakeController {
	return &fakeController{url: url, installed: true}
}

// push appends raw records as the recorder would.
func (c *fakeController) push(records ...map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range records {
		c.queue = append(c.queue, r)
	}
}

func (c *fakeController) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New("Target page, context or browser has been closed")
	}
	if c.evalErr != nil {
		return nil, c.evalErr
	}

	switch expression {
	case RecorderScript:
		c.injections++
		c.installed = true
		c.queue = nil
		return nil, nil
	case DrainExpression:
		c.drains++
		if !c.installed {
			return nil, nil
		}
		batch := make([]interface{}, len(c.queue))
		copy(batch, c.queue)
		c.queue = nil
		return batch, nil
	default:
		return nil, fmt.Errorf("unexpected expression %q", expression)
	}
}

func (c *fakeController) AddInitScript(script string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initScripts = append(c.initScripts, script)
	return nil
}

func (c *fakeController) URL() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.url
}

func (c *fakeController) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeController) setURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.url = url
}

func clickRecord(selector string) map[string]interface{} {
	return map[string]interface{}{"type": "click", "selector": selector}
}

func inputRecord(selector, value string) map[string]interface{} {
	return map[string]interface{}{"type": "input", "selector": selector, "value": value}
}

func scrollRecord(x, y int) map[string]interface{} {
	return map[string]interface{}{"type": "scroll", "value": map[string]interface{}{"x": x, "y": y}}
}

// fakeDOM is a minimal document and window for running the recorder script.
const fakeDOM = `
var __listeners = {};
var document = {
  addEventListener: function (type, fn) {
    (__listeners[type] = __listeners[type] || []).push(fn);
  }
};
var window = { scrollX: 0, scrollY: 0 };
window.top = window;
function fire(type, target) {
  var fns = __listeners[type] || [];
  for (var i = 0; i < fns.length; i++) {
    fns[i]({ type: type, target: target });
  }
}
function listenerCount(type) {
  return (__listeners[type] || []).length;
}
`

// pageVM runs page scripts in a goja runtime with a fake DOM.
// It implements Controller.
type pageVM struct {
	mu          sync.Mutex
	vm          *goja.Runtime
	url         string
	closed      bool
	initScripts []string
}

func newPageVM(t *testing.T, url string) *pageVM {
	t.Helper()
	vm := goja.New()
	_, err := vm.RunString(fakeDOM)
	require.NoError(t, err)
	return &pageVM{vm: vm, url: url}
}

func (p *pageVM) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.New("Target page, context or browser has been closed")
	}

	script := expression
	if strings.HasPrefix(strings.TrimSpace(expression), "function") {
		script = "(" + expression + ")()"
	}
	v, err := p.vm.RunString(script)
	if err != nil {
		return nil, err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}
	return v.Export(), nil
}

func (p *pageVM) AddInitScript(script string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initScripts = append(p.initScripts, script)
	return nil
}

func (p *pageVM) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *pageVM) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// run executes page-side JS such as fire(...) calls.
func (p *pageVM) run(t *testing.T, js string) goja.Value {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	v, err := p.vm.RunString(js)
	require.NoError(t, err)
	return v
}

func (p *pageVM) navigate(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

func (p *pageVM) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}
