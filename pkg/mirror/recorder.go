package mirror

import (
	_ "embed"
	"errors"
	"fmt"
)

// RecorderScript is the event recorder injected into the controlling page.
// It derives a selector for each click and input target and appends records
// to window.__mirrorActions.
//
//go:embed recorder.js
var RecorderScript string

// DrainExpression atomically empties the in-page queue and returns its records
// in capture order, or null when the recorder is not installed in the
// current document.
const DrainExpression = `function () {
  var queue = window.__mirrorActions;
  return Array.isArray(queue) ? queue.splice(0) : null;
}`

// errRecorderMissing means the controlling document has no action queue.
var errRecorderMissing = errors.New("recorder not installed in current document")

// ScriptTarget is a page that can run and persist scripts.
type ScriptTarget interface {
	Evaluate(expression string, arg ...interface{}) (interface{}, error)
	AddInitScript(script string) error
}

// Recorder installs the event recorder into a page and drains its queue.
type Recorder struct {
	target ScriptTarget
}

// NewRecorder creates a recorder for the given page.
func NewRecorder(target ScriptTarget) *Recorder {
	return &Recorder{target: target}
}

// Install registers the recorder for every future document and injects it
// into the current one.
func (r *Recorder) Install() error {
	if err := r.target.AddInitScript(RecorderScript); err != nil {
		return err
	}
	return r.Inject()
}

// Inject evaluates the recorder in the current document, resetting its queue.
func (r *Recorder) Inject() error {
	if _, err := r.target.Evaluate(RecorderScript); err != nil {
		return fmt.Errorf("failed to inject recorder: %w", err)
	}
	return nil
}

// Drain removes and returns every queued action, in capture order.
//
// A *RejectedRecordsError is returned together with the actions that did
// decode. errRecorderMissing is returned when the page has no queue.
func (r *Recorder) Drain() ([]Action, error) {
	raw, err := r.target.Evaluate(DrainExpression)
	if err != nil {
		return nil, fmt.Errorf("failed to drain actions: %w", err)
	}
	return decodeBatch(raw)
}
