package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Kind is the type of a captured interaction.
type Kind string

const (
	KindClick  Kind = "click"
	KindInput  Kind = "input"
	KindScroll Kind = "scroll"
)

// ParseKind converts a configured action name to a Kind.
func ParseKind(name string) (Kind, error) {
	switch kind := Kind(strings.ToLower(strings.TrimSpace(name))); kind {
	case KindClick, KindInput, KindScroll:
		return kind, nil
	default:
		return "", fmt.Errorf("unsupported action type %q", name)
	}
}

// ScrollPosition is a window scroll offset in CSS pixels.
type ScrollPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Action is one captured interaction, self-contained and replayable on any follower.
//
// Selector is set for click and input. Text carries the full field value of an
// input. Scroll is set for scroll, which is window-level and has no selector.
type Action struct {
	Kind     Kind
	Selector string
	Text     string
	Scroll   ScrollPosition
}

// wireAction is the record shape the in-page recorder pushes.
type wireAction struct {
	Type     Kind            `json:"type"`
	Selector string          `json:"selector,omitempty"`
	Value    json.RawMessage `json:"value,omitempty"`
}

// UnmarshalJSON decodes a recorder record, whose value is a string for input
// and an {x, y} pair for scroll.
func (a *Action) UnmarshalJSON(data []byte) error {
	var wire wireAction
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	decoded := Action{Kind: wire.Type, Selector: wire.Selector}
	hasValue := len(wire.Value) > 0 && string(wire.Value) != "null"

	switch wire.Type {
	case KindClick:
		if wire.Selector == "" {
			return errors.New("click record has no selector")
		}
	case KindInput:
		if wire.Selector == "" {
			return errors.New("input record has no selector")
		}
		if hasValue {
			if err := json.Unmarshal(wire.Value, &decoded.Text); err != nil {
				return fmt.Errorf("input value: %w", err)
			}
		}
	case KindScroll:
		if !hasValue {
			return errors.New("scroll record has no position")
		}
		// Offsets can be fractional on scaled displays
		var pos struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		}
		if err := json.Unmarshal(wire.Value, &pos); err != nil {
			return fmt.Errorf("scroll value: %w", err)
		}
		decoded.Scroll = ScrollPosition{X: int(math.Round(pos.X)), Y: int(math.Round(pos.Y))}
	default:
		return fmt.Errorf("unsupported action type %q", wire.Type)
	}

	*a = decoded
	return nil
}

// target names what the action is applied to, for log lines.
func (a Action) target() string {
	if a.Selector == "" {
		return "window"
	}
	return a.Selector
}

// String returns a short description such as "click button#go".
func (a Action) String() string {
	if a.Kind == KindScroll {
		return fmt.Sprintf("scroll (%d, %d)", a.Scroll.X, a.Scroll.Y)
	}
	return fmt.Sprintf("%s %s", a.Kind, a.Selector)
}

// RejectedRecordsError reports records of a drained batch that could not be
// decoded. The records that did decode are still returned alongside it.
type RejectedRecordsError struct {
	Errs []error
}

func (e *RejectedRecordsError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d record(s) rejected: %s", len(e.Errs), strings.Join(msgs, "; "))
}

// decodeBatch converts an evaluate result (a JS array of records) into
// actions in capture order. A nil result means the queue does not exist.
func decodeBatch(raw interface{}) ([]Action, error) {
	if raw == nil {
		return nil, errRecorderMissing
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode drained batch: %w", err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("drained batch is not a list: %w", err)
	}

	actions := make([]Action, 0, len(records))
	var rejected []error
	for i, record := range records {
		var action Action
		if err := json.Unmarshal(record, &action); err != nil {
			rejected = append(rejected, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		actions = append(actions, action)
	}

	if len(rejected) > 0 {
		return actions, &RejectedRecordsError{Errs: rejected}
	}
	return actions, nil
}
