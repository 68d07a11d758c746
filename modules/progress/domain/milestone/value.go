package milestone

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Kind discriminates the shapes a milestone value can take on the wire.
type Kind int

const (
	// KindUnset is the zero Value: the milestone has never been set.
	KindUnset Kind = iota
	KindBool
	KindNumber
	// KindOther marks a JSON value that is neither a bool nor a number.
	// It always fails validation; it exists so the validator can name the
	// offending type instead of rejecting at decode time.
	KindOther
)

// Value is the tagged union of milestone encodings: discrete milestones carry
// a bool, partial milestones a 0-100 number. Which shape is legal for a given
// milestone is decided by its Definition, not by the value itself.
type Value struct {
	kind Kind
	b    bool
	num  float64
	raw  string
}

func Bool(v bool) Value {
	return Value{kind: KindBool, b: v}
}

func Number(v float64) Value {
	return Value{kind: KindNumber, num: v}
}

func (v Value) Kind() Kind     { return v.kind }
func (v Value) Boolean() bool  { return v.b }
func (v Value) Float() float64 { return v.num }
func (v Value) IsSet() bool    { return v.kind != KindUnset }

// TypeName names the value's shape for error messages.
func (v Value) TypeName() string {
	switch v.kind {
	case KindUnset:
		return "unset"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	default:
		if v.raw != "" {
			return v.raw
		}
		return "unsupported"
	}
}

// ParseValue decodes a raw JSON milestone value preserving its wire type, so
// validation can enforce strict bool-vs-number shapes. It never fails:
// unsupported shapes decode to KindOther and are rejected by ValidateUpdate.
func ParseValue(raw json.RawMessage) Value {
	// json.Unmarshal treats null as a no-op against a bool target, which
	// would misread null as false. Reject it up front.
	if string(bytes.TrimSpace(raw)) == "null" {
		return Value{kind: KindOther, raw: "null"}
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return Bool(b)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return Number(n)
	}
	return Value{kind: KindOther, raw: jsonTypeName(raw)}
}

func jsonTypeName(raw json.RawMessage) string {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "malformed json"
	}
	switch decoded.(type) {
	case string:
		return "string"
	case nil:
		return "null"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", decoded)
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindNumber:
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

func (v *Value) UnmarshalJSON(raw []byte) error {
	*v = ParseValue(raw)
	return nil
}

// State maps milestone names to their current values for one component.
// It is only ever mutated through validated updates.
type State map[string]Value

// With returns a copy of the state with one milestone replaced.
func (s State) With(name string, v Value) State {
	out := make(State, len(s)+1)
	for k, val := range s {
		out[k] = val
	}
	out[name] = v
	return out
}

// Get returns the value for a milestone; an absent milestone is KindUnset.
func (s State) Get(name string) Value {
	return s[name]
}

// Names returns the milestone names present in the state, sorted for
// deterministic serialization and logging.
func (s State) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
